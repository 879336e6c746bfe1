package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"controller-sizer/internal/domain"
)

// File is the YAML representation of a catalog.
type File struct {
	Modules []domain.ModuleSpec `yaml:"modules"`
	AuxRule AuxRule             `yaml:"aux_rule"`
}

// Parse decodes a YAML catalog. An omitted aux_rule falls back to DefaultAuxRule.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Modules) == 0 {
		return nil, fmt.Errorf("decode catalog: no modules")
	}
	if f.AuxRule.Module == "" {
		f.AuxRule = DefaultAuxRule()
	}
	c, err := New(f.Modules, f.AuxRule)
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(File{Modules: c.Modules(), AuxRule: c.aux})
}
