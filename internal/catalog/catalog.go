// Package catalog describes the hardware modules a configuration can be built from:
// base units, expansions and the auxiliary power module, with their capacity
// vectors, search bound constants and the auxiliary power rule.
package catalog

import (
	"fmt"
	"sort"

	"controller-sizer/internal/domain"
)

// AuxRule derives the auxiliary power module count from expansion quantities.
// Each high-capacity expansion and the base unit itself can directly power
// DirectSlots low-capacity expansions; every PerAux low-capacity expansions
// beyond that need one auxiliary module. Bases listed in ExtraForBases always
// need one more.
type AuxRule struct {
	Module        string   `json:"module" yaml:"module"`
	Low           []string `json:"low" yaml:"low"`
	High          []string `json:"high" yaml:"high"`
	DirectSlots   int      `json:"direct_slots" yaml:"direct_slots"`
	PerAux        int      `json:"per_aux" yaml:"per_aux"`
	ExtraForBases []string `json:"extra_for_bases" yaml:"extra_for_bases"`
}

// Catalog is an immutable set of module specs keyed by name.
type Catalog struct {
	modules map[string]domain.ModuleSpec
	order   []string
	aux     AuxRule
}

// New builds a catalog. Module order is preserved and fixes column order.
func New(modules []domain.ModuleSpec, rule AuxRule) (*Catalog, error) {
	c := &Catalog{
		modules: make(map[string]domain.ModuleSpec, len(modules)),
		order:   make([]string, 0, len(modules)),
		aux:     rule,
	}
	for _, m := range modules {
		if m.Name == "" {
			return nil, fmt.Errorf("module without name")
		}
		if _, dup := c.modules[m.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q", m.Name)
		}
		c.modules[m.Name] = m
		c.order = append(c.order, m.Name)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks roles, bound constants and the auxiliary rule.
func (c *Catalog) Validate() error {
	var bases, auxes int
	for _, name := range c.order {
		m := c.modules[name]
		switch m.Role {
		case domain.RoleBase:
			bases++
			if m.MaxPoints <= 0 {
				return fmt.Errorf("base %q: max_points must be positive", name)
			}
		case domain.RoleExpansion:
			if m.Bound <= 0 {
				return fmt.Errorf("expansion %q: bound must be positive", name)
			}
		case domain.RoleAux:
			auxes++
		default:
			return fmt.Errorf("module %q: unknown role %q", name, m.Role)
		}
		if m.Price < 0 || m.Width < 0 || m.PowerAC < 0 || m.PowerDC < 0 {
			return fmt.Errorf("module %q: negative price, width or power", name)
		}
		for _, v := range m.Capacity.Values() {
			if v < 0 {
				return fmt.Errorf("module %q: negative capacity", name)
			}
		}
	}
	if bases == 0 {
		return fmt.Errorf("catalog has no base unit")
	}
	if auxes != 1 {
		return fmt.Errorf("catalog needs exactly one aux module, got %d", auxes)
	}
	if m, ok := c.modules[c.aux.Module]; !ok || m.Role != domain.RoleAux {
		return fmt.Errorf("aux rule module %q is not an aux module", c.aux.Module)
	}
	if c.aux.PerAux <= 0 || c.aux.DirectSlots < 0 {
		return fmt.Errorf("aux rule: per_aux must be positive and direct_slots non-negative")
	}
	for _, name := range append(append([]string{}, c.aux.Low...), c.aux.High...) {
		if m, ok := c.modules[name]; !ok || m.Role != domain.RoleExpansion {
			return fmt.Errorf("aux rule references unknown expansion %q", name)
		}
	}
	return nil
}

// Get returns the module with the given name.
func (c *Catalog) Get(name string) (domain.ModuleSpec, bool) {
	m, ok := c.modules[name]
	return m, ok
}

// Base returns the named base unit.
func (c *Catalog) Base(name string) (domain.ModuleSpec, error) {
	return c.withRole(name, domain.RoleBase)
}

// Expansion returns the named expansion.
func (c *Catalog) Expansion(name string) (domain.ModuleSpec, error) {
	return c.withRole(name, domain.RoleExpansion)
}

// Aux returns the auxiliary power module.
func (c *Catalog) Aux() domain.ModuleSpec {
	return c.modules[c.aux.Module]
}

// AuxRule returns the auxiliary power rule.
func (c *Catalog) AuxRule() AuxRule {
	return c.aux
}

func (c *Catalog) withRole(name string, role domain.ModuleRole) (domain.ModuleSpec, error) {
	m, ok := c.modules[name]
	if !ok || m.Role != role {
		return domain.ModuleSpec{}, fmt.Errorf("%w: %s %q", domain.ErrUnknownModule, role, name)
	}
	return m, nil
}

// Bases returns base unit names in catalog order.
func (c *Catalog) Bases() []string { return c.names(domain.RoleBase) }

// Expansions returns expansion names in catalog order.
func (c *Catalog) Expansions() []string { return c.names(domain.RoleExpansion) }

func (c *Catalog) names(role domain.ModuleRole) []string {
	var out []string
	for _, name := range c.order {
		if c.modules[name].Role == role {
			out = append(out, name)
		}
	}
	return out
}

// Modules returns every module in catalog order.
func (c *Catalog) Modules() []domain.ModuleSpec {
	out := make([]domain.ModuleSpec, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.modules[name])
	}
	return out
}

// Schema returns the output column layout. All expansions appear, whether
// enabled or not, so that tables from different solves line up.
func (c *Catalog) Schema() domain.Schema {
	return domain.Schema{
		Bases:      c.Bases(),
		Expansions: c.Expansions(),
		Aux:        c.aux.Module,
	}
}

// WithPrices returns a copy of the catalog with unit prices replaced from
// prices. Names not in the catalog are ignored.
func (c *Catalog) WithPrices(prices map[string]float64) *Catalog {
	out := &Catalog{
		modules: make(map[string]domain.ModuleSpec, len(c.modules)),
		order:   append([]string(nil), c.order...),
		aux:     c.aux,
	}
	for name, m := range c.modules {
		if p, ok := prices[name]; ok {
			m.Price = p
		}
		out.modules[name] = m
	}
	return out
}

// Prices returns the current unit price of every module.
func (c *Catalog) Prices() map[string]float64 {
	out := make(map[string]float64, len(c.modules))
	for name, m := range c.modules {
		out[name] = m.Price
	}
	return out
}

// SortedNames returns the given names ordered as they appear in the catalog.
// Unknown names sort last, alphabetically.
func (c *Catalog) SortedNames(names []string) []string {
	pos := make(map[string]int, len(c.order))
	for i, n := range c.order {
		pos[n] = i
	}
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := pos[out[i]]
		pj, jok := pos[out[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}
