package domain

// ModuleRole distinguishes how a module participates in a configuration.
type ModuleRole string

const (
	RoleBase      ModuleRole = "base"      // exactly one per configuration
	RoleExpansion ModuleRole = "expansion" // zero or more, quantity searched
	RoleAux       ModuleRole = "aux"       // auxiliary power module, quantity derived
)

// ModuleSpec is an immutable description of one hardware module type.
type ModuleSpec struct {
	Name      string     `json:"name" yaml:"name"`
	Role      ModuleRole `json:"role" yaml:"role"`
	Price     float64    `json:"price" yaml:"price"`           // unit price
	PowerAC   float64    `json:"power_ac" yaml:"power_ac"`     // AC draw per unit
	PowerDC   float64    `json:"power_dc" yaml:"power_dc"`     // DC draw per unit, not part of totals
	Width     float64    `json:"width" yaml:"width"`           // rail width per unit
	Capacity  Capacity   `json:"capacity" yaml:"capacity"`     // per-unit pool capacity
	MaxPoints int        `json:"max_points" yaml:"max_points"` // total point ceiling, base units only
	Bound     int        `json:"bound" yaml:"bound"`           // nominal points per unit for search bounds, expansions only
}

// IsBase reports whether the module is a base unit.
func (m ModuleSpec) IsBase() bool { return m.Role == RoleBase }
