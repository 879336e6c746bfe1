package domain

// Column names shared by every tabular output.
const (
	ColumnPowerAC    = "PowerAC"
	ColumnPrice      = "Price"
	ColumnWidth      = "Width"
	ColumnSystemName = "System Name"
	TotalRowName     = "Total"
)

// Schema fixes the column layout of a result table:
// base indicators, expansion counts, auxiliary count, leftovers per pool,
// total AC power, price and width.
type Schema struct {
	Bases      []string `json:"bases"`
	Expansions []string `json:"expansions"`
	Aux        string   `json:"aux"`
}

// Columns returns the column names in contract order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Bases)+len(s.Expansions)+len(Pools)+4)
	cols = append(cols, s.Bases...)
	cols = append(cols, s.Expansions...)
	cols = append(cols, s.Aux)
	for _, p := range Pools {
		cols = append(cols, string(p))
	}
	return append(cols, ColumnPowerAC, ColumnPrice, ColumnWidth)
}

// Candidate is one feasible configuration: one base unit, a quantity per
// expansion type and a derived auxiliary module quantity.
type Candidate struct {
	Base       string   `json:"base"`
	Quantities []int    `json:"quantities"` // aligned with Schema.Expansions
	AuxQty     int      `json:"aux_qty"`
	Totals     Capacity `json:"totals"`   // aggregate pool capacity
	Leftover   Capacity `json:"leftover"` // surplus after greedy allocation
	PowerAC    float64  `json:"power_ac"`
	Price      float64  `json:"price"`
	Width      float64  `json:"width"`
	Ordinal    int64    `json:"-"` // enumeration position, breaks price ties
}

// Counts returns the tracked dominance dimensions: every expansion
// quantity followed by the auxiliary quantity.
func (c Candidate) Counts() []int {
	out := make([]int, 0, len(c.Quantities)+1)
	out = append(out, c.Quantities...)
	return append(out, c.AuxQty)
}

// Values returns the numeric row for c in schema column order.
func (c Candidate) Values(s Schema) []float64 {
	vals := make([]float64, 0, len(s.Bases)+len(s.Expansions)+len(Pools)+4)
	for _, b := range s.Bases {
		if b == c.Base {
			vals = append(vals, 1)
		} else {
			vals = append(vals, 0)
		}
	}
	for i := range s.Expansions {
		q := 0
		if i < len(c.Quantities) {
			q = c.Quantities[i]
		}
		vals = append(vals, float64(q))
	}
	vals = append(vals, float64(c.AuxQty))
	for _, v := range c.Leftover.Values() {
		vals = append(vals, float64(v))
	}
	return append(vals, c.PowerAC, c.Price, c.Width)
}

// Quantity returns the quantity of the named expansion, 0 when absent.
func (c Candidate) Quantity(s Schema, name string) int {
	for i, n := range s.Expansions {
		if n == name && i < len(c.Quantities) {
			return c.Quantities[i]
		}
	}
	return 0
}

// ResultSet is the non-dominated candidate list, ascending by price.
// It carries its schema so an empty set is still schema-complete.
type ResultSet struct {
	Schema     Schema      `json:"schema"`
	Candidates []Candidate `json:"candidates"`
}

// Len returns the number of candidates.
func (r ResultSet) Len() int { return len(r.Candidates) }

// Best returns the cheapest candidate.
func (r ResultSet) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}
