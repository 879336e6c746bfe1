package domain

// DemandRow is one named system in a batch.
type DemandRow struct {
	Name   string      `json:"name"`
	Demand PointDemand `json:"demand"`
}

// RowSelection is the cheapest configuration chosen for one row.
type RowSelection struct {
	Name      string      `json:"name"`
	Demand    PointDemand `json:"demand"` // normalized
	Candidate Candidate   `json:"candidate"`
}

// BatchResult holds one selection per row, in input order, and the
// column-wise totals over all selections.
type BatchResult struct {
	Schema Schema         `json:"schema"`
	Rows   []RowSelection `json:"rows"`
	Total  []float64      `json:"total"` // Schema.Columns order
}
