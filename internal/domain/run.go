package domain

// RunKind distinguishes single solves from batch solves.
type RunKind string

const (
	RunKindSingle RunKind = "single"
	RunKindBatch  RunKind = "batch"
)

// SolveRun is a persisted record of one solve or batch invocation.
// Corresponds to sizing_runs table in PostgreSQL.
type SolveRun struct {
	ID             string   // PRIMARY KEY, UUID
	Kind           RunKind  // single | batch
	Fingerprint    string   // deterministic hash of inputs
	Base           string   // selected base unit
	Expansions     []string // enabled expansion types
	IncludeAux     bool     // auxiliary module rule applied
	SparePercent   float64  // spare percentage used for normalization
	UsedFallback   bool     // prices came from the built-in table
	CandidateCount int      // result set size, or row count for batches
	BestPrice      *float64 // cheapest price, or batch total (nullable)
	Payload        []byte   // JSON encoded result
	CreatedAt      int64    // Unix timestamp in milliseconds
}

// SelectionRecord is one reported configuration row of a run.
// Corresponds to sizing_selections table in ClickHouse.
type SelectionRecord struct {
	RunID          string   // owning run
	Position       int      // rank in a result set or row index in a batch
	Label          string   // system name for batch rows, empty otherwise
	Base           string   // base unit name
	ExpansionNames []string // aligned with ExpansionQty
	ExpansionQty   []int    // quantity per expansion
	AuxQty         int      // auxiliary modules
	Leftover       Capacity // surplus per pool
	PowerAC        float64  // total AC power
	Price          float64  // total price
	Width          float64  // total width
	CreatedAt      int64    // Unix timestamp in milliseconds
}

// RunCompleted is published once a run has been stored.
type RunCompleted struct {
	RunID          string   `json:"run_id"`
	Kind           RunKind  `json:"kind"`
	Fingerprint    string   `json:"fingerprint"`
	Base           string   `json:"base"`
	CandidateCount int      `json:"candidate_count"`
	BestPrice      *float64 `json:"best_price,omitempty"`
	UsedFallback   bool     `json:"used_fallback"`
	CompletedAt    int64    `json:"completed_at"`
}
