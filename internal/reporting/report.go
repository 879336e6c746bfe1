package reporting

import (
	"strconv"
	"time"

	"controller-sizer/internal/domain"
)

// Report is a rendered-ready solve or batch report.
type Report struct {
	// Metadata
	Title       string
	GeneratedAt time.Time
	Meta        Meta

	// Normalized demand, single solves only
	Demand *domain.PointDemand

	// Search figures, single solves only
	Bounds     map[string]int
	Enumerated int64
	Feasible   int64

	// Result rows in the fixed column layout
	Table Table

	// Module quantities summed over all rows, batch reports only
	Materials []MaterialLine

	// Independent re-check of the rows
	Verification VerificationSection
}

// Meta describes the request that produced a report.
type Meta struct {
	RunID        string
	Fingerprint  string
	Base         string
	Expansions   []string
	SparePercent float64
	IncludeAux   bool
	UsedFallback bool
}

// MaterialLine is one module of a bill of materials.
type MaterialLine struct {
	Module   string
	Quantity int
}

// VerificationSection summarizes a verification pass.
type VerificationSection struct {
	Checked    int
	Passed     bool
	Violations []string
}

// Table is a header plus formatted rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ResultTable lays out a result set, one row per candidate.
func ResultTable(rs domain.ResultSet) Table {
	cols := rs.Schema.Columns()
	t := Table{Columns: cols, Rows: make([][]string, 0, rs.Len())}
	for _, c := range rs.Candidates {
		t.Rows = append(t.Rows, formatRow(cols, c.Values(rs.Schema)))
	}
	return t
}

// BatchTable lays out a batch with a leading System Name column and a
// trailing Total row.
func BatchTable(res domain.BatchResult) Table {
	cols := res.Schema.Columns()
	t := Table{
		Columns: append([]string{domain.ColumnSystemName}, cols...),
		Rows:    make([][]string, 0, len(res.Rows)+1),
	}
	for _, r := range res.Rows {
		t.Rows = append(t.Rows, append([]string{r.Name}, formatRow(cols, r.Candidate.Values(res.Schema))...))
	}
	if len(res.Total) == len(cols) {
		t.Rows = append(t.Rows, append([]string{domain.TotalRowName}, formatRow(cols, res.Total)...))
	}
	return t
}

func formatRow(cols []string, vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = FormatValue(cols[i], v)
	}
	return out
}

// FormatValue formats a numeric cell. Price and width always carry two
// decimals; counts and power print without trailing zeros.
func FormatValue(column string, v float64) string {
	switch column {
	case domain.ColumnPrice, domain.ColumnWidth:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
