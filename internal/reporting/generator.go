// Package reporting lays out solve and batch results in the fixed column
// order and renders them as CSV and Markdown.
package reporting

import (
	"time"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/metrics"
	"controller-sizer/internal/solver"
	"controller-sizer/internal/verification"
)

// Generator builds reports and verifies the rows they contain.
type Generator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewGenerator creates a generator verifying against cat.
func NewGenerator(cat *catalog.Catalog) *Generator {
	return &Generator{catalog: cat, now: time.Now}
}

// WithClock sets a custom clock for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// SolveReport builds a report listing every surviving candidate.
func (g *Generator) SolveReport(meta Meta, out *solver.Outcome) *Report {
	demand := out.Demand
	rep := verification.CheckResultSet(g.catalog, demand, out.ResultSet)
	return &Report{
		Title:        "Controller Sizing",
		GeneratedAt:  g.now().UTC(),
		Meta:         meta,
		Demand:       &demand,
		Bounds:       out.Bounds,
		Enumerated:   out.Enumerated,
		Feasible:     out.Feasible,
		Table:        ResultTable(out.ResultSet),
		Verification: section(rep),
	}
}

// BatchReport builds a report with one row per system and a total row.
func (g *Generator) BatchReport(meta Meta, res *domain.BatchResult) *Report {
	rep := verification.CheckBatch(g.catalog, *res)
	return &Report{
		Title:        "Building Sizing",
		GeneratedAt:  g.now().UTC(),
		Meta:         meta,
		Table:        BatchTable(*res),
		Materials:    g.materials(res),
		Verification: section(rep),
	}
}

// materials lists module quantities in catalog order.
func (g *Generator) materials(res *domain.BatchResult) []MaterialLine {
	counts := metrics.ModuleCounts(res.Schema, res.Rows)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	lines := make([]MaterialLine, 0, len(names))
	for _, name := range g.catalog.SortedNames(names) {
		lines = append(lines, MaterialLine{Module: name, Quantity: counts[name]})
	}
	return lines
}

func section(rep verification.Report) VerificationSection {
	s := VerificationSection{Checked: rep.Checked, Passed: rep.OK()}
	for _, v := range rep.Violations {
		s.Violations = append(s.Violations, v.String())
	}
	return s
}
