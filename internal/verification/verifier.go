// Package verification re-checks solver output independently of the
// enumeration that produced it.
package verification

import (
	"fmt"
	"math"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/metrics"
	"controller-sizer/internal/solver"
)

// FloatTolerance is the tolerance for float64 comparisons of rounded values.
const FloatTolerance = 1e-7

// Check names.
const (
	CheckFeasible  = "feasible"
	CheckTotals    = "totals"
	CheckLeftover  = "leftover"
	CheckCost      = "cost"
	CheckOrdering  = "ordering"
	CheckDominance = "dominance"
	CheckBatchSum  = "batch_total"
)

// Violation is one failed check.
type Violation struct {
	Index  int    // candidate or row index, -1 for the whole set
	Check  string // one of the Check constants
	Detail string
}

func (v Violation) String() string {
	if v.Index < 0 {
		return fmt.Sprintf("%s: %s", v.Check, v.Detail)
	}
	return fmt.Sprintf("#%d %s: %s", v.Index, v.Check, v.Detail)
}

// Report contains the outcome of a verification pass.
type Report struct {
	Checked    int         // candidates or rows examined
	Violations []Violation // empty when everything holds
}

// OK reports whether no check failed.
func (r Report) OK() bool { return len(r.Violations) == 0 }

func (r *Report) add(idx int, check, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Index: idx, Check: check, Detail: fmt.Sprintf(format, args...)})
}

// CheckResultSet verifies every candidate of rs against demand, which must
// already be normalized:
//   - capacity totals match the module counts
//   - every feasibility inequality holds
//   - leftover matches the greedy allocation
//   - price, width and AC power match the catalog, rounded to two decimals
//   - candidates are ordered by price and none dominates another
func CheckResultSet(cat *catalog.Catalog, demand domain.PointDemand, rs domain.ResultSet) Report {
	rep := Report{Checked: rs.Len()}
	for i, c := range rs.Candidates {
		checkCandidate(&rep, i, cat, rs.Schema, demand, c)
	}

	for i := 1; i < len(rs.Candidates); i++ {
		if rs.Candidates[i].Price < rs.Candidates[i-1].Price {
			rep.add(i, CheckOrdering, "price %.2f after %.2f", rs.Candidates[i].Price, rs.Candidates[i-1].Price)
		}
	}

	for i, a := range rs.Candidates {
		for j, b := range rs.Candidates {
			if i != j && solver.Dominates(b, a) {
				rep.add(i, CheckDominance, "dominated by #%d", j)
				break
			}
		}
	}
	return rep
}

// CheckBatch verifies every row selection against its own normalized
// demand and the totals row against the selections.
func CheckBatch(cat *catalog.Catalog, res domain.BatchResult) Report {
	rep := Report{Checked: len(res.Rows)}
	for i, row := range res.Rows {
		checkCandidate(&rep, i, cat, res.Schema, row.Demand, row.Candidate)
	}

	want, err := metrics.Totals(res.Schema, res.Rows)
	if err != nil {
		rep.add(-1, CheckBatchSum, "%v", err)
		return rep
	}
	if len(want) != len(res.Total) {
		rep.add(-1, CheckBatchSum, "expected %d columns, got %d", len(want), len(res.Total))
		return rep
	}
	cols := res.Schema.Columns()
	for i := range want {
		if !floatEquals(want[i], res.Total[i]) {
			rep.add(-1, CheckBatchSum, "%s: expected %v, got %v", cols[i], want[i], res.Total[i])
		}
	}
	return rep
}

func checkCandidate(rep *Report, idx int, cat *catalog.Catalog, schema domain.Schema, demand domain.PointDemand, c domain.Candidate) {
	base, err := cat.Base(c.Base)
	if err != nil {
		rep.add(idx, CheckCost, "%v", err)
		return
	}
	if len(c.Quantities) != len(schema.Expansions) {
		rep.add(idx, CheckTotals, "expected %d quantities, got %d", len(schema.Expansions), len(c.Quantities))
		return
	}

	totals := base.Capacity
	aux := cat.Aux()
	price := base.Price + aux.Price*float64(c.AuxQty)
	width := base.Width + aux.Width*float64(c.AuxQty)
	power := base.PowerAC + aux.PowerAC*float64(c.AuxQty)
	for i, name := range schema.Expansions {
		q := c.Quantities[i]
		if q == 0 {
			continue
		}
		e, err := cat.Expansion(name)
		if err != nil {
			rep.add(idx, CheckCost, "%v", err)
			return
		}
		totals = totals.Add(e.Capacity, q)
		price += e.Price * float64(q)
		width += e.Width * float64(q)
		power += e.PowerAC * float64(q)
	}

	if totals != c.Totals {
		rep.add(idx, CheckTotals, "expected %+v, got %+v", totals, c.Totals)
	}
	for _, name := range solver.Violations(demand, c.Totals) {
		rep.add(idx, CheckFeasible, "%s violated", name)
	}
	if left := solver.Leftover(demand, c.Totals); left != c.Leftover {
		rep.add(idx, CheckLeftover, "expected %+v, got %+v", left, c.Leftover)
	}
	if !floatEquals(solver.Round2(price), c.Price) {
		rep.add(idx, CheckCost, "price: expected %.2f, got %.2f", solver.Round2(price), c.Price)
	}
	if !floatEquals(solver.Round2(width), c.Width) {
		rep.add(idx, CheckCost, "width: expected %.2f, got %.2f", solver.Round2(width), c.Width)
	}
	if !floatEquals(solver.Round2(power), c.PowerAC) {
		rep.add(idx, CheckCost, "power: expected %.2f, got %.2f", solver.Round2(power), c.PowerAC)
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < FloatTolerance
}
