package solver

import "controller-sizer/internal/domain"

// Feasible reports whether aggregate pool totals t can serve demand d.
// Hybrid pools may serve either of their kinds; the checks are aggregate
// sufficiency conditions, not an explicit assignment.
func Feasible(d domain.PointDemand, t domain.Capacity) bool {
	return d.BO <= t.BO &&
		d.Pressure <= t.Pressure &&
		d.UI <= t.UI+t.UIAO &&
		d.AO <= t.UIAO+t.BIAO &&
		d.BI <= t.BI+t.BIAO+t.UI+t.UIAO &&
		d.AI <= t.AI+t.UI+t.UIAO &&
		d.AI+d.UI <= t.AI+t.UI+t.UIAO &&
		d.BI+d.UI+d.AO <= t.BI+t.BIAO+t.UI+t.UIAO &&
		d.BI+d.UI+d.AI+d.AO <= t.BI+t.BIAO+t.UI+t.UIAO+t.AI
}

// Constraint is one named demand-versus-capacity inequality.
type Constraint struct {
	Name     string
	Demand   func(domain.PointDemand) int
	Capacity func(domain.Capacity) int
}

// Constraints lists the inequalities checked by Feasible, in the same order.
var Constraints = []Constraint{
	{"BO<=BO", func(d domain.PointDemand) int { return d.BO }, func(t domain.Capacity) int { return t.BO }},
	{"PRESSURE<=PRESSURE", func(d domain.PointDemand) int { return d.Pressure }, func(t domain.Capacity) int { return t.Pressure }},
	{"UI<=UI+UIAO", func(d domain.PointDemand) int { return d.UI }, func(t domain.Capacity) int { return t.UI + t.UIAO }},
	{"AO<=UIAO+BIAO", func(d domain.PointDemand) int { return d.AO }, func(t domain.Capacity) int { return t.UIAO + t.BIAO }},
	{"BI<=BI+BIAO+UI+UIAO", func(d domain.PointDemand) int { return d.BI }, func(t domain.Capacity) int { return t.BI + t.BIAO + t.UI + t.UIAO }},
	{"AI<=AI+UI+UIAO", func(d domain.PointDemand) int { return d.AI }, func(t domain.Capacity) int { return t.AI + t.UI + t.UIAO }},
	{"AI+UI<=AI+UI+UIAO", func(d domain.PointDemand) int { return d.AI + d.UI }, func(t domain.Capacity) int { return t.AI + t.UI + t.UIAO }},
	{"BI+UI+AO<=BI+BIAO+UI+UIAO", func(d domain.PointDemand) int { return d.BI + d.UI + d.AO }, func(t domain.Capacity) int { return t.BI + t.BIAO + t.UI + t.UIAO }},
	{"BI+UI+AI+AO<=BI+BIAO+UI+UIAO+AI", func(d domain.PointDemand) int { return d.BI + d.UI + d.AI + d.AO }, func(t domain.Capacity) int { return t.BI + t.BIAO + t.UI + t.UIAO + t.AI }},
}

// Violations returns the names of every constraint t fails for d.
func Violations(d domain.PointDemand, t domain.Capacity) []string {
	var out []string
	for _, c := range Constraints {
		if c.Demand(d) > c.Capacity(t) {
			out = append(out, c.Name)
		}
	}
	return out
}
