package solver

import (
	"slices"

	"github.com/shopspring/decimal"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
)

// AuxQuantity applies rule to the summed low- and high-capacity expansion
// quantities: max(0, ceil((low - slots*high - slots) / perAux)), plus one
// when base is listed in the rule's ExtraForBases.
func AuxQuantity(rule catalog.AuxRule, base string, lowQty, highQty int) int {
	qty := ceilDiv(lowQty-rule.DirectSlots*highQty-rule.DirectSlots, rule.PerAux)
	if slices.Contains(rule.ExtraForBases, base) {
		qty++
	}
	return qty
}

// costModel prices quantity vectors for one base and a set of enabled
// expansions.
type costModel struct {
	base       domain.ModuleSpec
	expansions []domain.ModuleSpec
	aux        domain.ModuleSpec
	rule       catalog.AuxRule
	includeAux bool
	low        []int // indices into expansions
	high       []int
}

func newCostModel(base domain.ModuleSpec, expansions []domain.ModuleSpec, aux domain.ModuleSpec, rule catalog.AuxRule, includeAux bool) *costModel {
	m := &costModel{
		base:       base,
		expansions: expansions,
		aux:        aux,
		rule:       rule,
		includeAux: includeAux,
	}
	for i, e := range expansions {
		if slices.Contains(rule.Low, e.Name) {
			m.low = append(m.low, i)
		}
		if slices.Contains(rule.High, e.Name) {
			m.high = append(m.high, i)
		}
	}
	return m
}

// auxQty returns the auxiliary module count for q, or 0 when the rule is off.
func (m *costModel) auxQty(q []int) int {
	if !m.includeAux {
		return 0
	}
	var low, high int
	for _, i := range m.low {
		low += q[i]
	}
	for _, i := range m.high {
		high += q[i]
	}
	return AuxQuantity(m.rule, m.base.Name, low, high)
}

// price returns the unrounded price of q with aux auxiliary modules.
func (m *costModel) price(q []int, aux int) float64 {
	p := m.base.Price + m.aux.Price*float64(aux)
	for i, e := range m.expansions {
		p += e.Price * float64(q[i])
	}
	return p
}

func (m *costModel) width(q []int, aux int) float64 {
	w := m.base.Width + m.aux.Width*float64(aux)
	for i, e := range m.expansions {
		w += e.Width * float64(q[i])
	}
	return w
}

// powerAC sums AC draw only; DC draw is tracked per module but not totalled.
func (m *costModel) powerAC(q []int, aux int) float64 {
	p := m.base.PowerAC + m.aux.PowerAC*float64(aux)
	for i, e := range m.expansions {
		p += e.PowerAC * float64(q[i])
	}
	return p
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
