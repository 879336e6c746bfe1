package catalog

import "controller-sizer/internal/domain"

// Module names of the built-in catalog.
const (
	S500  = "S500"
	UC600 = "UC600"
	S800  = "S800"
	XM90  = "XM90"
	XM70  = "XM70"
	XM30  = "XM30"
	XM32  = "XM32"
	PM014 = "PM014"
)

// Nominal points per unit used to bound the search for each expansion.
// These are heuristics, not the capacity vector sums.
const (
	BoundXM90 = 32
	BoundXM70 = 18
	BoundXM30 = 4
	BoundXM32 = 4
)

// PriceListOrder is the row order of the positional price list.
var PriceListOrder = []string{UC600, S500, XM90, XM70, XM30, XM32, S800, PM014}

// DefaultPrices is used when the external price list is unavailable.
func DefaultPrices() map[string]float64 {
	return map[string]float64{
		UC600: 1500,
		S500:  1300,
		XM90:  900,
		XM70:  700,
		XM30:  300,
		XM32:  320,
		S800:  2500,
		PM014: 250,
	}
}

// DefaultAuxRule is the PM014 rule: XM90/XM70 and the base unit each feed two
// XM30/XM32, one PM014 per further eleven, plus one for an S800 base.
func DefaultAuxRule() AuxRule {
	return AuxRule{
		Module:        PM014,
		Low:           []string{XM30, XM32},
		High:          []string{XM90, XM70},
		DirectSlots:   2,
		PerAux:        11,
		ExtraForBases: []string{S800},
	}
}

// DefaultModules returns the built-in module specs in column order.
func DefaultModules() []domain.ModuleSpec {
	prices := DefaultPrices()
	return []domain.ModuleSpec{
		{
			Name: S500, Role: domain.RoleBase, Price: prices[S500], PowerAC: 24, Width: 5.65, MaxPoints: 133,
			Capacity: domain.Capacity{BO: 9, BI: 3, UI: 2, AI: 5, BIAO: 2, Pressure: 2},
		},
		{
			Name: UC600, Role: domain.RoleBase, Price: prices[UC600], PowerAC: 26, Width: 8.5, MaxPoints: 120,
			Capacity: domain.Capacity{BO: 4, UI: 8, UIAO: 6, Pressure: 1},
		},
		{
			Name: S800, Role: domain.RoleBase, Price: prices[S800], PowerDC: 24, Width: 5.65, MaxPoints: 500,
		},
		{
			Name: XM90, Role: domain.RoleExpansion, Price: prices[XM90], PowerAC: 50, Width: 8.5, Bound: BoundXM90,
			Capacity: domain.Capacity{BO: 8, UI: 16, UIAO: 8},
		},
		{
			Name: XM70, Role: domain.RoleExpansion, Price: prices[XM70], PowerAC: 26, Width: 8.5, Bound: BoundXM70,
			Capacity: domain.Capacity{BO: 4, UI: 8, UIAO: 6, Pressure: 1},
		},
		{
			Name: XM30, Role: domain.RoleExpansion, Price: prices[XM30], PowerDC: 120, Width: 2.11, Bound: BoundXM30,
			Capacity: domain.Capacity{UIAO: 4},
		},
		{
			Name: XM32, Role: domain.RoleExpansion, Price: prices[XM32], PowerDC: 100, Width: 2.82, Bound: BoundXM32,
			Capacity: domain.Capacity{BO: 4},
		},
		{
			Name: PM014, Role: domain.RoleAux, Price: prices[PM014], PowerAC: 20, Width: 5,
		},
	}
}

// Default returns the built-in catalog priced with DefaultPrices.
func Default() *Catalog {
	c, err := New(DefaultModules(), DefaultAuxRule())
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}
