package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controller-sizer/internal/domain"
)

func TestDefault_Layout(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{S500, UC600, S800}, c.Bases())
	assert.Equal(t, []string{XM90, XM70, XM30, XM32}, c.Expansions())
	assert.Equal(t, PM014, c.Aux().Name)

	schema := c.Schema()
	assert.Equal(t, []string{
		"S500", "UC600", "S800",
		"XM90", "XM70", "XM30", "XM32",
		"PM014",
		"BO", "BI", "UI", "AI", "UIAO", "BIAO", "PRESSURE",
		"PowerAC", "Price", "Width",
	}, schema.Columns())
}

func TestDefault_Capacities(t *testing.T) {
	c := Default()

	s500, err := c.Base(S500)
	require.NoError(t, err)
	assert.Equal(t, domain.Capacity{BO: 9, BI: 3, UI: 2, AI: 5, BIAO: 2, Pressure: 2}, s500.Capacity)
	assert.Equal(t, 133, s500.MaxPoints)

	xm90, err := c.Expansion(XM90)
	require.NoError(t, err)
	assert.Equal(t, BoundXM90, xm90.Bound)
	assert.Equal(t, 50.0, xm90.PowerAC)

	xm30, err := c.Expansion(XM30)
	require.NoError(t, err)
	assert.Equal(t, 0.0, xm30.PowerAC)
	assert.Equal(t, 120.0, xm30.PowerDC)
}

func TestCatalog_RoleLookup(t *testing.T) {
	c := Default()

	_, err := c.Base(XM90)
	assert.True(t, errors.Is(err, domain.ErrUnknownModule))

	_, err = c.Expansion("XM99")
	assert.True(t, errors.Is(err, domain.ErrUnknownModule))
}

func TestCatalog_WithPrices(t *testing.T) {
	c := Default()
	priced := c.WithPrices(map[string]float64{XM90: 950.5, "NOPE": 1})

	m, _ := priced.Get(XM90)
	assert.Equal(t, 950.5, m.Price)

	orig, _ := c.Get(XM90)
	assert.Equal(t, 900.0, orig.Price, "original catalog must not change")

	_, ok := priced.Get("NOPE")
	assert.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	base := domain.ModuleSpec{Name: "B", Role: domain.RoleBase, MaxPoints: 10}
	exp := domain.ModuleSpec{Name: "X", Role: domain.RoleExpansion, Bound: 4}
	aux := domain.ModuleSpec{Name: "A", Role: domain.RoleAux}
	rule := AuxRule{Module: "A", PerAux: 11, DirectSlots: 2}

	tests := []struct {
		name    string
		modules []domain.ModuleSpec
		rule    AuxRule
	}{
		{"no base", []domain.ModuleSpec{exp, aux}, rule},
		{"no aux", []domain.ModuleSpec{base, exp}, rule},
		{"duplicate", []domain.ModuleSpec{base, base, aux}, rule},
		{"zero bound", []domain.ModuleSpec{base, {Name: "X", Role: domain.RoleExpansion}, aux}, rule},
		{"zero ceiling", []domain.ModuleSpec{{Name: "B", Role: domain.RoleBase}, aux}, rule},
		{"bad rule module", []domain.ModuleSpec{base, aux}, AuxRule{Module: "B", PerAux: 11}},
		{"bad rule divisor", []domain.ModuleSpec{base, aux}, AuxRule{Module: "A"}},
		{"rule references unknown", []domain.ModuleSpec{base, aux}, AuxRule{Module: "A", PerAux: 11, Low: []string{"Q"}}},
		{"negative capacity", []domain.ModuleSpec{base, {Name: "X", Role: domain.RoleExpansion, Bound: 1, Capacity: domain.Capacity{UI: -1}}, aux}, rule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.modules, tt.rule)
			assert.Error(t, err)
		})
	}

	c, err := New([]domain.ModuleSpec{base, exp, aux}, rule)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, c.Expansions())
}

func TestSortedNames(t *testing.T) {
	c := Default()
	got := c.SortedNames([]string{XM32, "ZZ", XM90, "AA", XM30})
	assert.Equal(t, []string{XM90, XM30, XM32, "AA", "ZZ"}, got)
}

func TestParse_RoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Modules(), c.Modules())
	assert.Equal(t, DefaultAuxRule(), c.AuxRule())
}

func TestParse_CustomCatalog(t *testing.T) {
	doc := []byte(`
modules:
  - name: BARE
    role: base
    price: 100
    max_points: 64
  - name: HX8
    role: expansion
    price: 40
    width: 2
    bound: 4
    capacity:
      UIAO: 8
  - name: PWR
    role: aux
    price: 10
aux_rule:
  module: PWR
  low: [HX8]
  direct_slots: 2
  per_aux: 11
`)
	c, err := Parse(doc)
	require.NoError(t, err)

	hx, err := c.Expansion("HX8")
	require.NoError(t, err)
	assert.Equal(t, 8, hx.Capacity.UIAO)
	assert.Equal(t, 4, hx.Bound)
	assert.Equal(t, "PWR", c.Aux().Name)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("modules: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("modules: []"))
	assert.Error(t, err)
}
