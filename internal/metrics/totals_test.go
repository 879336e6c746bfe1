package metrics

import (
	"errors"
	"testing"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
)

func selection(name, base string, price, width, power float64, aux int, q ...int) domain.RowSelection {
	return domain.RowSelection{
		Name: name,
		Candidate: domain.Candidate{
			Base:       base,
			Quantities: q,
			AuxQty:     aux,
			Leftover:   domain.Capacity{BO: 1, UIAO: 2},
			PowerAC:    power,
			Price:      price,
			Width:      width,
		},
	}
}

func TestTotals_SumsEveryColumn(t *testing.T) {
	schema := catalog.Default().Schema()
	rows := []domain.RowSelection{
		selection("AHU-1", catalog.S500, 2200.10, 14.15, 74, 0, 1, 0, 0, 0),
		selection("AHU-2", catalog.S500, 3050.20, 18.22, 44, 1, 0, 0, 3, 2),
	}

	got, err := Totals(schema, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cols := schema.Columns()
	want := map[string]float64{
		"S500": 2, "UC600": 0, "S800": 0,
		"XM90": 1, "XM70": 0, "XM30": 3, "XM32": 2,
		"PM014": 1,
		"BO":    2, "UIAO": 4,
		"PowerAC": 118, "Price": 5250.30, "Width": 32.37,
	}
	for i, col := range cols {
		if got[i] != want[col] {
			t.Errorf("%s: expected %v, got %v", col, want[col], got[i])
		}
	}
}

func TestTotals_PriceIsSumOfRows(t *testing.T) {
	schema := catalog.Default().Schema()
	rows := []domain.RowSelection{
		selection("a", catalog.UC600, 0.1, 0, 0, 0, 0, 0, 0, 0),
		selection("b", catalog.UC600, 0.2, 0, 0, 0, 0, 0, 0, 0),
	}

	got, err := Totals(schema, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	priceIdx := len(schema.Columns()) - 2
	if got[priceIdx] != 0.3 {
		t.Errorf("expected 0.3, got %v", got[priceIdx])
	}
}

func TestTotals_Empty(t *testing.T) {
	_, err := Totals(catalog.Default().Schema(), nil)
	if !errors.Is(err, ErrNoSelections) {
		t.Errorf("expected ErrNoSelections, got %v", err)
	}
}

func TestModuleCounts(t *testing.T) {
	schema := catalog.Default().Schema()
	rows := []domain.RowSelection{
		selection("a", catalog.S500, 0, 0, 0, 1, 1, 0, 2, 0),
		selection("b", catalog.UC600, 0, 0, 0, 0, 0, 0, 1, 0),
	}

	got := ModuleCounts(schema, rows)
	want := map[string]int{"S500": 1, "UC600": 1, "XM90": 1, "XM30": 3, "PM014": 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, got[k])
		}
	}
}
