package normalization

import (
	"errors"
	"testing"

	"controller-sizer/internal/domain"
)

func TestNormalize_ZeroSpare(t *testing.T) {
	raw := domain.PointDemand{BO: 9, UI: 2, AI: 5, Pressure: 2}

	got, err := Normalize(raw, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != raw {
		t.Errorf("expected %+v unchanged, got %+v", raw, got)
	}
}

func TestNormalize_RoundsUp(t *testing.T) {
	tests := []struct {
		count int
		spare float64
		want  int
	}{
		{10, 10, 11},
		{10, 15, 12},
		{7, 10, 8},
		{1, 1, 2},
		{0, 50, 0},
		{3, 100, 6},
		{20, 12.5, 23},
	}

	for _, tt := range tests {
		got, err := Normalize(domain.PointDemand{UI: tt.count}, tt.spare)
		if err != nil {
			t.Fatalf("count=%d spare=%v: unexpected error: %v", tt.count, tt.spare, err)
		}
		if got.UI != tt.want {
			t.Errorf("count=%d spare=%v: expected %d, got %d", tt.count, tt.spare, tt.want, got.UI)
		}
	}
}

func TestNormalize_AllKinds(t *testing.T) {
	raw := domain.PointDemand{BO: 10, BI: 10, UI: 10, AI: 10, AO: 10, Pressure: 10}

	got, err := Normalize(raw, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, kind := range domain.DemandKinds {
		if got.Get(kind) != 12 {
			t.Errorf("%s: expected 12, got %d", kind, got.Get(kind))
		}
	}
}

func TestNormalize_Invalid(t *testing.T) {
	if _, err := Normalize(domain.PointDemand{BI: -1}, 0); !errors.Is(err, domain.ErrInvalidDemand) {
		t.Errorf("negative count: expected ErrInvalidDemand, got %v", err)
	}
	if _, err := Normalize(domain.PointDemand{BI: 1}, -5); !errors.Is(err, domain.ErrInvalidDemand) {
		t.Errorf("negative spare: expected ErrInvalidDemand, got %v", err)
	}
}

func TestNormalizeRows(t *testing.T) {
	rows := []domain.DemandRow{
		{Name: "AHU-1", Demand: domain.PointDemand{BO: 10}},
		{Name: "AHU-2", Demand: domain.PointDemand{AO: 5}},
	}

	got, err := NormalizeRows(rows, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Demand.BO != 11 || got[1].Demand.AO != 6 {
		t.Errorf("unexpected rows: %+v", got)
	}
	if rows[0].Demand.BO != 10 {
		t.Error("input rows must not be modified")
	}
}

func TestNormalizeRows_NamesBadRow(t *testing.T) {
	rows := []domain.DemandRow{
		{Name: "ok", Demand: domain.PointDemand{BO: 1}},
		{Name: "broken", Demand: domain.PointDemand{AI: -3}},
	}

	_, err := NormalizeRows(rows, 0)
	var rowErr *domain.RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected RowError, got %v", err)
	}
	if rowErr.Row != "broken" {
		t.Errorf("expected row broken, got %q", rowErr.Row)
	}
	if !errors.Is(err, domain.ErrInvalidDemand) {
		t.Error("expected error to wrap ErrInvalidDemand")
	}
}

func TestNormalize_ExactDecimal(t *testing.T) {
	// 50 * 1.1 is 55.00000000000001 in binary floats.
	tests := []struct {
		count int
		spare float64
		want  int
	}{
		{50, 10, 55},
		{10, 10, 11},
		{40, 5, 42},
	}

	for _, tt := range tests {
		got, err := Normalize(domain.PointDemand{BO: tt.count}, tt.spare)
		if err != nil {
			t.Fatalf("count=%d spare=%v: unexpected error: %v", tt.count, tt.spare, err)
		}
		if got.BO != tt.want {
			t.Errorf("count=%d spare=%v: expected %d, got %d", tt.count, tt.spare, tt.want, got.BO)
		}
	}
}
