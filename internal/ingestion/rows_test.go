package ingestion

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"controller-sizer/internal/domain"
)

func TestReadRows_WithHeader(t *testing.T) {
	in := `System Name,BO,BI,UI,AO,AI,PRESSURE
AHU-1,9,0,2,0,5,2
"VAV, North",4,2,6,1,,0
`
	rows, err := ReadRows(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	want := []domain.DemandRow{
		{Name: "AHU-1", Demand: domain.PointDemand{BO: 9, UI: 2, AI: 5, Pressure: 2}},
		{Name: "VAV, North", Demand: domain.PointDemand{BO: 4, BI: 2, UI: 6, AO: 1}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRows_WithoutHeader(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("AHU-1,1,2,3,4,5,6\n\n,7,0,0,0,0,0\n"))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	want := []domain.DemandRow{
		{Name: "AHU-1", Demand: domain.PointDemand{BO: 1, BI: 2, UI: 3, AO: 4, AI: 5, Pressure: 6}},
		{Name: "Row 2", Demand: domain.PointDemand{BO: 7}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRows_ReorderedHeader(t *testing.T) {
	in := "pressure,name,ui,notes\n1,FCU,8,ignored\n"
	rows, err := ReadRows(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	want := []domain.DemandRow{{Name: "FCU", Demand: domain.PointDemand{UI: 8, Pressure: 1}}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRows_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		row      string
		sentinel error
	}{
		{"negative", "System Name,BO\nAHU-1,-1\n", "AHU-1", domain.ErrInvalidDemand},
		{"not a number", "System Name,BO,BI\nAHU-2,1,x\n", "AHU-2", domain.ErrInvalidDemand},
		{"fraction", "AHU-3,1.5,0,0,0,0,0\n", "AHU-3", domain.ErrInvalidDemand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(tt.in))
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			var rowErr *domain.RowError
			if !errors.As(err, &rowErr) || rowErr.Row != tt.row {
				t.Errorf("expected row %q, got %v", tt.row, err)
			}
		})
	}

	if _, err := ReadRows(strings.NewReader("")); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
	if _, err := ReadRows(strings.NewReader("System Name,BO,BI,UI,AO,AI,PRESSURE\n")); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows for header only, got %v", err)
	}
}

func TestReadRows_AcceptsWholeDecimals(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("AHU-1,3.0,0,0,0,0,0\n"))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if rows[0].Demand.BO != 3 {
		t.Errorf("expected BO 3, got %d", rows[0].Demand.BO)
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	if got := buf.String(); got != "System Name,BO,BI,UI,AO,AI,PRESSURE\n" {
		t.Errorf("unexpected template %q", got)
	}
	if _, err := ReadRows(&buf); !errors.Is(err, ErrNoRows) {
		t.Errorf("template should parse as empty, got %v", err)
	}
}

func TestWriteRows_RoundTrip(t *testing.T) {
	rows := []domain.DemandRow{
		{Name: "AHU-1", Demand: domain.PointDemand{BO: 9, UI: 2, AI: 5, Pressure: 2}},
		{Name: "VAV, 2", Demand: domain.PointDemand{AO: 3}},
	}
	var buf bytes.Buffer
	if err := WriteRows(&buf, rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	got, err := ReadRows(&buf)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
