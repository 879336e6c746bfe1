package idhash

import (
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"

	"controller-sizer/internal/domain"
)

func sampleInputs() Inputs {
	return Inputs{
		Kind:         domain.RunKindBatch,
		Base:         "S500",
		Expansions:   []string{"XM90", "XM30"},
		IncludeAux:   true,
		SparePercent: 10,
		Rows: []domain.DemandRow{
			{Name: "AHU-1", Demand: domain.PointDemand{BO: 4, UI: 6}},
			{Name: "AHU-2", Demand: domain.PointDemand{AO: 2}},
		},
		Prices: map[string]float64{"S500": 1300, "XM90": 900, "XM30": 300},
	}
}

func TestComputeFingerprint(t *testing.T) {
	fp := ComputeFingerprint(sampleInputs())

	if len(fp) != 64 {
		t.Errorf("expected 64 characters, got %d", len(fp))
	}
	if _, err := hex.DecodeString(fp); err != nil {
		t.Errorf("expected hex fingerprint: %v", err)
	}
}

func TestComputeFingerprint_Determinism(t *testing.T) {
	first := ComputeFingerprint(sampleInputs())
	for i := 0; i < 50; i++ {
		if got := ComputeFingerprint(sampleInputs()); got != first {
			t.Fatalf("iteration %d: fingerprint changed: %s != %s", i, got, first)
		}
	}
}

func TestComputeFingerprint_ExpansionOrderIrrelevant(t *testing.T) {
	a := sampleInputs()
	b := sampleInputs()
	b.Expansions = []string{"XM30", "XM90"}

	if ComputeFingerprint(a) != ComputeFingerprint(b) {
		t.Error("expansion order must not change the fingerprint")
	}
}

func TestComputeFingerprint_Sensitivity(t *testing.T) {
	base := ComputeFingerprint(sampleInputs())

	mutations := map[string]func(*Inputs){
		"kind":   func(in *Inputs) { in.Kind = domain.RunKindSingle },
		"base":   func(in *Inputs) { in.Base = "UC600" },
		"aux":    func(in *Inputs) { in.IncludeAux = false },
		"spare":  func(in *Inputs) { in.SparePercent = 15 },
		"demand": func(in *Inputs) { in.Rows[0].Demand.BO = 5 },
		"rows":   func(in *Inputs) { in.Rows[0], in.Rows[1] = in.Rows[1], in.Rows[0] },
		"price":  func(in *Inputs) { in.Prices["XM90"] = 901 },
	}

	for name, mutate := range mutations {
		in := sampleInputs()
		mutate(&in)
		if ComputeFingerprint(in) == base {
			t.Errorf("%s: fingerprint did not change", name)
		}
	}
}

func TestShortID(t *testing.T) {
	fp := ComputeFingerprint(sampleInputs())

	id, err := ShortID(fp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := base58.Decode(id)
	if err != nil {
		t.Fatalf("short id is not base58: %v", err)
	}
	full, _ := hex.DecodeString(fp)
	if string(raw) != string(full[:8]) {
		t.Error("short id must encode the fingerprint prefix")
	}

	if _, err := ShortID("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
	if _, err := ShortID("abcd"); err == nil {
		t.Error("expected error for short input")
	}
}
