package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/orchestrator"
)

var settings = orchestrator.BatchRequest{
	Base:       catalog.S500,
	Expansions: []string{catalog.XM90, catalog.XM70, catalog.XM30, catalog.XM32},
	IncludeAux: true,
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "systems.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func newPipeline(outDir string) *BatchPipeline {
	orch := orchestrator.New(orchestrator.Options{
		NewID: func() string { return "run-fixed" },
		Clock: func() time.Time { return time.UnixMilli(0) },
	})
	return NewBatchPipeline(orch, outDir).WithClock(func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	})
}

func TestBatchPipeline_Run(t *testing.T) {
	input := writeInput(t, "System Name,BO,BI,UI,AO,AI,PRESSURE\nAHU-1,9,0,2,0,5,2\nAHU-2,13,0,0,0,0,0\n")
	outDir := t.TempDir()

	res, err := newPipeline(outDir).Run(context.Background(), input, settings)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Verified {
		t.Error("expected verification to pass")
	}

	data, err := os.ReadFile(filepath.Join(outDir, SelectionsFile))
	if err != nil {
		t.Fatalf("read selections: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and total, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "System Name,S500,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasSuffix(lines[3], ",2920.00,14.12") {
		t.Errorf("unexpected total row %q", lines[3])
	}

	normalized, err := os.ReadFile(res.DemandPath)
	if err != nil {
		t.Fatalf("read normalized demand: %v", err)
	}
	if want := "System Name,BO,BI,UI,AO,AI,PRESSURE\nAHU-1,9,0,2,0,5,2\nAHU-2,13,0,0,0,0,0\n"; string(normalized) != want {
		t.Errorf("normalized demand = %q, want %q", normalized, want)
	}

	md, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"# Building Sizing", "Generated: 2024-01-02T03:04:05Z", "| Run ID | run-fixed |", "## Verification"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBatchPipeline_Deterministic(t *testing.T) {
	input := writeInput(t, "AHU-1,9,0,2,0,5,2\nAHU-2,4,4,4,4,4,0\n")
	dirA, dirB := t.TempDir(), t.TempDir()

	if _, err := newPipeline(dirA).Run(context.Background(), input, settings); err != nil {
		t.Fatalf("Run A: %v", err)
	}
	if _, err := newPipeline(dirB).Run(context.Background(), input, settings); err != nil {
		t.Fatalf("Run B: %v", err)
	}

	for _, name := range []string{SelectionsFile, ReportFile} {
		a, _ := os.ReadFile(filepath.Join(dirA, name))
		b, _ := os.ReadFile(filepath.Join(dirB, name))
		if string(a) != string(b) {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestBatchPipeline_Errors(t *testing.T) {
	outDir := t.TempDir()

	_, err := newPipeline(outDir).Run(context.Background(), filepath.Join(outDir, "missing.csv"), settings)
	if err == nil {
		t.Error("expected error for missing input")
	}

	input := writeInput(t, "AHU-1,200,0,0,0,0,0\nAHU-2,1,0,0,0,0,0\n")
	_, err = newPipeline(outDir).Run(context.Background(), input, settings)
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Errorf("expected capacity error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(outDir, SelectionsFile)); !os.IsNotExist(statErr) {
		t.Error("no output expected after a failed batch")
	}
}
