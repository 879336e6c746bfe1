// Package pipeline runs a batch from a demand file to report files.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/ingestion"
	"controller-sizer/internal/orchestrator"
	"controller-sizer/internal/reporting"
)

// Output file names.
const (
	SelectionsFile = "selections.csv"
	DemandFile     = "demand_normalized.csv"
	ReportFile     = "report.md"
)

// BatchPipeline reads demand rows, solves them and writes the results.
type BatchPipeline struct {
	orch      *orchestrator.Orchestrator
	outputDir string
	clock     func() time.Time
}

// NewBatchPipeline creates a pipeline writing into outputDir.
func NewBatchPipeline(orch *orchestrator.Orchestrator, outputDir string) *BatchPipeline {
	return &BatchPipeline{
		orch:      orch,
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *BatchPipeline) WithClock(clock func() time.Time) *BatchPipeline {
	p.clock = clock
	return p
}

// Result lists what a run produced.
type Result struct {
	Run            *orchestrator.BatchRunResult
	SelectionsPath string
	DemandPath     string
	ReportPath     string
	Verified       bool
}

// Run executes the pipeline and writes output files:
// - selections.csv
// - demand_normalized.csv
// - report.md
//
// settings supplies everything but the rows, which come from inputPath.
func (p *BatchPipeline) Run(ctx context.Context, inputPath string, settings orchestrator.BatchRequest) (*Result, error) {
	// 1. Read rows
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open demand file: %w", err)
	}
	rows, err := ingestion.ReadRows(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(inputPath), err)
	}
	settings.Rows = rows

	// 2. Solve
	run, err := p.orch.Batch(ctx, settings)
	if err != nil {
		return nil, err
	}

	// 3. Render
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}

	csvOut, err := reporting.RenderCSV(reporting.BatchTable(*run.Result))
	if err != nil {
		return nil, fmt.Errorf("render selections: %w", err)
	}
	selectionsPath := filepath.Join(p.outputDir, SelectionsFile)
	if err := os.WriteFile(selectionsPath, []byte(csvOut), 0644); err != nil {
		return nil, err
	}

	demandPath := filepath.Join(p.outputDir, DemandFile)
	if err := writeNormalized(demandPath, run.Result.Rows); err != nil {
		return nil, fmt.Errorf("write normalized demand: %w", err)
	}

	report := reporting.NewGenerator(run.Catalog).WithClock(p.clock).BatchReport(reporting.Meta{
		RunID:        run.RunID,
		Fingerprint:  run.Fingerprint,
		Base:         settings.Base,
		Expansions:   run.Catalog.SortedNames(settings.Expansions),
		SparePercent: settings.SparePercent,
		IncludeAux:   settings.IncludeAux,
		UsedFallback: run.UsedFallback,
	}, run.Result)
	reportPath := filepath.Join(p.outputDir, ReportFile)
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return nil, err
	}

	return &Result{
		Run:            run,
		SelectionsPath: selectionsPath,
		DemandPath:     demandPath,
		ReportPath:     reportPath,
		Verified:       report.Verification.Passed,
	}, nil
}

// writeNormalized saves the spare-adjusted demand that was actually sized.
func writeNormalized(path string, selections []domain.RowSelection) error {
	rows := make([]domain.DemandRow, len(selections))
	for i, sel := range selections {
		rows[i] = domain.DemandRow{Name: sel.Name, Demand: sel.Demand}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingestion.WriteRows(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
