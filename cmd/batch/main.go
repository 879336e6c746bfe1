// Package main sizes every system listed in a demand CSV.
// Writes selections.csv, demand_normalized.csv and report.md to the output directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"controller-sizer/internal/app"
	"controller-sizer/internal/config"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/ingestion"
	"controller-sizer/internal/logging"
	"controller-sizer/internal/orchestrator"
	"controller-sizer/internal/pipeline"
)

func main() {
	// Parse flags
	fs := config.FlagSet("batch")
	input := fs.String("input", "", "demand CSV (System Name, BO, BI, UI, AO, AI, PRESSURE)")
	template := fs.String("template", "", "write an empty demand CSV to this path and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if *template != "" {
		if err := writeTemplate(*template); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Template written to %s\n", *template)
		return
	}

	if *input == "" && fs.NArg() > 0 {
		*input = fs.Arg(0)
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "--input is required")
		os.Exit(2)
	}

	cfg, err := config.LoadFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *input); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var rows *domain.CapacityExceededRowsError
		if errors.As(err, &rows) {
			for _, name := range rows.Rows {
				fmt.Fprintf(os.Stderr, "  - %s\n", name)
			}
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, input string) error {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Printf("\nReceived signal %v, cancelling batch...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	fmt.Println("=== Batch Sizing ===")

	res, err := pipeline.NewBatchPipeline(a.Orchestrator, cfg.Output.Dir).Run(ctx, input, orchestrator.BatchRequest{
		SparePercent: cfg.Solver.SparePercent,
		Base:         cfg.Solver.Base,
		Expansions:   cfg.Solver.Expansions,
		IncludeAux:   cfg.Solver.IncludeAux,
	})
	if err != nil {
		return err
	}

	batch := res.Run.Result
	fmt.Printf("Batch completed in %v:\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Run ID:      %s\n", res.Run.RunID)
	fmt.Printf("  Systems:     %d\n", len(batch.Rows))
	fmt.Printf("  Selections:  %s\n", res.SelectionsPath)
	fmt.Printf("  Demand:      %s\n", res.DemandPath)
	fmt.Printf("  Report:      %s\n", res.ReportPath)
	if res.Run.UsedFallback {
		fmt.Println("  Prices:      built-in table (price list unavailable)")
	}
	if !res.Verified {
		return errors.New("verification failed, see report")
	}
	return nil
}

func writeTemplate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingestion.WriteTemplate(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
