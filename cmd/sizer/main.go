// Package main sizes one system from command-line point counts.
// Prints the non-dominated configurations as Markdown or CSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"controller-sizer/internal/app"
	"controller-sizer/internal/config"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/logging"
	"controller-sizer/internal/reporting"
	"controller-sizer/internal/solver"
)

func main() {
	// Parse flags
	fs := config.FlagSet("sizer")
	counts := make(map[domain.PointKind]*int, len(domain.DemandKinds))
	for _, kind := range domain.DemandKinds {
		counts[kind] = fs.Int(strings.ToLower(string(kind)), 0, fmt.Sprintf("required %s points", kind))
	}
	format := fs.String("format", "markdown", "output format (markdown, csv)")
	limit := fs.Int("limit", 0, "print at most this many rows (0 = all)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if *format != "markdown" && *format != "csv" {
		fmt.Fprintf(os.Stderr, "Unknown format %q\n", *format)
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

	var demand domain.PointDemand
	for kind, n := range counts {
		demand = demand.Set(kind, *n)
	}

	out, err := run(cfg, logger, demand, *format, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrCapacityExceeded) || errors.Is(err, domain.ErrInvalidDemand) {
			os.Exit(3)
		}
		os.Exit(1)
	}
	fmt.Print(out)
}

func run(cfg *config.Config, logger *zap.Logger, demand domain.PointDemand, format string, limit int) (string, error) {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Solver.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, cancelling solve", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	defer a.Close()

	res, err := a.Orchestrator.Solve(ctx, solver.Request{
		Demand:       demand,
		SparePercent: cfg.Solver.SparePercent,
		Base:         cfg.Solver.Base,
		Expansions:   cfg.Solver.Expansions,
		IncludeAux:   cfg.Solver.IncludeAux,
	})
	if err != nil {
		return "", err
	}

	outcome := res.Outcome
	if limit > 0 && len(outcome.Candidates) > limit {
		outcome.Candidates = outcome.Candidates[:limit]
	}

	if format == "csv" {
		return reporting.RenderCSV(reporting.ResultTable(outcome.ResultSet))
	}

	report := reporting.NewGenerator(res.Catalog).SolveReport(reporting.Meta{
		RunID:        res.RunID,
		Fingerprint:  res.Fingerprint,
		Base:         cfg.Solver.Base,
		Expansions:   res.Catalog.SortedNames(cfg.Solver.Expansions),
		SparePercent: cfg.Solver.SparePercent,
		IncludeAux:   cfg.Solver.IncludeAux,
		UsedFallback: res.UsedFallback,
	}, outcome)
	return reporting.RenderMarkdown(report), nil
}
