// Package app wires configuration into a ready orchestrator.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/config"
	"controller-sizer/internal/events"
	"controller-sizer/internal/observability"
	"controller-sizer/internal/orchestrator"
	"controller-sizer/internal/pricing"
	"controller-sizer/internal/storage"
	chstore "controller-sizer/internal/storage/clickhouse"
	"controller-sizer/internal/storage/memory"
	"controller-sizer/internal/storage/migrations"
	pgstore "controller-sizer/internal/storage/postgres"
)

// App holds the wired components of one process.
type App struct {
	Config       *config.Config
	Catalog      *catalog.Catalog
	Orchestrator *orchestrator.Orchestrator
	Metrics      *observability.Metrics
	Registry     *prometheus.Registry

	cleanup []func()
}

// Close releases stores and the event publisher in reverse order.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// stores holds the run and selection stores.
type stores struct {
	runs       storage.RunStore
	selections storage.SelectionStore
}

// New builds every component named by cfg. Stores without a DSN are kept in
// memory; without Kafka brokers events are kept in memory too.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg}

	cat, err := loadCatalog(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	a.Registry = prometheus.NewRegistry()
	a.Metrics = observability.NewMetrics(observability.DefaultNamespace, a.Registry)

	st, err := a.createStores(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	pub, err := createPublisher(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.cleanup = append(a.cleanup, func() {
		if err := pub.Close(); err != nil {
			log.Warn("close publisher", zap.Error(err))
		}
	})

	a.Orchestrator = orchestrator.New(orchestrator.Options{
		Catalog:        cat,
		Prices:         createPriceSource(cfg, cat, log),
		RunStore:       st.runs,
		SelectionStore: st.selections,
		Publisher:      pub,
		Recorder:       a.Metrics,
		Logger:         log,
		Workers:        cfg.Solver.Workers,
		MaxEnumerated:  cfg.Solver.MaxEnumerated,
	})
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// createPriceSource returns a remote source when a URL is configured.
// The catalog's own prices are the fallback either way.
func createPriceSource(cfg *config.Config, cat *catalog.Catalog, log *zap.Logger) orchestrator.PriceSource {
	if cfg.Pricing.URL == "" {
		return pricing.Static(cat.Prices())
	}
	client := pricing.NewClient(cfg.Pricing.URL,
		pricing.WithTimeout(cfg.Pricing.Timeout),
		pricing.WithMaxRetries(cfg.Pricing.MaxRetries),
	)
	names := make([]string, 0, len(cat.Modules()))
	for _, m := range cat.Modules() {
		names = append(names, m.Name)
	}
	return pricing.NewSource(client,
		pricing.WithFallback(cat.Prices()),
		pricing.WithKnownModules(names),
		pricing.WithLogger(log.Named("pricing")),
	)
}

// createStores opens and migrates the configured databases.
func (a *App) createStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	st := &stores{
		runs:       memory.NewRunStore(),
		selections: memory.NewSelectionStore(),
	}

	// PostgreSQL
	if cfg.Postgres.DSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN,
			pgstore.WithMaxConns(int32(max(cfg.Solver.Workers, 4))),
			pgstore.WithMaxConnIdleTime(5*time.Minute))
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.cleanup = append(a.cleanup, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		st.runs = pgstore.NewRunStore(pool)
		log.Info("runs stored in postgres")
	}

	// ClickHouse
	if cfg.ClickHouse.DSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			return nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		a.cleanup = append(a.cleanup, func() {
			if err := conn.Close(); err != nil {
				log.Warn("close clickhouse", zap.Error(err))
			}
		})
		st.selections = chstore.NewSelectionStore(conn)
		log.Info("selections stored in clickhouse")
	}

	return st, nil
}

func createPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NopPublisher{}, nil
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, log.Named("events"))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	log.Info("run events published to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return pub, nil
}
