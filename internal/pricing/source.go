package pricing

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
)

// Result is the outcome of a price lookup. When UsedFallback is true,
// Prices holds the fallback table and Err explains why.
type Result struct {
	Prices       map[string]float64
	UsedFallback bool
	Err          error
}

// Fetcher returns a raw price list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Source resolves module prices from a remote list.
type Source struct {
	fetcher  Fetcher
	fallback map[string]float64
	known    map[string]bool
	logger   *zap.Logger
}

// SourceOption configures Source.
type SourceOption func(*Source)

// WithFallback replaces the built-in fallback table.
func WithFallback(prices map[string]float64) SourceOption {
	return func(s *Source) {
		s.fallback = maps.Clone(prices)
	}
}

// WithKnownModules sets the names matched in the first column.
func WithKnownModules(names []string) SourceOption {
	return func(s *Source) {
		s.known = make(map[string]bool, len(names))
		for _, n := range names {
			s.known[n] = true
		}
	}
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *zap.Logger) SourceOption {
	return func(s *Source) {
		s.logger = l
	}
}

// NewSource creates a Source reading from fetcher.
func NewSource(fetcher Fetcher, opts ...SourceOption) *Source {
	s := &Source{
		fetcher:  fetcher,
		fallback: catalog.DefaultPrices(),
		logger:   zap.NewNop(),
	}
	WithKnownModules(catalog.PriceListOrder)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prices fetches and parses the list. Fetched prices are layered over the
// fallback table so modules missing from the list keep a price.
func (s *Source) Prices(ctx context.Context) Result {
	if s.fetcher == nil {
		return s.fail(fmt.Errorf("%w: no price list configured", domain.ErrPriceSourceUnavailable))
	}

	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("%w: fetch: %v", domain.ErrPriceSourceUnavailable, err))
	}

	fetched, err := Parse(data, s.known)
	if err != nil {
		return s.fail(fmt.Errorf("%w: parse: %v", domain.ErrPriceSourceUnavailable, err))
	}

	prices := maps.Clone(s.fallback)
	maps.Copy(prices, fetched)
	return Result{Prices: prices}
}

func (s *Source) fail(err error) Result {
	s.logger.Warn("using fallback prices", zap.Error(err))
	return Result{
		Prices:       maps.Clone(s.fallback),
		UsedFallback: true,
		Err:          err,
	}
}

// Static serves a fixed table without fallback.
type Static map[string]float64

// Prices returns a copy of the table.
func (s Static) Prices(context.Context) Result {
	return Result{Prices: maps.Clone(map[string]float64(s))}
}
