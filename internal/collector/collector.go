// Package collector fetches and caches daily price history for the analysis
// pipeline.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"FriendlyTicker/internal/model"
)

// ErrInsufficientHistory marks a symbol for which no usable price history
// could be assembled. It is surfaced to callers before any scoring runs.
var ErrInsufficientHistory = errors.New("ticker not found or insufficient price history")

// IsInsufficientHistory reports whether err stems from missing or too-short
// price history rather than a transport failure.
func IsInsufficientHistory(err error) bool {
	return errors.Is(err, ErrInsufficientHistory)
}

// Collector fetches daily history through a Fetcher, trimming it to the
// configured lookback window and serving repeat lookups from the cache.
type Collector struct {
	fetcher        Fetcher
	cache          *Cache // nil disables caching
	lookbackDays   int
	minHistoryDays int
	log            zerolog.Logger
}

// New creates a Collector.
func New(fetcher Fetcher, cache *Cache, lookbackDays, minHistoryDays int, log zerolog.Logger) *Collector {
	return &Collector{
		fetcher:        fetcher,
		cache:          cache,
		lookbackDays:   lookbackDays,
		minHistoryDays: minHistoryDays,
		log:            log.With().Str("component", "collector").Logger(),
	}
}

// History returns the daily history for symbol, oldest to newest, at most
// lookbackDays long. Histories shorter than minHistoryDays are rejected with
// ErrInsufficientHistory.
func (c *Collector) History(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	if c.cache != nil {
		if points, ok := c.cache.Get(symbol); ok {
			c.log.Debug().Str("symbol", symbol).Msg("serving cached history")
			return points, nil
		}
	}

	points, err := c.fetcher.FetchDailyHistory(ctx, symbol, c.lookbackDays)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Str("source", c.fetcher.Name()).Msg("fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(points) > c.lookbackDays {
		points = points[len(points)-c.lookbackDays:]
	}
	if len(points) < c.minHistoryDays {
		return nil, fmt.Errorf("%w: %s has %d days, need %d", ErrInsufficientHistory, symbol, len(points), c.minHistoryDays)
	}

	if c.cache != nil {
		c.cache.Put(symbol, points)
	}
	return points, nil
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Points []model.PricePoint
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyHistory(_ context.Context, _ string, days int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return m.Points, nil
	}
	points := make([]model.PricePoint, days)
	for i := range points {
		points[i] = model.PricePoint{
			Close:     100 * (1 + float64(i-days/2)*0.001),
			Volume:    1_000_000,
			HasVolume: true,
		}
	}
	return points, nil
}
