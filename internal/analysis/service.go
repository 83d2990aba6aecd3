// Package analysis coordinates validation, data fetching and scoring into a
// single stable report shape for the API and the alert evaluator.
package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"FriendlyTicker/internal/collector"
	"FriendlyTicker/internal/model"
	"FriendlyTicker/internal/momentum"
	"FriendlyTicker/internal/ticker"
)

// Signals is the compact view alert rules and UIs key off.
type Signals struct {
	Regime        *momentum.Label `json:"regime"`
	TrendScore    *int            `json:"trend_score"`
	Delta1D       *int            `json:"delta_1d"`
	MomentumDecay *momentum.Decay `json:"momentum_decay"`
}

// Report is the full analysis result. Its shape is identical on every path;
// missing data shows up as nulls plus a user-facing Error string, never as a
// different schema.
type Report struct {
	OK       bool             `json:"ok"`
	Ticker   string           `json:"ticker"`
	AsOf     string           `json:"as_of"`
	Momentum *momentum.Result `json:"momentum"`
	Signals  Signals          `json:"signals"`
	Error    string           `json:"error,omitempty"`
}

// Analyzer runs the full pipeline for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, rawTicker string) Report
}

// HistorySource supplies daily price history for a symbol.
type HistorySource interface {
	History(ctx context.Context, symbol string) ([]model.PricePoint, error)
}

// Service implements Analyzer on top of a HistorySource.
type Service struct {
	source HistorySource
	clock  func() time.Time
	log    zerolog.Logger
}

// NewService creates the analysis service.
func NewService(source HistorySource, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		clock:  time.Now,
		log:    log.With().Str("component", "analysis").Logger(),
	}
}

// Analyze validates the ticker, loads its history and scores it. Failures
// come back inside the report; the method itself never errors.
func (s *Service) Analyze(ctx context.Context, rawTicker string) Report {
	report := Report{Ticker: rawTicker}

	symbol, err := ticker.Normalize(rawTicker)
	if err != nil {
		report.Error = err.Error()
		report.AsOf = s.asOf()
		return report
	}
	report.Ticker = symbol

	history, err := s.source.History(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", symbol).Msg("history unavailable")
		if collector.IsInsufficientHistory(err) {
			report.Error = "Ticker not found or insufficient price history."
		} else {
			report.Error = "We couldn't load recent price data for this ticker right now."
		}
		report.AsOf = s.asOf()
		return report
	}

	result := momentum.Compute(history)
	report.OK = true
	report.Momentum = &result
	report.Signals = Signals{
		Regime:        &result.Label,
		TrendScore:    &result.Score,
		Delta1D:       result.DeltaSinceClose,
		MomentumDecay: &result.MomentumDecay,
	}
	report.AsOf = s.asOf()
	return report
}

func (s *Service) asOf() string {
	return s.clock().UTC().Format(time.RFC3339)
}
