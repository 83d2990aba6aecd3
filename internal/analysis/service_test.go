package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FriendlyTicker/internal/collector"
	"FriendlyTicker/internal/model"
	"FriendlyTicker/internal/momentum"
)

type stubSource struct {
	points []model.PricePoint
	err    error
}

func (s *stubSource) History(_ context.Context, _ string) ([]model.PricePoint, error) {
	return s.points, s.err
}

func rising(n int) []model.PricePoint {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{Close: 100 + float64(i)*0.4}
	}
	return pts
}

func newTestService(src HistorySource) *Service {
	svc := NewService(src, zerolog.Nop())
	svc.clock = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestAnalyze_InvalidTicker(t *testing.T) {
	svc := newTestService(&stubSource{})

	report := svc.Analyze(context.Background(), "not a ticker!")

	assert.False(t, report.OK)
	assert.NotEmpty(t, report.Error)
	assert.Nil(t, report.Momentum)
	assert.Nil(t, report.Signals.Regime)
	assert.Equal(t, "2026-08-27T12:00:00Z", report.AsOf)
}

func TestAnalyze_InsufficientHistory(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("%w: TINY has 5 days", collector.ErrInsufficientHistory)}
	svc := newTestService(src)

	report := svc.Analyze(context.Background(), "tiny")

	assert.False(t, report.OK)
	assert.Equal(t, "TINY", report.Ticker, "ticker is normalized even on failure")
	assert.Equal(t, "Ticker not found or insufficient price history.", report.Error)
}

func TestAnalyze_FetchFailure(t *testing.T) {
	svc := newTestService(&stubSource{err: errors.New("connection refused")})

	report := svc.Analyze(context.Background(), "AAPL")

	assert.False(t, report.OK)
	assert.Equal(t, "We couldn't load recent price data for this ticker right now.", report.Error)
}

func TestAnalyze_SignalsMirrorResult(t *testing.T) {
	svc := newTestService(&stubSource{points: rising(250)})

	report := svc.Analyze(context.Background(), " aapl ")

	require.True(t, report.OK)
	require.NotNil(t, report.Momentum)
	assert.Equal(t, "AAPL", report.Ticker)
	assert.Empty(t, report.Error)

	require.NotNil(t, report.Signals.Regime)
	require.NotNil(t, report.Signals.TrendScore)
	require.NotNil(t, report.Signals.MomentumDecay)
	assert.Equal(t, report.Momentum.Label, *report.Signals.Regime)
	assert.Equal(t, report.Momentum.Score, *report.Signals.TrendScore)
	assert.Equal(t, report.Momentum.DeltaSinceClose, report.Signals.Delta1D)
	assert.Equal(t, report.Momentum.MomentumDecay, *report.Signals.MomentumDecay)
	assert.Equal(t, momentum.LabelUptrend, *report.Signals.Regime)
}
