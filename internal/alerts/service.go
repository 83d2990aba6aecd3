// Package alerts evaluates subscribed tickers on a schedule and notifies
// subscribers when a ticker's regime, trend strength or momentum pressure
// changes. It alerts on transitions, never on levels, so a stock sitting at
// score 80 for a month stays quiet.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"FriendlyTicker/internal/analysis"
	"FriendlyTicker/internal/momentum"
)

// Trend strength buckets derived from the 0-100 score. Bucket moves are what
// trigger alerts, not raw score wiggle.
const (
	bucketStrong   = "strong"
	bucketModerate = "moderate"
	bucketWeak     = "weak"
	bucketUnknown  = "unknown"
)

// Triggered is one alert ready for delivery.
type Triggered struct {
	Email   string
	Ticker  string
	Signals analysis.Signals
	Reasons []string
}

// Service evaluates enabled alert rules against fresh analysis.
type Service struct {
	store    *Store
	analyzer analysis.Analyzer
	cooldown time.Duration
	clock    func() time.Time
	log      zerolog.Logger
}

// NewService creates the evaluator. cooldown is the minimum gap between two
// alerts for the same (email, ticker) pair.
func NewService(store *Store, analyzer analysis.Analyzer, cooldown time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		analyzer: analyzer,
		cooldown: cooldown,
		clock:    time.Now,
		log:      log.With().Str("component", "alerts").Logger(),
	}
}

// RunOnce evaluates every enabled rule and returns the alerts that should be
// delivered. Analysis runs at most once per ticker per call; per-rule failures
// are logged and skipped so one bad symbol cannot stall the whole sweep.
func (s *Service) RunOnce(ctx context.Context) ([]Triggered, error) {
	rules, err := s.store.Rules(true)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	reports := make(map[string]analysis.Report)
	var triggered []Triggered

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return triggered, err
		}

		report, ok := reports[rule.Ticker]
		if !ok {
			report = s.analyzer.Analyze(ctx, rule.Ticker)
			reports[rule.Ticker] = report
		}

		tr, err := s.evaluate(rule, report)
		if err != nil {
			s.log.Error().Err(err).Str("ticker", rule.Ticker).Str("email", rule.Email).Msg("rule evaluation failed")
			continue
		}
		if tr != nil {
			triggered = append(triggered, *tr)
		}
	}

	s.log.Info().Int("rules", len(rules)).Int("triggered", len(triggered)).Msg("alert sweep finished")
	return triggered, nil
}

// evaluate compares the fresh signals against the remembered state for one
// rule and decides whether to alert. The first sighting of a pair seeds state
// without alerting.
func (s *Service) evaluate(rule Rule, report analysis.Report) (*Triggered, error) {
	sig := report.Signals
	regime := regimeString(sig.Regime)
	bucket := trendBucket(sig.TrendScore)
	decay := decayString(sig.MomentumDecay)

	prev, err := s.store.GetState(rule.Email, rule.Ticker)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		if err := s.store.UpsertState(rule.Email, rule.Ticker, regime, bucket, decay); err != nil {
			return nil, err
		}
		return nil, nil
	}

	now := s.clock()
	if prev.LastSentAt != nil && now.Sub(*prev.LastSentAt) < s.cooldown {
		return nil, nil
	}

	var reasons []string
	if regime != "" && regime != prev.LastRegime {
		reasons = append(reasons, fmt.Sprintf("Regime changed: %s → %s", orDash(prev.LastRegime), regime))
	}
	if bucket != prev.LastTrendBucket {
		reasons = append(reasons, fmt.Sprintf("Trend strength changed to %s", bucket))
	}
	// Only worsening pressure alerts; recovery back to Stable stays quiet.
	if decay != "" && decayRank(decay) > decayRank(prev.LastDecay) {
		reasons = append(reasons, fmt.Sprintf("Momentum decay: %s", decay))
	}

	if len(reasons) > 0 {
		if err := s.store.UpdateLastSent(rule.Email, rule.Ticker, now); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpsertState(rule.Email, rule.Ticker, regime, bucket, decay); err != nil {
		return nil, err
	}
	if len(reasons) == 0 {
		return nil, nil
	}

	return &Triggered{
		Email:   rule.Email,
		Ticker:  rule.Ticker,
		Signals: sig,
		Reasons: reasons,
	}, nil
}

func trendBucket(score *int) string {
	switch {
	case score == nil:
		return bucketUnknown
	case *score >= 70:
		return bucketStrong
	case *score >= 50:
		return bucketModerate
	default:
		return bucketWeak
	}
}

func decayRank(decay string) int {
	switch momentum.Decay(decay) {
	case momentum.DecayEasing:
		return 1
	case momentum.DecayElevated:
		return 2
	default:
		return 0
	}
}

func regimeString(l *momentum.Label) string {
	if l == nil {
		return ""
	}
	return string(*l)
}

func decayString(d *momentum.Decay) string {
	if d == nil {
		return ""
	}
	return string(*d)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
