// Package momentum computes a bounded health score and trend label for one
// ticker's daily price/volume history.
//
// The score blends four subscores (trend structure, momentum, realized risk,
// volume participation) through a logistic curve, capped by risk. Everything
// here is a pure function of its input: no I/O, no shared state, safe for
// concurrent callers.
package momentum

import (
	"math"

	"FriendlyTicker/internal/model"
)

const (
	// healthWindowDays bounds the scoring window to the most recent points.
	healthWindowDays = 200
	// minSeriesLen is the fewest valid prices worth scoring at all.
	minSeriesLen = 10

	rsiPeriod = 14

	// decayLookbackDays is how far back the momentum subscore is compared
	// against itself for the trend-pressure signal.
	decayLookbackDays = 7
	// decayVolWindow is how many recent momentum deltas estimate the
	// per-ticker delta variability.
	decayVolWindow = 14
)

// Label is the discrete trend regime.
type Label string

const (
	LabelUptrend   Label = "Uptrend"
	LabelSideways  Label = "Sideways"
	LabelDowntrend Label = "Downtrend"
)

// Decay classifies trend pressure: whether recent momentum is weakening.
type Decay string

const (
	DecayStable   Decay = "Stable"
	DecayEasing   Decay = "Easing"
	DecayElevated Decay = "Elevated"
)

// Subscores are the four blended components, each in [0, 1].
type Subscores struct {
	Structure     float64 `json:"structure"`
	Momentum      float64 `json:"momentum"`
	Risk          float64 `json:"risk"`
	Participation float64 `json:"participation"`
}

// Components exposes the subscores plus the raw risk inputs for reporting.
type Components struct {
	Subscores   Subscores `json:"subscores"`
	Volatility  float64   `json:"vol"`
	MaxDrawdown float64   `json:"max_drawdown"`
	HasVolume   bool      `json:"has_volume"`
}

// Result is the full scoring output, rebuilt from scratch on every call.
type Result struct {
	Label           Label      `json:"label"`
	Score           int        `json:"score"`
	DeltaSinceClose *int       `json:"delta_since_close"`
	MomentumDecay   Decay      `json:"momentum_decay"`
	Components      Components `json:"components"`
}

// components is the single-window scoring output, before delta and decay.
type components struct {
	label     Label
	score     int
	subs      Subscores
	vol       float64
	mdd       float64
	hasVolume bool
}

// neutral is the fixed fallback when a series is too short to score.
func neutral() components {
	return components{
		label: LabelSideways,
		score: 50,
		subs:  Subscores{Structure: 0.5, Momentum: 0.5, Risk: 0.5, Participation: 0.5},
	}
}

func computeComponents(history []model.PricePoint) components {
	prices, volumes := extractSeries(history)
	if len(prices) < minSeriesLen {
		return neutral()
	}

	if len(prices) > healthWindowDays {
		prices = prices[len(prices)-healthWindowDays:]
		if volumes != nil {
			volumes = volumes[len(volumes)-healthWindowDays:]
		}
	}

	sStructure := structureSubscore(prices)
	sMomentum := momentumSubscore(prices)
	sRisk, vol, mdd := riskSubscore(prices)
	sPart := 0.5
	if volumes != nil {
		sPart = participationSubscore(prices, volumes)
	}

	blended := clamp01(0.35*sStructure + 0.25*sMomentum + 0.20*sRisk + 0.20*sPart)

	// Logistic curve spreads mid-range blends apart before rounding.
	curved := 1.0 / (1.0 + math.Exp(-6.0*(blended-0.5)))
	score := int(math.Round(100.0 * curved))

	// Risk cap: high realized volatility or drawdown bounds the score no
	// matter how the other subscores look.
	maxScore := int(math.Round(30.0 + 70.0*sRisk))
	if score > maxScore {
		score = maxScore
	}

	label := LabelSideways
	switch {
	case score >= 60 && sStructure >= 0.55:
		label = LabelUptrend
	case score <= 40 && sStructure <= 0.45:
		label = LabelDowntrend
	}

	return components{
		label: label,
		score: score,
		subs: Subscores{
			Structure:     round3(sStructure),
			Momentum:      round3(sMomentum),
			Risk:          round3(sRisk),
			Participation: round3(sPart),
		},
		vol:       round4(vol),
		mdd:       round4(mdd),
		hasVolume: volumes != nil,
	}
}

// Compute scores the given daily history, oldest to newest.
//
// DeltaSinceClose is the score change against the same series with its last
// point removed, present only when the input has at least minSeriesLen+1
// records. MomentumDecay normalizes the recent momentum change by its own
// per-ticker variability, so its thresholds behave consistently across
// quiet and volatile tickers; series shorter than the decay window report
// Stable.
func Compute(history []model.PricePoint) Result {
	now := computeComponents(history)

	var delta *int
	if len(history) >= minSeriesLen+1 {
		prev := computeComponents(history[:len(history)-1])
		d := now.score - prev.score
		delta = &d
	}

	return Result{
		Label:           now.label,
		Score:           now.score,
		DeltaSinceClose: delta,
		MomentumDecay:   computeDecay(history, now.label, now.score),
		Components: Components{
			Subscores:   now.subs,
			Volatility:  now.vol,
			MaxDrawdown: now.mdd,
			HasVolume:   now.hasVolume,
		},
	}
}

func computeDecay(history []model.PricePoint, label Label, score int) Decay {
	prices, _ := extractSeries(history)
	if len(prices) < decayLookbackDays+decayVolWindow+20 {
		return DecayStable
	}

	rawDelta := momentumSubscore(prices) - momentumSubscore(prices[:len(prices)-decayLookbackDays])

	// How big is a momentum delta for this ticker? Sample the same
	// computation at increasing offsets and take the spread.
	var recentDeltas []float64
	for i := 1; i <= decayVolWindow; i++ {
		pNow := prices[:len(prices)-i]
		if len(pNow)-decayLookbackDays < 30 {
			break
		}
		pPast := prices[:len(pNow)-decayLookbackDays]
		recentDeltas = append(recentDeltas, momentumSubscore(pNow)-momentumSubscore(pPast))
	}

	momVol := 0.01
	if len(recentDeltas) >= 5 {
		if sd := stdev(recentDeltas); sd > 0 {
			momVol = sd
		}
	}

	z := rawDelta / momVol

	// Regime-aware sensitivity: chop and late-stage uptrends should show
	// pressure sooner.
	switch {
	case label == LabelSideways:
		z *= 1.25
	case label == LabelUptrend && score > 70:
		z *= 1.15
	}

	switch {
	case z <= -1.25:
		return DecayElevated
	case z <= -0.60:
		return DecayEasing
	default:
		return DecayStable
	}
}
