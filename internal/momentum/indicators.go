package momentum

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

// normalizeLinear maps x from [lo, hi] onto [0, 1], clamping at the ends.
// A degenerate range yields the neutral 0.5.
func normalizeLinear(x, lo, hi float64) float64 {
	if lo == hi {
		return 0.5
	}
	return clamp01((x - lo) / (hi - lo))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	return stat.Mean(xs, nil)
}

// stdev is the sample standard deviation (n-1 denominator), zero when there
// are fewer than two samples.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.0
	}
	return stat.StdDev(xs, nil)
}

// sma averages the trailing period values, or the whole series when it is
// shorter than the period.
func sma(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0.0
	}
	if len(values) < period {
		return mean(values)
	}
	return mean(values[len(values)-period:])
}

// ema folds an exponential moving average over the window, seeded at its
// first value, with smoothing factor 2/(period+1).
func ema(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0.0
	}
	if period <= 1 {
		return values[len(values)-1]
	}
	k := 2.0 / (float64(period) + 1.0)
	e := values[0]
	for _, v := range values[1:] {
		e = v*k + e*(1.0-k)
	}
	return e
}

// pctChange is the fractional change from a to b, zero when a is zero.
func pctChange(a, b float64) float64 {
	if a == 0 {
		return 0.0
	}
	return (b - a) / a
}

// maxDrawdown is the largest peak-to-trough fractional decline, tracked
// against a running peak.
func maxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0.0
	}
	peak := prices[0]
	mdd := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := (peak - p) / peak; dd > mdd {
				mdd = dd
			}
		}
	}
	return mdd
}

// rsi computes the Wilder-smoothed RSI: the first period diffs seed the
// average gain/loss, the remainder fold in via (prev*(period-1)+new)/period.
// Returns 50 when there are fewer than period+1 prices and 100 when the
// average loss is exactly zero.
func rsi(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		gains = append(gains, math.Max(0.0, diff))
		losses = append(losses, math.Max(0.0, -diff))
	}

	avgGain := mean(gains[:period])
	avgLoss := mean(losses[:period])
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
