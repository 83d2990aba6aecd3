package momentum

import "math"

// structureSubscore measures trend structure: position versus the 50- and
// 200-period moving averages, MA stacking, and where the last price sits in
// the recent 60-point range.
func structureSubscore(prices []float64) float64 {
	p := prices[len(prices)-1]
	ma50 := sma(prices, 50)
	ma200 := sma(prices, 200)

	var above50, above200, maStack float64
	if p >= ma50 {
		above50 = 1.0
	}
	if p >= ma200 {
		above200 = 1.0
	}
	if ma50 >= ma200 {
		maStack = 1.0
	}

	look := min(60, len(prices))
	window := prices[len(prices)-look:]
	lo, hi := window[0], window[0]
	for _, v := range window {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	rangePos := 0.5
	if hi != lo {
		rangePos = clamp01((p - lo) / (hi - lo))
	}

	return clamp01(0.30*above50 + 0.35*above200 + 0.20*maStack + 0.15*rangePos)
}

// momentumSubscore blends RSI proximity to 60, 20-day rate of change, and a
// MACD-like EMA divergence over the trailing 60 points.
func momentumSubscore(prices []float64) float64 {
	r := rsi(prices, rsiPeriod)
	rsiScore := 1.0 - normalizeLinear(math.Abs(r-60.0), 0.0, 30.0)

	var roc20 float64
	if len(prices) >= 21 {
		roc20 = pctChange(prices[len(prices)-21], prices[len(prices)-1])
	} else {
		roc20 = pctChange(prices[0], prices[len(prices)-1])
	}
	rocScore := normalizeLinear(roc20, -0.10, 0.10)

	window := prices
	if len(prices) > 60 {
		window = prices[len(prices)-60:]
	}
	macdLike := pctChange(ema(window, 26), ema(window, 12))
	macdScore := normalizeLinear(macdLike, -0.03, 0.03)

	return clamp01(0.40*rsiScore + 0.40*rocScore + 0.20*macdScore)
}

// riskSubscore scores realized risk from log-return volatility and the max
// drawdown over the trailing 120 points. The raw volatility and drawdown are
// returned alongside for reporting.
func riskSubscore(prices []float64) (score, vol, mdd float64) {
	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		rets = append(rets, math.Log(prices[i]/prices[i-1]))
	}
	vol = stdev(rets)

	ddWindow := prices
	if len(prices) > 120 {
		ddWindow = prices[len(prices)-120:]
	}
	mdd = maxDrawdown(ddWindow)

	volScore := 1.0 - normalizeLinear(vol, 0.008, 0.030)
	ddScore := 1.0 - normalizeLinear(mdd, 0.05, 0.35)
	return clamp01(0.55*volScore + 0.45*ddScore), vol, mdd
}

// participationSubscore measures volume confirmation over the trailing
// min(20, len-1) points: the share of volume on non-down days, plus the last
// volume relative to its recent average. Neutral 0.5 without usable volume.
func participationSubscore(prices, volumes []float64) float64 {
	if len(volumes) == 0 {
		return 0.5
	}
	n := min(20, len(prices)-1)
	if n <= 5 {
		return 0.5
	}

	var upVol, downVol float64
	for i := len(prices) - n; i < len(prices); i++ {
		if prices[i] >= prices[i-1] {
			upVol += volumes[i]
		} else {
			downVol += volumes[i]
		}
	}
	upRatio := 0.5
	if total := upVol + downVol; total > 0 {
		upRatio = upVol / total
	}

	vNow := volumes[len(volumes)-1]
	vAvg := mean(volumes[len(volumes)-(n+1):])
	vRel := 1.0
	if vAvg > 0 {
		vRel = vNow / vAvg
	}
	vScore := normalizeLinear(vRel, 0.7, 1.5)

	return clamp01(0.70*upRatio + 0.30*vScore)
}
