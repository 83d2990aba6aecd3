package momentum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FriendlyTicker/internal/model"
)

// ramp builds n bare closes moving linearly from first to last.
func ramp(n int, first, last float64) []model.PricePoint {
	pts := make([]model.PricePoint, n)
	step := (last - first) / float64(n-1)
	for i := range pts {
		pts[i] = model.PricePoint{Close: first + float64(i)*step}
	}
	return pts
}

func flat(n int, price float64) []model.PricePoint {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{Close: price}
	}
	return pts
}

func withVolume(pts []model.PricePoint, vol float64) []model.PricePoint {
	out := make([]model.PricePoint, len(pts))
	for i, p := range pts {
		p.Volume = vol
		p.HasVolume = true
		out[i] = p
	}
	return out
}

func TestCompute_BoundsHoldForAllInputs(t *testing.T) {
	inputs := map[string][]model.PricePoint{
		"linear up":    ramp(250, 100, 200),
		"linear down":  ramp(250, 200, 100),
		"flat":         flat(250, 100),
		"short":        ramp(25, 50, 55),
		"with volume":  withVolume(ramp(120, 80, 95), 1_000_000),
		"choppy": {
			{Close: 10}, {Close: 20}, {Close: 5}, {Close: 25}, {Close: 3},
			{Close: 30}, {Close: 8}, {Close: 22}, {Close: 11}, {Close: 19},
			{Close: 6}, {Close: 27},
		},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			res := Compute(in)

			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
			for _, s := range []float64{
				res.Components.Subscores.Structure,
				res.Components.Subscores.Momentum,
				res.Components.Subscores.Risk,
				res.Components.Subscores.Participation,
			} {
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 1.0)
			}
			assert.Contains(t, []Label{LabelUptrend, LabelSideways, LabelDowntrend}, res.Label)
			assert.Contains(t, []Decay{DecayStable, DecayEasing, DecayElevated}, res.MomentumDecay)
		})
	}
}

func TestCompute_RiskCapBoundsScore(t *testing.T) {
	// Violent alternation: log-return volatility and drawdown both blow past
	// the scoring bands, so the risk subscore pins at zero and the cap at 30.
	pts := make([]model.PricePoint, 120)
	for i := range pts {
		if i%2 == 0 {
			pts[i] = model.PricePoint{Close: 100}
		} else {
			pts[i] = model.PricePoint{Close: 60}
		}
	}

	res := Compute(pts)
	require.Equal(t, 0.0, res.Components.Subscores.Risk)
	assert.LessOrEqual(t, res.Score, 30)
}

func TestCompute_LabelConsistency(t *testing.T) {
	inputs := [][]model.PricePoint{
		ramp(250, 100, 200),
		ramp(250, 200, 100),
		flat(250, 100),
		withVolume(ramp(200, 50, 120), 500_000),
		ramp(60, 90, 100),
	}

	for _, in := range inputs {
		res := Compute(in)
		structure := res.Components.Subscores.Structure
		switch res.Label {
		case LabelUptrend:
			assert.GreaterOrEqual(t, res.Score, 60)
			assert.GreaterOrEqual(t, structure, 0.549)
		case LabelDowntrend:
			assert.LessOrEqual(t, res.Score, 40)
			assert.LessOrEqual(t, structure, 0.451)
		}
	}
}

func TestCompute_MonotoneStructureIsPerfect(t *testing.T) {
	res := Compute(ramp(250, 100, 200))
	assert.Equal(t, 1.0, res.Components.Subscores.Structure)
}

func TestCompute_InsufficientDataIsNeutral(t *testing.T) {
	tests := []struct {
		name string
		in   []model.PricePoint
	}{
		{"empty", nil},
		{"nine prices", ramp(9, 100, 110)},
		{"nine valid among garbage", append(ramp(9, 100, 110), model.PricePoint{Close: -5}, model.PricePoint{Close: 0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.in)

			assert.Equal(t, LabelSideways, res.Label)
			assert.Equal(t, 50, res.Score)
			assert.Equal(t, Subscores{Structure: 0.5, Momentum: 0.5, Risk: 0.5, Participation: 0.5}, res.Components.Subscores)
			assert.False(t, res.Components.HasVolume)
			assert.Equal(t, DecayStable, res.MomentumDecay)
		})
	}
}

func TestCompute_VolumeIsAllOrNothing(t *testing.T) {
	pts := withVolume(ramp(40, 100, 120), 2_000_000)
	pts[17].HasVolume = false // one missing volume poisons the whole series

	res := Compute(pts)
	assert.False(t, res.Components.HasVolume)
	assert.Equal(t, 0.5, res.Components.Subscores.Participation)
}

func TestCompute_DecayStableOnShortSeries(t *testing.T) {
	for _, n := range []int{10, 25, 40} {
		res := Compute(ramp(n, 100, 120))
		assert.Equal(t, DecayStable, res.MomentumDecay, "length %d", n)
	}
}

func TestCompute_DecayFlagsSharpMomentumBreak(t *testing.T) {
	// Long steady climb, then ten days of hard selling: the recent momentum
	// delta dwarfs its own historical variability.
	pts := make([]model.PricePoint, 0, 210)
	price := 100.0
	for i := 0; i < 200; i++ {
		pts = append(pts, model.PricePoint{Close: price})
		price *= 1.005
	}
	for i := 0; i < 10; i++ {
		price *= 0.97
		pts = append(pts, model.PricePoint{Close: price})
	}

	res := Compute(pts)
	assert.Contains(t, []Decay{DecayEasing, DecayElevated}, res.MomentumDecay)
}

func TestCompute_LinearUptrendExample(t *testing.T) {
	res := Compute(ramp(250, 100, 200))

	assert.Equal(t, LabelUptrend, res.Label)
	assert.GreaterOrEqual(t, res.Score, 80)
	assert.False(t, res.Components.HasVolume)
	assert.Equal(t, 0.5, res.Components.Subscores.Participation)
}

func TestCompute_FlatSeriesExample(t *testing.T) {
	res := Compute(flat(250, 100.0))

	// Price sits exactly on both moving averages, so every >= comparison
	// passes and only the degenerate range term holds structure below 1:
	// 0.30 + 0.35 + 0.20 + 0.15*0.5 = 0.925.
	assert.Equal(t, 0.925, res.Components.Subscores.Structure)
	assert.Equal(t, LabelUptrend, res.Label)
	assert.Equal(t, 0.0, res.Components.Volatility)
	assert.Equal(t, 0.0, res.Components.MaxDrawdown)
	assert.Equal(t, DecayStable, res.MomentumDecay)
}

func TestCompute_DeltaSinceClose(t *testing.T) {
	full := ramp(250, 100, 200)

	res := Compute(full)
	require.NotNil(t, res.DeltaSinceClose)

	prev := Compute(full[:len(full)-1])
	assert.Equal(t, res.Score-prev.Score, *res.DeltaSinceClose)

	short := Compute(ramp(10, 100, 105))
	assert.Nil(t, short.DeltaSinceClose, "delta needs at least 11 input records")
}

func TestCompute_Deterministic(t *testing.T) {
	in := withVolume(ramp(250, 100, 175), 3_000_000)
	first := Compute(in)
	second := Compute(in)
	assert.Equal(t, first, second)
}
