package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricePointUnmarshal(t *testing.T) {
	raw := `[
		100.5,
		{"close": 101.25, "volume": 5000},
		{"price": 99.0},
		{"close": "not-a-number"},
		"garbage",
		{"volume": 1234}
	]`

	var pts []PricePoint
	require.NoError(t, json.Unmarshal([]byte(raw), &pts))
	require.Len(t, pts, 6)

	assert.Equal(t, PricePoint{Close: 100.5}, pts[0], "bare number is a volumeless close")
	assert.Equal(t, PricePoint{Close: 101.25, Volume: 5000, HasVolume: true}, pts[1])
	assert.Equal(t, PricePoint{Close: 99.0}, pts[2], "price key is an alias for close")
	assert.Equal(t, PricePoint{}, pts[3], "malformed record decodes to the invalid zero point")
	assert.Equal(t, PricePoint{}, pts[4])
	assert.Equal(t, PricePoint{Volume: 1234, HasVolume: true}, pts[5], "volume without close is still invalid")
}

func TestPricePointMarshal(t *testing.T) {
	withVol, err := json.Marshal(PricePoint{Close: 42.5, Volume: 100, HasVolume: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"close": 42.5, "volume": 100}`, string(withVol))

	bare, err := json.Marshal(PricePoint{Close: 42.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"close": 42.5}`, string(bare))
}
