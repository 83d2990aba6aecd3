package momentum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FriendlyTicker/internal/model"
)

func vol(close, volume float64) model.PricePoint {
	return model.PricePoint{Close: close, Volume: volume, HasVolume: true}
}

func TestExtractSeries(t *testing.T) {
	clean := make([]model.PricePoint, 0, 12)
	for i := 0; i < 12; i++ {
		clean = append(clean, vol(100+float64(i), 1000))
	}

	t.Run("keeps matching volumes", func(t *testing.T) {
		prices, volumes := extractSeries(clean)
		assert.Len(t, prices, 12)
		assert.Len(t, volumes, 12)
	})

	t.Run("one missing volume drops all volumes", func(t *testing.T) {
		in := append([]model.PricePoint{}, clean...)
		in[5] = model.PricePoint{Close: 105}
		prices, volumes := extractSeries(in)
		assert.Len(t, prices, 12)
		assert.Nil(t, volumes)
	})

	t.Run("negative volume drops all volumes", func(t *testing.T) {
		in := append([]model.PricePoint{}, clean...)
		in[3] = vol(103, -1)
		prices, volumes := extractSeries(in)
		assert.Len(t, prices, 12)
		assert.Nil(t, volumes)
	})

	t.Run("invalid close is skipped and poisons volumes", func(t *testing.T) {
		in := append([]model.PricePoint{}, clean...)
		in[7] = vol(0, 1000)
		prices, volumes := extractSeries(in)
		assert.Len(t, prices, 11, "invalid record's price is dropped")
		assert.Nil(t, volumes, "but its presence alone discards volumes")
	})

	t.Run("fewer than ten valid prices yields nothing", func(t *testing.T) {
		prices, volumes := extractSeries(clean[:9])
		assert.Nil(t, prices)
		assert.Nil(t, volumes)
	})

	t.Run("bare prices carry no volume", func(t *testing.T) {
		in := make([]model.PricePoint, 15)
		for i := range in {
			in[i] = model.PricePoint{Close: 50 + float64(i)}
		}
		prices, volumes := extractSeries(in)
		assert.Len(t, prices, 15)
		assert.Nil(t, volumes)
	})
}
