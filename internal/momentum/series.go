package momentum

import "FriendlyTicker/internal/model"

// extractSeries normalizes raw history into a clean price series and, when
// possible, a matching volume series.
//
// A record is valid only if its close is a positive number. Volume usage is
// all or nothing: one invalid record anywhere, or one valid record without a
// non-negative volume, discards volumes for the whole series even though the
// surviving prices are kept. Fewer than minSeriesLen valid prices yields an
// empty series, which callers must treat as insufficient data.
func extractSeries(history []model.PricePoint) (prices, volumes []float64) {
	hasVol := true
	for _, pt := range history {
		if pt.Close > 0 {
			prices = append(prices, pt.Close)
			if pt.HasVolume && pt.Volume >= 0 {
				volumes = append(volumes, pt.Volume)
			} else {
				hasVol = false
			}
		} else {
			hasVol = false
		}
	}

	if len(prices) < minSeriesLen {
		return nil, nil
	}
	if !hasVol || len(volumes) != len(prices) {
		return prices, nil
	}
	return prices, volumes
}
