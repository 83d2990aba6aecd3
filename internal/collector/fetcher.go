package collector

import (
	"context"

	"FriendlyTicker/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	// FetchDailyHistory returns up to days daily observations for the
	// symbol, ordered oldest to newest.
	FetchDailyHistory(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	Name() string
}
