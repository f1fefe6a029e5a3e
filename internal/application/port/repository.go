package port

import (
	"context"

	"mxarb/internal/domain/model"
)

// Market names used as catalogue keys.
const (
	MarketSpot    = "spot"
	MarketFutures = "futures"
)

type CatalogueStore interface {
	// SaveCatalogue replaces the cached coin list of a market.
	SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error
	// LoadCatalogue returns the cached coin list, sorted. Empty if nothing cached.
	LoadCatalogue(ctx context.Context, market string) ([]string, error)
}

type QuoteRepository interface {
	UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error
}

type Repository interface {
	CatalogueStore
	QuoteRepository

	// Connection management
	Close() error
}
