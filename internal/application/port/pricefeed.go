package port

import (
	"context"

	"mxarb/internal/domain"
)

type Tick struct {
	Feed string      // "spot" / "futures"
	Coin string      // "BTC"
	Side domain.Side // which half of the quote this tick writes
	Ask  float64
	Bid  float64
	Ts   int64 // unix ms, local receive time
}

// PriceFeed is a long-running upstream stream. Subscribe starts it with the
// initial watch list; the returned channel closes when ctx is done.
type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, coins []string) (<-chan Tick, error)
}

// CatalogueSource fetches the tradable coins of each market.
type CatalogueSource interface {
	FetchSpot(ctx context.Context) ([]string, error)
	FetchFutures(ctx context.Context) ([]string, error)
}
