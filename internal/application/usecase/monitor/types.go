package monitor

import (
	"context"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

type PriceFeed = port.PriceFeed

// TickHandler folds one tick into the price table and fans out the result.
type TickHandler interface {
	HandleTick(ctx context.Context, t port.Tick) (*model.PriceMessage, error)
}

// FeedBinding pairs a feed with the coins it subscribes to at startup.
type FeedBinding struct {
	Feed  PriceFeed
	Coins []string
}
