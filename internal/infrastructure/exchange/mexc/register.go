package mexc

import (
	"mxarb/internal/application/port"
	"mxarb/internal/infrastructure/pricefeed"
)

// Registered feed names.
const (
	SpotFeedName    = "mexc/spot"
	FuturesFeedName = "mexc/futures"
)

func init() {
	pricefeed.Register(SpotFeedName, func(p pricefeed.Params) port.PriceFeed {
		return NewSpotFeed(p.WsURL, p.Catalogue, p.Queue, optionsFrom(p))
	})
	pricefeed.Register(FuturesFeedName, func(p pricefeed.Params) port.PriceFeed {
		return NewFuturesFeed(p.WsURL, p.Catalogue, p.Queue, optionsFrom(p))
	})
}

func optionsFrom(p pricefeed.Params) Options {
	return Options{
		SubscribeDelay: p.SubscribeDelay,
		ReconnectDelay: p.ReconnectDelay,
		PingInterval:   p.PingInterval,
		Buffer:         p.Buffer,
	}
}
