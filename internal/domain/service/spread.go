package service

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"mxarb/internal/domain"
	"mxarb/internal/domain/model"
)

// SpreadPlaces is the number of fractional digits kept on both spreads.
const SpreadPlaces = 6

var (
	ErrIncompleteQuote = errors.New("quote incomplete")
	ErrZeroDenominator = errors.New("spread denominator is zero")
	ErrNonFinite       = errors.New("spread is not finite")
)

// Spread derives the entry and exit spreads in percent:
//
//	entry = (futBid - spotAsk) / spotAsk * 100
//	exit  = (spotBid - futAsk) / futAsk * 100
func Spread(q domain.Quote) (entry, exit float64, err error) {
	if !q.Complete() {
		return 0, 0, ErrIncompleteQuote
	}
	if q.Spot.Ask == 0 || q.Futures.Ask == 0 {
		return 0, 0, ErrZeroDenominator
	}

	entry = (q.Futures.Bid - q.Spot.Ask) / q.Spot.Ask * 100
	exit = (q.Spot.Bid - q.Futures.Ask) / q.Futures.Ask * 100
	if !finite(entry) || !finite(exit) {
		return 0, 0, ErrNonFinite
	}
	return round(entry), round(exit), nil
}

// BuildPriceMessage returns the downstream message for a complete quote.
func BuildPriceMessage(coin string, q domain.Quote) (*model.PriceMessage, error) {
	entry, exit, err := Spread(q)
	if err != nil {
		return nil, err
	}
	return &model.PriceMessage{
		Type:        model.TypePrice,
		Symbol:      coin,
		SpotAsk:     q.Spot.Ask,
		SpotBid:     q.Spot.Bid,
		FutAsk:      q.Futures.Ask,
		FutBid:      q.Futures.Bid,
		EntrySpread: entry,
		ExitSpread:  exit,
	}, nil
}

func round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(SpreadPlaces).Float64()
	return f
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
