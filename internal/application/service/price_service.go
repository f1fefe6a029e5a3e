package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/application/usecase/monitor"
	"mxarb/internal/domain/model"
	dsvc "mxarb/internal/domain/service"
)

// QuoteMirror receives every broadcast price. Offer must not block.
type QuoteMirror interface {
	Offer(msg *model.PriceMessage)
}

// PriceService is the ingestion path: tick -> price table -> spread -> sink.
type PriceService struct {
	state  *monitor.State
	sink   port.Sink
	mirror QuoteMirror
}

func NewPriceService(state *monitor.State, sink port.Sink, mirror QuoteMirror) *PriceService {
	return &PriceService{state: state, sink: sink, mirror: mirror}
}

// HandleTick applies one tick. It returns the broadcast message, or nil when
// the quote is still incomplete. A complete quote whose spread cannot be
// derived returns the spread error and is not broadcast.
func (s *PriceService) HandleTick(ctx context.Context, t port.Tick) (*model.PriceMessage, error) {
	q := s.state.Apply(t.Coin, t.Side, t.Ask, t.Bid)
	if !q.Complete() {
		return nil, nil
	}

	msg, err := dsvc.BuildPriceMessage(t.Coin, q)
	if err != nil {
		log.Debug().Err(err).Str("coin", t.Coin).Str("feed", t.Feed).Msg("spread rejected")
		return nil, err
	}

	if _, err := s.sink.Broadcast(msg); err != nil {
		log.Error().Err(err).Str("coin", t.Coin).Msg("broadcast failed")
	}
	if s.mirror != nil {
		s.mirror.Offer(msg)
	}
	return msg, nil
}

// Snapshot returns a price message for every quote that is complete and
// derivable, ordered by coin.
func (s *PriceService) Snapshot() []*model.PriceMessage {
	snap := s.state.Snapshot()
	coins := make([]string, 0, len(snap))
	for coin := range snap {
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	out := make([]*model.PriceMessage, 0, len(coins))
	for _, coin := range coins {
		q := snap[coin]
		if !q.Complete() {
			continue
		}
		msg, err := dsvc.BuildPriceMessage(coin, q)
		if err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// Tracked is the number of coins with at least one side known.
func (s *PriceService) Tracked() int {
	return s.state.Len()
}
