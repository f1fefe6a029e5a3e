package monitor

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
)

type ServiceDeps struct {
	Feeds   []FeedBinding
	Handler TickHandler
	// Buffer sizes the merged tick channel.
	Buffer int
}

// Service merges all feed channels and hands every tick to the handler
// from a single goroutine, so the table sees one writer per tick order.
type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Buffer <= 0 {
		deps.Buffer = 1024
	}
	return &Service{deps: deps}
}

func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}
	if s.deps.Handler == nil {
		return errors.New("no tick handler")
	}

	merged := make(chan port.Tick, s.deps.Buffer)

	for _, b := range s.deps.Feeds {
		ch, err := b.Feed.Subscribe(ctx, b.Coins)
		if err != nil {
			return err
		}
		go func(name string, in <-chan port.Tick) {
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-in:
					if !ok {
						log.Debug().Str("feed", name).Msg("feed channel closed")
						return
					}
					select {
					case merged <- t:
					case <-ctx.Done():
						return
					}
				}
			}
		}(b.Feed.Name(), ch)

		log.Info().Str("feed", b.Feed.Name()).Int("coins", len(b.Coins)).Msg("feed started")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-merged:
			// rejected spreads are logged by the handler
			_, _ = s.deps.Handler.HandleTick(ctx, t)
		}
	}
}
