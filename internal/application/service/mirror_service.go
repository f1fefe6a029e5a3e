package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

const defaultMirrorQueue = 1024

// MirrorService copies broadcast prices into a QuoteRepository from a single
// worker. The queue is bounded; when it is full new prices are dropped.
type MirrorService struct {
	repo    port.QuoteRepository
	queue   chan *model.PriceMessage
	timeout time.Duration
}

func NewMirrorService(repo port.QuoteRepository, size int) *MirrorService {
	if size <= 0 {
		size = defaultMirrorQueue
	}
	return &MirrorService{
		repo:    repo,
		queue:   make(chan *model.PriceMessage, size),
		timeout: 2 * time.Second,
	}
}

// Offer enqueues msg without blocking; msg is dropped when the queue is full.
func (m *MirrorService) Offer(msg *model.PriceMessage) {
	m.TryOffer(msg)
}

// TryOffer is Offer reporting whether msg was queued.
func (m *MirrorService) TryOffer(msg *model.PriceMessage) bool {
	select {
	case m.queue <- msg:
		return true
	default:
		return false
	}
}

// Run drains the queue until ctx is done.
func (m *MirrorService) Run(ctx context.Context) error {
	var failed int
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-m.queue:
			wctx, cancel := context.WithTimeout(ctx, m.timeout)
			err := m.repo.UpsertLatestQuote(wctx, msg, time.Now().UnixMilli())
			cancel()
			if err != nil {
				failed++
				log.Warn().Err(err).Str("coin", msg.Symbol).Int("failed", failed).Msg("quote mirror write failed")
			}
		}
	}
}

var _ QuoteMirror = (*MirrorService)(nil)
