package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mxarb/internal/domain/model"
)

type mockQuoteRepo struct {
	mu    sync.Mutex
	coins []string
}

func (m *mockQuoteRepo) UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins = append(m.coins, msg.Symbol)
	return nil
}

func (m *mockQuoteRepo) written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.coins...)
}

func TestMirrorServiceDropsWhenFull(t *testing.T) {
	m := NewMirrorService(&mockQuoteRepo{}, 1)

	assert.True(t, m.TryOffer(&model.PriceMessage{Symbol: "BTC"}))
	assert.False(t, m.TryOffer(&model.PriceMessage{Symbol: "ETH"}))
}

func TestMirrorServiceRun(t *testing.T) {
	repo := &mockQuoteRepo{}
	m := NewMirrorService(repo, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.Offer(&model.PriceMessage{Symbol: "BTC"})
	m.Offer(&model.PriceMessage{Symbol: "ETH"})

	assert.Eventually(t, func() bool { return len(repo.written()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"BTC", "ETH"}, repo.written())

	cancel()
	<-done
}
