package monitor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxarb/internal/domain/model"
)

type staticSource []*model.PriceMessage

func (s staticSource) Snapshot() []*model.PriceMessage { return s }

type recordingWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *recordingWriter) WriteSnapshot(ts time.Time, line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lines)
}

func price(sym string, entry, exit float64) *model.PriceMessage {
	return &model.PriceMessage{Type: model.TypePrice, Symbol: sym, EntrySpread: entry, ExitSpread: exit}
}

func TestFormatterRanksByEntrySpread(t *testing.T) {
	msgs := []*model.PriceMessage{
		price("ADA", -0.1, 0.2),
		price("BTC", 0.5, -1.485149),
		price("SOL", 0.5, -0.3),
		price("ETH", 0.2, -0.4),
	}
	line := NewFormatter(3).Render(msgs)

	assert.Contains(t, line, "[MXARB]")
	assert.Contains(t, line, "E=+0.500%")
	assert.Contains(t, line, "X=-1.485%")
	assert.NotContains(t, line, "ADA")

	btc, sol, eth := strings.Index(line, "BTC"), strings.Index(line, "SOL"), strings.Index(line, "ETH")
	assert.True(t, btc < sol && sol < eth, line)

	// input order untouched
	assert.Equal(t, "ADA", msgs[0].Symbol)
}

func TestFormatterEmpty(t *testing.T) {
	assert.Contains(t, NewFormatter(0).Render(nil), "no complete quotes")
}

func TestReporterWritesPeriodically(t *testing.T) {
	w := &recordingWriter{}
	r := NewReporter(staticSource{price("BTC", 0.5, -1.485149)}, nil, w, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return w.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Contains(t, w.lines[0], "BTC")
}
