package ws

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxarb/internal/domain"
	"mxarb/internal/domain/model"
)

type fakeWatcher struct {
	mu    sync.Mutex
	coins []string
}

func (f *fakeWatcher) Watch(coins ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coins = append(f.coins, coins...)
	return len(coins)
}

func (f *fakeWatcher) watched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.coins...)
}

type staticSnapshots []*model.PriceMessage

func (s staticSnapshots) Snapshot() []*model.PriceMessage { return s }

func dialSession(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var v map[string]any
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

func TestSessionLifecycle(t *testing.T) {
	hub := NewHub()
	watcher := &fakeWatcher{}
	snap := staticSnapshots{{Type: model.TypePrice, Symbol: "BTC", SpotAsk: 100, SpotBid: 99.5, FutAsk: 101, FutBid: 100.5, EntrySpread: 0.5, ExitSpread: -1.485149}}
	cat := domain.NewCatalogue([]string{"BTC", "ETH"}, []string{"BTC"})

	conn := dialSession(t, NewHandler(hub, watcher, snap, cat, Options{}))

	first := readJSON(t, conn)
	assert.Equal(t, "symbols", first["type"])
	assert.Equal(t, []any{"BTC", "ETH"}, first["spot"])
	assert.Equal(t, []any{"BTC"}, first["futures"])

	second := readJSON(t, conn)
	assert.Equal(t, "price", second["type"])
	assert.Equal(t, "BTC", second["symbol"])
	assert.Equal(t, -1.485149, second["exitSpread"])

	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	// live broadcast
	_, err := hub.Broadcast(&model.PriceMessage{Type: model.TypePrice, Symbol: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, "ETH", readJSON(t, conn)["symbol"])

	// watch requests reach the router; junk is ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"dance"}`)))
	req, _ := json.Marshal(model.Request{Action: model.ActionWatch, Symbols: []string{"pepe", "SOL"}})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, req))
	assert.Eventually(t, func() bool { return len(watcher.watched()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"pepe", "SOL"}, watcher.watched())

	// disconnect removes membership
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestSessionSendOverflow(t *testing.T) {
	s := &Session{id: "x", send: make(chan []byte, 1), done: make(chan struct{})}
	require.NoError(t, s.Send([]byte("a")))
	assert.ErrorIs(t, s.Send([]byte("b")), ErrSendOverflow)

	s.Close()
	s.Close()
	assert.ErrorIs(t, s.Send([]byte("c")), ErrClientGone)
}

func TestSessionSnapshotLargerThanSendBuffer(t *testing.T) {
	hub := NewHub()
	snap := make(staticSnapshots, 600)
	for i := range snap {
		snap[i] = &model.PriceMessage{Type: model.TypePrice, Symbol: fmt.Sprintf("C%03d", i)}
	}
	cat := domain.NewCatalogue([]string{"BTC"}, []string{"BTC"})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_, _ = hub.Broadcast(&model.PriceMessage{Type: model.TypePrice, Symbol: "LIVE"})
			time.Sleep(200 * time.Microsecond)
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	conn := dialSession(t, NewHandler(hub, &fakeWatcher{}, snap, cat, Options{SendBuffer: 16}))

	assert.Equal(t, "symbols", readJSON(t, conn)["type"])
	for i := range snap {
		require.Equal(t, fmt.Sprintf("C%03d", i), readJSON(t, conn)["symbol"])
	}
	assert.Equal(t, "LIVE", readJSON(t, conn)["symbol"])
	assert.Equal(t, 1, hub.Count())
}
