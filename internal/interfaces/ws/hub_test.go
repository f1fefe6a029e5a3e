package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxarb/internal/domain/model"
)

type mockClient struct {
	id     string
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
	calls  int
}

func newMockClient(id string) *mockClient { return &mockClient{id: id} }

func (m *mockClient) ID() string { return m.id }

func (m *mockClient) Send(b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.closed {
		return ErrClientGone
	}
	m.msgs = append(m.msgs, b)
	return nil
}

func (m *mockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockClient) received() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func TestHubBroadcastDropsFailedClient(t *testing.T) {
	h := NewHub()
	a, b, c := newMockClient("a"), newMockClient("b"), newMockClient("c")
	h.Register(a)
	h.Register(b)
	h.Register(c)
	require.Equal(t, 3, h.Count())

	b.Close() // gone before the broadcast reaches it

	msg := &model.PriceMessage{Type: model.TypePrice, Symbol: "BTC", EntrySpread: 0.5}
	n, err := h.Broadcast(msg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, c.received())
	assert.Equal(t, 2, h.Count())

	// b is not attempted again
	n, err = h.Broadcast(msg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 2, a.received())
}

func TestHubBroadcastSerializesOnce(t *testing.T) {
	h := NewHub()
	a, b := newMockClient("a"), newMockClient("b")
	h.Register(a)
	h.Register(b)

	_, err := h.Broadcast(&model.PriceMessage{Type: model.TypePrice, Symbol: "ETH"})
	require.NoError(t, err)
	assert.JSONEq(t, string(a.msgs[0]), string(b.msgs[0]))
	assert.Contains(t, string(a.msgs[0]), `"symbol":"ETH"`)

	_, err = h.Broadcast(func() {})
	assert.Error(t, err)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	h := NewHub()
	a := newMockClient("a")
	h.Register(a)
	h.Unregister(a)
	h.Unregister(a)

	assert.Equal(t, 0, h.Count())
	assert.True(t, a.closed)
}
