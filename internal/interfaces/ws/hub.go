package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/infrastructure/metrics"
)

var (
	ErrClientGone   = errors.New("client gone")
	ErrSendOverflow = errors.New("client send buffer full")
)

// Client is one downstream subscriber as the hub sees it. Send must not
// block; a non-nil error means the client is dropped.
type Client interface {
	ID() string
	Send(b []byte) error
	Close()
}

// Hub is the set of live subscribers.
type Hub struct {
	mu      sync.Mutex
	clients map[string]Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]Client)}
}

func (h *Hub) Register(c Client) {
	h.mu.Lock()
	h.clients[c.ID()] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.Subscribers.Set(float64(n))
	log.Info().Str("session", c.ID()).Int("subscribers", n).Msg("subscriber connected")
}

// Unregister removes c and closes it. Unknown clients are ignored.
func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	cur, ok := h.clients[c.ID()]
	if ok && cur == c {
		delete(h.clients, c.ID())
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok && cur == c {
		c.Close()
		metrics.Subscribers.Set(float64(n))
		log.Info().Str("session", c.ID()).Int("subscribers", n).Msg("subscriber disconnected")
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast marshals v once and hands it to every client. Clients whose Send
// fails are removed. It returns the number of clients that accepted it.
func (h *Hub) Broadcast(v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	targets := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.Send(b); err != nil {
			metrics.DroppedClients.Inc()
			log.Warn().Str("session", c.ID()).Err(err).Msg("dropping subscriber")
			h.Unregister(c)
			continue
		}
		sent++
	}
	metrics.BroadcastsTotal.Inc()
	return sent, nil
}

var _ port.Sink = (*Hub)(nil)
