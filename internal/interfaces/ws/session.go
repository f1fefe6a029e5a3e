package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"mxarb/internal/domain"
	"mxarb/internal/domain/model"
)

const maxMessageSize = 512 * 1024

// Watcher accepts coins requested by subscribers.
type Watcher interface {
	Watch(coins ...string) int
}

// SnapshotSource yields the currently complete price messages.
type SnapshotSource interface {
	Snapshot() []*model.PriceMessage
}

type Options struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	return o
}

// Handler upgrades HTTP requests into subscriber sessions.
type Handler struct {
	hub       *Hub
	watcher   Watcher
	snapshots SnapshotSource
	symbols   []byte
	opts      Options
	upgrader  websocket.Upgrader
}

func NewHandler(hub *Hub, watcher Watcher, snapshots SnapshotSource, catalogue domain.Catalogue, opts Options) *Handler {
	symbols, _ := json.Marshal(model.NewSymbolsMessage(catalogue.Spot, catalogue.Futures))
	return &Handler{
		hub:       hub,
		watcher:   watcher,
		snapshots: snapshots,
		symbols:   symbols,
		opts:      opts.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	// catalogue and snapshot take their own slots on top of SendBuffer and
	// are queued before the session joins the hub
	snap := h.snapshots.Snapshot()
	s := newSession(conn, h.opts, len(snap)+1)
	go s.writePump()

	_ = s.Send(h.symbols)
	for _, msg := range snap {
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := s.Send(b); err != nil {
			break
		}
	}
	h.hub.Register(s)

	s.readPump(h.hub, h.watcher)
}

// Session is one downstream websocket connection.
type Session struct {
	id   string
	conn *websocket.Conn
	opts Options

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// newSession reserves prelude slots in the send queue beyond SendBuffer.
func newSession(conn *websocket.Conn, opts Options, prelude int) *Session {
	return &Session{
		id:   uuid.NewString(),
		conn: conn,
		opts: opts,
		send: make(chan []byte, opts.SendBuffer+prelude),
		done: make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Send queues b without blocking.
func (s *Session) Send(b []byte) error {
	select {
	case <-s.done:
		return ErrClientGone
	default:
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return ErrClientGone
	default:
		return ErrSendOverflow
	}
}

// Close stops the writer, which closes the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) readPump(hub *Hub, watcher Watcher) {
	defer func() {
		hub.Unregister(s)
		s.Close()
	}()

	pongWait := 2 * s.opts.PingInterval
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, b, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Str("session", s.id).Err(err).Msg("subscriber read failed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req model.Request
		if err := json.Unmarshal(b, &req); err != nil {
			log.Debug().Str("session", s.id).Err(err).Msg("invalid request ignored")
			continue
		}
		switch req.Action {
		case model.ActionWatch:
			n := watcher.Watch(req.Symbols...)
			log.Debug().Str("session", s.id).Int("coins", n).Msg("watch request")
		default:
			log.Debug().Str("session", s.id).Str("action", req.Action).Msg("unknown action ignored")
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return

		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.Close()
				return
			}

		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.opts.WriteTimeout)); err != nil {
				s.Close()
				return
			}
		}
	}
}

var _ Client = (*Session)(nil)
