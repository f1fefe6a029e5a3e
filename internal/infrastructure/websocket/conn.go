package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const DialTimeout = 10 * time.Second

// Dial opens a client connection with the standard dial timeout.
func Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	cctx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(cctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ReadPump reads messages on its own goroutine and hands each one to onMsg.
// The returned channel yields the terminal read error and is then closed.
func ReadPump(conn *websocket.Conn, onMsg func([]byte)) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			onMsg(b)
		}
	}()
	return errCh
}

// Reconnect runs connect until ctx is done, sleeping a fixed delay after every
// return. There is no attempt cap and no jitter. onRetry, if set, is called
// before each sleep.
func Reconnect(ctx context.Context, name string, delay time.Duration, connect func(ctx context.Context) error, onRetry func()) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := connect(ctx)
		if ctx.Err() != nil {
			return
		}

		log.Warn().Str("feed", name).Err(err).Dur("delay", delay).Msg("ws disconnected, reconnecting")
		if onRetry != nil {
			onRetry()
		}
		if !Sleep(ctx, delay) {
			return
		}
	}
}

// Sleep waits d or until ctx is done; it reports false on cancellation.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
