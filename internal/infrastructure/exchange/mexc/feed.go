package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/infrastructure/metrics"
	"mxarb/internal/infrastructure/subscription"
	ws "mxarb/internal/infrastructure/websocket"
)

const (
	FeedSpot    = "spot"
	FeedFutures = "futures"

	writeTimeout = 10 * time.Second
)

type Options struct {
	SubscribeDelay time.Duration // pause after each subscribe command
	ReconnectDelay time.Duration // fixed, no growth
	PingInterval   time.Duration // futures keep-alive; <= 0 disables
	Buffer         int           // tick channel capacity
}

func DefaultOptions() Options {
	return Options{
		SubscribeDelay: 30 * time.Millisecond,
		ReconnectDelay: 5 * time.Second,
		PingInterval:   15 * time.Second,
		Buffer:         1024,
	}
}

// Feed is one MEXC market-data connection. It subscribes its watch list on
// every new connection and picks up extra coins from its router queue.
type Feed struct {
	name      string
	url       string
	codec     codec
	catalogue map[string]struct{}
	queue     *subscription.Queue
	opts      Options
}

// NewSpotFeed builds the spot bookTicker feed. Only coins in catalogue are
// ever subscribed.
func NewSpotFeed(wsURL string, catalogue map[string]struct{}, queue *subscription.Queue, opts Options) *Feed {
	return newFeed(FeedSpot, wsURL, spotCodec{}, catalogue, queue, opts)
}

// NewFuturesFeed builds the perpetual ticker feed with its keep-alive.
func NewFuturesFeed(wsURL string, catalogue map[string]struct{}, queue *subscription.Queue, opts Options) *Feed {
	return newFeed(FeedFutures, wsURL, futuresCodec{}, catalogue, queue, opts)
}

func newFeed(name, wsURL string, c codec, catalogue map[string]struct{}, queue *subscription.Queue, opts Options) *Feed {
	if opts.Buffer <= 0 {
		opts.Buffer = 1024
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultOptions().ReconnectDelay
	}
	if queue == nil {
		queue = subscription.NewQueue()
	}
	if catalogue == nil {
		catalogue = map[string]struct{}{}
	}
	return &Feed{
		name:      name,
		url:       strings.TrimSpace(wsURL),
		codec:     c,
		catalogue: catalogue,
		queue:     queue,
		opts:      opts,
	}
}

func (f *Feed) Name() string { return f.name }

// Subscribe starts the connection loop with coins as the initial watch list.
// The returned channel is closed once ctx is done.
func (f *Feed) Subscribe(ctx context.Context, coins []string) (<-chan port.Tick, error) {
	if f.url == "" {
		return nil, fmt.Errorf("mexc %s ws_url empty", f.name)
	}
	out := make(chan port.Tick, f.opts.Buffer)
	go f.run(ctx, newWatchList(coins), out)
	return out, nil
}

func (f *Feed) run(ctx context.Context, w *watchList, out chan<- port.Tick) {
	defer close(out)
	ws.Reconnect(ctx, f.name, f.opts.ReconnectDelay, func(ctx context.Context) error {
		return f.session(ctx, w, out)
	}, func() {
		metrics.ReconnectsTotal.WithLabelValues(f.name).Inc()
	})
}

func (f *Feed) listed(coin string) bool {
	_, ok := f.catalogue[coin]
	return ok
}

// session runs one connection lifetime. It returns when the connection
// fails or ctx is done; the subscription set dies with it.
func (f *Feed) session(ctx context.Context, w *watchList, out chan<- port.Tick) error {
	log.Info().Str("feed", f.name).Str("url", f.url).Msg("ws connecting")
	conn, err := ws.Dial(ctx, f.url)
	if err != nil {
		log.Error().Str("feed", f.name).Err(err).Msg("ws dial failed")
		return err
	}

	done := make(chan struct{})
	errCh := ws.ReadPump(conn, func(b []byte) { f.handle(ctx, b, out, done) })
	defer func() {
		close(done)
		_ = conn.Close()
		for range errCh {
		}
	}()

	subscribed := make(map[string]struct{})
	subscribe := func(coin string) (bool, error) {
		if _, ok := subscribed[coin]; ok || !f.listed(coin) {
			return false, nil
		}
		if err := f.write(conn, f.codec.subscribe(coin)); err != nil {
			return false, fmt.Errorf("subscribe %s: %w", coin, err)
		}
		subscribed[coin] = struct{}{}
		metrics.SubscribesTotal.WithLabelValues(f.name).Inc()
		return true, nil
	}

	for _, coin := range w.coins() {
		sent, err := subscribe(coin)
		if err != nil {
			return err
		}
		if sent && !ws.Sleep(ctx, f.opts.SubscribeDelay) {
			return ctx.Err()
		}
	}
	log.Info().Str("feed", f.name).Int("subscribed", len(subscribed)).Msg("ws connected & subscribed")

	var ping <-chan time.Time
	keepAlive := f.codec.keepAlive()
	if keepAlive != nil && f.opts.PingInterval > 0 {
		t := time.NewTicker(f.opts.PingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errCh:
			return err

		case <-f.queue.Ready():
			if err := f.subscribeQueued(ctx, w, subscribe); err != nil {
				return err
			}

		case <-ping:
			// a failed keep-alive is not fatal; the read side decides
			if err := f.write(conn, keepAlive); err != nil {
				metrics.KeepAliveFailures.Inc()
				log.Warn().Str("feed", f.name).Err(err).Msg("keep-alive failed")
			}
		}
	}
}

// subscribeQueued drains the router queue. Listed coins always join the watch
// list; subscribing stops at the first send failure or when ctx ends.
func (f *Feed) subscribeQueued(ctx context.Context, w *watchList, subscribe func(string) (bool, error)) error {
	var werr error
	f.queue.Drain(func(coin string) {
		if !f.listed(coin) {
			return
		}
		w.add(coin)
		if werr != nil {
			return
		}
		sent, err := subscribe(coin)
		if err != nil {
			werr = err
			return
		}
		if sent {
			log.Debug().Str("feed", f.name).Str("coin", coin).Msg("subscribed on request")
			if !ws.Sleep(ctx, f.opts.SubscribeDelay) {
				werr = ctx.Err()
			}
		}
	})
	return werr
}

func (f *Feed) write(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (f *Feed) handle(ctx context.Context, b []byte, out chan<- port.Tick, done <-chan struct{}) {
	fr := f.codec.decode(b)
	switch fr.kind {
	case frameMalformed:
		metrics.MalformedTotal.WithLabelValues(f.name).Inc()
		log.Debug().Str("feed", f.name).Err(fr.err).Msg("message discarded")
	case frameTick:
		metrics.TicksTotal.WithLabelValues(f.name).Inc()
		t := port.Tick{
			Feed: f.name,
			Coin: fr.coin,
			Side: f.codec.side(),
			Ask:  fr.ask,
			Bid:  fr.bid,
			Ts:   time.Now().UnixMilli(),
		}
		select {
		case out <- t:
		case <-done:
		case <-ctx.Done():
		}
	}
}

// watchList is the ordered set of coins a feed subscribes on every
// connection. It is owned by the feed goroutine.
type watchList struct {
	order []string
	set   map[string]struct{}
}

func newWatchList(coins []string) *watchList {
	w := &watchList{set: make(map[string]struct{}, len(coins))}
	for _, c := range coins {
		w.add(strings.ToUpper(strings.TrimSpace(c)))
	}
	return w
}

func (w *watchList) add(coin string) {
	if coin == "" {
		return
	}
	if _, ok := w.set[coin]; ok {
		return
	}
	w.set[coin] = struct{}{}
	w.order = append(w.order, coin)
}

func (w *watchList) coins() []string { return w.order }

var _ port.PriceFeed = (*Feed)(nil)
