package pricefeed

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/infrastructure/subscription"
)

// Params carries everything a feed constructor needs.
type Params struct {
	WsURL     string
	Catalogue map[string]struct{}
	Queue     *subscription.Queue

	SubscribeDelay time.Duration
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	Buffer         int
}

type Factory func(p Params) port.PriceFeed

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register is called from the init of each exchange package. Names look like
// "mexc/spot".
func Register(name string, factory Factory) {
	if factory == nil {
		log.Warn().Str("feed", name).Msg("invalid price feed factory")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		log.Warn().Str("feed", name).Msg("price feed factory already registered, overwriting")
	}
	registry[name] = factory
}

func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New builds the named feed.
func New(name string, p Params) (port.PriceFeed, error) {
	f, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("price feed %q not registered (have %v)", name, Names())
	}
	return f(p), nil
}

func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
