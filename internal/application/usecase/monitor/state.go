package monitor

import (
	"sort"
	"strings"
	"sync"

	"mxarb/internal/domain"
)

// State is the shared price table: coin -> latest four-sided quote.
// Entries are added on first tick and never removed.
type State struct {
	mu     sync.Mutex
	quotes map[string]*domain.Quote
}

func NewState() *State {
	return &State{quotes: make(map[string]*domain.Quote)}
}

// Apply overwrites one side of a coin's quote and returns the resulting quote,
// read under the same lock as the write.
func (s *State) Apply(coin string, side domain.Side, ask, bid float64) domain.Quote {
	coin = strings.ToUpper(strings.TrimSpace(coin))

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.quotes[coin]
	if q == nil {
		q = &domain.Quote{}
		s.quotes[coin] = q
	}
	q.Set(side, ask, bid)
	return *q
}

// Get returns a copy of one coin's quote.
func (s *State) Get(coin string) (domain.Quote, bool) {
	coin = strings.ToUpper(strings.TrimSpace(coin))

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[coin]
	if !ok {
		return domain.Quote{}, false
	}
	return *q, true
}

// Snapshot returns a copy of the whole table.
func (s *State) Snapshot() map[string]domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.Quote, len(s.quotes))
	for k, v := range s.quotes {
		out[k] = *v
	}
	return out
}

// Symbols returns the tracked coins, sorted.
func (s *State) Symbols() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.quotes))
	for k := range s.quotes {
		out = append(out, k)
	}
	s.mu.Unlock()

	sort.Strings(out)
	return out
}

// Len is the number of coins with at least one side known.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}
