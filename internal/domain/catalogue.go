package domain

import (
	"sort"
	"strings"
)

// Catalogue is the set of coins tradable on each market, loaded once at startup.
type Catalogue struct {
	Spot    []string
	Futures []string
}

// NewCatalogue normalizes, dedups and sorts both lists.
func NewCatalogue(spot, futures []string) Catalogue {
	return Catalogue{
		Spot:    NormalizeCoins(spot, true),
		Futures: NormalizeCoins(futures, true),
	}
}

// Coins returns the catalogue list for one side.
func (c Catalogue) Coins(side Side) []string {
	if side == SideFutures {
		return c.Futures
	}
	return c.Spot
}

// Set returns a lookup set for one side.
func (c Catalogue) Set(side Side) map[string]struct{} {
	coins := c.Coins(side)
	out := make(map[string]struct{}, len(coins))
	for _, coin := range coins {
		out[coin] = struct{}{}
	}
	return out
}

func (c Catalogue) Empty() bool {
	return len(c.Spot) == 0 && len(c.Futures) == 0
}

// NormalizeCoins uppercases and trims every entry, drops blanks and duplicates.
// Input order is kept unless sorted is set.
func NormalizeCoins(in []string, sorted bool) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	if sorted {
		sort.Strings(out)
	}
	return out
}
