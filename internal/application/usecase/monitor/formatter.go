package monitor

import (
	"fmt"
	"sort"
	"strings"

	"mxarb/internal/domain/model"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

func colorize(s, c string) string { return c + s + ansiReset }

const defaultTop = 10

// Formatter renders a one-line summary of the widest entry spreads.
type Formatter struct {
	Top int
}

func NewFormatter(top int) *Formatter {
	if top <= 0 {
		top = defaultTop
	}
	return &Formatter{Top: top}
}

// Render does not modify msgs.
func (f *Formatter) Render(msgs []*model.PriceMessage) string {
	var sb strings.Builder
	sb.WriteString(colorize("[MXARB] ", ansiDim))

	if len(msgs) == 0 {
		sb.WriteString(colorize("no complete quotes", ansiYellow))
		return sb.String()
	}

	ranked := make([]*model.PriceMessage, len(msgs))
	copy(ranked, msgs)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EntrySpread != ranked[j].EntrySpread {
			return ranked[i].EntrySpread > ranked[j].EntrySpread
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if len(ranked) > f.Top {
		ranked = ranked[:f.Top]
	}

	for i, m := range ranked {
		if i > 0 {
			sb.WriteString(colorize("  ||  ", ansiDim))
		}
		sb.WriteString(m.Symbol)
		sb.WriteString(" ")
		sb.WriteString(colorize(fmt.Sprintf("E=%+.3f%%", m.EntrySpread), spreadColor(m.EntrySpread)))
		sb.WriteString(" ")
		sb.WriteString(colorize(fmt.Sprintf("X=%+.3f%%", m.ExitSpread), spreadColor(m.ExitSpread)))
	}
	return sb.String()
}

func spreadColor(v float64) string {
	switch {
	case v > 0:
		return ansiGreen
	case v < 0:
		return ansiRed
	default:
		return ansiYellow
	}
}
