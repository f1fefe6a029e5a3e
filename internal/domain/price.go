package domain

// Side identifies which market a tick belongs to.
type Side int

const (
	SideSpot Side = iota
	SideFutures
)

func (s Side) String() string {
	switch s {
	case SideSpot:
		return "spot"
	case SideFutures:
		return "futures"
	default:
		return "unknown"
	}
}

// Level is the best ask/bid of one market. Has is false until the first tick.
type Level struct {
	Ask float64
	Bid float64
	Has bool
}

// Quote is the four-sided state of one coin: spot ask/bid and futures ask/bid.
type Quote struct {
	Spot    Level
	Futures Level
}

// Set overwrites both fields of the given side. Last write wins.
func (q *Quote) Set(side Side, ask, bid float64) {
	lv := Level{Ask: ask, Bid: bid, Has: true}
	switch side {
	case SideSpot:
		q.Spot = lv
	case SideFutures:
		q.Futures = lv
	}
}

// Complete reports whether all four fields have been reported at least once.
// Values are not range-checked here; zero and negative prices still count.
func (q Quote) Complete() bool {
	return q.Spot.Has && q.Futures.Has
}

// Known reports whether at least one side has been reported.
func (q Quote) Known() bool {
	return q.Spot.Has || q.Futures.Has
}
