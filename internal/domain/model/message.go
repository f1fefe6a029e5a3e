package model

// Message types pushed to downstream subscribers.
const (
	TypeSymbols = "symbols"
	TypePrice   = "price"
)

// Actions accepted from downstream subscribers.
const (
	ActionWatch = "watch"
)

// SymbolsMessage is sent once per connection, before any price.
type SymbolsMessage struct {
	Type    string   `json:"type"`
	Spot    []string `json:"spot"`
	Futures []string `json:"futures"`
}

// PriceMessage carries one complete quote and its derived spreads (percent).
type PriceMessage struct {
	Type        string  `json:"type"`
	Symbol      string  `json:"symbol"`
	SpotAsk     float64 `json:"spotAsk"`
	SpotBid     float64 `json:"spotBid"`
	FutAsk      float64 `json:"futAsk"`
	FutBid      float64 `json:"futBid"`
	EntrySpread float64 `json:"entrySpread"`
	ExitSpread  float64 `json:"exitSpread"`
}

// Request is a client -> server command.
type Request struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// NewSymbolsMessage never encodes a list as null.
func NewSymbolsMessage(spot, futures []string) SymbolsMessage {
	if spot == nil {
		spot = []string{}
	}
	if futures == nil {
		futures = []string{}
	}
	return SymbolsMessage{Type: TypeSymbols, Spot: spot, Futures: futures}
}
