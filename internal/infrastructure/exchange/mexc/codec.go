package mexc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mxarb/internal/domain"
	"mxarb/internal/infrastructure/exchange"
)

const (
	SpotSuffix    = "USDT"
	FuturesSuffix = "_USDT"

	spotTopicPrefix      = "spot@public.bookTicker.v3.api@"
	futuresTickerChannel = "push.ticker"
)

var (
	spotConverter    = exchange.NewCommonSymbolConverter(SpotSuffix)
	futuresConverter = exchange.NewCommonSymbolConverter(FuturesSuffix)
)

var ErrMalformed = errors.New("malformed message")

type frameKind int

const (
	frameControl frameKind = iota
	frameTick
	frameMalformed
)

// frame is one decoded upstream message.
type frame struct {
	kind frameKind
	coin string
	ask  float64
	bid  float64
	err  error
}

func malformed(format string, args ...any) frame {
	return frame{kind: frameMalformed, err: fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)}
}

// codec is the per-market half of the protocol.
type codec interface {
	side() domain.Side
	subscribe(coin string) any
	// keepAlive returns the heartbeat command, or nil when none is needed.
	keepAlive() any
	decode(b []byte) frame
}

// spot: wss://wbs.mexc.com/ws

type spotSubReq struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type spotEnvelope struct {
	D *spotBookTicker `json:"d"`
}

// A and B carry quantities; they are declared so the decoder does not fold
// them into a and b.
type spotBookTicker struct {
	S      string `json:"s"`
	Ask    string `json:"a"`
	Bid    string `json:"b"`
	AskQty string `json:"A"`
	BidQty string `json:"B"`
}

type spotCodec struct{}

func (spotCodec) side() domain.Side { return domain.SideSpot }

func (spotCodec) subscribe(coin string) any {
	return spotSubReq{
		Method: "SUBSCRIPTION",
		Params: []string{spotTopicPrefix + spotConverter.Coin2Symbol(coin)},
	}
}

func (spotCodec) keepAlive() any { return nil }

func (spotCodec) decode(b []byte) frame {
	var env spotEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return malformed("%v", err)
	}
	if env.D == nil {
		// subscription acks and anything else without a payload
		return frame{kind: frameControl}
	}
	coin := spotConverter.Symbol2Coin(env.D.S)
	if coin == "" {
		return malformed("symbol %q", env.D.S)
	}
	ask, err := strconv.ParseFloat(strings.TrimSpace(env.D.Ask), 64)
	if err != nil {
		return malformed("ask %q", env.D.Ask)
	}
	bid, err := strconv.ParseFloat(strings.TrimSpace(env.D.Bid), 64)
	if err != nil {
		return malformed("bid %q", env.D.Bid)
	}
	return frame{kind: frameTick, coin: coin, ask: ask, bid: bid}
}

// futures: wss://contract.mexc.com/edge

type futuresSubReq struct {
	Method string           `json:"method"`
	Param  futuresSubSymbol `json:"param"`
}

type futuresSubSymbol struct {
	Symbol string `json:"symbol"`
}

type futuresPing struct {
	Method string `json:"method"`
}

type futuresEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type futuresTicker struct {
	Symbol string   `json:"symbol"`
	Ask1   *float64 `json:"ask1"`
	Bid1   *float64 `json:"bid1"`
}

type futuresCodec struct{}

func (futuresCodec) side() domain.Side { return domain.SideFutures }

func (futuresCodec) subscribe(coin string) any {
	return futuresSubReq{
		Method: "sub.ticker",
		Param:  futuresSubSymbol{Symbol: futuresConverter.Coin2Symbol(coin)},
	}
}

func (futuresCodec) keepAlive() any { return futuresPing{Method: "ping"} }

func (futuresCodec) decode(b []byte) frame {
	var env futuresEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return malformed("%v", err)
	}
	if env.Channel != futuresTickerChannel {
		// pong, rs.sub.ticker, rs.error ...
		return frame{kind: frameControl}
	}
	var d futuresTicker
	if err := json.Unmarshal(env.Data, &d); err != nil {
		return malformed("ticker data: %v", err)
	}
	coin := futuresConverter.Symbol2Coin(d.Symbol)
	if coin == "" {
		return malformed("symbol %q", d.Symbol)
	}
	if d.Ask1 == nil || d.Bid1 == nil {
		return malformed("ticker %s without ask1/bid1", d.Symbol)
	}
	return frame{kind: frameTick, coin: coin, ask: *d.Ask1, bid: *d.Bid1}
}
