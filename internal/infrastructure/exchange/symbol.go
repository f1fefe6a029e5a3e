package exchange

import (
	"strings"
)

// SymbolConverter maps between a coin (BTC) and an exchange symbol (BTCUSDT).
type SymbolConverter interface {
	Symbol2Coin(symbol string) string
	Coin2Symbol(coin string) string
	SymbolSuffix() string
}

// CommonSymbolConverter handles symbols formed as coin + fixed suffix.
type CommonSymbolConverter struct {
	suffix string
}

func NewCommonSymbolConverter(suffix string) *CommonSymbolConverter {
	return &CommonSymbolConverter{suffix: strings.ToUpper(strings.TrimSpace(suffix))}
}

func (c *CommonSymbolConverter) SymbolSuffix() string {
	return c.suffix
}

// Symbol2Coin strips the suffix: BTCUSDT -> BTC, BTC_USDT -> BTC.
// It returns "" when symbol does not carry the suffix or is the bare suffix.
func (c *CommonSymbolConverter) Symbol2Coin(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || !strings.HasSuffix(sym, c.suffix) {
		return ""
	}
	return strings.TrimSuffix(sym, c.suffix)
}

// Coin2Symbol appends the suffix: BTC -> BTCUSDT. Symbols already carrying
// the suffix are returned unchanged.
func (c *CommonSymbolConverter) Coin2Symbol(coin string) string {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return ""
	}
	if strings.HasSuffix(coin, c.suffix) {
		return coin
	}
	return coin + c.suffix
}
