package mexc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeCommandsAreExact(t *testing.T) {
	b, err := json.Marshal(spotCodec{}.subscribe("btc"))
	require.NoError(t, err)
	assert.Equal(t, `{"method":"SUBSCRIPTION","params":["spot@public.bookTicker.v3.api@BTCUSDT"]}`, string(b))

	b, err = json.Marshal(futuresCodec{}.subscribe("BTC"))
	require.NoError(t, err)
	assert.Equal(t, `{"method":"sub.ticker","param":{"symbol":"BTC_USDT"}}`, string(b))

	b, err = json.Marshal(futuresCodec{}.keepAlive())
	require.NoError(t, err)
	assert.Equal(t, `{"method":"ping"}`, string(b))

	assert.Nil(t, spotCodec{}.keepAlive())
}

func TestSpotDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind frameKind
		coin string
		ask  float64
		bid  float64
	}{
		{"tick", `{"d":{"s":"BTCUSDT","a":"100.5","b":"100.4"}}`, frameTick, "BTC", 100.5, 100.4},
		{"quantities ignored", `{"d":{"A":"3","B":"4","s":"ETHUSDT","a":"10","b":"9"}}`, frameTick, "ETH", 10, 9},
		{"ack", `{"id":0,"code":0,"msg":"spot@public.bookTicker.v3.api@BTCUSDT"}`, frameControl, "", 0, 0},
		{"not json", `hello`, frameMalformed, "", 0, 0},
		{"bad price", `{"d":{"s":"BTCUSDT","a":"x","b":"1"}}`, frameMalformed, "", 0, 0},
		{"foreign quote", `{"d":{"s":"BTCUSDC","a":"1","b":"1"}}`, frameMalformed, "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := spotCodec{}.decode([]byte(tt.in))
			assert.Equal(t, tt.kind, fr.kind)
			if tt.kind == frameMalformed {
				assert.ErrorIs(t, fr.err, ErrMalformed)
			}
			if tt.kind == frameTick {
				assert.Equal(t, tt.coin, fr.coin)
				assert.Equal(t, tt.ask, fr.ask)
				assert.Equal(t, tt.bid, fr.bid)
			}
		})
	}
}

func TestFuturesDecode(t *testing.T) {
	fr := futuresCodec{}.decode([]byte(`{"channel":"push.ticker","data":{"symbol":"SOL_USDT","ask1":20.5,"bid1":20.4},"symbol":"SOL_USDT"}`))
	assert.Equal(t, frameTick, fr.kind)
	assert.Equal(t, "SOL", fr.coin)
	assert.Equal(t, 20.5, fr.ask)
	assert.Equal(t, 20.4, fr.bid)

	assert.Equal(t, frameControl, futuresCodec{}.decode([]byte(`{"channel":"pong","data":1700000000000}`)).kind)
	assert.Equal(t, frameControl, futuresCodec{}.decode([]byte(`{"channel":"rs.sub.ticker","data":"success"}`)).kind)
	assert.Equal(t, frameMalformed, futuresCodec{}.decode([]byte(`{"channel":"push.ticker","data":{"symbol":"SOL_USDT"}}`)).kind)
	assert.Equal(t, frameMalformed, futuresCodec{}.decode([]byte(`{"channel":"push.ticker","data":"oops"}`)).kind)
	assert.Equal(t, frameMalformed, futuresCodec{}.decode([]byte(`[`)).kind)
}
