package mexc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxarb/internal/infrastructure/pricefeed"
)

func TestFeedsRegistered(t *testing.T) {
	spot, err := pricefeed.New(SpotFeedName, pricefeed.Params{WsURL: "ws://spot"})
	require.NoError(t, err)
	assert.Equal(t, FeedSpot, spot.Name())

	fut, err := pricefeed.New(FuturesFeedName, pricefeed.Params{WsURL: "ws://futures"})
	require.NoError(t, err)
	assert.Equal(t, FeedFutures, fut.Name())
}
