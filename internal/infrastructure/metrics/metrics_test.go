package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExposesCollectors(t *testing.T) {
	TicksTotal.WithLabelValues("spot").Inc()

	reg := NewRegistry(func() int { return 7 })
	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), "mxarb_tracked_assets 7")
	assert.Contains(t, string(body), `mxarb_ticks_total{feed="spot"}`)
}
