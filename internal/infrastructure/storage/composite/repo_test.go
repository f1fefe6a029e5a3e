package composite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

type memRepo struct {
	catalogue map[string][]string
	quotes    int
	err       error
	closed    bool
}

func newMemRepo() *memRepo { return &memRepo{catalogue: map[string][]string{}} }

func (m *memRepo) SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error {
	if m.err != nil {
		return m.err
	}
	m.catalogue[market] = coins
	return nil
}

func (m *memRepo) LoadCatalogue(ctx context.Context, market string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.catalogue[market], nil
}

func (m *memRepo) UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error {
	if m.err != nil {
		return m.err
	}
	m.quotes++
	return nil
}

func (m *memRepo) Close() error {
	m.closed = true
	return nil
}

func TestCompositeWritesEverywhere(t *testing.T) {
	a, b := newMemRepo(), newMemRepo()
	repo := New(a, nil, b)
	assert.Equal(t, 2, repo.Len())

	ctx := context.Background()
	require.NoError(t, repo.SaveCatalogue(ctx, port.MarketSpot, []string{"BTC"}, 1))
	require.NoError(t, repo.UpsertLatestQuote(ctx, &model.PriceMessage{Symbol: "BTC"}, 1))

	assert.Equal(t, []string{"BTC"}, a.catalogue[port.MarketSpot])
	assert.Equal(t, []string{"BTC"}, b.catalogue[port.MarketSpot])
	assert.Equal(t, 1, a.quotes)
	assert.Equal(t, 1, b.quotes)

	require.NoError(t, repo.Close())
	assert.True(t, a.closed && b.closed)
}

func TestCompositeLoadSkipsFailingAndEmpty(t *testing.T) {
	broken := newMemRepo()
	broken.err = errors.New("down")
	empty := newMemRepo()
	full := newMemRepo()
	full.catalogue[port.MarketFutures] = []string{"SOL"}

	ctx := context.Background()
	coins, err := New(broken, empty, full).LoadCatalogue(ctx, port.MarketFutures)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL"}, coins)

	_, err = New(broken, empty).LoadCatalogue(ctx, port.MarketFutures)
	assert.Error(t, err)

	// writes keep going past a failing backend
	err = New(broken, full).UpsertLatestQuote(ctx, &model.PriceMessage{Symbol: "SOL"}, 1)
	assert.Error(t, err)
	assert.Equal(t, 1, full.quotes)
}
