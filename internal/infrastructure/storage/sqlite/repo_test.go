package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepoCatalogue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	coins, err := repo.LoadCatalogue(ctx, port.MarketSpot)
	if err != nil {
		t.Fatalf("LoadCatalogue failed: %v", err)
	}
	if len(coins) != 0 {
		t.Fatalf("expected empty catalogue, got %v", coins)
	}

	if err := repo.SaveCatalogue(ctx, port.MarketSpot, []string{"ETH", "BTC", "ETH"}, 1); err != nil {
		t.Fatalf("SaveCatalogue failed: %v", err)
	}
	if err := repo.SaveCatalogue(ctx, port.MarketFutures, []string{"SOL"}, 1); err != nil {
		t.Fatalf("SaveCatalogue failed: %v", err)
	}
	// a second save replaces the first
	if err := repo.SaveCatalogue(ctx, port.MarketSpot, []string{"XRP", "BTC"}, 2); err != nil {
		t.Fatalf("SaveCatalogue failed: %v", err)
	}

	coins, err = repo.LoadCatalogue(ctx, port.MarketSpot)
	if err != nil {
		t.Fatalf("LoadCatalogue failed: %v", err)
	}
	if len(coins) != 2 || coins[0] != "BTC" || coins[1] != "XRP" {
		t.Errorf("expected [BTC XRP], got %v", coins)
	}

	coins, _ = repo.LoadCatalogue(ctx, port.MarketFutures)
	if len(coins) != 1 || coins[0] != "SOL" {
		t.Errorf("expected [SOL], got %v", coins)
	}
}

func TestSQLiteRepoUpsertLatestQuote(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	msg := &model.PriceMessage{Type: model.TypePrice, Symbol: "BTC", SpotAsk: 100, SpotBid: 99.5, FutAsk: 101, FutBid: 100.5, EntrySpread: 0.5, ExitSpread: -1.485149}
	if err := repo.UpsertLatestQuote(ctx, msg, 1234567890); err != nil {
		t.Fatalf("UpsertLatestQuote failed: %v", err)
	}
	msg2 := *msg
	msg2.SpotAsk = 100.2
	if err := repo.UpsertLatestQuote(ctx, &msg2, 1234567891); err != nil {
		t.Fatalf("UpsertLatestQuote failed: %v", err)
	}

	got, err := repo.GetLatestQuote(ctx, "BTC")
	if err != nil {
		t.Fatalf("GetLatestQuote failed: %v", err)
	}
	if got.SpotAsk != 100.2 || got.ExitSpread != -1.485149 {
		t.Errorf("unexpected quote %+v", got)
	}
}
