package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS catalogue (
  market TEXT NOT NULL,
  coin TEXT NOT NULL,
  ts_ms INTEGER NOT NULL,
  PRIMARY KEY(market, coin)
);

CREATE TABLE IF NOT EXISTS latest_quotes (
  symbol TEXT PRIMARY KEY,
  spot_ask REAL NOT NULL,
  spot_bid REAL NOT NULL,
  fut_ask REAL NOT NULL,
  fut_bid REAL NOT NULL,
  entry_spread REAL NOT NULL,
  exit_spread REAL NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_latest_quotes_ts ON latest_quotes(ts_ms);
`)
	return err
}

// SaveCatalogue replaces the market's coin list in one transaction.
func (r *Repo) SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogue WHERE market = ?`, market); err != nil {
		return fmt.Errorf("clear catalogue %s: %w", market, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO catalogue(market, coin, ts_ms) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, coin := range coins {
		if _, err := stmt.ExecContext(ctx, market, coin, ts); err != nil {
			return fmt.Errorf("insert catalogue %s/%s: %w", market, coin, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LoadCatalogue(ctx context.Context, market string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT coin FROM catalogue WHERE market = ? ORDER BY coin`, market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []string
	for rows.Next() {
		var coin string
		if err := rows.Scan(&coin); err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, rows.Err()
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO latest_quotes(symbol, spot_ask, spot_bid, fut_ask, fut_bid, entry_spread, exit_spread, ts_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
		spot_ask=excluded.spot_ask, spot_bid=excluded.spot_bid,
		fut_ask=excluded.fut_ask, fut_bid=excluded.fut_bid,
		entry_spread=excluded.entry_spread, exit_spread=excluded.exit_spread,
		ts_ms=excluded.ts_ms
	`, msg.Symbol, msg.SpotAsk, msg.SpotBid, msg.FutAsk, msg.FutBid, msg.EntrySpread, msg.ExitSpread, ts)
	return err
}

// GetLatestQuote returns the last mirrored price message for symbol.
func (r *Repo) GetLatestQuote(ctx context.Context, symbol string) (*model.PriceMessage, error) {
	msg := model.PriceMessage{Type: model.TypePrice}
	err := r.db.QueryRowContext(ctx, `
		SELECT symbol, spot_ask, spot_bid, fut_ask, fut_bid, entry_spread, exit_spread
		FROM latest_quotes WHERE symbol = ?
	`, symbol).Scan(&msg.Symbol, &msg.SpotAsk, &msg.SpotBid, &msg.FutAsk, &msg.FutBid, &msg.EntrySpread, &msg.ExitSpread)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

var _ port.Repository = (*Repo)(nil)
