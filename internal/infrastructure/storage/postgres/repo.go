package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  ts_ms BIGINT NOT NULL,
  PRIMARY KEY(market, coin)
);

CREATE TABLE IF NOT EXISTS latest_quotes (
  symbol TEXT PRIMARY KEY,
  spot_ask DOUBLE PRECISION NOT NULL,
  spot_bid DOUBLE PRECISION NOT NULL,
  fut_ask DOUBLE PRECISION NOT NULL,
  fut_bid DOUBLE PRECISION NOT NULL,
  entry_spread DOUBLE PRECISION NOT NULL,
  exit_spread DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL
);
`)
	return err
}

func (r *Repo) SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogue WHERE market = $1`, market); err != nil {
		return fmt.Errorf("clear catalogue %s: %w", market, err)
	}
	for _, coin := range coins {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO catalogue(market, coin, ts_ms) VALUES($1, $2, $3) ON CONFLICT DO NOTHING`,
			market, coin, ts); err != nil {
			return fmt.Errorf("insert catalogue %s/%s: %w", market, coin, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LoadCatalogue(ctx context.Context, market string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT coin FROM catalogue WHERE market = $1 ORDER BY coin`, market)
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
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT(symbol) DO UPDATE SET
		spot_ask=EXCLUDED.spot_ask, spot_bid=EXCLUDED.spot_bid,
		fut_ask=EXCLUDED.fut_ask, fut_bid=EXCLUDED.fut_bid,
		entry_spread=EXCLUDED.entry_spread, exit_spread=EXCLUDED.exit_spread,
		ts_ms=EXCLUDED.ts_ms
	`, msg.Symbol, msg.SpotAsk, msg.SpotBid, msg.FutAsk, msg.FutBid, msg.EntrySpread, msg.ExitSpread, ts)
	return err
}

var _ port.Repository = (*Repo)(nil)
