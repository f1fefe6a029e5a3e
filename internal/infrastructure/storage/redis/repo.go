package redis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

type Repo struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	keyLatest string // prefix + ":latest"
	priceChan string
}

// LatestQuote is the value stored per symbol in the latest hash.
type LatestQuote struct {
	*model.PriceMessage
	Ts int64 `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, priceChan string) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "mxarb"
	}
	if strings.TrimSpace(priceChan) == "" {
		priceChan = prefix + ":prices"
	}
	return &Repo{
		rdb:       rdb,
		prefix:    prefix,
		ttl:       ttl,
		keyLatest: prefix + ":latest",
		priceChan: priceChan,
	}
}

func (r *Repo) Close() error { return r.rdb.Close() }

func (r *Repo) catalogueKey(market string) string {
	return r.prefix + ":catalogue:" + market
}

// SaveCatalogue replaces the market set atomically.
func (r *Repo) SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error {
	key := r.catalogueKey(market)
	members := make([]any, 0, len(coins))
	for _, c := range coins {
		members = append(members, c)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.SAdd(ctx, key, members...)
	}
	pipe.HSet(ctx, r.prefix+":catalogue:ts", market, ts)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) LoadCatalogue(ctx context.Context, market string) ([]string, error) {
	coins, err := r.rdb.SMembers(ctx, r.catalogueKey(market)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(coins)
	return coins, nil
}

// UpsertLatestQuote stores the message under its symbol and publishes it.
func (r *Repo) UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error {
	b, err := json.Marshal(LatestQuote{PriceMessage: msg, Ts: ts})
	if err != nil {
		return err
	}

	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, msg.Symbol, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	pipe.Publish(ctx, r.priceChan, string(b))
	_, err = pipe.Exec(ctx)
	return err
}

var _ port.Repository = (*Repo)(nil)
