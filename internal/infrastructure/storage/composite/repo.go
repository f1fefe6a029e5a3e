package composite

import (
	"context"
	"errors"

	"mxarb/internal/application/port"
	"mxarb/internal/domain/model"
)

// Repo fans writes out to every backend and reads from the first backend
// that has data.
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) SaveCatalogue(ctx context.Context, market string, coins []string, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveCatalogue(ctx, market, coins, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) LoadCatalogue(ctx context.Context, market string) ([]string, error) {
	var firstErr error
	for _, repo := range r.repos {
		coins, err := repo.LoadCatalogue(ctx, market)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(coins) > 0 {
			return coins, nil
		}
	}
	return nil, firstErr
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, msg *model.PriceMessage, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertLatestQuote(ctx, msg, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var errs []error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ port.Repository = (*Repo)(nil)
