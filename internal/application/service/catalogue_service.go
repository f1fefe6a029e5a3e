package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mxarb/internal/application/port"
	"mxarb/internal/domain"
)

// CatalogueService loads the symbol catalogue once at startup.
//
// Each market is resolved independently: exchange REST first, then the
// catalogue store (last good fetch), then the configured watch list.
type CatalogueService struct {
	source   port.CatalogueSource
	store    port.CatalogueStore // optional
	fallback domain.Catalogue
}

func NewCatalogueService(source port.CatalogueSource, store port.CatalogueStore, fallback domain.Catalogue) *CatalogueService {
	return &CatalogueService{source: source, store: store, fallback: fallback}
}

func (s *CatalogueService) Load(ctx context.Context) domain.Catalogue {
	spot := s.resolve(ctx, port.MarketSpot, s.source.FetchSpot, s.fallback.Spot)
	futures := s.resolve(ctx, port.MarketFutures, s.source.FetchFutures, s.fallback.Futures)
	return domain.NewCatalogue(spot, futures)
}

func (s *CatalogueService) resolve(
	ctx context.Context,
	market string,
	fetch func(context.Context) ([]string, error),
	fallback []string,
) []string {
	coins, err := fetch(ctx)
	if err == nil && len(coins) > 0 {
		log.Info().Str("market", market).Int("pairs", len(coins)).Msg("catalogue fetched")
		if s.store != nil {
			if err := s.store.SaveCatalogue(ctx, market, coins, time.Now().UnixMilli()); err != nil {
				log.Warn().Err(err).Str("market", market).Msg("catalogue cache write failed")
			}
		}
		return coins
	}
	log.Error().Err(err).Str("market", market).Msg("catalogue fetch failed")

	if s.store != nil {
		cached, err := s.store.LoadCatalogue(ctx, market)
		if err != nil {
			log.Warn().Err(err).Str("market", market).Msg("catalogue cache read failed")
		} else if len(cached) > 0 {
			log.Warn().Str("market", market).Int("pairs", len(cached)).Msg("using cached catalogue")
			return cached
		}
	}

	log.Warn().Str("market", market).Int("pairs", len(fallback)).Msg("using watch list as catalogue")
	return fallback
}
