package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StoreStats pairs a store with its counters row. Stats is nil for a store
// that no cycle has touched yet.
type StoreStats struct {
	Name  string
	Stats *model.StoreStatistics
}

type StatsUseCase interface {
	Overview(ctx context.Context, tgID int64) ([]StoreStats, error)
}

type statsUC struct {
	stores repository.StoreRepository
	stats  repository.StatisticsRepository

	log *zerolog.Logger
}

func NewStatsUseCase(stores repository.StoreRepository, stats repository.StatisticsRepository, logger *zerolog.Logger) *statsUC {
	l := logger.With().Str("component", "stats_uc").Logger()
	return &statsUC{stores: stores, stats: stats, log: &l}
}

func (s *statsUC) Overview(ctx context.Context, tgID int64) ([]StoreStats, error) {
	stores, err := s.stores.ListByUser(ctx, tgID)
	if err != nil {
		return nil, err
	}
	out := make([]StoreStats, 0, len(stores))
	for _, st := range stores {
		row, err := s.stats.FindByStore(ctx, st.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		out = append(out, StoreStats{Name: st.Name, Stats: row})
	}
	return out, nil
}
