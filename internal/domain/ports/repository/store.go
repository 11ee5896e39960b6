package repository

import (
	"context"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
)

// StoreRepository is the port for the merchant store registry.
type StoreRepository interface {
	Save(ctx context.Context, store *model.Store) error
	FindByName(ctx context.Context, name string) (*model.Store, error)
	FindByAPIKey(ctx context.Context, wbAPIKey string) (*model.Store, error)
	ListByUser(ctx context.Context, telegramUserID int64) ([]*model.Store, error)
	ListAll(ctx context.Context) ([]*model.Store, error)
	UpdatePrompt(ctx context.Context, name string, telegramUserID int64, prompt string) error
	Delete(ctx context.Context, name string, telegramUserID int64) error
}

// StatisticsRepository persists the per-store counters row. Upsert creates
// the row on first update and overwrites counters and timestamp afterwards.
type StatisticsRepository interface {
	Upsert(ctx context.Context, stats *model.StoreStatistics) error
	FindByStore(ctx context.Context, storeID string) (*model.StoreStatistics, error)
}
