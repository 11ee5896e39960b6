package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/token"
)

// Compile-time check
var _ StoreUseCase = (*storeUC)(nil)

// StoreUseCase is the merchant-facing registry: every mutation is scoped to
// the owning Telegram user so one merchant can never touch another's stores.
type StoreUseCase interface {
	AddStore(ctx context.Context, tgID int64, name, wbAPIKey, prompt string) (*model.Store, error)
	ListStores(ctx context.Context, tgID int64) ([]*model.Store, error)
	DeleteStore(ctx context.Context, tgID int64, name string) error
	UpdatePrompt(ctx context.Context, tgID int64, name, prompt string) error
}

type storeUC struct {
	stores repository.StoreRepository

	log *zerolog.Logger
}

func NewStoreUseCase(stores repository.StoreRepository, logger *zerolog.Logger) *storeUC {
	l := logger.With().Str("component", "store_uc").Logger()
	return &storeUC{stores: stores, log: &l}
}

// AddStore rejects keys that do not decode or have already expired, so the
// merchant learns about a bad credential at registration time instead of
// silently never getting replies.
func (s *storeUC) AddStore(ctx context.Context, tgID int64, name, wbAPIKey, prompt string) (*model.Store, error) {
	if err := token.Validate(wbAPIKey, time.Now()); err != nil {
		return nil, fmt.Errorf("wildberries api key: %w", err)
	}
	st, err := model.NewStore(name, wbAPIKey, prompt, tgID)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Save(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info().Int64("tg_id", tgID).Str("store", st.Name).Msg("store registered")
	return st, nil
}

func (s *storeUC) ListStores(ctx context.Context, tgID int64) ([]*model.Store, error) {
	return s.stores.ListByUser(ctx, tgID)
}

func (s *storeUC) DeleteStore(ctx context.Context, tgID int64, name string) error {
	if err := s.stores.Delete(ctx, name, tgID); err != nil {
		return err
	}
	s.log.Info().Int64("tg_id", tgID).Str("store", name).Msg("store deleted")
	return nil
}

func (s *storeUC) UpdatePrompt(ctx context.Context, tgID int64, name, prompt string) error {
	if err := s.stores.UpdatePrompt(ctx, name, tgID, prompt); err != nil {
		return err
	}
	s.log.Info().Int64("tg_id", tgID).Str("store", name).Msg("store prompt updated")
	return nil
}
