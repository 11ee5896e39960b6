package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is a merchant's registered shop: its Wildberries credential and the
// prompt used as the system instruction when generating review replies.
type Store struct {
	ID             string
	Name           string
	WBAPIKey       string
	Prompt         string
	TelegramUserID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewStore(name, wbAPIKey, prompt string, telegramUserID int64) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(wbAPIKey) == "" || strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyField
	}
	now := time.Now().UTC()
	return &Store{
		ID:             uuid.NewString(),
		Name:           name,
		WBAPIKey:       wbAPIKey,
		Prompt:         prompt,
		TelegramUserID: telegramUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Snapshot returns the read-only view handed to the processing pipeline.
// The pipeline never mutates or persists store identity.
func (s *Store) Snapshot() StoreSnapshot {
	return StoreSnapshot{ID: s.ID, Name: s.Name, WBAPIKey: s.WBAPIKey, Prompt: s.Prompt}
}

// StoreSnapshot is the transient per-cycle view of a store.
type StoreSnapshot struct {
	ID       string
	Name     string
	WBAPIKey string
	Prompt   string
}

// StoreStatistics is the single per-store counters row, overwritten after
// every processing cycle that touches the store.
type StoreStatistics struct {
	StoreID         string
	TotalReviews    int
	AnsweredReviews int
	LastCheckTime   time.Time
}
