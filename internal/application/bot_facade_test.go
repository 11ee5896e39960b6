package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/usecase"
)

type memState struct {
	mu     sync.Mutex
	states map[int64]*repository.ConversationState
}

func newMemState() *memState {
	return &memState{states: make(map[int64]*repository.ConversationState)}
}

func (m *memState) SetState(ctx context.Context, tgID int64, st *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.states[tgID] = &cp
	return nil
}

func (m *memState) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memState) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}

type fakeStoreUC struct {
	addErr error
	added  []*model.Store
	stores []*model.Store
}

func (f *fakeStoreUC) AddStore(ctx context.Context, tgID int64, name, key, prompt string) (*model.Store, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	st := &model.Store{ID: "id", Name: name, WBAPIKey: key, Prompt: prompt, TelegramUserID: tgID}
	f.added = append(f.added, st)
	return st, nil
}

func (f *fakeStoreUC) ListStores(ctx context.Context, tgID int64) ([]*model.Store, error) {
	return f.stores, nil
}

func (f *fakeStoreUC) DeleteStore(ctx context.Context, tgID int64, name string) error {
	for _, st := range f.stores {
		if st.Name == name {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStoreUC) UpdatePrompt(ctx context.Context, tgID int64, name, prompt string) error {
	return nil
}

type fakeStatsUC struct {
	rows []usecase.StoreStats
}

func (f *fakeStatsUC) Overview(ctx context.Context, tgID int64) ([]usecase.StoreStats, error) {
	return f.rows, nil
}

func newFacade(storeUC usecase.StoreUseCase, statsUC usecase.StatsUseCase, state repository.StateRepository) *BotFacade {
	log := zerolog.Nop()
	return NewBotFacade(storeUC, statsUC, state, 5*time.Minute, &log)
}

func TestAddStoreDialogue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storeUC := &fakeStoreUC{}
	state := newMemState()
	f := newFacade(storeUC, &fakeStatsUC{}, state)

	if _, err := f.HandleAddStore(ctx, 7); err != nil {
		t.Fatalf("HandleAddStore: %v", err)
	}
	if _, err := f.HandleText(ctx, 7, "Мой магазин"); err != nil {
		t.Fatalf("name step: %v", err)
	}
	if _, err := f.HandleText(ctx, 7, "jwt-key"); err != nil {
		t.Fatalf("key step: %v", err)
	}
	reply, err := f.HandleText(ctx, 7, "Отвечай вежливо")
	if err != nil {
		t.Fatalf("prompt step: %v", err)
	}
	if !strings.Contains(reply, "добавлен") {
		t.Fatalf("reply = %q", reply)
	}

	if len(storeUC.added) != 1 {
		t.Fatalf("added %d stores, want 1", len(storeUC.added))
	}
	got := storeUC.added[0]
	if got.Name != "Мой магазин" || got.WBAPIKey != "jwt-key" || got.Prompt != "Отвечай вежливо" {
		t.Fatalf("added store = %+v", got)
	}

	// Dialogue must be finished.
	if _, err := state.GetState(ctx, 7); err != domain.ErrNotFound {
		t.Fatal("dialogue state should be cleared after registration")
	}
}

func TestAddStoreDialogueRetriesBadKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storeUC := &fakeStoreUC{addErr: domain.ErrCredentialExpired}
	state := newMemState()
	f := newFacade(storeUC, &fakeStatsUC{}, state)

	_, _ = f.HandleAddStore(ctx, 7)
	_, _ = f.HandleText(ctx, 7, "shop")
	_, _ = f.HandleText(ctx, 7, "expired-key")
	reply, err := f.HandleText(ctx, 7, "prompt")
	if err != nil {
		t.Fatalf("prompt step: %v", err)
	}
	if !strings.Contains(reply, "истёк") {
		t.Fatalf("reply = %q", reply)
	}

	// The user is put back on the key step with the name preserved.
	st, err := state.GetState(ctx, 7)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.Step != repository.StepAwaitingAPIKey || st.Data["store_name"] != "shop" {
		t.Fatalf("state = %+v", st)
	}
}

func TestCancelClearsDialogue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state := newMemState()
	f := newFacade(&fakeStoreUC{}, &fakeStatsUC{}, state)

	_, _ = f.HandleAddStore(ctx, 7)
	if _, err := f.HandleCancel(ctx, 7); err != nil {
		t.Fatalf("HandleCancel: %v", err)
	}
	reply, err := f.HandleText(ctx, 7, "что-то")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !strings.Contains(reply, "/help") {
		t.Fatalf("reply = %q, want the help hint", reply)
	}
}

func TestHandleStatsFormatting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	when := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	statsUC := &fakeStatsUC{rows: []usecase.StoreStats{
		{Name: "checked", Stats: &model.StoreStatistics{StoreID: "s1", TotalReviews: 5, AnsweredReviews: 4, LastCheckTime: when}},
		{Name: "fresh"},
	}}
	f := newFacade(&fakeStoreUC{}, statsUC, newMemState())

	reply, err := f.HandleStats(ctx, 7)
	if err != nil {
		t.Fatalf("HandleStats: %v", err)
	}
	if !strings.Contains(reply, "checked") || !strings.Contains(reply, "отвечено 4") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "ещё не проверялся") {
		t.Fatalf("reply = %q, want untouched store marked", reply)
	}
}

func TestDeleteStoreNotFound(t *testing.T) {
	t.Parallel()

	f := newFacade(&fakeStoreUC{}, &fakeStatsUC{}, newMemState())
	reply, err := f.HandleDeleteStore(context.Background(), 7, "ghost")
	if err != nil {
		t.Fatalf("HandleDeleteStore: %v", err)
	}
	if !strings.Contains(reply, "не найден") {
		t.Fatalf("reply = %q", reply)
	}
}
