package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

// testKey issues a signed WB-shaped JWT expiring at exp. Only the exp claim
// matters to the code under test; the signature is never checked.
func testKey(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test key: %v", err)
	}
	return signed
}

// memStoreRepo is a small in-memory implementation used by unit tests.
type memStoreRepo struct {
	mu      sync.RWMutex
	stores  map[string]*model.Store // map by Name
	listErr error                   // used by tests to simulate registry failures
}

func newMemStoreRepo() *memStoreRepo {
	return &memStoreRepo{stores: make(map[string]*model.Store)}
}

func (m *memStoreRepo) Save(ctx context.Context, st *model.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.stores {
		if existing.ID == st.ID {
			continue
		}
		if existing.Name == st.Name || existing.WBAPIKey == st.WBAPIKey {
			return domain.ErrAlreadyExists
		}
	}
	cp := *st
	m.stores[st.Name] = &cp
	return nil
}

func (m *memStoreRepo) FindByName(ctx context.Context, name string) (*model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stores[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStoreRepo) FindByAPIKey(ctx context.Context, key string) (*model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, st := range m.stores {
		if st.WBAPIKey == key {
			cp := *st
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) ListByUser(ctx context.Context, tgID int64) ([]*model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Store
	for _, st := range m.stores {
		if st.TelegramUserID == tgID {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStoreRepo) ListAll(ctx context.Context) ([]*model.Store, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Store, 0, len(m.stores))
	for _, st := range m.stores {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStoreRepo) UpdatePrompt(ctx context.Context, name string, tgID int64, prompt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[name]
	if !ok || st.TelegramUserID != tgID {
		return domain.ErrNotFound
	}
	st.Prompt = prompt
	st.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStoreRepo) Delete(ctx context.Context, name string, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[name]
	if !ok || st.TelegramUserID != tgID {
		return domain.ErrNotFound
	}
	delete(m.stores, name)
	return nil
}

// memStatsRepo keeps one counters row per store.
type memStatsRepo struct {
	mu        sync.RWMutex
	rows      map[string]*model.StoreStatistics
	upsertErr error
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{rows: make(map[string]*model.StoreStatistics)}
}

func (m *memStatsRepo) Upsert(ctx context.Context, row *model.StoreStatistics) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *row
	m.rows[row.StoreID] = &cp
	return nil
}

func (m *memStatsRepo) FindByStore(ctx context.Context, storeID string) (*model.StoreStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[storeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

// fakeSession serves scripted review partitions and records posted answers.
type fakeSession struct {
	mu         sync.Mutex
	unanswered []model.Review
	answered   []model.Review
	fetchErr   error
	postErr    map[string]error // per review id
	posted     map[string]string
	closed     bool
}

func (s *fakeSession) FetchPartition(ctx context.Context, answered bool) ([]model.Review, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if answered {
		return s.answered, nil
	}
	return s.unanswered, nil
}

func (s *fakeSession) PostAnswer(ctx context.Context, feedbackID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.postErr[feedbackID]; ok {
		return err
	}
	if s.posted == nil {
		s.posted = make(map[string]string)
	}
	s.posted[feedbackID] = text
	return nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// fakeMarketplace hands out one scripted session per api key.
type fakeMarketplace struct {
	mu       sync.Mutex
	sessions map[string]*fakeSession
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{sessions: make(map[string]*fakeSession)}
}

func (m *fakeMarketplace) OpenSession(apiKey string) adapter.ReviewSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[apiKey]
	if !ok {
		s = &fakeSession{}
		m.sessions[apiKey] = s
	}
	return s
}

// fakeAI returns a canned reply and records how often it was asked.
type fakeAI struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (a *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func (a *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 10, nil
}

// fakeProcessor lets fleet tests script per-store outcomes.
type fakeProcessor struct {
	fn func(ctx context.Context, st model.StoreSnapshot) (*model.StoreReport, error)
}

func (p *fakeProcessor) ProcessStore(ctx context.Context, st model.StoreSnapshot) (*model.StoreReport, error) {
	return p.fn(ctx, st)
}
