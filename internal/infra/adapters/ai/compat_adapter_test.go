package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

func TestCompatAdapterChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization = %q", got)
		}
		var body struct {
			Model       string            `json:"model"`
			Messages    []adapter.Message `json:"messages"`
			Temperature float64           `json:"temperature"`
			MaxTokens   int               `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Temperature != 0.7 || body.MaxTokens != 500 {
			t.Errorf("sampling params = (%v, %d)", body.Temperature, body.MaxTokens)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", body.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Спасибо!"}},
			},
		})
	}))
	defer srv.Close()

	a, err := NewCompatAdapter("k", srv.URL, "test-model", 0.7, 500, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, err := a.Chat(context.Background(), "", []adapter.Message{
		{Role: "system", Content: "будь вежлив"},
		{Role: "user", Content: "Отзыв: отличная куртка"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Спасибо!" {
		t.Fatalf("reply = %q", got)
	}
}

func TestCompatAdapterEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a, err := NewCompatAdapter("k", srv.URL, "test-model", 0.7, 500, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Chat(context.Background(), "", []adapter.Message{{Role: "user", Content: "x"}}); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}

type slowAI struct {
	inFlight int32
	max      int32
}

func (s *slowAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	for {
		old := atomic.LoadInt32(&s.max)
		if n <= old || atomic.CompareAndSwapInt32(&s.max, old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)
	return "ok", nil
}

func (s *slowAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 0, nil
}

func TestLimitedAIBoundsConcurrency(t *testing.T) {
	inner := &slowAI{}
	limited := NewLimitedAI(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = limited.Chat(context.Background(), "m", nil)
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&inner.max); max > 2 {
		t.Fatalf("observed %d concurrent calls, limit is 2", max)
	}
}
