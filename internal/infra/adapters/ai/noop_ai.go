package ai

import (
	"context"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAI)(nil)

// NoopAI is a stand-in provider for dev mode and wiring tests.
type NoopAI struct {
	Reply string
}

func (n *NoopAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if n.Reply != "" {
		return n.Reply, nil
	}
	return "Спасибо за ваш отзыв!", nil
}

func (n *NoopAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total, nil
}
