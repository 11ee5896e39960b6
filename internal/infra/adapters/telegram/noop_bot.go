package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBot)(nil)

// NoopBot logs outgoing messages instead of sending them. Handy for local
// runs without a bot token.
type NoopBot struct {
	log *zerolog.Logger
}

func NewNoopBot(logger *zerolog.Logger) *NoopBot {
	l := logger.With().Str("component", "noop_bot").Logger()
	return &NoopBot{log: &l}
}

func (n *NoopBot) SendMessage(ctx context.Context, telegramID int64, text string) error {
	n.log.Info().Int64("tg_id", telegramID).Str("text", text).Msg("noop send")
	return nil
}

func (n *NoopBot) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	n.log.Info().Int64("tg_id", telegramID).Str("text", text).Int("button_rows", len(rows)).Msg("noop send buttons")
	return nil
}
