package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type cbHandler func(ctx context.Context, chatID int64) error

// cbRoutes maps inline menu buttons to the same flows as the slash commands.
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:add_store": func(ctx context.Context, id int64) error {
			text, err := r.facade.HandleAddStore(ctx, id)
			return r.replyCb(ctx, id, text, err)
		},
		"cmd:list_stores": func(ctx context.Context, id int64) error {
			text, err := r.facade.HandleListStores(ctx, id)
			return r.replyCb(ctx, id, text, err)
		},
		"cmd:stats": func(ctx context.Context, id int64) error {
			text, err := r.facade.HandleStats(ctx, id)
			return r.replyCb(ctx, id, text, err)
		},
		"cmd:status": func(ctx context.Context, id int64) error {
			text, err := r.facade.HandleStatus(ctx, id)
			return r.replyCb(ctx, id, text, err)
		},
	}
}

func (r *RealTelegramBotAdapter) replyCb(ctx context.Context, chatID int64, text string, err error) error {
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", chatID).Msg("callback failed")
		text = "Что-то пошло не так. Попробуйте позже."
	}
	return r.SendMessage(ctx, chatID, text)
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	if chatID == 0 {
		return nil
	}

	data := strings.TrimSpace(query.Data)
	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, chatID)
	}
	return errors.New("unknown callback data")
}
