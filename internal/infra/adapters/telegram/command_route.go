package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":        r.handleStartCommand,
		"help":         r.handleHelpCommand,
		"add_store":    r.handleAddStoreCommand,
		"list_stores":  r.handleListStoresCommand,
		"delete_store": r.handleDeleteStoreCommand,
		"edit_prompt":  r.handleEditPromptCommand,
		"stats":        r.handleStatsCommand,
		"status":       r.handleStatusCommand,
		"cancel":       r.handleCancelCommand,
	}
}

// reply forwards a facade result, hiding infrastructure errors from the chat.
func (r *RealTelegramBotAdapter) reply(ctx context.Context, msg *tgbotapi.Message, text string, err error) error {
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", msg.From.ID).Str("command", msg.Command()).Msg("command failed")
		text = "Что-то пошло не так. Попробуйте позже."
	}
	return r.SendMessage(ctx, msg.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleStart(ctx, msg.From.ID)
	if err != nil {
		return r.reply(ctx, msg, text, err)
	}
	return r.sendMainMenu(ctx, msg.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleHelp(ctx)
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleAddStoreCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleAddStore(ctx, msg.From.ID)
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleListStoresCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleListStores(ctx, msg.From.ID)
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleDeleteStoreCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleDeleteStore(ctx, msg.From.ID, msg.CommandArguments())
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleEditPromptCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleEditPrompt(ctx, msg.From.ID, msg.CommandArguments())
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleStats(ctx, msg.From.ID)
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleStatusCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleStatus(ctx, msg.From.ID)
	return r.reply(ctx, msg, text, err)
}

func (r *RealTelegramBotAdapter) handleCancelCommand(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := r.facade.HandleCancel(ctx, msg.From.ID)
	return r.reply(ctx, msg, text, err)
}

// sendMainMenu shows the main actions as inline buttons.
func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, chatID int64, intro string) error {
	rows := [][]adapter.InlineButton{
		{{Text: "➕ Добавить магазин", Data: "cmd:add_store"}},
		{{Text: "🏬 Мои магазины", Data: "cmd:list_stores"}},
		{{Text: "📊 Статистика", Data: "cmd:stats"}},
		{{Text: "ℹ️ Состояние", Data: "cmd:status"}},
	}
	return r.SendButtons(ctx, chatID, intro, rows)
}
