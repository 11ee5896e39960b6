package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands. Facade methods
// return strings so the Telegram adapter just forwards them to the chat;
// multi-step dialogues keep their progress in the state repository.
type BotFacade struct {
	StoreUC usecase.StoreUseCase
	StatsUC usecase.StatsUseCase
	State   repository.StateRepository

	CheckInterval time.Duration

	log *zerolog.Logger
}

func NewBotFacade(
	storeUC usecase.StoreUseCase,
	statsUC usecase.StatsUseCase,
	state repository.StateRepository,
	checkInterval time.Duration,
	logger *zerolog.Logger,
) *BotFacade {
	l := logger.With().Str("component", "bot_facade").Logger()
	return &BotFacade{StoreUC: storeUC, StatsUC: statsUC, State: state, CheckInterval: checkInterval, log: &l}
}

const helpText = `Я автоматически отвечаю на отзывы Wildberries.

Команды:
/add_store — зарегистрировать магазин
/list_stores — список ваших магазинов
/delete_store <название> — удалить магазин
/edit_prompt <название> — изменить промпт магазина
/stats — статистика по отзывам
/status — состояние сервиса
/cancel — отменить текущее действие`

func (b *BotFacade) HandleStart(ctx context.Context, tgID int64) (string, error) {
	// A stale dialogue from before a restart should not swallow the next message.
	_ = b.State.ClearState(ctx, tgID)
	return "Привет! " + helpText, nil
}

func (b *BotFacade) HandleHelp(ctx context.Context) (string, error) {
	return helpText, nil
}

// HandleAddStore opens the three-step registration dialogue.
func (b *BotFacade) HandleAddStore(ctx context.Context, tgID int64) (string, error) {
	st := &repository.ConversationState{Step: repository.StepAwaitingStoreName, Data: map[string]string{}}
	if err := b.State.SetState(ctx, tgID, st); err != nil {
		return "", fmt.Errorf("set state: %w", err)
	}
	return "Введите название магазина:", nil
}

func (b *BotFacade) HandleListStores(ctx context.Context, tgID int64) (string, error) {
	stores, err := b.StoreUC.ListStores(ctx, tgID)
	if err != nil {
		return "", fmt.Errorf("list stores: %w", err)
	}
	if len(stores) == 0 {
		return "У вас пока нет магазинов. Добавьте первый: /add_store", nil
	}
	var sb strings.Builder
	sb.WriteString("Ваши магазины:\n")
	for _, st := range stores {
		sb.WriteString(fmt.Sprintf("• %s (добавлен %s)\n", st.Name, st.CreatedAt.Format("02.01.2006")))
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleDeleteStore(ctx context.Context, tgID int64, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Укажите название: /delete_store <название>", nil
	}
	err := b.StoreUC.DeleteStore(ctx, tgID, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("Магазин «%s» не найден.", name), nil
	case err != nil:
		return "", fmt.Errorf("delete store: %w", err)
	}
	return fmt.Sprintf("Магазин «%s» удалён.", name), nil
}

// HandleEditPrompt opens a one-step dialogue awaiting the new prompt text.
func (b *BotFacade) HandleEditPrompt(ctx context.Context, tgID int64, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Укажите название: /edit_prompt <название>", nil
	}
	st := &repository.ConversationState{
		Step: repository.StepAwaitingEditPrompt,
		Data: map[string]string{"store_name": name},
	}
	if err := b.State.SetState(ctx, tgID, st); err != nil {
		return "", fmt.Errorf("set state: %w", err)
	}
	return fmt.Sprintf("Отправьте новый промпт для магазина «%s»:", name), nil
}

func (b *BotFacade) HandleStats(ctx context.Context, tgID int64) (string, error) {
	rows, err := b.StatsUC.Overview(ctx, tgID)
	if err != nil {
		return "", fmt.Errorf("stats overview: %w", err)
	}
	if len(rows) == 0 {
		return "У вас пока нет магазинов. Добавьте первый: /add_store", nil
	}
	var sb strings.Builder
	sb.WriteString("📊 Статистика по отзывам:\n\n")
	for _, r := range rows {
		if r.Stats == nil {
			sb.WriteString(fmt.Sprintf("• %s: ещё не проверялся\n", r.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: отзывов %d, отвечено %d, проверено %s\n",
			r.Name, r.Stats.TotalReviews, r.Stats.AnsweredReviews,
			r.Stats.LastCheckTime.Format("02.01.2006 15:04")))
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleStatus(ctx context.Context, tgID int64) (string, error) {
	stores, err := b.StoreUC.ListStores(ctx, tgID)
	if err != nil {
		return "", fmt.Errorf("list stores: %w", err)
	}
	return fmt.Sprintf("Сервис работает.\nМагазинов на обслуживании: %d\nПроверка отзывов раз в %s.",
		len(stores), b.CheckInterval), nil
}

func (b *BotFacade) HandleCancel(ctx context.Context, tgID int64) (string, error) {
	if err := b.State.ClearState(ctx, tgID); err != nil {
		return "", fmt.Errorf("clear state: %w", err)
	}
	return "Действие отменено.", nil
}

// HandleText advances whatever dialogue the user is in. Plain text outside a
// dialogue gets a gentle pointer to /help.
func (b *BotFacade) HandleText(ctx context.Context, tgID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	st, err := b.State.GetState(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return "Не понимаю. Список команд: /help", nil
	}
	if err != nil {
		return "", fmt.Errorf("get state: %w", err)
	}
	if st.Data == nil {
		st.Data = map[string]string{}
	}

	switch st.Step {
	case repository.StepAwaitingStoreName:
		if text == "" {
			return "Название не может быть пустым. Введите название магазина:", nil
		}
		st.Data["store_name"] = text
		st.Step = repository.StepAwaitingAPIKey
		if err := b.State.SetState(ctx, tgID, st); err != nil {
			return "", fmt.Errorf("set state: %w", err)
		}
		return "Теперь отправьте API-ключ Wildberries (раздел «Доступ к API» в личном кабинете):", nil

	case repository.StepAwaitingAPIKey:
		if text == "" {
			return "Ключ не может быть пустым. Отправьте API-ключ Wildberries:", nil
		}
		st.Data["api_key"] = text
		st.Step = repository.StepAwaitingPrompt
		if err := b.State.SetState(ctx, tgID, st); err != nil {
			return "", fmt.Errorf("set state: %w", err)
		}
		return "И последнее: промпт для ответов (например, «Отвечай вежливо от имени магазина»):", nil

	case repository.StepAwaitingPrompt:
		return b.finishRegistration(ctx, tgID, st.Data["store_name"], st.Data["api_key"], text)

	case repository.StepAwaitingEditPrompt:
		name := st.Data["store_name"]
		err := b.StoreUC.UpdatePrompt(ctx, tgID, name, text)
		_ = b.State.ClearState(ctx, tgID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Sprintf("Магазин «%s» не найден.", name), nil
		case err != nil:
			return "", fmt.Errorf("update prompt: %w", err)
		}
		return fmt.Sprintf("Промпт магазина «%s» обновлён.", name), nil
	}

	// Unknown step, likely from an older build. Reset rather than trap the user.
	_ = b.State.ClearState(ctx, tgID)
	return "Не понимаю. Список команд: /help", nil
}

func (b *BotFacade) finishRegistration(ctx context.Context, tgID int64, name, apiKey, prompt string) (string, error) {
	_, err := b.StoreUC.AddStore(ctx, tgID, name, apiKey, prompt)
	switch {
	case errors.Is(err, domain.ErrCredentialExpired):
		// Keep the dialogue open so the user can paste a fresh key.
		st := &repository.ConversationState{
			Step: repository.StepAwaitingAPIKey,
			Data: map[string]string{"store_name": name},
		}
		if serr := b.State.SetState(ctx, tgID, st); serr != nil {
			return "", fmt.Errorf("set state: %w", serr)
		}
		return "Срок действия этого API-ключа истёк. Отправьте действующий ключ:", nil
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrCredentialNoExpiry):
		st := &repository.ConversationState{
			Step: repository.StepAwaitingAPIKey,
			Data: map[string]string{"store_name": name},
		}
		if serr := b.State.SetState(ctx, tgID, st); serr != nil {
			return "", fmt.Errorf("set state: %w", serr)
		}
		return "Это не похоже на API-ключ Wildberries. Проверьте и отправьте ещё раз:", nil
	case errors.Is(err, domain.ErrAlreadyExists):
		_ = b.State.ClearState(ctx, tgID)
		return fmt.Sprintf("Магазин «%s» или этот ключ уже зарегистрированы.", name), nil
	case errors.Is(err, model.ErrEmptyField):
		return "Промпт не может быть пустым. Отправьте текст промпта:", nil
	case err != nil:
		_ = b.State.ClearState(ctx, tgID)
		return "", fmt.Errorf("add store: %w", err)
	}
	_ = b.State.ClearState(ctx, tgID)
	b.log.Info().Int64("tg_id", tgID).Str("store", name).Msg("store registered via bot")
	return fmt.Sprintf("Готово! Магазин «%s» добавлен. Отзывы проверяются раз в %s.", name, b.CheckInterval), nil
}
