package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/logging"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/metrics"
)

// Compile-time check
var _ StoreProcessorUseCase = (*processorUC)(nil)

// StoreProcessorUseCase runs one store's review pipeline: fetch both
// partitions, answer what can be answered, overwrite the statistics row.
type StoreProcessorUseCase interface {
	ProcessStore(ctx context.Context, st model.StoreSnapshot) (*model.StoreReport, error)
}

type processorUC struct {
	marketplace adapter.MarketplaceAdapter
	ai          adapter.AIServiceAdapter
	stats       repository.StatisticsRepository
	model       string

	log *zerolog.Logger
}

func NewStoreProcessorUseCase(
	marketplace adapter.MarketplaceAdapter,
	ai adapter.AIServiceAdapter,
	stats repository.StatisticsRepository,
	aiModel string,
	logger *zerolog.Logger,
) *processorUC {
	l := logger.With().Str("component", "processor_uc").Logger()
	return &processorUC{marketplace: marketplace, ai: ai, stats: stats, model: aiModel, log: &l}
}

// ProcessStore never lets a single review's failure abort the batch: each
// review either succeeds, is skipped (nothing to answer) or is counted as an
// error, and the store's statistics row is overwritten at the end regardless.
func (p *processorUC) ProcessStore(ctx context.Context, st model.StoreSnapshot) (*model.StoreReport, error) {
	log := logging.With(ctx, p.log)

	session := p.marketplace.OpenSession(st.WBAPIKey)
	defer session.Close()

	unanswered, err := session.FetchPartition(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("fetch unanswered: %w", err)
	}
	answered, err := session.FetchPartition(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("fetch answered: %w", err)
	}

	report := &model.StoreReport{
		StoreID:   st.ID,
		StoreName: st.Name,
		Total:     len(unanswered) + len(answered),
	}

	for _, rv := range unanswered {
		src := rv.ReplySource()
		if src == "" {
			report.Skipped++
			metrics.IncReviewOutcome("skipped")
			log.Debug().Str("review_id", rv.ID).Msg("review has nothing to answer, skipped")
			continue
		}

		reply, err := p.generate(ctx, st.Prompt, src, rv.ProductValuation)
		if err != nil {
			report.Errors++
			metrics.IncReviewOutcome("error")
			log.Warn().Err(err).Str("review_id", rv.ID).Msg("reply generation failed")
			continue
		}

		if err := session.PostAnswer(ctx, rv.ID, reply); err != nil {
			report.Errors++
			metrics.IncReviewOutcome("error")
			log.Warn().Err(err).Str("review_id", rv.ID).Msg("posting answer failed")
			continue
		}

		report.Success++
		metrics.IncReviewOutcome("answered")
	}

	row := &model.StoreStatistics{
		StoreID:         st.ID,
		TotalReviews:    report.Total,
		AnsweredReviews: len(answered) + report.Success,
		LastCheckTime:   time.Now().UTC(),
	}
	if err := p.stats.Upsert(ctx, row); err != nil {
		return report, fmt.Errorf("update statistics: %w", err)
	}

	log.Info().
		Int("total", report.Total).
		Int("answered", report.Success).
		Int("errors", report.Errors).
		Int("skipped", report.Skipped).
		Msg("store processed")
	return report, nil
}

func (p *processorUC) generate(ctx context.Context, prompt, src string, valuation int) (string, error) {
	msgs := []adapter.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: fmt.Sprintf("Отзыв: %s\nОценка: %d звезд", src, valuation)},
	}

	tokens, _ := p.ai.CountTokens(ctx, p.model, msgs)
	start := time.Now()
	reply, err := p.ai.Chat(ctx, p.model, msgs)
	metrics.ObserveGeneration(p.model, tokens, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", domain.ErrNoReplyProduced
	}
	return reply, nil
}
