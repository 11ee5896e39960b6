package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/usecase"
)

// ReviewWorker drives the fleet use case on a fixed interval. The first cycle
// runs immediately so a fresh deployment does not sit idle for a full period.
type ReviewWorker struct {
	interval time.Duration
	fleet    usecase.FleetUseCase
	log      *zerolog.Logger
}

func NewReviewWorker(interval time.Duration, fleet usecase.FleetUseCase, logger *zerolog.Logger) *ReviewWorker {
	l := logger.With().Str("component", "review_worker").Logger()
	return &ReviewWorker{interval: interval, fleet: fleet, log: &l}
}

func (w *ReviewWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting review worker")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping review worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReviewWorker) runOnce(ctx context.Context) {
	report, err := w.fleet.RunCycle(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("review cycle failed")
		return
	}
	w.log.Debug().
		Str("cycle_id", report.CycleID).
		Int("ok", report.Success).
		Int("failed", report.Failed).
		Msg("review cycle finished")
}
