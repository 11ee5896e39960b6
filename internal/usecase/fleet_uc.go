package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/logging"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/metrics"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/token"
)

// Compile-time check
var _ FleetUseCase = (*fleetUC)(nil)

// FleetUseCase runs one full pass over every registered store.
type FleetUseCase interface {
	RunCycle(ctx context.Context) (*model.CycleReport, error)
}

type fleetUC struct {
	stores    repository.StoreRepository
	processor StoreProcessorUseCase

	log *zerolog.Logger
}

func NewFleetUseCase(stores repository.StoreRepository, processor StoreProcessorUseCase, logger *zerolog.Logger) *fleetUC {
	l := logger.With().Str("component", "fleet_uc").Logger()
	return &fleetUC{stores: stores, processor: processor, log: &l}
}

// RunCycle lists the registry, drops stores whose credential already expired,
// then fans out one goroutine per remaining store. A store's failure (error or
// panic) is attributed to that store only; the rest of the fleet is unaffected.
func (f *fleetUC) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	cycleID := ulid.Make().String()
	ctx = logging.WithCycleID(ctx, cycleID)
	log := logging.With(ctx, f.log)
	start := time.Now()

	all, err := f.stores.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	report := &model.CycleReport{CycleID: cycleID}
	now := time.Now()
	runnable := make([]*model.Store, 0, len(all))
	for _, st := range all {
		if err := token.Validate(st.WBAPIKey, now); errors.Is(err, domain.ErrCredentialExpired) {
			report.Excluded++
			metrics.IncStoreExcluded()
			log.Warn().Str("store", st.Name).Msg("credential expired, store excluded from cycle")
			continue
		}
		runnable = append(runnable, st)
	}
	report.Stores = len(runnable)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, st := range runnable {
		st := st
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx := logging.WithStore(ctx, st.Name)
			sr, err := f.runStore(sctx, st.Snapshot())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				metrics.IncStoreOutcome("failed")
				logging.With(sctx, f.log).Error().Err(err).Msg("store run failed")
				return
			}
			report.Success++
			metrics.IncStoreOutcome("ok")
			report.Reports = append(report.Reports, *sr)
		}()
	}
	wg.Wait()

	metrics.ObserveCycleDuration(time.Since(start).Seconds())
	log.Info().
		Int("stores", report.Stores).
		Int("excluded", report.Excluded).
		Int("ok", report.Success).
		Int("failed", report.Failed).
		Dur("took", time.Since(start)).
		Msg("cycle complete")
	return report, nil
}

// runStore converts a panic inside one store's pipeline into that store's error.
func (f *fleetUC) runStore(ctx context.Context, st model.StoreSnapshot) (report *model.StoreReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store run panicked: %v", r)
		}
	}()
	return f.processor.ProcessStore(ctx, st)
}
