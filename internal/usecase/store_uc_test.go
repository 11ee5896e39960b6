package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
)

func TestAddStoreAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemStoreRepo()
	uc := NewStoreUseCase(repo, nopLogger())

	key := testKey(t, time.Now().Add(24*time.Hour))
	st, err := uc.AddStore(ctx, 100, "my-shop", key, "отвечай вежливо")
	if err != nil {
		t.Fatalf("AddStore: %v", err)
	}
	if st.ID == "" {
		t.Fatal("expected store ID to be assigned")
	}

	stores, err := uc.ListStores(ctx, 100)
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 1 || stores[0].Name != "my-shop" {
		t.Fatalf("stores = %+v", stores)
	}

	// Another user sees nothing.
	other, _ := uc.ListStores(ctx, 200)
	if len(other) != 0 {
		t.Fatalf("user 200 sees %d stores, want 0", len(other))
	}
}

func TestAddStoreRejectsExpiredKey(t *testing.T) {
	t.Parallel()

	uc := NewStoreUseCase(newMemStoreRepo(), nopLogger())
	key := testKey(t, time.Now().Add(-time.Minute))

	_, err := uc.AddStore(context.Background(), 100, "shop", key, "p")
	if !errors.Is(err, domain.ErrCredentialExpired) {
		t.Fatalf("err = %v, want ErrCredentialExpired", err)
	}
}

func TestAddStoreRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewStoreUseCase(newMemStoreRepo(), nopLogger())
	if _, err := uc.AddStore(ctx, 100, "shop", testKey(t, time.Now().Add(time.Hour)), "p"); err != nil {
		t.Fatalf("first AddStore: %v", err)
	}

	_, err := uc.AddStore(ctx, 100, "shop", testKey(t, time.Now().Add(2*time.Hour)), "p")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestAddStoreRejectsEmptyPrompt(t *testing.T) {
	t.Parallel()

	uc := NewStoreUseCase(newMemStoreRepo(), nopLogger())
	_, err := uc.AddStore(context.Background(), 100, "shop", testKey(t, time.Now().Add(time.Hour)), "  ")
	if !errors.Is(err, model.ErrEmptyField) {
		t.Fatalf("err = %v, want ErrEmptyField", err)
	}
}

func TestDeleteStoreOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewStoreUseCase(newMemStoreRepo(), nopLogger())
	if _, err := uc.AddStore(ctx, 100, "shop", testKey(t, time.Now().Add(time.Hour)), "p"); err != nil {
		t.Fatalf("AddStore: %v", err)
	}

	// A different user cannot delete it.
	if err := uc.DeleteStore(ctx, 200, "shop"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := uc.DeleteStore(ctx, 100, "shop"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestUpdatePrompt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemStoreRepo()
	uc := NewStoreUseCase(repo, nopLogger())
	if _, err := uc.AddStore(ctx, 100, "shop", testKey(t, time.Now().Add(time.Hour)), "старый"); err != nil {
		t.Fatalf("AddStore: %v", err)
	}

	if err := uc.UpdatePrompt(ctx, 100, "shop", "новый"); err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}
	st, _ := repo.FindByName(ctx, "shop")
	if st.Prompt != "новый" {
		t.Fatalf("prompt = %q", st.Prompt)
	}

	if err := uc.UpdatePrompt(ctx, 100, "missing", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStatsOverview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemStoreRepo()
	stats := newMemStatsRepo()
	storeUC := NewStoreUseCase(repo, nopLogger())
	statsUC := NewStatsUseCase(repo, stats, nopLogger())

	st, err := storeUC.AddStore(ctx, 100, "checked", testKey(t, time.Now().Add(time.Hour)), "p")
	if err != nil {
		t.Fatalf("AddStore: %v", err)
	}
	if _, err := storeUC.AddStore(ctx, 100, "fresh", testKey(t, time.Now().Add(2*time.Hour)), "p"); err != nil {
		t.Fatalf("AddStore: %v", err)
	}
	now := time.Now().UTC()
	if err := stats.Upsert(ctx, &model.StoreStatistics{StoreID: st.ID, TotalReviews: 5, AnsweredReviews: 4, LastCheckTime: now}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := statsUC.Overview(ctx, 100)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	byName := map[string]StoreStats{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	if got := byName["checked"].Stats; got == nil || got.TotalReviews != 5 || got.AnsweredReviews != 4 {
		t.Fatalf("checked stats = %+v", got)
	}
	if byName["fresh"].Stats != nil {
		t.Fatal("fresh store should have no stats row yet")
	}
}

func TestStatisticsUpsertOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stats := newMemStatsRepo()

	first := &model.StoreStatistics{StoreID: "s1", TotalReviews: 3, AnsweredReviews: 1, LastCheckTime: time.Now().UTC()}
	if err := stats.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := &model.StoreStatistics{StoreID: "s1", TotalReviews: 7, AnsweredReviews: 7, LastCheckTime: time.Now().UTC()}
	if err := stats.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	row, err := stats.FindByStore(ctx, "s1")
	if err != nil {
		t.Fatalf("FindByStore: %v", err)
	}
	if row.TotalReviews != 7 || row.AnsweredReviews != 7 {
		t.Fatalf("row = %+v, want the overwritten counters", row)
	}
}
