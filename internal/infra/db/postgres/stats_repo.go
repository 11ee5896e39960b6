package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
)

// Ensure statisticsRepo implements repository.StatisticsRepository
var _ repository.StatisticsRepository = (*statisticsRepo)(nil)

type statisticsRepo struct {
	pool *pgxpool.Pool
}

func NewStatisticsRepo(pool *pgxpool.Pool) *statisticsRepo {
	return &statisticsRepo{pool: pool}
}

// Upsert creates the row on first update; afterwards counters and timestamp
// are overwritten, never accumulated, so each row reflects the latest cycle.
func (r *statisticsRepo) Upsert(ctx context.Context, stats *model.StoreStatistics) error {
	const q = `
INSERT INTO store_statistics (store_id, total_reviews, answered_reviews, last_check_time)
VALUES ($1,$2,$3,$4)
ON CONFLICT (store_id) DO UPDATE SET
  total_reviews=$2, answered_reviews=$3, last_check_time=$4;`

	_, err := r.pool.Exec(ctx, q, stats.StoreID, stats.TotalReviews, stats.AnsweredReviews, stats.LastCheckTime)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *statisticsRepo) FindByStore(ctx context.Context, storeID string) (*model.StoreStatistics, error) {
	const q = `
SELECT store_id, total_reviews, answered_reviews, last_check_time
  FROM store_statistics
 WHERE store_id=$1;`

	s := &model.StoreStatistics{}
	row := r.pool.QueryRow(ctx, q, storeID)
	if err := row.Scan(&s.StoreID, &s.TotalReviews, &s.AnsweredReviews, &s.LastCheckTime); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}
