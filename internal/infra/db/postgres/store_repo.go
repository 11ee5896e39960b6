package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/repository"
)

// Ensure storeRepo implements repository.StoreRepository
var _ repository.StoreRepository = (*storeRepo)(nil)

type storeRepo struct {
	pool *pgxpool.Pool
}

func NewStoreRepo(pool *pgxpool.Pool) *storeRepo {
	return &storeRepo{pool: pool}
}

const storeColumns = `id, name, wb_api_key, prompt, telegram_user_id, created_at, updated_at`

func (r *storeRepo) Save(ctx context.Context, s *model.Store) error {
	const q = `
INSERT INTO stores (id, name, wb_api_key, prompt, telegram_user_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, wb_api_key=$3, prompt=$4, telegram_user_id=$5, updated_at=$7;`

	_, err := r.pool.Exec(ctx, q, s.ID, s.Name, s.WBAPIKey, s.Prompt, s.TelegramUserID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *storeRepo) FindByName(ctx context.Context, name string) (*model.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE name=$1;`
	return r.queryOne(ctx, q, name)
}

func (r *storeRepo) FindByAPIKey(ctx context.Context, wbAPIKey string) (*model.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE wb_api_key=$1;`
	return r.queryOne(ctx, q, wbAPIKey)
}

func (r *storeRepo) ListByUser(ctx context.Context, telegramUserID int64) ([]*model.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE telegram_user_id=$1 ORDER BY created_at ASC;`
	return r.queryMany(ctx, q, telegramUserID)
}

func (r *storeRepo) ListAll(ctx context.Context) ([]*model.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores ORDER BY created_at ASC;`
	return r.queryMany(ctx, q)
}

func (r *storeRepo) UpdatePrompt(ctx context.Context, name string, telegramUserID int64, prompt string) error {
	const q = `UPDATE stores SET prompt=$3, updated_at=NOW() WHERE name=$1 AND telegram_user_id=$2;`
	tag, err := r.pool.Exec(ctx, q, name, telegramUserID, prompt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, name string, telegramUserID int64) error {
	const q = `DELETE FROM stores WHERE name=$1 AND telegram_user_id=$2;`
	tag, err := r.pool.Exec(ctx, q, name, telegramUserID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *storeRepo) queryOne(ctx context.Context, sql string, args ...interface{}) (*model.Store, error) {
	s := &model.Store{}
	row := r.pool.QueryRow(ctx, sql, args...)
	if err := row.Scan(&s.ID, &s.Name, &s.WBAPIKey, &s.Prompt, &s.TelegramUserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *storeRepo) queryMany(ctx context.Context, sql string, args ...interface{}) ([]*model.Store, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Store
	for rows.Next() {
		s := &model.Store{}
		if err := rows.Scan(&s.ID, &s.Name, &s.WBAPIKey, &s.Prompt, &s.TelegramUserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
