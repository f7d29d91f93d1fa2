package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Add(ctx context.Context, accountID, profileID uuid.UUID) (*domain.Favorite, error) {
	const query = `
        INSERT INTO favorite (account_id, profile_id)
        VALUES ($1, $2)
        ON CONFLICT (account_id, profile_id) DO NOTHING
        RETURNING id, account_id, profile_id, created_at
    `
	var favorite domain.Favorite
	if err := r.db.GetContext(ctx, &favorite, query, accountID, profileID); err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, accountID, profileID uuid.UUID) error {
	const query = `
        DELETE FROM favorite
        WHERE account_id = $1 AND profile_id = $2
    `
	result, err := r.db.ExecContext(ctx, query, accountID, profileID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *FavoriteRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error) {
	const query = `
        SELECT
            f.id,
            f.profile_id,
            f.created_at,
            p.gender,
            p.city,
            p.country,
            p.religion,
            p.primary_photo_url
        FROM favorite f
        JOIN profile p ON p.id = f.profile_id
        WHERE f.account_id = $1
        ORDER BY f.created_at DESC, f.id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.QueryxContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.FavoriteListItem, 0)
	for rows.Next() {
		var item domain.FavoriteListItem
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *FavoriteRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const query = `
        SELECT COUNT(*)
        FROM favorite
        WHERE account_id = $1
    `
	var count int64
	if err := r.db.GetContext(ctx, &count, query, accountID); err != nil {
		return 0, err
	}
	return count, nil
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)
