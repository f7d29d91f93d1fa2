package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

type MetadataRepository struct {
	db *sqlx.DB
}

func NewMetadataRepo(db *sqlx.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func (r *MetadataRepository) ListByCategory(ctx context.Context, category string) ([]domain.LookupValue, error) {
	const query = `
        SELECT id, category, value, label, sort_order
        FROM lookup_value
        WHERE category = $1
        ORDER BY sort_order ASC, label ASC
    `
	values := make([]domain.LookupValue, 0)
	if err := r.db.SelectContext(ctx, &values, query, category); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *MetadataRepository) ListCategories(ctx context.Context) ([]string, error) {
	const query = `
        SELECT DISTINCT category
        FROM lookup_value
        ORDER BY category ASC
    `
	categories := make([]string, 0)
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListAllowedOrigins backs the CORS read-through cache.
func (r *MetadataRepository) ListAllowedOrigins(ctx context.Context) ([]string, error) {
	const query = `
        SELECT value
        FROM lookup_value
        WHERE category = 'allowed_origin'
        ORDER BY sort_order ASC
    `
	origins := make([]string, 0)
	if err := r.db.SelectContext(ctx, &origins, query); err != nil {
		return nil, err
	}
	return origins, nil
}

var _ ports.MetadataRepository = (*MetadataRepository)(nil)
