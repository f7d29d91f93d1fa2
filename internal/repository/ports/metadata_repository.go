package ports

import (
	"context"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

type MetadataRepository interface {
	ListByCategory(ctx context.Context, category string) ([]domain.LookupValue, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListAllowedOrigins(ctx context.Context) ([]string, error)
}
