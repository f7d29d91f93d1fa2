package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

type FavoriteRepository interface {
	Add(ctx context.Context, accountID, profileID uuid.UUID) (*domain.Favorite, error)
	Remove(ctx context.Context, accountID, profileID uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}
