package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error)
	Search(ctx context.Context, filter domain.ProfileSearchFilter, limit, offset int) ([]domain.ProfileListItem, error)
	CountSearch(ctx context.Context, filter domain.ProfileSearchFilter) (int64, error)

	AddPhoto(ctx context.Context, profileID uuid.UUID, url string, caption *string, isPrimary bool) (*domain.ProfilePhoto, error)
	ListPhotos(ctx context.Context, profileID uuid.UUID) ([]domain.ProfilePhoto, error)
	RemovePhoto(ctx context.Context, profileID, photoID uuid.UUID) error
}
