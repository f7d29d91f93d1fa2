package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, email string, passwordHash, passwordSalt []byte, firstName, lastName, phone *string) (*domain.Account, error)
	UpsertGoogleAccount(ctx context.Context, email string, firstName, lastName *string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
