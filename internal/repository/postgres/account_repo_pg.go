package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, first_name, last_name, phone, password_hash, password_salt, is_active, deactivated_at, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, email string, passwordHash, passwordSalt []byte, firstName, lastName, phone *string) (*domain.Account, error) {
	const query = `
        INSERT INTO account (email, password_hash, password_salt, first_name, last_name, phone)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, email, passwordHash, passwordSalt, firstName, lastName, phone)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpsertGoogleAccount(ctx context.Context, email string, firstName, lastName *string) (*domain.Account, error) {
	const query = `
        INSERT INTO account (email, first_name, last_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE
        SET first_name = COALESCE(account.first_name, EXCLUDED.first_name),
            last_name = COALESCE(account.last_name, EXCLUDED.last_name),
            updated_at = NOW()
        RETURNING ` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, email, firstName, lastName)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT ` + accountColumns + `
        FROM account
        WHERE email = $1 AND is_active = TRUE
    `
	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const query = `
        SELECT ` + accountColumns + `
        FROM account
        WHERE id = $1 AND is_active = TRUE
    `
	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE account
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

// Deactivate soft-disables the account. Rows are never deleted.
func (r *AccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE account
        SET is_active = FALSE,
            deactivated_at = NOW(),
            updated_at = NOW()
        WHERE id = $1 AND is_active = TRUE
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
