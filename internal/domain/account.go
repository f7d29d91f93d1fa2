package domain

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	FirstName     *string    `db:"first_name" json:"first_name,omitempty"`
	LastName      *string    `db:"last_name" json:"last_name,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash  []byte     `db:"password_hash" json:"-"`
	PasswordSalt  []byte     `db:"password_salt" json:"-"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != nil && a.LastName != nil:
		return *a.FirstName + " " + *a.LastName
	case a.FirstName != nil:
		return *a.FirstName
	default:
		return a.Email
	}
}
