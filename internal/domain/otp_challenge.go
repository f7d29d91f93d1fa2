package domain

import (
	"time"

	"github.com/google/uuid"
)

// OTPFlow identifies which authentication flow a challenge belongs to.
// At most one unconsumed challenge may exist per (email, flow).
type OTPFlow string

const (
	OTPFlowLogin         OTPFlow = "login"
	OTPFlowPasswordReset OTPFlow = "password_reset"
)

// OTPChallenge is a persisted one-time-password record. The code itself is
// never stored; only its argon2id digest and the salt used to derive it.
// Ref is the opaque value handed to clients in place of the row id.
type OTPChallenge struct {
	ID        int64     `db:"id" json:"-"`
	Ref       uuid.UUID `db:"ref" json:"ref"`
	Email     string    `db:"email" json:"email"`
	Flow      OTPFlow   `db:"flow" json:"flow"`
	CodeHash  []byte    `db:"code_hash" json:"-"`
	CodeSalt  []byte    `db:"code_salt" json:"-"`
	ClientIP  *string   `db:"client_ip" json:"-"`
	UserAgent *string   `db:"user_agent" json:"-"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
