package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

// OTPChallengeRepository persists one-time-password challenges.
//
// Replace must invalidate every unconsumed challenge for (email, flow) and
// insert the new row as one atomic operation, so the at-most-one-active
// invariant holds under concurrent issuance.
//
// Consume must mark the challenge consumed and report whether this call was
// the one that flipped it, as a single conditional write: the row matches
// only while ref, codeHash, consumed = false, and expires_at > now all hold.
// Implementations must never check the preconditions with a separate read.
type OTPChallengeRepository interface {
	Replace(ctx context.Context, email string, flow domain.OTPFlow, ref uuid.UUID, codeHash, codeSalt []byte, clientIP, userAgent *string, expiresAt time.Time) (*domain.OTPChallenge, error)
	FindByRef(ctx context.Context, ref uuid.UUID) (*domain.OTPChallenge, error)
	Consume(ctx context.Context, ref uuid.UUID, codeHash []byte, now time.Time) (*domain.OTPChallenge, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
