package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

type OTPChallengeRepository struct {
	db *sqlx.DB
}

func NewOTPChallengeRepo(db *sqlx.DB) *OTPChallengeRepository {
	return &OTPChallengeRepository{db: db}
}

const otpChallengeColumns = `id, ref, email, flow, code_hash, code_salt, client_ip, user_agent, consumed, expires_at, created_at`

// Replace invalidates every unconsumed challenge for (email, flow) and
// inserts the new one in a single statement. The statement alone does not
// settle a race between two issuances: under READ COMMITTED each CTE only
// retires rows visible in its own snapshot, so neither sees the other's
// insert. The partial unique index on (email, flow) WHERE NOT consumed
// rejects the second insert instead; one retry re-runs the CTE against the
// winner's committed row and retires it.
func (r *OTPChallengeRepository) Replace(ctx context.Context, email string, flow domain.OTPFlow, ref uuid.UUID, codeHash, codeSalt []byte, clientIP, userAgent *string, expiresAt time.Time) (*domain.OTPChallenge, error) {
	const query = `
        WITH invalidated AS (
            UPDATE otp_challenge
            SET consumed = TRUE
            WHERE email = $1 AND flow = $2 AND consumed = FALSE
        )
        INSERT INTO otp_challenge (ref, email, flow, code_hash, code_salt, client_ip, user_agent, expires_at)
        VALUES ($3, $1, $2, $4, $5, $6, $7, $8)
        RETURNING ` + otpChallengeColumns

	var challenge domain.OTPChallenge
	for attempt := 0; ; attempt++ {
		row := r.db.QueryRowxContext(ctx, query, email, flow, ref, codeHash, codeSalt, clientIP, userAgent, expiresAt)
		err := row.StructScan(&challenge)
		if err == nil {
			return &challenge, nil
		}
		if attempt == 0 && isActiveChallengeConflict(err) {
			continue
		}
		return nil, err
	}
}

func isActiveChallengeConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "otp_challenge_active_idx"
}

func (r *OTPChallengeRepository) FindByRef(ctx context.Context, ref uuid.UUID) (*domain.OTPChallenge, error) {
	const query = `
        SELECT ` + otpChallengeColumns + `
        FROM otp_challenge
        WHERE ref = $1
    `
	var challenge domain.OTPChallenge
	if err := r.db.GetContext(ctx, &challenge, query, ref); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Consume is the only write that flips consumed. All preconditions live in
// the WHERE clause of one UPDATE, so under concurrent redemption exactly one
// caller observes an affected row; everyone else gets sql.ErrNoRows. The
// digest comparison happens in the database against the caller-derived hash,
// never as a prior SELECT.
func (r *OTPChallengeRepository) Consume(ctx context.Context, ref uuid.UUID, codeHash []byte, now time.Time) (*domain.OTPChallenge, error) {
	const query = `
        UPDATE otp_challenge
        SET consumed = TRUE
        WHERE ref = $1
          AND code_hash = $2
          AND consumed = FALSE
          AND expires_at > $3
        RETURNING ` + otpChallengeColumns

	row := r.db.QueryRowxContext(ctx, query, ref, codeHash, now)
	var challenge domain.OTPChallenge
	if err := row.StructScan(&challenge); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &challenge, nil
}

// DeleteExpiredBefore reaps stale rows. Optional housekeeping; expiry is
// already enforced at consume time.
func (r *OTPChallengeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        DELETE FROM otp_challenge
        WHERE expires_at < $1
    `
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var _ ports.OTPChallengeRepository = (*OTPChallengeRepository)(nil)
