package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsActiveChallengeConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "active index violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "otp_challenge_active_idx"},
			want: true,
		},
		{
			name: "wrapped active index violation",
			err:  fmt.Errorf("replace challenge: %w", &pgconn.PgError{Code: "23505", ConstraintName: "otp_challenge_active_idx"}),
			want: true,
		},
		{
			name: "unique violation on another constraint",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "otp_challenge_ref_key"},
			want: false,
		},
		{
			name: "non unique violation",
			err:  &pgconn.PgError{Code: "40001", ConstraintName: "otp_challenge_active_idx"},
			want: false,
		},
		{
			name: "plain error",
			err:  fmt.Errorf("connection refused"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isActiveChallengeConflict(tc.err); got != tc.want {
				t.Fatalf("isActiveChallengeConflict() = %v, want %v", got, tc.want)
			}
		})
	}
}
