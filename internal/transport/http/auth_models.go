package http

import (
	"time"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid email or password"`
}

// AuthAccount is the sanitized account representation returned by auth
// endpoints. Password material never leaves the service layer.
type AuthAccount struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email     string    `json:"email" example:"user@example.com"`
	FirstName *string   `json:"first_name,omitempty" example:"Priya"`
	LastName  *string   `json:"last_name,omitempty" example:"Sharma"`
	Phone     *string   `json:"phone,omitempty" example:"+91 98765 43210"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

func toAuthAccount(account *domain.Account) AuthAccount {
	return AuthAccount{
		ID:        account.ID.String(),
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Phone:     account.Phone,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// ChallengeResponse is returned when a one-time code has been issued. The
// code itself travels by email only.
type ChallengeResponse struct {
	ChallengeRef string `json:"challenge_ref" example:"f4bb0e02-5f91-4ce0-a6c0-7f63f3a8d5e2"`
	ExpiresAt    string `json:"expires_at" example:"2024-01-01T12:10:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue bearer tokens.
type AuthTokenResponse struct {
	Token     string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string      `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	Account   AuthAccount `json:"account"`
}

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Email     string `json:"email" example:"user@example.com"`
	Password  string `json:"password" example:"StrongPass!23"`
	FirstName string `json:"first_name,omitempty" example:"Priya"`
	LastName  string `json:"last_name,omitempty" example:"Sharma"`
	Phone     string `json:"phone,omitempty" example:"+91 98765 43210"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"StrongPass!23"`
}

// VerifyOTPRequest redeems an issued login challenge.
type VerifyOTPRequest struct {
	ChallengeRef string `json:"challenge_ref" example:"f4bb0e02-5f91-4ce0-a6c0-7f63f3a8d5e2"`
	OTP          string `json:"otp" example:"123456"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ChangePasswordRequest captures the payload for password updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" example:"OldPass!23"`
	NewPassword     string `json:"new_password" example:"NewPass!45"`
}

// PasswordResetRequest captures the payload for requesting a reset code.
type PasswordResetRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// PasswordResetConfirmRequest captures the payload for confirming a reset.
type PasswordResetConfirmRequest struct {
	ChallengeRef string `json:"challenge_ref" example:"f4bb0e02-5f91-4ce0-a6c0-7f63f3a8d5e2"`
	OTP          string `json:"otp" example:"123456"`
	NewPassword  string `json:"new_password" example:"NewPass!45"`
}
