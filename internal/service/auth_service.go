package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

var (
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrEmailAlreadyUsed          = errors.New("email already registered")
	ErrPasswordTooWeak           = errors.New("password does not meet the strength policy")
	ErrPasswordUnchanged         = errors.New("new password must differ from the current one")
	ErrOTPInvalid                = errors.New("invalid or expired code")
	ErrOTPDelivery               = errors.New("could not deliver the code")
	ErrPasswordUpdateAfterVerify = errors.New("code verified but password update failed; restart the reset flow")
	ErrAccountNotFound           = errors.New("account not found")
)

// OTPSender is the notifier side of the auth pipeline. It is always invoked
// after challenge state has been persisted, never under a row lock.
type OTPSender interface {
	SendOTP(ctx context.Context, email string, flow domain.OTPFlow, code string) error
}

// ClientMeta is recorded on issued challenges for audit purposes.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// ChallengeRef is what the client holds between issuing and redeeming a
// code. The code itself travels only through the mailer.
type ChallengeRef struct {
	Ref       uuid.UUID
	ExpiresAt time.Time
}

// AuthResult is returned after a successful redemption or Google sign-in.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

type AuthService struct {
	accounts   ports.AccountRepository
	challenges ports.OTPChallengeRepository
	mailer     OTPSender
	jwt        *util.JWTManager
	googleAud  string

	otpLength int
	loginTTL  time.Duration
	resetTTL  time.Duration

	// dummySalt keeps the unknown-email path as expensive as a real
	// verification, so response timing does not reveal account existence.
	dummySalt []byte

	validateGoogleToken func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewAuthService(accounts ports.AccountRepository, challenges ports.OTPChallengeRepository, mailer OTPSender, jwt *util.JWTManager, googleAud string, otpLength int, loginTTL, resetTTL time.Duration) *AuthService {
	dummySalt, err := util.GenerateSalt()
	if err != nil {
		// crypto/rand failing at construction time is unrecoverable.
		panic(fmt.Sprintf("auth service: generate dummy salt: %v", err))
	}
	return &AuthService{
		accounts:            accounts,
		challenges:          challenges,
		mailer:              mailer,
		jwt:                 jwt,
		googleAud:           googleAud,
		otpLength:           otpLength,
		loginTTL:            loginTTL,
		resetTTL:            resetTTL,
		dummySalt:           dummySalt,
		validateGoogleToken: idtoken.Validate,
	}
}

// RegisterWithEmail creates an account. It does not log the caller in; the
// login flow always goes through an emailed code.
func (s *AuthService) RegisterWithEmail(ctx context.Context, email, password string, firstName, lastName, phone *string) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordTooWeak, err)
	}

	hash, salt, err := util.DeriveSecret(password)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, email, hash, salt, firstName, lastName, phone)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}
	return account, nil
}

// LoginWithEmail verifies credentials and issues a login challenge. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string, client ClientMeta) (*ChallengeRef, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			// Burn the same work as a real check before failing.
			_, _ = util.HashSecret(password, s.dummySalt)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifySecret(password, account.PasswordSalt, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueChallenge(ctx, account.Email, domain.OTPFlowLogin, s.loginTTL, client)
}

// VerifyLoginOTP redeems a login challenge and mints the bearer token.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, ref uuid.UUID, code string) (*AuthResult, error) {
	challenge, err := s.redeem(ctx, ref, domain.OTPFlowLogin, code)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, challenge.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}

	return s.mintToken(account)
}

// LoginWithGoogle exchanges a verified Google ID token for a bearer token.
// Possession of the Google token takes the place of the emailed code.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (*AuthResult, error) {
	payload, err := s.validateGoogleToken(ctx, idTok, s.googleAud)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)

	account, err := s.accounts.UpsertGoogleAccount(ctx, email, optional(givenName), optional(familyName))
	if err != nil {
		return nil, err
	}
	return s.mintToken(account)
}

// RequestPasswordReset issues a reset challenge. The response is identical
// whether or not the email belongs to an account: unknown addresses get a
// decoy reference that is never persisted and can never redeem.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, client ClientMeta) (*ChallengeRef, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return &ChallengeRef{Ref: uuid.New(), ExpiresAt: time.Now().Add(s.resetTTL)}, nil
		}
		return nil, err
	}
	return s.issueChallenge(ctx, account.Email, domain.OTPFlowPasswordReset, s.resetTTL, client)
}

// ConfirmPasswordReset redeems a reset challenge and replaces the password
// hash. The policy check runs before redemption so a weak password never
// consumes a code.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, ref uuid.UUID, code, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordTooWeak, err)
	}

	challenge, err := s.redeem(ctx, ref, domain.OTPFlowPasswordReset, code)
	if err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, challenge.Email)
	if err != nil {
		return ErrPasswordUpdateAfterVerify
	}

	hash, salt, err := util.DeriveSecret(newPassword)
	if err != nil {
		return ErrPasswordUpdateAfterVerify
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, salt); err != nil {
		// The code is already consumed; the caller must restart the flow.
		return ErrPasswordUpdateAfterVerify
	}
	return nil
}

// ChangePassword rotates the hash for an authenticated account, gated on the
// current password.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !util.VerifySecret(currentPassword, account.PasswordSalt, account.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordTooWeak, err)
	}
	if util.VerifySecret(newPassword, account.PasswordSalt, account.PasswordHash) {
		return ErrPasswordUnchanged
	}

	hash, salt, err := util.DeriveSecret(newPassword)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, account.ID, hash, salt)
}

// Authenticate resolves a bearer token to its account. Used by middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return account, nil
}

// DeactivateAccount soft-disables the account. Records are never deleted.
func (s *AuthService) DeactivateAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.Deactivate(ctx, accountID)
}

func (s *AuthService) issueChallenge(ctx context.Context, email string, flow domain.OTPFlow, ttl time.Duration, client ClientMeta) (*ChallengeRef, error) {
	code, err := util.GenerateNumericOTP(s.otpLength)
	if err != nil {
		return nil, err
	}
	hash, salt, err := util.DeriveSecret(code)
	if err != nil {
		return nil, err
	}

	ref := uuid.New()
	expiresAt := time.Now().Add(ttl)
	challenge, err := s.challenges.Replace(ctx, email, flow, ref, hash, salt, optional(client.IP), optional(client.UserAgent), expiresAt)
	if err != nil {
		return nil, err
	}

	// The challenge row is committed before delivery starts. If the mailer
	// fails the row stays redeemable until its natural expiry; the client
	// just never received the code.
	if err := s.mailer.SendOTP(ctx, email, flow, code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPDelivery, err)
	}

	return &ChallengeRef{Ref: challenge.Ref, ExpiresAt: challenge.ExpiresAt}, nil
}

// redeem performs the conditional consume. Wrong code, wrong flow, unknown
// reference, already consumed, and expired all collapse into ErrOTPInvalid.
func (s *AuthService) redeem(ctx context.Context, ref uuid.UUID, flow domain.OTPFlow, code string) (*domain.OTPChallenge, error) {
	challenge, err := s.challenges.FindByRef(ctx, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	if challenge.Flow != flow {
		return nil, ErrOTPInvalid
	}

	// The salt is immutable, so deriving the digest outside the conditional
	// write does not reopen the check-then-act race: the store compares the
	// digest and flips consumed in one statement.
	candidate, err := util.HashSecret(code, challenge.CodeSalt)
	if err != nil {
		return nil, ErrOTPInvalid
	}

	consumed, err := s.challenges.Consume(ctx, ref, candidate, time.Now())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	return consumed, nil
}

func (s *AuthService) mintToken(account *domain.Account) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(account.ID, account.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
