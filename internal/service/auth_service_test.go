package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type fakeAccountRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account

	updatePasswordErr   error
	updatePasswordCalls int
	deactivated         []uuid.UUID
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{byEmail: make(map[string]*domain.Account)}
	for _, account := range accounts {
		repo.byEmail[account.Email] = account
	}
	return repo
}

func (f *fakeAccountRepo) Create(ctx context.Context, email string, passwordHash, passwordSalt []byte, firstName, lastName, phone *string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byEmail[email]; exists {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byEmail[email] = account
	return account, nil
}

func (f *fakeAccountRepo) UpsertGoogleAccount(ctx context.Context, email string, firstName, lastName *string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.byEmail[email]; ok {
		return account, nil
	}
	account := &domain.Account{ID: uuid.New(), Email: email, FirstName: firstName, LastName: lastName, IsActive: true}
	f.byEmail[email] = account
	return account, nil
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return account, nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byEmail {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatePasswordCalls++
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	for _, account := range f.byEmail {
		if account.ID == id {
			account.PasswordHash = append([]byte(nil), passwordHash...)
			account.PasswordSalt = append([]byte(nil), passwordSalt...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeAccountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return nil
}

// fakeChallengeRepo mirrors the contract of the Postgres implementation:
// Replace invalidates-then-inserts in one step and Consume is a single
// guarded state transition, so concurrent callers race exactly like they
// would against the real conditional UPDATE.
type fakeChallengeRepo struct {
	mu         sync.Mutex
	nextID     int64
	challenges map[uuid.UUID]*domain.OTPChallenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: make(map[uuid.UUID]*domain.OTPChallenge)}
}

func (f *fakeChallengeRepo) Replace(ctx context.Context, email string, flow domain.OTPFlow, ref uuid.UUID, codeHash, codeSalt []byte, clientIP, userAgent *string, expiresAt time.Time) (*domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.challenges {
		if existing.Email == email && existing.Flow == flow && !existing.Consumed {
			existing.Consumed = true
		}
	}
	f.nextID++
	challenge := &domain.OTPChallenge{
		ID:        f.nextID,
		Ref:       ref,
		Email:     email,
		Flow:      flow,
		CodeHash:  append([]byte(nil), codeHash...),
		CodeSalt:  append([]byte(nil), codeSalt...),
		ClientIP:  clientIP,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.challenges[ref] = challenge
	clone := *challenge
	return &clone, nil
}

func (f *fakeChallengeRepo) FindByRef(ctx context.Context, ref uuid.UUID) (*domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	challenge, ok := f.challenges[ref]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *challenge
	return &clone, nil
}

func (f *fakeChallengeRepo) Consume(ctx context.Context, ref uuid.UUID, codeHash []byte, now time.Time) (*domain.OTPChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	challenge, ok := f.challenges[ref]
	if !ok || challenge.Consumed || !bytes.Equal(challenge.CodeHash, codeHash) || !now.Before(challenge.ExpiresAt) {
		return nil, sql.ErrNoRows
	}
	challenge.Consumed = true
	clone := *challenge
	return &clone, nil
}

func (f *fakeChallengeRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeChallengeRepo) get(ref uuid.UUID) *domain.OTPChallenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenges[ref]
}

func (f *fakeChallengeRepo) activeCount(email string, flow domain.OTPFlow) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, challenge := range f.challenges {
		if challenge.Email == email && challenge.Flow == flow && !challenge.Consumed {
			count++
		}
	}
	return count
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []struct {
		email string
		flow  domain.OTPFlow
		code  string
	}
	err error
}

func (f *fakeMailer) SendOTP(ctx context.Context, email string, flow domain.OTPFlow, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, struct {
		email string
		flow  domain.OTPFlow
		code  string
	}{email: email, flow: flow, code: code})
	return f.err
}

func (f *fakeMailer) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].code
}

func (f *fakeMailer) codes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.code)
	}
	return out
}

const (
	testLoginTTL = 10 * time.Minute
	testResetTTL = 15 * time.Minute
)

func newAuthServiceForTests(accounts *fakeAccountRepo, challenges *fakeChallengeRepo, mailer *fakeMailer) *AuthService {
	if accounts == nil {
		accounts = newFakeAccountRepo()
	}
	if challenges == nil {
		challenges = newFakeChallengeRepo()
	}
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(accounts, challenges, mailer, jwtManager, "google-audience", 6, testLoginTTL, testResetTTL)
}

func newTestAccount(t *testing.T, email, password string) *domain.Account {
	t.Helper()
	hash, salt, err := util.DeriveSecret(password)
	if err != nil {
		t.Fatalf("derive password: %v", err)
	}
	return &domain.Account{ID: uuid.New(), Email: email, PasswordHash: hash, PasswordSalt: salt, IsActive: true}
}

func TestRegisterWithEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("success normalizes email and stores hash", func(t *testing.T) {
		accounts := newFakeAccountRepo()
		svc := newAuthServiceForTests(accounts, nil, nil)

		account, err := svc.RegisterWithEmail(ctx, "  New@Example.com ", "SuperSecret1!", nil, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if account.Email != "new@example.com" {
			t.Fatalf("expected normalized email, got %q", account.Email)
		}
		if len(account.PasswordHash) == 0 || len(account.PasswordSalt) == 0 {
			t.Fatal("expected password hash and salt to be stored")
		}
		if bytes.Contains(account.PasswordHash, []byte("SuperSecret1!")) {
			t.Fatal("password must not be recoverable from the stored hash")
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		svc := newAuthServiceForTests(nil, nil, nil)
		if _, err := svc.RegisterWithEmail(ctx, "weak@example.com", "weakpass", nil, nil, nil); !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
		}
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		accounts := newFakeAccountRepo(newTestAccount(t, "dup@example.com", "SuperSecret1!"))
		svc := newAuthServiceForTests(accounts, nil, nil)
		if _, err := svc.RegisterWithEmail(ctx, "dup@example.com", "SuperSecret1!", nil, nil, nil); !errors.Is(err, ErrEmailAlreadyUsed) {
			t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
		}
	})
}

func TestLoginWithEmailInvalidCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		svc := newAuthServiceForTests(newFakeAccountRepo(), nil, nil)
		if _, err := svc.LoginWithEmail(ctx, "none@example.com", "password", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
		svc := newAuthServiceForTests(accounts, nil, nil)
		if _, err := svc.LoginWithEmail(ctx, "a@x.com", "WrongPass1!", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestLoginWithEmailIssuesChallenge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	before := time.Now()
	ref, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{IP: "203.0.113.9", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref == nil || ref.Ref == uuid.Nil {
		t.Fatal("expected challenge reference")
	}

	stored := challenges.get(ref.Ref)
	if stored == nil {
		t.Fatal("expected challenge to be persisted")
	}
	if stored.Consumed {
		t.Fatal("expected fresh challenge to be unconsumed")
	}
	if stored.Flow != domain.OTPFlowLogin {
		t.Fatalf("expected login flow, got %q", stored.Flow)
	}
	if stored.ClientIP == nil || *stored.ClientIP != "203.0.113.9" {
		t.Fatal("expected client IP to be recorded")
	}

	ttl := stored.ExpiresAt.Sub(before)
	if ttl < testLoginTTL-time.Minute || ttl > testLoginTTL+time.Minute {
		t.Fatalf("expected expiry about %v out, got %v", testLoginTTL, ttl)
	}

	code := mailer.lastCode()
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	if bytes.Contains(stored.CodeHash, []byte(code)) {
		t.Fatal("code must not be recoverable from the stored hash")
	}
}

func TestLoginMailerFailureKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	_, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if !errors.Is(err, ErrOTPDelivery) {
		t.Fatalf("expected ErrOTPDelivery, got %v", err)
	}

	// The persisted challenge stays redeemable until its natural expiry;
	// the client simply never received the code.
	for _, challenge := range challenges.challenges {
		if challenge.Consumed {
			t.Fatal("delivery failure must not consume the challenge")
		}
	}
}

func TestVerifyLoginOTP(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	code := mailer.lastCode()

	result, err := svc.VerifyLoginOTP(ctx, ref.Ref, code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected bearer token")
	}
	if result.Account == nil || result.Account.Email != "a@x.com" {
		t.Fatal("expected account identity in result")
	}

	t.Run("repeat redemption fails", func(t *testing.T) {
		if _, err := svc.VerifyLoginOTP(ctx, ref.Ref, code); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected ErrOTPInvalid on second redemption, got %v", err)
		}
	})

	t.Run("unknown ref fails", func(t *testing.T) {
		if _, err := svc.VerifyLoginOTP(ctx, uuid.New(), code); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected ErrOTPInvalid for unknown ref, got %v", err)
		}
	})
}

func TestVerifyLoginOTPWrongCodeLeavesChallengeRedeemable(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	code := mailer.lastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := svc.VerifyLoginOTP(ctx, ref.Ref, wrong); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for wrong code, got %v", err)
	}
	if challenges.get(ref.Ref).Consumed {
		t.Fatal("wrong code must not consume the challenge")
	}

	if _, err := svc.VerifyLoginOTP(ctx, ref.Ref, code); err != nil {
		t.Fatalf("correct code should still redeem, got %v", err)
	}
}

func TestVerifyLoginOTPExpired(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	challenges.get(ref.Ref).ExpiresAt = time.Now().Add(-time.Minute)

	if _, err := svc.VerifyLoginOTP(ctx, ref.Ref, mailer.lastCode()); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for expired challenge, got %v", err)
	}
}

func TestVerifyLoginOTPRejectsResetChallenge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.RequestPasswordReset(ctx, "a@x.com", ClientMeta{})
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}

	if _, err := svc.VerifyLoginOTP(ctx, ref.Ref, mailer.lastCode()); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for cross-flow redemption, got %v", err)
	}
	if challenges.get(ref.Ref).Consumed {
		t.Fatal("cross-flow attempt must not consume the challenge")
	}
}

func TestRedeemExactlyOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	code := mailer.lastCode()

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.VerifyLoginOTP(ctx, ref.Ref, code)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrOTPInvalid):
			failures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful redemption, got %d", successes)
	}
	if failures != workers-1 {
		t.Fatalf("expected %d failed redemptions, got %d", workers-1, failures)
	}
}

func TestReissueInvalidatesPriorChallenge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	first, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	firstCode := mailer.lastCode()

	second, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if _, err := svc.VerifyLoginOTP(ctx, first.Ref, firstCode); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected old challenge to be dead after reissue, got %v", err)
	}
	if _, err := svc.VerifyLoginOTP(ctx, second.Ref, mailer.lastCode()); err != nil {
		t.Fatalf("expected new code to redeem, got %v", err)
	}
}

func TestConcurrentIssuanceLeavesOneActiveChallenge(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccountRepo(newTestAccount(t, "a@x.com", "RightPass1!"))
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	const issuers = 16
	refs := make([]uuid.UUID, issuers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < issuers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			challenge, err := svc.LoginWithEmail(ctx, "a@x.com", "RightPass1!", ClientMeta{})
			if err != nil {
				t.Errorf("login %d: %v", i, err)
				return
			}
			refs[i] = challenge.Ref
		}(i)
	}
	close(start)
	wg.Wait()

	if got := challenges.activeCount("a@x.com", domain.OTPFlowLogin); got != 1 {
		t.Fatalf("expected exactly one active challenge, got %d", got)
	}

	var activeRef uuid.UUID
	for _, ref := range refs {
		if challenge := challenges.get(ref); challenge != nil && !challenge.Consumed {
			activeRef = ref
		}
	}

	redeemed := 0
	for _, code := range mailer.codes() {
		if _, err := svc.VerifyLoginOTP(ctx, activeRef, code); err == nil {
			redeemed++
		} else if !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("unexpected verify error: %v", err)
		}
	}
	if redeemed != 1 {
		t.Fatalf("expected exactly one issued code to redeem the surviving challenge, got %d", redeemed)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success rotates hash", func(t *testing.T) {
		account := newTestAccount(t, "a@x.com", "OldPass12!")
		oldHash := append([]byte(nil), account.PasswordHash...)
		accounts := newFakeAccountRepo(account)
		svc := newAuthServiceForTests(accounts, nil, nil)

		if err := svc.ChangePassword(ctx, account.ID, "OldPass12!", "NewPass34!"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bytes.Equal(account.PasswordHash, oldHash) {
			t.Fatal("expected stored hash to change")
		}
	})

	t.Run("wrong current password leaves hash untouched", func(t *testing.T) {
		account := newTestAccount(t, "a@x.com", "OldPass12!")
		oldHash := append([]byte(nil), account.PasswordHash...)
		accounts := newFakeAccountRepo(account)
		svc := newAuthServiceForTests(accounts, nil, nil)

		if err := svc.ChangePassword(ctx, account.ID, "WrongPass1!", "NewPass34!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if !bytes.Equal(account.PasswordHash, oldHash) {
			t.Fatal("stored hash must be byte-identical after a failed change")
		}
		if accounts.updatePasswordCalls != 0 {
			t.Fatal("expected no password update call")
		}
	})

	t.Run("weak new password rejected", func(t *testing.T) {
		account := newTestAccount(t, "a@x.com", "OldPass12!")
		svc := newAuthServiceForTests(newFakeAccountRepo(account), nil, nil)
		if err := svc.ChangePassword(ctx, account.ID, "OldPass12!", "weak"); !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
		}
	})

	t.Run("new password equal to current rejected", func(t *testing.T) {
		account := newTestAccount(t, "a@x.com", "OldPass12!")
		svc := newAuthServiceForTests(newFakeAccountRepo(account), nil, nil)
		if err := svc.ChangePassword(ctx, account.ID, "OldPass12!", "OldPass12!"); !errors.Is(err, ErrPasswordUnchanged) {
			t.Fatalf("expected ErrPasswordUnchanged, got %v", err)
		}
	})

	t.Run("missing account maps to invalid credentials", func(t *testing.T) {
		svc := newAuthServiceForTests(newFakeAccountRepo(), nil, nil)
		if err := svc.ChangePassword(ctx, uuid.New(), "OldPass12!", "NewPass34!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("known email issues reset challenge", func(t *testing.T) {
		accounts := newFakeAccountRepo(newTestAccount(t, "reset@example.com", "OldPass12!"))
		challenges := newFakeChallengeRepo()
		mailer := &fakeMailer{}
		svc := newAuthServiceForTests(accounts, challenges, mailer)

		ref, err := svc.RequestPasswordReset(ctx, "reset@example.com", ClientMeta{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored := challenges.get(ref.Ref)
		if stored == nil || stored.Flow != domain.OTPFlowPasswordReset {
			t.Fatal("expected persisted reset challenge")
		}
		if len(mailer.sent) != 1 || mailer.sent[0].flow != domain.OTPFlowPasswordReset {
			t.Fatal("expected reset mail to be sent")
		}
	})

	t.Run("unknown email returns decoy with the same shape", func(t *testing.T) {
		challenges := newFakeChallengeRepo()
		mailer := &fakeMailer{}
		svc := newAuthServiceForTests(newFakeAccountRepo(), challenges, mailer)

		ref, err := svc.RequestPasswordReset(ctx, "ghost@example.com", ClientMeta{})
		if err != nil {
			t.Fatalf("expected generic success, got %v", err)
		}
		if ref == nil || ref.Ref == uuid.Nil {
			t.Fatal("expected decoy reference")
		}
		if len(challenges.challenges) != 0 {
			t.Fatal("decoy must not be persisted")
		}
		if len(mailer.sent) != 0 {
			t.Fatal("no mail for unknown address")
		}
	})
}

func TestConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AuthService, *fakeAccountRepo, *fakeChallengeRepo, *fakeMailer, *ChallengeRef) {
		t.Helper()
		accounts := newFakeAccountRepo(newTestAccount(t, "reset@example.com", "OldPass12!"))
		challenges := newFakeChallengeRepo()
		mailer := &fakeMailer{}
		svc := newAuthServiceForTests(accounts, challenges, mailer)
		ref, err := svc.RequestPasswordReset(ctx, "reset@example.com", ClientMeta{})
		if err != nil {
			t.Fatalf("request reset: %v", err)
		}
		return svc, accounts, challenges, mailer, ref
	}

	t.Run("success updates password", func(t *testing.T) {
		svc, accounts, _, mailer, ref := setup(t)
		if err := svc.ConfirmPasswordReset(ctx, ref.Ref, mailer.lastCode(), "NewPass1!"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.LoginWithEmail(ctx, "reset@example.com", "OldPass12!", ClientMeta{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected old password to fail, got %v", err)
		}
		if _, err := svc.LoginWithEmail(ctx, "reset@example.com", "NewPass1!", ClientMeta{}); err != nil {
			t.Fatalf("expected new password to log in, got %v", err)
		}
		if accounts.updatePasswordCalls != 1 {
			t.Fatalf("expected one password update, got %d", accounts.updatePasswordCalls)
		}
	})

	t.Run("weak password checked before redemption", func(t *testing.T) {
		svc, _, challenges, mailer, ref := setup(t)
		if err := svc.ConfirmPasswordReset(ctx, ref.Ref, mailer.lastCode(), "weakpassword"); !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
		}
		if challenges.get(ref.Ref).Consumed {
			t.Fatal("policy rejection must not burn the code")
		}
		if err := svc.ConfirmPasswordReset(ctx, ref.Ref, mailer.lastCode(), "NewPass1!"); err != nil {
			t.Fatalf("code should still redeem after policy rejection, got %v", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, _, _, mailer, ref := setup(t)
		wrong := "000000"
		if wrong == mailer.lastCode() {
			wrong = "000001"
		}
		if err := svc.ConfirmPasswordReset(ctx, ref.Ref, wrong, "NewPass1!"); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected ErrOTPInvalid, got %v", err)
		}
	})

	t.Run("update failure after redemption is distinct and the code is dead", func(t *testing.T) {
		svc, accounts, challenges, mailer, ref := setup(t)
		accounts.updatePasswordErr = errors.New("db down")

		err := svc.ConfirmPasswordReset(ctx, ref.Ref, mailer.lastCode(), "NewPass1!")
		if !errors.Is(err, ErrPasswordUpdateAfterVerify) {
			t.Fatalf("expected ErrPasswordUpdateAfterVerify, got %v", err)
		}
		if !challenges.get(ref.Ref).Consumed {
			t.Fatal("expected challenge to be consumed")
		}

		accounts.updatePasswordErr = nil
		if err := svc.ConfirmPasswordReset(ctx, ref.Ref, mailer.lastCode(), "NewPass1!"); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("expected dead code to fail, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	account := newTestAccount(t, "auth@example.com", "SuperSecret1!")
	accounts := newFakeAccountRepo(account)
	challenges := newFakeChallengeRepo()
	mailer := &fakeMailer{}
	svc := newAuthServiceForTests(accounts, challenges, mailer)

	ref, err := svc.LoginWithEmail(ctx, "auth@example.com", "SuperSecret1!", ClientMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	result, err := svc.VerifyLoginOTP(ctx, ref.Ref, mailer.lastCode())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	authenticated, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authenticated.ID != account.ID {
		t.Fatal("expected account to round-trip through the token")
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for garbage token, got %v", err)
	}
}

func TestDeactivateAccount(t *testing.T) {
	account := newTestAccount(t, "bye@example.com", "SuperSecret1!")
	accounts := newFakeAccountRepo(account)
	svc := newAuthServiceForTests(accounts, nil, nil)

	if err := svc.DeactivateAccount(context.Background(), account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.deactivated) != 1 || accounts.deactivated[0] != account.ID {
		t.Fatalf("expected deactivate call for %s", account.ID)
	}
}
