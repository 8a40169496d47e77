package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/config"
	"github.com/meddispatch/backend/internal/model"
)

type fakeAuthRepo struct {
	users       map[int64]*model.User
	nextID      int64
	attempts    []model.LoginAttempt
	resetTokens map[string]*model.PasswordResetToken
	nextTokenID int64
	drivers     map[int64]*model.Driver
	profileErr  error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:       make(map[int64]*model.User),
		resetTokens: make(map[string]*model.PasswordResetToken),
		drivers:     make(map[int64]*model.Driver),
	}
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, email string, userType model.UserType, name, passwordHash string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.UserType == userType {
			return nil, errors.New("duplicate")
		}
	}
	f.nextID++
	u := &model.User{ID: f.nextID, Email: email, UserType: userType, Name: name, PasswordHash: passwordHash}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeAuthRepo) GetUserByEmail(_ context.Context, email string, userType model.UserType) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.UserType == userType {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAuthRepo) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAuthRepo) UpdateUserPassword(_ context.Context, userID int64, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

// CreateUserWithProfile mirrors the transactional insert: when the profile
// step fails, no user row survives either.
func (f *fakeAuthRepo) CreateUserWithProfile(ctx context.Context, email string, userType model.UserType, name, passwordHash, companyName string) (*model.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u, err := f.CreateUser(ctx, email, userType, name, passwordHash)
	if err != nil {
		return nil, err
	}
	if userType == model.UserTypeDriver {
		f.drivers[u.ID] = &model.Driver{UserID: u.ID, FleetRole: model.FleetRoleIndependent}
	}
	return u, nil
}

func (f *fakeAuthRepo) GetDriverScoped(_ context.Context, driverID int64, _ model.FleetScope) (*model.Driver, error) {
	if d, ok := f.drivers[driverID]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAuthRepo) InsertLoginAttempt(_ context.Context, email string, userType model.UserType, success bool) error {
	f.attempts = append(f.attempts, model.LoginAttempt{
		Email: email, UserType: userType, Success: success, CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeAuthRepo) CountFailedLoginAttempts(_ context.Context, email string, userType model.UserType, since time.Time) (int, error) {
	count := 0
	for _, a := range f.attempts {
		if a.Email == email && a.UserType == userType && !a.Success && a.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAuthRepo) DeleteLoginAttempts(_ context.Context, email string, userType model.UserType) (int64, error) {
	kept := f.attempts[:0]
	var deleted int64
	for _, a := range f.attempts {
		if a.Email == email && a.UserType == userType {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	f.attempts = kept
	return deleted, nil
}

func (f *fakeAuthRepo) InsertPasswordResetToken(_ context.Context, userID int64, userType model.UserType, tokenHash string, expiresAt time.Time) error {
	f.nextTokenID++
	f.resetTokens[tokenHash] = &model.PasswordResetToken{
		ID: f.nextTokenID, UserID: userID, UserType: userType, TokenHash: tokenHash, ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeAuthRepo) GetPasswordResetTokenByHash(_ context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	if tok, ok := f.resetTokens[tokenHash]; ok {
		return tok, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAuthRepo) MarkPasswordResetTokenUsed(_ context.Context, tokenID int64) (bool, error) {
	for _, tok := range f.resetTokens {
		if tok.ID == tokenID {
			if tok.UsedAt != nil {
				return false, nil
			}
			now := time.Now()
			tok.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func newTestAuthService(t *testing.T, repo *fakeAuthRepo) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo,
		config.SessionConfig{
			Secret:         "test-secret",
			TTL:            "1h",
			CookiePath:     "/",
			CookieSecure:   "false",
			CookieSameSite: "lax",
		},
		config.AuthConfig{
			LockoutThreshold: "3",
			LockoutWindow:    "15m",
			ResetTokenTTL:    "1h",
		},
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func registerDriver(t *testing.T, svc *AuthService, email, password string) *model.AuthUser {
	t.Helper()
	user, _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email: email, Password: password, Name: "Test Driver", UserType: model.UserTypeDriver,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "correct-horse")

	_, _, wrongPassword := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "wrong", UserType: model.UserTypeDriver,
	})
	_, _, missingAccount := svc.Login(context.Background(), model.LoginRequest{
		Email: "nobody@example.com", Password: "whatever", UserType: model.UserTypeDriver,
	})

	for _, err := range []error{wrongPassword, missingAccount} {
		ae := apperr.From(err)
		if ae.Kind != apperr.KindAuthentication {
			t.Fatalf("expected authentication error, got %s", ae.Kind)
		}
		if ae.Message != genericLoginFailure {
			t.Fatalf("message %q leaks account state", ae.Message)
		}
	}
}

func TestLoginLockout(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "correct-horse")

	req := model.LoginRequest{Email: "d@example.com", Password: "wrong", UserType: model.UserTypeDriver}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Login(context.Background(), req); err == nil {
			t.Fatal("wrong password must fail")
		}
	}

	// Correct password is now rejected with the same generic message.
	_, _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "correct-horse", UserType: model.UserTypeDriver,
	})
	ae := apperr.From(err)
	if ae.Kind != apperr.KindAuthentication || ae.Message != genericLoginFailure {
		t.Fatalf("locked account must fail generically, got %v", err)
	}
}

func TestClearLockoutRestoresLogin(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	user := registerDriver(t, svc, "d@example.com", "correct-horse")

	bad := model.LoginRequest{Email: "d@example.com", Password: "wrong", UserType: model.UserTypeDriver}
	for i := 0; i < 3; i++ {
		svc.Login(context.Background(), bad)
	}

	deleted, err := svc.ClearLockout(context.Background(), user.ID, model.UserTypeDriver)
	if err != nil {
		t.Fatalf("ClearLockout: %v", err)
	}
	if deleted == 0 {
		t.Fatal("expected recorded attempts to be deleted")
	}

	if _, _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "correct-horse", UserType: model.UserTypeDriver,
	}); err != nil {
		t.Fatalf("login after lockout clear should succeed, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "correct-horse")

	user, token, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "correct-horse", UserType: model.UserTypeDriver,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	session, err := svc.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if session.UserID != user.ID || session.UserType != model.UserTypeDriver {
		t.Fatalf("session state mismatch: %+v", session)
	}

	resolved, err := svc.ResolveUser(context.Background(), session)
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if resolved.ID != user.ID || resolved.FleetRole != model.FleetRoleIndependent {
		t.Fatalf("unexpected resolved user: %+v", resolved)
	}
}

func TestResolveUserRejectsStaleSession(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	user := registerDriver(t, svc, "d@example.com", "correct-horse")

	_, token, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "correct-horse", UserType: model.UserTypeDriver,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	session, err := svc.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}

	// The account disappears while the cookie is still valid.
	delete(repo.users, user.ID)

	_, err = svc.ResolveUser(context.Background(), session)
	if apperr.From(err).Kind != apperr.KindAuthentication {
		t.Fatalf("stale session must fail authentication, got %v", err)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "correct-horse")

	_, token, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "correct-horse", UserType: model.UserTypeDriver,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.ParseSession(token + "x"); err == nil {
		t.Fatal("tampered token must be rejected")
	}
	if _, err := svc.ParseSession("not-a-token"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}

func TestResetPasswordIsSingleUse(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "old-password")

	token, err := svc.ForgotPassword(context.Background(), "d@example.com", model.UserTypeDriver)
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token for an existing account")
	}

	reset := model.ResetPasswordRequest{Token: token, UserType: model.UserTypeDriver, NewPassword: "new-password"}
	if err := svc.ResetPassword(context.Background(), reset); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), model.LoginRequest{
		Email: "d@example.com", Password: "new-password", UserType: model.UserTypeDriver,
	}); err != nil {
		t.Fatalf("login with new password should succeed, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), reset); err == nil {
		t.Fatal("second redemption of the same token must fail")
	}
}

func TestResetPasswordRejectsUserTypeMismatch(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)
	registerDriver(t, svc, "d@example.com", "old-password")

	token, err := svc.ForgotPassword(context.Background(), "d@example.com", model.UserTypeDriver)
	if err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	err = svc.ResetPassword(context.Background(), model.ResetPasswordRequest{
		Token: token, UserType: model.UserTypeShipper, NewPassword: "new-password",
	})
	if apperr.From(err).Kind != apperr.KindAuthentication {
		t.Fatalf("token issued for a driver must not reset a shipper, got %v", err)
	}
}

func TestForgotPasswordUnknownAccountIsSilent(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)

	token, err := svc.ForgotPassword(context.Background(), "nobody@example.com", model.UserTypeDriver)
	if err != nil {
		t.Fatalf("unknown account must not surface an error, got %v", err)
	}
	if token != "" {
		t.Fatal("no token should be issued for an unknown account")
	}
}

func TestRegisterProfileFailureLeavesNoOrphan(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuthService(t, repo)

	repo.profileErr = errors.New("drivers insert failed")
	req := model.RegisterRequest{
		Email: "d@example.com", Password: "correct-horse", Name: "Test Driver", UserType: model.UserTypeDriver,
	}
	if _, _, err := svc.Register(context.Background(), req); err == nil {
		t.Fatal("register must fail when the profile insert fails")
	}
	if len(repo.users) != 0 {
		t.Fatalf("failed register left %d user rows behind", len(repo.users))
	}

	// The email is still free, so a retry succeeds instead of hitting the
	// duplicate-account conflict.
	repo.profileErr = nil
	if _, _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("retry after a failed register should succeed, got %v", err)
	}
}
