package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/config"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

const sessionCookieName = "auth_session"

// Credential failures share one message so responses cannot be used to probe
// which accounts exist or are locked.
const genericLoginFailure = "invalid email or password"

var ErrMisconfigured = errors.New("auth config invalid")

type authRepo interface {
	CreateUser(ctx context.Context, email string, userType model.UserType, name, passwordHash string) (*model.User, error)
	CreateUserWithProfile(ctx context.Context, email string, userType model.UserType, name, passwordHash, companyName string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string, userType model.UserType) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
	GetDriverScoped(ctx context.Context, driverID int64, scope model.FleetScope) (*model.Driver, error)
	InsertLoginAttempt(ctx context.Context, email string, userType model.UserType, success bool) error
	CountFailedLoginAttempts(ctx context.Context, email string, userType model.UserType, since time.Time) (int, error)
	DeleteLoginAttempts(ctx context.Context, email string, userType model.UserType) (int64, error)
	InsertPasswordResetToken(ctx context.Context, userID int64, userType model.UserType, tokenHash string, expiresAt time.Time) error
	GetPasswordResetTokenByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	MarkPasswordResetTokenUsed(ctx context.Context, tokenID int64) (bool, error)
}

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

type AuthService struct {
	repo             authRepo
	logger           zerolog.Logger
	sessionSecret    []byte
	sessionTTL       time.Duration
	lockoutThreshold int
	lockoutWindow    time.Duration
	resetTokenTTL    time.Duration
	cookieCfg        CookieConfig
	dummyHash        []byte
}

type sessionClaims struct {
	UserType string `json:"userType"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(repo authRepo, sessionCfg config.SessionConfig, authCfg config.AuthConfig, logger zerolog.Logger) (*AuthService, error) {
	if sessionCfg.Secret == "" {
		return nil, fmt.Errorf("%w: SESSION_SECRET is required", ErrMisconfigured)
	}

	sessionTTL, err := time.ParseDuration(sessionCfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
	}

	lockoutThreshold, err := strconv.Atoi(authCfg.LockoutThreshold)
	if err != nil || lockoutThreshold < 1 {
		return nil, fmt.Errorf("%w: invalid AUTH_LOCKOUT_THRESHOLD", ErrMisconfigured)
	}

	lockoutWindow, err := time.ParseDuration(authCfg.LockoutWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_LOCKOUT_WINDOW", ErrMisconfigured)
	}

	resetTokenTTL, err := time.ParseDuration(authCfg.ResetTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_RESET_TOKEN_TTL", ErrMisconfigured)
	}

	cookieSecure, err := strconv.ParseBool(sessionCfg.CookieSecure)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(sessionCfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := sessionCfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	// Hashed once so the no-such-account login path can pay the same bcrypt
	// cost as a real password check.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		repo:             repo,
		logger:           logger,
		sessionSecret:    []byte(sessionCfg.Secret),
		sessionTTL:       sessionTTL,
		lockoutThreshold: lockoutThreshold,
		lockoutWindow:    lockoutWindow,
		resetTokenTTL:    resetTokenTTL,
		cookieCfg: CookieConfig{
			Name:     sessionCookieName,
			Path:     cookiePath,
			Domain:   sessionCfg.CookieDomain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(sessionTTL.Seconds()),
		},
		dummyHash: dummyHash,
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// EnsureAdmin seeds the admin account on startup when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_EMAIL/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	_, err := s.repo.GetUserByEmail(ctx, email, model.UserTypeAdmin)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateUser(ctx, email, model.UserTypeAdmin, "Administrator", string(hash))
	return err
}

// Register creates a driver or shipper account and issues a session.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthUser, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.CreateUserWithProfile(ctx, req.Email, req.UserType, req.Name, string(hash), req.CompanyName)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", apperr.Conflict("an account with this email already exists")
		}
		return nil, "", err
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}
	return &model.AuthUser{ID: user.ID, Email: user.Email, UserType: user.UserType, Name: user.Name}, token, nil
}

// Login verifies credentials, enforcing the lockout policy before the
// password check so a locked account fails regardless of the password.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthUser, string, error) {
	since := time.Now().Add(-s.lockoutWindow)
	failures, err := s.repo.CountFailedLoginAttempts(ctx, req.Email, req.UserType, since)
	if err != nil {
		return nil, "", err
	}
	if failures >= s.lockoutThreshold {
		s.logger.Warn().Str("email", req.Email).Str("userType", string(req.UserType)).Msg("login rejected: account locked out")
		_ = s.repo.InsertLoginAttempt(ctx, req.Email, req.UserType, false)
		return nil, "", apperr.Authentication(genericLoginFailure)
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email, req.UserType)
	if err != nil {
		if db.IsNoRows(err) {
			// Burn the same bcrypt cost as a real comparison so response
			// timing does not reveal whether the account exists.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			_ = s.repo.InsertLoginAttempt(ctx, req.Email, req.UserType, false)
			return nil, "", apperr.Authentication(genericLoginFailure)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		_ = s.repo.InsertLoginAttempt(ctx, req.Email, req.UserType, false)
		return nil, "", apperr.Authentication(genericLoginFailure)
	}

	if err := s.repo.InsertLoginAttempt(ctx, req.Email, req.UserType, true); err != nil {
		return nil, "", err
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}
	return &model.AuthUser{ID: user.ID, Email: user.Email, UserType: user.UserType, Name: user.Name}, token, nil
}

// ParseSession verifies the signed cookie value and returns the session state
// it carries. It does not consult the database; ResolveUser does that.
func (s *AuthService) ParseSession(token string) (*model.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Authentication("unauthorized")
		}
		return s.sessionSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Authentication("unauthorized")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, apperr.Authentication("unauthorized")
	}

	session := &model.Session{
		UserID:   userID,
		UserType: model.UserType(claims.UserType),
		Email:    claims.Email,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// ResolveUser re-checks the session subject against the users table. A stale
// cookie for a deleted user fails here and the caller clears the cookie.
func (s *AuthService) ResolveUser(ctx context.Context, session *model.Session) (*model.AuthUser, error) {
	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.Authentication("unauthorized")
		}
		return nil, err
	}
	if user.UserType != session.UserType {
		return nil, apperr.Authentication("unauthorized")
	}

	authUser := &model.AuthUser{ID: user.ID, Email: user.Email, UserType: user.UserType, Name: user.Name}
	if user.UserType == model.UserTypeDriver {
		driver, err := s.repo.GetDriverScoped(ctx, user.ID, model.FleetScope{DriverID: user.ID})
		if err != nil {
			if db.IsNoRows(err) {
				return nil, apperr.Authentication("unauthorized")
			}
			return nil, err
		}
		authUser.FleetID = driver.FleetID
		authUser.FleetRole = driver.FleetRole
	}
	return authUser, nil
}

// ForgotPassword creates a reset token when the account exists. The returned
// token is handed to the mail pipeline; callers must answer identically
// whether or not an account was found.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, userType model.UserType) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email, userType)
	if err != nil {
		if db.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}

	token, tokenHash, err := newOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	if err := s.repo.InsertPasswordResetToken(ctx, user.ID, userType, tokenHash, expiresAt); err != nil {
		return "", err
	}

	s.logger.Info().Int64("userId", user.ID).Str("userType", string(userType)).Msg("password reset token issued")
	return token, nil
}

// ResetPassword redeems a single-use reset token. A token issued for another
// user type is rejected outright.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	record, err := s.repo.GetPasswordResetTokenByHash(ctx, hashOpaqueToken(req.Token))
	if err != nil {
		if db.IsNoRows(err) {
			return apperr.Authentication("invalid or expired reset token")
		}
		return err
	}

	if record.UsedAt != nil || time.Now().After(record.ExpiresAt) {
		return apperr.Authentication("invalid or expired reset token")
	}
	if record.UserType != req.UserType {
		return apperr.Authentication("invalid or expired reset token")
	}

	used, err := s.repo.MarkPasswordResetTokenUsed(ctx, record.ID)
	if err != nil {
		return err
	}
	if !used {
		return apperr.Authentication("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateUserPassword(ctx, record.UserID, string(hash))
}

// ClearLockout wipes an account's login attempts, lifting any lockout.
func (s *AuthService) ClearLockout(ctx context.Context, userID int64, userType model.UserType) (int64, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, apperr.NotFound("user")
		}
		return 0, err
	}
	if user.UserType != userType {
		return 0, apperr.NotFound("user")
	}
	return s.repo.DeleteLoginAttempts(ctx, user.Email, userType)
}

func (s *AuthService) issueSession(user *model.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserType: string(user.UserType),
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.sessionSecret)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, errors.New("invalid SameSite value")
	}
}

func newOpaqueToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return token, hashOpaqueToken(token), nil
}

func hashOpaqueToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
