package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ojt-records-api/internal/models"
	"github.com/noah-isme/ojt-records-api/internal/repository"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
	"github.com/noah-isme/ojt-records-api/pkg/security"
)

const defaultTokenTTL = 7 * 24 * time.Hour

type authAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type profileCreator interface {
	Create(ctx context.Context, account *models.Account, fields models.ProfileFields) (*models.StudentProfile, error)
}

// AuthConfig is the initialization state of the auth service.
type AuthConfig struct {
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// AuthService provides authentication use cases.
type AuthService struct {
	accounts  authAccountRepository
	profiles  profileCreator
	hasher    security.PasswordHasher
	tokens    security.TokenIssuer
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	// compared against when the email is unknown so both failure paths pay for a hash check
	decoyHash string
}

// NewAuthService constructs an AuthService instance. metrics may be nil.
func NewAuthService(accounts authAccountRepository, profiles profileCreator, hasher security.PasswordHasher, tokens security.TokenIssuer, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaultTokenTTL
	}
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		logger.Warn("failed to prepare decoy hash", zap.Error(err))
	}
	return &AuthService{
		accounts:  accounts,
		profiles:  profiles,
		hasher:    hasher,
		tokens:    tokens,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		config:    config,
		decoyHash: decoy,
	}
}

// Login authenticates an account. Unknown email and wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (res *models.AuthResponse, err error) {
	defer func() { s.observe("login", err) }()

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.hasher.Verify(req.Password, s.decoyHash)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Persistence(err, "failed to fetch account")
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	return s.issue(account, nil)
}

// Register creates a student account and its profile, then signs the caller in.
//
// The account and the profile are written by two independent calls. When the
// profile write fails the account is kept: it cannot log in to anything useful
// and it blocks later registrations with the same email.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (res *models.AuthResponse, err error) {
	defer func() { s.observe("register", err) }()

	req.Email = strings.TrimSpace(req.Email)
	trimProfileFields(&req.ProfileFields)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if err := checkPasswordLength(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.accounts.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return nil, appErrors.Clone(appErrors.ErrEmailTaken, "")
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Persistence(err, "failed to check email")
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Email: req.Email, PasswordHash: hash, Role: models.RoleStudent}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Clone(appErrors.ErrEmailTaken, "")
		}
		return nil, appErrors.Persistence(err, "failed to create account")
	}

	profile, err := s.profiles.Create(ctx, account, req.ProfileFields)
	if err != nil {
		s.logger.Error("account created without profile",
			zap.String("account_id", account.ID),
			zap.String("email", account.Email),
			zap.Error(err))
		return nil, err
	}

	return s.issue(account, profile)
}

// ResetPassword overwrites the password of the account owning req.Email.
// The current password is not asked for.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (err error) {
	defer func() { s.observe("reset_password", err) }()

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reset password payload")
	}
	if err := checkPasswordLength(req.NewPassword); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrEmailNotFound, "")
		}
		return appErrors.Persistence(err, "failed to fetch account")
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrEmailNotFound, "")
		}
		return appErrors.Persistence(err, "failed to update password")
	}

	s.logger.Warn("password reset without re-authentication", zap.String("account_id", account.ID))
	return nil
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*security.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return claims, nil
}

// Me returns the public view of the account behind the claims.
func (s *AuthService) Me(ctx context.Context, claims *security.Claims) (*models.AccountView, error) {
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Persistence(err, "failed to fetch account")
	}
	view := account.View()
	return &view, nil
}

// EnsureAdmin seeds the admin account when its email is not registered yet.
// Safe to call on every startup.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	if s.config.AdminEmail == "" || s.config.AdminPassword == "" {
		return errors.New("admin email and password must be configured")
	}

	existing, err := s.accounts.FindByEmail(ctx, s.config.AdminEmail)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			s.logger.Warn("reserved admin email belongs to a non-admin account", zap.String("account_id", existing.ID))
		}
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Persistence(err, "failed to look up admin account")
	}

	hash, err := s.hasher.Hash(s.config.AdminPassword)
	if err != nil {
		return err
	}
	admin := &models.Account{Email: s.config.AdminEmail, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.accounts.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return appErrors.Persistence(err, "failed to create admin account")
	}

	s.logger.Info("admin account created", zap.String("account_id", admin.ID), zap.String("email", admin.Email))
	return nil
}

func (s *AuthService) issue(account *models.Account, profile *models.StudentProfile) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, string(account.Role), s.config.TokenTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      account.Role,
		Account:   account.View(),
		Profile:   profile,
	}, nil
}

func (s *AuthService) hashPassword(plaintext string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return "", passwordTooLong(err)
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return hash, nil
}

// checkPasswordLength counts bytes, not runes: that is the unit bcrypt limits.
func checkPasswordLength(password string) error {
	if len(password) > security.MaxPasswordBytes {
		return passwordTooLong(security.ErrPasswordTooLong)
	}
	return nil
}

func passwordTooLong(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
		fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordBytes))
}

func (s *AuthService) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.ObserveAuth(operation, outcome)
}
