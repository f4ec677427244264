package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fotowand/backend/internal/db"
	"github.com/fotowand/backend/internal/model"
	"github.com/fotowand/backend/internal/password"
	"github.com/fotowand/backend/internal/token"
	"go.uber.org/zap"
)

// Error texts are the message codes sent to clients.
var (
	ErrLoginIncorrect      = errors.New("LOGIN_INCORRECT")
	ErrCreateAccountFailed = errors.New("CREATE_ACCOUNT_FAILED")
	ErrEmailInUse          = errors.New("EMAIL_IN_USE")
	ErrRefreshTokenMissing = errors.New("REFRESH_TOKEN_INVALID")
	ErrRefreshTokenInvalid = errors.New("REFRESH_TOKEN_INVALID")
	ErrAccessTokenMissing  = errors.New("ACCESS_TOKEN_INVALID")
	ErrAccessTokenInvalid  = errors.New("ACCESS_TOKEN_INVALID")
	ErrAccessTokenExpired  = errors.New("ACCESS_TOKEN_EXPIRED")
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")
	ErrValidation          = errors.New("VALIDATION_ERROR")
	ErrMisconfigured       = errors.New("auth config invalid")
)

const (
	MessageOK                       = "OK"
	MessagePasswordChangeSuccessful = "PASSWORD_CHANGE_SUCCESSFUL"
	MessageAccessTokenRefreshed     = "ACCESS_TOKEN_REFRESHED"
	MessagePermissionAdmin          = "PERMISSION_ADMIN"
	MessagePermissionNone           = "PERMISSION_NONE"
)

// UserStore is the credential store.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type AuthService struct {
	users       UserStore
	hasher      password.Hasher
	issuer      *token.Issuer
	registry    token.Registry
	permissions PermissionResolver
	logger      *zap.Logger
}

func NewAuthService(users UserStore, hasher password.Hasher, issuer *token.Issuer, registry token.Registry, permissions PermissionResolver, logger *zap.Logger) (*AuthService, error) {
	switch {
	case users == nil:
		return nil, fmt.Errorf("%w: user store is required", ErrMisconfigured)
	case hasher == nil:
		return nil, fmt.Errorf("%w: password hasher is required", ErrMisconfigured)
	case issuer == nil:
		return nil, fmt.Errorf("%w: token issuer is required", ErrMisconfigured)
	case registry == nil:
		return nil, fmt.Errorf("%w: refresh token registry is required", ErrMisconfigured)
	}
	if permissions == nil {
		permissions = NewAccountPermission(users)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		registry:    registry,
		permissions: permissions,
		logger:      logger,
	}, nil
}

// EnsureAdmin creates the bootstrap account unless its email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, cleartext string) error {
	if strings.TrimSpace(email) == "" || cleartext == "" {
		return fmt.Errorf("%w: ADMIN_EMAIL/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	err := s.CreateAccount(ctx, username, email, cleartext)
	if errors.Is(err, ErrEmailInUse) {
		return nil
	}
	if err == nil {
		s.logger.Info("admin account created", zap.String("email", normalizeEmail(email)))
	}
	return err
}

// Login returns ErrLoginIncorrect for every kind of credential failure.
func (s *AuthService) Login(ctx context.Context, email, cleartext string) (*model.TokenPair, error) {
	user, err := s.validateLogin(ctx, email, cleartext)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.validateLogin(ctx, email, oldPassword)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return ErrValidation
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.Email, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrLoginIncorrect
		}
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) CreateAccount(ctx context.Context, username, email, cleartext string) error {
	if username == "" || email == "" || cleartext == "" {
		return ErrCreateAccountFailed
	}
	email = normalizeEmail(email)

	hash, err := s.hasher.Hash(cleartext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailInUse
	case !errors.Is(err, db.ErrNotFound):
		return err
	}

	user, err := s.users.CreateUser(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return ErrEmailInUse
		}
		return err
	}

	s.logger.Info("account created", zap.Int64("user_id", user.ID))
	return nil
}

// RefreshAccessToken exchanges a registered refresh token for a new pair.
// The old token is consumed by a single registry rotation, so replaying it
// fails even when two refreshes race.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenMissing
	}

	userID, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	newRefreshToken, expiresAt, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.registry.Rotate(ctx, refreshToken, newRefreshToken, expiresAt); err != nil {
		if errors.Is(err, token.ErrNotRegistered) {
			s.logger.Warn("refresh token reuse or unknown token", zap.Int64("user_id", userID))
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout is idempotent; an empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.registry.Revoke(ctx, refreshToken)
}

// VerifyAccessToken resolves a bearer token to its user id.
func (s *AuthService) VerifyAccessToken(accessToken string) (int64, error) {
	if accessToken == "" {
		return 0, ErrAccessTokenMissing
	}
	userID, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return 0, ErrAccessTokenExpired
		}
		return 0, ErrAccessTokenInvalid
	}
	return userID, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := s.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUserPermissions(ctx context.Context, userID int64) (model.Permission, error) {
	if userID <= 0 {
		return model.Permission{}, nil
	}
	granted, err := s.permissions.Permission(ctx, userID)
	if err != nil {
		return model.Permission{}, err
	}
	return model.Permission{Permission: granted}, nil
}

func (s *AuthService) validateLogin(ctx context.Context, email, cleartext string) (*model.User, error) {
	if email == "" || cleartext == "" {
		return nil, ErrLoginIncorrect
	}
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// same work as a wrong password
			_, _ = s.hasher.Hash(cleartext)
			return nil, ErrLoginIncorrect
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, cleartext) {
		return nil, ErrLoginIncorrect
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID int64) (*model.TokenPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, expiresAt, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.registry.Register(ctx, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("register refresh token: %w", err)
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(email)
}
