package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/database/users"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 30 * time.Minute
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed login attempts")
)

// UserStore is the user persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByID(ctx context.Context, id string) (*entities.User, error)
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (int, error)
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
}

// Service handles registration, authentication and token issuing.
type Service struct {
	users  UserStore
	tokens *TokenService
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(store UserStore, tokens *TokenService, cfg config.Auth) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	return &Service{users: store, tokens: tokens, config: cfg, now: time.Now}
}

// Register creates a regular user account.
func (s *Service) Register(ctx context.Context, email, password, name string) (*entities.User, error) {
	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         entities.UserRoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	logger.For(ctx).WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate validates credentials and returns the user. Accounts are
// locked for LockoutDuration after MaxLoginAttempts consecutive failures.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		count, recErr := s.users.RecordLoginFailure(ctx, user.ID, s.config.MaxLoginAttempts, now.Add(s.config.LockoutDuration))
		if recErr != nil {
			logger.For(ctx).WithError(recErr).Warn("failed to record login failure")
		} else if count >= s.config.MaxLoginAttempts {
			logger.For(ctx).WithField("user_id", user.ID).Warn("account locked after repeated failures")
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		logger.For(ctx).WithError(err).Warn("failed to record login")
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// IssueToken signs a bearer token for the user.
func (s *Service) IssueToken(user *entities.User) (string, error) {
	token, _, err := s.tokens.Sign(user)
	return token, err
}

// ValidateToken checks a bearer token and returns the current state of
// its user.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}
