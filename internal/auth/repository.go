package auth

import (
	"context"
	"errors"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/result"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountLocked      = "Account temporarily locked, try again later"
	MsgEmailTaken         = "Email already registered"
)

// LocalRepository is the server-side repository.AuthRepository. The
// current user is the one Middleware.Authenticate stored in the context.
type LocalRepository struct {
	service *Service
}

func NewLocalRepository(service *Service) *LocalRepository {
	return &LocalRepository{service: service}
}

func (r *LocalRepository) Login(ctx context.Context, req entities.LoginRequest) result.Result[entities.AuthResponse] {
	user, err := r.service.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return result.Fail[entities.AuthResponse](result.KindUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, ErrAccountLocked):
		return result.Fail[entities.AuthResponse](result.KindUnauthorized, MsgAccountLocked)
	case err != nil:
		logger.For(ctx).WithError(err).Error("login failed")
		return result.Fail[entities.AuthResponse](result.KindServer, "Login failed")
	}
	return r.respond(ctx, user, "Login failed")
}

func (r *LocalRepository) Register(ctx context.Context, req entities.RegisterRequest) result.Result[entities.AuthResponse] {
	user, err := r.service.Register(ctx, req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, ErrUserExists):
		return result.Fail[entities.AuthResponse](result.KindConflict, MsgEmailTaken)
	case errors.Is(err, ErrPasswordTooLong):
		return result.Invalid[entities.AuthResponse]("Password is too long")
	case err != nil:
		logger.For(ctx).WithError(err).Error("registration failed")
		return result.Fail[entities.AuthResponse](result.KindServer, "Registration failed")
	}
	return r.respond(ctx, user, "Registration failed")
}

func (r *LocalRepository) respond(ctx context.Context, user *entities.User, fallback string) result.Result[entities.AuthResponse] {
	token, err := r.service.IssueToken(user)
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to issue token")
		return result.Fail[entities.AuthResponse](result.KindServer, fallback)
	}
	return result.Success(entities.AuthResponse{User: *user, Token: token})
}

// GetCurrentUser succeeds with nil for anonymous requests.
func (r *LocalRepository) GetCurrentUser(ctx context.Context) result.Result[*entities.User] {
	return result.Success(UserFromContext(ctx))
}

// Logout has nothing to revoke server-side.
func (r *LocalRepository) Logout(ctx context.Context) result.Result[struct{}] {
	if user := UserFromContext(ctx); user != nil {
		logger.For(ctx).WithField("user_id", user.ID).Debug("user logged out")
	}
	return result.Success(struct{}{})
}
