package api

import (
	"context"
	"net/http"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/result"
)

// MsgTokenStorage is reported when the token could not be persisted.
const MsgTokenStorage = "Failed to store session"

// AuthAPIRepository is a repository.AuthRepository over /auth. It owns the
// client's token store: login and register save the token, logout and a
// rejected token clear it.
type AuthAPIRepository struct {
	client *Client
}

func NewAuthAPIRepository(client *Client) *AuthAPIRepository {
	return &AuthAPIRepository{client: client}
}

func (r *AuthAPIRepository) Login(ctx context.Context, req entities.LoginRequest) result.Result[entities.AuthResponse] {
	return r.authenticate(ctx, "/auth/login", req, "Login failed")
}

func (r *AuthAPIRepository) Register(ctx context.Context, req entities.RegisterRequest) result.Result[entities.AuthResponse] {
	return r.authenticate(ctx, "/auth/register", req, "Registration failed")
}

func (r *AuthAPIRepository) authenticate(ctx context.Context, path string, req any, fallback string) result.Result[entities.AuthResponse] {
	body, err := jsonPayload(req)
	if err != nil {
		return networkError[entities.AuthResponse]()
	}
	resp, err := r.client.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		logger.For(ctx).WithError(err).Debugf("POST %s failed", path)
		return networkError[entities.AuthResponse]()
	}
	if !resp.ok() {
		return failure[entities.AuthResponse](resp, fallback)
	}

	auth := decode[entities.AuthResponse](resp)
	if auth.IsFailure() {
		return auth
	}
	if err := r.client.tokens.Set(ctx, auth.Value().Token); err != nil {
		logger.For(ctx).WithError(err).Warn("failed to persist token")
		return result.Failure[entities.AuthResponse](MsgTokenStorage)
	}
	return auth
}

// GetCurrentUser succeeds with nil when no token is stored or the API
// rejects it; a rejected token is cleared.
func (r *AuthAPIRepository) GetCurrentUser(ctx context.Context) result.Result[*entities.User] {
	token, err := r.client.tokens.Get(ctx)
	if err != nil {
		logger.For(ctx).WithError(err).Warn("failed to read token")
		return result.Failure[*entities.User]("Failed to get current user")
	}
	if token == "" {
		return result.Success[*entities.User](nil)
	}

	resp, err := r.client.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		logger.For(ctx).WithError(err).Debug("GET /auth/me failed")
		return networkError[*entities.User]()
	}
	if resp.status == http.StatusUnauthorized {
		if err := r.client.tokens.Clear(ctx); err != nil {
			logger.For(ctx).WithError(err).Warn("failed to clear rejected token")
		}
		return result.Success[*entities.User](nil)
	}
	if !resp.ok() {
		return failure[*entities.User](resp, "Failed to get current user")
	}

	user := decode[entities.User](resp)
	if user.IsFailure() {
		return result.Propagate[*entities.User](user)
	}
	u := user.Value()
	return result.Success(&u)
}

// Logout tells the API (best effort; tokens are stateless) and always
// drops the local token.
func (r *AuthAPIRepository) Logout(ctx context.Context) result.Result[struct{}] {
	if _, err := r.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		logger.For(ctx).WithError(err).Debug("POST /auth/logout failed")
	}
	if err := r.client.tokens.Clear(ctx); err != nil {
		logger.For(ctx).WithError(err).Warn("failed to clear token")
		return result.Failure[struct{}]("Logout failed")
	}
	return result.Success(struct{}{})
}
