package usecases

import (
	"context"
	"strings"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/repository"
	"github.com/tulisify/tulisify/internal/result"
)

// LoginUseCase validates credentials locally before asking the repository
// to authenticate them.
type LoginUseCase struct {
	auth repository.AuthRepository
}

// NewLoginUseCase creates a LoginUseCase backed by auth.
func NewLoginUseCase(auth repository.AuthRepository) *LoginUseCase {
	return &LoginUseCase{auth: auth}
}

func (uc *LoginUseCase) Execute(ctx context.Context, req entities.LoginRequest) (res result.Result[entities.AuthResponse]) {
	defer result.Recover(&res, "Login failed")

	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		return result.Invalid[entities.AuthResponse](msg)
	}

	return uc.auth.Login(ctx, req)
}

// RegisterUseCase is LoginUseCase plus a password composition rule.
type RegisterUseCase struct {
	auth repository.AuthRepository
}

// NewRegisterUseCase creates a RegisterUseCase backed by auth.
func NewRegisterUseCase(auth repository.AuthRepository) *RegisterUseCase {
	return &RegisterUseCase{auth: auth}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, req entities.RegisterRequest) (res result.Result[entities.AuthResponse]) {
	defer result.Recover(&res, "Registration failed")

	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		return result.Invalid[entities.AuthResponse](msg)
	}
	if !hasLetterAndDigit(req.Password) {
		return result.Invalid[entities.AuthResponse](MsgPasswordFormat)
	}
	req.Name = strings.TrimSpace(req.Name)

	return uc.auth.Register(ctx, req)
}

// LogoutUseCase ends the current session.
type LogoutUseCase struct {
	auth repository.AuthRepository
}

// NewLogoutUseCase creates a LogoutUseCase backed by auth.
func NewLogoutUseCase(auth repository.AuthRepository) *LogoutUseCase {
	return &LogoutUseCase{auth: auth}
}

func (uc *LogoutUseCase) Execute(ctx context.Context) (res result.Result[struct{}]) {
	defer result.Recover(&res, "Logout failed")
	return uc.auth.Logout(ctx)
}

// CurrentUserUseCase resolves the signed-in user, if any.
type CurrentUserUseCase struct {
	auth repository.AuthRepository
}

// NewCurrentUserUseCase creates a CurrentUserUseCase backed by auth.
func NewCurrentUserUseCase(auth repository.AuthRepository) *CurrentUserUseCase {
	return &CurrentUserUseCase{auth: auth}
}

func (uc *CurrentUserUseCase) Execute(ctx context.Context) (res result.Result[*entities.User]) {
	defer result.Recover(&res, "Failed to get current user")
	return uc.auth.GetCurrentUser(ctx)
}
