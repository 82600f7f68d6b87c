package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

func TestLocalRepository_RegisterAndLogin(t *testing.T) {
	repo := NewLocalRepository(setupService(t, config.Auth{}))
	ctx := context.Background()

	reg := repo.Register(ctx, entities.RegisterRequest{Email: "new@tulisify.com", Password: "reader1234", Name: "New"})
	require.True(t, reg.IsSuccess(), reg.ErrorMessage())
	assert.NotEmpty(t, reg.Value().Token)
	assert.Equal(t, "new@tulisify.com", reg.Value().User.Email)

	dup := repo.Register(ctx, entities.RegisterRequest{Email: "new@tulisify.com", Password: "reader1234"})
	require.True(t, dup.IsFailure())
	assert.Equal(t, result.KindConflict, dup.Kind())
	assert.Equal(t, MsgEmailTaken, dup.ErrorMessage())

	login := repo.Login(ctx, entities.LoginRequest{Email: "new@tulisify.com", Password: "reader1234"})
	require.True(t, login.IsSuccess())
	assert.Equal(t, reg.Value().User.ID, login.Value().User.ID)

	bad := repo.Login(ctx, entities.LoginRequest{Email: "new@tulisify.com", Password: "nope12345"})
	require.True(t, bad.IsFailure())
	assert.Equal(t, result.KindUnauthorized, bad.Kind())
	assert.Equal(t, "Invalid email or password", bad.ErrorMessage())
}

func TestLocalRepository_LockedAccount(t *testing.T) {
	repo := NewLocalRepository(setupService(t, config.Auth{MaxLoginAttempts: 1}))
	ctx := context.Background()

	require.True(t, repo.Register(ctx, entities.RegisterRequest{Email: "u@tulisify.com", Password: "reader1234"}).IsSuccess())
	require.True(t, repo.Login(ctx, entities.LoginRequest{Email: "u@tulisify.com", Password: "wrong1234"}).IsFailure())

	res := repo.Login(ctx, entities.LoginRequest{Email: "u@tulisify.com", Password: "reader1234"})
	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindUnauthorized, res.Kind())
	assert.Equal(t, MsgAccountLocked, res.ErrorMessage())
}

func TestLocalRepository_CurrentUserFromContext(t *testing.T) {
	repo := NewLocalRepository(setupService(t, config.Auth{}))

	anon := repo.GetCurrentUser(context.Background())
	require.True(t, anon.IsSuccess())
	assert.Nil(t, anon.Value())

	user := &entities.User{ID: "u1", Email: "user@tulisify.com"}
	ctx := WithUser(context.Background(), user)
	me := repo.GetCurrentUser(ctx)
	require.True(t, me.IsSuccess())
	assert.Same(t, user, me.Value())

	assert.True(t, repo.Logout(ctx).IsSuccess())
}
