package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/database/users"
	"github.com/tulisify/tulisify/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4 // Low cost for faster tests
	}
	tokens, err := NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return NewService(users.NewRepository(setupTestDB(t)), tokens, cfg)
}

func TestService_Register(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "Reader@Tulisify.com", "reader1234", " Reader ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "reader@tulisify.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Role != entities.UserRoleUser {
		t.Errorf("Role = %q, want %q", user.Role, entities.UserRoleUser)
	}
	if user.Name != "Reader" {
		t.Errorf("Name = %q, want trimmed", user.Name)
	}
	if user.PasswordHash == "" || user.PasswordHash == "reader1234" {
		t.Error("password must be stored hashed")
	}

	if _, err := svc.Register(ctx, "reader@tulisify.com", "another123", ""); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate Register() error = %v, want ErrUserExists", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@tulisify.com", "user123456", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "user@tulisify.com", "user123456", nil},
		{"email is case-insensitive", "USER@tulisify.com", "user123456", nil},
		{"wrong password", "user@tulisify.com", "wrong123456", ErrInvalidCredentials},
		{"unknown user", "nobody@tulisify.com", "user123456", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.LastLoginAt == nil {
				t.Error("LastLoginAt should be set on success")
			}
		})
	}
}

func TestService_AccountLockout(t *testing.T) {
	svc := setupService(t, config.Auth{MaxLoginAttempts: 3, LockoutDuration: time.Hour})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@tulisify.com", "user123456", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Authenticate(ctx, "user@tulisify.com", "wrong123456"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Correct password is refused while locked
	if _, err := svc.Authenticate(ctx, "user@tulisify.com", "user123456"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("locked Authenticate() error = %v, want ErrAccountLocked", err)
	}

	// Lock expires
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(ctx, "user@tulisify.com", "user123456"); err != nil {
		t.Fatalf("Authenticate() after lockout error = %v", err)
	}
}

func TestService_ValidateToken(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "admin@tulisify.com", "admin123456", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	got, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ValidateToken() user = %s, want %s", got.ID, user.ID)
	}

	if _, err := svc.ValidateToken(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token error = %v, want ErrInvalidToken", err)
	}

	ghost, _ := svc.IssueToken(&entities.User{ID: "deleted-user"})
	if _, err := svc.ValidateToken(ctx, ghost); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token for missing user error = %v, want ErrInvalidToken", err)
	}
}

func TestService_GetUserByID(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.GetUserByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrUserNotFound", err)
	}
}
