// Package tokenstore keeps the client's bearer token between CLI runs.
//
// The SQLite store seals the token with AES-256-GCM before writing it; the
// key lives in a separate file next to the database unless one is passed
// explicitly.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tulisify/tulisify/internal/crypto"
)

// TokenKey is the storage key of the bearer token.
const TokenKey = "tulisify_token"

const (
	// EnvEncryptionKey overrides the key file when set.
	EnvEncryptionKey = "TOKEN_ENCRYPTION_KEY"

	DefaultKeyFileName = "token-key"
)

// Store persists a single bearer token. Get returns "" when nothing is
// stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	return m.Set(context.Background(), "")
}

// credential is one row of the client database.
type credential struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (credential) TableName() string { return "credentials" }

// SQLStore is a Store backed by a local SQLite file.
type SQLStore struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

type Config struct {
	// DatabasePath is the SQLite file; its directory is created if needed.
	DatabasePath string

	// EncryptionKey is a base64 32-byte key. Falls back to
	// TOKEN_ENCRYPTION_KEY, then to KeyFilePath.
	EncryptionKey string

	// KeyFilePath defaults to token-key beside the database.
	KeyFilePath string
}

func New(cfg Config) (*SQLStore, error) {
	if cfg.DatabasePath == "" {
		return nil, errors.New("token store database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create token store directory: %w", err)
	}

	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}
	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&credential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLStore{db: db, encryptor: encryptor}, nil
}

func resolveEncryptionKey(cfg Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}
	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		keyFilePath = filepath.Join(filepath.Dir(cfg.DatabasePath), DefaultKeyFileName)
	}
	return crypto.LoadOrCreateKey(keyFilePath)
}

func (s *SQLStore) Get(ctx context.Context) (string, error) {
	var row credential
	err := s.db.WithContext(ctx).Where("name = ?", TokenKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	token, err := s.encryptor.Decrypt(row.Value)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return token, nil
}

// Set upserts the token. An empty token clears the store.
func (s *SQLStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	sealed, err := s.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	row := credential{Name: TokenKey, Value: sealed, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("name = ?", TokenKey).Delete(&credential{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
