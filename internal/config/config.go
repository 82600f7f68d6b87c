package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Auth
		Tasks
		Client
		Log
	}

	HTTP struct {
		Port int32
		Host string
		// PublicURL prefixes the url returned by uploads; empty means
		// relative "/api/files/..." urls.
		PublicURL string
		// SecureTransport adds HSTS; set when served behind TLS.
		SecureTransport bool
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		SeedDemo bool
	}
	Storage struct {
		Dir           string
		MaxUploadSize int64
	}
	Tasks struct {
		Enabled             bool
		Workers             int
		MaxRetries          int
		RetryDelay          time.Duration
		TaskTimeout         time.Duration
		ReleaseAfter        time.Duration
		CleanupInterval     time.Duration
		RetentionDuration   time.Duration
		OrphanSweepSchedule string        // Cron format: "0 * * * *" = hourly
		OrphanGracePeriod   time.Duration // Unreferenced files younger than this are kept
	}
	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int

		MaxLoginAttempts int           // Failed attempts before lockout (default: 5)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)

		// Per-IP token bucket on login and register
		RateLimitPerMinute int
		RateLimitBurst     int
	}
	Client struct {
		APIBaseURL   string
		APITimeout   time.Duration
		DatabasePath string
	}
	Log struct {
		Level string
	}
)

func defaultClientDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tulisify", DefaultClientDBName)
	}
	return filepath.Join(home, ".tulisify", DefaultClientDBName)
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 4000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_url", "")
	v.SetDefault("secure_transport", false)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("seed_demo_data", true)
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("max_upload_size", 50<<20)
	v.SetDefault("log_level", "info")

	// Auth defaults
	v.SetDefault("jwt_secret", "") // Generated per process if empty
	v.SetDefault("auth_token_expiry", "720h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")
	v.SetDefault("auth_rate_limit_per_minute", 10)
	v.SetDefault("auth_rate_limit_burst", 5)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")
	v.SetDefault("orphan_sweep_schedule", "0 * * * *")
	v.SetDefault("orphan_grace_period", "24h")

	// Client defaults
	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("api_timeout", "30s")
	v.SetDefault("client_db_path", defaultClientDBPath())

	return &Config{
		HTTP: HTTP{
			Port:            v.GetInt32("PORT"),
			Host:            v.GetString("HOST"),
			PublicURL:       v.GetString("PUBLIC_URL"),
			SecureTransport: v.GetBool("SECURE_TRANSPORT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			SeedDemo: v.GetBool("SEED_DEMO_DATA"),
		},
		Storage: Storage{
			Dir:           v.GetString("STORAGE_DIR"),
			MaxUploadSize: v.GetInt64("MAX_UPLOAD_SIZE"),
		},
		Tasks: Tasks{
			Enabled:             v.GetBool("TASKS_ENABLED"),
			Workers:             v.GetInt("TASK_WORKERS"),
			MaxRetries:          v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:          v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:         v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:        v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:     v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration:   v.GetDuration("TASK_RETENTION_DURATION"),
			OrphanSweepSchedule: v.GetString("ORPHAN_SWEEP_SCHEDULE"),
			OrphanGracePeriod:   v.GetDuration("ORPHAN_GRACE_PERIOD"),
		},
		Auth: Auth{
			JWTSecret:          v.GetString("JWT_SECRET"),
			TokenExpiry:        v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:         v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts:   v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:    v.GetDuration("AUTH_LOCKOUT_DURATION"),
			RateLimitPerMinute: v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
			RateLimitBurst:     v.GetInt("AUTH_RATE_LIMIT_BURST"),
		},
		Client: Client{
			APIBaseURL:   v.GetString("API_BASE_URL"),
			APITimeout:   v.GetDuration("API_TIMEOUT"),
			DatabasePath: v.GetString("CLIENT_DB_PATH"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}
