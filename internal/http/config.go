package http

import (
	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/database"
	"github.com/tulisify/tulisify/internal/storage"
	"github.com/tulisify/tulisify/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Use-cases over the local repositories
	Container *container.Container

	// Health checks
	Database *database.Database

	// Uploads and downloads
	Assets        *storage.Assets
	MaxUploadSize int64

	// Authentication (required)
	AuthMiddleware *auth.Middleware
	// Optional per-IP limit on login and register
	RateLimiter *auth.RateLimiter
	// Send HSTS; only meaningful behind TLS
	SecureTransport bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
