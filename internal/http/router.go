package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
	"github.com/tulisify/tulisify/internal/storage"
)

const defaultMaxUploadSize = 50 << 20

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(metrics.Middleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureTransport {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	var store storage.Client
	if cfg.Assets != nil {
		store = cfg.Assets.Client()
	}
	health := NewHealthController(cfg.Database, store, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	api.Use(bodyLimit(cfg.MaxUploadSize))

	// Anonymous requests pass through Authenticate; the guards below
	// decide per route.
	api.Use(cfg.AuthMiddleware.Authenticate())
	requireAuth := cfg.AuthMiddleware.RequireAuth()
	requireAdmin := cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)

	// Auth endpoints
	authController := NewAuthController(cfg.Container)
	authGroup := api.Group("/auth")
	if cfg.RateLimiter != nil {
		authGroup.POST("/login", cfg.RateLimiter.Middleware(), authController.Login)
		authGroup.POST("/register", cfg.RateLimiter.Middleware(), authController.Register)
	} else {
		authGroup.POST("/login", authController.Login)
		authGroup.POST("/register", authController.Register)
	}
	authGroup.GET("/me", requireAuth, authController.Me)
	authGroup.POST("/logout", authController.Logout)

	// Books API endpoints; reads are public, writes need an admin
	books := NewBooksController(cfg.Container)
	api.GET("/books", books.GetAllBooks)
	api.GET("/books/count", books.CountBooks)
	api.GET("/books/:id", books.GetBook)
	api.POST("/books", requireAdmin, books.CreateBook)
	api.PUT("/books/:id", requireAdmin, books.UpdateBook)
	api.DELETE("/books/:id", requireAdmin, books.DeleteBook)

	// Asset endpoints
	if cfg.Assets != nil {
		files := NewFilesController(cfg.Assets)
		api.POST("/upload", requireAdmin, files.Upload)
		api.GET("/files/*path", requireAuth, files.Download)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/:id", requireAdmin, tasksController.GetTaskStatus)
		api.POST("/tasks/sweep", requireAdmin, tasksController.RunSweep)
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found")
	})

	return router
}

// bodyLimit caps request bodies; reading past the limit fails with
// *http.MaxBytesError, reported as 413.
func bodyLimit(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = defaultMaxUploadSize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			respondError(c, http.StatusRequestEntityTooLarge, MsgFileTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
