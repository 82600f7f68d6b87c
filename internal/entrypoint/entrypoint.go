package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/database"
	"github.com/tulisify/tulisify/internal/database/books"
	"github.com/tulisify/tulisify/internal/database/users"
	http_controllers "github.com/tulisify/tulisify/internal/http"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/scheduler"
	"github.com/tulisify/tulisify/internal/storage"
	"github.com/tulisify/tulisify/internal/storage/providers/local"
	"github.com/tulisify/tulisify/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Server is the wired application: the router plus everything that has to
// be stopped when it goes away.
type Server struct {
	Router    *gin.Engine
	Container *container.Container

	db          *database.Database
	taskClient  *tasks.Client
	taskCancel  context.CancelFunc
	sweeps      *scheduler.OrphanSweepScheduler
	rateLimiter *auth.RateLimiter
}

// Build opens the databases and storage, seeds demo data when enabled and
// wires the repositories, use-cases and HTTP router.
func Build(ctx context.Context, cfg *config.Config, version string) (*Server, error) {
	srv := &Server{}
	ok := false
	defer func() {
		if !ok {
			srv.Close(ctx)
		}
	}()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	srv.db = db

	if cfg.Database.SeedDemo {
		if err := db.SeedDemoData(ctx, auth.Hasher(cfg.Auth.BcryptCost)); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	store, err := local.New(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logrus.Infof("Storage initialized at %s", store.Root())
	assets := storage.NewAssets(store)
	assets.SetPublicURL(cfg.HTTP.PublicURL)
	bookRepo := books.NewRepository(db.DB, assets)

	// Without a task queue, replaced files are deleted inline and sweeps
	// run on the scheduler goroutine.
	sweeper := tasks.NewOrphanSweeper(store, bookRepo, cfg.Tasks.OrphanGracePeriod)
	trigger := func(ctx context.Context) error {
		_, err := sweeper.Sweep(ctx)
		return err
	}

	if cfg.Tasks.Enabled {
		taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		srv.taskClient = taskClient

		taskClient.Register(
			tasks.NewDeleteAssetQueue(store, bookRepo),
			tasks.NewSweepOrphansQueue(sweeper),
		)
		assets.SetScheduler(taskClient)
		trigger = taskClient.EnqueueSweep

		var taskCtx context.Context
		taskCtx, srv.taskCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)
	}

	srv.sweeps = scheduler.NewOrphanSweepScheduler(cfg.Tasks.OrphanSweepSchedule, trigger)
	if err := srv.sweeps.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start orphan sweep scheduler: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set; tokens will not survive a restart")
	}
	authService := auth.NewService(users.NewRepository(db.DB), tokens, cfg.Auth)

	srv.rateLimiter = auth.NewRateLimiter(auth.RateLimitConfig{
		PerMinute: cfg.Auth.RateLimitPerMinute,
		Burst:     cfg.Auth.RateLimitBurst,
	})

	srv.Container = container.New(container.Deps{
		Books: bookRepo,
		Auth:  auth.NewLocalRepository(authService),
	})

	srv.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Container:       srv.Container,
		Database:        db,
		Assets:          assets,
		MaxUploadSize:   cfg.Storage.MaxUploadSize,
		AuthMiddleware:  auth.NewMiddleware(authService),
		RateLimiter:     srv.rateLimiter,
		SecureTransport: cfg.HTTP.SecureTransport,
		TaskClient:      srv.taskClient,
		Version:         version,
	})

	ok = true
	return srv, nil
}

// Close stops background work and releases the databases. It is safe on a
// partially built server.
func (s *Server) Close(ctx context.Context) {
	if s.sweeps != nil {
		s.sweeps.Stop()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.taskClient != nil {
		s.taskClient.Stop(ctx)
		if s.taskCancel != nil {
			s.taskCancel()
		}
		if err := s.taskClient.Close(); err != nil {
			logrus.Errorf("Error closing task client: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logrus.Errorf("Error closing database: %v", err)
		}
	}
}

// Serve runs the router until SIGINT or SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var listenErr error
	select {
	case listenErr = <-errCh:
	case <-quit:
		logrus.Infof("Shutdown Server, waiting %v before killing", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if listenErr != nil {
		if onShutdown != nil {
			onShutdown(ctx)
		}
		return fmt.Errorf("listen: %w", listenErr)
	}

	shutdownErr := srv.Shutdown(ctx)

	// Stop background work once no request can enqueue more.
	if onShutdown != nil {
		onShutdown(ctx)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	logrus.Info("Server exiting")
	return nil
}

// Run builds the server from cfg and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	if err := logger.Setup(cfg.Log.Level); err != nil {
		return err
	}
	logrus.Infof("Starting Tulisify v%s", version)

	if cfg.HTTP.PublicURL == "" {
		logrus.Info("PUBLIC_URL is not set; upload urls will be relative")
	}

	server, err := Build(context.Background(), cfg, version)
	if err != nil {
		return err
	}
	return Serve(server.Router, cfg, server.Close)
}
