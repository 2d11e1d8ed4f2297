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
	"go.uber.org/zap"

	"github.com/mrlokans/qbank/internal/audit"
	"github.com/mrlokans/qbank/internal/auth"
	"github.com/mrlokans/qbank/internal/config"
	"github.com/mrlokans/qbank/internal/database"
	auditrepo "github.com/mrlokans/qbank/internal/database/audit"
	"github.com/mrlokans/qbank/internal/database/questions"
	"github.com/mrlokans/qbank/internal/database/runs"
	"github.com/mrlokans/qbank/internal/database/taxonomy"
	http_controllers "github.com/mrlokans/qbank/internal/http"
	"github.com/mrlokans/qbank/internal/importers"
	"github.com/mrlokans/qbank/internal/importsession"
	"github.com/mrlokans/qbank/internal/logger"
	"github.com/mrlokans/qbank/internal/scheduler"
	"github.com/mrlokans/qbank/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		// service connections
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

// sessionBackend is a session store that can also drop expired sessions.
type sessionBackend interface {
	importsession.Store
	importsession.Sweeper
}

// openSessionStore builds the configured session backend. The returned
// pinger is nil for the in-process store.
func openSessionStore(ctx context.Context, cfg config.SessionStore) (sessionBackend, http_controllers.StorePinger, func() error, error) {
	switch cfg.Backend {
	case "", config.SessionBackendMemory:
		return importsession.NewMemoryStore(), nil, func() error { return nil }, nil
	case config.SessionBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, nil, fmt.Errorf("redis session store requires REDIS_ADDR")
		}
		store, err := importsession.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix, cfg.RedisTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported session store backend %q", cfg.Backend)
	}
}

func Run(cfg *config.Config, version string) {
	log := logger.Must(cfg.Logging.Mode)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	if cfg.Logging.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting qbank", zap.String("version", version))

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	taxonomyRepo := taxonomy.NewRepository(db.DB)
	questionRepo := questions.NewRepository(db.DB)
	runRepo := runs.NewRepository(db.DB)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), log)
	var archiver importers.Archiver
	if cfg.Audit.ArchiveUploads {
		archiver = audit.NewArchiver(cfg.Audit.Dir)
		log.Info("archiving uploads", zap.String("dir", cfg.Audit.Dir))
	}

	store, storePinger, closeStore, err := openSessionStore(context.Background(), cfg.SessionStore)
	if err != nil {
		log.Fatal("failed to initialize session store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("error closing session store", zap.Error(err))
		}
	}()
	log.Info("session store ready", zap.String("backend", string(cfg.SessionStore.Backend)))

	// Session eviction runs through the task queue when it is enabled so
	// pending evictions survive a restart.
	var evictor importsession.Evictor = importsession.NewTimerEvictor(store, log)
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFromSettings(cfg.Tasks), log)
		if err != nil {
			log.Fatal("failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewEvictImportSessionQueue(store, log),
			tasks.NewCleanupAuditEventsQueue(auditService, log),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		evictor = tasks.NewSessionEvictor(taskClient)
	}

	// Periodic sweep of expired sessions
	var housekeeper *scheduler.Housekeeper
	if cfg.Housekeeping.Enabled {
		var queue tasks.Enqueuer
		if taskClient != nil {
			queue = taskClient
		}
		housekeeper = scheduler.NewHousekeeper(store, queue, scheduler.HousekeepingConfig{
			SweepSchedule:      cfg.Housekeeping.SweepSchedule,
			Retention:          cfg.Import.Retention,
			MaxSessionAge:      cfg.SessionStore.RedisTTL,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		}, log)
		if err := housekeeper.Start(context.Background()); err != nil {
			log.Fatal("failed to start housekeeping", zap.Error(err))
		}
	}

	// Authentication for the admin API
	var authMiddleware *auth.Middleware
	var rateLimiter *auth.RateLimiter
	if cfg.Auth.Mode == config.AuthModeToken {
		if len(cfg.Auth.AdminTokenHashes) == 0 {
			log.Fatal("token auth requires AUTH_ADMIN_TOKEN_HASHES")
		}
		rateLimiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		authMiddleware = auth.NewMiddleware(cfg.Auth, auditService).WithRateLimiter(rateLimiter)
		log.Info("authentication mode: token", zap.Int("tokens", len(cfg.Auth.AdminTokenHashes)))
	} else {
		log.Warn("authentication mode: none, the admin API is open")
	}

	pipeline := importers.NewPipeline(importers.PipelineConfig{
		Taxonomy:       taxonomyRepo,
		Questions:      questionRepo,
		Publisher:      importsession.NewPublisher(store, cfg.Import.MaxLogs, log),
		Runs:           runRepo,
		Auditor:        auditService,
		Archiver:       archiver,
		BatchSize:      cfg.Import.BatchSize,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		Logger:         log,
	})

	routerCfg := http_controllers.RouterConfig{
		Importer:       pipeline,
		Sessions:       store,
		Evictor:        evictor,
		Runs:           runRepo,
		Taxonomy:       taxonomyRepo,
		Questions:      questionRepo,
		Audit:          auditService,
		Database:       db,
		Store:          storePinger,
		AuthMiddleware: authMiddleware,
		PollInterval:   cfg.Import.PollInterval,
		Retention:      cfg.Import.Retention,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if housekeeper != nil {
			housekeeper.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if rateLimiter != nil {
			rateLimiter.Stop()
		}
		auditService.Wait()
	}

	Serve(router, cfg, log, onShutdown)
}
