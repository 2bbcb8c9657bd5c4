// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stock-be/internal/adapters/filestore"
	"github.com/ammerola/stock-be/internal/adapters/queue"
	redis_a "github.com/ammerola/stock-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stock-be/internal/core/services"
	"github.com/ammerola/stock-be/internal/handlers"
	"github.com/ammerola/stock-be/internal/handlers/middleware"
	"github.com/ammerola/stock-be/internal/pkg/config"
	"github.com/ammerola/stock-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting stock management API",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.Setup(os.Stdout, logger.Options{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Service:     cfg.App.Name,
		Version:     Version,
		Environment: cfg.App.Environment,
		AddSource:   cfg.App.Debug,
	})
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("data_file", cfg.Store.DataFile),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	store          *filestore.InventoryStore
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	routes         handlers.Routes
}

func (d *dependencies) cleanup() {
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	store, err := filestore.NewInventoryStore(cfg.Store.DataFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory store: %w", err)
	}
	deps.store = store

	var opts []services.Option

	var cache *redis_a.Cache
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis",
			slog.String("host", cfg.Redis.Host),
			slog.String("port", cfg.Redis.Port),
		)

		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddress(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.redisClient = redisClient

		cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
		opts = append(opts, services.WithCache(cache, cfg.Redis.TTL))
	} else {
		logger.Warn("redis disabled, dashboard and export caching is off")
	}

	var publisher *queue.Publisher
	if cfg.Asynq.Enabled {
		logger.Info("initializing Asynq client", slog.String("addr", cfg.Asynq.RedisAddr))

		asynqRedisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		}
		deps.asynqClient = asynq.NewClient(asynqRedisOpt)
		deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

		publisher = queue.NewPublisher(deps.asynqClient, logger)
		opts = append(opts, services.WithAlertPublisher(publisher))
	} else {
		logger.Warn("asynq disabled, low stock alerts are only logged")
	}

	inventoryService := services.NewInventoryService(store, logger, opts...)

	deps.routes = handlers.Routes{
		Inventory: handlers.NewInventoryHandler(inventoryService, logger),
		Dashboard: handlers.NewDashboardHandler(inventoryService, logger),
		Import: handlers.NewImportHandler(inventoryService, logger,
			int64(cfg.FileProcessing.ExcelMaxSizeMB)<<20,
			int64(cfg.FileProcessing.PDFMaxSizeMB)<<20,
		),
		Health: handlers.NewHealthHandler(deps.redisClient, deps.asynqInspector, cfg, logger),
	}

	if cache != nil {
		deps.routes.Export = handlers.NewExportHandler(inventoryService, cache, logger)
	} else {
		// untyped nil; a nil *redis_a.Cache would be a non-nil interface
		deps.routes.Export = handlers.NewExportHandler(inventoryService, nil, logger)
	}

	if publisher != nil {
		deps.routes.Backup = handlers.NewBackupHandler(publisher, logger)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.routes)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.Server.RequestTimeout > 0 {
		handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	}

	handler = middleware.Compression(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
