// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stock-be/internal/adapters/storage"
	"github.com/ammerola/stock-be/internal/core/ports"
	"github.com/ammerola/stock-be/internal/pkg/config"
	"github.com/ammerola/stock-be/internal/pkg/logger"
	"github.com/ammerola/stock-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.Setup(os.Stdout, logger.Options{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Service:     cfg.App.Name + "-worker",
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})

	if !cfg.Asynq.Enabled {
		slogger.Error("asynq is disabled, nothing for the worker to do")
		os.Exit(1)
	}

	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr),
		slog.String("data_file", cfg.Store.DataFile))

	ctx := context.Background()

	backupStorage, err := initStorage(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize backup storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger),
		},
	)

	mux := workers.NewServeMux(
		workers.NewNotificationProcessor(cfg.Notifications, slogger),
		workers.NewBackupProcessor(cfg.Store.DataFile, backupStorage, slogger),
		slogger,
	)

	scheduler, err := newScheduler(redisOpt, cfg.Asynq.BackupSchedule, slogger)
	if err != nil {
		slogger.Error("failed to register backup schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("backup_schedule", cfg.Asynq.BackupSchedule),
		slog.Bool("email_alerts", cfg.Notifications.EmailEnabled()))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// initStorage archives to S3 when a bucket is configured and to the local
// backup directory otherwise
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	if cfg.AWS.S3Bucket == "" {
		logger.Warn("no S3 bucket configured, backups stay on local disk",
			slog.String("dir", cfg.Store.BackupDir))
		return storage.NewLocalStorage(cfg.Store.BackupDir, logger), nil
	}

	s3Storage, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, err
	}
	return s3Storage, nil
}

func newScheduler(redisOpt asynq.RedisClientOpt, schedule string, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.Local,
		Logger:   newAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("failed to enqueue scheduled task", slog.String("error", err.Error()))
				return
			}
			logger.Debug("scheduled task enqueued",
				slog.String("task_id", info.ID),
				slog.String("type", info.Type))
		},
	})

	task, err := workers.NewSnapshotBackupTask(workers.SnapshotBackupPayload{Reason: "scheduled"})
	if err != nil {
		return nil, err
	}

	entryID, err := scheduler.Register(schedule, task, asynq.Queue(workers.QueueLow), asynq.MaxRetry(3))
	if err != nil {
		return nil, fmt.Errorf("failed to register %q: %w", schedule, err)
	}

	logger.Info("backup schedule registered",
		slog.String("entry_id", entryID),
		slog.String("schedule", schedule))

	return scheduler, nil
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.Int("retry", retried),
		slog.Int("max_retry", maxRetry),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
