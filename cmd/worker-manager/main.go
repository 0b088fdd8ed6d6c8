// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jobboard-workers/internal/api"
	awsclient "jobboard-workers/internal/common/aws"
	"jobboard-workers/internal/common/camunda"
	"jobboard-workers/internal/common/config"
	"jobboard-workers/internal/common/database"
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/observability"
	"jobboard-workers/internal/jobs"
	"jobboard-workers/pkg/registry"

	apply "jobboard-workers/internal/workers/application/apply-to-job"
	cc "jobboard-workers/internal/workers/application/calculate-compatibility"
	gss "jobboard-workers/internal/workers/application/get-seeker-stats"
	la "jobboard-workers/internal/workers/application/list-applications"
	dn "jobboard-workers/internal/workers/notification/deliver-notification"
	ln "jobboard-workers/internal/workers/notification/list-notifications"
	mnr "jobboard-workers/internal/workers/notification/mark-notification-read"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("jobsBackend", cfg.Jobs.Backend),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := database.Migrate(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Job directory ---
	directory, closeDirectory := buildDirectory(ctx, cfg, pg, log, zapLog)
	defer closeDirectory()

	// --- Zeebe (optional) ---
	var (
		zeebe     *camunda.Client
		publisher apply.MessagePublisher
	)
	if cfg.Camunda.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientFromConfig(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		publisher = zeebe
		zapLog.Info("Zeebe client connected successfully")
	} else {
		zapLog.Info("no broker configured, running the HTTP API only")
	}

	// --- Handlers ---
	workerCfg := func(taskType string) config.WorkerConfig {
		return config.GetWorkerConfig(cfg, taskType)
	}

	applyHandler := apply.NewHandler(apply.LoadConfig(workerCfg(apply.TaskType)), pg.DB, directory, publisher, log)
	listApplications := la.NewHandler(la.LoadConfig(workerCfg(la.TaskType)), pg.DB, directory, log)
	stats := gss.NewHandler(gss.LoadConfig(workerCfg(gss.TaskType)), pg.DB, log)
	listNotifications := ln.NewHandler(ln.LoadConfig(workerCfg(ln.TaskType)), pg.DB, log)
	markRead := mnr.NewHandler(mnr.LoadConfig(workerCfg(mnr.TaskType)), pg.DB, log)

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	if zeebe != nil {
		deliver := buildDeliverHandler(ctx, cfg, pg, log, zapLog)

		activities, err := registry.Default()
		if err != nil {
			zapLog.Fatal("activity registry invalid", zap.Error(err))
		}

		handlers := []struct {
			taskType string
			handle   camunda.JobHandler
		}{
			{apply.TaskType, applyHandler.Handle},
			{la.TaskType, listApplications.Handle},
			{gss.TaskType, stats.Handle},
			{cc.TaskType, cc.NewHandler(cc.LoadConfig(workerCfg(cc.TaskType)), log).Handle},
			{ln.TaskType, listNotifications.Handle},
			{mnr.TaskType, markRead.Handle},
			{dn.TaskType, deliver.Handle},
		}

		for _, h := range handlers {
			wcfg := workerCfg(h.taskType)
			if !wcfg.Enabled {
				zapLog.Info("worker disabled", zap.String("taskType", h.taskType))
				continue
			}
			activity, ok := activities.Find(h.taskType)
			if !ok {
				zapLog.Warn("worker has no registry entry", zap.String("taskType", h.taskType))
			}
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), h.taskType, wcfg, h.handle, log))
			zapLog.Info("worker registered",
				zap.String("taskType", h.taskType),
				zap.String("category", activity.Category),
				zap.Strings("workflows", activity.Workflows),
			)
		}
		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	server := api.NewServer(cfg.Server, cfg.Auth, api.Deps{
		Apply:         applyHandler,
		Applications:  listApplications,
		Stats:         stats,
		Notifications: listNotifications,
		MarkRead:      markRead,
		Resolver:      identity.NewResolver(cfg.Auth.JWTSecret),
		DB:            pg.DB,
		Observability: obs,
		Logger:        log,
	})

	go func() {
		if err := server.Listen(); err != nil {
			zapLog.Error("http server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

// buildDirectory picks the job summary backend and wraps it with the Redis
// cache when one is configured.
func buildDirectory(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, log logger.Logger, zapLog *zap.Logger) (jobs.Directory, func()) {
	var directory jobs.Directory = jobs.NewPostgresDirectory(pg.DB)
	closers := []func(){}

	if cfg.Jobs.Backend == config.JobsBackendElasticsearch {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		directory = jobs.NewSearchDirectory(es.Client, cfg.Database.Elasticsearch.JobsIndex)
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Database.Redis.Enabled() && cfg.Jobs.CacheTTL > 0 {
		var rdb *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, func() { _ = rdb.Close() })
		directory = jobs.NewCachedDirectory(directory, rdb.Client, time.Duration(cfg.Jobs.CacheTTL)*time.Second, log)
		zapLog.Info("Redis connected successfully")
	}

	return directory, func() {
		for _, c := range closers {
			c()
		}
	}
}

// buildDeliverHandler creates the AWS clients for the enabled channels only.
// Disabled channels are left as nil interfaces.
func buildDeliverHandler(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, log logger.Logger, zapLog *zap.Logger) *dn.Handler {
	var (
		sesClient dn.SESService
		snsClient dn.SNSService
	)
	nc := cfg.Notifications

	if nc.EmailEnabled {
		c, err := awsclient.NewSESClient(ctx, nc.AWSRegion)
		if err != nil {
			zapLog.Error("SES client init failed, email disabled", zap.Error(err))
		} else {
			sesClient = c
		}
	}
	if nc.SMSEnabled {
		c, err := awsclient.NewSNSClient(ctx, nc.AWSRegion)
		if err != nil {
			zapLog.Error("SNS client init failed, sms disabled", zap.Error(err))
		} else {
			snsClient = c
		}
	}

	return dn.NewHandler(dn.LoadConfig(config.GetWorkerConfig(cfg, dn.TaskType), nc), pg.DB, sesClient, snsClient, log)
}
