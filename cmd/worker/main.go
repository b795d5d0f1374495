package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jwalitptl/training-api/internal/config"
	"github.com/jwalitptl/training-api/internal/email"
	"github.com/jwalitptl/training-api/internal/repository/postgres"
	auditService "github.com/jwalitptl/training-api/internal/service/audit"
	"github.com/jwalitptl/training-api/internal/worker"
	"github.com/jwalitptl/training-api/pkg/logger"
	"github.com/jwalitptl/training-api/pkg/messaging/redis"
	"github.com/jwalitptl/training-api/pkg/metrics"
)

const adminAddr = ":8081"

func setupAdminServer(registry *prom.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: adminAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin server failed", zap.Error(err))
		}
	}()
	return srv
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.Redis.URL == "" {
		log.Fatal("redis.url is required for the worker")
	}

	registry := prom.NewRegistry()
	m := metrics.NewMetrics("training_worker", registry)

	// The broker logs through zerolog like the API does
	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, zl, m)
	if err != nil {
		log.Fatal("failed to create redis broker", zap.Error(err))
	}
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down...")
		cancel()
	}()

	admin := setupAdminServer(registry, log)
	defer admin.Close()

	var wg sync.WaitGroup

	if cfg.Audit.Enabled && cfg.Postgres.Enabled {
		db, err := postgres.NewDB(cfg.Postgres)
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()

		auditSvc := auditService.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)))
		cleanup := worker.NewAuditCleanupWorker(auditSvc, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval,
			log.Named("audit_cleanup"))

		wg.Add(1)
		go func() {
			defer wg.Done()
			cleanup.Start(ctx)
		}()
	}

	mailer := worker.NewNotificationMailer(broker, email.NewSMTPService(cfg.SMTP), m, log.Named("mailer"))
	log.Info("worker started")
	if err := mailer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("mailer stopped", zap.Error(err))
		cancel()
	}

	wg.Wait()
	log.Info("worker exited")
}
