package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/training-api/internal/config"
	"github.com/jwalitptl/training-api/internal/handler/analytics"
	auditHandler "github.com/jwalitptl/training-api/internal/handler/audit"
	"github.com/jwalitptl/training-api/internal/handler/auth"
	"github.com/jwalitptl/training-api/internal/handler/catalog"
	"github.com/jwalitptl/training-api/internal/handler/content"
	"github.com/jwalitptl/training-api/internal/handler/corporate"
	"github.com/jwalitptl/training-api/internal/handler/enrollment"
	"github.com/jwalitptl/training-api/internal/handler/health"
	"github.com/jwalitptl/training-api/internal/handler/membership"
	"github.com/jwalitptl/training-api/internal/handler/message"
	"github.com/jwalitptl/training-api/internal/handler/notification"
	"github.com/jwalitptl/training-api/internal/handler/prometheus"
	"github.com/jwalitptl/training-api/internal/handler/user"
	"github.com/jwalitptl/training-api/internal/middleware"
	"github.com/jwalitptl/training-api/internal/repository/mongodb"
	"github.com/jwalitptl/training-api/internal/repository/postgres"
	"github.com/jwalitptl/training-api/internal/router"
	analyticsService "github.com/jwalitptl/training-api/internal/service/analytics"
	auditService "github.com/jwalitptl/training-api/internal/service/audit"
	authService "github.com/jwalitptl/training-api/internal/service/auth"
	catalogService "github.com/jwalitptl/training-api/internal/service/catalog"
	contentService "github.com/jwalitptl/training-api/internal/service/content"
	corporateService "github.com/jwalitptl/training-api/internal/service/corporate"
	enrollmentService "github.com/jwalitptl/training-api/internal/service/enrollment"
	membershipService "github.com/jwalitptl/training-api/internal/service/membership"
	messageService "github.com/jwalitptl/training-api/internal/service/message"
	notificationService "github.com/jwalitptl/training-api/internal/service/notification"
	"github.com/jwalitptl/training-api/internal/service/progress"
	userService "github.com/jwalitptl/training-api/internal/service/user"
	"github.com/jwalitptl/training-api/internal/service/userview"
	jwtauth "github.com/jwalitptl/training-api/pkg/auth"
	"github.com/jwalitptl/training-api/pkg/logger"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/messaging/redis"
	"github.com/jwalitptl/training-api/pkg/metrics"
	"github.com/jwalitptl/training-api/pkg/security"
)

const namespace = "training_api"

// sqlPinger adapts sqlx to the readiness check.
type sqlPinger struct{ db *sqlx.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	registry := prom.NewRegistry()
	m := metrics.NewMetrics(namespace, registry)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	store, err := mongodb.Connect(ctx, cfg.Mongo, m)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	cancel()

	pingers := map[string]health.Pinger{"mongo": store}

	// Initialize repositories
	userRepo := mongodb.NewUserRepository(store)
	profileRepo := mongodb.NewProfileRepository(store)
	staffRepo := mongodb.NewStaffRepository(store)
	courseRepo := mongodb.NewCourseRepository(store)
	eventRepo := mongodb.NewEventRepository(store)
	enrollmentRepo := mongodb.NewEnrollmentRepository(store)
	membershipRepo := mongodb.NewMembershipRepository(store)
	messageRepo := mongodb.NewMessageRepository(store)
	announcementRepo := mongodb.NewAnnouncementRepository(store)
	notificationRepo := mongodb.NewNotificationRepository(store)
	contentRepo := mongodb.NewContentRepository(store)
	statsRepo := mongodb.NewStatsRepository(store)

	var broker messaging.Broker = messaging.NopBroker{}
	if cfg.Redis.URL != "" {
		rb, err := redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, zl, m)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		broker = rb
		pingers["redis"] = rb
	} else {
		log.Warn().Msg("redis not configured, events will not leave the process")
	}

	// Initialize services
	hasher := security.NewBcryptHasher(0)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	classifier := progress.NewClassifier(courseRepo, eventRepo)

	userSvc := userService.NewService(userRepo, hasher)
	authSvc := authService.NewService(userRepo, profileRepo, jwtSvc, hasher, broker)
	analyticsSvc := analyticsService.NewService(statsRepo, cfg.Analytics.CacheTTL, m)
	catalogSvc := catalogService.NewService(courseRepo, eventRepo)
	enrollmentSvc := enrollmentService.NewService(enrollmentRepo, courseRepo, eventRepo, classifier)
	corporateSvc := corporateService.NewService(staffRepo, profileRepo, userSvc)
	membershipSvc := membershipService.NewService(membershipRepo, profileRepo)
	messageSvc := messageService.NewService(messageRepo, userRepo)
	notificationSvc := notificationService.NewService(announcementRepo, notificationRepo, userRepo, broker, m)
	contentSvc := contentService.NewService(contentRepo)
	views := userview.NewBuilder(userview.Repositories{
		Users:       userRepo,
		Profiles:    profileRepo,
		Staff:       staffRepo,
		Courses:     courseRepo,
		Events:      eventRepo,
		Enrollments: enrollmentRepo,
		Memberships: membershipRepo,
		Messages:    messageRepo,
	}, classifier, analyticsSvc)

	protected := []router.Handler{
		user.NewHandler(userSvc, views),
		analytics.NewHandler(analyticsSvc),
		catalog.NewHandler(catalogSvc),
		enrollment.NewHandler(enrollmentSvc),
		corporate.NewHandler(corporateSvc, views),
		membership.NewHandler(membershipSvc),
		message.NewHandler(messageSvc),
		notification.NewHandler(notificationSvc),
		content.NewHandler(contentSvc),
	}

	// Audit trail is optional and lives in postgres
	var (
		auditLogger *auditService.AuditLogger
		auditMW     *middleware.AuditMiddleware
		db          *sqlx.DB
	)
	if cfg.Audit.Enabled && cfg.Postgres.Enabled {
		db, err = postgres.NewDB(cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate postgres")
		}
		auditSvc := auditService.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)))
		auditLogger = auditService.NewAuditLogger(auditSvc)
		auditMW = middleware.NewAuditMiddleware(auditLogger)
		protected = append(protected, auditHandler.NewHandler(auditSvc))
		pingers["postgres"] = sqlPinger{db: db}
	}

	r := router.NewRouter(router.Deps{
		Auth:      middleware.NewAuthMiddleware(authSvc),
		Activity:  middleware.NewActivityTracker(userRepo, cfg.Activity.Throttle),
		Audit:     auditMW,
		Metrics:   prometheus.New(registry, namespace),
		Health:    health.NewHandler(pingers),
		Public:    []router.Handler{auth.NewHandler(authSvc)},
		Protected: protected,
	}, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig: middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         cfg.CORS.MaxAge,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if auditLogger != nil {
		auditLogger.Wait()
	}
	if db != nil {
		db.Close()
	}
	if err := broker.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close broker")
	}
	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close mongo")
	}

	log.Info().Msg("server exited properly")
}
