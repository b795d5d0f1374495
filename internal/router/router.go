package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/handler/health"
	"github.com/jwalitptl/training-api/internal/handler/prometheus"
	"github.com/jwalitptl/training-api/internal/middleware"
)

// Handler is implemented by every per-area handler.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, handler.Guards)
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MaxBodySize      int64
}

// Deps are the pieces the router mounts. Activity, Audit and Metrics may
// be nil.
type Deps struct {
	Auth      *middleware.AuthMiddleware
	Activity  *middleware.ActivityTracker
	Audit     *middleware.AuditMiddleware
	Metrics   *prometheus.Handler
	Health    *health.Handler
	Public    []Handler
	Protected []Handler
}

type Router struct {
	engine *gin.Engine
	deps   Deps
}

func NewRouter(deps Deps, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultMaxBodySize
	}
	handler.UseJSONFieldNames()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine: engine,
		deps:   deps,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
	)
	if deps.Metrics != nil {
		engine.Use(deps.Metrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}
	engine.Use(
		middleware.BodyLimit(config.MaxBodySize),
		middleware.Timeout(config.RequestTimeout),
	)

	return r
}

func (r *Router) Setup() {
	if r.deps.Health != nil {
		r.deps.Health.RegisterRoutes(r.engine)
	}
	if r.deps.Metrics != nil {
		r.engine.GET("/metrics", r.deps.Metrics.Handler())
	}

	guards := handler.Guards{Auth: r.deps.Auth, Audit: r.deps.Audit}

	public := r.engine.Group("/api")
	for _, h := range r.deps.Public {
		h.RegisterRoutes(public, guards)
	}

	protected := r.engine.Group("/api", r.deps.Auth.Authenticate())
	if r.deps.Activity != nil {
		protected.Use(r.deps.Activity.Track())
	}
	for _, h := range r.deps.Protected {
		h.RegisterRoutes(protected, guards)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
