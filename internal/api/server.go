// Package api exposes the application workflow over HTTP.
package api

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"jobboard-workers/internal/common/config"
	"jobboard-workers/internal/common/identity"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/observability"
	applytojob "jobboard-workers/internal/workers/application/apply-to-job"
	getseekerstats "jobboard-workers/internal/workers/application/get-seeker-stats"
	listapplications "jobboard-workers/internal/workers/application/list-applications"
	listnotifications "jobboard-workers/internal/workers/notification/list-notifications"
	marknotificationread "jobboard-workers/internal/workers/notification/mark-notification-read"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the operation handlers the routes delegate to. The same handlers
// serve the workflow job workers.
type Deps struct {
	Apply         *applytojob.Handler
	Applications  *listapplications.Handler
	Stats         *getseekerstats.Handler
	Notifications *listnotifications.Handler
	MarkRead      *marknotificationread.Handler

	Resolver      *identity.Resolver
	DB            *sql.DB
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	app     *fiber.App
	cfg     config.ServerConfig
	auth    config.AuthConfig
	deps    Deps
	limiter *RateLimiter
	logger  logger.Logger
}

func NewServer(cfg config.ServerConfig, auth config.AuthConfig, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		auth:   auth,
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}

	perMinute := cfg.RateLimit.ApplyPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 1
	}
	s.limiter = NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)

	s.app = fiber.New(fiber.Config{
		AppName:               "jobboard-workers",
		ReadTimeout:           config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:          config.GetDuration(cfg.WriteTimeout),
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	origins := "*"
	if len(s.cfg.CORSOrigins) > 0 {
		origins = strings.Join(s.cfg.CORSOrigins, ", ")
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
	}))
	s.app.Use(s.accessLogMiddleware())
	s.app.Use(s.metricsMiddleware())

	s.app.Get("/health", s.health)
	s.app.Get("/ready", s.ready)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := s.app.Group("/api/v1", s.identityMiddleware())
	v1.Post("/jobs/:id/apply", s.limiter.Middleware(), s.applyToJob)
	v1.Get("/applications/me", s.listApplications)
	v1.Get("/applications/me/stats", s.seekerStats)
	v1.Get("/notifications", s.listNotifications)
	v1.Patch("/notifications/:id/read", s.markNotificationRead)
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.cfg.Address()})
	return s.app.Listen(s.cfg.Address())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
