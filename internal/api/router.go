package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/transitops/bus-ticketing/docs"
	"github.com/transitops/bus-ticketing/internal/api/handler"
	"github.com/transitops/bus-ticketing/internal/api/middleware"
	"github.com/transitops/bus-ticketing/internal/core/domain"
	"github.com/transitops/bus-ticketing/internal/core/ports"
)

// Deps carries everything the router needs. Limiter, Audit, HealthChecks and
// Metrics are optional; a nil Metrics registry means the Prometheus default.
type Deps struct {
	AuthService  ports.AuthService
	Tokens       middleware.TokenVerifier
	Audit        ports.AuditRecorder
	Limiter      middleware.Limiter
	HealthChecks map[string]handler.DependencyCheck
	Logger       zerolog.Logger
	Metrics      *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "ticketing",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.CORS())

	gate := middleware.NewGate(deps.Tokens, deps.Audit, deps.Logger)
	authn := gate.Authenticate()
	adminOnly := gate.Authorize(domain.RoleAdmin)
	anyRole := gate.Authorize(domain.RoleAdmin, domain.RoleOperator, domain.RoleCommuter)

	authHandler := handler.NewAuthHandler(deps.AuthService)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if deps.Limiter != nil {
		auth.POST("/register", authHandler.Register, middleware.RateLimit(deps.Limiter, "register", deps.Logger))
		auth.POST("/login", authHandler.Login, middleware.RateLimit(deps.Limiter, "login", deps.Logger))
	} else {
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
	auth.GET("/me", authHandler.Me, authn, anyRole)
	auth.GET("/users/stats", authHandler.Stats, authn, adminOnly)
	auth.PATCH("/users/:id", authHandler.UpdateUser, authn, adminOnly)
	auth.DELETE("/delete", authHandler.Delete, authn, adminOnly)
	auth.DELETE("/delete-all", authHandler.DeleteAll, authn, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
