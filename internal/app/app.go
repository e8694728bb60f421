// Package app wires configuration, storage and HTTP transport into a runnable
// service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/transitops/bus-ticketing/internal/api"
	"github.com/transitops/bus-ticketing/internal/api/handler"
	"github.com/transitops/bus-ticketing/internal/core/service"
	"github.com/transitops/bus-ticketing/internal/infrastructure/config"
	"github.com/transitops/bus-ticketing/internal/infrastructure/db/mongo"
	"github.com/transitops/bus-ticketing/internal/infrastructure/db/redis"
	"github.com/transitops/bus-ticketing/internal/infrastructure/queue"
	"github.com/transitops/bus-ticketing/pkg/logger"
)

const (
	shutdownTimeout   = 10 * time.Second
	readinessTimeout  = 2 * time.Second
	auditDrainTimeout = 5 * time.Second
)

// App is the assembled service.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	mongo      *mongodrv.Client
	redis      *goredis.Client
	echo       *echo.Echo
	dispatcher *queue.Dispatcher
	auth       *service.AuthService
}

// New connects to MongoDB and Redis and builds the HTTP router. Any failure
// here is fatal for the process.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return nil, err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}

	userRepo := mongo.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		_ = mongoClient.Disconnect(ctx)
		_ = rdb.Close()
		return nil, fmt.Errorf("ensure user indexes: %w", err)
	}
	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}

	tokens, err := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		_ = rdb.Close()
		return nil, err
	}

	auditLog := logger.With("audit")
	authLog := logger.With("auth")

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, auditLog), auditLog)
	store := service.NewCredentialStore(userRepo, hasher, authLog)
	authService := service.NewAuthService(store, hasher, tokens, dispatcher, authLog)

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		Tokens:      tokens,
		Audit:       dispatcher,
		Limiter:     redis.NewFixedWindowLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window),
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error {
				return mongo.Ping(ctx, db)
			},
			"redis": func(ctx context.Context) error {
				return redis.Ping(ctx, rdb, readinessTimeout)
			},
		},
		Logger: logger.With("http"),
	})

	return &App{
		cfg:        cfg,
		log:        log,
		mongo:      mongoClient,
		redis:      rdb,
		echo:       e,
		dispatcher: dispatcher,
		auth:       authService,
	}, nil
}

// Run seeds the bootstrap admin when configured, starts the audit workers and
// serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	a.dispatcher.Start(workersCtx)
	defer a.drainAudit()

	if a.cfg.Seed.AdminEmail != "" {
		created, err := a.auth.EnsureAdmin(ctx, a.cfg.Seed.AdminName, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			a.log.Info().Str("email", a.cfg.Seed.AdminEmail).Msg("bootstrap admin created")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("http server listening")
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// drainAudit lets queued audit events reach the store before the workers'
// context is cancelled.
func (a *App) drainAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), auditDrainTimeout)
	defer cancel()
	if err := a.dispatcher.Stop(ctx); err != nil {
		a.log.Warn().Err(err).Msg("audit queue not fully drained")
	}
}

func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect")
	}
	if err := a.redis.Close(); err != nil {
		a.log.Warn().Err(err).Msg("redis close")
	}
}
