// @title                       Bus Ticketing Auth API
// @version                     1.0
// @description                 Authentication and role authorization for the transport commission ticketing system.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/transitops/bus-ticketing/internal/app"
	"github.com/transitops/bus-ticketing/internal/infrastructure/config"
	"github.com/transitops/bus-ticketing/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "bus-ticketing-auth"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "bus-ticketing-auth",
		Env:     cfg.Env,
	})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := application.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}
