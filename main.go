package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skycast-dev/skycast-be/internal/api"
	"github.com/skycast-dev/skycast-be/internal/auth"
	"github.com/skycast-dev/skycast-be/internal/config"
	"github.com/skycast-dev/skycast-be/internal/database"
	"github.com/skycast-dev/skycast-be/internal/logger"
	"github.com/skycast-dev/skycast-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.JWTSecret == config.DevSecret {
		log.Warn().Msg("JWT_SECRET is not set; using the development fallback secret")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// The signing secret is loaded once and injected into both the issuer
	// and the verifier; neither end can see a different value.
	secret := []byte(cfg.JWTSecret)
	issuer := auth.NewTokenIssuer(secret, cfg.TokenTTL)
	verifier := auth.NewTokenVerifier(secret)

	// Set up services
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	userService := services.NewUserService(db, hasher)
	eventService := services.NewEventService(db)

	// Set up router
	router := api.NewRouter(db, userService, eventService, issuer, verifier, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
