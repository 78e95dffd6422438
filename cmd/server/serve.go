package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ai-nutricare/backend/internal/auth"
	"github.com/ai-nutricare/backend/internal/config"
	"github.com/ai-nutricare/backend/internal/logging"
	"github.com/ai-nutricare/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

var cmdServe = &cli.Command{
	Name:    "serve",
	Aliases: []string{"start"},
	Usage:   "Start the HTTP API",
	Flags:   config.Flags(),
	Action:  serve,
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := config.FromCommand(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pipeline, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup.Close()

	authMiddleware, err := newAuthMiddleware(ctx, cfg)
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	service.NewHandler(pipeline, cfg.MaxUploadBytes()).RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			service.RequestIDHeader,
			auth.ImpersonateHeader,
		},
		ExposedHeaders:   []string{service.RequestIDHeader},
		AllowCredentials: true,
	})

	handler := service.RequestLogger(c.Handler(authMiddleware(router)))

	// Uploads are read in full before planning and a week takes several
	// model round trips, so the write timeout is generous.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          logging.StdLogger(logging.SourceHTTP),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "plan_generation", pipeline.CanPlan(), "store", cfg.Store, "auth", cfg.Auth)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newAuthMiddleware(ctx context.Context, cfg config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.Auth != config.AuthFirebase {
		logger.Warn("authentication disabled, requests run as the local dev user")
		return auth.LocalDevMiddleware(), nil
	}
	fa, err := auth.NewFirebaseAuth(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("initialize Firebase auth: %w", err)
	}
	logger.Info("Firebase authentication enabled")
	return auth.Middleware(fa), nil
}
