package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "paperbuilder/docs"
	"paperbuilder/internal/app"
	"paperbuilder/internal/config"
	"paperbuilder/internal/logging"
	"paperbuilder/internal/service"
	"paperbuilder/internal/transport/rest"
	"paperbuilder/internal/transport/ws"

	"go.uber.org/zap"
)

// @title Paper Builder API
// @version 1.0
// @description Question paper authoring with live preview
// @host localhost:8080
// @BasePath /v1
func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	a, err := app.New(ctx, cfg, logger, service.WithBroadcaster(wsHub))
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	authSvc := service.NewAuthService(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.JWTSecret)

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		Editor:      a.Editor,
		Gate:        a.Gate,
		WSHub:       wsHub,
		CORS:        cfg.CORS,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("author", cfg.Auth.Username))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
