// backend-go/cmd/server/main.go
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/api"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/app"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/scm-dashboard/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	configureMode(cfg.Server.Mode, os.Stdout)

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	router := api.NewRouter(application.Services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("backend", cfg.Backend.BaseURL).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// in-flight requests get 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// configureMode sets the log level and gin mode. Outside debug mode logs are
// written as JSON to w.
func configureMode(mode string, w io.Writer) {
	logger.SetLevel(mode)
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
		return
	}
	logger.UseJSON(w)
	gin.SetMode(gin.ReleaseMode)
}
