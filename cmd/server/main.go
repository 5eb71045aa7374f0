package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"callmood/internal/app"
	"callmood/internal/config"
)

// @title Call Mood Dashboard API
// @version 1.0
// @description Emotion analysis dashboard for voice agent calls
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      srv.Addr,
			"inference": cfg.Inference.BaseURL,
			"username":  cfg.Auth.Username,
		}).Info("server starting")
		logger.Info("endpoints:")
		logger.Info("  POST /v1/auth/login")
		logger.Info("  POST /v1/webhooks/retell")
		logger.Info("  GET  /v1/calls")
		logger.Info("  POST /v1/calls/{callId}/analyze")
		logger.Info("  GET  /v1/calls/{callId}/dashboard")
		logger.Info("  POST /v1/analyze")
		logger.Info("  WS   /v1/ws/calls")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("ListenAndServe")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("cleanup failed")
	}

	logger.Info("server exited")
}
