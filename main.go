// Package main is the entry point for the GlucoTrend service
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mrcode/glucotrend/internal/api"
	"github.com/mrcode/glucotrend/internal/app"
	"github.com/mrcode/glucotrend/internal/autostart"
	"github.com/mrcode/glucotrend/internal/config"
	"github.com/mrcode/glucotrend/internal/logging"
	"github.com/mrcode/glucotrend/internal/metrics"
	"github.com/mrcode/glucotrend/internal/models"
	"github.com/mrcode/glucotrend/internal/notifications"
	"github.com/mrcode/glucotrend/internal/predictapi"
	"github.com/mrcode/glucotrend/internal/prediction"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	settings := models.DefaultSettings()
	if err := settings.Load(); err != nil {
		logger.Warn("error loading settings, using defaults", "error", err)
	}
	applyEnvOverrides(settings, cfg.Prediction)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	current := settings.Clone()
	predictions := prediction.NewService(
		newPredictor(current.PredictionURL, time.Duration(current.PredictionTimeout)*time.Second),
		prediction.WithLogger(logger),
		prediction.WithObserver(collector),
	)

	alerts := notifications.NewManager(settings, logger)
	trends := app.NewTrendService(settings, predictions,
		app.WithAlerter(alerts),
		app.WithGauge(collector),
		app.WithPredictorFactory(newPredictor),
		app.WithAutostart(autostart.New()),
		app.WithLogger(logger),
	)

	if cfg.Logging.Level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(predictions, trends), api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Collector:      collector,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trends.Run(ctx)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port,
			"prediction_configured", current.IsConfigured(), "demo", current.UseDemoData)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForSignal(logger)

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

// newPredictor returns nil for an empty URL so the compositor reports ErrNoPredictor
func newPredictor(url string, timeout time.Duration) prediction.Predictor {
	if url == "" {
		return nil
	}
	client := predictapi.NewClient(url, timeout)
	slog.Info("prediction client ready", "url", client.URL(), "timeout", timeout)
	return client
}

// applyEnvOverrides lets PREDICTION_URL take precedence over the settings file
func applyEnvOverrides(settings *models.Settings, cfg config.PredictionConfig) {
	if cfg.URL == "" {
		return
	}
	override := settings.Clone()
	override.PredictionURL = cfg.URL
	override.PredictionTimeout = int(cfg.Timeout / time.Second)
	settings.Update(override)
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
}
