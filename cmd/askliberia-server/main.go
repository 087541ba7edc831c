// cmd/askliberia-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"askliberia/internal/common/config"
	"askliberia/internal/common/database"
	"askliberia/internal/common/gemini"
	"askliberia/internal/common/logger"
	"askliberia/internal/common/observability"
	"askliberia/internal/knowledge"
	"askliberia/internal/server"
	"askliberia/internal/services/admin"
	"askliberia/internal/services/auth"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting askliberia server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var store *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		store, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return store.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer store.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init generation client ---
	genClient, err := gemini.NewClient(ctx, cfg.GenAI)
	if err != nil {
		zapLog.Fatal("generation client init failed", zap.Error(err))
	}
	zapLog.Info("Generation client initialized", zap.String("model", cfg.GenAI.Model))

	// --- Wire services ---
	know := knowledge.NewService(knowledge.Config{
		Temperature:    cfg.GenAI.Temperature,
		Timeout:        time.Duration(cfg.GenAI.Timeout) * time.Millisecond,
		SpeechMaxChars: cfg.GenAI.SpeechMaxChars,
	}, genClient, genClient, genClient, log)

	adminSvc := admin.NewService(admin.Config{
		Password:     cfg.Admin.Password,
		SearchLogCap: cfg.Admin.SearchLogCap,
		RegistryPath: cfg.Admin.RegistryPath,
	}, store, log)

	authSvc := auth.NewService(auth.DefaultConfig(), store, log)

	srv := server.New(cfg.Server, know, adminSvc, authSvc, store, log).WithObservability(obs)

	// Standalone metrics/pprof listener when configured; otherwise /metrics
	// is mounted on the main handler.
	if cfg.Server.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
			zapLog.Info("metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
			if err := http.ListenAndServe(cfg.Server.MetricsAddress, mux); err != nil {
				zapLog.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining...", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}
	zapLog.Info("askliberia server stopped")
}
