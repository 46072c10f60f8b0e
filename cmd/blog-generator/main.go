// cmd/blog-generator/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-generator/internal/app"
	"blog-generator/internal/common/camunda"
	"blog-generator/internal/common/config"
	"blog-generator/internal/common/logger"
	"blog-generator/internal/gateway"
	generateblog "blog-generator/internal/workers/content/generate-blog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
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
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log, app.Options{Trigger: "http"})
	if err != nil {
		zapLog.Fatal("pipeline init failed", zap.Error(err))
	}
	defer application.Close(context.Background())

	if application.Redis != nil {
		err = retryWithBackoff(func() error {
			return application.Redis.Ping(ctx)
		}, 5, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
	}

	// --- Zeebe trigger (optional) ---
	var blogWorker *camunda.CamundaWorker
	if cfg.Camunda.BrokerAddress != "" && config.IsWorkerEnabled(cfg, generateblog.TaskType) {
		zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.Plaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zeebe.Close()
		application.AddReadinessCheck(gateway.ReadinessCheck{Name: "zeebe", Check: zeebe.HealthCheck})

		opts := generateblog.HandlerOptions{
			AppConfig: cfg,
			Pipeline:  application.Service,
			Logger:    log,
		}
		if application.Redis != nil {
			opts.Claimer = application.Redis
		}
		handler, err := generateblog.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create generate-blog handler", zap.Error(err))
		}

		blogWorker = camunda.NewWorker(zeebe.GetClient(), generateblog.TaskType, camunda.WorkerOptions{
			Name:          cfg.App.Name,
			MaxJobsActive: handler.Config().MaxJobsActive,
			Timeout:       handler.Config().Timeout,
		}, handler.Handle, log)
	}

	// --- HTTP gateway, health & metrics ---
	gin.SetMode(cfg.Server.Mode)
	router := gateway.NewRouter(application.Service, application.ReadinessChecks(), log)
	server := gateway.NewServer(cfg.Server.Address, router, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP gateway failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP gateway", map[string]interface{}{"error": err.Error()})
	}
	if blogWorker != nil {
		blogWorker.Stop()
	}

	log.Info("Blog generator stopped gracefully", nil)
}
