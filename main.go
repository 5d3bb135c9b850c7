package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/photo-inspect/internal/feedback"
	"github.com/example/photo-inspect/internal/handlers"
	"github.com/example/photo-inspect/internal/logging"
	"github.com/example/photo-inspect/internal/rules"
	"github.com/example/photo-inspect/internal/usecase"
	"github.com/example/photo-inspect/internal/visionai"
)

func main() {
	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	dataDir := getEnv("DATA_DIR", "data")
	imagesDir := filepath.Join(dataDir, "images")
	trainingDir := filepath.Join(dataDir, "training")
	for _, dir := range []string{imagesDir, trainingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("failed to create data directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	ruleStore, err := rules.NewStore(filepath.Join(dataDir, "rules.json"), logger)
	if err != nil {
		logger.Fatal("failed to load rules", zap.Error(err))
	}

	cache := initCache(logger)

	visionTimeout := time.Duration(getEnvInt("VISION_TIMEOUT_SECONDS", 60)) * time.Second
	vision := visionai.NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_VISION_MODEL"), visionTimeout, logger)

	feedbackStore := feedback.NewStore(trainingDir, ruleStore, logger)
	registry := rules.NewRegistry(vision)

	uc := usecase.NewAnalysisUseCase(
		ruleStore,
		registry,
		vision,
		feedbackStore,
		cache,
		imagesDir,
		trainingDir,
		getEnvInt("BATCH_WORKERS", 4),
		logger,
	)

	r := gin.Default()
	r.MaxMultipartMemory = handlers.MaxUploadSize
	r.Use(cors.Default())

	handlers.RegisterRoutes(r, uc)

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	logger.Info("photo inspection API listening", zap.String("addr", addr))
	if err := serveHTTPServer(server, 15*time.Second, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// initCache connects to Redis when REDIS_ADDR is set; otherwise the
// service runs with a no-op cache.
func initCache(logger *zap.Logger) usecase.Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logger.Info("REDIS_ADDR not set, result caching disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.String("addr", addr), zap.Error(err))
	}
	logger.Info("redis cache connected", zap.String("addr", addr))
	return usecase.NewRedisCache(client)
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
