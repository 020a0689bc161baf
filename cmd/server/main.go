package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tourscan/internal/config"
	"tourscan/internal/handlers"
	"tourscan/internal/logger"
	"tourscan/internal/scraper"
	"tourscan/internal/services"
	"tourscan/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	db, err := storage.Open(cfg.Database.DSN(), cfg.Database.MaxConnections, cfg.Database.MaxIdle)
	if err != nil {
		zlog.Fatal("failed to connect to postgres", zap.Error(err))
	}
	store := storage.New(db, zlog)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureSchema(ctx); err != nil {
		zlog.Fatal("failed to prepare schema", zap.Error(err))
	}

	cache := storage.NewDiscoveryCache(
		cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second,
	)
	if cache != nil {
		if err := cache.Ping(ctx); err != nil {
			zlog.Warn("redis unavailable, discovery cache disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	factory := scraper.NewFactory(scraper.Config{
		Window:     time.Duration(cfg.Scraper.WindowSeconds) * time.Second,
		Requests:   cfg.Scraper.Requests,
		UserAgents: cfg.Scraper.UserAgents,
		Strategy:   scraper.RotationStrategy(cfg.Scraper.Rotation),
		Options: scraper.Options{
			Timeout:         time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
			FollowRedirects: true,
			MaxRetries:      cfg.Scraper.MaxRetries,
			RetryDelay:      2 * time.Second,
		},
		Extractor: buildExtractor(cfg.Extraction, zlog),
	})

	scanService := services.NewScanService(factory, store, zlog,
		time.Duration(cfg.Scraper.ScanMaxMinutes)*time.Minute)
	discoveryService := services.NewDiscoveryService(store, cache, zlog, time.Now().UnixNano())
	importService := services.NewImportService(store, zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger(zlog))

	handler := handlers.NewHandler(scanService, discoveryService, importService, store, zlog)
	handler.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		zlog.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

// buildExtractor wires the AI extraction fallback: a real client when a key
// is configured, the demo extractor when demo mode is on, otherwise none.
func buildExtractor(cfg config.ExtractionConfig, zlog *zap.Logger) scraper.Extractor {
	if ex := scraper.NewOpenAIExtractor(cfg.APIKey); ex != nil {
		return ex
	}
	if cfg.DemoMode {
		zlog.Info("extraction running in demo mode")
		return scraper.DemoExtractor{}
	}
	zlog.Info("no extraction API key configured, AI fallback disabled")
	return nil
}

func requestLogger(zlog *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zlog.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	})
}
