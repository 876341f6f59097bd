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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	if cfg.OpenWeatherAPIKey == "" {
		log.Warn("OPENWEATHER_API_KEY is empty; weather requests will be rejected")
	}

	metrics := observability.NewMetrics()

	// Shared HTTP client and resilience settings for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client:           &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff:          providers.BackoffConfig{MaxRetries: cfg.ProviderMaxRetries},
		BreakerThreshold: cfg.ProviderBreakerThreshold,
		Metrics:          metrics,
	}

	policy, err := dashboard.ParseLayerPolicy(cfg.MapLayerPolicy)
	if err != nil {
		log.Error("invalid map layer policy", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	board := display.NewBoard(clock, cfg.MaxAlerts)
	opts := dashboard.Options{
		Provider: providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.Language.String()),
		Searcher: providers.NewTeleportCitySearcher(httpCfg, cfg.CitySearchURL),
		Tiles:    providers.NewTiles(cfg.BaseMapTileURL, cfg.OpenWeatherTileURL, cfg.OpenWeatherAPIKey),
		Sink:     board,
		Store:    store.NewMemoryStore(),

		Clock:      clock,
		Vocabulary: weather.VocabularyFor(cfg.Language),
		Location:   cfg.TimeZone,

		ForecastPoints: cfg.ForecastPoints,
		Map: dashboard.MapConfig{
			Center: weather.Coordinates{Lat: cfg.MapDefaultLat, Lon: cfg.MapDefaultLon},
			Zoom:   cfg.MapDefaultZoom,
			Policy: policy,
		},
		SuggestDebounce: cfg.SuggestDebounce,
		PointerDebounce: cfg.PointerDebounce,

		Metrics: metrics,
		Logger:  log,
	}
	if cfg.BootstrapGeolocate {
		opts.Geolocator = providers.NewIPAPIGeolocator(httpCfg, cfg.GeolocationURL)
	}

	dash, err := dashboard.New(ctx, opts)
	if err != nil {
		log.Error("failed to build dashboard", "error", err)
		os.Exit(1)
	}
	defer dash.Close()

	// Scheduler that drives the clock and periodic refreshes.
	sched := scheduler.New(dash, cfg.RefreshInterval, cfg.TimeZone, log.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	if dash.Bootstrap() {
		log.Info("locating user by IP address")
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, dash, board)
	httpapi.RegisterMetrics(app, prometheus.DefaultGatherer)

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
