package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/traveltales/journal/internal/blogservice"
	"github.com/traveltales/journal/internal/common"
	"github.com/traveltales/journal/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	registry    *prometheus.Registry
	metrics     *common.Metrics
	limiter     *rate.Limiter
	api         *common.APIClient
	userService *userservice.UserService
	blogService *blogservice.BlogService
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApplication(cfg, logger, registry)
	if err != nil {
		logger.Error("failed to initialize the application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.api.Close()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApplication(cfg *Config, logger *slog.Logger, registry *prometheus.Registry) (*application, error) {
	metrics := common.NewMetrics("journal", "gateway", registry)

	api, err := common.NewAPIClient(common.APIConfig{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Retry:   cfg.retryPolicy(),
	}, logger, metrics)
	if err != nil {
		return nil, err
	}

	sessions := userservice.NewSessionStore(common.NewCache(cfg.SessionTTL, 10*time.Minute), cfg.SessionTTL)

	return &application{
		config:      cfg,
		logger:      logger,
		registry:    registry,
		metrics:     metrics,
		limiter:     rate.NewLimiter(rate.Limit(cfg.LimiterRPS), cfg.LimiterBurst),
		api:         api,
		userService: userservice.NewUserService(api, sessions, logger),
		blogService: blogservice.NewBlogService(api, logger, metrics, cfg.FanoutLimit),
	}, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
