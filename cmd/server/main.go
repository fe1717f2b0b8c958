package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/kevin07696/fonepay-service/internal/adapters/fonepay"
	"github.com/kevin07696/fonepay-service/internal/adapters/ports"
	"github.com/kevin07696/fonepay-service/internal/adapters/secrets"
	"github.com/kevin07696/fonepay-service/internal/config"
	paymentHandler "github.com/kevin07696/fonepay-service/internal/handlers/payment"
	"github.com/kevin07696/fonepay-service/pkg/middleware"
	"github.com/kevin07696/fonepay-service/pkg/observability"
	"github.com/kevin07696/fonepay-service/pkg/resilience"
	"github.com/kevin07696/fonepay-service/pkg/security"
	"github.com/kevin07696/fonepay-service/pkg/shutdown"
	"github.com/kevin07696/fonepay-service/pkg/timeutil"
)

// secretFetchAttempts bounds startup retries against the secret backend
const secretFetchAttempts = 5

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger settings come from the config, so fall back to a production logger
		zap.Must(zap.NewProduction()).Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting fonepay service",
		zap.String("version", "0.1.0"),
		zap.String("fonepay_environment", cfg.Fonepay.Environment),
		zap.String("secrets_backend", cfg.Secrets.Backend),
	)

	ctx := context.Background()

	secretManager := initSecretManager(ctx, cfg, logger)
	secretKey := resolveSecretKey(ctx, cfg, secretManager, logger)

	adapter := initFonepayAdapter(cfg, secretKey, logger)

	// Health checks
	healthChecker := observability.NewHealthChecker()
	if cfg.Fonepay.SecretKey == "" {
		healthChecker.Register("secret_manager", func(ctx context.Context) error {
			_, err := secrets.ResolveMerchantSecret(ctx, secretManager, cfg.Fonepay.SecretPath)
			return err
		})
	}

	// Components stop in reverse registration order
	shutdownManager := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)

	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, logger)
	shutdownManager.RegisterHTTPServer("metrics_server", metricsServer)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		shutdownManager.RegisterNoErr("rate_limiter", rateLimiter.Shutdown)
	}
	chain := middleware.Standard(middleware.ChainConfig{
		Development: cfg.Logger.Development,
		RateLimiter: rateLimiter,
	}, logger)

	router := httprouter.New()
	paymentHandler.NewFonepayHandler(adapter, logger).Register(router, func(route string, next http.Handler) http.Handler {
		return chain.Append(observability.HTTPMetrics(route)).Then(next)
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", httpServer.Addr),
			zap.String("initiate", paymentHandler.InitiatePath),
			zap.String("callback", paymentHandler.CallbackPath),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	shutdownManager.RegisterHTTPServer("http_server", httpServer)

	// Registered last so probes fail before the listeners close
	healthChecker.SetReady(true)
	shutdownManager.RegisterNoErr("readiness", func() { healthChecker.SetReady(false) })

	if err := shutdownManager.WaitForSignal(ctx); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
	}
}

// initLogger initializes the logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	logger, err := security.BuildZapLogger(cfg.Level, cfg.Development)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("Failed to initialize logger", zap.Error(err))
	}
	return logger
}

// resolveSecretKey returns the configured key, or loads it from the secret manager
func resolveSecretKey(ctx context.Context, cfg *config.Config, sm ports.SecretManagerAdapter, logger *zap.Logger) string {
	if cfg.Fonepay.SecretKey != "" {
		logger.Warn("Using Fonepay secret key from configuration; prefer FONEPAY_SECRET_PATH")
		return cfg.Fonepay.SecretKey
	}

	// The secret backend may still be starting alongside the service
	var secretKey string
	err := resilience.Retry(ctx, secretFetchAttempts, resilience.SecretFetchBackoff(), func(ctx context.Context) error {
		var err error
		secretKey, err = secrets.ResolveMerchantSecret(ctx, sm, cfg.Fonepay.SecretPath)
		if err != nil {
			logger.Warn("Fonepay secret key not available yet",
				zap.String("secret_path", cfg.Fonepay.SecretPath),
				zap.Error(err),
			)
		}
		return err
	})
	if err != nil {
		logger.Fatal("Failed to load Fonepay secret key",
			zap.String("secret_path", cfg.Fonepay.SecretPath),
			zap.Error(err),
		)
	}
	return secretKey
}

// initFonepayAdapter builds the Fonepay client from configuration
func initFonepayAdapter(cfg *config.Config, secretKey string, logger *zap.Logger) ports.FonepayAdapter {
	baseURL := cfg.Fonepay.BaseURL
	if baseURL == "" {
		baseURL = fonepay.BaseURLForEnvironment(cfg.Fonepay.Environment)
	}

	var clock timeutil.Clock
	if cfg.Fonepay.Timezone != "" {
		loc, err := timeutil.LoadLocation(cfg.Fonepay.Timezone)
		if err != nil {
			logger.Fatal("Invalid FONEPAY_TIMEZONE", zap.String("timezone", cfg.Fonepay.Timezone), zap.Error(err))
		}
		clock = timeutil.ClockIn(loc)
	}

	defaults := fonepay.DefaultRequestDefaults()
	if cfg.Fonepay.Currency != "" {
		defaults.Currency = cfg.Fonepay.Currency
	}

	adapter, err := fonepay.NewClient(fonepay.ClientConfig{
		MerchantCode: cfg.Fonepay.MerchantCode,
		SecretKey:    secretKey,
		BaseURL:      baseURL,
		Defaults:     &defaults,
		Clock:        clock,
	}, security.NewZapLogger(logger))
	if err != nil {
		logger.Fatal("Failed to initialize Fonepay client", zap.Error(err))
	}
	return adapter
}
