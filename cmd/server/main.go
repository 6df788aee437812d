package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tradiehq/portal-server-go/internal/config"
	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/handler"
	"github.com/tradiehq/portal-server-go/internal/jobs"
	"github.com/tradiehq/portal-server-go/internal/mailer"
	"github.com/tradiehq/portal-server-go/internal/middleware"
	"github.com/tradiehq/portal-server-go/internal/payment"
	"github.com/tradiehq/portal-server-go/internal/redis"
	"github.com/tradiehq/portal-server-go/internal/repository"
	"github.com/tradiehq/portal-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	var limiter service.Limiter
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		limiter = service.NewRedisLimiter(redisClient.Client)
	} else {
		log.Warn().Msg("no redis configured: using process-local rate limiting")
		limiter = service.NewLocalLimiter()
	}

	tokenRepo := repository.NewPortalTokenRepository(db.DB)
	accessLogRepo := repository.NewPortalAccessLogRepository(db.DB)
	quoteRepo := repository.NewQuoteRepository(db.DB)
	invoiceRepo := repository.NewInvoiceRepository(db.DB)
	paymentRepo := repository.NewPaymentRepository(db.DB)
	customerRepo := repository.NewCustomerRepository(db.DB)
	orgRepo := repository.NewOrganizationRepository(db.DB)

	checkoutClient := payment.NewClient(cfg.PaymentAPIBaseURL, cfg.PaymentSecretKey)
	mailClient := mailer.NewClient(cfg.EmailAPIBaseURL, cfg.EmailAPIKey, cfg.EmailFromAddress)

	tokenService := service.NewTokenService(
		tokenRepo, quoteRepo, invoiceRepo, customerRepo, orgRepo,
		cfg.PortalBaseURL, cfg.QuoteTokenTTL(), cfg.InvoiceTokenTTL(),
	)
	accessLogService := service.NewAccessLogService(accessLogRepo, tokenRepo)
	quotePortalService := service.NewQuotePortalService(
		tokenService, quoteRepo, customerRepo, orgRepo, accessLogService,
	)
	invoicePortalService := service.NewInvoicePortalService(
		tokenService, invoiceRepo, paymentRepo, customerRepo, orgRepo,
		accessLogService, checkoutClient, cfg.PortalBaseURL,
	)

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(orgRepo)
	portalLimit := middleware.NewIPRateLimitMiddleware(
		limiter, cfg.PortalRateLimitPerMin, time.Minute, "portal",
	)
	actionLimit := middleware.NewIPRateLimitMiddleware(
		limiter, cfg.ActionRateLimitPerMin, time.Minute, "portal-action",
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	portalHandler := handler.NewPortalHandler(
		tokenService, quotePortalService, invoicePortalService, accessLogService,
		actionLimit.Handler,
	)
	tokenAdminHandler := handler.NewTokenAdminHandler(tokenService, accessLogService, mailClient)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api/portal", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)

		r.Route("/tokens", func(r chi.Router) {
			r.Use(apiKeyMiddleware.Handler)
			r.Mount("/", tokenAdminHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(portalLimit.Handler)
			r.Mount("/", portalHandler.Routes())
		})
	})

	maintenanceJob := jobs.NewMaintenanceJob(
		accessLogRepo, invoiceRepo, cfg.AccessLogRetention(), config.MaintenanceJobInterval,
	)
	maintenanceJob.Start()
	defer maintenanceJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
