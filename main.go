package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meddispatch/backend/internal/cache"
	"github.com/meddispatch/backend/internal/config"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/handler"
	"github.com/meddispatch/backend/internal/metrics"
	"github.com/meddispatch/backend/internal/ratelimit"
	"github.com/meddispatch/backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	pg := &db.Postgres{Pool: pool}
	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	store, closeCache, err := newCacheStore(cfg.Cache, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache")
	}
	defer closeCache()

	limiter := ratelimit.New(ratelimit.Limits{
		AuthPerMinute: atoiOr(cfg.RateLimit.AuthPerMinute, 10),
		APIPerMinute:  atoiOr(cfg.RateLimit.APIPerMinute, 120),
	})
	defer limiter.Close()

	authSvc, err := service.NewAuthService(pg, cfg.Session, cfg.Auth, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid auth configuration")
	}
	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin account")
	}

	geocoder := service.NewGeocoder(cfg.Geocoder.BaseURL, store, logger)
	loadSvc := service.NewLoadService(pg, logger)
	driverSvc := service.NewDriverService(pg)
	shipperSvc := service.NewShipperService(pg)
	facilitySvc := service.NewFacilityService(pg, geocoder, logger)
	documentSvc := service.NewDocumentService(pg)
	notificationSvc := service.NewNotificationService(pg)
	invoiceSvc := service.NewInvoiceService(pg, logger)
	complianceSvc := service.NewComplianceService(pg, atoiOr(cfg.Cron.ExpiryWindowDays, 30), logger)
	adminSvc := service.NewAdminService(pg, store, logger)

	m := metrics.New()

	router := handler.NewRouter(handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authSvc),
		Loads:         handler.NewLoadHandler(loadSvc),
		Drivers:       handler.NewDriverHandler(driverSvc, documentSvc),
		Shippers:      handler.NewShipperHandler(shipperSvc),
		Facilities:    handler.NewFacilityHandler(facilitySvc),
		Documents:     handler.NewDocumentHandler(documentSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Invoices:      handler.NewInvoiceHandler(invoiceSvc),
		Admin:         handler.NewAdminHandler(adminSvc, authSvc),
		Cron:          handler.NewCronHandler(complianceSvc),
		Health:        handler.NewHealthHandler(pg),

		SessionAuth:    handler.SessionMiddleware(authSvc),
		Limiter:        limiter,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: strings.Split(cfg.Server.AllowedOrigins, ","),
		CronSecret:     cfg.Cron.Secret,
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cron.RegistrationScan, func() {
		scanCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, _, err := complianceSvc.ScanRegistrationExpiry(scanCtx); err != nil {
			logger.Error().Err(err).Msg("scheduled registration scan failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("invalid cron schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newCacheStore selects the Redis backend when REDIS_ADDR is set and falls
// back to process-local memory otherwise.
func newCacheStore(cfg config.CacheConfig, logger zerolog.Logger) (cache.Store, func(), error) {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
		return store, func() {}, nil
	}

	sweep, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		sweep = time.Minute
	}
	mem := cache.NewMemory(atoiOr(cfg.Capacity, 1024), sweep)
	return mem, mem.Close, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
