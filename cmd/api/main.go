package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-warung/internal/checkout"
	"github.com/noah-isme/backend-warung/internal/config"
	"github.com/noah-isme/backend-warung/internal/health"
	"github.com/noah-isme/backend-warung/internal/lock"
	"github.com/noah-isme/backend-warung/internal/menu"
	"github.com/noah-isme/backend-warung/internal/obs"
	"github.com/noah-isme/backend-warung/internal/order"
	"github.com/noah-isme/backend-warung/internal/payment"
	"github.com/noah-isme/backend-warung/internal/pricing"
	"github.com/noah-isme/backend-warung/internal/ratelimit"
	"github.com/noah-isme/backend-warung/internal/sequence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "warung"), nil)

	if cfg.MigrateOnStart {
		m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("open migrations")
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "warung-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	loc, err := cfg.BusinessLocation()
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.BusinessTimezone).Msg("load business timezone")
	}

	menuSvc := &menu.Service{
		Reader: &menu.Store{Pool: pool},
		Cache:  menu.NewCache(redisClient, cfg.MenuCacheTTL),
	}
	menuHandler := &menu.Handler{Svc: menuSvc}

	pricer := &pricing.Pricer{Catalog: menuSvc, TaxRate: cfg.TaxRate, Log: &logger}

	sequencer := &sequence.Sequencer{
		Store:    countingCounterStore{inner: &sequence.PGStore{Pool: pool}},
		Base:     cfg.OrderNumberBase,
		Location: loc,
	}
	orderRepo := &order.PGRepo{Pool: pool}
	assembler := &order.Assembler{Repo: orderRepo, Seq: sequencer}

	gateway := payment.NewMockGateway()
	locker := &lock.Locker{R: redisClient}

	checkoutSvc := &checkout.Service{
		Pricer:              pricer,
		Gateway:             gateway,
		Assembler:           assembler,
		Locker:              locker,
		LockTTL:             cfg.CheckoutLockTTL,
		MinChargeMinorUnits: cfg.MinChargeMinorUnits,
		ToleranceMinorUnits: cfg.AmountToleranceMinorUnits,
		Log:                 &logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc, Validate: validator.New()}

	orderHandler := &order.Handler{Repo: orderRepo}
	orderAdmin := &order.AdminHandler{Repo: orderRepo}

	checkoutLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:checkout:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ClientIP,
			Window: cfg.CheckoutRateWindow,
			Max:    cfg.CheckoutRateMax,
		},
		OnError: func(err error) {
			logger.Error().Err(err).Msg("rate limiter store")
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.Handler{
		Checker: readinessChecker{db: pool, redis: redisClient},
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/menu", menuHandler.List)
		v.Get("/menu/{itemId}", menuHandler.Get)

		v.Post("/cart/quote", checkoutHandler.Quote)
		v.With(checkoutLimit.Middleware).Post("/checkout", checkoutHandler.Checkout)

		v.Get("/orders/{orderId}", orderHandler.Get)

		v.Route("/admin", func(admin chi.Router) {
			admin.Get("/orders", orderAdmin.List)
			admin.Patch("/orders/{orderId}/status", orderAdmin.PatchStatus)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown http server")
	}
	logger.Info().Msg("server stopped")
}

// countingCounterStore wraps the counter store with allocation metrics.
type countingCounterStore struct {
	inner sequence.CounterStore
}

func (c countingCounterStore) Allocate(ctx context.Context, day string, base int64) (int64, error) {
	value, err := c.inner.Allocate(ctx, day, base)
	if obs.SequenceAllocations != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.SequenceAllocations.WithLabelValues(result).Inc()
	}
	return value, err
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
