// Package app wires the storefront server: configuration, storage, event
// publishing, services, HTTP surface, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/coreforge/storefront/internal/config"
	"github.com/coreforge/storefront/internal/event"
	handler "github.com/coreforge/storefront/internal/handler/http"
	pgrepo "github.com/coreforge/storefront/internal/repository/postgres"
	redisrepo "github.com/coreforge/storefront/internal/repository/redis"
	"github.com/coreforge/storefront/internal/service"
	"github.com/coreforge/storefront/pkg/database"
	"github.com/coreforge/storefront/pkg/health"
	"github.com/coreforge/storefront/pkg/httpclient"
)

// App holds the assembled server and its owned resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher event.Publisher
	watcher   *httpclient.ConnectivityWatcher

	server *http.Server
}

// New builds the application: connects storage, runs migrations, and wires
// services and handlers.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgCfg := cfg.PostgresPoolConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, pgrepo.Migrations, pgrepo.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var publisher event.Publisher = event.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = event.NewKafkaPublisher(cfg.Kafka.Brokers, logger)
	}

	pricing := cfg.DomainPricing()

	productRepo := pgrepo.NewProductRepository(pool)
	orderRepo := pgrepo.NewOrderRepository(pool)
	cartStore := redisrepo.NewCartStore(redisClient, cfg.Redis.CartTTL)

	catalogSvc := service.NewCatalogService(productRepo, logger)
	cartSvc := service.NewCartService(cartStore, productRepo, pricing, logger)
	orderSvc := service.NewOrderService(orderRepo, cartStore, pricing, publisher, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	router := handler.NewRouter(handler.RouterDeps{
		Products: handler.NewProductHandler(catalogSvc, logger),
		Cart:     handler.NewCartHandler(cartSvc, logger),
		Orders:   handler.NewOrderHandler(orderSvc, logger),
		Admin:    handler.NewAdminHandler(catalogSvc, orderSvc, logger),
		Health:   healthHandler,
		Logger:   logger,
	})

	app := &App{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		publisher: publisher,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.Probe.Target != "" {
		app.watcher = httpclient.NewConnectivityWatcher(
			cfg.Probe.Target,
			cfg.Probe.Interval,
			httpclient.LogNotifier{Logger: logger},
		)
	}

	return app, nil
}

// Run starts the HTTP server and blocks until the context is canceled, then
// shuts everything down in order.
func (a *App) Run(ctx context.Context) error {
	if a.watcher != nil {
		go a.watcher.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.close()
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close event publisher", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", slog.String("error", err.Error()))
	}
	a.pool.Close()
}
