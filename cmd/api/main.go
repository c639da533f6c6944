package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/narkk-storefront/api/routes"
	"github.com/angelmondragon/narkk-storefront/internal/cart"
	"github.com/angelmondragon/narkk-storefront/internal/catalog"
	"github.com/angelmondragon/narkk-storefront/internal/checkout"
	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/internal/settings"
	"github.com/angelmondragon/narkk-storefront/internal/slots"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	"github.com/angelmondragon/narkk-storefront/pkg/db"
	"github.com/angelmondragon/narkk-storefront/pkg/instance"
	"github.com/angelmondragon/narkk-storefront/pkg/keylock"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/angelmondragon/narkk-storefront/pkg/migrate"
	"github.com/angelmondragon/narkk-storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Prices are persisted and served as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Static:      map[string]string{"env": cfg.App.Env, "instance": instance.ID()},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openSlotBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap slot storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing slot storage", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(reg)

	locks := keylock.New()
	commerceHTTP := &http.Client{Timeout: cfg.Commerce.Timeout}

	settingsService, err := settings.NewService(backend.repo, cfg.Commerce, locks, logg)
	requireResource(ctx, logg, "settings service", err)

	cartService, err := cart.NewService(backend.repo, locks, logg, storefrontMetrics)
	requireResource(ctx, logg, "cart service", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:      cartService,
		Slots:      backend.repo,
		Creds:      settingsService,
		Commerce:   cfg.Commerce,
		HTTPClient: commerceHTTP,
		Logger:     logg,
		Metrics:    storefrontMetrics,
	})
	requireResource(ctx, logg, "checkout service", err)

	codec, err := session.NewCodec([]byte(cfg.Session.Secret), cfg.Session.CookieName, cfg.Session.Secure, cfg.Session.MaxAge)
	requireResource(ctx, logg, "session codec", err)

	handler := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		SlotBackend: backend.pinger,
		Gatherer:    reg,
		Sessions:    codec,
		Catalog:     catalog.NewSelector(catalog.NewFixtureCatalog(), settingsService, commerceHTTP, logg, storefrontMetrics),
		Carts:       cartService,
		Checkout:    checkoutService,
		Settings:    settingsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":    addr,
		"storage": cfg.Storage.Backend,
		"remote":  cfg.Commerce.Configured(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

type slotBackend struct {
	repo    slots.Repository
	pinger  db.Pinger
	closers []io.Closer
}

func (b *slotBackend) Close() error {
	var err error
	for _, c := range b.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// openSlotBackend connects the configured store for per-session slots and
// applies pending migrations when the SQL backend is selected.
func openSlotBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*slotBackend, error) {
	if cfg.Storage.UsesDB() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		backend := &slotBackend{pinger: dbClient, closers: []io.Closer{dbClient}}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return nil, multierr.Append(err, backend.Close())
		}
		repo, err := slots.NewDBRepository(dbClient.DB())
		if err != nil {
			return nil, multierr.Append(err, backend.Close())
		}
		backend.repo = repo
		return backend, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, err
	}
	backend := &slotBackend{pinger: redisClient, closers: []io.Closer{redisClient}}
	repo, err := slots.NewRedisRepository(redisClient, cfg.Storage.SlotTTL)
	if err != nil {
		return nil, multierr.Append(err, backend.Close())
	}
	backend.repo = repo
	return backend, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
