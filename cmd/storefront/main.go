package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/controller"
	"storefront/internal/countdown"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/order"
	"storefront/internal/prefs"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.CatalogURL == config.CatalogPostgres || cfg.PrefsBackend == "postgres" {
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
	}

	var src catalog.Source
	switch {
	case cfg.CatalogURL == config.CatalogPostgres:
		src = catalog.NewPostgresSource(pool, logger.Named("catalog"))
	case cfg.CatalogIsHTTP():
		src = catalog.NewHTTPSource(cfg.CatalogURL)
	default:
		src = catalog.FileSource{Path: cfg.CatalogURL}
	}
	store := catalog.NewStore(src, logger.Named("catalog"))

	ready := map[string]httpserver.ReadinessCheck{
		"catalog": func(context.Context) error {
			if store.Len() == 0 {
				return errors.New("catalog not loaded")
			}
			return nil
		},
	}
	if pool != nil {
		ready["db"] = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	}

	var prefStore prefs.Store
	switch cfg.PrefsBackend {
	case "postgres":
		prefStore = prefs.NewPostgres(pool)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		prefStore = prefs.NewRedis(client, "storefront")
		ready["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	case "memory":
		prefStore = prefs.NewMemory()
	default:
		logger.Fatal("unknown prefs backend", zap.String("backend", cfg.PrefsBackend))
	}

	sinks := order.Fanout{order.NewLogSink(logger.Named("order"))}
	if len(cfg.KafkaBrokers) > 0 {
		announcer := order.NewKafkaAnnouncer(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer announcer.Close()
		sinks = append(sinks, announcer)
		logger.Info("announcing orders to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	wa, err := order.NewWhatsApp(cfg.WhatsAppPhone)
	if err != nil {
		logger.Fatal("whatsapp phone", zap.Error(err))
	}
	logger.Info("orders go to whatsapp", zap.String("phone", wa.Phone()))

	state := httpserver.NewStateRenderer()
	ctrl, err := controller.New(controller.Deps{
		Catalog:  store,
		Prefs:    prefStore,
		Renderer: state,
		WhatsApp: wa,
		Sink:     sinks,
		Logger:   logger.Named("controller"),
		Countdown: controller.CountdownOptions{
			Cadence: cfg.CountdownCadence,
			Lead:    cfg.PromoLead,
			Clock:   countdown.SystemClock{},
		},
	})
	if err != nil {
		logger.Fatal("init controller", zap.Error(err))
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		if err := ctrl.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("controller loop stopped", zap.Error(err))
		}
	}()
	ctrl.Start(runCtx)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Dispatcher: ctrl,
		State:      state,
		Ready:      ready,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	ctrl.Close()
	cancelRun()
	logger.Info("server stopped")
}
