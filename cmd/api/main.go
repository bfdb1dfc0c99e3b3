package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-orders.git/internal/config"
	"github.com/ariefcatur/go-shop-orders.git/internal/events"
	"github.com/ariefcatur/go-shop-orders.git/internal/httpx"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/telemetry"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api exited", zap.Error(err))
	}
}

// stores returns the product store, the order ledger and a cleanup func.
func stores(ctx context.Context, cfg config.Config, log *zap.Logger) (inventory.Store, orders.Ledger, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		return inventory.NewMemoryStore(), orders.NewMemoryLedger(), func() {}, nil
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return &inventory.Repo{DB: db}, &orders.Repo{DB: db}, db.Close, nil
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	store, ledger, closeDB, err := stores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	// Kafka producer (opsional)
	var evs orders.Events = orders.NopEvents{}
	if len(cfg.KafkaBrokers) > 0 {
		placed := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024, log)
		incidents := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicInventoryRestoreFailed, 256, log)
		placed.Start()
		incidents.Start()
		defer func() {
			// tutup inbox -> flush & close writer
			placed.Close()
			incidents.Close()
			placed.WaitClosed()
			incidents.WaitClosed()
		}()
		evs = &orders.KafkaEvents{Placed: placed, Incidents: incidents, Service: cfg.ServiceName, Log: log}
	} else {
		log.Info("KAFKA_BROKERS empty, events disabled")
	}

	// Redis (opsional)
	var idem *redisx.Idempotency
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, idempotency keys may be ignored", zap.Error(err))
		}
		idem = &redisx.Idempotency{Redis: rdb}
	}

	router := httpx.NewRouter(log, cfg.RequestTimeout)
	(&httpx.ProductsHandler{Store: store, Log: log}).Register(router)
	(&httpx.OrdersHandler{
		Placer: &orders.Placer{Inventory: store, Ledger: ledger, Events: evs, Log: log},
		Query:  &orders.Query{Ledger: ledger, Products: store, Log: log},
		Idem:   idem,
		Log:    log,
	}).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.Instrument(router, cfg.ServiceName),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
