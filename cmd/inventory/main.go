package main

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-shop-orders.git/internal/config"
	"github.com/ariefcatur/go-shop-orders.git/internal/events"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/logx"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
)

// inventory-auditor: consume inventory.restore_failed, simpan ke stock_incidents.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName+"-inventory")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("inventory auditor exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	svc := &inventory.IncidentService{Incidents: &inventory.IncidentRepo{DB: db}, Log: log}

	// Redis dedup (opsional, event_id juga unique di DB)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.InventoryGroup, events.TopicInventoryRestoreFailed, cfg.InventoryWorkers, log)
	log.Info("inventory consumer started",
		zap.String("group", cfg.InventoryGroup),
		zap.String("topic", events.TopicInventoryRestoreFailed),
		zap.Int("workers", cfg.InventoryWorkers))

	if err := cons.Start(ctx, svc.HandleRestoreFailed); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	log.Info("shutting down consumer...")
	return nil
}
