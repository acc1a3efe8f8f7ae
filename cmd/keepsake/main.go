package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dukerupert/keepsake/internal/backup"
	"github.com/dukerupert/keepsake/internal/bot"
	"github.com/dukerupert/keepsake/internal/config"
	"github.com/dukerupert/keepsake/internal/database"
	"github.com/dukerupert/keepsake/internal/logging"
	"github.com/dukerupert/keepsake/internal/scheduler"
	"github.com/dukerupert/keepsake/internal/store"
)

func main() {
	configPath := flag.String("config", "keepsake.yaml", "path to config file")
	flag.Parse()

	// .env is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		logger.Error("TELEGRAM_TOKEN not set")
		os.Exit(1)
	}

	// These were validated by config.Load.
	loc, _ := cfg.Location()
	feb29, _ := cfg.Feb29Policy()
	policy, _ := cfg.Policy()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	events := store.NewEventStore(db)
	ledger := store.NewDeliveryStore(db)
	notes := store.NewNoteStore(db)

	b, err := bot.New(token, events, notes, feb29, logger.With("component", "bot"))
	if err != nil {
		logger.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(events, ledger, b, policy, scheduler.Config{
		TickTime: cfg.TickTime,
		Location: loc,
		Feb29:    feb29,
	}, logger.With("component", "scheduler"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	if cfg.Backup.Enabled {
		mgr := backup.NewManager(backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.Backup.Endpoint,
				Bucket:    cfg.Backup.Bucket,
				Region:    cfg.Backup.Region,
				AccessKey: cfg.Backup.AccessKey,
				SecretKey: cfg.Backup.SecretKey,
			},
			Passphrase: cfg.Backup.Passphrase,
			Interval:   cfg.BackupInterval(),
		}, db, logger.With("component", "backup"))
		go mgr.Run(ctx)
	}

	go b.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
}
