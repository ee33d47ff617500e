package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"agrimsg/internal/config"
	"agrimsg/internal/infrastructure/database"
	queueadapter "agrimsg/internal/infrastructure/queue/adapter"
	notifadapter "agrimsg/internal/pkg/notification/persistence/repository/adapter"
	notifsvc "agrimsg/internal/pkg/notification/service"
	"agrimsg/internal/pkg/notification/task"
)

func newWorkerCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Start the background worker",
		Long:  "Consumes queued notification tasks and runs the notification retention sweep.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agrimsg.yaml", "path to config file")
	return cmd
}

func runWorker(configPath string) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return fmt.Errorf("worker requires redis_url (or REDIS_URL)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	srv, err := queueadapter.NewAsynqServer(cfg.RedisURL, cfg.Worker.Concurrency, cfg.QueueWeights())
	if err != nil {
		return fmt.Errorf("task queue: %w", err)
	}

	task.RegisterDeliverNotificationTask(srv, pool)

	repo := notifadapter.NewPgNotificationRepository(pool)
	maxAge := time.Duration(cfg.Worker.RetentionDays) * 24 * time.Hour
	sweeper, err := notifsvc.NewRetentionSweeper(repo, cfg.Worker.RetentionSchedule, maxAge)
	if err != nil {
		return fmt.Errorf("retention sweep: %w", err)
	}
	go sweeper.Run(ctx)

	log.Printf("agrimsg worker running (concurrency %d)", cfg.Worker.Concurrency)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	return nil
}
