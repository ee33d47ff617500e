package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	v1 "agrimsg/cmd/agrimsg/router/v1"
	"agrimsg/internal/config"
	cacheadapter "agrimsg/internal/infrastructure/cache/adapter"
	cacheport "agrimsg/internal/infrastructure/cache/port"
	"agrimsg/internal/infrastructure/database"
	queueadapter "agrimsg/internal/infrastructure/queue/adapter"
	"agrimsg/internal/infrastructure/realtime"
	msgcache "agrimsg/internal/pkg/messaging/cache"
	notifadapter "agrimsg/internal/pkg/notification/persistence/repository/adapter"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the messaging API server",
		Long:  "Runs database migrations, then serves the HTTP and websocket API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agrimsg.yaml", "path to config file")
	return cmd
}

func runServe(configPath string) error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
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

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Redis is optional: without it the query cache always misses and
	// notifications are written synchronously instead of queued.
	var store cacheport.Cache
	notifier := notifsvc.Notifier(notifsvc.NewDirectNotifier(notifadapter.NewPgNotificationRepository(pool)))
	if cfg.RedisURL != "" {
		rc, err := cacheadapter.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: redis cache unavailable: %v", err)
		} else {
			store = rc
			defer rc.Close()
		}

		client, err := queueadapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: task queue unavailable, delivering notifications directly: %v", err)
		} else {
			notifier = notifsvc.NewQueueNotifier(client)
			defer client.Close()
		}
	}
	qc := msgcache.New(store)

	rt := realtime.NewRouter()
	defer rt.Close()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, qc, notifier, rt)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("agrimsg listening on %s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
