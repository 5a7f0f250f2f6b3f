package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decor-agenda-backend/config"
	"decor-agenda-backend/internal/api"
	"decor-agenda-backend/internal/booking"
	"decor-agenda-backend/internal/db"
	"decor-agenda-backend/internal/feed"
	"decor-agenda-backend/internal/notification"
	"decor-agenda-backend/internal/parse"
	"decor-agenda-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "agenda-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	weekStart, err := parse.Weekday(cfg.Calendar.WeekStart)
	if err != nil {
		logger.Fatalf("invalid calendar.week_start %q: %v", cfg.Calendar.WeekStart, err)
	}
	location, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Fatalf("invalid calendar.timezone %q: %v", cfg.Calendar.Timezone, err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Worker pool delivers the web pushes queued by tenant feeds.
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
	pool.Start(ctx)

	feeds := feed.NewManager(cfg.Scheduler.FeedHorizonDays, func(tenantID string) feed.PushChannel {
		return notification.NewTenantChannel(tenantID, pool, appStore, &webpushOptions)
	})

	// Booking service owns the read models and the periodic feed recompute.
	svc := booking.NewService(appStore, feeds, weekStart, location, cfg.Scheduler.Interval, cfg.Scheduler.Enabled)
	go svc.Run(ctx)

	// Initialize router
	router := api.NewRouter(appStore, svc, &webpushOptions, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
