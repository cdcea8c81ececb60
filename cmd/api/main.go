package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/config"
	"github.com/01moynul/medistore/internal/database"
	"github.com/01moynul/medistore/internal/events"
	"github.com/01moynul/medistore/internal/handlers"
	"github.com/01moynul/medistore/internal/routes"
	"github.com/01moynul/medistore/internal/service"
	"github.com/01moynul/medistore/internal/store"
	"github.com/01moynul/medistore/internal/store/memstore"
	"github.com/01moynul/medistore/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Storage ---
	var (
		repo service.Repository
		ping func(context.Context) error
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("WARNING: STORE_DRIVER=memory. Data is lost on restart.")
		repo = memstore.New()
	case config.StoreMySQL:
		db, err := database.OpenDB(cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			log.Fatalf("Failed to connect to primary database: %v", err)
		}
		defer db.Close()
		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				log.Fatalf("Failed to migrate database: %v", err)
			}
		}
		repo = store.New(db)
		ping = db.PingContext
	default:
		log.Fatalf("Unknown STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, config.StoreMySQL, config.StoreMemory)
	}

	// 2. --- Order Events ---
	notes := service.NewNotificationService(repo)
	var publisher service.EventPublisher
	if cfg.RabbitMQURL == "" {
		log.Println("RABBITMQ_URL not set: order events are handled in-process.")
		publisher = events.LocalPublisher{Handle: notes.HandleOrderEvent}
	} else {
		rmq, err := events.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatalf("RabbitMQ initialization failed: %v", err)
		}
		defer rmq.Close()
		if err := rmq.SetupQueues(); err != nil {
			log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
		}
		go func() {
			if err := rmq.ConsumeOrderEvents(ctx, notes.HandleOrderEvent); err != nil {
				log.Printf("ERROR: order event consumer stopped: %v", err)
			}
		}()
		publisher = rmq
	}

	// 3. --- Services & Handlers ---
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	orders := service.NewOrderService(repo, publisher)
	app := &handlers.Handlers{
		Users:    service.NewUserService(repo, tokens),
		Carts:    service.NewCartService(repo),
		Orders:   orders,
		Products: service.NewProductService(repo),
		Stats:    service.NewStatsService(repo),
		Notes:    notes,
		Ping:     ping,
	}

	// 4. --- Background Workers ---
	go worker.OverdueOrders{
		Orders:   orders,
		Interval: cfg.OverdueScanInterval,
		TTL:      cfg.PendingOrderTTL,
	}.Run(ctx)

	// 5. --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(app, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Starting MediStore API server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: graceful shutdown: %v", err)
	}
}
