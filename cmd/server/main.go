package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/controlefinanceiro/lancamentos/internal/audit"
	"github.com/controlefinanceiro/lancamentos/internal/category"
	"github.com/controlefinanceiro/lancamentos/internal/config"
	"github.com/controlefinanceiro/lancamentos/internal/database"
	"github.com/controlefinanceiro/lancamentos/internal/events"
	"github.com/controlefinanceiro/lancamentos/internal/events/kafka"
	"github.com/controlefinanceiro/lancamentos/internal/handlers"
	mW "github.com/controlefinanceiro/lancamentos/internal/middleware"
	"github.com/controlefinanceiro/lancamentos/internal/services"
	"github.com/controlefinanceiro/lancamentos/internal/storage"
	"github.com/controlefinanceiro/lancamentos/internal/storage/memory"
	"github.com/controlefinanceiro/lancamentos/internal/storage/postgres"
)

// @title Lancamentos API
// @version 1.0
// @description Ledger entries (despesas e receitas) with monthly balance
// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	config.Init()
	cfg := config.Load()

	// Storage
	var store storage.EntryStore
	switch cfg.StorageDriver {
	case "memory":
		log.Println("Using in-memory storage")
		store = memory.NewEntryStore()
	default:
		db := database.InitDatabase()
		defer db.Close()
		store = postgres.NewEntryStore(db)
	}

	// Category directory, names cached in Redis when available
	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}
	directory := category.NewCachedDirectory(
		category.NewHTTPDirectory(cfg.Category.BaseURL, cfg.Category.Timeout),
		redisClient,
		cfg.Category.CacheTTL,
	)

	// Domain events
	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("Failed to close kafka publisher: %v", err)
			}
		}()
		publisher = kafkaPublisher
		log.Printf("Publishing events to topic %s", cfg.Kafka.Topic)
	}

	ledgerService := services.NewLedgerService(store, directory,
		services.WithPublisher(publisher),
		services.WithAuditLogger(audit.NewLogger()),
	)
	entryHandler := handlers.NewEntryHandler(ledgerService, directory)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Group(func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(mW.OwnerMiddleware(cfg.JWTSecret))
		} else {
			log.Println("JWT_SECRET_KEY not set, entries are recorded without owner")
		}
		entryHandler.Routes(r)
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
