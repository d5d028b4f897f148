package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentgate/internal/config"
	"agentgate/internal/openapi"
	"agentgate/internal/policy"
	"agentgate/internal/provider"
	"agentgate/internal/service"
	"agentgate/internal/store"
	transport "agentgate/internal/transport/http"

	// Completion providers register themselves with the factory.
	_ "agentgate/internal/provider/gemini"
	_ "agentgate/internal/provider/ollama"
	_ "agentgate/internal/provider/openailm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting agentgate...")
	log.Printf("Listen address: %s", cfg.ListenAddr)
	log.Printf("Store: %s (%s)", cfg.StoreDriver, cfg.DatabaseURL)
	log.Printf("Provider: %s (model %s)", cfg.Provider, cfg.Model)

	ctx := context.Background()

	// Initialize store
	var db store.Store
	switch cfg.StoreDriver {
	case "memory":
		db = store.NewMemoryStore()
	default:
		db, err = store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
	}

	// Initialize policy engine
	var policyEngine *policy.Engine
	if cfg.PolicyPath != "" {
		policyEngine, err = policy.NewEngineFromFile(ctx, cfg.PolicyPath)
	} else {
		policyEngine, err = policy.NewEngine(ctx, policy.DefaultPolicy)
	}
	if err != nil {
		db.Close()
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize completion provider
	completions, err := provider.New(ctx, cfg)
	if err != nil {
		db.Close()
		log.Fatalf("Failed to initialize provider: %v", err)
	}

	// Initialize OpenAPI descriptor client
	specs := openapi.NewClient(cfg.HTTPTimeout())

	// Initialize service
	svc := service.New(db, completions, specs, policyEngine, cfg)

	// Create HTTP server
	server := transport.NewServer(svc)

	// Start server
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on %s", cfg.ListenAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agentgate...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}

	log.Println("Agentgate stopped")
}
