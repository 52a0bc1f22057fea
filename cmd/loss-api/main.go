package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/query"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize querier for the configured source
	var querier query.Querier
	switch cfg.API.Source {
	case "clickhouse":
		chQuerier, err := query.NewClickHouseQuerier(cfg.Writers.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create querier: %v", err)
		}
		defer chQuerier.Close()
		querier = chQuerier
	default:
		querier = query.NewFileQuerier(cfg.API.ResultsDir)
		log.Printf("Serving result files from '%s'", cfg.API.ResultsDir)
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: NewRouter(&APIHandler{querier: querier}),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
