// Command main is the entry point for the Inkwell backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/observability"
	"inkwell/internal/seed"
	"inkwell/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.TracingEnabled {
		exporter := "stdout"
		if cfg.OTLPEndpoint != "" {
			exporter = "otlp"
		}
		shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:  "inkwell-api",
			Environment:  cfg.Env,
			Enabled:      true,
			Exporter:     exporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: 1.0,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Printf("Tracing shutdown error: %v", err)
			}
		}()
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Base data (admin account, default categories) is guaranteed on every
	// startup; the call is idempotent.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seed.EnsureBaseData(ctx, database.DB, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		cancel()
		log.Fatalf("Failed to seed base data: %v", err)
	}
	cancel()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Fatal(srv.Start())
}
