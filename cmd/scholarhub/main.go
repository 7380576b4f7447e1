// File: cmd/scholarhub/main.go
package main

import (
	"context"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"scholarhub_client/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	application, cleanup, err := initializeApp(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer cleanup()

	if err := application.Start(); err != nil {
		log.Fatalf("FATAL: Application failed to start: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancelShutdown()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Application forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Application shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}
