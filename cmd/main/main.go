package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting category matcher...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Infof("Configuration loaded: %d marketplaces", len(cfg.Marketplaces))

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Shutdown signal received")
		if err := app.Close(); err != nil {
			log.Errorf("Shutdown error: %v", err)
		}
	}()

	// Run the application
	if err := app.Run(ctx); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}

	log.Info("Application finished successfully")
}
