package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"salesdoc/internal/config"
	"salesdoc/pkg/server"
)

// @title Sales Document API
// @version 1.0
// @description Local API for composing, totalling, rendering and exporting receipts, invoices and quotes

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host 127.0.0.1:8081
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependencies
	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Run(ctx); err != nil {
		container.Logger.WithError(err).Error("Server stopped")
		container.Close()
		os.Exit(1)
	}
}
