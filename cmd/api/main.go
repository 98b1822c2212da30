// Package main provides the entry point for the Recipe Box server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipebox-server/internal/di"
	"github.com/recipebox/recipebox-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		// Without a config there is no logger to report through.
		log, logErr := do.Invoke[*logger.Logger](injector)
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
			os.Exit(1)
		}
		_ = injector.Shutdown()
		log.WithError(err).Fatal("Failed to bootstrap server")
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container stops the HTTP server first and closes the store last.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	log.Info("Server stopped")
}
