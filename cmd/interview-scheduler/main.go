package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/interview-scheduler/internal/config"
	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/mikey/interview-scheduler/internal/di"
	"github.com/mikey/interview-scheduler/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	server ports.Server,
	service *core.SchedulerService,
	archive core.HistoryArchive,
) error {
	defer logger.Sync()

	// Start the request layer
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start HTTP server", zap.Error(err))
		return err
	}

	// Optionally begin watching the inbox right away
	if cfg.GetBool("scheduler.auto_start") {
		service.StartWatcher(0, "")
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the polling loop before the server so no tick races the shutdown
	service.StopWatcher()

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	archive.Stop()

	logger.Info("Shutdown complete")
	return nil
}
