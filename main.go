package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockcompare/internal/config"
	"stockcompare/internal/logging"
	"stockcompare/internal/pipeline"
	"stockcompare/internal/resolver"
	"stockcompare/internal/sources"
	"stockcompare/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := logging.New(logging.Config{
		Dir:     cfg.LogDir,
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	// Create fetchers dynamically from configuration
	fetchers, err := sources.Build(cfg)
	if err != nil {
		logger.Errorw("Failed to build sources", "error", err)
		return
	}
	logger.Infof("Sources enabled: %v", cfg.Sources)

	res := resolver.New(cfg.YahooSearchURL, sources.ClientOptions(cfg), logger)
	p := pipeline.New(res, fetchers, pipeline.Options{
		DataDir:       cfg.DataDir,
		ChartsDir:     cfg.ChartsDir,
		SourceTimeout: cfg.SourceTimeout,
	}, logger)
	srv := web.New(cfg.ServerAddr, p, cfg.ChartsDir, logger)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal, shutting down...")
		cancel()
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Errorw("Server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Errorw("Server shutdown error", "error", err)
	}
}
