package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iwvelando/mortgage-planner/internal/cache"
	"github.com/iwvelando/mortgage-planner/internal/config"
	"github.com/iwvelando/mortgage-planner/internal/server"
	"github.com/iwvelando/mortgage-planner/internal/simulate"
	"github.com/iwvelando/mortgage-planner/internal/store"
	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	writeConfig := flag.String("write-config", "", "write an example configuration to the given path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteExample(*writeConfig); err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to write example config\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	snapshots, err := store.Open(conf.Storage.SnapshotPath)
	if err != nil {
		logger.Fatal("failed to open snapshot database",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = snapshots.Close()
	}()

	var responseCache cache.Cache
	if conf.Cache.RedisAddress != "" {
		redisCache := cache.NewRedisCache(conf.Cache.RedisAddress)
		defer func() {
			_ = redisCache.Close()
		}()
		responseCache = redisCache
		logger.Info("using redis simulation cache",
			zap.String("op", "main"),
			zap.String("address", conf.Cache.RedisAddress),
		)
	} else {
		responseCache = cache.NewMemoryCache()
	}

	client := simulate.NewClient(conf.Upstream.BaseURL, conf.UpstreamTimeout(), logger)
	if err := client.Health(); err != nil {
		logger.Warn("simulation API health check failed",
			zap.String("op", "main"),
			zap.String("baseUrl", conf.Upstream.BaseURL),
			zap.Error(err),
		)
	}

	handler := server.NewHandler(logger, server.Deps{
		Client:      client,
		Cache:       responseCache,
		CacheTTL:    conf.CacheTTL(),
		Snapshots:   snapshots,
		MaxBodySize: conf.Server.MaxBodySize,
		Version:     version,
	})

	srv := &http.Server{
		Addr:    conf.Server.Address,
		Handler: handler,
	}

	go func() {
		logger.Info("planner API listening",
			zap.String("op", "main"),
			zap.String("address", conf.Server.Address),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("planner stopped", zap.String("op", "main"))
}
