// Package main provides the entry point for the journal analytics backend:
// journaling consistency, emotion/performance correlation, process trend
// analysis, and strategy-level insight generation behind an HTTP/WebSocket
// API consumed by the journal UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"github.com/tradevault/journal-backend/internal/api"
	"github.com/tradevault/journal-backend/internal/journal"
	"github.com/tradevault/journal-backend/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Parse command line flags
	host := flag.String("host", "", "Server host (overrides config)")
	port := flag.Int("port", 0, "Server port (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	configDir := flag.String("config", ".", "Directory containing journal.yaml")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Setup logger
	logger := setupLogger(*logLevel)
	defer logger.Sync()

	serverConfig, storeConfig, analyticsConfig, err := loadConfig(*configDir)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Flags win over the config file
	if *host != "" {
		serverConfig.Host = *host
	}
	if *port != 0 {
		serverConfig.Port = *port
	}
	if *dataDir != "" {
		storeConfig.DataDir = *dataDir
	}

	logger.Info("Starting journal analytics backend",
		zap.String("host", serverConfig.Host),
		zap.Int("port", serverConfig.Port),
		zap.String("dataDir", storeConfig.DataDir),
	)

	// Initialize journal store
	store, err := journal.NewStore(logger, storeConfig.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize journal store", zap.Error(err))
	}

	// Create main server
	server := api.NewServer(logger, serverConfig, store, analyticsConfig)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully",
		zap.String("http", fmt.Sprintf("http://%s:%d/api/v1", serverConfig.Host, serverConfig.Port)),
		zap.String("ws", fmt.Sprintf("ws://%s:%d%s", serverConfig.Host, serverConfig.Port, serverConfig.WebSocketPath)),
	)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// loadConfig reads journal.yaml from configDir, falling back to defaults when
// the file is absent. Environment variables prefixed JOURNAL_ override file
// values.
func loadConfig(configDir string) (*types.ServerConfig, *types.StoreConfig, types.AnalyticsConfig, error) {
	serverConfig := types.DefaultServerConfig()
	storeConfig := &types.StoreConfig{DataDir: "./data"}
	analyticsConfig := types.DefaultAnalyticsConfig()

	v := viper.New()
	v.SetConfigName("journal")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("JOURNAL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return serverConfig, storeConfig, analyticsConfig, nil
		}
		return nil, nil, analyticsConfig, fmt.Errorf("reading journal.yaml: %w", err)
	}

	if err := v.UnmarshalKey("server", serverConfig); err != nil {
		return nil, nil, analyticsConfig, fmt.Errorf("parsing server config: %w", err)
	}
	if err := v.UnmarshalKey("store", storeConfig); err != nil {
		return nil, nil, analyticsConfig, fmt.Errorf("parsing store config: %w", err)
	}
	if err := v.UnmarshalKey("analytics", &analyticsConfig); err != nil {
		return nil, nil, analyticsConfig, fmt.Errorf("parsing analytics config: %w", err)
	}

	return serverConfig, storeConfig, analyticsConfig, nil
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return logger
}
