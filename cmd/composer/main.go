// Package main is the entry point for the scene composer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/composer"
	"github.com/Faultbox/composer/internal/config"
	"github.com/Faultbox/composer/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, logger.FileConfig{
		Path:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Composer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	os.Exit(run(cfg))
}

// run keeps deferred cleanup ahead of os.Exit.
func run(cfg *config.Config) int {
	defer logger.Sync()

	app, err := composer.New(cfg)
	if err != nil {
		logger.Error("failed to start composer", zap.Error(err))
		return 1
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("composer error", zap.Error(err))
		return 1
	}

	logger.Info("composer closed normally")
	return 0
}
