package main

import (
	"flag"
	"os"

	"github.com/google/uuid"

	"github.com/soocke/pixel-diff-go/app"
	"github.com/soocke/pixel-diff-go/config"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "configuration file (.json, .toml or .yaml)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime metrics")
	reference := flag.String("reference", "", "reference image to load on start")
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	// Set up logger
	logger := NewLogger(parseLevel(cfg.LogLevel), cfg.LogFormat).With("session", uuid.NewString())
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", cfgErr)
	}

	application := app.NewApp("Pixel Diff", cfg, *cfgPath, *reference, logger)
	if err := application.Start(); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}
