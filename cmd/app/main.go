package main

import (
	"flag"
	"log"
	"os"

	"StockPull/internal/di"
	"StockPull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path; empty uses defaults and environment only")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s port=%d exchanges=%v redis=%t", cfg.Environment, cfg.Server.Port, cfg.Calendar.Exchanges, cfg.Redis.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
