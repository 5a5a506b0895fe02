package main

import (
	"errors"
	"log"
	"os"

	"SmartShop/internal/di"
	"SmartShop/pkg/config"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type options struct {
	Config  string `short:"c" long:"config" env:"SMARTSHOP_CONFIG" default:"config/config.yaml" description:"config file path"`
	EnvFile string `long:"env-file" default:".env" description:"dotenv file with secrets (optional)"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := godotenv.Load(opts.EnvFile); err != nil {
		log.Printf("no %s file, using process environment", opts.EnvFile)
	}

	// Load config
	cfg, err := config.LoadWithEnv(opts.Config)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s cache=%s history=%s", cfg.Environment, cfg.Cache.Backend, cfg.History.Backend)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
