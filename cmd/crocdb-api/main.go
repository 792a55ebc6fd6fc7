package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crocdb/crocdb-api/pkg/api"
	"github.com/crocdb/crocdb-api/pkg/catalog"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/config"
	"github.com/crocdb/crocdb-api/pkg/infrastructure/logging"
	"github.com/crocdb/crocdb-api/pkg/loader"
	"github.com/crocdb/crocdb-api/pkg/query"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file (JSON)")
		dbPath     = flag.String("db", "", "Path to the catalog database (overrides config)")
		port       = flag.Int("port", 0, "Port for the HTTP server (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log, err := setupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("service failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseLogFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	logConfig := &logging.Config{
		Level:  level,
		Format: format,
		Output: os.Stdout,
	}
	if cfg.Logging.Output == "file" {
		output, err := logging.CreateCombinedOutput(cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		logConfig.Output = output
	}

	logging.InitGlobalLogger(logConfig)
	return logging.GetGlobalLogger(), nil
}

func run(cfg *config.Config, log *logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := catalog.NewStore()
	dbLoader := loader.NewSQLiteLoader(cfg.Database.Path)

	// A missing or broken catalog file is not fatal: the service starts and
	// answers 503 until a reload succeeds.
	if err := dbLoader.LoadAndInstall(ctx, store); err != nil {
		log.Warn("initial catalog load failed, serving until reload succeeds", map[string]interface{}{
			"path":  cfg.Database.Path,
			"error": err.Error(),
		})
	}

	if cfg.Database.Watch {
		reloader, err := loader.NewReloader(dbLoader, store)
		if err != nil {
			log.Warn("catalog watch unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			reloader.Start(ctx)
			defer reloader.Stop()
		}
	}

	engine := query.NewEngine(store)
	server := api.NewServer(cfg, engine, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
