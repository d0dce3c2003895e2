package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/visit-ledger/pkg/api"
	"github.com/hazyhaar/visit-ledger/pkg/chassis"
	"github.com/hazyhaar/visit-ledger/pkg/engine"
	"github.com/hazyhaar/visit-ledger/pkg/ledger"
	"github.com/hazyhaar/visit-ledger/pkg/store"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

const version = "1.0.0"

type config struct {
	Addr     string `yaml:"addr"`
	DBPath   string `yaml:"db_path"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	MCP      bool   `yaml:"mcp"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: visit-ledger <command>\n\nCommands:\n  serve    Start the server\n  import   Import visit records from a CSV file\n")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	eng := engine.New(engine.WithLogger(logger))
	defer eng.Close()

	svc := ledger.New(db, eng, logger)
	if err := svc.Load(); err != nil {
		logger.Error("failed to load visit records", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(svc)

	var mcpSrv *server.MCPServer
	if cfg.MCP {
		mcpSrv = server.NewMCPServer("visit-ledger", version,
			server.WithToolCapabilities(false),
		)
		api.RegisterMCPTools(mcpSrv, svc)
		logger.Info("MCP tools registered")
	}

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	// SIGHUP: reload the in-memory snapshot from SQLite.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading visit records")
			if err := svc.Load(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("visit records reloaded", "count", svc.Count())
			}
		}
	}()

	go func() {
		logger.Info("visit-ledger listening", "addr", cfg.Addr)
		if err := srv.Start(ctx); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:   ":8420",
		DBPath: "visits.db",
		MCP:    true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
