package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/chatvolt/chatvolt-mcp/internal/alert"
	apiPkg "github.com/chatvolt/chatvolt-mcp/internal/api"
	"github.com/chatvolt/chatvolt-mcp/internal/chatvolt"
	"github.com/chatvolt/chatvolt-mcp/internal/config"
	"github.com/chatvolt/chatvolt-mcp/internal/docs"
	"github.com/chatvolt/chatvolt-mcp/internal/journal"
	"github.com/chatvolt/chatvolt-mcp/internal/logbuf"
	"github.com/chatvolt/chatvolt-mcp/internal/mcpserver"
	"github.com/chatvolt/chatvolt-mcp/internal/scheduler"
	"github.com/chatvolt/chatvolt-mcp/internal/tool"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (default: CHATVOLT_* environment)")
	envFile := flag.String("env-file", ".env", "Environment file loaded when no config file is given")
	transport := flag.String("transport", "", "Override transport: stdio, sse or http")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Load config (2 modes: file, env)
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv(*envFile)
		if err == nil {
			err = cfg.Validate()
		}
	}
	if err == nil && *transport != "" {
		cfg.Server.Transport = *transport
		if cfg.Server.Transport != config.TransportStdio && cfg.Server.Addr == "" {
			cfg.Server.Addr = ":8000"
		}
		err = cfg.Validate()
	}

	// Set up logging. stdout belongs to the stdio transport, so logs go to stderr.
	logLevel := logbuf.ParseLevel("info")
	if cfg != nil {
		logLevel = logbuf.ParseLevel(cfg.Log.Level)
	}
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logbuf.NewHandler(jsonHandler, logBuf))
	slog.SetDefault(logger)

	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("chatvolt-mcp starting", "version", version, "transport", cfg.Server.Transport)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 1. Remote clients
	client := chatvolt.New(cfg.Chatvolt.APIKey,
		chatvolt.WithBaseURL(cfg.Chatvolt.BaseURL),
		chatvolt.WithTimeout(cfg.Chatvolt.Timeout()),
		chatvolt.WithLogger(logger),
	)
	fetcher, err := docs.New(cfg.Docs.BaseURL, docs.WithLogger(logger))
	if err != nil {
		logger.Error("failed to init documentation lookup", "error", err)
		os.Exit(1)
	}

	// 2. Observers
	var regOpts []tool.Option
	regOpts = append(regOpts, tool.WithLogger(logger))

	var store *journal.Store
	if cfg.Journal.Path != "" {
		store, err = openJournal(cfg.Journal.Path, logger)
		if err != nil {
			logger.Error("failed to open call journal", "path", cfg.Journal.Path, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		regOpts = append(regOpts, tool.WithObserver(store))
		logger.Info("call journal enabled", "path", cfg.Journal.Path)
	}

	var notifier *alert.Notifier
	if cfg.Alerts.SlackWebhookURL != "" {
		notifier, err = alert.New(cfg.Alerts.SlackWebhookURL, cfg.Server.Name,
			alert.WithCooldown(time.Duration(cfg.Alerts.CooldownSeconds)*time.Second),
			alert.WithLogger(logger),
		)
		if err != nil {
			logger.Error("failed to init slack alerts", "error", err)
			os.Exit(1)
		}
		regOpts = append(regOpts, tool.WithObserver(notifier))
		logger.Info("slack alerts enabled", "cooldown_seconds", cfg.Alerts.CooldownSeconds)
	}

	// 3. Operation registry
	ops := tool.Filter(tool.Operations(client, fetcher), cfg.Tools)
	reg, err := tool.NewRegistry(ops, regOpts...)
	if err != nil {
		logger.Error("failed to build operation registry", "error", err)
		os.Exit(1)
	}
	logger.Info("operations registered", "count", reg.Len())

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			safeGo(logger, name, func() {
				if err := fn(); err != nil && ctx.Err() == nil {
					logger.Error("component failed", "name", name, "error", err)
				}
			})
		}()
	}

	// 4. Journal maintenance
	if store != nil && cfg.Journal.Retention() > 0 {
		sched := scheduler.New(logger)
		retention := cfg.Journal.Retention()
		if err := sched.AddJob("journal-prune", cfg.Journal.PruneSchedule, func(ctx context.Context) error {
			_, err := store.Prune(ctx, time.Now().Add(-retention))
			return err
		}); err != nil {
			logger.Error("failed to schedule journal pruning", "error", err)
			os.Exit(1)
		}
		run("scheduler", func() error { return sched.Start(ctx) })
	}

	// 5. Admin API
	if cfg.API.Enabled {
		var calls apiPkg.CallQuerier
		if store != nil {
			calls = store
		}
		apiSrv := apiPkg.NewServer(reg, calls, logBuf, apiPkg.Config{
			Host: cfg.API.Host,
			Port: cfg.API.Port,
			Key:  cfg.API.Key,
		}, logger)
		run("api-server", func() error { return apiSrv.Start(ctx) })
	}

	// 6. MCP server. The process lives as long as the transport does; for
	// stdio that is until the host closes stdin.
	mcpSrv, err := mcpserver.New(reg, mcpserver.Config{
		Name:      cfg.Server.Name,
		Version:   version,
		Transport: cfg.Server.Transport,
		Addr:      cfg.Server.Addr,
		BaseURL:   cfg.Server.BaseURL,
	}, logger)
	if err != nil {
		logger.Error("failed to init mcp server", "error", err)
		os.Exit(1)
	}
	if err := mcpSrv.Start(ctx); err != nil {
		logger.Error("mcp server failed", "error", err)
	}

	// 7. Graceful shutdown
	cancel()
	wg.Wait()
	if notifier != nil {
		notifier.Wait()
	}
	logger.Info("chatvolt-mcp stopped")
}

// openJournal creates the journal's directory and opens the store.
func openJournal(path string, logger *slog.Logger) (*journal.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	return journal.Open(path, logger)
}

// safeGo runs fn with panic recovery.
func safeGo(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("goroutine panicked", "name", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
