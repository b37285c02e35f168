// Command maskeditd serves the asset store over HTTP so the editor and the
// compute pipeline can share masks.
//
// Usage:
//
//	maskeditd -config rgbyp.yaml
//	maskeditd -backend sqlite -dsn assets.db -addr :8188
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/assetserver"
	"rgbyp-maskeditor/internal/config"
	"rgbyp-maskeditor/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	backend := flag.String("backend", "", "store backend: memory, fs, sqlite")
	root := flag.String("root", "", "fs backend root directory")
	dsn := flag.String("dsn", "", "sqlite backend database path")
	addr := flag.String("addr", "", "listen address (default from config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("maskeditd"))
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maskeditd: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *root != "" {
		cfg.Store.Root = *root
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Server.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("maskeditd: fatal", "error", err)
		os.Exit(1)
	}
}

// lister is implemented by stores that can enumerate their contents.
type lister interface {
	List(ctx context.Context, area assets.Area) ([]assets.Ref, error)
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Store.Backend == config.BackendHTTP {
		return fmt.Errorf("store backend %q cannot be served; point maskeditd at a local store", cfg.Store.Backend)
	}

	store, closeStore, err := cfg.Store.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	logger.Info("maskeditd: starting",
		"version", version.Version,
		"backend", cfg.Store.Backend,
		"addr", cfg.Server.ListenAddr)

	if l, ok := store.(lister); ok {
		for _, area := range []assets.Area{assets.AreaTemp, assets.AreaInput} {
			refs, err := l.List(ctx, area)
			if err != nil {
				return fmt.Errorf("list %s assets: %w", area, err)
			}
			logger.Info("maskeditd: stored assets", "area", string(area), "count", len(refs))
		}
	}

	srv := assetserver.New(store, logger)
	return srv.ListenAndServe(ctx, cfg.Server.ListenAddr)
}
