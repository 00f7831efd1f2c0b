// Command reindex runs a single bulk index maintenance action from the
// command line: refresh (clear then rebuild), rebuild, clear, configure, or
// stats. It wires the store and engine directly, without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/proposalhub/search-sync/internal/engine"
	"github.com/proposalhub/search-sync/internal/index"
	"github.com/proposalhub/search-sync/internal/store"
	"github.com/proposalhub/search-sync/pkg/config"
	"github.com/proposalhub/search-sync/pkg/logger"
	"github.com/proposalhub/search-sync/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	action := flag.String("action", "refresh", "refresh | rebuild | clear | configure | stats")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	meili := engine.NewMeili(cfg.Meilisearch)
	if err := meili.Ping(ctx); err != nil {
		slog.Error("search engine unreachable", "host", cfg.Meilisearch.Host, "error", err)
		os.Exit(1)
	}

	manager := index.NewManager(meili, store.New(db), nil, nil, cfg.Sync)

	var out any
	exitCode := 0
	switch *action {
	case "refresh":
		result := manager.Refresh(ctx)
		out = result
		if !result.Success {
			exitCode = 1
		}
	case "rebuild":
		result, err := manager.Rebuild(ctx)
		if err != nil {
			slog.Error("rebuild failed", "error", err)
			os.Exit(1)
		}
		out = result
	case "clear":
		if err := manager.Clear(ctx); err != nil {
			slog.Error("clear failed", "error", err)
			os.Exit(1)
		}
		out = map[string]string{"status": "cleared"}
	case "configure":
		if err := manager.Configure(ctx); err != nil {
			slog.Error("configure failed", "error", err)
			os.Exit(1)
		}
		out = map[string]string{"status": "configured"}
	case "stats":
		stats, err := manager.Stats(ctx)
		if err != nil {
			slog.Error("stats failed", "error", err)
			os.Exit(1)
		}
		out = stats
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q\n", *action)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("failed to encode result", "error", err)
		exitCode = 1
	}
	if exitCode != 0 {
		db.Close()
		os.Exit(exitCode)
	}
}
