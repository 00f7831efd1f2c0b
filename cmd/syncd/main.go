// Command syncd runs the document-to-search-index synchronization service:
// the content API over the PostgreSQL record store, write-time enrichment,
// lifecycle-driven index sync into Meilisearch, the maintenance consumer, and
// the cached advanced-search passthrough.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/proposalhub/search-sync/internal/api"
	"github.com/proposalhub/search-sync/internal/engine"
	"github.com/proposalhub/search-sync/internal/enrich"
	"github.com/proposalhub/search-sync/internal/index"
	"github.com/proposalhub/search-sync/internal/search"
	"github.com/proposalhub/search-sync/internal/store"
	syncpkg "github.com/proposalhub/search-sync/internal/sync"
	"github.com/proposalhub/search-sync/pkg/config"
	"github.com/proposalhub/search-sync/pkg/health"
	"github.com/proposalhub/search-sync/pkg/kafka"
	"github.com/proposalhub/search-sync/pkg/logger"
	"github.com/proposalhub/search-sync/pkg/metrics"
	"github.com/proposalhub/search-sync/pkg/postgres"
	pkgredis "github.com/proposalhub/search-sync/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting sync service", "port", cfg.Server.Port, "index", cfg.Meilisearch.Index)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	meili := engine.NewMeili(cfg.Meilisearch)
	if err := meili.Ping(ctx); err != nil {
		slog.Warn("search engine unreachable at startup, continuing", "error", err)
	}

	var queryCache *search.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		queryCache = search.NewQueryCache(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	m := metrics.New()

	recordStore := store.New(db)

	var invalidator index.Invalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	manager := index.NewManager(meili, recordStore, invalidator, m, cfg.Sync)

	auditProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SyncAudit)
	defer auditProducer.Close()
	audit := syncpkg.NewAuditPublisher(auditProducer)

	enricher := enrich.NewClient(cfg.Enrichment)
	orchestrator := syncpkg.New(enricher, manager, audit, m)
	orchestrator.Register(recordStore)
	slog.Info("sync orchestrator registered on record store")

	maintenanceConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Maintenance, syncpkg.HandleMaintenance(manager))
	defer maintenanceConsumer.Close()
	go func() {
		if err := maintenanceConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("maintenance consumer stopped", "error", err)
		}
	}()
	slog.Info("maintenance consumer started", "topic", cfg.Kafka.Topics.Maintenance)

	searchService := search.NewService(manager, queryCache, m)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("meilisearch", func(ctx context.Context) health.ComponentHealth {
		if err := meili.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	handler := api.New(recordStore, manager, searchService, queryCache)
	router := api.NewRouter(handler, checker, m, cfg.Server.WriteTimeout)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("sync service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("sync service stopped")
}
