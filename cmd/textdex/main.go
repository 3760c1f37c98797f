package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/config"
	"github.com/kailas-cloud/textdex/internal/db"
	dbMemory "github.com/kailas-cloud/textdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/textdex/internal/db/redis"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/index"
	logpkg "github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/textdex/internal/transport/chi"
	"github.com/kailas-cloud/textdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting textdex server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("cache_enabled", cfg.Cache.IsEnabled()),
	)

	metrics.RegisterCacheMetrics()

	ctx := context.Background()

	// Cache backend. A failed or absent backend never blocks startup:
	// the engine degrades to serving uncached.
	var cacheMgr engine.Cache
	if cfg.Cache.IsEnabled() {
		var store db.Store
		switch cfg.Cache.Driver {
		case "redis":
			store, err = dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Cache.Addrs,
				Username: cfg.Cache.Username,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
			})
			if err != nil {
				logger.Fatal("Failed to create cache store", zap.Error(err))
			}
			readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
			if err := store.WaitForReady(ctx, readiness); err != nil {
				logger.Warn("Cache backend not ready, running degraded", zap.Error(err))
			} else {
				logger.Info("Connected to cache backend")
			}
		case "memory":
			store = dbMemory.NewStore()
		default:
			logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
		}
		defer store.Close()

		cacheMgr = cache.NewManager(store, cache.Config{
			DocTTL:    time.Duration(cfg.Cache.DocTTLSec) * time.Second,
			QueryTTL:  time.Duration(cfg.Cache.QueryTTLSec) * time.Second,
			StatsTTL:  time.Duration(cfg.Cache.StatsTTLSec) * time.Second,
			OpTimeout: time.Duration(cfg.Cache.OpTimeoutMS) * time.Millisecond,
		}, logger)
	}

	docStore := index.NewStore()
	indexer := index.NewIndexer(docStore, cfg.Engine.MaxTerms, logger)

	eng, err := engine.New(
		docStore, indexer, cacheMgr, cfg.Engine.Strategy, logger,
		engine.WithDefaultLimit(cfg.Engine.DefaultLimit),
	)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	server := chiTransport.NewServer(eng, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
