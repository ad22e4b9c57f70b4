package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/analytics"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/corpus"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/indexer"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/repl"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/cache"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/executor"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/handler"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/config"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/health"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/kafka"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/postgres"
	pkgredis "github.com/pollikk/pre-inf1101-p2-v2/pkg/redis"
)

// app holds the query-side components built around a frozen engine.
type app struct {
	cfg        *config.Config
	engine     *indexer.Engine
	metrics    *metrics.Metrics
	service    *searcher.Service
	queryCache *cache.QueryCache
	redis      *pkgredis.Client
	aggregator *analytics.Aggregator
	collector  *analytics.Collector
	producer   *kafka.Producer
}

func newSource(ctx context.Context, cfg *config.Config) (corpus.Source, func(), error) {
	if cfg.Corpus.Source != "postgres" {
		src := &corpus.FileSource{Dir: cfg.Corpus.Dir, Extensions: cfg.Corpus.Extensions, Limit: cfg.Corpus.Limit}
		return src, func() {}, nil
	}
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	src, err := corpus.NewPostgresSource(db, cfg.Corpus.Limit)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("reading documents from postgres", "host", cfg.Postgres.Host, "table", db.Table())
	return src, func() { db.Close() }, nil
}

func newApp(ctx context.Context, cfg *config.Config, engine *indexer.Engine, m *metrics.Metrics) (*app, error) {
	a := &app{
		cfg:        cfg,
		engine:     engine,
		metrics:    m,
		aggregator: analytics.NewAggregator(),
	}

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			a.redis = client
			a.queryCache = cache.New(client, cfg.Redis.CacheTTL, engine.Fingerprint(), cache.WithMetrics(m))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	recorders := []analytics.Recorder{a.aggregator}
	if cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(cfg.Kafka)
		a.collector = analytics.NewCollector(a.producer, cfg.Kafka.BufferSize)
		a.collector.Start(ctx)
		recorders = append(recorders, a.collector)
		slog.Info("query analytics streaming to kafka", "topic", cfg.Kafka.AnalyticsTopic)
	}

	a.service = searcher.New(
		executor.New(engine, executor.WithMetrics(m)),
		searcher.WithCache(a.queryCache),
		searcher.WithRecorder(analytics.Fanout(recorders...)),
		searcher.WithMetrics(m),
	)
	return a, nil
}

func (a *app) Prompt(ctx context.Context, outfile string, piped bool) error {
	cfg := repl.Config{
		MaxTableRows: a.cfg.Search.MaxTableRows,
		Limit:        a.cfg.Search.DefaultLimit,
		Piped:        piped,
	}
	if outfile != "" {
		f, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening result log: %w", err)
		}
		defer f.Close()
		cfg.ResultLog = f
	}
	return repl.New(os.Stdin, os.Stdout, a.service, a.engine, cfg).Run(ctx)
}

func (a *app) Serve(ctx context.Context) error {
	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		docs, terms := a.engine.Stat()
		if !a.engine.Frozen() || docs == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "index not ready"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents, %d terms", docs, terms)}
	})
	var ping func(context.Context) error
	if a.redis != nil {
		ping = a.redis.Ping
	}
	checker.Register("redis", health.PingCheck(ping, true))

	h := handler.New(a.service, a.engine, a.queryCache, a.cfg.Search.DefaultLimit, a.cfg.Search.MaxResults)
	router := handler.NewRouter(h, handler.RouterDeps{
		Analytics: analytics.NewHandler(a.aggregator),
		Health:    checker,
		Metrics:   a.metrics,
		Timeout:   a.cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout + time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("search API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("search API stopped")
	return nil
}

func (a *app) Close() {
	if a.collector != nil {
		a.collector.Close()
		if err := a.producer.Close(); err != nil {
			slog.Warn("closing kafka producer", "error", err)
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
