package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"govlink/internal/anchor"
	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/internal/corpus"
	"govlink/internal/evidence"
	evidencemetrics "govlink/internal/evidence/metrics"
	"govlink/internal/graph"
	"govlink/internal/index"
	"govlink/internal/linker"
	linkermetrics "govlink/internal/linker/metrics"
	"govlink/internal/obligation"
	"govlink/internal/pipeline"
	pipelinemetrics "govlink/internal/pipeline/metrics"
	"govlink/internal/platform/config"
	"govlink/internal/platform/httpserver"
	"govlink/internal/platform/logger"
	platformpostgres "govlink/internal/platform/postgres"
	platformredis "govlink/internal/platform/redis"
	"govlink/internal/registry"
	"govlink/internal/transport/ops"
	"govlink/pkg/domain"
	"govlink/pkg/platform/audit"
	auditmemory "govlink/pkg/platform/audit/store/memory"
	auditpostgres "govlink/pkg/platform/audit/store/postgres"

	"govlink/pkg/platform/audit/publisher"
	auditkafka "govlink/pkg/platform/audit/sink/kafka"
)

// main wires the stores, the stage services, and the ops listener, then runs
// the pipeline once per configured fund. Business logic lives in the internal
// services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "govlink: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	funds := make([]domain.FundID, 0, len(cfg.Funds))
	for _, raw := range cfg.Funds {
		fund, err := domain.ParseFundID(raw)
		if err != nil {
			return fmt.Errorf("fund %q: %w", raw, err)
		}
		funds = append(funds, fund)
	}

	// Stores. Without a DSN everything runs in memory, which is only useful
	// for local experiments.
	var (
		db          *sql.DB
		documents   registry.Store
		graphStore  graph.Store
		anchors     anchor.Store
		obligations obligation.Store
		auditStore  audit.Store
		provider    corpus.Provider
		managerFeed index.ManagerFeed
		dealFeed    index.DealFeed
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := platformpostgres.Migrate(ctx, db); err != nil {
			return err
		}
		documents = registry.NewPostgres(db)
		graphStore = graph.NewPostgres(db)
		anchors = anchor.NewPostgres(db)
		obligations = obligation.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		provider = corpus.NewPostgresProvider(db)
		managerFeed = index.NewPostgresManagerFeed(db)
		dealFeed = index.NewPostgresDealFeed(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		documents = registry.NewInMemory()
		graphStore = graph.NewInMemory()
		anchors = anchor.NewInMemory()
		obligations = obligation.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
		provider = corpus.NewStatic()
		managerFeed = index.NewStaticManagerFeed()
		dealFeed = index.NewStaticDealFeed()
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		provider = corpus.NewRedisCache(provider, rdb.Client,
			corpus.WithLogger(log),
			corpus.WithTTL(cfg.Redis.CacheTTL),
		)
	}

	publisherOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	}
	if len(cfg.KafkaSeeds) > 0 {
		sink, err := auditkafka.New(ctx, cfg.KafkaSeeds,
			auditkafka.WithTopic(cfg.KafkaTopic),
			auditkafka.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditLog := publisher.NewPublisher(auditStore, publisherOpts...)
	defer auditLog.Close()

	resolver := authority.NewResolver(authority.DefaultTables())
	classifier := classify.New(classify.DefaultKeywords())
	extractor := anchor.NewExtractor(anchor.DefaultConfig())
	builder := index.NewBuilder(managerFeed, dealFeed, obligations, documents, graphStore,
		index.WithLogger(log))
	linkerService := linker.NewService(resolver, provider, graphStore,
		linker.WithLogger(log),
		linker.WithMetrics(linkermetrics.New()))
	evidenceService := evidence.NewService(resolver, documents, obligations, provider, graphStore,
		evidence.WithLogger(log),
		evidence.WithMetrics(evidencemetrics.New()))

	runner := pipeline.NewRunner(documents, classifier, resolver, extractor, anchors,
		builder, linkerService, evidenceService, provider,
		pipeline.WithAudit(auditLog),
		pipeline.WithMetrics(pipelinemetrics.New()),
		pipeline.WithLogger(log),
		pipeline.WithMode(cfg.Mode))

	// Ops listener: health, prometheus metrics, latest run summaries.
	checks := map[string]ops.HealthChecker{}
	if db != nil {
		checks["postgres"] = ops.DBHealth{DB: db}
	}
	if rdb != nil {
		checks["redis"] = rdb
	}
	runLog := ops.NewRunLog()
	router := chi.NewRouter()
	ops.New(log, runLog, checks).Register(router)

	srv := httpserver.New(cfg.OpsAddr, router)
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()
	log.Info("ops listener started", "addr", cfg.OpsAddr)

	asOf := cfg.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	g, runCtx := errgroup.WithContext(ctx)
	for _, fund := range funds {
		g.Go(func() error {
			summary, err := runner.Run(runCtx, fund, asOf)
			if err != nil {
				return fmt.Errorf("fund %s: %w", fund, err)
			}
			runLog.Record(summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("pipeline run failed", "error", err)
	} else {
		log.Info("all fund runs complete", "funds", len(funds), "as_of", asOf)
	}

	// Stay up for scrapes and the run log until told to stop.
	select {
	case err := <-srvErr:
		return fmt.Errorf("ops listener: %w", err)
	case <-ctx.Done():
	}
	return httpserver.Shutdown(context.Background(), srv)
}
