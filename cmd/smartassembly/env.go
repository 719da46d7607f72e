package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"smartassembly/internal/chain"
	"smartassembly/internal/config"
	"smartassembly/internal/indexer"
	"smartassembly/internal/logger"
	"smartassembly/internal/metrics"
	"smartassembly/internal/store"
)

// environment is everything a resolving command needs: the record store kept
// in sync with the database, and the indexer client for owner lookups.
type environment struct {
	cfg     *config.ProjectConfig
	log     *logrus.Logger
	db      store.Backend
	stash   *store.Stash
	owners  *indexer.Client
	reg     *prometheus.Registry
	metrics *metrics.Resolver
}

type changeNotifier interface {
	Changes(ctx context.Context, log logrus.FieldLogger) (<-chan struct{}, error)
}

func loadProject() (*config.ProjectConfig, *logrus.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log), nil
}

func loadEnvironment(ctx context.Context) (*environment, error) {
	cfg, log, err := loadProject()
	if err != nil {
		return nil, err
	}

	worlds, err := chain.LoadWorlds(cfg.Worlds.Path, cfg.Worlds.Overrides)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	owners := indexer.NewClient(cfg.Indexer.URL, worlds,
		indexer.WithHTTPClient(&http.Client{Timeout: cfg.Indexer.Timeout}),
		indexer.WithRateLimit(cfg.Indexer.RequestsPerSecond),
		indexer.WithMetrics(metrics.NewIndexer(reg)),
		indexer.WithLogger(log),
	)

	return &environment{
		cfg:     cfg,
		log:     log,
		db:      db,
		stash:   store.NewStash(),
		owners:  owners,
		reg:     reg,
		metrics: metrics.NewResolver(reg),
	}, nil
}

func (e *environment) Close(ctx context.Context) {
	if err := e.db.Close(ctx); err != nil {
		e.log.WithError(err).Warn("closing database")
	}
}

// poller syncs the stash on the configured interval and, for sqlite, whenever
// the database file changes.
func (e *environment) poller(ctx context.Context) (*store.Poller, error) {
	p := &store.Poller{
		Loader:   e.db,
		Stash:    e.stash,
		Interval: e.cfg.Database.Refresh,
		Log:      e.log,
	}
	if notifier, ok := e.db.(changeNotifier); ok {
		trigger, err := notifier.Changes(ctx, e.log)
		if err != nil {
			return nil, err
		}
		p.Trigger = trigger
	}
	return p, nil
}

// entityID picks the --id flag over the configured id.
func (e *environment) entityID(flag string) (*big.Int, error) {
	if flag != "" {
		return config.ParseSmartObjectID(flag)
	}
	id, err := e.cfg.ObjectID()
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("no smart object id: pass --id or set smart_object_id")
	}
	return id, nil
}
