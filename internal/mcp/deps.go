package mcp

import (
	"context"
	"fmt"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/config"
	"github.com/honeycarbs/talentsync/internal/enrich"
	"github.com/honeycarbs/talentsync/internal/mcp/tools"
	"github.com/honeycarbs/talentsync/internal/metrics"
	"github.com/honeycarbs/talentsync/internal/orchestrator"
	"github.com/honeycarbs/talentsync/internal/provider"
	inhireprovider "github.com/honeycarbs/talentsync/internal/provider/inhire"
	"github.com/honeycarbs/talentsync/internal/reconcile"
	"github.com/honeycarbs/talentsync/internal/repository"
	neo4jstore "github.com/honeycarbs/talentsync/internal/storage/neo4j"
	"github.com/honeycarbs/talentsync/internal/storage/sqlstore"
	tsync "github.com/honeycarbs/talentsync/internal/sync"
	"github.com/honeycarbs/talentsync/pkg/inhire"
	"github.com/honeycarbs/talentsync/pkg/logging"
	n4j "github.com/honeycarbs/talentsync/pkg/neo4j"
	sheetsclient "github.com/honeycarbs/talentsync/pkg/sheets"
)

// provideStore opens the configured backend and ensures its schema
func provideStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (repository.Store, func(), error) {
	var (
		store  repository.Store
		client *n4j.Client
		err    error
	)

	switch cfg.Store.Driver {
	case config.DriverSQLite, "":
		store, err = sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: cfg.Store.SQLitePath})
	case config.DriverPostgres:
		store, err = sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverPostgres, DSN: cfg.Store.DatabaseURL})
	case config.DriverNeo4j:
		client, err = n4j.NewClient(ctx, provideNeo4jConfig(cfg))
		if err == nil {
			store = neo4jstore.NewStore(client)
		}
	default:
		err = fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("failed to close record store", "err", err)
		}
		if client != nil {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("failed to close Neo4j client", "err", err)
			}
		}
	}

	if err := store.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate store: %w", err)
	}
	logger.Info("record store ready", "driver", cfg.Store.Driver)

	return store, cleanup, nil
}

// provideNeo4jConfig extracts Neo4j config from main config
func provideNeo4jConfig(cfg config.Config) n4j.Config {
	return n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}
}

// provideExternalProvider falls back to provider.Disabled when InHire is not configured
func provideExternalProvider(cfg config.Config, logger *logging.Logger) (provider.ExternalProvider, error) {
	if !cfg.InHireEnabled() {
		logger.Warn("InHire not configured, talents stay local")
		return provider.Disabled{}, nil
	}

	client, err := inhire.NewClient(inhire.Config{
		BaseURL: cfg.InHire.BaseURL,
		Tenant:  cfg.InHire.Tenant,
		Token:   cfg.InHire.Token,
		Timeout: cfg.InHire.Timeout,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("InHire provider initialized", "base_url", cfg.InHire.BaseURL, "tenant", cfg.InHire.Tenant)
	return inhireprovider.New(client), nil
}

func provideEnricher(cfg config.Config, logger *logging.Logger) (enrich.ProfileEnricher, error) {
	if cfg.Anthropic.APIKey == "" {
		logger.Info("profile enrichment disabled")
		return enrich.Noop{}, nil
	}
	return enrich.NewAnthropic(enrich.AnthropicConfig{
		APIKey: cfg.Anthropic.APIKey,
		Model:  cfg.Anthropic.Model,
	}, logger)
}

func provideCollector() *metrics.Collector {
	return metrics.NewCollector(nil)
}

func provideCache(cfg config.Config, collector *metrics.Collector) cache.Cache {
	return cache.NewMemory(cache.WithTTL(cfg.CacheTTL), cache.WithRecorder(collector))
}

func provideSyncer(store repository.Store, p provider.ExternalProvider, logger *logging.Logger, collector *metrics.Collector) (*tsync.Syncer, error) {
	return tsync.NewSyncer(store, p, logger, collector)
}

func provideDispatcher(cfg config.Config, syncer *tsync.Syncer, logger *logging.Logger, collector *metrics.Collector) *tsync.Dispatcher {
	return tsync.NewDispatcher(syncer, logger,
		tsync.WithMaxInFlight(cfg.Sync.MaxInFlight),
		tsync.WithTaskTimeout(cfg.Sync.Timeout),
		tsync.WithRecorder(collector),
	)
}

func provideSweeper(cfg config.Config, store repository.Store, syncer *tsync.Syncer, logger *logging.Logger) *tsync.Sweeper {
	return tsync.NewSweeper(store, syncer, logger, tsync.SweepConfig{
		OlderThan: cfg.Sync.RetryAfter,
		Batch:     cfg.Sync.SweepBatch,
	})
}

func provideOrchestrator(
	store repository.Store,
	p provider.ExternalProvider,
	dispatcher *tsync.Dispatcher,
	enricher enrich.ProfileEnricher,
	c cache.Cache,
	logger *logging.Logger,
) (*orchestrator.Orchestrator, error) {
	reconciler, err := reconcile.NewWithDeps(store, p, logger)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewWithDeps(store, reconciler, dispatcher, p, enricher, c, logger)
}

// provideSheetsWriter leaves the writer unconfigured when no credentials are set;
// pipeline_export then fails with a provider error instead of the server refusing to start
func provideSheetsWriter(ctx context.Context, cfg config.Config, logger *logging.Logger) tools.SheetWriter {
	if cfg.SheetsCredsPath == "" {
		return sheetsWriter{}
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.SheetsCredsPath})
	if err != nil {
		logger.Warn("failed to initialize Google Sheets client", "err", err)
		return sheetsWriter{}
	}
	logger.Info("Google Sheets client initialized")
	return sheetsWriter{client: client}
}

func newResources(
	store repository.Store,
	orch *orchestrator.Orchestrator,
	dispatcher *tsync.Dispatcher,
	sweeper *tsync.Sweeper,
	collector *metrics.Collector,
	sheets tools.SheetWriter,
) *Resources {
	return &Resources{
		Store:        store,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
		Sweeper:      sweeper,
		Collector:    collector,
		Sheets:       sheets,
	}
}
