// Package orchestrator is the surface the outer tier calls. Every operation writes
// locally, invalidates the affected cache entries and hands external work to the
// background dispatcher. Results come back as domain.Result envelopes.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/enrich"
	"github.com/honeycarbs/talentsync/internal/provider"
	"github.com/honeycarbs/talentsync/internal/reconcile"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// Background task names
const (
	TaskEnrichTalent   = "enrich_talent"
	TaskAttachExternal = "attach_external"
	TaskDeleteExternal = "delete_external_talent"
)

// Dispatcher schedules background work without blocking the caller
type Dispatcher interface {
	TriggerBackgroundSync(talentID, jobID string)
	Go(name string, fn func(ctx context.Context) error) bool
}

// Option configures Orchestrator
type Option func(*config)

type config struct {
	store      repository.Store
	reconciler *reconcile.Reconciler
	dispatcher Dispatcher
	provider   provider.ExternalProvider
	enricher   enrich.ProfileEnricher
	cache      cache.Cache
	log        *logging.Logger
}

// WithStore sets the record store
func WithStore(store repository.Store) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithReconciler sets the reconciler; by default one is built over the store
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(c *config) {
		c.reconciler = r
	}
}

// WithDispatcher sets the background dispatcher
func WithDispatcher(d Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// WithProvider sets the external provider
func WithProvider(p provider.ExternalProvider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithEnricher sets the profile enricher
func WithEnricher(e enrich.ProfileEnricher) Option {
	return func(c *config) {
		c.enricher = e
	}
}

// WithCache sets the read cache
func WithCache(c cache.Cache) Option {
	return func(cfg *config) {
		cfg.cache = c
	}
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Orchestrator composes reconciliation, caching and background sync
type Orchestrator struct {
	store      repository.Store
	reconciler *reconcile.Reconciler
	dispatcher Dispatcher
	provider   provider.ExternalProvider
	enricher   enrich.ProfileEnricher
	cache      cache.Cache
	log        *logging.Logger
}

// New builds an Orchestrator from options
func New(opts ...Option) (*Orchestrator, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.reconciler == nil && cfg.store != nil {
		r, err := reconcile.NewWithDeps(cfg.store, cfg.provider, cfg.log)
		if err != nil {
			return nil, err
		}
		cfg.reconciler = r
	}
	return NewWithDeps(cfg.store, cfg.reconciler, cfg.dispatcher, cfg.provider, cfg.enricher, cfg.cache, cfg.log)
}

// NewWithDeps creates an Orchestrator with direct dependencies (Wire-compatible)
func NewWithDeps(
	store repository.Store,
	reconciler *reconcile.Reconciler,
	dispatcher Dispatcher,
	p provider.ExternalProvider,
	enricher enrich.ProfileEnricher,
	c cache.Cache,
	log *logging.Logger,
) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("orchestrator: store is required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("orchestrator: reconciler is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("orchestrator: dispatcher is required")
	}
	if p == nil {
		p = provider.Disabled{}
	}
	if enricher == nil {
		enricher = enrich.Noop{}
	}
	if c == nil {
		c = cache.NewMemory()
	}
	if log == nil {
		log = logging.NewNop()
	}

	return &Orchestrator{
		store:      store,
		reconciler: reconciler,
		dispatcher: dispatcher,
		provider:   p,
		enricher:   enricher,
		cache:      c,
		log:        log.With("component", "orchestrator"),
	}, nil
}

// fail logs err at a level matching its kind and wraps it into an envelope
func fail[T any](log *logging.Logger, op string, err error) domain.Result[T] {
	switch {
	case domain.IsValidation(err), domain.IsNotFound(err):
		log.Debug("operation rejected", "op", op, "error", err)
	case domain.IsProvider(err):
		log.Warn("operation failed upstream", "op", op, "error", err)
	default:
		log.Error("operation failed", "op", op, "error", err)
	}
	return domain.Respond(*new(T), err)
}

func ok[T any](data T) domain.Result[T] {
	return domain.Respond(data, nil)
}

// cached reads key through the cache, loading and storing on a miss. A load that
// races a write path's invalidation is not stored.
func cached[T any](c cache.Cache, key string, load func() (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrLoad(key, func() (any, error) {
		loaded, err := load()
		if err != nil {
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %q has type %T", key, v)
	}
	return typed, nil
}

// resolveProviderJobID maps a job id onto the id the provider knows. A local job
// that was never synced has no provider counterpart and yields "". Ids that are
// not local, or not found locally, are passed through as provider ids.
func (o *Orchestrator) resolveProviderJobID(ctx context.Context, jobID string) (string, error) {
	if jobID == "" || !domain.IsLocalID(jobID) {
		return jobID, nil
	}

	job, err := o.store.GetJob(ctx, jobID)
	switch {
	case domain.IsNotFound(err):
		return jobID, nil
	case err != nil:
		return "", fmt.Errorf("resolve job %s: %w", jobID, err)
	}

	if !job.IsSynced || job.ExternalID == "" {
		return "", nil
	}
	return job.ExternalID, nil
}
