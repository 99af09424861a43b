// Package reconcile decides whether inbound records match existing ones and how to merge them.
//
// It writes to the Record Store only. Cache invalidation and sync dispatch are the
// caller's responsibility.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/provider"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// Option configures Reconciler
type Option func(*config)

type config struct {
	store    repository.Store
	provider provider.ExternalProvider
	log      *logging.Logger
}

// WithStore sets the record store
func WithStore(store repository.Store) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithProvider sets the external provider used for non-local application ids
func WithProvider(p provider.ExternalProvider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Reconciler implements find-or-create and merge over the record store
type Reconciler struct {
	store    repository.Store
	provider provider.ExternalProvider
	log      *logging.Logger
}

// New builds a Reconciler from options
func New(opts ...Option) (*Reconciler, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithDeps(cfg.store, cfg.provider, cfg.log)
}

// NewWithDeps creates a Reconciler with direct dependencies (Wire-compatible)
func NewWithDeps(store repository.Store, p provider.ExternalProvider, log *logging.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, fmt.Errorf("reconcile: store is required")
	}
	if p == nil {
		p = provider.Disabled{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Reconciler{
		store:    store,
		provider: p,
		log:      log.With("component", "reconcile"),
	}, nil
}

// UpsertTalent looks the talent up by handle and merges into it, or creates it PENDING.
// The returned flag reports whether a new talent was created.
func (r *Reconciler) UpsertTalent(ctx context.Context, attrs domain.Attrs) (domain.Talent, bool, error) {
	in, err := parseTalentInput(attrs)
	if err != nil {
		return domain.Talent{}, false, err
	}

	existing, err := r.store.FindTalentByHandle(ctx, in.handle)
	switch {
	case err == nil:
		merged, err := r.merge(ctx, existing, in)
		return merged, false, err
	case !domain.IsNotFound(err):
		return domain.Talent{}, false, fmt.Errorf("lookup talent %q: %w", in.handle, err)
	}

	t, err := in.newTalent()
	if err != nil {
		return domain.Talent{}, false, err
	}

	err = r.store.CreateTalent(ctx, t)
	if err == nil {
		r.log.Debug("talent created", "talent_id", t.ID, "handle", t.Handle)
		return t, true, nil
	}
	if !domain.IsConflict(err) {
		return domain.Talent{}, false, fmt.Errorf("create talent %q: %w", in.handle, err)
	}

	// lost a create race on the handle: merge into the winner
	r.log.Debug("talent create conflicted, merging", "handle", in.handle)
	existing, err = r.store.FindTalentByHandle(ctx, in.handle)
	if err != nil {
		return domain.Talent{}, false, fmt.Errorf("lookup talent %q after conflict: %w", in.handle, err)
	}
	merged, err := r.merge(ctx, existing, in)
	return merged, false, err
}

func (r *Reconciler) merge(ctx context.Context, existing domain.Talent, in talentInput) (domain.Talent, error) {
	merged := in.mergeInto(existing)
	if err := r.store.UpdateTalent(ctx, merged); err != nil {
		return domain.Talent{}, fmt.Errorf("update talent %s: %w", existing.ID, err)
	}
	return merged, nil
}

// UpsertApplication finds or creates the application of (jobID, talentID).
//
// An existing application only takes the supplied evaluation; its stage is untouched.
// A REJECTED talent is moved back to ACTIVE in the same transaction.
func (r *Reconciler) UpsertApplication(ctx context.Context, jobID, talentID string, eval *domain.Evaluation) (domain.Application, bool, error) {
	jobID = strings.TrimSpace(jobID)
	talentID = strings.TrimSpace(talentID)

	var fields []domain.FieldError
	if jobID == "" {
		fields = append(fields, domain.FieldError{Field: "jobId", Message: "job id is required"})
	}
	if talentID == "" {
		fields = append(fields, domain.FieldError{Field: "talentId", Message: "talent id is required"})
	}
	if len(fields) > 0 {
		return domain.Application{}, false, &domain.ValidationError{Fields: fields}
	}

	app, created, err := r.upsertApplicationTx(ctx, jobID, talentID, eval)
	if domain.IsConflict(err) {
		// a concurrent attach created the pair first; the retry finds it
		app, created, err = r.upsertApplicationTx(ctx, jobID, talentID, eval)
	}
	return app, created, err
}

func (r *Reconciler) upsertApplicationTx(ctx context.Context, jobID, talentID string, eval *domain.Evaluation) (domain.Application, bool, error) {
	var (
		app     domain.Application
		created bool
	)

	err := r.store.WithinTx(ctx, func(tx repository.Store) error {
		talent, err := tx.GetTalent(ctx, talentID)
		if err != nil {
			return err
		}

		if talent.Status == domain.TalentRejected {
			if err := tx.UpdateTalent(ctx, reconsider(talent)); err != nil {
				return fmt.Errorf("reconsider talent %s: %w", talentID, err)
			}
			r.log.Info("rejected talent reconsidered", "talent_id", talentID, "job_id", jobID)
		}

		existing, err := tx.FindApplication(ctx, jobID, talentID)
		switch {
		case err == nil:
			app = existing
			if eval.Empty() {
				return nil
			}
			applyEvaluation(&app, eval)
			return tx.UpdateApplication(ctx, app)
		case !domain.IsNotFound(err):
			return err
		}

		app = domain.Application{
			ID:       domain.NewID(),
			JobID:    jobID,
			TalentID: talentID,
			Stage:    domain.StageApplied,
			Status:   domain.ApplicationActive,
		}
		applyEvaluation(&app, eval)
		if err := tx.CreateApplication(ctx, app); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return domain.Application{}, false, err
	}
	return app, created, nil
}

// reconsider moves a rejected talent back to ACTIVE; the data bag's status mirror follows when present
func reconsider(t domain.Talent) domain.Talent {
	t.Status = domain.TalentActive
	if _, ok := t.Data["status"]; ok {
		t.Data = t.Data.Clone()
		t.Data["status"] = string(domain.TalentActive)
	}
	return t
}

func applyEvaluation(app *domain.Application, eval *domain.Evaluation) {
	if eval.Empty() {
		return
	}
	if eval.MatchScore != nil {
		app.MatchScore = eval.MatchScore
	}
	if len(eval.AIReview) > 0 {
		app.AIReview = eval.AIReview.Clone()
	}
}

// Removal describes a removed application
type Removal struct {
	ApplicationID string
	// JobID is known only for local applications
	JobID string
	Local bool
}

// RemoveApplication deletes a local application from the store, or forwards any
// other id shape to the external provider.
func (r *Reconciler) RemoveApplication(ctx context.Context, applicationID string) (Removal, error) {
	id := strings.TrimSpace(applicationID)
	if id == "" {
		return Removal{}, domain.NewValidationError("applicationId", "application id is required")
	}

	if domain.IsLocalID(id) {
		var jobID string
		err := r.store.WithinTx(ctx, func(tx repository.Store) error {
			app, err := tx.GetApplication(ctx, id)
			if err != nil {
				return err
			}
			jobID = app.JobID
			return tx.DeleteApplication(ctx, id)
		})
		if err != nil {
			return Removal{}, err
		}
		return Removal{ApplicationID: id, JobID: jobID, Local: true}, nil
	}

	ok, err := r.provider.RemoveApplication(ctx, id)
	if err != nil {
		var perr *domain.ProviderError
		if !errors.As(err, &perr) {
			err = &domain.ProviderError{Op: "remove_application", Err: err}
		}
		return Removal{}, err
	}
	if !ok {
		return Removal{}, &domain.ProviderError{Op: "remove_application", Err: errors.New("provider declined the removal")}
	}
	return Removal{ApplicationID: id}, nil
}
