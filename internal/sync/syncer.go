// Package sync propagates locally stored talents to the external ATS.
//
// Syncer runs one attempt for one talent and always leaves it SYNCED or ERROR.
// Dispatcher runs attempts in the background, detached from the caller. Sweeper
// re-runs attempts for talents that were left behind.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/provider"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// Outcome is the result of one sync attempt
type Outcome string

const (
	OutcomeSynced Outcome = "synced"
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the talent was deleted before or during the attempt
	OutcomeSkipped Outcome = "skipped"
)

// Runner runs one sync attempt
type Runner interface {
	SyncTalent(ctx context.Context, talentID, jobID string) (Outcome, error)
}

var _ Runner = (*Syncer)(nil)

// errNoExternalID is returned when the provider accepts a talent but reports no id
var errNoExternalID = errors.New("provider returned no talent id")

// failureWriteTimeout bounds the ERROR bookkeeping after a failed attempt
const failureWriteTimeout = 5 * time.Second

// Syncer pushes one talent to the provider and records the outcome in the store
type Syncer struct {
	store    repository.Store
	provider provider.ExternalProvider
	log      *logging.Logger
	rec      Recorder
}

// NewSyncer creates a Syncer. A nil provider fails every attempt.
func NewSyncer(store repository.Store, p provider.ExternalProvider, log *logging.Logger, rec Recorder) (*Syncer, error) {
	if store == nil {
		return nil, fmt.Errorf("sync: store is required")
	}
	if p == nil {
		p = provider.Disabled{}
	}
	if log == nil {
		log = logging.NewNop()
	}
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Syncer{
		store:    store,
		provider: p,
		log:      log.With("component", "syncer"),
		rec:      rec,
	}, nil
}

// SyncTalent re-reads the talent, creates or updates it in the provider and marks
// the result. When jobID is set the synced talent is also placed in that provider job;
// a failure there is logged and does not affect the sync state.
//
// The returned error is the cause of an OutcomeFailed attempt.
func (s *Syncer) SyncTalent(ctx context.Context, talentID, jobID string) (Outcome, error) {
	start := time.Now()
	outcome, err := s.syncTalent(ctx, talentID, jobID)
	s.rec.SyncCompleted(outcome, time.Since(start))
	return outcome, err
}

func (s *Syncer) syncTalent(ctx context.Context, talentID, jobID string) (Outcome, error) {
	log := s.log.With("talent_id", talentID)

	talent, err := s.store.GetTalent(ctx, talentID)
	if domain.IsNotFound(err) {
		log.Info("talent deleted before sync, skipping")
		return OutcomeSkipped, nil
	}
	if err != nil {
		return s.fail(ctx, log, talentID, fmt.Errorf("load talent: %w", err))
	}

	externalID, err := s.push(ctx, talent)
	if err != nil {
		return s.fail(ctx, log, talentID, err)
	}

	if err := s.store.MarkTalentSynced(ctx, talentID, externalID); err != nil {
		if domain.IsNotFound(err) {
			log.Info("talent deleted during sync", "external_id", externalID)
			return OutcomeSkipped, nil
		}
		return s.fail(ctx, log, talentID, fmt.Errorf("mark synced: %w", err))
	}
	log.Debug("talent synced", "external_id", externalID)

	if jobID != "" {
		if _, err := s.provider.AddTalentToJob(ctx, jobID, externalID); err != nil {
			log.Warn("failed to add talent to provider job", "job_id", jobID, "external_id", externalID, "error", err)
		}
	}
	return OutcomeSynced, nil
}

// push creates the talent upstream, or updates it when it already has an external id
func (s *Syncer) push(ctx context.Context, talent domain.Talent) (string, error) {
	payload := Payload(talent)

	if talent.ExternalID == "" {
		created, err := s.provider.CreateTalent(ctx, payload)
		if err != nil {
			return "", err
		}
		if created.ID == "" {
			return "", &domain.ProviderError{Op: "create_talent", Err: errNoExternalID}
		}
		return created.ID, nil
	}

	ok, err := s.provider.UpdateTalent(ctx, talent.ExternalID, payload)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &domain.ProviderError{Op: "update_talent", Err: fmt.Errorf("talent %s was not updated", talent.ExternalID)}
	}
	return talent.ExternalID, nil
}

// fail records the ERROR state. The attempt's ctx may already be done (timeout or
// shutdown), so the bookkeeping runs on a detached context of its own.
func (s *Syncer) fail(ctx context.Context, log *logging.Logger, talentID string, cause error) (Outcome, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	if _, err := s.store.GetTalent(ctx, talentID); err != nil {
		if domain.IsNotFound(err) {
			log.Info("talent deleted during sync", "cause", cause)
			return OutcomeSkipped, nil
		}
		log.Error("failed to reload talent after sync failure", "error", err, "cause", cause)
		return OutcomeFailed, cause
	}

	if err := s.store.MarkTalentSyncFailed(ctx, talentID); err != nil && !domain.IsNotFound(err) {
		log.Error("failed to mark talent sync failure", "error", err, "cause", cause)
	}
	return OutcomeFailed, cause
}

// Payload builds the provider representation of a talent: the free-form data first,
// explicit fields over it.
func Payload(t domain.Talent) domain.Attrs {
	p := t.Data.Clone()

	set := func(key, value string) {
		if value != "" {
			p[key] = value
		}
	}
	set("name", t.Name)
	set("linkedinUsername", t.Handle)
	set("headline", t.Headline)
	set("email", t.Email)
	set("phone", t.Phone)
	set("location", t.Location)
	set("status", string(t.Status))
	if t.MatchScore != nil {
		p["matchScore"] = *t.MatchScore
	}
	return p
}
