package orchestrator

import (
	"context"
	"strings"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/domain"
)

// Attachment is the result of AttachTalentToJob
type Attachment struct {
	Application domain.ApplicationSummary `json:"application"`
	Created     bool                      `json:"created"`
}

// AttachTalentToJob finds or creates the application of the talent in the job.
// A rejected talent is reconsidered. The provider-side placement happens in the background.
func (o *Orchestrator) AttachTalentToJob(ctx context.Context, jobID, talentID string, eval *domain.Evaluation) domain.Result[Attachment] {
	const op = "attach_talent_to_job"

	app, created, err := o.reconciler.UpsertApplication(ctx, jobID, talentID, eval)
	if err != nil {
		return fail[Attachment](o.log, op, err)
	}

	o.cache.Invalidate(cache.CandidatesKey(app.JobID))
	o.cache.InvalidateByPrefix(cache.PrefixTalents)

	if created {
		o.placeExternally(ctx, app.JobID, app.TalentID)
	}

	o.log.Info("talent attached", "job_id", app.JobID, "talent_id", app.TalentID, "application_id", app.ID, "created", created)
	return ok(Attachment{Application: app.Summary(), Created: created})
}

// placeExternally links the talent to the provider job: directly when the talent
// is already synced, through a sync run otherwise
func (o *Orchestrator) placeExternally(ctx context.Context, jobID, talentID string) {
	providerJobID, err := o.resolveProviderJobID(ctx, jobID)
	if err != nil {
		o.log.Warn("failed to resolve provider job", "job_id", jobID, "error", err)
		return
	}
	if providerJobID == "" {
		o.log.Debug("job has no provider counterpart yet", "job_id", jobID)
		return
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		o.log.Warn("failed to load talent for provider placement", "talent_id", talentID, "error", err)
		return
	}

	if talent.SyncStatus != domain.SyncSynced || talent.ExternalID == "" {
		o.dispatcher.TriggerBackgroundSync(talentID, providerJobID)
		return
	}

	externalID := talent.ExternalID
	o.dispatcher.Go(TaskAttachExternal, func(ctx context.Context) error {
		_, err := o.provider.AddTalentToJob(ctx, providerJobID, externalID)
		return err
	})
}

// Removal is the result of RemoveApplication
type Removal struct {
	ApplicationID string `json:"application_id"`
	Local         bool   `json:"local"`
}

// RemoveApplication deletes a local application or forwards an external one to the provider
func (o *Orchestrator) RemoveApplication(ctx context.Context, applicationID string) domain.Result[Removal] {
	const op = "remove_application"

	removal, err := o.reconciler.RemoveApplication(ctx, applicationID)
	if err != nil {
		return fail[Removal](o.log, op, err)
	}

	if removal.JobID != "" {
		o.cache.Invalidate(cache.CandidatesKey(removal.JobID))
	} else {
		o.cache.InvalidateByPrefix(cache.PrefixCandidates)
	}

	o.log.Info("application removed", "application_id", removal.ApplicationID, "local", removal.Local)
	return ok(Removal{ApplicationID: removal.ApplicationID, Local: removal.Local})
}

// UpdateApplicationStage moves a local application to another pipeline stage
func (o *Orchestrator) UpdateApplicationStage(ctx context.Context, applicationID, stage string) domain.Result[domain.ApplicationSummary] {
	const op = "update_application_stage"

	id := strings.TrimSpace(applicationID)
	var fields []domain.FieldError
	if id == "" {
		fields = append(fields, domain.FieldError{Field: "applicationId", Message: "application id is required"})
	} else if !domain.IsLocalID(id) {
		fields = append(fields, domain.FieldError{Field: "applicationId", Message: "only local applications can change stage here"})
	}
	if strings.TrimSpace(stage) == "" {
		fields = append(fields, domain.FieldError{Field: "stage", Message: "stage is required"})
	}
	if len(fields) > 0 {
		return fail[domain.ApplicationSummary](o.log, op, &domain.ValidationError{Fields: fields})
	}

	app, err := o.store.GetApplication(ctx, id)
	if err != nil {
		return fail[domain.ApplicationSummary](o.log, op, err)
	}
	app.Stage = domain.CanonicalStage(stage)
	if err := o.store.UpdateApplication(ctx, app); err != nil {
		return fail[domain.ApplicationSummary](o.log, op, err)
	}
	o.cache.Invalidate(cache.CandidatesKey(app.JobID))

	o.log.Info("application stage updated", "application_id", id, "stage", app.Stage)
	return ok(app.Summary())
}

// CandidatesForJob returns the job's applications with their talents and the
// distinct stages in pipeline order of first appearance
func (o *Orchestrator) CandidatesForJob(ctx context.Context, jobID string) domain.Result[domain.JobCandidates] {
	const op = "candidates_for_job"

	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return fail[domain.JobCandidates](o.log, op, domain.NewValidationError("jobId", "job id is required"))
	}

	view, err := cached(o.cache, cache.CandidatesKey(jobID), func() (domain.JobCandidates, error) {
		apps, err := o.store.ListApplicationsForJob(ctx, jobID)
		if err != nil {
			return domain.JobCandidates{}, err
		}

		view := domain.JobCandidates{
			JobID:      jobID,
			Candidates: make([]domain.Candidate, 0, len(apps)),
			Stages:     []string{},
		}
		seen := map[string]bool{}
		for _, app := range apps {
			talent, err := o.store.GetTalent(ctx, app.TalentID)
			if domain.IsNotFound(err) {
				continue
			}
			if err != nil {
				return domain.JobCandidates{}, err
			}

			view.Candidates = append(view.Candidates, domain.Candidate{
				Talent:      talent.Summary(),
				Application: app.Summary(),
			})
			if !seen[app.Stage] {
				seen[app.Stage] = true
				view.Stages = append(view.Stages, app.Stage)
			}
		}
		return view, nil
	})
	if err != nil {
		return fail[domain.JobCandidates](o.log, op, err)
	}
	return ok(view)
}
