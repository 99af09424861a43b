package orchestrator

import (
	"context"
	"strings"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// AppliedJob is one pipeline a talent takes part in
type AppliedJob struct {
	ApplicationID string   `json:"application_id"`
	JobID         string   `json:"job_id"`
	JobName       string   `json:"job_name,omitempty"`
	Stage         string   `json:"stage"`
	Status        string   `json:"status"`
	MatchScore    *float64 `json:"match_score,omitempty"`
}

// TalentDetail is the full profile of one talent
type TalentDetail struct {
	Talent      domain.TalentSummary `json:"talent"`
	Data        domain.Attrs         `json:"data,omitempty"`
	AppliedJobs []AppliedJob         `json:"applied_jobs"`
}

// CandidateDetail is one talent seen from one job pipeline
type CandidateDetail struct {
	JobID       string                    `json:"job_id"`
	JobName     string                    `json:"job_name,omitempty"`
	Talent      domain.TalentSummary      `json:"talent"`
	Data        domain.Attrs              `json:"data,omitempty"`
	Application domain.ApplicationSummary `json:"application"`
}

// GetTalent returns a talent with its data bag and every job it is attached to.
// Jobs that are not stored locally are listed without a name.
func (o *Orchestrator) GetTalent(ctx context.Context, talentID string) domain.Result[TalentDetail] {
	const op = "get_talent"

	talentID = strings.TrimSpace(talentID)
	if talentID == "" {
		return fail[TalentDetail](o.log, op, domain.NewValidationError("talentId", "talent id is required"))
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return fail[TalentDetail](o.log, op, err)
	}

	apps, err := o.store.ListApplicationsForTalent(ctx, talentID)
	if err != nil {
		return fail[TalentDetail](o.log, op, err)
	}

	out := TalentDetail{
		Talent:      talent.Summary(),
		Data:        talent.Data,
		AppliedJobs: make([]AppliedJob, 0, len(apps)),
	}
	for _, app := range apps {
		name, err := o.jobName(ctx, app.JobID)
		if err != nil {
			return fail[TalentDetail](o.log, op, err)
		}
		out.AppliedJobs = append(out.AppliedJobs, AppliedJob{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			JobName:       name,
			Stage:         app.Stage,
			Status:        app.Status,
			MatchScore:    app.MatchScore,
		})
	}
	return ok(out)
}

// CandidateForJob returns a talent together with its application to one job
func (o *Orchestrator) CandidateForJob(ctx context.Context, jobID, talentID string) domain.Result[CandidateDetail] {
	const op = "candidate_for_job"

	jobID, talentID = strings.TrimSpace(jobID), strings.TrimSpace(talentID)
	var fields []domain.FieldError
	if jobID == "" {
		fields = append(fields, domain.FieldError{Field: "jobId", Message: "job id is required"})
	}
	if talentID == "" {
		fields = append(fields, domain.FieldError{Field: "talentId", Message: "talent id is required"})
	}
	if len(fields) > 0 {
		return fail[CandidateDetail](o.log, op, &domain.ValidationError{Fields: fields})
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return fail[CandidateDetail](o.log, op, err)
	}
	app, err := o.store.FindApplication(ctx, jobID, talentID)
	if err != nil {
		return fail[CandidateDetail](o.log, op, err)
	}
	name, err := o.jobName(ctx, jobID)
	if err != nil {
		return fail[CandidateDetail](o.log, op, err)
	}

	return ok(CandidateDetail{
		JobID:       jobID,
		JobName:     name,
		Talent:      talent.Summary(),
		Data:        talent.Data,
		Application: app.Summary(),
	})
}

// EditTalent updates a stored talent by id. The handle is fixed; any handle in
// attrs is ignored.
func (o *Orchestrator) EditTalent(ctx context.Context, talentID string, attrs domain.Attrs) domain.Result[TalentUpsert] {
	const op = "edit_talent"

	talentID = strings.TrimSpace(talentID)
	if talentID == "" {
		return fail[TalentUpsert](o.log, op, domain.NewValidationError("talentId", "talent id is required"))
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return fail[TalentUpsert](o.log, op, err)
	}

	edit := attrs.Clone()
	edit["handle"] = talent.Handle
	return o.CreateOrUpdateTalent(ctx, edit, "")
}

func (o *Orchestrator) jobName(ctx context.Context, jobID string) (string, error) {
	if !domain.IsLocalID(jobID) {
		return "", nil
	}
	job, err := o.store.GetJob(ctx, jobID)
	switch {
	case domain.IsNotFound(err):
		return "", nil
	case err != nil:
		return "", err
	}
	return job.Title, nil
}
