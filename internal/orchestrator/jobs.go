package orchestrator

import (
	"context"
	"strings"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/domain"
)

// StatusAll lists jobs regardless of status
const StatusAll = "all"

// CreateJob stores a new local job as OPEN
func (o *Orchestrator) CreateJob(ctx context.Context, title, description string) domain.Result[domain.JobSummary] {
	const op = "create_job"

	title = strings.TrimSpace(title)
	if title == "" {
		return fail[domain.JobSummary](o.log, op, domain.NewValidationError("name", "job name is required"))
	}

	job := domain.Job{
		ID:          domain.NewID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.JobOpen,
	}
	if err := o.store.CreateJob(ctx, job); err != nil {
		return fail[domain.JobSummary](o.log, op, err)
	}
	o.cache.InvalidateByPrefix(cache.PrefixJobs)

	o.log.Info("job created", "job_id", job.ID, "title", job.Title)
	return ok(job.Summary())
}

// ListJobs lists local jobs with the given status, newest first. An empty status
// means open jobs; StatusAll lists every job.
func (o *Orchestrator) ListJobs(ctx context.Context, status string) domain.Result[[]domain.JobSummary] {
	const op = "list_jobs"

	var filter domain.JobStatus
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "":
		filter = domain.JobOpen
	case StatusAll:
	default:
		parsed, valid := domain.ParseJobStatus(s)
		if !valid {
			return fail[[]domain.JobSummary](o.log, op, domain.NewValidationError("status", "unknown job status "+status))
		}
		filter = parsed
	}

	key := cache.PrefixJobs + strings.ToLower(string(filter))
	if filter == "" {
		key = cache.PrefixJobs + StatusAll
	}

	jobs, err := cached(o.cache, key, func() ([]domain.JobSummary, error) {
		jobs, err := o.store.ListJobs(ctx, filter)
		if err != nil {
			return nil, err
		}
		out := make([]domain.JobSummary, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, j.Summary())
		}
		return out, nil
	})
	if err != nil {
		return fail[[]domain.JobSummary](o.log, op, err)
	}
	return ok(jobs)
}
