package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/orchestrator"
)

// PipelineService is the job and application half of the orchestration surface
type PipelineService interface {
	CreateJob(ctx context.Context, title, description string) domain.Result[domain.JobSummary]
	ListJobs(ctx context.Context, status string) domain.Result[[]domain.JobSummary]
	AttachTalentToJob(ctx context.Context, jobID, talentID string, eval *domain.Evaluation) domain.Result[orchestrator.Attachment]
	RemoveApplication(ctx context.Context, applicationID string) domain.Result[orchestrator.Removal]
	UpdateApplicationStage(ctx context.Context, applicationID, stage string) domain.Result[domain.ApplicationSummary]
	CandidatesForJob(ctx context.Context, jobID string) domain.Result[domain.JobCandidates]
	CandidateForJob(ctx context.Context, jobID, talentID string) domain.Result[orchestrator.CandidateDetail]
}

// CreateJobParams defines the arguments for the create_job tool
type CreateJobParams struct {
	Name        string `json:"name" jsonschema:"Job title"`
	Description string `json:"description,omitempty"`
}

// ListJobsParams defines the arguments for the list_jobs tool
type ListJobsParams struct {
	Status string `json:"status,omitempty" jsonschema:"open (default), draft, paused, closed, canceled or all"`
}

// AttachTalentParams defines the arguments for the attach_talent_to_job tool
type AttachTalentParams struct {
	JobID      string         `json:"job_id" jsonschema:"Local or ATS job id"`
	TalentID   string         `json:"talent_id" jsonschema:"Local talent id"`
	MatchScore *float64       `json:"match_score,omitempty" jsonschema:"Fresh match evaluation score"`
	AIReview   map[string]any `json:"ai_review,omitempty" jsonschema:"Structured review accompanying the score"`
}

// ApplicationIDParams identifies one application
type ApplicationIDParams struct {
	ApplicationID string `json:"application_id" jsonschema:"Local application id or ATS application id"`
}

// UpdateStageParams defines the arguments for the update_application_stage tool
type UpdateStageParams struct {
	ApplicationID string `json:"application_id" jsonschema:"Local application id"`
	Stage         string `json:"stage" jsonschema:"Pipeline stage, e.g. interview"`
}

// JobIDParams identifies one job
type JobIDParams struct {
	JobID string `json:"job_id"`
}

// CandidateParams identifies one talent within one job
type CandidateParams struct {
	JobID    string `json:"job_id"`
	TalentID string `json:"talent_id"`
}

type pipelineTools struct {
	svc PipelineService
	reg *registry
}

// WithPipelineTools registers the job and application tools
func WithPipelineTools(svc PipelineService) Option {
	return func(reg *registry) {
		t := pipelineTools{svc: svc, reg: reg}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "create_job",
			Description: "Create a local job opening",
		}, t.createJob)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_jobs",
			Description: "List local job openings by status",
		}, t.listJobs)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "attach_talent_to_job",
			Description: "Place a talent in a job pipeline; rejected talents are reconsidered",
		}, t.attach)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "remove_application",
			Description: "Remove a talent from a job pipeline",
		}, t.remove)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "update_application_stage",
			Description: "Move a local application to another pipeline stage",
		}, t.updateStage)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "candidates_for_job",
			Description: "Show the candidates of a job grouped by pipeline stage",
		}, t.candidates)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "candidate_for_job",
			Description: "Show one talent with its application, score and review in a job",
		}, t.candidate)
	}
}

func (t pipelineTools) createJob(ctx context.Context, _ *sdkmcp.CallToolRequest, params *CreateJobParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "create_job"
	if params == nil {
		return invalidParams[domain.JobSummary](tool)
	}

	res := t.svc.CreateJob(ctx, params.Name, params.Description)
	return envelopeResult(tool, res, func(j domain.JobSummary) string {
		return fmt.Sprintf("job %q created with id %s", j.Name, j.ID)
	})
}

func (t pipelineTools) listJobs(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ListJobsParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "list_jobs"
	status := ""
	if params != nil {
		status = params.Status
	}

	res := t.svc.ListJobs(ctx, status)
	return envelopeResult(tool, res, func(jobs []domain.JobSummary) string {
		return fmt.Sprintf("%d job(s)", len(jobs))
	})
}

func (t pipelineTools) attach(ctx context.Context, _ *sdkmcp.CallToolRequest, params *AttachTalentParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "attach_talent_to_job"
	if params == nil {
		return invalidParams[orchestrator.Attachment](tool)
	}

	var eval *domain.Evaluation
	if params.MatchScore != nil || len(params.AIReview) > 0 {
		eval = &domain.Evaluation{MatchScore: params.MatchScore, AIReview: domain.Attrs(params.AIReview)}
	}

	t.reg.logger.Debug("tool called", "tool", tool, "job_id", params.JobID, "talent_id", params.TalentID)
	res := t.svc.AttachTalentToJob(ctx, params.JobID, params.TalentID, eval)
	return envelopeResult(tool, res, func(a orchestrator.Attachment) string {
		if a.Created {
			return fmt.Sprintf("talent placed in job %s at stage %s", a.Application.JobID, a.Application.Stage)
		}
		return fmt.Sprintf("talent already in job %s at stage %s", a.Application.JobID, a.Application.Stage)
	})
}

func (t pipelineTools) remove(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ApplicationIDParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "remove_application"
	if params == nil {
		return invalidParams[orchestrator.Removal](tool)
	}

	res := t.svc.RemoveApplication(ctx, params.ApplicationID)
	return envelopeResult(tool, res, func(r orchestrator.Removal) string {
		return "application " + r.ApplicationID + " removed"
	})
}

func (t pipelineTools) updateStage(ctx context.Context, _ *sdkmcp.CallToolRequest, params *UpdateStageParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "update_application_stage"
	if params == nil {
		return invalidParams[domain.ApplicationSummary](tool)
	}

	res := t.svc.UpdateApplicationStage(ctx, params.ApplicationID, params.Stage)
	return envelopeResult(tool, res, func(a domain.ApplicationSummary) string {
		return fmt.Sprintf("application %s moved to %s", a.ID, a.Stage)
	})
}

func (t pipelineTools) candidates(ctx context.Context, _ *sdkmcp.CallToolRequest, params *JobIDParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "candidates_for_job"
	if params == nil {
		return invalidParams[domain.JobCandidates](tool)
	}

	res := t.svc.CandidatesForJob(ctx, params.JobID)
	return envelopeResult(tool, res, func(v domain.JobCandidates) string {
		return fmt.Sprintf("%d candidate(s) across %d stage(s)", len(v.Candidates), len(v.Stages))
	})
}

func (t pipelineTools) candidate(ctx context.Context, _ *sdkmcp.CallToolRequest, params *CandidateParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "candidate_for_job"
	if params == nil {
		return invalidParams[orchestrator.CandidateDetail](tool)
	}

	res := t.svc.CandidateForJob(ctx, params.JobID, params.TalentID)
	return envelopeResult(tool, res, func(c orchestrator.CandidateDetail) string {
		return fmt.Sprintf("talent %s is at stage %s", c.Talent.Handle, c.Application.Stage)
	})
}
