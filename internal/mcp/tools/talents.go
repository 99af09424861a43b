package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/orchestrator"
)

// TalentService is the talent half of the orchestration surface
type TalentService interface {
	CreateOrUpdateTalent(ctx context.Context, attrs domain.Attrs, jobID string) domain.Result[orchestrator.TalentUpsert]
	ListTalents(ctx context.Context, filter domain.TalentFilter) domain.Result[domain.TalentPage]
	DeleteTalent(ctx context.Context, talentID string) domain.Result[orchestrator.TalentDeletion]
	ValidateProfile(ctx context.Context, profileURL string) domain.Result[orchestrator.ProfileCheck]
	GetTalent(ctx context.Context, talentID string) domain.Result[orchestrator.TalentDetail]
	EditTalent(ctx context.Context, talentID string, attrs domain.Attrs) domain.Result[orchestrator.TalentUpsert]
}

// CreateOrUpdateTalentParams defines the arguments for the create_or_update_talent tool
type CreateOrUpdateTalentParams struct {
	Talent map[string]any `json:"talent" jsonschema:"Captured profile; needs handle (or a linkedin URL) and, for new talents, name"`
	JobID  string         `json:"job_id,omitempty" jsonschema:"Job to attach the talent to"`
}

// ListTalentsParams defines the arguments for the list_talents tool
type ListTalentsParams struct {
	SearchTerm string   `json:"search_term,omitempty" jsonschema:"Matches name, headline or handle"`
	MinScore   *float64 `json:"min_score,omitempty" jsonschema:"Lowest match score to include"`
	Status     string   `json:"status,omitempty" jsonschema:"NEW, ACTIVE, REJECTED or HIRED"`
	Page       int      `json:"page,omitempty" jsonschema:"1-based page, default 1"`
	Limit      int      `json:"limit,omitempty" jsonschema:"Page size, default 10"`
}

// TalentIDParams identifies one talent
type TalentIDParams struct {
	TalentID string `json:"talent_id" jsonschema:"Local talent id"`
}

// EditTalentParams defines the arguments for the edit_talent tool
type EditTalentParams struct {
	TalentID string         `json:"talent_id" jsonschema:"Local talent id"`
	Changes  map[string]any `json:"changes" jsonschema:"Fields to change; empty values are ignored and the handle cannot change"`
}

// ValidateProfileParams defines the arguments for the validate_profile tool
type ValidateProfileParams struct {
	ProfileURL string `json:"profile_url" jsonschema:"LinkedIn profile URL or handle"`
}

type talentTools struct {
	svc TalentService
	reg *registry
}

// WithTalentTools registers the talent tools
func WithTalentTools(svc TalentService) Option {
	return func(reg *registry) {
		t := talentTools{svc: svc, reg: reg}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "create_or_update_talent",
			Description: "Store a captured profile locally and sync it to the ATS in the background",
		}, t.createOrUpdate)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_talents",
			Description: "List stored talents, best match first",
		}, t.list)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "delete_talent",
			Description: "Delete a talent with its applications; synced talents are removed from the ATS too",
		}, t.delete)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "validate_profile",
			Description: "Check whether a LinkedIn profile is already stored",
		}, t.validate)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "get_talent",
			Description: "Show a stored talent with its profile data and the jobs it is attached to",
		}, t.get)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "edit_talent",
			Description: "Edit a stored talent by id and sync the change to the ATS in the background",
		}, t.edit)
	}
}

func (t talentTools) createOrUpdate(ctx context.Context, _ *sdkmcp.CallToolRequest, params *CreateOrUpdateTalentParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "create_or_update_talent"
	if params == nil {
		return invalidParams[orchestrator.TalentUpsert](tool)
	}

	t.reg.logger.Debug("tool called", "tool", tool, "job_id", params.JobID)
	res := t.svc.CreateOrUpdateTalent(ctx, domain.Attrs(params.Talent), params.JobID)
	return envelopeResult(tool, res, func(u orchestrator.TalentUpsert) string {
		verb := "updated"
		if u.Created {
			verb = "created"
		}
		return fmt.Sprintf("talent %s %s (sync %s)", u.Talent.Handle, verb, u.Talent.SyncStatus)
	})
}

func (t talentTools) list(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ListTalentsParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "list_talents"
	if params == nil {
		params = &ListTalentsParams{}
	}

	res := t.svc.ListTalents(ctx, domain.TalentFilter{
		SearchTerm: params.SearchTerm,
		MinScore:   params.MinScore,
		Status:     domain.TalentStatus(params.Status),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	return envelopeResult(tool, res, func(p domain.TalentPage) string {
		return fmt.Sprintf("page %d/%d, %d talent(s) in total", p.CurrentPage, p.TotalPages, p.TotalTalents)
	})
}

func (t talentTools) delete(ctx context.Context, _ *sdkmcp.CallToolRequest, params *TalentIDParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "delete_talent"
	if params == nil {
		return invalidParams[orchestrator.TalentDeletion](tool)
	}

	res := t.svc.DeleteTalent(ctx, params.TalentID)
	return envelopeResult(tool, res, func(d orchestrator.TalentDeletion) string {
		return "talent " + d.TalentID + " deleted"
	})
}

func (t talentTools) validate(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ValidateProfileParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "validate_profile"
	if params == nil {
		return invalidParams[orchestrator.ProfileCheck](tool)
	}

	res := t.svc.ValidateProfile(ctx, params.ProfileURL)
	return envelopeResult(tool, res, func(c orchestrator.ProfileCheck) string {
		if c.Exists {
			return fmt.Sprintf("profile %s already stored", c.Handle)
		}
		return fmt.Sprintf("profile %s is new", c.Handle)
	})
}

func (t talentTools) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params *TalentIDParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "get_talent"
	if params == nil {
		return invalidParams[orchestrator.TalentDetail](tool)
	}

	res := t.svc.GetTalent(ctx, params.TalentID)
	return envelopeResult(tool, res, func(d orchestrator.TalentDetail) string {
		return fmt.Sprintf("talent %s (%s) in %d job(s)", d.Talent.Handle, d.Talent.Status, len(d.AppliedJobs))
	})
}

func (t talentTools) edit(ctx context.Context, _ *sdkmcp.CallToolRequest, params *EditTalentParams) (*sdkmcp.CallToolResult, any, error) {
	const tool = "edit_talent"
	if params == nil {
		return invalidParams[orchestrator.TalentUpsert](tool)
	}

	res := t.svc.EditTalent(ctx, params.TalentID, domain.Attrs(params.Changes))
	return envelopeResult(tool, res, func(u orchestrator.TalentUpsert) string {
		return fmt.Sprintf("talent %s updated (sync %s)", u.Talent.Handle, u.Talent.SyncStatus)
	})
}
