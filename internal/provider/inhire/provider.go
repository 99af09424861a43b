// Package inhire adapts the InHire API client to provider.ExternalProvider.
package inhire

import (
	"context"
	"net/http"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/provider"
	"github.com/honeycarbs/talentsync/pkg/httpx"
	pkginhire "github.com/honeycarbs/talentsync/pkg/inhire"
)

// Client is the subset of the InHire API the adapter needs
type Client interface {
	CreateTalent(ctx context.Context, payload map[string]any) (pkginhire.Talent, error)
	UpdateTalent(ctx context.Context, talentID string, payload map[string]any) error
	DeleteTalent(ctx context.Context, talentID string) error
	AddTalentToJob(ctx context.Context, jobID, talentID string) (pkginhire.JobTalent, error)
	RemoveApplication(ctx context.Context, applicationID string) error
}

var (
	_ Client                   = (*pkginhire.Client)(nil)
	_ provider.ExternalProvider = (*Provider)(nil)
)

// Provider implements provider.ExternalProvider on InHire
type Provider struct {
	client Client
}

// New wraps an InHire client
func New(client Client) *Provider {
	return &Provider{client: client}
}

func providerError(op string, err error) error {
	return &domain.ProviderError{Op: op, StatusCode: httpx.StatusCode(err), Err: err}
}

// CreateTalent creates the talent in InHire and returns its external id
func (p *Provider) CreateTalent(ctx context.Context, payload domain.Attrs) (provider.ExternalTalent, error) {
	t, err := p.client.CreateTalent(ctx, payload)
	if err != nil {
		return provider.ExternalTalent{}, providerError("create_talent", err)
	}
	return provider.ExternalTalent{ID: t.ID}, nil
}

// UpdateTalent patches the talent in InHire
func (p *Provider) UpdateTalent(ctx context.Context, externalID string, payload domain.Attrs) (bool, error) {
	if err := p.client.UpdateTalent(ctx, externalID, payload); err != nil {
		return false, providerError("update_talent", err)
	}
	return true, nil
}

// DeleteTalent deletes the talent in InHire; an already missing talent reports false
func (p *Provider) DeleteTalent(ctx context.Context, externalID string) (bool, error) {
	if err := p.client.DeleteTalent(ctx, externalID); err != nil {
		if httpx.StatusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, providerError("delete_talent", err)
	}
	return true, nil
}

// AddTalentToJob places the talent into the job pipeline
func (p *Provider) AddTalentToJob(ctx context.Context, jobID, externalTalentID string) (*provider.ExternalApplication, error) {
	jt, err := p.client.AddTalentToJob(ctx, jobID, externalTalentID)
	if err != nil {
		return nil, providerError("add_talent_to_job", err)
	}
	return &provider.ExternalApplication{
		ID:       jt.ID,
		JobID:    jt.JobID,
		TalentID: jt.TalentID,
		Stage:    jt.Stage,
	}, nil
}

// RemoveApplication removes an InHire application
func (p *Provider) RemoveApplication(ctx context.Context, applicationID string) (bool, error) {
	if err := p.client.RemoveApplication(ctx, applicationID); err != nil {
		return false, providerError("remove_application", err)
	}
	return true, nil
}
