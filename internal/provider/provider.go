// Package provider defines the contract of the external ATS.
package provider

import (
	"context"
	"errors"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// ExternalTalent is the provider's view of a created talent
type ExternalTalent struct {
	ID string
}

// ExternalApplication is the provider's view of a talent placed in a job
type ExternalApplication struct {
	ID       string
	JobID    string
	TalentID string
	Stage    string
}

// ExternalProvider is the external ATS. Every failure is a *domain.ProviderError.
type ExternalProvider interface {
	CreateTalent(ctx context.Context, payload domain.Attrs) (ExternalTalent, error)
	UpdateTalent(ctx context.Context, externalID string, payload domain.Attrs) (bool, error)
	DeleteTalent(ctx context.Context, externalID string) (bool, error)
	AddTalentToJob(ctx context.Context, jobID, externalTalentID string) (*ExternalApplication, error)
	RemoveApplication(ctx context.Context, applicationID string) (bool, error)
}

// ErrDisabled is reported when no provider is configured
var ErrDisabled = errors.New("external provider is not configured")

// Disabled fails every call; talents stay local and end in ERROR until a provider is configured
type Disabled struct{}

var _ ExternalProvider = Disabled{}

func disabled(op string) error {
	return &domain.ProviderError{Op: op, Err: ErrDisabled}
}

func (Disabled) CreateTalent(context.Context, domain.Attrs) (ExternalTalent, error) {
	return ExternalTalent{}, disabled("create_talent")
}

func (Disabled) UpdateTalent(context.Context, string, domain.Attrs) (bool, error) {
	return false, disabled("update_talent")
}

func (Disabled) DeleteTalent(context.Context, string) (bool, error) {
	return false, disabled("delete_talent")
}

func (Disabled) AddTalentToJob(context.Context, string, string) (*ExternalApplication, error) {
	return nil, disabled("add_talent_to_job")
}

func (Disabled) RemoveApplication(context.Context, string) (bool, error) {
	return false, disabled("remove_application")
}
