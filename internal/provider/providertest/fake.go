// Package providertest provides an in-memory provider.ExternalProvider for tests.
package providertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/provider"
)

var _ provider.ExternalProvider = (*Fake)(nil)

// Fake records every call. Err fields make the matching call fail.
type Fake struct {
	mu sync.Mutex

	CreateErr error
	UpdateErr error
	DeleteErr error
	AttachErr error
	RemoveErr error

	// EmptyIDs makes CreateTalent succeed without an id
	EmptyIDs bool

	// CreateTalentHook runs at the start of CreateTalent, e.g. to block until signaled
	CreateTalentHook func(ctx context.Context)

	Created  []domain.Attrs
	Updated  map[string]domain.Attrs
	Deleted  []string
	Attached [][2]string
	Removed  []string

	seq int
}

// New returns an empty Fake
func New() *Fake {
	return &Fake{Updated: map[string]domain.Attrs{}}
}

func (f *Fake) CreateTalent(ctx context.Context, payload domain.Attrs) (provider.ExternalTalent, error) {
	if f.CreateTalentHook != nil {
		f.CreateTalentHook(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Created = append(f.Created, payload.Clone())
	if f.CreateErr != nil {
		return provider.ExternalTalent{}, f.CreateErr
	}
	if f.EmptyIDs {
		return provider.ExternalTalent{}, nil
	}
	f.seq++
	return provider.ExternalTalent{ID: fmt.Sprintf("ext-%d", f.seq)}, nil
}

func (f *Fake) UpdateTalent(_ context.Context, externalID string, payload domain.Attrs) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdateErr != nil {
		return false, f.UpdateErr
	}
	f.Updated[externalID] = payload.Clone()
	return true, nil
}

func (f *Fake) DeleteTalent(_ context.Context, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return false, f.DeleteErr
	}
	f.Deleted = append(f.Deleted, externalID)
	return true, nil
}

func (f *Fake) AddTalentToJob(_ context.Context, jobID, externalTalentID string) (*provider.ExternalApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AttachErr != nil {
		return nil, f.AttachErr
	}
	f.Attached = append(f.Attached, [2]string{jobID, externalTalentID})
	return &provider.ExternalApplication{
		ID:       fmt.Sprintf("app-%d", len(f.Attached)),
		JobID:    jobID,
		TalentID: externalTalentID,
		Stage:    domain.StageApplied,
	}, nil
}

func (f *Fake) RemoveApplication(_ context.Context, applicationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RemoveErr != nil {
		return false, f.RemoveErr
	}
	f.Removed = append(f.Removed, applicationID)
	return true, nil
}

// CreateCount reports how many CreateTalent calls were made
func (f *Fake) CreateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created)
}

// AttachCount reports how many successful AddTalentToJob calls were made
func (f *Fake) AttachCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Attached)
}

// DeletedIDs returns a copy of the deleted external ids
func (f *Fake) DeletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}

// UpdatedPayload returns the last update payload for externalID
func (f *Fake) UpdatedPayload(externalID string) (domain.Attrs, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Updated[externalID]
	return p, ok
}

// LastCreated returns the most recent CreateTalent payload
func (f *Fake) LastCreated() domain.Attrs {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}
