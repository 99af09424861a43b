package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/provider/providertest"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/internal/storage/storetest"
)

func seedTalent(t *testing.T, store repository.Store, handle string) domain.Talent {
	t.Helper()

	score := 0.8
	talent := domain.Talent{
		ID:         domain.NewID(),
		Handle:     handle,
		Name:       "Talent " + handle,
		Email:      handle + "@example.com",
		Data:       domain.Attrs{"skills": []any{"go"}, "name": "stale name"},
		Status:     domain.TalentNew,
		SyncStatus: domain.SyncPending,
		MatchScore: &score,
	}
	require.NoError(t, store.CreateTalent(context.Background(), talent))
	return talent
}

func newSyncer(t *testing.T) (*Syncer, repository.Store, *providertest.Fake) {
	t.Helper()

	store := storetest.NewSQLite(t)
	fake := providertest.New()
	s, err := NewSyncer(store, fake, nil, nil)
	require.NoError(t, err)
	return s, store, fake
}

func TestSyncTalentCreatesAndMarksSynced(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	talent := seedTalent(t, store, "jdoe")

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, outcome)

	stored, err := store.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, stored.SyncStatus)
	assert.Equal(t, "ext-1", stored.ExternalID)

	payload := fake.LastCreated()
	assert.Equal(t, "Talent jdoe", payload["name"], "explicit fields win over the data bag")
	assert.Equal(t, "jdoe", payload["linkedinUsername"])
	assert.Equal(t, 0.8, payload["matchScore"])
	assert.NotNil(t, payload["skills"])
	assert.Zero(t, fake.AttachCount())
}

func TestSyncTalentUpdatesWhenAlreadySynced(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	talent := seedTalent(t, store, "again")

	_, err := s.SyncTalent(ctx, talent.ID, "")
	require.NoError(t, err)

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, outcome)

	assert.Equal(t, 1, fake.CreateCount(), "a second trigger must not create a duplicate")
	_, updated := fake.UpdatedPayload("ext-1")
	assert.True(t, updated)
}

func TestSyncTalentAttachesToJob(t *testing.T) {
	s, store, fake := newSyncer(t)
	talent := seedTalent(t, store, "attach")

	outcome, err := s.SyncTalent(context.Background(), talent.ID, "J-42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, outcome)
	require.Equal(t, 1, fake.AttachCount())
	assert.Equal(t, [2]string{"J-42", "ext-1"}, fake.Attached[0])
}

func TestSyncTalentAttachFailureKeepsSynced(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	fake.AttachErr = &domain.ProviderError{Op: "add_talent_to_job", StatusCode: 404, Err: errors.New("no such job")}
	talent := seedTalent(t, store, "attachfail")

	outcome, err := s.SyncTalent(ctx, talent.ID, "J-404")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, outcome)

	stored, err := store.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, stored.SyncStatus)
}

func TestSyncTalentProviderFailureMarksError(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	fake.CreateErr = &domain.ProviderError{Op: "create_talent", StatusCode: 503, Err: errors.New("unavailable")}
	talent := seedTalent(t, store, "down")

	outcome, err := s.SyncTalent(ctx, talent.ID, "J1")
	require.Error(t, err)
	assert.True(t, domain.IsProvider(err))
	assert.Equal(t, OutcomeFailed, outcome)

	stored, err := store.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus)
	assert.Empty(t, stored.ExternalID)
	assert.Zero(t, fake.AttachCount())
}

func TestSyncTalentEmptyExternalIDMarksError(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	fake.EmptyIDs = true
	talent := seedTalent(t, store, "noid")

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.ErrorIs(t, err, errNoExternalID)
	assert.Equal(t, OutcomeFailed, outcome)

	stored, err := store.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus)
}

func TestSyncTalentFailedResyncMovesSyncedToError(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	talent := seedTalent(t, store, "flaky")

	_, err := s.SyncTalent(ctx, talent.ID, "")
	require.NoError(t, err)

	fake.UpdateErr = &domain.ProviderError{Op: "update_talent", StatusCode: 500, Err: errors.New("boom")}
	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	stored, err := store.GetTalent(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus)
	assert.Equal(t, "ext-1", stored.ExternalID, "external id is never cleared")
}

func TestSyncTalentDeletedTalentIsSkipped(t *testing.T) {
	s, _, fake := newSyncer(t)

	outcome, err := s.SyncTalent(context.Background(), domain.NewID(), "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Zero(t, fake.CreateCount())
}

func TestSyncTalentDeletedDuringAttempt(t *testing.T) {
	s, store, fake := newSyncer(t)
	ctx := context.Background()
	talent := seedTalent(t, store, "vanish")

	fake.CreateTalentHook = func(context.Context) {
		assert.NoError(t, store.DeleteTalent(ctx, talent.ID))
	}

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	_, err = store.GetTalent(ctx, talent.ID)
	assert.True(t, domain.IsNotFound(err), "the talent is not resurrected")
}

func TestPayloadSkipsEmptyFields(t *testing.T) {
	p := Payload(domain.Talent{
		Handle: "x",
		Name:   "X",
		Status: domain.TalentActive,
		Data:   domain.Attrs{"email": "kept@example.com"},
	})

	assert.Equal(t, "kept@example.com", p["email"])
	assert.Equal(t, "ACTIVE", p["status"])
	_, hasPhone := p["phone"]
	assert.False(t, hasPhone)
	_, hasScore := p["matchScore"]
	assert.False(t, hasScore)
}

func TestNewSyncerRequiresStore(t *testing.T) {
	_, err := NewSyncer(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestSyncTalentTimedOutAttemptMarksError(t *testing.T) {
	s, store, fake := newSyncer(t)
	talent := seedTalent(t, store, "timeout")

	fake.CreateErr = context.DeadlineExceeded
	fake.CreateTalentHook = func(ctx context.Context) {
		<-ctx.Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, OutcomeFailed, outcome)

	stored, err := store.GetTalent(context.Background(), talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus, "an expired attempt must not stay PENDING")
}

func TestSyncTalentCanceledAttemptMarksError(t *testing.T) {
	s, store, fake := newSyncer(t)
	talent := seedTalent(t, store, "canceled")

	ctx, cancel := context.WithCancel(context.Background())
	fake.CreateErr = context.Canceled
	fake.CreateTalentHook = func(context.Context) {
		cancel()
	}

	outcome, err := s.SyncTalent(ctx, talent.ID, "")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	stored, err := store.GetTalent(context.Background(), talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus)
}
