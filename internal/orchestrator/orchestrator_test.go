package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/enrich"
	"github.com/honeycarbs/talentsync/internal/provider/providertest"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/internal/storage/storetest"
	tsync "github.com/honeycarbs/talentsync/internal/sync"
)

type stubEnricher struct {
	res enrich.Result
	err error
}

func (s stubEnricher) Enrich(context.Context, domain.Attrs) (enrich.Result, error) {
	return s.res, s.err
}

type harness struct {
	orch       *Orchestrator
	store      repository.Store
	fake       *providertest.Fake
	cache      *cache.Memory
	dispatcher *tsync.Dispatcher
}

// drain waits for every background task started so far
func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.dispatcher.Shutdown(ctx))
}

func newHarness(t *testing.T, enricher enrich.ProfileEnricher) *harness {
	t.Helper()
	return newHarnessWithStore(t, enricher, nil)
}

// newHarnessWithStore lets a test wrap the record store the orchestrator sees
func newHarnessWithStore(t *testing.T, enricher enrich.ProfileEnricher, wrap func(repository.Store) repository.Store) *harness {
	t.Helper()

	var store repository.Store = storetest.NewSQLite(t)
	if wrap != nil {
		store = wrap(store)
	}
	fake := providertest.New()
	syncer, err := tsync.NewSyncer(store, fake, nil, nil)
	require.NoError(t, err)
	dispatcher := tsync.NewDispatcher(syncer, nil)
	t.Cleanup(func() { _ = dispatcher.Shutdown(context.Background()) })

	mem := cache.NewMemory()
	orch, err := New(
		WithStore(store),
		WithProvider(fake),
		WithDispatcher(dispatcher),
		WithEnricher(enricher),
		WithCache(mem),
	)
	require.NoError(t, err)

	return &harness{orch: orch, store: store, fake: fake, cache: mem, dispatcher: dispatcher}
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = New(WithStore(storetest.NewSQLite(t)))
	assert.Error(t, err, "dispatcher is required")
}

func TestCreateOrUpdateTalentSyncsInBackground(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "John Doe", "handle": "jdoe"}, "")
	require.True(t, res.Success, "%+v", res.Error)
	assert.True(t, res.Data.Created)
	assert.Equal(t, "PENDING", res.Data.Talent.SyncStatus)
	assert.Nil(t, res.Data.Application)

	h.drain(t)

	stored, err := h.store.GetTalent(ctx, res.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, stored.SyncStatus)
	assert.Equal(t, "ext-1", stored.ExternalID)
}

func TestCreateOrUpdateTalentMergesAndResyncs(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "John Doe", "handle": "jdoe", "email": "a@example.com"}, "")
	require.True(t, first.Success)

	second := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"handle": "jdoe", "email": "b@example.com"}, "")
	require.True(t, second.Success)
	assert.False(t, second.Data.Created)
	assert.Equal(t, first.Data.Talent.ID, second.Data.Talent.ID)
	assert.Equal(t, "John Doe", second.Data.Talent.Name)
	assert.Equal(t, "b@example.com", second.Data.Talent.Email)

	h.drain(t)
	stored, err := h.store.GetTalent(ctx, first.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, stored.SyncStatus)
	assert.LessOrEqual(t, h.fake.CreateCount(), 2)
}

func TestCreateOrUpdateTalentValidationEnvelope(t *testing.T) {
	h := newHarness(t, nil)

	res := h.orch.CreateOrUpdateTalent(context.Background(), domain.Attrs{"name": "Nobody"}, "")
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, domain.KindValidation, res.Error.Kind)
	require.Len(t, res.Error.Fields, 1)
	assert.Equal(t, "handle", res.Error.Fields[0].Field)

	h.drain(t)
	assert.Zero(t, h.fake.CreateCount())
}

func TestCreateOrUpdateTalentWithExternalJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Ada", "handle": "ada"}, "job-77")
	require.True(t, res.Success)
	require.NotNil(t, res.Data.Application)
	assert.Equal(t, "applied", res.Data.Application.Stage)
	assert.Equal(t, "job-77", res.Data.Application.JobID)

	h.drain(t)
	require.Equal(t, 1, h.fake.AttachCount())
	assert.Equal(t, [2]string{"job-77", "ext-1"}, h.fake.Attached[0])
}

func TestCreateOrUpdateTalentWithUnsyncedLocalJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	job := h.orch.CreateJob(ctx, "Go Engineer", "")
	require.True(t, job.Success)

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Ada", "handle": "ada"}, job.Data.ID)
	require.True(t, res.Success)

	h.drain(t)
	assert.Equal(t, 1, h.fake.CreateCount())
	assert.Zero(t, h.fake.AttachCount(), "a local job unknown to the provider is not linked upstream")
}

func TestCreateOrUpdateTalentEnrichesNewTalents(t *testing.T) {
	h := newHarness(t, stubEnricher{res: enrich.Result{
		Cleaned: domain.Attrs{"name": "Jane Roe", "headline": ""},
		Extras:  domain.Attrs{"seniority": "senior"},
	}})
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "jane roe (she/her)", "handle": "jroe", "headline": "Engineer"}, "")
	require.True(t, res.Success)
	h.drain(t)

	stored, err := h.store.GetTalent(ctx, res.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", stored.Name)
	assert.Equal(t, "Engineer", stored.Headline, "empty cleaned values never overwrite")
	assert.Equal(t, "senior", stored.Data.String("seniority"))
	assert.Equal(t, domain.SyncSynced, stored.SyncStatus)
}

func TestEnrichmentEmptyExtrasKeepStoredData(t *testing.T) {
	h := newHarness(t, stubEnricher{res: enrich.Result{
		Extras: domain.Attrs{"summary": "", "skills": []any{}, "seniority": "staff"},
	}})
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{
		"name": "Kim", "handle": "kim", "summary": "senior", "skills": []any{"go"},
	}, "")
	require.True(t, res.Success)
	h.drain(t)

	stored, err := h.store.GetTalent(ctx, res.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, "senior", stored.Data.String("summary"))
	assert.Equal(t, []any{"go"}, stored.Data["skills"])
	assert.Equal(t, "staff", stored.Data.String("seniority"))
}

func TestEnrichmentFailureIsBestEffort(t *testing.T) {
	h := newHarness(t, stubEnricher{err: errors.New("model overloaded")})
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Sam", "handle": "sam"}, "")
	require.True(t, res.Success)
	h.drain(t)

	stored, err := h.store.GetTalent(ctx, res.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", stored.Name)
}

func TestCreateOrUpdateTalentProviderDownStillSucceeds(t *testing.T) {
	h := newHarness(t, nil)
	h.fake.CreateErr = &domain.ProviderError{Op: "create_talent", StatusCode: 502, Err: errors.New("bad gateway")}
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Offline", "handle": "offline"}, "")
	require.True(t, res.Success, "local write succeeded")
	h.drain(t)

	stored, err := h.store.GetTalent(ctx, res.Data.Talent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, stored.SyncStatus)
}

func TestAttachTalentToJobReconsiders(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	created := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "T One", "handle": "t1", "status": "REJECTED"}, "")
	require.True(t, created.Success)
	talentID := created.Data.Talent.ID

	res := h.orch.AttachTalentToJob(ctx, "J1", talentID, nil)
	require.True(t, res.Success)
	assert.True(t, res.Data.Created)
	assert.Equal(t, "applied", res.Data.Application.Stage)

	again := h.orch.AttachTalentToJob(ctx, "J1", talentID, nil)
	require.True(t, again.Success)
	assert.False(t, again.Data.Created)
	assert.Equal(t, res.Data.Application.ID, again.Data.Application.ID)

	stored, err := h.store.GetTalent(ctx, talentID)
	require.NoError(t, err)
	assert.Equal(t, domain.TalentActive, stored.Status)
	h.drain(t)
}

func TestAttachTalentToJobLinksSyncedTalent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	created := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Linked", "handle": "linked"}, "")
	require.True(t, created.Success)

	// wait for the first sync to land before attaching
	require.Eventually(t, func() bool {
		got, err := h.store.GetTalent(ctx, created.Data.Talent.ID)
		return err == nil && got.SyncStatus == domain.SyncSynced
	}, 5*time.Second, 10*time.Millisecond)

	res := h.orch.AttachTalentToJob(ctx, "job-9", created.Data.Talent.ID, nil)
	require.True(t, res.Success)
	h.drain(t)

	require.Equal(t, 1, h.fake.AttachCount())
	assert.Equal(t, [2]string{"job-9", "ext-1"}, h.fake.Attached[0])
	assert.Equal(t, 1, h.fake.CreateCount())
}

func TestAttachTalentToJobUnknownTalent(t *testing.T) {
	h := newHarness(t, nil)

	res := h.orch.AttachTalentToJob(context.Background(), "J1", domain.NewID(), nil)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindNotFound, res.Error.Kind)
}

func TestRemoveApplicationRouting(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	created := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "R", "handle": "r"}, "J1")
	require.True(t, created.Success)
	appID := created.Data.Application.ID

	local := h.orch.RemoveApplication(ctx, appID)
	require.True(t, local.Success)
	assert.True(t, local.Data.Local)

	missing := h.orch.RemoveApplication(ctx, appID)
	assert.False(t, missing.Success)
	assert.Equal(t, domain.KindNotFound, missing.Error.Kind)

	external := h.orch.RemoveApplication(ctx, "ext-8841")
	require.True(t, external.Success)
	assert.False(t, external.Data.Local)
	assert.Equal(t, []string{"ext-8841"}, h.fake.Removed)

	h.fake.RemoveErr = errors.New("gone wrong")
	failed := h.orch.RemoveApplication(ctx, "ext-1")
	assert.False(t, failed.Success)
	assert.Equal(t, domain.KindProvider, failed.Error.Kind)
	h.drain(t)
}

func TestCandidatesForJobCachedAndInvalidated(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	a := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "A", "handle": "a"}, "J1")
	require.True(t, a.Success)

	view := h.orch.CandidatesForJob(ctx, "J1")
	require.True(t, view.Success)
	require.Len(t, view.Data.Candidates, 1)
	assert.Equal(t, []string{"applied"}, view.Data.Stages)

	_, hit := h.cache.Get(cache.CandidatesKey("J1"))
	assert.True(t, hit)

	stage := h.orch.UpdateApplicationStage(ctx, a.Data.Application.ID, "Technical Interview")
	require.True(t, stage.Success)
	assert.Equal(t, "technical_interview", stage.Data.Stage)

	_, hit = h.cache.Get(cache.CandidatesKey("J1"))
	assert.False(t, hit, "stage change invalidates the pipeline view")

	b := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "B", "handle": "b"}, "J1")
	require.True(t, b.Success)

	view = h.orch.CandidatesForJob(ctx, "J1")
	require.True(t, view.Success)
	assert.Len(t, view.Data.Candidates, 2)
	assert.ElementsMatch(t, []string{"technical_interview", "applied"}, view.Data.Stages)
	h.drain(t)
}

// pausingStore holds the first armed ListApplicationsForJob after it has read
type pausingStore struct {
	repository.Store
	armed   atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func (p *pausingStore) ListApplicationsForJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	apps, err := p.Store.ListApplicationsForJob(ctx, jobID)
	if p.armed.CompareAndSwap(true, false) {
		close(p.loaded)
		<-p.release
	}
	return apps, err
}

func TestCandidatesForJobDoesNotCacheAcrossInvalidation(t *testing.T) {
	paused := &pausingStore{loaded: make(chan struct{}), release: make(chan struct{})}
	h := newHarnessWithStore(t, nil, func(inner repository.Store) repository.Store {
		paused.Store = inner
		return paused
	})
	ctx := context.Background()

	paused.armed.Store(true)
	reader := make(chan domain.Result[domain.JobCandidates], 1)
	go func() {
		reader <- h.orch.CandidatesForJob(ctx, "J1")
	}()
	<-paused.loaded

	attach := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Late", "handle": "late"}, "J1")
	require.True(t, attach.Success)

	close(paused.release)
	stale := <-reader
	require.True(t, stale.Success)
	assert.Empty(t, stale.Data.Candidates)

	view := h.orch.CandidatesForJob(ctx, "J1")
	require.True(t, view.Success)
	assert.Len(t, view.Data.Candidates, 1, "the stale read must not outlive the write's invalidation")
	h.drain(t)
}

func TestUpdateApplicationStageRejectsExternalIDs(t *testing.T) {
	h := newHarness(t, nil)

	res := h.orch.UpdateApplicationStage(context.Background(), "ext-1", "hired")
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindValidation, res.Error.Kind)

	res = h.orch.UpdateApplicationStage(context.Background(), domain.NewID(), "hired")
	assert.Equal(t, domain.KindNotFound, res.Error.Kind)
}

func TestListTalentsUsesCache(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for _, handle := range []string{"one", "two", "three"} {
		require.True(t, h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": handle, "handle": handle}, "").Success)
	}

	page := h.orch.ListTalents(ctx, domain.TalentFilter{Limit: 2})
	require.True(t, page.Success)
	assert.Len(t, page.Data.Talents, 2)
	assert.Equal(t, 3, page.Data.TotalTalents)
	assert.Equal(t, 2, page.Data.TotalPages)
	assert.Equal(t, 1, page.Data.CurrentPage)

	before := h.cache.Len()
	require.True(t, h.orch.ListTalents(ctx, domain.TalentFilter{Limit: 2}).Success)
	assert.Equal(t, before, h.cache.Len())

	require.True(t, h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "four", "handle": "four"}, "").Success)
	page = h.orch.ListTalents(ctx, domain.TalentFilter{Limit: 2})
	require.True(t, page.Success)
	assert.Equal(t, 4, page.Data.TotalTalents, "write invalidated the cached page")

	bad := h.orch.ListTalents(ctx, domain.TalentFilter{Status: "archived"})
	assert.Equal(t, domain.KindValidation, bad.Error.Kind)
	h.drain(t)
}

func TestJobs(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	bad := h.orch.CreateJob(ctx, "  ", "")
	assert.Equal(t, domain.KindValidation, bad.Error.Kind)

	created := h.orch.CreateJob(ctx, "Platform Engineer", "k8s")
	require.True(t, created.Success)
	assert.Equal(t, "open", created.Data.Status)
	assert.False(t, created.Data.IsSynced)

	open := h.orch.ListJobs(ctx, "")
	require.True(t, open.Success)
	require.Len(t, open.Data, 1)
	assert.Equal(t, "Platform Engineer", open.Data[0].Name)

	closed := h.orch.ListJobs(ctx, "closed")
	require.True(t, closed.Success)
	assert.Empty(t, closed.Data)

	require.True(t, h.orch.CreateJob(ctx, "Data Engineer", "").Success)
	all := h.orch.ListJobs(ctx, StatusAll)
	require.True(t, all.Success)
	assert.Len(t, all.Data, 2, "job creation invalidates listings")

	unknown := h.orch.ListJobs(ctx, "archived")
	assert.Equal(t, domain.KindValidation, unknown.Error.Kind)
}

func TestDeleteTalent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	created := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Gone", "handle": "gone"}, "J1")
	require.True(t, created.Success)
	require.Eventually(t, func() bool {
		got, err := h.store.GetTalent(ctx, created.Data.Talent.ID)
		return err == nil && got.ExternalID != ""
	}, 5*time.Second, 10*time.Millisecond)

	res := h.orch.DeleteTalent(ctx, created.Data.Talent.ID)
	require.True(t, res.Success)
	assert.Equal(t, "ext-1", res.Data.ExternalID)
	h.drain(t)

	assert.Equal(t, []string{"ext-1"}, h.fake.DeletedIDs())
	_, err := h.store.GetApplication(ctx, created.Data.Application.ID)
	assert.True(t, domain.IsNotFound(err), "applications cascade")

	again := h.orch.DeleteTalent(ctx, created.Data.Talent.ID)
	assert.Equal(t, domain.KindNotFound, again.Error.Kind)
}

func TestValidateProfile(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.True(t, h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "J", "handle": "jdoe"}, "").Success)

	found := h.orch.ValidateProfile(ctx, "https://www.linkedin.com/in/JDoe/?utm=x")
	require.True(t, found.Success)
	assert.True(t, found.Data.Exists)
	assert.Equal(t, "jdoe", found.Data.Handle)
	require.NotNil(t, found.Data.Talent)

	missing := h.orch.ValidateProfile(ctx, "https://linkedin.com/in/someone-else")
	require.True(t, missing.Success)
	assert.False(t, missing.Data.Exists)

	bad := h.orch.ValidateProfile(ctx, "https://example.com/profile")
	assert.Equal(t, domain.KindValidation, bad.Error.Kind)
	h.drain(t)
}

func TestResolveProviderJobID(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	synced := domain.Job{ID: domain.NewID(), Title: "Synced", Status: domain.JobOpen, IsSynced: true, ExternalID: "inhire-job-1"}
	local := domain.Job{ID: domain.NewID(), Title: "Local", Status: domain.JobOpen}
	require.NoError(t, h.store.CreateJob(ctx, synced))
	require.NoError(t, h.store.CreateJob(ctx, local))

	tests := []struct {
		name  string
		jobID string
		want  string
	}{
		{name: "empty", jobID: "", want: ""},
		{name: "external id", jobID: "inhire-42", want: "inhire-42"},
		{name: "synced local job", jobID: synced.ID, want: "inhire-job-1"},
		{name: "unsynced local job", jobID: local.ID, want: ""},
		{name: "unknown local-shaped id", jobID: "0b6c1c1e-4f7d-4a43-9d55-4f0f1b7c2a10", want: "0b6c1c1e-4f7d-4a43-9d55-4f0f1b7c2a10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.orch.resolveProviderJobID(ctx, tt.jobID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTalentListsAppliedJobs(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	job := h.orch.CreateJob(ctx, "Backend Engineer", "")
	require.True(t, job.Success)

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Lin", "handle": "lin", "skills": []any{"go"}}, job.Data.ID)
	require.True(t, res.Success)
	require.True(t, h.orch.AttachTalentToJob(ctx, "ext-job-9", res.Data.Talent.ID, nil).Success)

	detail := h.orch.GetTalent(ctx, res.Data.Talent.ID)
	require.True(t, detail.Success, "%+v", detail.Error)
	assert.Equal(t, "lin", detail.Data.Talent.Handle)
	assert.Equal(t, []any{"go"}, detail.Data.Data["skills"])
	require.Len(t, detail.Data.AppliedJobs, 2)
	byJob := map[string]AppliedJob{}
	for _, applied := range detail.Data.AppliedJobs {
		byJob[applied.JobID] = applied
	}
	assert.Equal(t, "Backend Engineer", byJob[job.Data.ID].JobName)
	assert.Equal(t, domain.StageApplied, byJob[job.Data.ID].Stage)
	require.Contains(t, byJob, "ext-job-9")
	assert.Empty(t, byJob["ext-job-9"].JobName, "jobs unknown locally have no name")

	missing := h.orch.GetTalent(ctx, domain.NewID())
	assert.Equal(t, domain.KindNotFound, missing.Error.Kind)
	assert.Equal(t, domain.KindValidation, h.orch.GetTalent(ctx, " ").Error.Kind)
	h.drain(t)
}

func TestCandidateForJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	job := h.orch.CreateJob(ctx, "SRE", "")
	require.True(t, job.Success)
	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Ray", "handle": "ray"}, "")
	require.True(t, res.Success)

	score := 91.0
	attach := h.orch.AttachTalentToJob(ctx, job.Data.ID, res.Data.Talent.ID, &domain.Evaluation{
		MatchScore: &score,
		AIReview:   domain.Attrs{"summary": "on-call veteran"},
	})
	require.True(t, attach.Success)

	detail := h.orch.CandidateForJob(ctx, job.Data.ID, res.Data.Talent.ID)
	require.True(t, detail.Success, "%+v", detail.Error)
	assert.Equal(t, "SRE", detail.Data.JobName)
	assert.Equal(t, "Ray", detail.Data.Talent.Name)
	assert.Equal(t, attach.Data.Application.ID, detail.Data.Application.ID)
	require.NotNil(t, detail.Data.Application.MatchScore)
	assert.InDelta(t, 91.0, *detail.Data.Application.MatchScore, 0.001)
	assert.Equal(t, "on-call veteran", detail.Data.Application.AIReview.String("summary"))

	notApplied := h.orch.CandidateForJob(ctx, "other-job", res.Data.Talent.ID)
	assert.Equal(t, domain.KindNotFound, notApplied.Error.Kind)

	invalid := h.orch.CandidateForJob(ctx, "", "")
	require.Equal(t, domain.KindValidation, invalid.Error.Kind)
	assert.Len(t, invalid.Error.Fields, 2)
	h.drain(t)
}

func TestEditTalentKeepsHandle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res := h.orch.CreateOrUpdateTalent(ctx, domain.Attrs{"name": "Noor", "handle": "noor", "email": "old@example.com"}, "")
	require.True(t, res.Success)

	edited := h.orch.EditTalent(ctx, res.Data.Talent.ID, domain.Attrs{"handle": "someone-else", "email": "new@example.com"})
	require.True(t, edited.Success, "%+v", edited.Error)
	assert.False(t, edited.Data.Created)
	assert.Equal(t, res.Data.Talent.ID, edited.Data.Talent.ID)
	assert.Equal(t, "noor", edited.Data.Talent.Handle)
	assert.Equal(t, "new@example.com", edited.Data.Talent.Email)
	assert.Equal(t, "Noor", edited.Data.Talent.Name)

	missing := h.orch.EditTalent(ctx, domain.NewID(), domain.Attrs{"name": "x"})
	assert.Equal(t, domain.KindNotFound, missing.Error.Kind)
	h.drain(t)
}
