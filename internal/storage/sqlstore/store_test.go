package sqlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := Open(ctx, Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "talentsync.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func newTalent(handle string) domain.Talent {
	return domain.Talent{
		ID:     domain.NewID(),
		Handle: handle,
		Name:   "Ada " + handle,
		Data:   domain.Attrs{"linkedin": "https://linkedin.com/in/" + handle},
	}
}

func score(v float64) *float64 { return &v }

func TestTalentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tal := newTalent("ada")
	require.NoError(t, s.CreateTalent(ctx, tal))

	got, err := s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Handle)
	assert.Equal(t, domain.SyncPending, got.SyncStatus)
	assert.Equal(t, domain.TalentNew, got.Status)
	assert.Empty(t, got.ExternalID)
	assert.Equal(t, "https://linkedin.com/in/ada", got.Data.String("linkedin"))

	byHandle, err := s.FindTalentByHandle(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, tal.ID, byHandle.ID)

	got.Headline = "Engineer"
	got.Status = domain.TalentActive
	require.NoError(t, s.UpdateTalent(ctx, got))

	require.NoError(t, s.MarkTalentSynced(ctx, tal.ID, "ext-1"))
	synced, err := s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, synced.SyncStatus)
	assert.Equal(t, "ext-1", synced.ExternalID)
	assert.Equal(t, "Engineer", synced.Headline)
	assert.Equal(t, domain.TalentActive, synced.Status)

	// generic updates leave sync fields alone
	synced.Name = "Ada L."
	synced.SyncStatus = domain.SyncError
	synced.ExternalID = ""
	require.NoError(t, s.UpdateTalent(ctx, synced))
	again, err := s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, again.SyncStatus)
	assert.Equal(t, "ext-1", again.ExternalID)

	require.NoError(t, s.MarkTalentSyncFailed(ctx, tal.ID))
	failed, err := s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncError, failed.SyncStatus)
	assert.Equal(t, "ext-1", failed.ExternalID)
}

func TestCreateTalentDuplicateHandle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateTalent(ctx, newTalent("grace")))

	err := s.CreateTalent(ctx, newTalent("grace"))
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestMissingRowsAreNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetTalent(ctx, domain.NewID())
	assert.True(t, domain.IsNotFound(err))

	_, err = s.FindTalentByHandle(ctx, "nobody")
	assert.True(t, domain.IsNotFound(err))

	assert.True(t, domain.IsNotFound(s.MarkTalentSyncFailed(ctx, domain.NewID())))
	assert.True(t, domain.IsNotFound(s.DeleteApplication(ctx, domain.NewID())))

	_, err = s.GetJob(ctx, domain.NewID())
	assert.True(t, domain.IsNotFound(err))
}

func TestApplications(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tal := newTalent("linus")
	require.NoError(t, s.CreateTalent(ctx, tal))

	job := domain.Job{ID: domain.NewID(), Title: "Kernel Engineer", Status: domain.JobOpen}
	require.NoError(t, s.CreateJob(ctx, job))

	app := domain.Application{ID: domain.NewID(), JobID: job.ID, TalentID: tal.ID}
	require.NoError(t, s.CreateApplication(ctx, app))

	dup := domain.Application{ID: domain.NewID(), JobID: job.ID, TalentID: tal.ID}
	err := s.CreateApplication(ctx, dup)
	assert.True(t, domain.IsConflict(err))

	found, err := s.FindApplication(ctx, job.ID, tal.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, found.ID)
	assert.Equal(t, domain.StageApplied, found.Stage)
	assert.Equal(t, domain.ApplicationActive, found.Status)
	assert.Nil(t, found.MatchScore)
	assert.Nil(t, found.AIReview)

	found.MatchScore = score(0.82)
	found.AIReview = domain.Attrs{"summary": "strong systems background"}
	found.Stage = "interview"
	require.NoError(t, s.UpdateApplication(ctx, found))

	list, err := s.ListApplicationsForJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "interview", list[0].Stage)
	require.NotNil(t, list[0].MatchScore)
	assert.InDelta(t, 0.82, *list[0].MatchScore, 1e-9)
	assert.Equal(t, "strong systems background", list[0].AIReview.String("summary"))

	require.NoError(t, s.DeleteApplication(ctx, app.ID))
	_, err = s.GetApplication(ctx, app.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteTalentCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tal := newTalent("barbara")
	require.NoError(t, s.CreateTalent(ctx, tal))
	jobID := domain.NewID()
	app := domain.Application{ID: domain.NewID(), JobID: jobID, TalentID: tal.ID}
	require.NoError(t, s.CreateApplication(ctx, app))

	require.NoError(t, s.DeleteTalent(ctx, tal.ID))

	_, err := s.GetApplication(ctx, app.ID)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(s.DeleteTalent(ctx, tal.ID)))
}

func TestDeleteTalentIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tal := newTalent("grace")
	require.NoError(t, s.CreateTalent(ctx, tal))
	app := domain.Application{ID: domain.NewID(), JobID: domain.NewID(), TalentID: tal.ID}
	require.NoError(t, s.CreateApplication(ctx, app))

	_, err := s.DB().ExecContext(ctx, `CREATE TRIGGER hold_talents BEFORE DELETE ON talents
		BEGIN SELECT RAISE(ABORT, 'talent is held'); END`)
	require.NoError(t, err)

	require.Error(t, s.DeleteTalent(ctx, tal.ID))

	_, err = s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
	_, err = s.GetApplication(ctx, app.ID)
	assert.NoError(t, err, "a failed talent delete keeps its applications")
}

func TestListApplicationsForTalent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tal := newTalent("hedy")
	other := newTalent("joan")
	require.NoError(t, s.CreateTalent(ctx, tal))
	require.NoError(t, s.CreateTalent(ctx, other))

	for _, jobID := range []string{"job-a", "job-b"} {
		require.NoError(t, s.CreateApplication(ctx, domain.Application{ID: domain.NewID(), JobID: jobID, TalentID: tal.ID}))
	}
	require.NoError(t, s.CreateApplication(ctx, domain.Application{ID: domain.NewID(), JobID: "job-a", TalentID: other.ID}))

	apps, err := s.ListApplicationsForTalent(ctx, tal.ID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	var jobs []string
	for _, a := range apps {
		assert.Equal(t, tal.ID, a.TalentID)
		jobs = append(jobs, a.JobID)
	}
	assert.ElementsMatch(t, []string{"job-a", "job-b"}, jobs)

	none, err := s.ListApplicationsForTalent(ctx, domain.NewID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	tal := newTalent("ken")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.CreateTalent(ctx, tal))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetTalent(ctx, tal.ID)
	assert.True(t, domain.IsNotFound(err))

	err = s.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateTalent(ctx, tal); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.CreateApplication(ctx, domain.Application{
				ID: domain.NewID(), JobID: domain.NewID(), TalentID: tal.ID,
			})
		})
	})
	require.NoError(t, err)

	_, err = s.GetTalent(ctx, tal.ID)
	require.NoError(t, err)
}

func TestListTalents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fixtures := []struct {
		handle string
		score  *float64
		status domain.TalentStatus
	}{
		{"alice", score(0.9), domain.TalentActive},
		{"bob", score(0.4), domain.TalentNew},
		{"carol", nil, domain.TalentNew},
		{"dave", score(0.7), domain.TalentRejected},
	}
	for _, f := range fixtures {
		tal := newTalent(f.handle)
		tal.MatchScore = f.score
		tal.Status = f.status
		require.NoError(t, s.CreateTalent(ctx, tal))
	}

	all, total, err := s.ListTalents(ctx, domain.TalentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, all, 4)
	assert.Equal(t, "alice", all[0].Handle)
	assert.Equal(t, "dave", all[1].Handle)
	assert.Equal(t, "carol", all[3].Handle, "unscored talents sort last")

	page, total, err := s.ListTalents(ctx, domain.TalentFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, page, 1)

	scored, total, err := s.ListTalents(ctx, domain.TalentFilter{MinScore: score(0.5)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, scored, 2)

	byStatus, _, err := s.ListTalents(ctx, domain.TalentFilter{Status: domain.TalentNew})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	search, _, err := s.ListTalents(ctx, domain.TalentFilter{SearchTerm: "CAROL"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "carol", search[0].Handle)
}

func TestListTalentsForRetry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	s.clock = func() time.Time { return base }

	pending := newTalent("pending")
	failed := newTalent("failed")
	synced := newTalent("synced")
	for _, tal := range []domain.Talent{pending, failed, synced} {
		require.NoError(t, s.CreateTalent(ctx, tal))
	}
	require.NoError(t, s.MarkTalentSyncFailed(ctx, failed.ID))
	require.NoError(t, s.MarkTalentSynced(ctx, synced.ID, "ext"))

	s.clock = time.Now
	fresh := newTalent("fresh")
	require.NoError(t, s.CreateTalent(ctx, fresh))

	got, err := s.ListTalentsForRetry(ctx,
		[]domain.SyncStatus{domain.SyncPending, domain.SyncError},
		time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)

	handles := make([]string, 0, len(got))
	for _, tal := range got {
		handles = append(handles, tal.Handle)
	}
	assert.ElementsMatch(t, []string{"pending", "failed"}, handles)
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateJob(ctx, domain.Job{ID: domain.NewID(), Title: "SRE", Status: domain.JobOpen}))
	require.NoError(t, s.CreateJob(ctx, domain.Job{ID: domain.NewID(), Title: "PM"}))

	all, err := s.ListJobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := s.ListJobs(ctx, domain.JobOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "SRE", open[0].Title)

	drafts, err := s.ListJobs(ctx, domain.JobDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.False(t, drafts[0].IsSynced)
}

func TestPostgresRebind(t *testing.T) {
	got := postgresDialect{}.rebind(`SELECT a FROM t WHERE x = ? AND y IN (?, ?)`)
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)`, got)
}

func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL must be set to run this test")
	}

	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	defer s.Close(ctx)
	require.NoError(t, s.Migrate(ctx))

	tal := newTalent("pg-" + domain.NewID()[:8])
	require.NoError(t, s.CreateTalent(ctx, tal))
	defer s.DeleteTalent(ctx, tal.ID)

	assert.True(t, domain.IsConflict(s.CreateTalent(ctx, domain.Talent{ID: domain.NewID(), Handle: tal.Handle, Name: "dup"})))

	got, err := s.FindTalentByHandle(ctx, tal.Handle)
	require.NoError(t, err)
	assert.Equal(t, tal.ID, got.ID)
}
