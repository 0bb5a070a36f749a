package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/forensics-cli/internal/model"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_JobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	job := newTestJob("j1", "acme", model.JobCreated, time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, model.JobCreated, got.State)
	assert.Equal(t, "acme", got.Request.CompanyID)

	job.State = model.JobCompleted
	job.Result = &model.JobResult{Risk: model.RiskResult{CompositeScore: 35, Level: model.RiskLow}}
	require.NoError(t, s.UpdateJob(ctx, job))

	got, err = s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, got.State)
	require.NotNil(t, got.Result)
	assert.Equal(t, 35.0, got.Result.Risk.CompositeScore)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateJob(ctx, newTestJob("missing", "x", model.JobCreated, time.Now())), ErrNotFound)
}

func TestSQLiteStore_ListAndFindActive(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateJob(ctx, newTestJob("j1", "acme", model.JobCompleted, base)))
	require.NoError(t, s.CreateJob(ctx, newTestJob("j2", "acme", model.JobAnalyzing, base.Add(time.Hour))))
	require.NoError(t, s.CreateJob(ctx, newTestJob("j3", "globex", model.JobCreated, base.Add(2*time.Hour))))

	all, err := s.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "j3", all[0].ID, "newest first")

	acme, err := s.ListJobs(ctx, JobFilter{CompanyID: "ACME"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	limited, err := s.ListJobs(ctx, JobFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "j2", limited[0].ID)

	fp := model.AnalysisRequest{CompanyID: "acme", Periods: 3}.Fingerprint()
	active, err := s.FindActiveJob(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "j2", active.ID, "completed j1 is skipped")

	none, err := s.FindActiveJob(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)

	completed, err := s.FindCompletedJob(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, completed)
	assert.Equal(t, "j1", completed.ID)

	noneDone, err := s.FindCompletedJob(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, noneDone)
}

func TestSQLiteStore_ResultCache(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	result := &model.JobResult{Risk: model.RiskResult{CompositeScore: 61, Level: model.RiskHigh}}
	require.NoError(t, s.SetCachedResult(ctx, "fp", result, time.Hour))

	hit, err := s.GetCachedResult(ctx, "fp")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 61.0, hit.Risk.CompositeScore)

	// Upsert replaces the payload.
	result.Risk.CompositeScore = 70
	require.NoError(t, s.SetCachedResult(ctx, "fp", result, time.Hour))
	hit, err = s.GetCachedResult(ctx, "fp")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 70.0, hit.Risk.CompositeScore)

	miss, err := s.GetCachedResult(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, miss)

	// An already-expired entry reads as a miss and gets evicted.
	require.NoError(t, s.SetCachedResult(ctx, "stale", result, -time.Minute))
	expired, err := s.GetCachedResult(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, expired)

	evicted, err := s.DeleteExpiredResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
}
