package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/forensics-cli/internal/model"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = eris.New("store: not found")

// MemoryStore is an in-process Store for tests and single-shot CLI runs.
// Jobs are deep-copied through JSON on the way in and out so callers never
// share mutable state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*model.Job
	cache map[string]cacheEntry
	nowFn func() time.Time
}

type cacheEntry struct {
	result    *model.JobResult
	expiresAt time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]*model.Job),
		cache: make(map[string]cacheEntry),
		nowFn: time.Now,
	}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }
func (s *MemoryStore) Close() error                      { return nil }

func (s *MemoryStore) CreateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return eris.Errorf("store: job %s already exists", job.ID)
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

func (s *MemoryStore) UpdateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; !exists {
		return eris.Wrapf(ErrNotFound, "store: job %s", job.ID)
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

func (s *MemoryStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "store: job %s", jobID)
	}
	return copyJob(job), nil
}

func (s *MemoryStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Job
	for _, job := range s.jobs {
		if filter.State != "" && job.State != filter.State {
			continue
		}
		if filter.CompanyID != "" && !strings.EqualFold(job.Request.CompanyID, filter.CompanyID) {
			continue
		}
		out = append(out, *copyJob(job))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) FindActiveJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *model.Job
	for _, job := range s.jobs {
		if job.Fingerprint != fingerprint || job.State.Terminal() {
			continue
		}
		if newest == nil || job.CreatedAt.After(newest.CreatedAt) {
			newest = job
		}
	}
	if newest == nil {
		return nil, nil
	}
	return copyJob(newest), nil
}

func (s *MemoryStore) FindCompletedJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *model.Job
	for _, job := range s.jobs {
		if job.Fingerprint != fingerprint || job.State != model.JobCompleted {
			continue
		}
		if newest == nil || job.CreatedAt.After(newest.CreatedAt) {
			newest = job
		}
	}
	if newest == nil {
		return nil, nil
	}
	return copyJob(newest), nil
}

func (s *MemoryStore) GetCachedResult(ctx context.Context, fingerprint string) (*model.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[fingerprint]
	if !ok || s.nowFn().After(entry.expiresAt) {
		return nil, nil
	}
	return copyResult(entry.result), nil
}

func (s *MemoryStore) SetCachedResult(ctx context.Context, fingerprint string, result *model.JobResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[fingerprint] = cacheEntry{
		result:    copyResult(result),
		expiresAt: s.nowFn().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) DeleteExpiredResults(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	deleted := 0
	for fp, entry := range s.cache {
		if now.After(entry.expiresAt) {
			delete(s.cache, fp)
			deleted++
		}
	}
	return deleted, nil
}

// SetClock overrides the store's clock. Test hook for TTL expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

func copyJob(job *model.Job) *model.Job {
	raw, _ := json.Marshal(job)
	var out model.Job
	_ = json.Unmarshal(raw, &out)
	return &out
}

func copyResult(r *model.JobResult) *model.JobResult {
	if r == nil {
		return nil
	}
	raw, _ := json.Marshal(r)
	var out model.JobResult
	_ = json.Unmarshal(raw, &out)
	return &out
}
