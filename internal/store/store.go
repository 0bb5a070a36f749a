package store

import (
	"context"
	"time"

	"github.com/sells-group/forensics-cli/internal/model"
)

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	State     model.JobState `json:"state,omitempty"`
	CompanyID string         `json:"company_id,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Offset    int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for jobs and cached results. The
// orchestrator is the only writer; readers may poll at any time, so
// implementations must never expose a half-updated job record.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)

	// FindActiveJob returns the newest non-terminal job with the given
	// fingerprint, or (nil, nil) when none is in flight.
	FindActiveJob(ctx context.Context, fingerprint string) (*model.Job, error)

	// FindCompletedJob returns the newest completed job with the given
	// fingerprint, or (nil, nil) when none exists.
	FindCompletedJob(ctx context.Context, fingerprint string) (*model.Job, error)

	// Result cache, keyed by request fingerprint. Get returns (nil, nil)
	// on a miss or an expired entry.
	GetCachedResult(ctx context.Context, fingerprint string) (*model.JobResult, error)
	SetCachedResult(ctx context.Context, fingerprint string, result *model.JobResult, ttl time.Duration) error
	DeleteExpiredResults(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
