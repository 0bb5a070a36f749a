package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/forensics-cli/internal/db"
	"github.com/sells-group/forensics-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	payload     JSONB NOT NULL,
	state       TEXT NOT NULL,
	company_id  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS result_cache (
	fingerprint TEXT PRIMARY KEY,
	result      JSONB NOT NULL,
	cached_at   TIMESTAMPTZ NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state);
CREATE INDEX IF NOT EXISTS idx_jobs_fingerprint ON jobs(fingerprint);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id);
CREATE INDEX IF NOT EXISTS idx_result_cache_expires_at ON result_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *model.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal job")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, fingerprint, payload, state, company_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Fingerprint, payload, string(job.State),
		job.Request.CompanyID, job.CreatedAt.UTC(), job.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert job %s", job.ID)
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *model.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal job")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET payload = $1, state = $2, updated_at = $3 WHERE id = $4`,
		payload, string(job.State), time.Now().UTC(), job.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job %s", job.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: job %s", job.ID)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM jobs WHERE id = $1`, jobID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: job %s", jobID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return unmarshalJob(string(payload))
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT payload FROM jobs WHERE 1=1`
	var args []any

	if filter.State != "" {
		args = append(args, string(filter.State))
		query += ` AND state = $1`
	}
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		query += ` AND lower(company_id) = lower($` + strconv.Itoa(len(args)) + `)`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		job, err := unmarshalJob(string(payload))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs rows")
}

func (s *PostgresStore) FindActiveJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM jobs
		WHERE fingerprint = $1 AND state NOT IN ('completed', 'failed', 'cancelled')
		ORDER BY created_at DESC LIMIT 1`, fingerprint).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find active job")
	}
	return unmarshalJob(string(payload))
}

func (s *PostgresStore) FindCompletedJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM jobs
		WHERE fingerprint = $1 AND state = 'completed'
		ORDER BY created_at DESC LIMIT 1`, fingerprint).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find completed job")
	}
	return unmarshalJob(string(payload))
}

func (s *PostgresStore) GetCachedResult(ctx context.Context, fingerprint string) (*model.JobResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM result_cache WHERE fingerprint = $1 AND expires_at > now()`,
		fingerprint,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cached result %s", fingerprint)
	}

	var result model.JobResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached result")
	}
	return &result, nil
}

func (s *PostgresStore) SetCachedResult(ctx context.Context, fingerprint string, result *model.JobResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal cached result")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO result_cache (fingerprint, result, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (fingerprint) DO UPDATE SET result = EXCLUDED.result,
		   cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		fingerprint, payload, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: set cached result %s", fingerprint)
}

func (s *PostgresStore) DeleteExpiredResults(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM result_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired results")
	}
	return int(tag.RowsAffected()), nil
}
