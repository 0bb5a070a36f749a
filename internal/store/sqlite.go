package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/forensics-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	payload     TEXT NOT NULL,
	state       TEXT NOT NULL,
	company_id  TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS result_cache (
	fingerprint TEXT PRIMARY KEY,
	result      TEXT NOT NULL,
	cached_at   DATETIME NOT NULL,
	expires_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state);
CREATE INDEX IF NOT EXISTS idx_jobs_fingerprint ON jobs(fingerprint);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company_id);
CREATE INDEX IF NOT EXISTS idx_result_cache_expires_at ON result_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, job *model.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal job")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, fingerprint, payload, state, company_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Fingerprint, string(payload), string(job.State),
		job.Request.CompanyID, job.CreatedAt.UTC(), job.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert job %s", job.ID)
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *model.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal job")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET payload = ?, state = ?, updated_at = ? WHERE id = ?`,
		string(payload), string(job.State), time.Now().UTC(), job.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job %s", job.ID)
	}
	return checkRowsAffected(res, job.ID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM jobs WHERE id = ?`, jobID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: job %s", jobID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", jobID)
	}
	return unmarshalJob(payload)
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT payload FROM jobs WHERE 1=1`
	var args []any

	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, string(filter.State))
	}
	if filter.CompanyID != "" {
		query += ` AND company_id = ? COLLATE NOCASE`
		args = append(args, filter.CompanyID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		job, err := unmarshalJob(payload)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs rows")
}

func (s *SQLiteStore) FindActiveJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM jobs
		WHERE fingerprint = ? AND state NOT IN ('completed', 'failed', 'cancelled')
		ORDER BY created_at DESC LIMIT 1`, fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find active job")
	}
	return unmarshalJob(payload)
}

func (s *SQLiteStore) FindCompletedJob(ctx context.Context, fingerprint string) (*model.Job, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM jobs
		WHERE fingerprint = ? AND state = 'completed'
		ORDER BY created_at DESC LIMIT 1`, fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find completed job")
	}
	return unmarshalJob(payload)
}

func (s *SQLiteStore) GetCachedResult(ctx context.Context, fingerprint string) (*model.JobResult, error) {
	var payload string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT result, expires_at FROM result_cache WHERE fingerprint = ?`, fingerprint,
	).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cached result %s", fingerprint)
	}
	if time.Now().UTC().After(expiresAt) {
		return nil, nil
	}

	var result model.JobResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached result")
	}
	return &result, nil
}

func (s *SQLiteStore) SetCachedResult(ctx context.Context, fingerprint string, result *model.JobResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal cached result")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO result_cache (fingerprint, result, cached_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET result = excluded.result,
		   cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		fingerprint, string(payload), now, now.Add(ttl),
	)
	return eris.Wrapf(err, "sqlite: set cached result %s", fingerprint)
}

func (s *SQLiteStore) DeleteExpiredResults(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM result_cache WHERE expires_at < ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired results")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func unmarshalJob(payload string) (*model.Job, error) {
	var job model.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal job")
	}
	return &job, nil
}

func checkRowsAffected(res sql.Result, jobID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "store: job %s", jobID)
	}
	return nil
}
