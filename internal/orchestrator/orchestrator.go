// Package orchestrator owns the analysis job lifecycle: submission with
// fingerprint deduplication and result caching, a priority queue, a bounded
// worker pool, and the per-stage state machine.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/forensics-cli/internal/config"
	"github.com/sells-group/forensics-cli/internal/model"
	"github.com/sells-group/forensics-cli/internal/store"
)

var (
	// ErrNotReady is returned by GetResult while the job is still running.
	ErrNotReady = errors.New("orchestrator: job not completed")

	// ErrNotCancellable is returned by Cancel once a job has left the queue.
	ErrNotCancellable = errors.New("orchestrator: job already running or finished")
)

// Orchestrator coordinates workers over the job queue and persists every
// state transition so status polls never observe a stale job.
type Orchestrator struct {
	store        store.Store
	pipeline     *Pipeline
	queue        *jobQueue
	workers      int
	stageTimeout time.Duration
	cacheTTL     time.Duration
	log          *zap.Logger

	// submitMu serializes the find-then-create sequence in Submit so two
	// concurrent submissions of one fingerprint can never both observe "no
	// active job" and enqueue duplicates.
	submitMu sync.Mutex

	wg     sync.WaitGroup
	cancel context.CancelFunc
	nowFn  func() time.Time
}

func New(st store.Store, p *Pipeline, cfg config.OrchestratorConfig) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}
	stageTimeout := time.Duration(cfg.StageTimeoutSecs) * time.Second
	if stageTimeout <= 0 {
		stageTimeout = 2 * time.Minute
	}
	cacheTTL := time.Duration(cfg.CacheTTLHours) * time.Hour
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Orchestrator{
		store:        st,
		pipeline:     p,
		queue:        newJobQueue(),
		workers:      workers,
		stageTimeout: stageTimeout,
		cacheTTL:     cacheTTL,
		log:          zap.L().With(zap.String("component", "orchestrator")),
		nowFn:        time.Now,
	}
}

// Start launches the worker pool and the cache janitor. Workers drain until
// Stop is called or ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	if err := o.recoverJobs(ctx); err != nil {
		o.log.Warn("job recovery failed", zap.Error(err))
	}

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.workerLoop(ctx, i)
	}

	o.wg.Add(1)
	go o.janitorLoop(ctx)

	o.log.Info("started", zap.Int("workers", o.workers),
		zap.Duration("stage_timeout", o.stageTimeout),
		zap.Duration("cache_ttl", o.cacheTTL))
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (o *Orchestrator) Stop() {
	o.queue.close()
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
	o.log.Info("stopped")
}

// recoverJobs reconciles the durable job table with the in-memory queue. Jobs
// persisted in created were accepted but never picked up (typically across a
// restart): they are re-enqueued, otherwise they would hold their fingerprint
// active forever without ever running. Jobs stranded mid-stage cannot be
// resumed safely and move to failed.
func (o *Orchestrator) recoverJobs(ctx context.Context) error {
	jobs, err := o.store.ListJobs(ctx, store.JobFilter{})
	if err != nil {
		return err
	}
	for i := range jobs {
		job := jobs[i]
		switch {
		case job.State == model.JobCreated:
			if o.queue.push(job.ID, job.Priority.Rank()) {
				o.log.Info("requeued job",
					zap.String("job_id", job.ID),
					zap.String("company_id", job.Request.CompanyID))
			}
		case !job.State.Terminal():
			o.failJob(ctx, o.log, &job, job.State, eris.New("interrupted by shutdown"))
		}
	}
	return nil
}

// Submit registers an analysis request. A fresh cached result satisfies the
// request immediately as a completed job; an in-flight job with the same
// fingerprint is returned instead of enqueueing a duplicate.
func (o *Orchestrator) Submit(ctx context.Context, req model.AnalysisRequest) (string, error) {
	if req.CompanyID == "" {
		return "", eris.New("orchestrator: company_id is required")
	}
	if req.Periods <= 0 {
		req.Periods = 3
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	fp := req.Fingerprint()

	o.submitMu.Lock()
	defer o.submitMu.Unlock()

	if existing, err := o.store.FindActiveJob(ctx, fp); err != nil {
		return "", err
	} else if existing != nil {
		o.log.Debug("deduplicated submission",
			zap.String("job_id", existing.ID),
			zap.String("company_id", req.CompanyID))
		return existing.ID, nil
	}

	now := o.nowFn().UTC()
	job := &model.Job{
		ID:          uuid.NewString(),
		Fingerprint: fp,
		Request:     req,
		Priority:    priority,
		State:       model.JobCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cached, err := o.store.GetCachedResult(ctx, fp); err != nil {
		return "", err
	} else if cached != nil {
		// A fresh cached result satisfies the request without a new run.
		// Point the caller at the job that produced it when it still
		// exists; otherwise materialize a completed job carrying it.
		if prior, err := o.store.FindCompletedJob(ctx, fp); err != nil {
			return "", err
		} else if prior != nil {
			o.log.Info("served from cache",
				zap.String("job_id", prior.ID),
				zap.String("company_id", req.CompanyID))
			return prior.ID, nil
		}
		job.State = model.JobCompleted
		job.Result = cached
		job.StartedAt = &now
		job.FinishedAt = &now
		if err := o.store.CreateJob(ctx, job); err != nil {
			return "", err
		}
		o.log.Info("served from cache",
			zap.String("job_id", job.ID),
			zap.String("company_id", req.CompanyID))
		return job.ID, nil
	}

	if err := o.store.CreateJob(ctx, job); err != nil {
		return "", err
	}
	if !o.queue.push(job.ID, priority.Rank()) {
		return "", eris.New("orchestrator: shutting down")
	}

	o.log.Info("job queued",
		zap.String("job_id", job.ID),
		zap.String("company_id", req.CompanyID),
		zap.String("priority", string(priority)))
	return job.ID, nil
}

// GetStatus returns the poll view of a job.
func (o *Orchestrator) GetStatus(ctx context.Context, jobID string) (model.JobStatus, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return model.JobStatus{}, err
	}
	return job.Status(), nil
}

// GetResult returns the result of a completed job. Running jobs yield
// ErrNotReady; failed and cancelled jobs yield a descriptive error.
func (o *Orchestrator) GetResult(ctx context.Context, jobID string) (*model.JobResult, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch job.State {
	case model.JobCompleted:
		return job.Result, nil
	case model.JobFailed:
		return nil, eris.Errorf("orchestrator: job failed at %s: %s", job.FailedStage, job.Error)
	case model.JobCancelled:
		return nil, eris.New("orchestrator: job cancelled")
	default:
		return nil, ErrNotReady
	}
}

// ListJobs proxies store listing for the serve and jobs surfaces.
func (o *Orchestrator) ListJobs(ctx context.Context, filter store.JobFilter) ([]model.Job, error) {
	return o.store.ListJobs(ctx, filter)
}

// Cancel aborts a job that is still waiting in the queue. Jobs that have
// started or finished cannot be cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) error {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.State != model.JobCreated || !o.queue.remove(jobID) {
		return ErrNotCancellable
	}

	now := o.nowFn().UTC()
	job.State = model.JobCancelled
	job.UpdatedAt = now
	job.FinishedAt = &now
	if err := o.store.UpdateJob(ctx, job); err != nil {
		return err
	}
	o.log.Info("job cancelled", zap.String("job_id", jobID))
	return nil
}

func (o *Orchestrator) workerLoop(ctx context.Context, id int) {
	defer o.wg.Done()
	log := o.log.With(zap.Int("worker", id))

	for {
		jobID, err := o.queue.pop(ctx)
		if err != nil || jobID == "" {
			return
		}

		job, err := o.store.GetJob(ctx, jobID)
		if err != nil {
			log.Error("dequeued unknown job", zap.String("job_id", jobID), zap.Error(err))
			continue
		}
		if job.State != model.JobCreated {
			// Cancelled between store write and dequeue.
			continue
		}

		o.runJob(ctx, log, job)
	}
}

// runJob drives one job through the stage sequence, persisting each
// transition. A stage error or timeout moves the job to failed with the
// offending stage recorded.
func (o *Orchestrator) runJob(ctx context.Context, log *zap.Logger, job *model.Job) {
	started := o.nowFn().UTC()
	job.StartedAt = &started
	log = log.With(zap.String("job_id", job.ID), zap.String("company_id", job.Request.CompanyID))
	log.Info("job started", zap.String("priority", string(job.Priority)))

	var (
		stmts  []model.CanonicalStatement
		bundle model.MetricBundle
		result = &model.JobResult{}
	)

	stages := []struct {
		state model.JobState
		run   func(ctx context.Context) error
	}{
		{model.JobIngestingData, func(ctx context.Context) error {
			var err error
			stmts, err = o.pipeline.Ingest(ctx, job.Request)
			return err
		}},
		{model.JobAnalyzing, func(context.Context) error {
			bundle = o.pipeline.Analyze(stmts)
			result.Metrics = bundle
			return nil
		}},
		{model.JobScoringRisk, func(context.Context) error {
			result.Risk = o.pipeline.ScoreRisk(bundle)
			return nil
		}},
		{model.JobBenchmarking, func(context.Context) error {
			result.Benchmarks = o.pipeline.Benchmark(bundle)
			return nil
		}},
		{model.JobGeneratingReports, func(context.Context) error {
			result.Report = o.pipeline.Report(job.Request, result)
			return nil
		}},
	}

	for _, stage := range stages {
		if err := o.transition(ctx, job, stage.state); err != nil {
			log.Error("state persist failed", zap.Error(err))
			return
		}
		if err := o.runStage(ctx, stage.run); err != nil {
			o.failJob(ctx, log, job, stage.state, err)
			return
		}
	}

	now := o.nowFn().UTC()
	job.State = model.JobCompleted
	job.Result = result
	job.UpdatedAt = now
	job.FinishedAt = &now
	if err := o.store.UpdateJob(ctx, job); err != nil {
		log.Error("completion persist failed", zap.Error(err))
		return
	}
	if err := o.store.SetCachedResult(ctx, job.Fingerprint, result, o.cacheTTL); err != nil {
		log.Warn("result cache write failed", zap.Error(err))
	}

	log.Info("job completed",
		zap.Float64("composite_score", result.Risk.CompositeScore),
		zap.String("risk_level", string(result.Risk.Level)),
		zap.Duration("elapsed", now.Sub(started)))
}

// runStage executes one stage under the stage timeout. The stage function
// runs in its own goroutine so CPU-bound stages are also bounded.
func (o *Orchestrator) runStage(ctx context.Context, run func(ctx context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(stageCtx)
	}()

	select {
	case err := <-done:
		if err != nil && stageCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("stage timeout after %s", o.stageTimeout)
		}
		return err
	case <-stageCtx.Done():
		if stageCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("stage timeout after %s", o.stageTimeout)
		}
		return stageCtx.Err()
	}
}

func (o *Orchestrator) transition(ctx context.Context, job *model.Job, state model.JobState) error {
	job.State = state
	job.UpdatedAt = o.nowFn().UTC()
	return o.store.UpdateJob(ctx, job)
}

func (o *Orchestrator) failJob(ctx context.Context, log *zap.Logger, job *model.Job, stage model.JobState, cause error) {
	now := o.nowFn().UTC()
	job.State = model.JobFailed
	job.FailedStage = stage
	job.Error = cause.Error()
	job.UpdatedAt = now
	job.FinishedAt = &now
	if err := o.store.UpdateJob(ctx, job); err != nil {
		log.Error("failure persist failed", zap.Error(err))
		return
	}
	log.Warn("job failed", zap.String("stage", string(stage)), zap.Error(cause))
}

// janitorLoop periodically evicts expired cache entries.
func (o *Orchestrator) janitorLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := o.store.DeleteExpiredResults(ctx)
			if err != nil {
				o.log.Warn("cache sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				o.log.Debug("cache sweep", zap.Int("evicted", n))
			}
		}
	}
}
