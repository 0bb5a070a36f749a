package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Priority orders jobs in the queue. Higher rank dequeues first; within one
// priority tier jobs are FIFO by enqueue time.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Rank maps a priority to its queue ordering weight.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// JobState is the lifecycle stage of an analysis job. Transitions are linear
// with failed and cancelled as additional absorbing states.
type JobState string

const (
	JobCreated           JobState = "created"
	JobIngestingData     JobState = "ingesting_data"
	JobAnalyzing         JobState = "analyzing"
	JobScoringRisk       JobState = "scoring_risk"
	JobBenchmarking      JobState = "benchmarking"
	JobGeneratingReports JobState = "generating_reports"
	JobCompleted         JobState = "completed"
	JobFailed            JobState = "failed"
	JobCancelled         JobState = "cancelled"
)

// Terminal reports whether the state is absorbing.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// AnalysisRequest describes one requested analysis: which company, how many
// reporting periods, and which analysis types to run.
type AnalysisRequest struct {
	CompanyID     string   `json:"company_id"`
	Periods       int      `json:"periods"`
	AnalysisTypes []string `json:"analysis_types,omitempty"`
	Priority      Priority `json:"priority,omitempty"`
}

// Fingerprint hashes the request identity (company, period count, analysis
// type set). Two requests with the same fingerprint are logically equivalent
// and share one in-flight job and one cache slot. The analysis type set is
// order-insensitive.
func (r AnalysisRequest) Fingerprint() string {
	types := append([]string(nil), r.AnalysisTypes...)
	for i := range types {
		types[i] = strings.ToLower(strings.TrimSpace(types[i]))
	}
	sort.Strings(types)

	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(r.CompanyID))))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(r.Periods)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(types, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// BenchmarkSignal is one deviation of a company ratio from its sector
// baseline, produced by the benchmarking stage.
type BenchmarkSignal struct {
	Ratio        string  `json:"ratio"`
	Company      float64 `json:"company"`
	Baseline     float64 `json:"baseline"`
	DeviationPct float64 `json:"deviation_pct"`
}

// JobResult is the terminal payload of a completed job.
type JobResult struct {
	Risk       RiskResult        `json:"risk"`
	Metrics    MetricBundle      `json:"metrics"`
	Benchmarks []BenchmarkSignal `json:"benchmarks,omitempty"`
	Report     string            `json:"report,omitempty"`
}

// Job is the orchestrator's unit of work. State transitions are driven only
// by the orchestrator; terminal jobs are immutable.
type Job struct {
	ID          string          `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Request     AnalysisRequest `json:"request"`
	Priority    Priority        `json:"priority"`
	State       JobState        `json:"state"`
	Result      *JobResult      `json:"result,omitempty"`
	FailedStage JobState        `json:"failed_stage,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// JobStatus is the poll-friendly view of a job.
type JobStatus struct {
	ID         string     `json:"id"`
	State      JobState   `json:"state"`
	Priority   Priority   `json:"priority"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Status projects the job onto its poll view.
func (j *Job) Status() JobStatus {
	return JobStatus{
		ID:         j.ID,
		State:      j.State,
		Priority:   j.Priority,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}
