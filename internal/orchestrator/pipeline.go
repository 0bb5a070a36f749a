package orchestrator

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/forensics-cli/internal/benchmark"
	"github.com/sells-group/forensics-cli/internal/ingest"
	"github.com/sells-group/forensics-cli/internal/metrics"
	"github.com/sells-group/forensics-cli/internal/model"
	"github.com/sells-group/forensics-cli/internal/normalizer"
	"github.com/sells-group/forensics-cli/internal/report"
	"github.com/sells-group/forensics-cli/internal/scorer"
)

// Pipeline runs the analysis stages for one request. The orchestrator drives
// it per job with state persistence and per-stage timeouts; the analyze
// command drives it synchronously.
type Pipeline struct {
	Client ingest.Client
	Engine *metrics.Engine
}

// Ingest fetches raw statements from the configured source and normalizes
// them onto the canonical schema, most recent period first.
func (p *Pipeline) Ingest(ctx context.Context, req model.AnalysisRequest) ([]model.CanonicalStatement, error) {
	raw, err := p.Client.FetchStatements(ctx, req.CompanyID, req.Periods)
	if err != nil {
		return nil, err
	}
	stmts, err := normalizer.Normalize(raw, p.Client.Source())
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, eris.Errorf("pipeline: no statements for %s", req.CompanyID)
	}
	return stmts, nil
}

// Analyze computes the full metric bundle over normalized statements.
func (p *Pipeline) Analyze(stmts []model.CanonicalStatement) model.MetricBundle {
	return p.Engine.Compute(stmts)
}

// ScoreRisk aggregates the metric bundle into category and composite risk.
func (p *Pipeline) ScoreRisk(bundle model.MetricBundle) model.RiskResult {
	return scorer.Score(bundle)
}

// Benchmark compares computed ratios against sector baselines.
func (p *Pipeline) Benchmark(bundle model.MetricBundle) []model.BenchmarkSignal {
	return benchmark.Compare(bundle.Ratios)
}

// Report renders the markdown summary for a finished result.
func (p *Pipeline) Report(req model.AnalysisRequest, res *model.JobResult) string {
	return report.Markdown(req, res)
}

// Run executes all stages in order. observe, when non-nil, is called with
// each stage as it begins.
func (p *Pipeline) Run(ctx context.Context, req model.AnalysisRequest, observe func(model.JobState)) (*model.JobResult, error) {
	note := func(s model.JobState) {
		if observe != nil {
			observe(s)
		}
	}

	note(model.JobIngestingData)
	stmts, err := p.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	note(model.JobAnalyzing)
	bundle := p.Analyze(stmts)

	note(model.JobScoringRisk)
	risk := p.ScoreRisk(bundle)

	note(model.JobBenchmarking)
	res := &model.JobResult{
		Risk:       risk,
		Metrics:    bundle,
		Benchmarks: p.Benchmark(bundle),
	}

	note(model.JobGeneratingReports)
	res.Report = p.Report(req, res)
	return res, nil
}
