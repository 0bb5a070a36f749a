// Package metrics computes the forensic metric battery over canonical
// statements: common-size and growth analysis, liquidity and profitability
// ratios, Altman Z-Score, Beneish M-Score, Sloan ratio, Benford's-Law digit
// test, and rule-based anomaly flags.
//
// The engine is pure and never fails on missing data: every sub-metric is
// independently available or unavailable, and the bundle always comes back
// with whatever subset was computable.
package metrics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/forensics-cli/internal/config"
	"github.com/sells-group/forensics-cli/internal/model"
)

// Engine computes metric bundles. Thresholds for the anomaly pass come from
// configuration; everything else is fixed by the formulas.
type Engine struct {
	anomaly config.AnomalyConfig
}

// NewEngine creates an Engine with the given anomaly thresholds.
func NewEngine(anomaly config.AnomalyConfig) *Engine {
	return &Engine{anomaly: anomaly}
}

// Compute runs the full battery over statements ordered most recent first.
// The sub-metrics are independent, so they run concurrently; the bundle is
// assembled once all of them have finished. Statements must be non-empty —
// callers gate on that, the engine returns an empty bundle otherwise.
func (e *Engine) Compute(statements []model.CanonicalStatement) model.MetricBundle {
	bundle := model.MetricBundle{Periods: len(statements)}
	if len(statements) == 0 {
		return bundle
	}

	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		bundle.Vertical = verticalAnalysis(statements[0])
		return nil
	})
	g.Go(func() error {
		bundle.Horizontal = horizontalAnalysis(statements)
		return nil
	})
	g.Go(func() error {
		bundle.Ratios = computeRatios(statements[0])
		return nil
	})
	g.Go(func() error {
		bundle.ZScore = altmanZScore(statements[0])
		return nil
	})
	g.Go(func() error {
		bundle.MScore = beneishMScore(statements)
		return nil
	})
	g.Go(func() error {
		bundle.Sloan = sloanRatio(statements[0])
		return nil
	})
	g.Go(func() error {
		bundle.Benford = e.benfordTest(statements)
		return nil
	})

	// Sub-metric goroutines never return errors; the group is used purely
	// as a join point so the bundle is assembled atomically.
	_ = g.Wait()

	// The anomaly pass reads the other sub-metrics, so it runs last.
	bundle.Anomalies = e.detectAnomalies(bundle)

	return bundle
}
