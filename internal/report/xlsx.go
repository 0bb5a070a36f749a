package report

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/forensics-cli/internal/model"
)

// WriteXLSX writes a completed analysis to an XLSX workbook with one sheet
// per section: risk, ratios, scores, anomalies, benchmarks.
func WriteXLSX(path string, req model.AnalysisRequest, res *model.JobResult) error {
	f := xlsx.NewFile()

	if err := addRiskSheet(f, req, res.Risk); err != nil {
		return err
	}
	if err := addRatioSheet(f, res.Metrics.Ratios); err != nil {
		return err
	}
	if err := addScoreSheet(f, res.Metrics); err != nil {
		return err
	}
	if err := addAnomalySheet(f, res.Metrics.Anomalies); err != nil {
		return err
	}
	if len(res.Benchmarks) > 0 {
		if err := addBenchmarkSheet(f, res.Benchmarks); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addRiskSheet(f *xlsx.File, req model.AnalysisRequest, risk model.RiskResult) error {
	sheet, err := f.AddSheet("Risk")
	if err != nil {
		return eris.Wrap(err, "report: add risk sheet")
	}

	header(sheet, "Company", "Composite Score", "Risk Level")
	row := sheet.AddRow()
	row.AddCell().SetString(req.CompanyID)
	row.AddCell().SetFloat(risk.CompositeScore)
	row.AddCell().SetString(string(risk.Level))

	sheet.AddRow()
	header(sheet, "Category", "Score", "Signals")
	for _, cat := range model.Categories() {
		cs := risk.CategoryScores[cat]
		row := sheet.AddRow()
		row.AddCell().SetString(string(cat))
		row.AddCell().SetFloat(cs.Score)
		row.AddCell().SetString(strings.Join(cs.Signals, "; "))
	}
	return nil
}

func addRatioSheet(f *xlsx.File, r model.Ratios) error {
	sheet, err := f.AddSheet("Ratios")
	if err != nil {
		return eris.Wrap(err, "report: add ratio sheet")
	}
	header(sheet, "Ratio", "Value")
	rows := []struct {
		name string
		m    model.Metric
	}{
		{"current_ratio", r.Current},
		{"quick_ratio", r.Quick},
		{"cash_ratio", r.Cash},
		{"net_margin_pct", r.NetMarginPct},
		{"roa_pct", r.ROAPct},
		{"roe_pct", r.ROEPct},
		{"debt_to_equity", r.DebtToEquity},
		{"asset_turnover", r.AssetTurnover},
	}
	for _, item := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(item.name)
		setMetric(row, item.m)
	}
	return nil
}

func addScoreSheet(f *xlsx.File, m model.MetricBundle) error {
	sheet, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "report: add score sheet")
	}
	header(sheet, "Score", "Value", "Classification")

	row := sheet.AddRow()
	row.AddCell().SetString("altman_z")
	setMetric(row, m.ZScore.Score)
	row.AddCell().SetString(string(m.ZScore.Class))

	row = sheet.AddRow()
	row.AddCell().SetString("beneish_m")
	setMetric(row, m.MScore.Score)
	row.AddCell().SetString(string(m.MScore.Class))

	row = sheet.AddRow()
	row.AddCell().SetString("sloan_pct")
	setMetric(row, m.Sloan.Pct)
	row.AddCell().SetString(string(m.Sloan.Risk))

	row = sheet.AddRow()
	row.AddCell().SetString("benford_compliance")
	setMetric(row, m.Benford.Compliance)
	row.AddCell().SetString(fmt.Sprintf("%d samples", m.Benford.Samples))

	return nil
}

func addAnomalySheet(f *xlsx.File, anomalies []model.Anomaly) error {
	sheet, err := f.AddSheet("Anomalies")
	if err != nil {
		return eris.Wrap(err, "report: add anomaly sheet")
	}
	header(sheet, "Metric", "Severity", "Description")
	for _, a := range anomalies {
		row := sheet.AddRow()
		row.AddCell().SetString(a.Metric)
		row.AddCell().SetString(string(a.Severity))
		row.AddCell().SetString(a.Description)
	}
	return nil
}

func addBenchmarkSheet(f *xlsx.File, signals []model.BenchmarkSignal) error {
	sheet, err := f.AddSheet("Benchmarks")
	if err != nil {
		return eris.Wrap(err, "report: add benchmark sheet")
	}
	header(sheet, "Ratio", "Company", "Baseline", "Deviation %")
	for _, s := range signals {
		row := sheet.AddRow()
		row.AddCell().SetString(s.Ratio)
		row.AddCell().SetFloat(s.Company)
		row.AddCell().SetFloat(s.Baseline)
		row.AddCell().SetFloat(s.DeviationPct)
	}
	return nil
}

func header(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}

func setMetric(row *xlsx.Row, m model.Metric) {
	if !m.Valid {
		row.AddCell().SetString("n/a")
		return
	}
	row.AddCell().SetFloat(m.Value)
}
