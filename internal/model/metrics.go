package model

// Severity grades an anomaly flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ZClass is the Altman Z-Score zone.
type ZClass string

const (
	ZDistress ZClass = "distress"
	ZGrey     ZClass = "grey"
	ZSafe     ZClass = "safe"
)

// MClass is the Beneish M-Score interpretation.
type MClass string

const (
	MConservative MClass = "conservative"
	MAggressive   MClass = "aggressive"
	MManipulator  MClass = "likely_manipulator"
)

// AccrualRisk grades the Sloan ratio.
type AccrualRisk string

const (
	AccrualSafe     AccrualRisk = "safe"
	AccrualModerate AccrualRisk = "moderate"
	AccrualHigh     AccrualRisk = "high"
)

// VerticalAnalysis holds common-size percentages for the latest period:
// income lines as a percent of revenue, balance lines as a percent of total
// assets. Fields that could not be computed are simply absent.
type VerticalAnalysis struct {
	OfRevenue map[FieldKey]Metric `json:"of_revenue,omitempty"`
	OfAssets  map[FieldKey]Metric `json:"of_assets,omitempty"`
}

// HorizontalAnalysis holds period-over-period growth percentages per tracked
// field, most recent comparison first. Empty when fewer than two periods were
// supplied.
type HorizontalAnalysis struct {
	Growth map[FieldKey]Metric `json:"growth,omitempty"`
}

// Ratios holds the liquidity, profitability, leverage and efficiency ratios.
// Each is individually unavailable when an operand is missing or a
// denominator is zero.
type Ratios struct {
	Current       Metric `json:"current"`
	Quick         Metric `json:"quick"`
	Cash          Metric `json:"cash"`
	NetMarginPct  Metric `json:"net_margin_pct"`
	ROAPct        Metric `json:"roa_pct"`
	ROEPct        Metric `json:"roe_pct"`
	DebtToEquity  Metric `json:"debt_to_equity"`
	AssetTurnover Metric `json:"asset_turnover"`
}

// ZScore is the Altman bankruptcy score with its weighted component
// breakdown. All five components must be computable or the score is
// unavailable as a whole.
type ZScore struct {
	Score      Metric             `json:"score"`
	Components map[string]float64 `json:"components,omitempty"`
	Class      ZClass             `json:"class,omitempty"`
}

// MScore is the Beneish earnings-manipulation score. Requires two
// consecutive periods; each of the eight variables must be independently
// computable or the score is unavailable.
type MScore struct {
	Score     Metric             `json:"score"`
	Variables map[string]float64 `json:"variables,omitempty"`
	Class     MClass             `json:"class,omitempty"`
}

// SloanRatio is (net income − operating cash flow) / total assets × 100.
type SloanRatio struct {
	Pct  Metric      `json:"pct"`
	Risk AccrualRisk `json:"risk,omitempty"`
}

// BenfordDigit pairs the expected and observed frequency for one leading digit.
type BenfordDigit struct {
	Digit       int     `json:"digit"`
	ExpectedPct float64 `json:"expected_pct"`
	ActualPct   float64 `json:"actual_pct"`
	Count       int     `json:"count"`
}

// Benford holds the leading-digit distribution test over all reported line
// items. Compliance is 100 at exact conformity and decreases with deviation.
type Benford struct {
	Digits     []BenfordDigit `json:"digits,omitempty"`
	Compliance Metric         `json:"compliance"`
	Samples    int            `json:"samples"`
	Anomalous  bool           `json:"anomalous"`
}

// Anomaly is a single rule-based flag over the computed metrics.
type Anomaly struct {
	Metric      string   `json:"metric"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// MetricBundle is the full output of one engine run over an ordered sequence
// of canonical statements (most recent first). Every sub-metric is
// independently available or unavailable; the bundle itself always exists.
type MetricBundle struct {
	Periods    int                `json:"periods"`
	Vertical   VerticalAnalysis   `json:"vertical"`
	Horizontal HorizontalAnalysis `json:"horizontal"`
	Ratios     Ratios             `json:"ratios"`
	ZScore     ZScore             `json:"z_score"`
	MScore     MScore             `json:"m_score"`
	Sloan      SloanRatio         `json:"sloan_ratio"`
	Benford    Benford            `json:"benford"`
	Anomalies  []Anomaly          `json:"anomalies,omitempty"`
}
