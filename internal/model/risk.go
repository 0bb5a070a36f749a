package model

// RiskCategory is one of the six fixed scoring categories.
type RiskCategory string

const (
	CategoryFinancialStability RiskCategory = "financial_stability"
	CategoryOperational        RiskCategory = "operational"
	CategoryMarket             RiskCategory = "market"
	CategoryCompliance         RiskCategory = "compliance"
	CategoryLiquidity          RiskCategory = "liquidity"
	CategoryGrowth             RiskCategory = "growth_sustainability"
)

// Categories returns the six categories in stable order.
func Categories() []RiskCategory {
	return []RiskCategory{
		CategoryFinancialStability, CategoryOperational, CategoryMarket,
		CategoryCompliance, CategoryLiquidity, CategoryGrowth,
	}
}

// RiskLevel is the discrete classification of the composite score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// CategoryScore is one category's 0-100 sub-score in risk points (higher =
// riskier) together with the signals that contributed to it. A category whose
// inputs were entirely unavailable carries the neutral midpoint 50 and an
// "insufficient data" signal.
type CategoryScore struct {
	Score   float64  `json:"score"`
	Signals []string `json:"signals,omitempty"`
}

// RiskResult is the aggregated output of the risk scorer. Higher composite
// means higher risk; cutpoints at 80/60/40 separate CRITICAL/HIGH/MEDIUM/LOW.
type RiskResult struct {
	CategoryScores map[RiskCategory]CategoryScore `json:"category_scores"`
	CompositeScore float64                        `json:"composite_score"`
	Level          RiskLevel                      `json:"risk_level"`
}
