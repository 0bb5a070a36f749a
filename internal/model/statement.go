package model

import "time"

// StatementType identifies which financial statement a period's facts belong to.
type StatementType string

const (
	StatementIncome   StatementType = "income"
	StatementBalance  StatementType = "balance"
	StatementCashFlow StatementType = "cash_flow"
)

// FieldKey is a canonical statement field name. The schema is fixed: sources
// map their own naming onto these keys and unknown source fields are dropped.
type FieldKey string

const (
	FieldRevenue            FieldKey = "revenue"
	FieldCostOfRevenue      FieldKey = "cost_of_revenue"
	FieldGrossProfit        FieldKey = "gross_profit"
	FieldOperatingIncome    FieldKey = "operating_income"
	FieldSGAExpenses        FieldKey = "sga_expenses"
	FieldDepreciation       FieldKey = "depreciation"
	FieldInterestExpense    FieldKey = "interest_expense"
	FieldNetIncome          FieldKey = "net_income"
	FieldEBITDA             FieldKey = "ebitda"
	FieldTotalAssets        FieldKey = "total_assets"
	FieldCurrentAssets      FieldKey = "current_assets"
	FieldCashAndEquivalents FieldKey = "cash_and_equivalents"
	FieldAccountsReceivable FieldKey = "accounts_receivable"
	FieldInventory          FieldKey = "inventory"
	FieldPPENet             FieldKey = "ppe_net"
	FieldTotalLiabilities   FieldKey = "total_liabilities"
	FieldCurrentLiabilities FieldKey = "current_liabilities"
	FieldTotalEquity        FieldKey = "total_equity"
	FieldRetainedEarnings   FieldKey = "retained_earnings"
	FieldTotalDebt          FieldKey = "total_debt"
	FieldCurrentDebt        FieldKey = "current_debt"
	FieldLongTermDebt       FieldKey = "long_term_debt"
	FieldOperatingCashFlow  FieldKey = "operating_cash_flow"
	FieldInvestingCashFlow  FieldKey = "investing_cash_flow"
	FieldFinancingCashFlow  FieldKey = "financing_cash_flow"
	FieldFreeCashFlow       FieldKey = "free_cash_flow"
	FieldMarketCap          FieldKey = "market_cap"
	FieldEnterpriseValue    FieldKey = "enterprise_value"
	FieldSharesOutstanding  FieldKey = "shares_outstanding"
)

// Schema returns the 29 canonical field keys in stable order.
func Schema() []FieldKey {
	return []FieldKey{
		FieldRevenue, FieldCostOfRevenue, FieldGrossProfit,
		FieldOperatingIncome, FieldSGAExpenses,
		FieldDepreciation, FieldInterestExpense, FieldNetIncome, FieldEBITDA,
		FieldTotalAssets, FieldCurrentAssets, FieldCashAndEquivalents,
		FieldAccountsReceivable, FieldInventory, FieldPPENet,
		FieldTotalLiabilities, FieldCurrentLiabilities, FieldTotalEquity,
		FieldRetainedEarnings, FieldTotalDebt, FieldCurrentDebt,
		FieldLongTermDebt, FieldOperatingCashFlow, FieldInvestingCashFlow,
		FieldFinancingCashFlow, FieldFreeCashFlow, FieldMarketCap,
		FieldEnterpriseValue, FieldSharesOutstanding,
	}
}

// StatementTypeOf returns which statement a canonical field belongs to.
func StatementTypeOf(key FieldKey) StatementType {
	switch key {
	case FieldTotalAssets, FieldCurrentAssets, FieldCashAndEquivalents,
		FieldAccountsReceivable, FieldInventory, FieldPPENet,
		FieldTotalLiabilities, FieldCurrentLiabilities, FieldTotalEquity,
		FieldRetainedEarnings, FieldTotalDebt, FieldCurrentDebt,
		FieldLongTermDebt, FieldMarketCap, FieldEnterpriseValue,
		FieldSharesOutstanding:
		return StatementBalance
	case FieldOperatingCashFlow, FieldInvestingCashFlow,
		FieldFinancingCashFlow, FieldFreeCashFlow:
		return StatementCashFlow
	default:
		return StatementIncome
	}
}

// CanonicalStatement holds one reporting period's facts normalized onto the
// fixed schema. Produced once per period by the normalizer and immutable
// afterwards. Absent fields simply have no entry; Field() returns the missing
// Amount for them so zero and missing never mix.
type CanonicalStatement struct {
	Period time.Time           `json:"period"`
	Fields map[FieldKey]Amount `json:"fields"`
}

// Field returns the value for key, or the missing Amount when the field was
// not reported for this period.
func (s CanonicalStatement) Field(key FieldKey) Amount {
	if s.Fields == nil {
		return Amount{}
	}
	return s.Fields[key]
}

// WorkingCapital returns current assets minus current liabilities, missing if
// either side is missing.
func (s CanonicalStatement) WorkingCapital() Amount {
	return s.Field(FieldCurrentAssets).Sub(s.Field(FieldCurrentLiabilities))
}
