package normalizer

import "github.com/sells-group/forensics-cli/internal/model"

// SourceEDGAR and SourceGeneric are the registered statement sources.
const (
	SourceEDGAR   = "edgar"
	SourceGeneric = "generic"
)

// fieldTables maps each source's field naming onto the canonical schema.
// Fields a source never reports simply have no entry.
var fieldTables = map[string]map[string]model.FieldKey{
	SourceGeneric: genericTable(),
	SourceEDGAR:   edgarTable(),
}

// genericTable accepts canonical names as-is, for payloads already shaped by
// an upstream collaborator.
func genericTable() map[string]model.FieldKey {
	t := make(map[string]model.FieldKey, 29)
	for _, key := range model.Schema() {
		t[string(key)] = key
	}
	return t
}

// edgarTable maps us-gaap concept tags (as flattened by the edgar client)
// onto canonical fields. Concepts with several common tags are listed once
// per tag.
func edgarTable() map[string]model.FieldKey {
	return map[string]model.FieldKey{
		"Revenues":                                    model.FieldRevenue,
		"RevenueFromContractWithCustomerExcludingAssessedTax": model.FieldRevenue,
		"SalesRevenueNet":                             model.FieldRevenue,
		"CostOfRevenue":                               model.FieldCostOfRevenue,
		"CostOfGoodsAndServicesSold":                  model.FieldCostOfRevenue,
		"GrossProfit":                                 model.FieldGrossProfit,
		"OperatingIncomeLoss":                         model.FieldOperatingIncome,
		"SellingGeneralAndAdministrativeExpense":      model.FieldSGAExpenses,
		"DepreciationDepletionAndAmortization":        model.FieldDepreciation,
		"DepreciationAndAmortization":                 model.FieldDepreciation,
		"InterestExpense":                             model.FieldInterestExpense,
		"NetIncomeLoss":                               model.FieldNetIncome,
		"Assets":                                      model.FieldTotalAssets,
		"AssetsCurrent":                               model.FieldCurrentAssets,
		"CashAndCashEquivalentsAtCarryingValue":       model.FieldCashAndEquivalents,
		"AccountsReceivableNetCurrent":                model.FieldAccountsReceivable,
		"InventoryNet":                                model.FieldInventory,
		"PropertyPlantAndEquipmentNet":                model.FieldPPENet,
		"Liabilities":                                 model.FieldTotalLiabilities,
		"LiabilitiesCurrent":                          model.FieldCurrentLiabilities,
		"StockholdersEquity":                          model.FieldTotalEquity,
		"RetainedEarningsAccumulatedDeficit":          model.FieldRetainedEarnings,
		"DebtCurrent":                                 model.FieldCurrentDebt,
		"LongTermDebtNoncurrent":                      model.FieldLongTermDebt,
		"LongTermDebt":                                model.FieldLongTermDebt,
		"NetCashProvidedByUsedInOperatingActivities":  model.FieldOperatingCashFlow,
		"NetCashProvidedByUsedInInvestingActivities":  model.FieldInvestingCashFlow,
		"NetCashProvidedByUsedInFinancingActivities":  model.FieldFinancingCashFlow,
		"CommonStockSharesOutstanding":                model.FieldSharesOutstanding,
		"EntityCommonStockSharesOutstanding":          model.FieldSharesOutstanding,
	}
}
