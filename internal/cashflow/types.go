package cashflow

import (
	"finsight/pkg/contracts/domain"
)

// PeriodMetrics holds cash-flow quality metrics for one reporting period.
// Ratios suffixed by convention: percentages where named so, plain coverage
// ratios otherwise.
type PeriodMetrics struct {
	Period int `json:"period"`

	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FreeCashFlow      float64 `json:"free_cash_flow"` // OCF - CapEx

	// Quality ratios (percent)
	OCFToNetIncome float64 `json:"ocf_to_net_income"`
	OCFToRevenue   float64 `json:"ocf_to_revenue"`
	FCFYield       float64 `json:"fcf_yield"` // FCF / Revenue
	CapexToRevenue float64 `json:"capex_to_revenue"`

	// Coverage ratios (plain)
	DebtCoverage     float64 `json:"debt_coverage"`     // OCF / total debt
	DividendCoverage float64 `json:"dividend_coverage"` // OCF / dividends

	// Dynamics (percent)
	FCFGrowthRate    float64 `json:"fcf_growth_rate"`   // vs prior period, 0 for the first
	ReinvestmentRate float64 `json:"reinvestment_rate"` // CapEx / OCF

	Health domain.Rating `json:"health"`
}

// WCTrend classifies the period-over-period working-capital movement
type WCTrend string

const (
	WCTrendBaseline   WCTrend = "Baseline" // first period, nothing to compare
	WCTrendIncreasing WCTrend = "Increasing"
	WCTrendDecreasing WCTrend = "Decreasing"
	WCTrendStable     WCTrend = "Stable"
)

// WorkingCapitalPeriod holds the working-capital efficiency figures for one
// period. Balances may be estimated from revenue and COGS when the dataset
// does not carry them.
type WorkingCapitalPeriod struct {
	Period int `json:"period"`

	Receivables    float64 `json:"receivables"`
	Inventory      float64 `json:"inventory"`
	Payables       float64 `json:"payables"`
	WorkingCapital float64 `json:"working_capital"` // AR + Inventory - AP

	DSO float64 `json:"dso"` // days sales outstanding
	DIO float64 `json:"dio"` // days inventory outstanding
	DPO float64 `json:"dpo"` // days payables outstanding
	CCC float64 `json:"ccc"` // cash conversion cycle: DSO + DIO - DPO

	Intensity float64 `json:"intensity"` // 100 * working capital / revenue
	Trend     WCTrend `json:"trend"`
}

// WorkingCapitalAnalysis is the working-capital sub-analysis over the series
type WorkingCapitalAnalysis struct {
	Periods []WorkingCapitalPeriod `json:"periods"`

	// Estimated is set when AR/Inventory/AP were not supplied and the
	// balances were approximated as 12% of revenue, 15% of COGS, and 10% of
	// COGS respectively.
	Estimated bool `json:"estimated"`

	// EfficiencyScore bands the latest cash conversion cycle:
	// <30 days: 100, <60: 80, <90: 60, <120: 40, else 20.
	EfficiencyScore float64 `json:"efficiency_score"`
}

// Analysis is the full cash-flow analysis result
type Analysis struct {
	Metrics []PeriodMetrics `json:"metrics"`

	// OCFStability is the coefficient of variation of operating cash flow
	// over the whole series (stddev / |mean| * 100), one scalar.
	OCFStability float64 `json:"ocf_stability"`

	// SustainabilityScore is the additive 0-100 score for the latest period.
	SustainabilityScore float64 `json:"sustainability_score"`

	Alerts []domain.Alert `json:"alerts"`

	WorkingCapital WorkingCapitalAnalysis `json:"working_capital"`
}

// Latest returns the most recent period's metrics.
func (a *Analysis) Latest() PeriodMetrics {
	return a.Metrics[len(a.Metrics)-1]
}

// Estimation fractions used when working-capital balances are absent
const (
	estReceivablesOfRevenue = 0.12
	estInventoryOfCOGS      = 0.15
	estPayablesOfCOGS       = 0.10

	daysPerYear = 365.0
)
