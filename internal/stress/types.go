package stress

// Scenario is a named shock applied to baseline metrics
type Scenario struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	// RevenueShockPct is the revenue change in percent, usually negative
	RevenueShockPct float64 `json:"revenue_shock_pct" validate:"gte=-100"`
	// MarginPressureBps compresses operating cash margin, in basis points
	MarginPressureBps float64 `json:"margin_pressure_bps" validate:"gte=0,lte=10000"`
	// WorkingCapitalImpactPct ties up this share of stressed revenue
	WorkingCapitalImpactPct float64 `json:"working_capital_impact_pct"`
	// CapexChangePct adjusts baseline capital expenditure
	CapexChangePct float64 `json:"capex_change_pct" validate:"gte=-100"`
}

// Baseline carries the latest-period figures the scenario is applied to.
// Cash and Capex are optional: a nil Cash defaults to twice the operating
// cash flow, a nil Capex to 30% of its magnitude.
type Baseline struct {
	Revenue           float64  `json:"revenue"`
	OperatingCashFlow float64  `json:"operating_cash_flow"`
	Cash              *float64 `json:"cash,omitempty"`
	Capex             *float64 `json:"capex,omitempty"`
}

// Survival summarizes how long the company lasts under the scenario
type Survival struct {
	// MonthsOfCashRemaining is cash divided by the monthly burn. When the
	// stressed free cash flow is non-negative there is no burn and the
	// value is the UnlimitedRunwayMonths sentinel.
	MonthsOfCashRemaining float64 `json:"months_of_cash_remaining"`
	// BreakEvenGapPct measures how far stressed revenue sits below the
	// fixed 70%-of-baseline break-even threshold.
	BreakEvenGapPct float64 `json:"break_even_gap_pct"`
	RecoveryMonths  float64 `json:"recovery_months"`
}

// Result is the outcome of one scenario run
type Result struct {
	Scenario Scenario `json:"scenario"`

	StressedRevenue      float64 `json:"stressed_revenue"`
	StressedOCF          float64 `json:"stressed_ocf"`
	StressedCapex        float64 `json:"stressed_capex"`
	WorkingCapitalImpact float64 `json:"working_capital_impact"`
	StressedFCF          float64 `json:"stressed_fcf"`

	Survival        Survival `json:"survival"`
	Recommendations []string `json:"recommendations"`
}

const (
	// UnlimitedRunwayMonths marks a scenario the company survives
	// indefinitely on current cash generation.
	UnlimitedRunwayMonths = 999.0

	// breakEvenRevenueShare is the fixed heuristic: operations break even
	// at 70% of baseline revenue.
	breakEvenRevenueShare = 0.7

	defaultCashMultiple = 2.0
	defaultCapexOfOCF   = 0.3
	minRecoveryMonths   = 6.0
)
