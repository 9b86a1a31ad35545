package valuation

import (
	"finsight/pkg/contracts/domain"
)

// DCFInputs is the assumption bundle for a discounted-cash-flow valuation.
// Rates are percentages (10 means 10%).
type DCFInputs struct {
	InitialCashFlow float64 `json:"initial_cash_flow" validate:"required"`
	ProjectionYears int     `json:"projection_years" validate:"gte=1"`

	// RevenueGrowthRates holds one growth rate per projection year; the last
	// element repeats for any year beyond the array.
	RevenueGrowthRates []float64 `json:"revenue_growth_rates" validate:"required,min=1"`

	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	DiscountRate       float64 `json:"discount_rate" validate:"gt=0"` // WACC
	NetDebt            float64 `json:"net_debt"`
	SharesOutstanding  float64 `json:"shares_outstanding" validate:"gt=0"`
}

// YearProjection is one explicit-horizon year of the DCF
type YearProjection struct {
	Year         int     `json:"year"` // 1-based
	CashFlow     float64 `json:"cash_flow"`
	PresentValue float64 `json:"present_value"`
}

// SensitivityMatrix is the 5x5 value-per-share grid over terminal growth and
// discount rate offsets. Rows follow GrowthRates, columns DiscountRates.
type SensitivityMatrix struct {
	GrowthRates    []float64   `json:"growth_rates"`
	DiscountRates  []float64   `json:"discount_rates"`
	ValuesPerShare [][]float64 `json:"values_per_share"`
}

// DCFResult holds the full valuation output
type DCFResult struct {
	Projections []YearProjection `json:"projections"`

	TerminalValue   float64 `json:"terminal_value"`
	TerminalPV      float64 `json:"terminal_pv"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	ValuePerShare   float64 `json:"value_per_share"`

	// TerminalValuePercent is the share of enterprise value contributed by
	// the terminal period.
	TerminalValuePercent float64 `json:"terminal_value_percent"`
	// ImpliedMultiple is enterprise value over the initial cash flow.
	ImpliedMultiple float64 `json:"implied_multiple"`

	Sensitivity SensitivityMatrix `json:"sensitivity"`
}

// ComparableCompany is one peer in the static reference catalogue.
// Financials are in millions; multiples are trading multiples.
type ComparableCompany struct {
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"`
	Revenue   float64 `json:"revenue"`
	EBITDA    float64 `json:"ebitda"`
	NetIncome float64 `json:"net_income"`
	BookValue float64 `json:"book_value"`

	PE          float64 `json:"pe"`
	EVToEBITDA  float64 `json:"ev_to_ebitda"`
	PriceToBook float64 `json:"price_to_book"`
}

// ComparableTarget carries the company figures the peer multiples apply to
type ComparableTarget struct {
	Revenue   float64 `json:"revenue"`
	EBITDA    float64 `json:"ebitda"`
	NetIncome float64 `json:"net_income"`
	BookValue float64 `json:"book_value"`
}

// MultipleStats summarizes one multiple across the filtered peer set
type MultipleStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// ComparableResult is the peer-multiple valuation output
type ComparableResult struct {
	// Industry is the peer group actually used. When the requested industry
	// is unknown this records the fallback group, so callers can detect the
	// silent substitution without an error.
	Industry  string `json:"industry"`
	PeerCount int    `json:"peer_count"`

	PE          MultipleStats `json:"pe"`
	EVToEBITDA  MultipleStats `json:"ev_to_ebitda"`
	PriceToBook MultipleStats `json:"price_to_book"`

	ImpliedValuationPE       float64 `json:"implied_valuation_pe"`
	ImpliedValuationEVEBITDA float64 `json:"implied_valuation_ev_ebitda"`
	ImpliedValuationPB       float64 `json:"implied_valuation_pb"`
	AverageValuation         float64 `json:"average_valuation"`

	Outliers        []string `json:"outliers"`
	Recommendations []string `json:"recommendations"`
}

// ComparableRequest pairs a target with the industry whose peers to use
type ComparableRequest struct {
	Industry string           `json:"industry" validate:"required"`
	Target   ComparableTarget `json:"target"`
}

// Request bundles the inputs for a combined valuation. Either half may be
// nil; at least one must be present.
type Request struct {
	DCF        *DCFInputs         `json:"dcf,omitempty"`
	Comparable *ComparableRequest `json:"comparable,omitempty"`
}

// Comparison reconciles the methods that ran
type Comparison struct {
	DCF        *DCFResult        `json:"dcf,omitempty"`
	Comparable *ComparableResult `json:"comparable,omitempty"`

	KeyAssumptions          []string               `json:"key_assumptions"`
	CombinedRecommendations []string               `json:"combined_recommendations"`
	RiskFactors             []string               `json:"risk_factors"`
	Confidence              domain.ConfidenceLevel `json:"confidence"`
}

// Sensitivity grid offsets applied to the base terminal growth and discount
// rate, in percentage points.
var sensitivityOffsets = []float64{-1, -0.5, 0, 0.5, 1}

// Multiple sanity bounds: values outside are excluded before averaging
const (
	peMax          = 100.0
	evToEBITDAMax  = 100.0
	priceToBookMax = 50.0
)

// Outlier bounds: peers outside are flagged in the result text
const (
	peOutlierLow          = 5.0
	peOutlierHigh         = 60.0
	evToEBITDAOutlierLow  = 5.0
	evToEBITDAOutlierHigh = 50.0
)
