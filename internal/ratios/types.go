package ratios

import (
	"finsight/pkg/contracts/domain"
)

// PeriodRatios holds the ratio set for a single reporting period. Margins and
// returns are percentages; leverage and turnover figures are plain ratios.
type PeriodRatios struct {
	Period int `json:"period"`

	// Profitability
	GrossMargin float64 `json:"gross_margin"` // 100 * (Revenue - COGS) / Revenue
	NetMargin   float64 `json:"net_margin"`   // 100 * Net Income / Revenue
	ROA         float64 `json:"roa"`          // 100 * Net Income / Total Assets
	ROE         float64 `json:"roe"`          // 100 * Net Income / Shareholders Equity

	// Leverage
	DebtToEquity     float64 `json:"debt_to_equity"`    // Total Liabilities / Equity
	DebtToAssets     float64 `json:"debt_to_assets"`    // Total Liabilities / Assets
	EquityMultiplier float64 `json:"equity_multiplier"` // Assets / Equity

	// Efficiency
	AssetTurnover float64 `json:"asset_turnover"` // Revenue / Assets

	// DuPont decomposition: net margin x asset turnover x equity multiplier.
	// Computed from the same guarded components as the direct ratios, so it
	// reconciles with ROE whenever equity and assets are positive.
	DuPontROE float64 `json:"dupont_roe"`

	// Qualitative classifiers
	EarningsQuality   domain.Rating `json:"earnings_quality"`
	GrowthTrend       GrowthTrend   `json:"growth_trend"`
	FinancialStrength domain.Rating `json:"financial_strength"`
}

// GrowthTrend classifies period-over-period revenue growth
type GrowthTrend string

const (
	GrowthStrong    GrowthTrend = "Strong"    // > +10%
	GrowthModerate  GrowthTrend = "Moderate"  // > 0%
	GrowthStable    GrowthTrend = "Stable"    // > -5%
	GrowthDeclining GrowthTrend = "Declining" // <= -5%
)

// HealthSummary condenses the whole series into a single health snapshot
type HealthSummary struct {
	RevenueCAGR   float64          `json:"revenue_cagr"` // percent, 0 when N < 2
	AvgROE        float64          `json:"avg_roe"`
	AvgROA        float64          `json:"avg_roa"`
	DebtLevel     domain.DebtLevel `json:"debt_level"`
	OverallHealth domain.Rating    `json:"overall_health"`
}

// Analysis is the full ratio-analysis result: per-period ratios, advisory
// alerts for the latest period, and the series-level health summary.
type Analysis struct {
	Ratios  []PeriodRatios `json:"ratios"`
	Alerts  []domain.Alert `json:"alerts"`
	Summary HealthSummary  `json:"summary"`
}

// Latest returns the most recent period's ratios.
func (a *Analysis) Latest() PeriodRatios {
	return a.Ratios[len(a.Ratios)-1]
}

// Alert thresholds for the latest period
const (
	grossMarginDangerBelow  = 20.0
	roeDropWarningPct       = 20.0
	debtToAssetsWarnAbove   = 0.6
	debtToAssetsLowCeiling  = 0.4
	debtToAssetsMedCeiling  = 0.6
	healthPointsPerCriteria = 25.0
)
