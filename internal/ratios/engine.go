package ratios

import (
	"context"
	"log/slog"
	"math"

	"finsight/internal/dataset"
	"finsight/pkg/contracts/domain"
)

// Engine computes ratio analyses. It holds no dataset state: every call
// receives its inputs explicitly and owns its result.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a ratio engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// requiredFields are the series a ratio analysis cannot run without
var requiredFields = []dataset.Field{
	dataset.FieldRevenue,
	dataset.FieldCOGS,
	dataset.FieldNetIncome,
	dataset.FieldTotalAssets,
	dataset.FieldTotalLiabilities,
	dataset.FieldShareholdersEquity,
}

// Analyze computes per-period ratios, latest-period alerts, and the health
// summary for the dataset.
func (e *Engine) Analyze(ctx context.Context, ds *dataset.Dataset) (*Analysis, error) {
	if err := ds.Require(requiredFields...); err != nil {
		e.logger.ErrorContext(ctx, "ratio analysis input validation failed", "error", err)
		return nil, err
	}

	revenue := ds.Series(dataset.FieldRevenue)
	cogs := ds.Series(dataset.FieldCOGS)
	netIncome := ds.Series(dataset.FieldNetIncome)
	assets := ds.Series(dataset.FieldTotalAssets)
	liabilities := ds.Series(dataset.FieldTotalLiabilities)
	equity := ds.Series(dataset.FieldShareholdersEquity)

	periods := ds.Periods()
	ratioSet := make([]PeriodRatios, periods)

	for t := 0; t < periods; t++ {
		grossProfit := revenue[t] - cogs[t]

		r := PeriodRatios{
			Period:           t,
			GrossMargin:      100 * guardedRatio(grossProfit, revenue[t]),
			NetMargin:        100 * guardedRatio(netIncome[t], revenue[t]),
			ROA:              100 * guardedRatio(netIncome[t], assets[t]),
			ROE:              100 * guardedRatio(netIncome[t], equity[t]),
			DebtToEquity:     guardedRatio(liabilities[t], equity[t]),
			DebtToAssets:     guardedRatio(liabilities[t], assets[t]),
			EquityMultiplier: guardedRatio(assets[t], equity[t]),
			AssetTurnover:    guardedRatio(revenue[t], assets[t]),
		}

		// DuPont identity reuses the already-guarded components so the
		// decomposition reconciles with the direct ROE without an
		// independent rounding path.
		r.DuPontROE = (r.NetMargin / 100) * r.AssetTurnover * r.EquityMultiplier * 100

		growth := 0.0
		if t > 0 {
			growth = 100 * guardedRatio(revenue[t]-revenue[t-1], revenue[t-1])
		}
		r.EarningsQuality = classifyEarningsQuality(r.NetMargin)
		r.GrowthTrend = classifyGrowthTrend(growth)
		r.FinancialStrength = classifyFinancialStrength(r.ROE, r.GrossMargin)

		ratioSet[t] = r
	}

	analysis := &Analysis{
		Ratios:  ratioSet,
		Alerts:  buildAlerts(ratioSet),
		Summary: summarize(revenue, ratioSet),
	}

	e.logger.InfoContext(ctx, "ratio analysis completed",
		"periods", periods,
		"alerts", len(analysis.Alerts),
		"overall_health", string(analysis.Summary.OverallHealth),
	)

	return analysis, nil
}

// guardedRatio resolves num/den, treating a non-positive denominator as a
// degenerate ratio worth 0 rather than an error.
func guardedRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// classifyEarningsQuality rates the period on net margin
func classifyEarningsQuality(netMargin float64) domain.Rating {
	switch {
	case netMargin > 5:
		return domain.RatingGood
	case netMargin > 0:
		return domain.RatingFair
	default:
		return domain.RatingPoor
	}
}

// classifyGrowthTrend rates period-over-period revenue growth. The first
// period has no prior to compare against and classifies as Stable.
func classifyGrowthTrend(growthPct float64) GrowthTrend {
	switch {
	case growthPct > 10:
		return GrowthStrong
	case growthPct > 0:
		return GrowthModerate
	case growthPct > -5:
		return GrowthStable
	default:
		return GrowthDeclining
	}
}

// classifyFinancialStrength combines returns and margin into four tiers
func classifyFinancialStrength(roe, grossMargin float64) domain.Rating {
	switch {
	case roe > 15 && grossMargin > 30:
		return domain.RatingExcellent
	case roe > 10 && grossMargin > 20:
		return domain.RatingGood
	case roe > 5 || grossMargin > 10:
		return domain.RatingFair
	default:
		return domain.RatingPoor
	}
}

// buildAlerts evaluates the latest-period alert rules
func buildAlerts(ratioSet []PeriodRatios) []domain.Alert {
	latest := ratioSet[len(ratioSet)-1]
	alerts := make([]domain.Alert, 0, 4)

	if latest.GrossMargin < grossMarginDangerBelow {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityDanger,
			Message:  "Gross margin below 20%, pricing power or cost structure is under pressure",
			Metric:   "grossMargin",
			Value:    latest.GrossMargin,
		})
	}

	if len(ratioSet) >= 2 {
		prior := ratioSet[len(ratioSet)-2]
		if prior.ROE != 0 {
			drop := 100 * (prior.ROE - latest.ROE) / math.Abs(prior.ROE)
			if drop > roeDropWarningPct {
				alerts = append(alerts, domain.Alert{
					Severity: domain.SeverityWarning,
					Message:  "Return on equity dropped more than 20% versus the prior period",
					Metric:   "roe",
					Value:    latest.ROE,
				})
			}
		}
	}

	if latest.DebtToAssets > debtToAssetsWarnAbove {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityWarning,
			Message:  "Debt finances more than 60% of assets",
			Metric:   "debtToAssets",
			Value:    latest.DebtToAssets,
		})
	}

	if latest.NetMargin < 0 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityDanger,
			Message:  "Negative net margin, the company is operating at a loss",
			Metric:   "netMargin",
			Value:    latest.NetMargin,
		})
	}

	return alerts
}

// summarize condenses the series into the health summary
func summarize(revenue []float64, ratioSet []PeriodRatios) HealthSummary {
	n := len(ratioSet)

	var sumROE, sumROA, sumDTA float64
	for _, r := range ratioSet {
		sumROE += r.ROE
		sumROA += r.ROA
		sumDTA += r.DebtToAssets
	}
	avgROE := sumROE / float64(n)
	avgROA := sumROA / float64(n)
	avgDTA := sumDTA / float64(n)

	cagr := 0.0
	if n >= 2 && revenue[0] > 0 && revenue[n-1] > 0 {
		cagr = 100 * (math.Pow(revenue[n-1]/revenue[0], 1/float64(n-1)) - 1)
	}

	var debtLevel domain.DebtLevel
	switch {
	case avgDTA <= debtToAssetsLowCeiling:
		debtLevel = domain.DebtLevelLow
	case avgDTA <= debtToAssetsMedCeiling:
		debtLevel = domain.DebtLevelMedium
	default:
		debtLevel = domain.DebtLevelHigh
	}

	score := 0.0
	if cagr > 5 {
		score += healthPointsPerCriteria
	}
	if avgROE > 10 {
		score += healthPointsPerCriteria
	}
	if avgROA > 5 {
		score += healthPointsPerCriteria
	}
	if debtLevel == domain.DebtLevelLow {
		score += healthPointsPerCriteria
	}

	var overall domain.Rating
	switch {
	case score >= 75:
		overall = domain.RatingExcellent
	case score >= 50:
		overall = domain.RatingGood
	case score >= 25:
		overall = domain.RatingFair
	default:
		overall = domain.RatingPoor
	}

	return HealthSummary{
		RevenueCAGR:   cagr,
		AvgROE:        avgROE,
		AvgROA:        avgROA,
		DebtLevel:     debtLevel,
		OverallHealth: overall,
	}
}
