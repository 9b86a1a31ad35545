package cashflow

import (
	"context"
	"log/slog"
	"math"

	"finsight/internal/dataset"
	"finsight/pkg/contracts/domain"
)

// Engine computes cash-flow quality and working-capital analyses. Stateless;
// every call receives its dataset explicitly.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a cash-flow engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Analyze computes per-period cash-flow metrics, the series-level stability
// figure, the latest-period sustainability score and alerts, and the
// working-capital sub-analysis.
func (e *Engine) Analyze(ctx context.Context, ds *dataset.Dataset) (*Analysis, error) {
	if err := ds.Require(
		dataset.FieldOperatingCashFlow,
		dataset.FieldNetIncome,
		dataset.FieldRevenue,
	); err != nil {
		e.logger.ErrorContext(ctx, "cash flow analysis input validation failed", "error", err)
		return nil, err
	}

	ocf := ds.Series(dataset.FieldOperatingCashFlow)
	netIncome := ds.Series(dataset.FieldNetIncome)
	revenue := ds.Series(dataset.FieldRevenue)
	capex := ds.SeriesOr(dataset.FieldCapEx, 0)
	dividends := ds.SeriesOr(dataset.FieldDividends, 0)

	// Coverage runs against total debt when available, otherwise total
	// liabilities stands in.
	debt := ds.Series(dataset.FieldTotalDebt)
	if debt == nil {
		debt = ds.SeriesOr(dataset.FieldTotalLiabilities, 0)
	}

	periods := ds.Periods()
	metrics := make([]PeriodMetrics, periods)
	fcf := make([]float64, periods)

	for t := 0; t < periods; t++ {
		fcf[t] = ocf[t] - capex[t]

		m := PeriodMetrics{
			Period:            t,
			OperatingCashFlow: ocf[t],
			FreeCashFlow:      fcf[t],
			OCFToNetIncome:    100 * guardedRatio(ocf[t], netIncome[t]),
			OCFToRevenue:      100 * guardedRatio(ocf[t], revenue[t]),
			FCFYield:          100 * guardedRatio(fcf[t], revenue[t]),
			CapexToRevenue:    100 * guardedRatio(capex[t], revenue[t]),
			DebtCoverage:      guardedRatio(ocf[t], debt[t]),
			DividendCoverage:  guardedRatio(ocf[t], dividends[t]),
			ReinvestmentRate:  100 * guardedRatio(capex[t], ocf[t]),
		}

		if t > 0 && fcf[t-1] != 0 {
			m.FCFGrowthRate = 100 * (fcf[t] - fcf[t-1]) / math.Abs(fcf[t-1])
		}

		m.Health = classifyHealth(ocf[t], fcf[t], m.OCFToNetIncome)
		metrics[t] = m
	}

	latest := metrics[periods-1]
	analysis := &Analysis{
		Metrics:             metrics,
		OCFStability:        coefficientOfVariation(ocf),
		SustainabilityScore: sustainabilityScore(latest),
		Alerts:              buildAlerts(latest),
		WorkingCapital:      e.analyzeWorkingCapital(ds),
	}

	e.logger.InfoContext(ctx, "cash flow analysis completed",
		"periods", periods,
		"sustainability_score", analysis.SustainabilityScore,
		"wc_estimated", analysis.WorkingCapital.Estimated,
		"alerts", len(analysis.Alerts),
	)

	return analysis, nil
}

// guardedRatio resolves num/den with the degenerate-denominator policy:
// den <= 0 yields 0.
func guardedRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// classifyHealth rates one period on cash generation. Negative operating cash
// flow is always Poor; positive OCF climbs the ladder on free cash flow and
// earnings backing (OCF/NI above 80 then 60).
func classifyHealth(ocf, fcf, ocfToNI float64) domain.Rating {
	switch {
	case ocf <= 0:
		return domain.RatingPoor
	case fcf > 0 && ocfToNI > 80:
		return domain.RatingExcellent
	case fcf > 0 || ocfToNI > 60:
		return domain.RatingGood
	default:
		return domain.RatingFair
	}
}

// coefficientOfVariation returns stddev/|mean|*100 of the series, the single
// stability scalar for the analysis. A zero mean yields 0.
func coefficientOfVariation(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}

	sumSquared := 0.0
	for _, v := range values {
		sumSquared += (v - mean) * (v - mean)
	}
	stdDev := math.Sqrt(sumSquared / n)

	return stdDev / math.Abs(mean) * 100
}

// sustainabilityScore is the additive 0-100 score over the latest period
func sustainabilityScore(m PeriodMetrics) float64 {
	score := 0.0
	if m.OperatingCashFlow > 0 {
		score += 25
	}
	if m.FreeCashFlow > 0 {
		score += 25
	}
	if m.OCFToNetIncome > 100 {
		score += 20
	}
	switch {
	case m.FCFYield > 10:
		score += 15
	case m.FCFYield > 5:
		score += 10
	}
	switch {
	case m.CapexToRevenue < 10:
		score += 15
	case m.CapexToRevenue < 15:
		score += 10
	}
	return score
}

// buildAlerts evaluates the latest-period alert rules
func buildAlerts(m PeriodMetrics) []domain.Alert {
	alerts := make([]domain.Alert, 0, 4)

	if m.OCFToNetIncome < 50 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityDanger,
			Message:  "Operating cash flow covers less than half of reported earnings",
			Metric:   "ocfToNetIncome",
			Value:    m.OCFToNetIncome,
		})
	}
	if m.FreeCashFlow < 0 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityWarning,
			Message:  "Negative free cash flow, capital spending exceeds cash generation",
			Metric:   "freeCashFlow",
			Value:    m.FreeCashFlow,
		})
	}
	if m.CapexToRevenue > 20 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityInfo,
			Message:  "Capital expenditure above 20% of revenue, heavy reinvestment phase",
			Metric:   "capexToRevenue",
			Value:    m.CapexToRevenue,
		})
	}
	if m.OperatingCashFlow < 0 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.SeverityDanger,
			Message:  "Operations are consuming cash",
			Metric:   "operatingCashFlow",
			Value:    m.OperatingCashFlow,
		})
	}

	return alerts
}
