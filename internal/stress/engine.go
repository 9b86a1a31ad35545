package stress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"finsight/internal/errors"
)

// Engine applies shock scenarios to baseline metrics. Stateless and
// deterministic: the same baseline and scenario always produce the same
// result.
type Engine struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewEngine creates a stress-test engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Run applies the scenario to the baseline and computes the survival
// analysis and recommendations.
func (e *Engine) Run(ctx context.Context, baseline Baseline, scenario Scenario) (*Result, error) {
	if err := e.validate.Struct(scenario); err != nil {
		e.logger.ErrorContext(ctx, "stress scenario validation failed",
			"scenario", scenario.Name, "error", err)
		return nil, errors.NewValidationError(
			fmt.Sprintf("invalid stress scenario %q", scenario.Name), err)
	}

	baseCash := baseline.OperatingCashFlow * defaultCashMultiple
	if baseline.Cash != nil {
		baseCash = *baseline.Cash
	}
	baseCapex := math.Abs(baseline.OperatingCashFlow) * defaultCapexOfOCF
	if baseline.Capex != nil {
		baseCapex = *baseline.Capex
	}

	stressedRevenue := baseline.Revenue * (1 + scenario.RevenueShockPct/100)
	stressedOCF := baseline.OperatingCashFlow * (1 + scenario.RevenueShockPct/100) *
		(1 - scenario.MarginPressureBps/10000)
	wcImpact := stressedRevenue * (scenario.WorkingCapitalImpactPct / 100)
	stressedCapex := baseCapex * (1 + scenario.CapexChangePct/100)
	stressedFCF := stressedOCF - stressedCapex - wcImpact

	result := &Result{
		Scenario:             scenario,
		StressedRevenue:      stressedRevenue,
		StressedOCF:          stressedOCF,
		StressedCapex:        stressedCapex,
		WorkingCapitalImpact: wcImpact,
		StressedFCF:          stressedFCF,
		Survival:             analyzeSurvival(baseline.Revenue, stressedRevenue, stressedFCF, baseCash, scenario),
	}
	result.Recommendations = recommend(result)

	e.logger.InfoContext(ctx, "stress scenario applied",
		"scenario", scenario.Name,
		"stressed_fcf", stressedFCF,
		"months_of_cash", result.Survival.MonthsOfCashRemaining,
	)

	return result, nil
}

// RunCatalogue runs every catalogue scenario against the baseline.
func (e *Engine) RunCatalogue(ctx context.Context, baseline Baseline) ([]*Result, error) {
	scenarios := Catalogue()
	results := make([]*Result, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := e.Run(ctx, baseline, scenario)
		if err != nil {
			return nil, fmt.Errorf("run scenario %q: %w", scenario.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// analyzeSurvival computes runway, break-even gap, and recovery horizon
func analyzeSurvival(baseRevenue, stressedRevenue, stressedFCF, cash float64, scenario Scenario) Survival {
	monthlyBurn := 0.0
	if stressedFCF < 0 {
		monthlyBurn = math.Abs(stressedFCF) / 12
	}

	monthsOfCash := UnlimitedRunwayMonths
	if monthlyBurn > 0 {
		monthsOfCash = cash / monthlyBurn
	}

	breakEvenGap := 0.0
	if stressedRevenue > 0 {
		breakEvenGap = 100 * (breakEvenRevenueShare*baseRevenue - stressedRevenue) / stressedRevenue
	}

	return Survival{
		MonthsOfCashRemaining: monthsOfCash,
		BreakEvenGapPct:       breakEvenGap,
		RecoveryMonths:        math.Max(minRecoveryMonths, math.Abs(scenario.RevenueShockPct)/2),
	}
}

// recommend builds the rule-based action list for a scenario result
func recommend(r *Result) []string {
	recs := make([]string, 0, 8)

	switch {
	case r.Survival.MonthsOfCashRemaining < 6:
		recs = append(recs,
			"Secure emergency financing immediately, runway is under six months",
			"Implement aggressive cost reductions across discretionary spend")
	case r.Survival.MonthsOfCashRemaining < 12:
		recs = append(recs,
			"Arrange precautionary credit lines before conditions deteriorate")
	}

	if r.StressedFCF < 0 {
		recs = append(recs,
			"Defer non-essential capital expenditure until cash flow recovers",
			"Accelerate receivables collection to shorten the cash cycle")
	}

	if math.Abs(r.Scenario.RevenueShockPct) > 20 {
		recs = append(recs,
			"Diversify revenue streams to reduce concentration in the shocked segment",
			"Build a contingency plan for a prolonged downturn")
	}

	if strings.Contains(r.Scenario.Name, "Recession") {
		recs = append(recs,
			"Defend market share with retention programs while competitors retrench")
	}
	if strings.Contains(r.Scenario.Name, "Disruption") {
		recs = append(recs,
			"Increase innovation investment to counter the disruptive threat")
	}

	return recs
}
