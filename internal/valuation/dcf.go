package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"

	"finsight/internal/errors"
)

// DCFEngine projects cash flows and discounts them to an enterprise and
// equity value. Stateless and deterministic.
type DCFEngine struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDCFEngine creates a DCF engine
func NewDCFEngine(logger *slog.Logger) *DCFEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &DCFEngine{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Value runs the full DCF: explicit-horizon projection, Gordon-growth
// terminal value, and the 5x5 sensitivity grid.
func (e *DCFEngine) Value(ctx context.Context, inputs DCFInputs) (*DCFResult, error) {
	if err := e.validate.Struct(inputs); err != nil {
		e.logger.ErrorContext(ctx, "dcf input validation failed", "error", err)
		return nil, errors.NewValidationError("invalid DCF inputs", err)
	}
	if inputs.DiscountRate <= inputs.TerminalGrowthRate {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("discount rate %.2f%% must exceed terminal growth rate %.2f%%",
				inputs.DiscountRate, inputs.TerminalGrowthRate), nil).
			WithContext("discount_rate", inputs.DiscountRate).
			WithContext("terminal_growth_rate", inputs.TerminalGrowthRate)
	}

	r := inputs.DiscountRate / 100
	g := inputs.TerminalGrowthRate / 100

	projections := make([]YearProjection, inputs.ProjectionYears)
	cf := inputs.InitialCashFlow
	sumPV := 0.0
	for i := 0; i < inputs.ProjectionYears; i++ {
		cf *= 1 + growthForYear(inputs.RevenueGrowthRates, i)/100
		pv := cf / math.Pow(1+r, float64(i+1))
		projections[i] = YearProjection{Year: i + 1, CashFlow: cf, PresentValue: pv}
		sumPV += pv
	}

	finalCF := projections[inputs.ProjectionYears-1].CashFlow
	terminalValue := finalCF * (1 + g) / (r - g)
	terminalPV := terminalValue / math.Pow(1+r, float64(inputs.ProjectionYears))

	enterpriseValue := sumPV + terminalPV
	equityValue := enterpriseValue - inputs.NetDebt

	result := &DCFResult{
		Projections:     projections,
		TerminalValue:   terminalValue,
		TerminalPV:      terminalPV,
		EnterpriseValue: enterpriseValue,
		EquityValue:     equityValue,
		ValuePerShare:   equityValue / inputs.SharesOutstanding,
		Sensitivity:     e.sensitivityGrid(inputs),
	}
	if enterpriseValue != 0 {
		result.TerminalValuePercent = 100 * terminalPV / enterpriseValue
	}
	if inputs.InitialCashFlow != 0 {
		result.ImpliedMultiple = enterpriseValue / inputs.InitialCashFlow
	}

	e.logger.InfoContext(ctx, "dcf valuation completed",
		"enterprise_value", enterpriseValue,
		"value_per_share", result.ValuePerShare,
		"terminal_value_percent", result.TerminalValuePercent,
	)

	return result, nil
}

// growthForYear resolves the growth rate for year index i: the last array
// element repeats for any year beyond the array.
func growthForYear(rates []float64, i int) float64 {
	if i < len(rates) {
		return rates[i]
	}
	return rates[len(rates)-1]
}

// sensitivityGrid recomputes the valuation across terminal-growth and
// discount-rate offsets. Unlike the base case, each cell prices the explicit
// horizon with the closed-form level annuity on the initial cash flow. The
// two paths disagree on purpose: downstream consumers depend on the grid's
// numbers, so the approximation is preserved rather than unified with the
// per-year projection.
func (e *DCFEngine) sensitivityGrid(inputs DCFInputs) SensitivityMatrix {
	growths := make([]float64, len(sensitivityOffsets))
	discounts := make([]float64, len(sensitivityOffsets))
	for i, off := range sensitivityOffsets {
		growths[i] = inputs.TerminalGrowthRate + off
		discounts[i] = inputs.DiscountRate + off
	}

	years := float64(inputs.ProjectionYears)
	values := make([][]float64, len(growths))
	for gi, growth := range growths {
		row := make([]float64, len(discounts))
		for di, discount := range discounts {
			row[di] = e.sensitivityCell(inputs, growth, discount, years)
		}
		values[gi] = row
	}

	return SensitivityMatrix{
		GrowthRates:    growths,
		DiscountRates:  discounts,
		ValuesPerShare: values,
	}
}

// sensitivityCell prices one growth/discount pair. Pairs where the discount
// rate does not exceed the growth rate (or is non-positive) have no finite
// perpetuity value and resolve to 0.
func (e *DCFEngine) sensitivityCell(inputs DCFInputs, growthPct, discountPct, years float64) float64 {
	r := discountPct / 100
	g := growthPct / 100
	if r <= 0 || r <= g {
		return 0
	}

	totalPV := inputs.InitialCashFlow / r * (1 - 1/math.Pow(1+r, years))

	terminalValue := inputs.InitialCashFlow * (1 + g) / (r - g)
	terminalPV := terminalValue / math.Pow(1+r, years)

	equity := totalPV + terminalPV - inputs.NetDebt
	return equity / inputs.SharesOutstanding
}
