package valuation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/errors"
)

// levelCashFlowInputs is the documented worked example: a flat 100 cash
// flow for five years discounted at 10% with no terminal growth. The
// closed-form enterprise value is exactly 1000.
func levelCashFlowInputs() DCFInputs {
	return DCFInputs{
		InitialCashFlow:    100,
		ProjectionYears:    5,
		RevenueGrowthRates: []float64{0, 0, 0, 0, 0},
		TerminalGrowthRate: 0,
		DiscountRate:       10,
		NetDebt:            0,
		SharesOutstanding:  1,
	}
}

func TestDCFValue_LevelCashFlowClosedForm(t *testing.T) {
	result, err := NewDCFEngine(nil).Value(context.Background(), levelCashFlowInputs())
	require.NoError(t, err)

	require.Len(t, result.Projections, 5)
	for i, p := range result.Projections {
		assert.Equal(t, i+1, p.Year)
		assert.InDelta(t, 100.0, p.CashFlow, 1e-9)
		assert.InDelta(t, 100/math.Pow(1.1, float64(i+1)), p.PresentValue, 1e-9)
	}

	// Perpetuity: 100/0.10 = 1000, discounted five years back.
	assert.InDelta(t, 1000.0, result.TerminalValue, 1e-9)
	assert.InDelta(t, 1000/math.Pow(1.1, 5), result.TerminalPV, 1e-9)

	// Explicit PVs plus terminal PV telescope to the perpetuity value.
	assert.InDelta(t, 1000.0, result.EnterpriseValue, 1e-9)
	assert.InDelta(t, 1000.0, result.EquityValue, 1e-9)
	assert.InDelta(t, 1000.0, result.ValuePerShare, 1e-9)
	assert.InDelta(t, 10.0, result.ImpliedMultiple, 1e-9)
	assert.InDelta(t, 100*result.TerminalPV/1000.0, result.TerminalValuePercent, 1e-9)
}

func TestDCFValue_DiscountRateMustExceedTerminalGrowth(t *testing.T) {
	inputs := levelCashFlowInputs()
	inputs.DiscountRate = 2
	inputs.TerminalGrowthRate = 3

	_, err := NewDCFEngine(nil).Value(context.Background(), inputs)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	// Equality is just as degenerate as inversion.
	inputs.TerminalGrowthRate = 2
	_, err = NewDCFEngine(nil).Value(context.Background(), inputs)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestDCFValue_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DCFInputs)
	}{
		{"zero shares", func(in *DCFInputs) { in.SharesOutstanding = 0 }},
		{"zero projection years", func(in *DCFInputs) { in.ProjectionYears = 0 }},
		{"no growth rates", func(in *DCFInputs) { in.RevenueGrowthRates = nil }},
		{"zero discount rate", func(in *DCFInputs) { in.DiscountRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := levelCashFlowInputs()
			tt.mutate(&inputs)

			_, err := NewDCFEngine(nil).Value(context.Background(), inputs)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestDCFValue_LastGrowthRateRepeats(t *testing.T) {
	inputs := DCFInputs{
		InitialCashFlow:    100,
		ProjectionYears:    3,
		RevenueGrowthRates: []float64{10},
		TerminalGrowthRate: 2,
		DiscountRate:       12,
		SharesOutstanding:  10,
	}

	result, err := NewDCFEngine(nil).Value(context.Background(), inputs)
	require.NoError(t, err)

	require.Len(t, result.Projections, 3)
	assert.InDelta(t, 110.0, result.Projections[0].CashFlow, 1e-9)
	assert.InDelta(t, 121.0, result.Projections[1].CashFlow, 1e-9)
	assert.InDelta(t, 133.1, result.Projections[2].CashFlow, 1e-9)
}

func TestDCFValue_NetDebtReducesEquity(t *testing.T) {
	inputs := levelCashFlowInputs()
	inputs.NetDebt = 400
	inputs.SharesOutstanding = 10

	result, err := NewDCFEngine(nil).Value(context.Background(), inputs)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, result.EnterpriseValue, 1e-9)
	assert.InDelta(t, 600.0, result.EquityValue, 1e-9)
	assert.InDelta(t, 60.0, result.ValuePerShare, 1e-9)
}

func TestSensitivityGrid_ShapeAndCenter(t *testing.T) {
	result, err := NewDCFEngine(nil).Value(context.Background(), levelCashFlowInputs())
	require.NoError(t, err)

	grid := result.Sensitivity
	require.Len(t, grid.GrowthRates, 5)
	require.Len(t, grid.DiscountRates, 5)
	require.Len(t, grid.ValuesPerShare, 5)
	for _, row := range grid.ValuesPerShare {
		require.Len(t, row, 5)
	}

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, grid.GrowthRates)
	assert.Equal(t, []float64{9, 9.5, 10, 10.5, 11}, grid.DiscountRates)

	// With a level cash flow the grid's annuity shortcut agrees with the
	// per-year projection, so the center cell matches the base valuation.
	assert.InDelta(t, result.ValuePerShare, grid.ValuesPerShare[2][2], 1e-9)
}

func TestSensitivityGrid_DegeneratePairsResolveToZero(t *testing.T) {
	inputs := levelCashFlowInputs()
	inputs.TerminalGrowthRate = 9.5

	result, err := NewDCFEngine(nil).Value(context.Background(), inputs)
	require.NoError(t, err)

	grid := result.Sensitivity
	// Top growth offset against the lowest discount offset inverts the
	// Gordon denominator; those cells are zero rather than negative.
	assert.Zero(t, grid.ValuesPerShare[4][0])
	assert.Zero(t, grid.ValuesPerShare[4][1])
	assert.Greater(t, grid.ValuesPerShare[0][4], 0.0)
}

func TestDCFValue_Deterministic(t *testing.T) {
	engine := NewDCFEngine(nil)
	first, err := engine.Value(context.Background(), levelCashFlowInputs())
	require.NoError(t, err)
	second, err := engine.Value(context.Background(), levelCashFlowInputs())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
