package cashflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/dataset"
	"finsight/internal/errors"
	"finsight/pkg/contracts/domain"
)

func newDataset(t *testing.T, series map[dataset.Field][]float64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(series)
	require.NoError(t, err)
	return ds
}

func healthyDataset(t *testing.T) *dataset.Dataset {
	return newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue:           {1000, 1100, 1210},
		dataset.FieldCOGS:              {600, 650, 700},
		dataset.FieldNetIncome:         {80, 95, 120},
		dataset.FieldOperatingCashFlow: {100, 120, 150},
		dataset.FieldCapEx:             {30, 35, 40},
		dataset.FieldDividends:         {20, 20, 20},
		dataset.FieldTotalDebt:         {300, 300, 300},
	})
}

func TestAnalyze_MissingRequiredField(t *testing.T) {
	ds := newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue: {100},
	})

	_, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestAnalyze_QualityRatios(t *testing.T) {
	analysis, err := NewEngine(nil).Analyze(context.Background(), healthyDataset(t))
	require.NoError(t, err)

	latest := analysis.Latest()
	assert.Equal(t, 110.0, latest.FreeCashFlow)
	assert.InDelta(t, 125.0, latest.OCFToNetIncome, 1e-9)
	assert.InDelta(t, 100*150.0/1210, latest.OCFToRevenue, 1e-9)
	assert.InDelta(t, 100*110.0/1210, latest.FCFYield, 1e-9)
	assert.InDelta(t, 0.5, latest.DebtCoverage, 1e-9)
	assert.InDelta(t, 7.5, latest.DividendCoverage, 1e-9)
	assert.InDelta(t, 100*40.0/150, latest.ReinvestmentRate, 1e-9)

	// FCF grew from 85 to 110
	assert.InDelta(t, 100*25.0/85, latest.FCFGrowthRate, 1e-9)
	// First period has no growth figure
	assert.Equal(t, 0.0, analysis.Metrics[0].FCFGrowthRate)

	assert.Equal(t, domain.RatingExcellent, latest.Health)
}

func TestAnalyze_Stability(t *testing.T) {
	analysis, err := NewEngine(nil).Analyze(context.Background(), healthyDataset(t))
	require.NoError(t, err)
	// OCF {100,120,150}: mean 123.33, population stddev 20.55
	assert.InDelta(t, 16.66, analysis.OCFStability, 0.01)

	t.Run("flat series has zero variation", func(t *testing.T) {
		ds := newDataset(t, map[dataset.Field][]float64{
			dataset.FieldRevenue:           {1000, 1000},
			dataset.FieldNetIncome:         {50, 50},
			dataset.FieldOperatingCashFlow: {80, 80},
		})
		analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
		require.NoError(t, err)
		assert.Equal(t, 0.0, analysis.OCFStability)
	})
}

func TestAnalyze_SustainabilityScore(t *testing.T) {
	tests := []struct {
		name     string
		series   map[dataset.Field][]float64
		expected float64
	}{
		{
			// +25 OCF, +25 FCF, +20 OCF/NI>100, +10 yield in (5,10], +15 low capex
			name: "strong generator",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:           {1210},
				dataset.FieldNetIncome:         {120},
				dataset.FieldOperatingCashFlow: {150},
				dataset.FieldCapEx:             {40},
			},
			expected: 95,
		},
		{
			// +25 OCF, +25 FCF (capex defaults to 0), +20, +15 yield >10, +15
			name: "no capex supplied",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:           {1000},
				dataset.FieldNetIncome:         {100},
				dataset.FieldOperatingCashFlow: {110},
			},
			expected: 100,
		},
		{
			// only the low-capex tier scores
			name: "cash burner",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:           {1000},
				dataset.FieldNetIncome:         {100},
				dataset.FieldOperatingCashFlow: {-50},
			},
			expected: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := NewEngine(nil).Analyze(context.Background(), newDataset(t, tt.series))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, analysis.SustainabilityScore)
		})
	}
}

func TestAnalyze_Alerts(t *testing.T) {
	t.Run("healthy company has no alerts", func(t *testing.T) {
		analysis, err := NewEngine(nil).Analyze(context.Background(), healthyDataset(t))
		require.NoError(t, err)
		assert.Empty(t, analysis.Alerts)
	})

	t.Run("cash burner", func(t *testing.T) {
		ds := newDataset(t, map[dataset.Field][]float64{
			dataset.FieldRevenue:           {1000},
			dataset.FieldNetIncome:         {100},
			dataset.FieldOperatingCashFlow: {-50},
			dataset.FieldCapEx:             {250},
		})
		analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
		require.NoError(t, err)

		metrics := map[string]domain.Severity{}
		for _, a := range analysis.Alerts {
			metrics[a.Metric] = a.Severity
		}
		assert.Equal(t, domain.SeverityDanger, metrics["ocfToNetIncome"])
		assert.Equal(t, domain.SeverityWarning, metrics["freeCashFlow"])
		assert.Equal(t, domain.SeverityInfo, metrics["capexToRevenue"])
		assert.Equal(t, domain.SeverityDanger, metrics["operatingCashFlow"])
		assert.Equal(t, domain.RatingPoor, analysis.Latest().Health)
	})
}

func TestAnalyze_WorkingCapitalEstimated(t *testing.T) {
	analysis, err := NewEngine(nil).Analyze(context.Background(), healthyDataset(t))
	require.NoError(t, err)

	wc := analysis.WorkingCapital
	assert.True(t, wc.Estimated)
	require.Len(t, wc.Periods, 3)

	latest := wc.Periods[2]
	// AR = 12% of 1210, Inventory = 15% of 700, AP = 10% of 700
	assert.InDelta(t, 145.2, latest.Receivables, 1e-9)
	assert.InDelta(t, 105.0, latest.Inventory, 1e-9)
	assert.InDelta(t, 70.0, latest.Payables, 1e-9)
	assert.InDelta(t, 180.2, latest.WorkingCapital, 1e-9)

	// Estimated balances make the day counts exact fractions of 365
	assert.InDelta(t, 365*0.12, latest.DSO, 1e-9)
	assert.InDelta(t, 365*0.15, latest.DIO, 1e-9)
	assert.InDelta(t, 365*0.10, latest.DPO, 1e-9)
	assert.InDelta(t, latest.DSO+latest.DIO-latest.DPO, latest.CCC, 1e-9)

	// CCC of 62.05 days lands in the 60-90 band
	assert.Equal(t, 60.0, wc.EfficiencyScore)

	assert.Equal(t, WCTrendBaseline, wc.Periods[0].Trend)
	assert.Equal(t, WCTrendStable, wc.Periods[1].Trend)
}

func TestAnalyze_WorkingCapitalSupplied(t *testing.T) {
	ds := newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue:            {1000, 1000},
		dataset.FieldCOGS:               {600, 600},
		dataset.FieldNetIncome:          {80, 80},
		dataset.FieldOperatingCashFlow:  {100, 100},
		dataset.FieldAccountsReceivable: {50, 80},
		dataset.FieldInventory:          {40, 40},
		dataset.FieldAccountsPayable:    {30, 30},
	})

	analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.NoError(t, err)

	wc := analysis.WorkingCapital
	assert.False(t, wc.Estimated)
	assert.InDelta(t, 60.0, wc.Periods[0].WorkingCapital, 1e-9)
	assert.InDelta(t, 90.0, wc.Periods[1].WorkingCapital, 1e-9)
	// +50% working capital move
	assert.Equal(t, WCTrendIncreasing, wc.Periods[1].Trend)
	// DSO = 365 / (1000/80)
	assert.InDelta(t, 365*80.0/1000, wc.Periods[1].DSO, 1e-9)
	// CCC = 29.2 + 24.33 - 18.25 = 35.28 -> 80 band
	assert.Equal(t, 80.0, wc.EfficiencyScore)
}

func TestAnalyze_DegenerateDenominators(t *testing.T) {
	ds := newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue:           {0},
		dataset.FieldNetIncome:         {0},
		dataset.FieldOperatingCashFlow: {50},
	})

	analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.NoError(t, err)

	latest := analysis.Latest()
	assert.Equal(t, 0.0, latest.OCFToNetIncome)
	assert.Equal(t, 0.0, latest.OCFToRevenue)
	assert.Equal(t, 0.0, latest.DividendCoverage)
	assert.Equal(t, 0.0, latest.DebtCoverage)
}

func TestAnalyze_Idempotent(t *testing.T) {
	engine := NewEngine(nil)
	ds := healthyDataset(t)

	first, err := engine.Analyze(context.Background(), ds)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
