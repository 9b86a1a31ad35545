package ratios

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

// threePeriodDataset is a healthy growing company used across tests
func threePeriodDataset(t *testing.T) *dataset.Dataset {
	return newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue:            {1000, 1100, 1210},
		dataset.FieldCOGS:               {600, 650, 700},
		dataset.FieldNetIncome:          {80, 95, 120},
		dataset.FieldTotalAssets:        {900, 950, 1000},
		dataset.FieldTotalLiabilities:   {300, 310, 320},
		dataset.FieldShareholdersEquity: {600, 640, 680},
	})
}

func TestAnalyze_MissingField(t *testing.T) {
	ds := newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue: {100},
	})

	_, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestAnalyze_GrossMarginExact(t *testing.T) {
	ds := threePeriodDataset(t)
	analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.NoError(t, err)

	revenue := []float64{1000, 1100, 1210}
	cogs := []float64{600, 650, 700}
	for t_, r := range analysis.Ratios {
		expected := 100 * (revenue[t_] - cogs[t_]) / revenue[t_]
		assert.Equal(t, expected, r.GrossMargin, "period %d", t_)
	}
}

func TestAnalyze_DuPontReconciles(t *testing.T) {
	tests := []struct {
		name   string
		series map[dataset.Field][]float64
	}{
		{
			name: "healthy company",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:            {1000, 1100},
				dataset.FieldCOGS:               {600, 650},
				dataset.FieldNetIncome:          {80, 95},
				dataset.FieldTotalAssets:        {900, 950},
				dataset.FieldTotalLiabilities:   {300, 310},
				dataset.FieldShareholdersEquity: {600, 640},
			},
		},
		{
			name: "lossmaking company",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:            {500},
				dataset.FieldCOGS:               {450},
				dataset.FieldNetIncome:          {-60},
				dataset.FieldTotalAssets:        {700},
				dataset.FieldTotalLiabilities:   {500},
				dataset.FieldShareholdersEquity: {200},
			},
		},
		{
			name: "odd magnitudes",
			series: map[dataset.Field][]float64{
				dataset.FieldRevenue:            {123456.78},
				dataset.FieldCOGS:               {98765.43},
				dataset.FieldNetIncome:          {1357.9},
				dataset.FieldTotalAssets:        {246802.4},
				dataset.FieldTotalLiabilities:   {123401.2},
				dataset.FieldShareholdersEquity: {123401.2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := NewEngine(nil).Analyze(context.Background(), newDataset(t, tt.series))
			require.NoError(t, err)
			for _, r := range analysis.Ratios {
				assert.InDelta(t, r.ROE, r.DuPontROE, 1e-6)
			}
		})
	}
}

func TestAnalyze_ZeroEquityGuards(t *testing.T) {
	ds := newDataset(t, map[dataset.Field][]float64{
		dataset.FieldRevenue:            {1000, 1000},
		dataset.FieldCOGS:               {600, 600},
		dataset.FieldNetIncome:          {50, 50},
		dataset.FieldTotalAssets:        {800, 800},
		dataset.FieldTotalLiabilities:   {800, 800},
		dataset.FieldShareholdersEquity: {0, 0},
	})

	analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
	require.NoError(t, err)

	for _, r := range analysis.Ratios {
		assert.Equal(t, 0.0, r.ROE)
		assert.Equal(t, 0.0, r.DebtToEquity)
		assert.Equal(t, 0.0, r.EquityMultiplier)
		assert.Equal(t, 0.0, r.DuPontROE)
	}
}

func TestAnalyze_RevenueCAGR(t *testing.T) {
	tests := []struct {
		name     string
		revenue  []float64
		expected float64
	}{
		{"flat three periods", []float64{100, 100, 100}, 0},
		{"21 percent over one step", []float64{100, 121}, 21},
		{"single period", []float64{100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.revenue)
			flat := func(v float64) []float64 {
				s := make([]float64, n)
				for i := range s {
					s[i] = v
				}
				return s
			}
			ds := newDataset(t, map[dataset.Field][]float64{
				dataset.FieldRevenue:            tt.revenue,
				dataset.FieldCOGS:               flat(50),
				dataset.FieldNetIncome:          flat(10),
				dataset.FieldTotalAssets:        flat(200),
				dataset.FieldTotalLiabilities:   flat(50),
				dataset.FieldShareholdersEquity: flat(150),
			})

			analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, analysis.Summary.RevenueCAGR, 1e-9)
		})
	}
}

func TestAnalyze_Alerts(t *testing.T) {
	t.Run("healthy company has no alerts", func(t *testing.T) {
		analysis, err := NewEngine(nil).Analyze(context.Background(), threePeriodDataset(t))
		require.NoError(t, err)
		assert.Empty(t, analysis.Alerts)
	})

	t.Run("thin margin and losses", func(t *testing.T) {
		ds := newDataset(t, map[dataset.Field][]float64{
			dataset.FieldRevenue:            {1000},
			dataset.FieldCOGS:               {900},
			dataset.FieldNetIncome:          {-50},
			dataset.FieldTotalAssets:        {1000},
			dataset.FieldTotalLiabilities:   {700},
			dataset.FieldShareholdersEquity: {300},
		})
		analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
		require.NoError(t, err)

		metrics := map[string]domain.Severity{}
		for _, a := range analysis.Alerts {
			metrics[a.Metric] = a.Severity
		}
		assert.Equal(t, domain.SeverityDanger, metrics["grossMargin"])
		assert.Equal(t, domain.SeverityDanger, metrics["netMargin"])
		assert.Equal(t, domain.SeverityWarning, metrics["debtToAssets"])
	})

	t.Run("roe collapse warns", func(t *testing.T) {
		ds := newDataset(t, map[dataset.Field][]float64{
			dataset.FieldRevenue:            {1000, 1000},
			dataset.FieldCOGS:               {500, 500},
			dataset.FieldNetIncome:          {120, 60},
			dataset.FieldTotalAssets:        {1000, 1000},
			dataset.FieldTotalLiabilities:   {200, 200},
			dataset.FieldShareholdersEquity: {600, 600},
		})
		analysis, err := NewEngine(nil).Analyze(context.Background(), ds)
		require.NoError(t, err)

		found := false
		for _, a := range analysis.Alerts {
			if a.Metric == "roe" {
				found = true
				assert.Equal(t, domain.SeverityWarning, a.Severity)
			}
		}
		assert.True(t, found, "expected roe drop warning")
	})
}

func TestAnalyze_HealthSummary(t *testing.T) {
	analysis, err := NewEngine(nil).Analyze(context.Background(), threePeriodDataset(t))
	require.NoError(t, err)

	s := analysis.Summary
	// CAGR 10%, avgROE ~14.9, avgROA ~10.3, avg debtToAssets ~0.33
	assert.InDelta(t, 10, s.RevenueCAGR, 1e-9)
	assert.Equal(t, domain.DebtLevelLow, s.DebtLevel)
	assert.Equal(t, domain.RatingExcellent, s.OverallHealth)
}

func TestAnalyze_Classifiers(t *testing.T) {
	analysis, err := NewEngine(nil).Analyze(context.Background(), threePeriodDataset(t))
	require.NoError(t, err)

	first := analysis.Ratios[0]
	assert.Equal(t, GrowthStable, first.GrowthTrend) // no prior period
	assert.Equal(t, domain.RatingGood, first.EarningsQuality)

	latest := analysis.Latest()
	assert.Equal(t, GrowthModerate, latest.GrowthTrend) // +10% is not > 10%
	assert.Equal(t, domain.RatingExcellent, latest.FinancialStrength)
}

func TestAnalyze_Idempotent(t *testing.T) {
	engine := NewEngine(nil)
	ds := threePeriodDataset(t)

	first, err := engine.Analyze(context.Background(), ds)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
