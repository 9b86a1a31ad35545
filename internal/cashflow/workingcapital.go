package cashflow

import (
	"math"

	"finsight/internal/dataset"
)

// analyzeWorkingCapital runs the working-capital sub-analysis. When the
// dataset does not carry receivables, inventory, and payables balances, they
// are estimated as documented fractions of revenue and COGS (12%, 15%, 10%).
// The estimation is all-or-nothing: partial balance data still uses the
// supplied series and estimates only the absent ones.
func (e *Engine) analyzeWorkingCapital(ds *dataset.Dataset) WorkingCapitalAnalysis {
	revenue := ds.Series(dataset.FieldRevenue)
	cogs := ds.SeriesOr(dataset.FieldCOGS, 0)
	periods := ds.Periods()

	estimated := false
	receivables := ds.Series(dataset.FieldAccountsReceivable)
	if receivables == nil {
		estimated = true
		receivables = scaled(revenue, estReceivablesOfRevenue)
	}
	inventory := ds.Series(dataset.FieldInventory)
	if inventory == nil {
		estimated = true
		inventory = scaled(cogs, estInventoryOfCOGS)
	}
	payables := ds.Series(dataset.FieldAccountsPayable)
	if payables == nil {
		estimated = true
		payables = scaled(cogs, estPayablesOfCOGS)
	}

	wcPeriods := make([]WorkingCapitalPeriod, periods)
	for t := 0; t < periods; t++ {
		wc := receivables[t] + inventory[t] - payables[t]

		p := WorkingCapitalPeriod{
			Period:         t,
			Receivables:    receivables[t],
			Inventory:      inventory[t],
			Payables:       payables[t],
			WorkingCapital: wc,
			DSO:            daysOutstanding(revenue[t], receivables[t]),
			DIO:            daysOutstanding(cogs[t], inventory[t]),
			DPO:            daysOutstanding(cogs[t], payables[t]),
			Intensity:      100 * guardedRatio(wc, revenue[t]),
		}
		p.CCC = p.DSO + p.DIO - p.DPO

		if t == 0 {
			p.Trend = WCTrendBaseline
		} else {
			p.Trend = classifyTrend(wcPeriods[t-1].WorkingCapital, wc)
		}

		wcPeriods[t] = p
	}

	return WorkingCapitalAnalysis{
		Periods:         wcPeriods,
		Estimated:       estimated,
		EfficiencyScore: efficiencyScore(wcPeriods[periods-1].CCC),
	}
}

// daysOutstanding converts a flow and its balance into days: 365 / turnover,
// with both the turnover and the day count 0-guarded.
func daysOutstanding(flow, balance float64) float64 {
	turnover := guardedRatio(flow, balance)
	if turnover <= 0 {
		return 0
	}
	return daysPerYear / turnover
}

// classifyTrend compares working capital to the prior period: moves beyond
// +/-10% count as directional, anything inside the band is stable.
func classifyTrend(prior, current float64) WCTrend {
	if prior == 0 {
		return WCTrendStable
	}
	changePct := 100 * (current - prior) / math.Abs(prior)
	switch {
	case changePct > 10:
		return WCTrendIncreasing
	case changePct < -10:
		return WCTrendDecreasing
	default:
		return WCTrendStable
	}
}

// efficiencyScore bands the cash conversion cycle
func efficiencyScore(ccc float64) float64 {
	switch {
	case ccc < 30:
		return 100
	case ccc < 60:
		return 80
	case ccc < 90:
		return 60
	case ccc < 120:
		return 40
	default:
		return 20
	}
}

// scaled returns the series multiplied by factor
func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}
