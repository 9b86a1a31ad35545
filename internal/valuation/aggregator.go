package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"finsight/internal/errors"
	"finsight/pkg/contracts/domain"
)

// Aggregator runs whichever valuation methods the request supplies and
// reconciles their outputs into a single comparison.
type Aggregator struct {
	dcf        *DCFEngine
	comparable *ComparableEngine
	logger     *slog.Logger
}

// NewAggregator wires the two engines. Nil engines are replaced with
// defaults so the zero configuration still works.
func NewAggregator(dcf *DCFEngine, comparable *ComparableEngine, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if dcf == nil {
		dcf = NewDCFEngine(logger)
	}
	if comparable == nil {
		comparable = NewComparableEngine(nil, logger)
	}
	return &Aggregator{dcf: dcf, comparable: comparable, logger: logger}
}

// Analyze runs the requested methods and builds the comparison. At least one
// of the request halves must be present.
func (a *Aggregator) Analyze(ctx context.Context, req Request) (*Comparison, error) {
	if req.DCF == nil && req.Comparable == nil {
		return nil, errors.NewInvalidInputError("valuation request supplies no method inputs", nil)
	}

	cmp := &Comparison{}

	if req.DCF != nil {
		result, err := a.dcf.Value(ctx, *req.DCF)
		if err != nil {
			return nil, fmt.Errorf("DCF valuation: %w", err)
		}
		cmp.DCF = result
		cmp.KeyAssumptions = keyAssumptions(*req.DCF)
	}

	if req.Comparable != nil {
		result, err := a.comparable.Value(ctx, *req.Comparable)
		if err != nil {
			return nil, fmt.Errorf("comparable valuation: %w", err)
		}
		cmp.Comparable = result
	}

	cmp.CombinedRecommendations = a.combinedRecommendations(cmp)
	cmp.RiskFactors = riskFactors(cmp)
	cmp.Confidence = confidenceLevel(cmp)

	a.logger.InfoContext(ctx, "valuation comparison completed",
		"dcf_ran", cmp.DCF != nil,
		"comparable_ran", cmp.Comparable != nil,
		"confidence", cmp.Confidence,
	)

	return cmp, nil
}

func keyAssumptions(inputs DCFInputs) []string {
	return []string{
		fmt.Sprintf("Terminal growth rate of %.1f%%", inputs.TerminalGrowthRate),
		fmt.Sprintf("Discount rate (WACC) of %.1f%%", inputs.DiscountRate),
		fmt.Sprintf("Explicit projection horizon of %d years", inputs.ProjectionYears),
	}
}

// combinedRecommendations measures how far apart the two methods landed
func (a *Aggregator) combinedRecommendations(cmp *Comparison) []string {
	var recs []string

	if cmp.DCF != nil && cmp.Comparable != nil {
		dcfValue := cmp.DCF.ValuePerShare
		compValue := cmp.Comparable.AverageValuation
		mid := (dcfValue + compValue) / 2
		if mid != 0 {
			variance := 100 * math.Abs(dcfValue-compValue) / mid
			if variance > 30 {
				recs = append(recs, fmt.Sprintf(
					"DCF and comparable valuations diverge by %.0f%%, review assumptions before relying on either", variance))
			} else {
				recs = append(recs, fmt.Sprintf(
					"DCF and comparable valuations show reasonable alignment (%.0f%% variance)", variance))
			}
		}
	}

	if cmp.DCF != nil {
		recs = append(recs, cmp.dcfRecommendation())
	}
	if cmp.Comparable != nil {
		recs = append(recs, cmp.Comparable.Recommendations...)
	}

	return recs
}

func (c *Comparison) dcfRecommendation() string {
	if c.DCF.TerminalValuePercent > 70 {
		return "Terminal value dominates the DCF, stress the terminal growth assumption"
	}
	return "DCF value is driven mostly by the explicit forecast horizon"
}

func riskFactors(cmp *Comparison) []string {
	var risks []string

	if cmp.DCF != nil && cmp.DCF.TerminalValuePercent > 70 {
		risks = append(risks, fmt.Sprintf(
			"%.0f%% of enterprise value sits in the terminal period, small growth-rate changes move the valuation materially",
			cmp.DCF.TerminalValuePercent))
	}
	if cmp.Comparable != nil && len(cmp.Comparable.Outliers) > 0 {
		risks = append(risks, "Peer group contains outlier multiples that may distort implied valuations")
	}

	risks = append(risks,
		"Valuations assume current capital structure and tax regime persist",
		"Macro shocks to rates or demand are not modeled in either method",
	)

	return risks
}

// confidenceLevel scores the comparison on method coverage, terminal-value
// dependence, and peer-set cleanliness.
func confidenceLevel(cmp *Comparison) domain.ConfidenceLevel {
	score := 0
	if cmp.DCF != nil && cmp.Comparable != nil {
		score += 2
	} else {
		score++
	}
	if cmp.DCF != nil && cmp.DCF.TerminalValuePercent < 60 {
		score++
	}
	if cmp.Comparable == nil || len(cmp.Comparable.Outliers) == 0 {
		score++
	}

	switch {
	case score >= 4:
		return domain.ConfidenceHigh
	case score >= 2:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
