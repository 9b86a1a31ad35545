package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"finsight/internal/errors"
)

// ComparableEngine values a target company against the peer catalogue's
// trading multiples.
type ComparableEngine struct {
	repo     PeerRepository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewComparableEngine creates a comparable-company engine. A nil repository
// uses the built-in static catalogue.
func NewComparableEngine(repo PeerRepository, logger *slog.Logger) *ComparableEngine {
	if repo == nil {
		repo = NewStaticPeerRepository()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ComparableEngine{
		repo:     repo,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Value computes the peer-multiple valuation for the request
func (e *ComparableEngine) Value(ctx context.Context, req ComparableRequest) (*ComparableResult, error) {
	if err := e.validate.Struct(req); err != nil {
		e.logger.ErrorContext(ctx, "comparable request validation failed", "error", err)
		return nil, errors.NewValidationError("invalid comparable request", err)
	}

	peers, usedIndustry := e.repo.PeerGroup(req.Industry)
	if usedIndustry != req.Industry {
		e.logger.WarnContext(ctx, "unknown industry, using default peer group",
			"requested", req.Industry,
			"used", usedIndustry,
		)
	}
	if len(peers) == 0 {
		return nil, errors.NewReferenceError(
			fmt.Sprintf("peer group %q is empty", usedIndustry), nil)
	}

	// Filter each multiple to its sane range before averaging so a single
	// distorted peer cannot drag the implied valuations.
	var pes, evs, pbs []float64
	for _, p := range peers {
		if p.PE > 0 && p.PE < peMax {
			pes = append(pes, p.PE)
		}
		if p.EVToEBITDA > 0 && p.EVToEBITDA < evToEBITDAMax {
			evs = append(evs, p.EVToEBITDA)
		}
		if p.PriceToBook > 0 && p.PriceToBook < priceToBookMax {
			pbs = append(pbs, p.PriceToBook)
		}
	}

	result := &ComparableResult{
		Industry:    usedIndustry,
		PeerCount:   len(peers),
		PE:          summarizeMultiple(pes),
		EVToEBITDA:  summarizeMultiple(evs),
		PriceToBook: summarizeMultiple(pbs),
		Outliers:    findOutliers(peers),
	}

	result.ImpliedValuationPE = req.Target.NetIncome * result.PE.Mean
	result.ImpliedValuationEVEBITDA = req.Target.EBITDA * result.EVToEBITDA.Mean
	result.ImpliedValuationPB = req.Target.BookValue * result.PriceToBook.Mean
	result.AverageValuation = (result.ImpliedValuationPE +
		result.ImpliedValuationEVEBITDA + result.ImpliedValuationPB) / 3

	result.Recommendations = comparableRecommendations(req.Target, result)

	e.logger.InfoContext(ctx, "comparable valuation completed",
		"industry", usedIndustry,
		"peers", len(peers),
		"average_valuation", result.AverageValuation,
		"outliers", len(result.Outliers),
	)

	return result, nil
}

// summarizeMultiple computes mean and median of the filtered values
func summarizeMultiple(values []float64) MultipleStats {
	if len(values) == 0 {
		return MultipleStats{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return MultipleStats{
		Mean:   sum / float64(len(values)),
		Median: median,
		Count:  len(values),
	}
}

// findOutliers lists peers trading outside the accepted multiple bands
func findOutliers(peers []ComparableCompany) []string {
	var outliers []string
	for _, p := range peers {
		if p.PE < peOutlierLow || p.PE > peOutlierHigh {
			outliers = append(outliers, fmt.Sprintf(
				"%s: P/E %.1f outside [%.0f, %.0f]", p.Name, p.PE, peOutlierLow, peOutlierHigh))
			continue
		}
		if p.EVToEBITDA < evToEBITDAOutlierLow || p.EVToEBITDA > evToEBITDAOutlierHigh {
			outliers = append(outliers, fmt.Sprintf(
				"%s: EV/EBITDA %.1f outside [%.0f, %.0f]", p.Name, p.EVToEBITDA, evToEBITDAOutlierLow, evToEBITDAOutlierHigh))
		}
	}
	return outliers
}

// comparableRecommendations builds the advisory text from multiple levels
// and the target's EBITDA margin versus a 15% reference.
func comparableRecommendations(target ComparableTarget, result *ComparableResult) []string {
	recs := make([]string, 0, 4)

	switch {
	case result.PE.Mean > 30:
		recs = append(recs, "Peer P/E multiples are rich, implied valuations may embed optimistic growth")
	case result.PE.Mean > 0 && result.PE.Mean < 12:
		recs = append(recs, "Peer P/E multiples are depressed, the implied valuation is conservative")
	}

	if result.EVToEBITDA.Mean > 15 {
		recs = append(recs, "EV/EBITDA multiples above 15x warrant cross-checking against the DCF result")
	}

	if target.Revenue > 0 {
		margin := 100 * target.EBITDA / target.Revenue
		if margin < 15 {
			recs = append(recs, fmt.Sprintf(
				"Target EBITDA margin of %.1f%% trails the typical peer profile, multiple-based values may overstate worth", margin))
		}
	}

	if len(result.Outliers) > 0 {
		recs = append(recs, "Peer set contains outlier multiples, consider re-running with a trimmed group")
	}

	return recs
}
