package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"finsight/internal/errors"
	"finsight/internal/ratios"
)

// Performance classifies one metric against its industry band
type Performance string

const (
	PerformanceExcellent Performance = "excellent"
	PerformanceGood      Performance = "good"
	PerformanceAverage   Performance = "average"
	PerformancePoor      Performance = "poor"
)

// MetricComparison is the benchmark outcome for one metric
type MetricComparison struct {
	Metric       Metric      `json:"metric"`
	CompanyValue float64     `json:"company_value"`
	Band         Band        `json:"band"`
	Performance  Performance `json:"performance"`
	Percentile   float64     `json:"percentile"`
	Score        float64     `json:"score"`
}

// Comparison is the full peer-benchmark result for one company
type Comparison struct {
	// Industry records the band set actually used; unknown industries fall
	// back to the default set and surface here.
	Industry string `json:"industry"`

	Metrics []MetricComparison `json:"metrics"`

	OverallScore  float64     `json:"overall_score"`
	OverallRating Performance `json:"overall_rating"`

	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

const (
	maxStrengths       = 5
	maxWeaknesses      = 5
	maxRecommendations = 6
)

// Engine scores company ratios against static industry benchmark bands.
// Stateless and deterministic.
type Engine struct {
	repo   BandRepository
	logger *slog.Logger
}

// NewEngine creates a benchmark engine. A nil repository uses the built-in
// band catalogue.
func NewEngine(repo BandRepository, logger *slog.Logger) *Engine {
	if repo == nil {
		repo = NewStaticBandRepository()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// Compare benchmarks the supplied metrics against the industry's bands.
// Metrics without a band in the catalogue are skipped.
func (e *Engine) Compare(ctx context.Context, industry string, metrics map[Metric]float64) (*Comparison, error) {
	if len(metrics) == 0 {
		return nil, errors.NewInvalidInputError("no metrics supplied for benchmarking", nil)
	}

	bands, usedIndustry := e.repo.Bands(industry)
	if usedIndustry != industry {
		e.logger.WarnContext(ctx, "unknown industry, using default benchmark bands",
			"requested", industry,
			"used", usedIndustry,
		)
	}

	names := make([]Metric, 0, len(metrics))
	for name := range metrics {
		if _, ok := bands[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("none of the supplied metrics have benchmark bands for %q", usedIndustry), nil)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	result := &Comparison{
		Industry: usedIndustry,
		Metrics:  make([]MetricComparison, 0, len(names)),
	}

	totalScore := 0.0
	for _, name := range names {
		mc := classify(name, metrics[name], bands[name])
		result.Metrics = append(result.Metrics, mc)
		totalScore += mc.Score
	}
	result.OverallScore = totalScore / float64(len(result.Metrics))
	result.OverallRating = overallRating(result.OverallScore)

	for _, mc := range result.Metrics {
		switch mc.Performance {
		case PerformanceExcellent, PerformanceGood:
			if len(result.Strengths) < maxStrengths {
				result.Strengths = append(result.Strengths, fmt.Sprintf(
					"%s of %.2f ranks %s for the industry", metricLabel(mc.Metric), mc.CompanyValue, mc.Performance))
			}
		default:
			if len(result.Weaknesses) < maxWeaknesses {
				result.Weaknesses = append(result.Weaknesses, fmt.Sprintf(
					"%s of %.2f ranks %s for the industry", metricLabel(mc.Metric), mc.CompanyValue, mc.Performance))
			}
		}
	}

	result.Recommendations = recommendations(usedIndustry, result)

	e.logger.InfoContext(ctx, "benchmark comparison completed",
		"industry", usedIndustry,
		"metrics", len(result.Metrics),
		"overall_score", result.OverallScore,
		"overall_rating", result.OverallRating,
	)

	return result, nil
}

// classify grades one value against its band. Debt-to-equity inverts the
// comparison direction since lower leverage is better.
func classify(name Metric, value float64, band Band) MetricComparison {
	var perf Performance
	var score float64

	if name == MetricDebtToEquity {
		switch {
		case value <= band.Excellent:
			perf, score = PerformanceExcellent, 100
		case value <= band.Good:
			perf, score = PerformanceGood, 80
		case value <= band.Average:
			perf, score = PerformanceAverage, 60
		case value <= band.Poor:
			perf, score = PerformancePoor, 40
		default:
			perf, score = PerformancePoor, 20
		}
	} else {
		switch {
		case value >= band.Excellent:
			perf, score = PerformanceExcellent, 100
		case value >= band.Good:
			perf, score = PerformanceGood, 80
		case value >= band.Average:
			perf, score = PerformanceAverage, 60
		case value >= band.Poor:
			perf, score = PerformancePoor, 40
		default:
			perf, score = PerformancePoor, 20
		}
	}

	return MetricComparison{
		Metric:       name,
		CompanyValue: value,
		Band:         band,
		Performance:  perf,
		Percentile:   percentileFor(perf),
		Score:        score,
	}
}

func percentileFor(perf Performance) float64 {
	switch perf {
	case PerformanceExcellent:
		return 90
	case PerformanceGood:
		return 75
	case PerformanceAverage:
		return 50
	default:
		return 25
	}
}

func overallRating(score float64) Performance {
	switch {
	case score >= 85:
		return PerformanceExcellent
	case score >= 70:
		return PerformanceGood
	case score >= 50:
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}

func metricLabel(name Metric) string {
	switch name {
	case MetricGrossMargin:
		return "Gross margin"
	case MetricNetMargin:
		return "Net margin"
	case MetricROE:
		return "Return on equity"
	case MetricROA:
		return "Return on assets"
	case MetricAssetTurnover:
		return "Asset turnover"
	case MetricDebtToEquity:
		return "Debt-to-equity"
	case MetricRevenueGrowth:
		return "Revenue growth"
	default:
		return string(name)
	}
}

// recommendations builds advisory text from the industry label and the
// weakest metrics, capped at maxRecommendations entries.
func recommendations(industry string, result *Comparison) []string {
	recs := make([]string, 0, maxRecommendations)

	add := func(text string) {
		if len(recs) < maxRecommendations {
			recs = append(recs, text)
		}
	}

	for _, mc := range result.Metrics {
		if mc.Performance != PerformancePoor {
			continue
		}
		switch mc.Metric {
		case MetricGrossMargin:
			add("Review pricing and input costs to lift gross margin toward the industry average")
		case MetricNetMargin:
			add("Reduce overhead to convert more revenue into net income")
		case MetricROE, MetricROA:
			add("Improve capital productivity, returns trail the industry band")
		case MetricAssetTurnover:
			add("Sweat the asset base harder, turnover is below industry norms")
		case MetricDebtToEquity:
			add("Deleverage toward the industry's typical capital structure")
		case MetricRevenueGrowth:
			add("Revenue growth lags peers, revisit go-to-market investment")
		}
	}

	lower := strings.ToLower(industry)
	switch {
	case strings.Contains(lower, "technology"):
		add("Sustain R&D investment, technology peers reward continued product innovation")
	case strings.Contains(lower, "financial"):
		add("Maintain capital buffers in line with financial-sector expectations")
	case strings.Contains(lower, "energy"):
		add("Hedge commodity exposure, energy-sector results swing with prices")
	case strings.Contains(lower, "retail"):
		add("Tighten inventory turns, retail margins hinge on working-capital discipline")
	case strings.Contains(lower, "health"):
		add("Plan for regulatory and reimbursement shifts common to healthcare peers")
	}

	add("Re-run the benchmark after the next reporting period to track trajectory")
	if result.OverallRating == PerformancePoor || result.OverallRating == PerformanceAverage {
		add("Prioritize the two lowest-scoring metrics for the next operating cycle")
	}

	return recs
}

// MetricsFromRatios adapts the latest-period ratio analysis into the metric
// map the benchmark engine consumes.
func MetricsFromRatios(analysis *ratios.Analysis) map[Metric]float64 {
	latest := analysis.Latest()
	return map[Metric]float64{
		MetricGrossMargin:   latest.GrossMargin,
		MetricNetMargin:     latest.NetMargin,
		MetricROE:           latest.ROE,
		MetricROA:           latest.ROA,
		MetricAssetTurnover: latest.AssetTurnover,
		MetricDebtToEquity:  latest.DebtToEquity,
		MetricRevenueGrowth: analysis.Summary.RevenueCAGR,
	}
}
