// Package service orchestrates the analysis engines: one call runs ratio,
// cash-flow, stress, benchmark, and valuation analysis over a dataset and
// assembles the combined report.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"finsight/internal/benchmark"
	"finsight/internal/cashflow"
	"finsight/internal/config"
	"finsight/internal/dataset"
	"finsight/internal/errors"
	"finsight/internal/infrastructure"
	"finsight/internal/ratios"
	"finsight/internal/stress"
	"finsight/internal/valuation"
	"finsight/pkg/contracts"
)

// Request describes one analysis run. Industry selects the benchmark bands
// and defaults to the configured industry when empty. Valuation is optional;
// RunStress overrides the configured default when non-nil.
type Request struct {
	Dataset   *dataset.Dataset
	Industry  string
	Valuation *valuation.Request
	RunStress *bool
}

// Report is the combined output of one analysis run
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Industry    string    `json:"industry"`
	Duration    float64   `json:"duration_seconds"`
	Version     string    `json:"version"`

	Ratios    *ratios.Analysis      `json:"ratios"`
	CashFlow  *cashflow.Analysis    `json:"cash_flow"`
	Benchmark *benchmark.Comparison `json:"benchmark"`

	Stress    []*stress.Result      `json:"stress,omitempty"`
	Valuation *valuation.Comparison `json:"valuation,omitempty"`
}

// AnalysisService wires the engines together behind a single entry point
type AnalysisService struct {
	cfg    *config.Config
	logger *slog.Logger

	ratios    *ratios.Engine
	cashflow  *cashflow.Engine
	stress    *stress.Engine
	benchmark *benchmark.Engine
	valuation *valuation.Aggregator

	runCounter  metric.Int64Counter
	runDuration metric.Float64Histogram
}

// New builds the service from configuration. Reference-data override paths
// replace the built-in peer and band catalogues when set.
func New(cfg *config.Config, logger *slog.Logger) (*AnalysisService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	var peerRepo valuation.PeerRepository
	if path := cfg.Reference.PeerCataloguePath; path != "" {
		repo, err := valuation.LoadPeerCatalogue(path)
		if err != nil {
			return nil, fmt.Errorf("loading peer catalogue: %w", err)
		}
		peerRepo = repo
	}

	var bandRepo benchmark.BandRepository
	if path := cfg.Reference.BandCataloguePath; path != "" {
		repo, err := benchmark.LoadBandCatalogue(path)
		if err != nil {
			return nil, fmt.Errorf("loading band catalogue: %w", err)
		}
		bandRepo = repo
	}

	meter := otel.Meter("finsight/service")
	runCounter, err := meter.Int64Counter("analysis.runs",
		metric.WithDescription("Completed analysis runs"))
	if err != nil {
		return nil, fmt.Errorf("creating run counter: %w", err)
	}
	runDuration, err := meter.Float64Histogram("analysis.duration",
		metric.WithDescription("Analysis run duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	dcfEngine := valuation.NewDCFEngine(logger)
	comparableEngine := valuation.NewComparableEngine(peerRepo, logger)

	return &AnalysisService{
		cfg:         cfg,
		logger:      logger,
		ratios:      ratios.NewEngine(logger),
		cashflow:    cashflow.NewEngine(logger),
		stress:      stress.NewEngine(logger),
		benchmark:   benchmark.NewEngine(bandRepo, logger),
		valuation:   valuation.NewAggregator(dcfEngine, comparableEngine, logger),
		runCounter:  runCounter,
		runDuration: runDuration,
	}, nil
}

// Analyze runs every requested engine over the dataset and assembles the
// report. Independent engines run concurrently; the first failure cancels
// the rest.
func (s *AnalysisService) Analyze(ctx context.Context, req Request) (*Report, error) {
	if req.Dataset == nil {
		return nil, errors.NewInvalidInputError("no dataset supplied", nil)
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	industry := req.Industry
	if industry == "" {
		industry = s.cfg.Analysis.DefaultIndustry
	}

	report := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: start.UTC(),
		Industry:    industry,
		Version:     contracts.Version,
	}

	s.logger.InfoContext(ctx, "analysis run started",
		"run_id", report.RunID,
		"industry", industry,
		"periods", req.Dataset.Periods(),
	)

	runStress := s.cfg.Analysis.RunStressSuite
	if req.RunStress != nil {
		runStress = *req.RunStress
	}

	g, gctx := errgroup.WithContext(ctx)

	// Benchmarking consumes the latest-period ratios, so the two run on
	// one goroutine.
	g.Go(func() error {
		ratioAnalysis, err := s.ratios.Analyze(gctx, req.Dataset)
		if err != nil {
			return fmt.Errorf("ratio analysis: %w", err)
		}
		report.Ratios = ratioAnalysis

		comparison, err := s.benchmark.Compare(gctx, industry, benchmark.MetricsFromRatios(ratioAnalysis))
		if err != nil {
			return fmt.Errorf("benchmark comparison: %w", err)
		}
		report.Benchmark = comparison
		return nil
	})

	g.Go(func() error {
		analysis, err := s.cashflow.Analyze(gctx, req.Dataset)
		if err != nil {
			return fmt.Errorf("cash flow analysis: %w", err)
		}
		report.CashFlow = analysis
		return nil
	})

	if runStress && req.Dataset.Has(dataset.FieldOperatingCashFlow) {
		g.Go(func() error {
			baseline := stress.Baseline{
				Revenue:           req.Dataset.Latest(dataset.FieldRevenue),
				OperatingCashFlow: req.Dataset.Latest(dataset.FieldOperatingCashFlow),
			}
			if req.Dataset.Has(dataset.FieldCash) {
				cash := req.Dataset.Latest(dataset.FieldCash)
				baseline.Cash = &cash
			}
			if req.Dataset.Has(dataset.FieldCapEx) {
				capex := req.Dataset.Latest(dataset.FieldCapEx)
				baseline.Capex = &capex
			}

			results, err := s.stress.RunCatalogue(gctx, baseline)
			if err != nil {
				return fmt.Errorf("stress testing: %w", err)
			}
			report.Stress = results
			return nil
		})
	}

	if req.Valuation != nil {
		g.Go(func() error {
			comparison, err := s.valuation.Analyze(gctx, *req.Valuation)
			if err != nil {
				return fmt.Errorf("valuation: %w", err)
			}
			report.Valuation = comparison
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		s.logger.ErrorContext(ctx, "analysis run failed",
			"run_id", report.RunID,
			"error", err,
		)
		return nil, err
	}

	report.Duration = time.Since(start).Seconds()
	s.runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	s.runDuration.Record(ctx, report.Duration)

	s.logger.InfoContext(ctx, "analysis run completed",
		"run_id", report.RunID,
		"duration_seconds", report.Duration,
		"stress_scenarios", len(report.Stress),
		"valuation_ran", report.Valuation != nil,
	)

	return report, nil
}
