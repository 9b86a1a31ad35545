package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"finsight/internal/service"
)

// ReportWriter exports a full analysis report as CSV files or an Excel
// workbook.
type ReportWriter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewReportWriter creates a report writer exporting under dir
func NewReportWriter(dir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		csv:    NewCSVWriter(dir, logger),
		logger: logger,
	}
}

// WriteCSV writes one CSV file per report section
func (w *ReportWriter) WriteCSV(report *service.Report) error {
	sections := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{"ratios.csv", ratioHeaders, ratioRecords(report)},
		{"cashflow.csv", cashflowHeaders, cashflowRecords(report)},
		{"benchmark.csv", benchmarkHeaders, benchmarkRecords(report)},
	}
	if len(report.Stress) > 0 {
		sections = append(sections, struct {
			name    string
			headers []string
			records [][]string
		}{"stress.csv", stressHeaders, stressRecords(report)})
	}

	for _, s := range sections {
		if err := w.csv.WriteSimpleCSV(s.name, s.headers, s.records); err != nil {
			return fmt.Errorf("writing %s: %w", s.name, err)
		}
	}

	w.logger.Info("report exported to CSV",
		"run_id", report.RunID,
		"sections", len(sections))
	return nil
}

// WriteWorkbook writes the report as a single Excel workbook with one sheet
// per section.
func (w *ReportWriter) WriteWorkbook(path string, report *service.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{"Ratios", ratioHeaders, ratioRecords(report)},
		{"Cash Flow", cashflowHeaders, cashflowRecords(report)},
		{"Benchmark", benchmarkHeaders, benchmarkRecords(report)},
	}
	if len(report.Stress) > 0 {
		sheets = append(sheets, struct {
			name    string
			headers []string
			records [][]string
		}{"Stress", stressHeaders, stressRecords(report)})
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", s.name, err)
			}
		}

		headerRow := make([]interface{}, len(s.headers))
		for c, h := range s.headers {
			headerRow[c] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &headerRow); err != nil {
			return fmt.Errorf("writing headers to %s: %w", s.name, err)
		}

		for r, record := range s.records {
			row := make([]interface{}, len(record))
			for c, v := range record {
				row[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("writing row %d to %s: %w", r, s.name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	w.logger.Info("report exported to workbook",
		"run_id", report.RunID,
		"path", path,
		"sheets", len(sheets))
	return nil
}

var ratioHeaders = []string{
	"Period", "Gross Margin %", "Net Margin %", "ROA %", "ROE %",
	"Debt/Equity", "Debt/Assets", "Asset Turnover", "DuPont ROE %",
	"Earnings Quality", "Growth Trend", "Financial Strength",
}

func ratioRecords(report *service.Report) [][]string {
	records := make([][]string, 0, len(report.Ratios.Ratios))
	for _, r := range report.Ratios.Ratios {
		records = append(records, []string{
			strconv.Itoa(r.Period),
			num(r.GrossMargin), num(r.NetMargin), num(r.ROA), num(r.ROE),
			num(r.DebtToEquity), num(r.DebtToAssets), num(r.AssetTurnover), num(r.DuPontROE),
			string(r.EarningsQuality), string(r.GrowthTrend), string(r.FinancialStrength),
		})
	}
	return records
}

var cashflowHeaders = []string{
	"Period", "OCF", "FCF", "OCF/NI %", "OCF/Revenue %", "FCF Yield %",
	"CapEx/Revenue %", "FCF Growth %", "Health", "CCC Days",
}

func cashflowRecords(report *service.Report) [][]string {
	wc := report.CashFlow.WorkingCapital.Periods
	records := make([][]string, 0, len(report.CashFlow.Metrics))
	for i, m := range report.CashFlow.Metrics {
		ccc := ""
		if i < len(wc) {
			ccc = num(wc[i].CCC)
		}
		records = append(records, []string{
			strconv.Itoa(m.Period),
			num(m.OperatingCashFlow), num(m.FreeCashFlow),
			num(m.OCFToNetIncome), num(m.OCFToRevenue), num(m.FCFYield),
			num(m.CapexToRevenue), num(m.FCFGrowthRate),
			string(m.Health), ccc,
		})
	}
	return records
}

var benchmarkHeaders = []string{
	"Metric", "Company Value", "Performance", "Percentile", "Score",
}

func benchmarkRecords(report *service.Report) [][]string {
	records := make([][]string, 0, len(report.Benchmark.Metrics))
	for _, m := range report.Benchmark.Metrics {
		records = append(records, []string{
			string(m.Metric), num(m.CompanyValue),
			string(m.Performance), num(m.Percentile), num(m.Score),
		})
	}
	return records
}

var stressHeaders = []string{
	"Scenario", "Stressed Revenue", "Stressed OCF", "Stressed FCF",
	"Months of Cash", "Break-even Gap %", "Recovery Months",
}

func stressRecords(report *service.Report) [][]string {
	records := make([][]string, 0, len(report.Stress))
	for _, r := range report.Stress {
		records = append(records, []string{
			r.Scenario.Name,
			num(r.StressedRevenue), num(r.StressedOCF), num(r.StressedFCF),
			num(r.Survival.MonthsOfCashRemaining),
			num(r.Survival.BreakEvenGapPct),
			num(r.Survival.RecoveryMonths),
		})
	}
	return records
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
