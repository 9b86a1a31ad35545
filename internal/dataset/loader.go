package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"finsight/internal/errors"
)

// fieldAliases maps lowercased statement captions to canonical fields. The
// mapping deliberately accepts the common caption variants seen across
// exported statement workbooks.
var fieldAliases = map[string]Field{
	"revenue":                   FieldRevenue,
	"total revenue":             FieldRevenue,
	"sales":                     FieldRevenue,
	"net sales":                 FieldRevenue,
	"cogs":                      FieldCOGS,
	"cost of goods sold":        FieldCOGS,
	"cost of revenue":           FieldCOGS,
	"cost of sales":             FieldCOGS,
	"gross profit":              FieldGrossProfit,
	"sg&a":                      FieldSGA,
	"sga":                       FieldSGA,
	"operating expenses":        FieldSGA,
	"ebitda":                    FieldEBITDA,
	"net income":                FieldNetIncome,
	"net profit":                FieldNetIncome,
	"profit after tax":          FieldNetIncome,
	"total assets":              FieldTotalAssets,
	"total liabilities":         FieldTotalLiabilities,
	"shareholders equity":       FieldShareholdersEquity,
	"shareholders' equity":      FieldShareholdersEquity,
	"total equity":              FieldShareholdersEquity,
	"stockholders equity":       FieldShareholdersEquity,
	"cash flow from operations": FieldOperatingCashFlow,
	"operating cash flow":       FieldOperatingCashFlow,
	"cash from operations":      FieldOperatingCashFlow,
	"capital expenditure":       FieldCapEx,
	"capital expenditures":      FieldCapEx,
	"capex":                     FieldCapEx,
	"dividends":                 FieldDividends,
	"dividends paid":            FieldDividends,
	"total debt":                FieldTotalDebt,
	"cash":                      FieldCash,
	"cash and equivalents":      FieldCash,
	"accounts receivable":       FieldAccountsReceivable,
	"receivables":               FieldAccountsReceivable,
	"inventory":                 FieldInventory,
	"inventories":               FieldInventory,
	"accounts payable":          FieldAccountsPayable,
	"payables":                  FieldAccountsPayable,
}

// LoadWorkbook reads a mapped financial-statements workbook into a Dataset.
// The expected layout is one row per line item: the first column carries the
// caption and the remaining columns carry one value per period, oldest first.
// Unrecognized captions are skipped with a warning; rows with a recognized
// caption but unparseable cells are a parsing error.
func LoadWorkbook(path string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	rows, sheetName, err := findStatementSheet(f)
	if err != nil {
		return nil, err
	}

	logger.Info("found statement data in sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(rows)))

	series := make(map[Field][]float64)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		caption := strings.ToLower(strings.TrimSpace(row[0]))
		if caption == "" {
			continue
		}
		field, ok := fieldAliases[caption]
		if !ok {
			logger.Warn("skipping unrecognized caption",
				slog.Int("row", i+1),
				slog.String("caption", row[0]))
			continue
		}

		values, err := parseValueCells(row[1:])
		if err != nil {
			return nil, errors.NewParsingError(
				fmt.Sprintf("row %d (%s): %v", i+1, field, err), err).
				WithContext("field", string(field))
		}
		if len(values) == 0 {
			continue
		}
		series[field] = values
	}

	if len(series) == 0 {
		return nil, errors.NewParsingError("no recognizable line items in workbook", nil)
	}

	ds, err := New(series)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded dataset from workbook",
		slog.Int("fields", len(series)),
		slog.Int("periods", ds.Periods()))

	return ds, nil
}

// findStatementSheet locates the sheet holding the mapped statement rows.
func findStatementSheet(f *excelize.File) ([][]string, string, error) {
	// Try common sheet names first
	possibleNames := []string{"Financials", "Statements", "Data", "Sheet1"}

	for _, name := range possibleNames {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 0 {
			return rows, name, nil
		}
	}

	// Fall back to the first sheet that looks like statement data
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if _, ok := fieldAliases[strings.ToLower(strings.TrimSpace(row[0]))]; ok {
				return rows, name, nil
			}
		}
	}

	return nil, "", errors.NewParsingError("could not find statement data sheet in workbook", nil)
}

// parseValueCells parses the value columns of a statement row. Trailing empty
// cells are trimmed so ragged sheets still align; interior blanks are errors.
func parseValueCells(cells []string) ([]float64, error) {
	// Trim trailing empties
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}

	values := make([]float64, 0, end)
	for i, cell := range cells[:end] {
		text := strings.TrimSpace(cell)
		if text == "" {
			return nil, fmt.Errorf("empty value in period column %d", i+1)
		}
		text = strings.ReplaceAll(text, ",", "")
		// Accounting-style negatives: (1,234.5)
		if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
			text = "-" + strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable value %q in period column %d", cell, i+1)
		}
		values = append(values, v)
	}
	return values, nil
}
