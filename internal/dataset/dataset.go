package dataset

import (
	"fmt"
	"sort"

	"finsight/internal/errors"
)

// Field is a canonical line-item name. The upstream mapping layer is expected
// to have already translated raw statement captions into these names.
type Field string

const (
	FieldRevenue            Field = "Revenue"
	FieldCOGS               Field = "COGS"
	FieldGrossProfit        Field = "Gross Profit"
	FieldSGA                Field = "SG&A"
	FieldEBITDA             Field = "EBITDA"
	FieldNetIncome          Field = "Net Income"
	FieldTotalAssets        Field = "Total Assets"
	FieldTotalLiabilities   Field = "Total Liabilities"
	FieldShareholdersEquity Field = "Shareholders Equity"
	FieldOperatingCashFlow  Field = "Cash Flow from Operations"
	FieldCapEx              Field = "Capital Expenditure"
	FieldDividends          Field = "Dividends"
	FieldTotalDebt          Field = "Total Debt"
	FieldCash               Field = "Cash"
	FieldAccountsReceivable Field = "Accounts Receivable"
	FieldInventory          Field = "Inventory"
	FieldAccountsPayable    Field = "Accounts Payable"
)

// Dataset holds an immutable mapping from canonical field name to an ordered
// per-period value series. All series share the same length.
type Dataset struct {
	series  map[Field][]float64
	periods int
}

// New builds a Dataset from the supplied series, copying every slice so later
// caller mutations cannot leak into analysis results. All series must be
// non-empty and of equal length.
func New(series map[Field][]float64) (*Dataset, error) {
	if len(series) == 0 {
		return nil, errors.NewInvalidInputError("no series provided", nil)
	}

	periods := -1
	copied := make(map[Field][]float64, len(series))
	for field, values := range series {
		if len(values) == 0 {
			return nil, errors.NewInvalidInputError(
				fmt.Sprintf("series %q is empty", field), nil)
		}
		if periods == -1 {
			periods = len(values)
		} else if len(values) != periods {
			return nil, errors.NewInvalidInputError(
				fmt.Sprintf("series %q has %d periods, expected %d", field, len(values), periods), nil).
				WithContext("field", string(field))
		}
		cp := make([]float64, len(values))
		copy(cp, values)
		copied[field] = cp
	}

	return &Dataset{series: copied, periods: periods}, nil
}

// Periods returns the number of periods shared by all series.
func (d *Dataset) Periods() int {
	return d.periods
}

// Has reports whether the dataset carries the given field.
func (d *Dataset) Has(field Field) bool {
	_, ok := d.series[field]
	return ok
}

// Fields returns the fields present in the dataset, sorted by name.
func (d *Dataset) Fields() []Field {
	fields := make([]Field, 0, len(d.series))
	for f := range d.series {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Series returns a copy of the named series, or nil when absent.
func (d *Dataset) Series(field Field) []float64 {
	values, ok := d.series[field]
	if !ok {
		return nil
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return cp
}

// SeriesOr returns a copy of the named series, or a series of the fallback
// value when absent. Optional inputs like CapEx and Dividends default to zero
// series this way.
func (d *Dataset) SeriesOr(field Field, fallback float64) []float64 {
	if values := d.Series(field); values != nil {
		return values
	}
	cp := make([]float64, d.periods)
	for i := range cp {
		cp[i] = fallback
	}
	return cp
}

// Latest returns the most recent value of the named series, or 0 when absent.
func (d *Dataset) Latest(field Field) float64 {
	values, ok := d.series[field]
	if !ok {
		return 0
	}
	return values[len(values)-1]
}

// Require verifies that every named field is present, returning an
// invalid-input error naming the first missing one.
func (d *Dataset) Require(fields ...Field) error {
	for _, field := range fields {
		if !d.Has(field) {
			return errors.NewInvalidInputError(
				fmt.Sprintf("required field %q is missing", field), nil).
				WithContext("field", string(field))
		}
	}
	return nil
}
