package benchmark

import (
	"os"
	"sort"

	yaml "gopkg.in/yaml.v2"

	"finsight/internal/errors"
)

// Metric names a benchmarked ratio. Values use the same units as the ratio
// engine: margins and returns in percent, leverage and turnover as plain
// ratios.
type Metric string

const (
	MetricGrossMargin   Metric = "gross_margin"
	MetricNetMargin     Metric = "net_margin"
	MetricROE           Metric = "roe"
	MetricROA           Metric = "roa"
	MetricAssetTurnover Metric = "asset_turnover"
	MetricDebtToEquity  Metric = "debt_to_equity"
	MetricRevenueGrowth Metric = "revenue_growth"
)

// Band holds the four performance thresholds for one metric in one industry.
// For most metrics higher is better and the thresholds ascend from Poor to
// Excellent; for debt-to-equity lower is better and they descend.
type Band struct {
	Poor      float64 `yaml:"poor" json:"poor"`
	Average   float64 `yaml:"average" json:"average"`
	Good      float64 `yaml:"good" json:"good"`
	Excellent float64 `yaml:"excellent" json:"excellent"`
}

// BandRepository resolves an industry label to its benchmark bands.
// Implementations must be safe for concurrent use.
type BandRepository interface {
	// Bands returns the metric bands for the industry and the industry label
	// actually used. An unknown industry resolves silently to the default
	// group; the returned label exposes the substitution.
	Bands(industry string) (map[Metric]Band, string)
	// Industries lists the known industry labels, sorted.
	Industries() []string
}

// DefaultIndustry is the band set used when an industry label is not in the
// catalogue.
const DefaultIndustry = "Technology"

// StaticBandRepository serves a fixed in-memory catalogue
type StaticBandRepository struct {
	groups map[string]map[Metric]Band
}

// NewStaticBandRepository returns the built-in band catalogue
func NewStaticBandRepository() *StaticBandRepository {
	return &StaticBandRepository{groups: builtinBandCatalogue()}
}

// Bands implements BandRepository
func (r *StaticBandRepository) Bands(industry string) (map[Metric]Band, string) {
	if bands, ok := r.groups[industry]; ok {
		return cloneBands(bands), industry
	}
	return cloneBands(r.groups[DefaultIndustry]), DefaultIndustry
}

// Industries implements BandRepository
func (r *StaticBandRepository) Industries() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadBandCatalogue reads a band catalogue from a YAML file keyed by
// industry label, then metric name. A deployment can point this at a live
// benchmark export without touching the comparison logic.
func LoadBandCatalogue(path string) (*StaticBandRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewReferenceError("failed to read band catalogue", err)
	}

	var raw map[string]map[string]Band
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewReferenceError("failed to parse band catalogue", err)
	}
	if _, ok := raw[DefaultIndustry]; !ok {
		return nil, errors.NewReferenceError(
			"band catalogue must include the default industry "+DefaultIndustry, nil)
	}

	groups := make(map[string]map[Metric]Band, len(raw))
	for industry, bands := range raw {
		group := make(map[Metric]Band, len(bands))
		for name, band := range bands {
			group[Metric(name)] = band
		}
		groups[industry] = group
	}

	return &StaticBandRepository{groups: groups}, nil
}

func cloneBands(bands map[Metric]Band) map[Metric]Band {
	out := make(map[Metric]Band, len(bands))
	for name, band := range bands {
		out[name] = band
	}
	return out
}

// builtinBandCatalogue is the default reference data: stylized performance
// bands per industry. Margins, returns, and growth in percent; debt-to-equity
// and asset turnover as plain ratios.
func builtinBandCatalogue() map[string]map[Metric]Band {
	return map[string]map[Metric]Band{
		"Technology": {
			MetricGrossMargin:   {Poor: 30, Average: 45, Good: 60, Excellent: 75},
			MetricNetMargin:     {Poor: 2, Average: 8, Good: 15, Excellent: 25},
			MetricROE:           {Poor: 5, Average: 12, Good: 20, Excellent: 30},
			MetricROA:           {Poor: 2, Average: 6, Good: 10, Excellent: 16},
			MetricAssetTurnover: {Poor: 0.3, Average: 0.5, Good: 0.8, Excellent: 1.1},
			MetricDebtToEquity:  {Poor: 1.5, Average: 1.0, Good: 0.6, Excellent: 0.3},
			MetricRevenueGrowth: {Poor: 0, Average: 8, Good: 15, Excellent: 25},
		},
		"Healthcare": {
			MetricGrossMargin:   {Poor: 25, Average: 40, Good: 55, Excellent: 70},
			MetricNetMargin:     {Poor: 2, Average: 6, Good: 12, Excellent: 20},
			MetricROE:           {Poor: 4, Average: 10, Good: 16, Excellent: 24},
			MetricROA:           {Poor: 2, Average: 5, Good: 8, Excellent: 13},
			MetricAssetTurnover: {Poor: 0.4, Average: 0.6, Good: 0.9, Excellent: 1.2},
			MetricDebtToEquity:  {Poor: 1.6, Average: 1.1, Good: 0.7, Excellent: 0.4},
			MetricRevenueGrowth: {Poor: 0, Average: 5, Good: 10, Excellent: 18},
		},
		"Consumer Goods": {
			MetricGrossMargin:   {Poor: 20, Average: 30, Good: 40, Excellent: 52},
			MetricNetMargin:     {Poor: 1, Average: 5, Good: 9, Excellent: 14},
			MetricROE:           {Poor: 6, Average: 12, Good: 18, Excellent: 26},
			MetricROA:           {Poor: 2, Average: 5, Good: 9, Excellent: 14},
			MetricAssetTurnover: {Poor: 0.6, Average: 0.9, Good: 1.3, Excellent: 1.8},
			MetricDebtToEquity:  {Poor: 1.8, Average: 1.2, Good: 0.8, Excellent: 0.5},
			MetricRevenueGrowth: {Poor: -2, Average: 3, Good: 7, Excellent: 12},
		},
		"Industrials": {
			MetricGrossMargin:   {Poor: 15, Average: 25, Good: 33, Excellent: 42},
			MetricNetMargin:     {Poor: 1, Average: 4, Good: 8, Excellent: 12},
			MetricROE:           {Poor: 5, Average: 10, Good: 15, Excellent: 22},
			MetricROA:           {Poor: 2, Average: 4, Good: 7, Excellent: 11},
			MetricAssetTurnover: {Poor: 0.5, Average: 0.8, Good: 1.1, Excellent: 1.5},
			MetricDebtToEquity:  {Poor: 2.0, Average: 1.4, Good: 0.9, Excellent: 0.6},
			MetricRevenueGrowth: {Poor: -2, Average: 3, Good: 7, Excellent: 12},
		},
		"Financial Services": {
			MetricGrossMargin:   {Poor: 30, Average: 45, Good: 60, Excellent: 75},
			MetricNetMargin:     {Poor: 5, Average: 12, Good: 20, Excellent: 30},
			MetricROE:           {Poor: 4, Average: 8, Good: 12, Excellent: 18},
			MetricROA:           {Poor: 0.4, Average: 0.8, Good: 1.2, Excellent: 1.8},
			MetricAssetTurnover: {Poor: 0.05, Average: 0.1, Good: 0.15, Excellent: 0.25},
			MetricDebtToEquity:  {Poor: 10.0, Average: 8.0, Good: 6.0, Excellent: 4.0},
			MetricRevenueGrowth: {Poor: -2, Average: 3, Good: 8, Excellent: 14},
		},
		"Energy": {
			MetricGrossMargin:   {Poor: 15, Average: 25, Good: 35, Excellent: 48},
			MetricNetMargin:     {Poor: 1, Average: 5, Good: 10, Excellent: 16},
			MetricROE:           {Poor: 3, Average: 8, Good: 13, Excellent: 20},
			MetricROA:           {Poor: 1, Average: 3, Good: 6, Excellent: 10},
			MetricAssetTurnover: {Poor: 0.3, Average: 0.5, Good: 0.7, Excellent: 1.0},
			MetricDebtToEquity:  {Poor: 1.6, Average: 1.1, Good: 0.7, Excellent: 0.4},
			MetricRevenueGrowth: {Poor: -5, Average: 2, Good: 8, Excellent: 15},
		},
		"Retail": {
			MetricGrossMargin:   {Poor: 18, Average: 26, Good: 35, Excellent: 45},
			MetricNetMargin:     {Poor: 0.5, Average: 2.5, Good: 5, Excellent: 8},
			MetricROE:           {Poor: 6, Average: 12, Good: 18, Excellent: 28},
			MetricROA:           {Poor: 2, Average: 5, Good: 8, Excellent: 13},
			MetricAssetTurnover: {Poor: 1.0, Average: 1.5, Good: 2.0, Excellent: 2.8},
			MetricDebtToEquity:  {Poor: 2.2, Average: 1.5, Good: 1.0, Excellent: 0.6},
			MetricRevenueGrowth: {Poor: -3, Average: 2, Good: 6, Excellent: 11},
		},
		"Telecommunications": {
			MetricGrossMargin:   {Poor: 35, Average: 48, Good: 58, Excellent: 68},
			MetricNetMargin:     {Poor: 2, Average: 7, Good: 12, Excellent: 18},
			MetricROE:           {Poor: 4, Average: 9, Good: 14, Excellent: 20},
			MetricROA:           {Poor: 1, Average: 3, Good: 5, Excellent: 8},
			MetricAssetTurnover: {Poor: 0.25, Average: 0.4, Good: 0.55, Excellent: 0.75},
			MetricDebtToEquity:  {Poor: 2.5, Average: 1.8, Good: 1.2, Excellent: 0.8},
			MetricRevenueGrowth: {Poor: -3, Average: 1, Good: 4, Excellent: 8},
		},
	}
}
