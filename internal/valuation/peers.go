package valuation

import (
	"os"
	"sort"

	yaml "gopkg.in/yaml.v2"

	"finsight/internal/errors"
)

// PeerRepository resolves an industry label to its comparable-company peer
// group. Implementations must be safe for concurrent use.
type PeerRepository interface {
	// PeerGroup returns the peers for the industry and the industry label
	// actually used. An unknown industry resolves silently to the default
	// group; the returned label exposes the substitution.
	PeerGroup(industry string) ([]ComparableCompany, string)
	// Industries lists the known industry labels, sorted.
	Industries() []string
}

// DefaultIndustry is the peer group used when an industry label is not in
// the catalogue.
const DefaultIndustry = "Technology"

// StaticPeerRepository serves a fixed in-memory catalogue
type StaticPeerRepository struct {
	groups map[string][]ComparableCompany
}

// NewStaticPeerRepository returns the built-in peer catalogue
func NewStaticPeerRepository() *StaticPeerRepository {
	return &StaticPeerRepository{groups: builtinPeerCatalogue()}
}

// PeerGroup implements PeerRepository
func (r *StaticPeerRepository) PeerGroup(industry string) ([]ComparableCompany, string) {
	if peers, ok := r.groups[industry]; ok {
		return clonePeers(peers), industry
	}
	return clonePeers(r.groups[DefaultIndustry]), DefaultIndustry
}

// Industries implements PeerRepository
func (r *StaticPeerRepository) Industries() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPeerCatalogue reads a peer catalogue from a YAML file, keyed by
// industry label. This lets a deployment swap the built-in data for a live
// export without touching the analysis logic.
func LoadPeerCatalogue(path string) (*StaticPeerRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewReferenceError("failed to read peer catalogue", err)
	}

	var raw map[string][]struct {
		Name        string  `yaml:"name"`
		MarketCap   float64 `yaml:"market_cap"`
		Revenue     float64 `yaml:"revenue"`
		EBITDA      float64 `yaml:"ebitda"`
		NetIncome   float64 `yaml:"net_income"`
		BookValue   float64 `yaml:"book_value"`
		PE          float64 `yaml:"pe"`
		EVToEBITDA  float64 `yaml:"ev_to_ebitda"`
		PriceToBook float64 `yaml:"price_to_book"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewReferenceError("failed to parse peer catalogue", err)
	}
	if _, ok := raw[DefaultIndustry]; !ok {
		return nil, errors.NewReferenceError(
			"peer catalogue must include the default industry "+DefaultIndustry, nil)
	}

	groups := make(map[string][]ComparableCompany, len(raw))
	for industry, peers := range raw {
		group := make([]ComparableCompany, 0, len(peers))
		for _, p := range peers {
			group = append(group, ComparableCompany{
				Name:        p.Name,
				MarketCap:   p.MarketCap,
				Revenue:     p.Revenue,
				EBITDA:      p.EBITDA,
				NetIncome:   p.NetIncome,
				BookValue:   p.BookValue,
				PE:          p.PE,
				EVToEBITDA:  p.EVToEBITDA,
				PriceToBook: p.PriceToBook,
			})
		}
		groups[industry] = group
	}

	return &StaticPeerRepository{groups: groups}, nil
}

func clonePeers(peers []ComparableCompany) []ComparableCompany {
	out := make([]ComparableCompany, len(peers))
	copy(out, peers)
	return out
}

// builtinPeerCatalogue is the default reference data. Figures are stylized
// mid-cap profiles per industry, in millions.
func builtinPeerCatalogue() map[string][]ComparableCompany {
	return map[string][]ComparableCompany{
		"Technology": {
			{Name: "Nimbus Software", MarketCap: 48000, Revenue: 12000, EBITDA: 3600, NetIncome: 2100, BookValue: 9000, PE: 32.5, EVToEBITDA: 18.2, PriceToBook: 5.3},
			{Name: "Vertex Cloud", MarketCap: 36000, Revenue: 9500, EBITDA: 2500, NetIncome: 1400, BookValue: 7200, PE: 28.4, EVToEBITDA: 16.0, PriceToBook: 5.0},
			{Name: "Corewave Systems", MarketCap: 21000, Revenue: 7800, EBITDA: 1900, NetIncome: 950, BookValue: 5600, PE: 24.1, EVToEBITDA: 12.8, PriceToBook: 3.8},
			{Name: "Kitewire Labs", MarketCap: 9800, Revenue: 3100, EBITDA: 520, NetIncome: 210, BookValue: 1900, PE: 46.7, EVToEBITDA: 21.5, PriceToBook: 5.2},
			{Name: "Octavia Digital", MarketCap: 15500, Revenue: 5400, EBITDA: 1400, NetIncome: 760, BookValue: 4100, PE: 20.4, EVToEBITDA: 11.9, PriceToBook: 3.8},
		},
		"Healthcare": {
			{Name: "Meridian Health", MarketCap: 32000, Revenue: 14500, EBITDA: 3200, NetIncome: 1800, BookValue: 11000, PE: 17.8, EVToEBITDA: 11.2, PriceToBook: 2.9},
			{Name: "Caduceus Pharma", MarketCap: 41000, Revenue: 11200, EBITDA: 4100, NetIncome: 2600, BookValue: 13500, PE: 15.8, EVToEBITDA: 10.5, PriceToBook: 3.0},
			{Name: "Alba Medical Devices", MarketCap: 18700, Revenue: 6200, EBITDA: 1500, NetIncome: 820, BookValue: 5100, PE: 22.8, EVToEBITDA: 13.1, PriceToBook: 3.7},
			{Name: "Silverline Care", MarketCap: 8600, Revenue: 5900, EBITDA: 760, NetIncome: 340, BookValue: 2800, PE: 25.3, EVToEBITDA: 12.4, PriceToBook: 3.1},
		},
		"Consumer Goods": {
			{Name: "Harvest & Field", MarketCap: 26500, Revenue: 18800, EBITDA: 3000, NetIncome: 1600, BookValue: 9800, PE: 16.6, EVToEBITDA: 9.8, PriceToBook: 2.7},
			{Name: "Bluebird Brands", MarketCap: 14200, Revenue: 9900, EBITDA: 1700, NetIncome: 890, BookValue: 5400, PE: 16.0, EVToEBITDA: 9.1, PriceToBook: 2.6},
			{Name: "Caston Beverage", MarketCap: 33000, Revenue: 15600, EBITDA: 4000, NetIncome: 2300, BookValue: 10900, PE: 14.3, EVToEBITDA: 8.9, PriceToBook: 3.0},
			{Name: "Orchard Home", MarketCap: 7400, Revenue: 6100, EBITDA: 700, NetIncome: 310, BookValue: 2600, PE: 23.9, EVToEBITDA: 11.6, PriceToBook: 2.8},
		},
		"Industrials": {
			{Name: "Granite Forge", MarketCap: 19800, Revenue: 16200, EBITDA: 2400, NetIncome: 1200, BookValue: 8900, PE: 16.5, EVToEBITDA: 9.4, PriceToBook: 2.2},
			{Name: "Axle & Beam", MarketCap: 12600, Revenue: 10800, EBITDA: 1500, NetIncome: 680, BookValue: 6200, PE: 18.5, EVToEBITDA: 9.9, PriceToBook: 2.0},
			{Name: "Northway Machinery", MarketCap: 24500, Revenue: 19400, EBITDA: 3100, NetIncome: 1700, BookValue: 11800, PE: 14.4, EVToEBITDA: 8.6, PriceToBook: 2.1},
			{Name: "Pillarstone Engineering", MarketCap: 6900, Revenue: 5700, EBITDA: 640, NetIncome: 270, BookValue: 3300, PE: 25.6, EVToEBITDA: 11.8, PriceToBook: 2.1},
		},
		"Financial Services": {
			{Name: "Keystone Capital", MarketCap: 28700, Revenue: 9800, EBITDA: 4300, NetIncome: 2500, BookValue: 21000, PE: 11.5, EVToEBITDA: 7.4, PriceToBook: 1.4},
			{Name: "Harborview Financial", MarketCap: 16400, Revenue: 6400, EBITDA: 2700, NetIncome: 1500, BookValue: 13600, PE: 10.9, EVToEBITDA: 6.8, PriceToBook: 1.2},
			{Name: "Crescent Trust", MarketCap: 9200, Revenue: 3900, EBITDA: 1500, NetIncome: 780, BookValue: 7700, PE: 11.8, EVToEBITDA: 7.0, PriceToBook: 1.2},
			{Name: "Vanward Insurance", MarketCap: 21800, Revenue: 12600, EBITDA: 3200, NetIncome: 1900, BookValue: 16400, PE: 11.5, EVToEBITDA: 7.7, PriceToBook: 1.3},
		},
		"Energy": {
			{Name: "Tidewater Resources", MarketCap: 34500, Revenue: 28700, EBITDA: 7800, NetIncome: 3400, BookValue: 24600, PE: 10.1, EVToEBITDA: 5.8, PriceToBook: 1.4},
			{Name: "Summit Petroleum", MarketCap: 20900, Revenue: 19800, EBITDA: 5100, NetIncome: 2100, BookValue: 15900, PE: 10.0, EVToEBITDA: 5.5, PriceToBook: 1.3},
			{Name: "Borealis Renewables", MarketCap: 12700, Revenue: 5200, EBITDA: 1900, NetIncome: 620, BookValue: 6800, PE: 20.5, EVToEBITDA: 9.7, PriceToBook: 1.9},
			{Name: "Ironbark Utilities", MarketCap: 17800, Revenue: 11400, EBITDA: 3900, NetIncome: 1500, BookValue: 12300, PE: 11.9, EVToEBITDA: 6.9, PriceToBook: 1.4},
		},
	}
}
