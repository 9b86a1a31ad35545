package stress

// Catalogue returns the fixed scenario library. Callers may also construct
// their own scenarios; these four cover the standard stress battery.
func Catalogue() []Scenario {
	return []Scenario{
		{
			Name:                    "Mild Recession",
			Description:             "Moderate demand contraction with limited margin pressure",
			RevenueShockPct:         -15,
			MarginPressureBps:       200,
			WorkingCapitalImpactPct: 2,
			CapexChangePct:          -20,
		},
		{
			Name:                    "Severe Recession",
			Description:             "Deep demand collapse with heavy margin compression",
			RevenueShockPct:         -30,
			MarginPressureBps:       400,
			WorkingCapitalImpactPct: 5,
			CapexChangePct:          -50,
		},
		{
			Name:                    "Industry Disruption",
			Description:             "Structural share loss to a disruptive competitor",
			RevenueShockPct:         -25,
			MarginPressureBps:       300,
			WorkingCapitalImpactPct: 3,
			CapexChangePct:          -10,
		},
		{
			Name:                    "Supply Chain Crisis",
			Description:             "Input shortages inflate costs and trap working capital",
			RevenueShockPct:         -10,
			MarginPressureBps:       500,
			WorkingCapitalImpactPct: 8,
			CapexChangePct:          -30,
		},
	}
}
