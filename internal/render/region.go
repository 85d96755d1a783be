package render

// Region is the id of a page container the transform may replace.
type Region string

const (
	RegionMarketRegime    Region = "market-regime"
	RegionVIX             Region = "vix-display"
	RegionRiskIndex       Region = "risk-index"
	RegionCouncilOpinions Region = "council-opinions"
	RegionConsensus       Region = "consensus-list"
	RegionNarrative       Region = "narrative-output"
	RegionTradeStats      Region = "trade-stats"
	RegionBehavioralFlags Region = "behavioral-flags"
	RegionMarketContext   Region = "market-context"
	RegionEconomicEvents  Region = "economic-events"
)

// Regions lists every region in page order. Each entry must have a
// "region/<id>" template and exactly one slot in the page skeleton.
var Regions = []Region{
	RegionMarketRegime,
	RegionVIX,
	RegionRiskIndex,
	RegionCouncilOpinions,
	RegionConsensus,
	RegionNarrative,
	RegionTradeStats,
	RegionBehavioralFlags,
	RegionMarketContext,
	RegionEconomicEvents,
}

func (r Region) template() string {
	return "region/" + string(r)
}

func known(id string) bool {
	for _, r := range Regions {
		if string(r) == id {
			return true
		}
	}
	return false
}
