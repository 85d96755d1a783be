package render

import (
	"html/template"

	"github.com/tensortrade/council-dashboard/internal/model"
)

// RegimeView is the market-regime card.
type RegimeView struct {
	Label string
	Color string
}

// VIXView is the VIX line.
type VIXView struct {
	Text string
}

// RiskView is the risk gauge. Band is empty when risk_index is missing;
// Level is the backend's own label and is shown as given.
type RiskView struct {
	Value string
	Width string
	Band  string
	Level string
}

// NarrativeView is the narrative card.
type NarrativeView struct {
	Persona string
	Body    template.HTML
	Empty   bool
}

// TradeStatsView is the four trade tiles.
type TradeStatsView struct {
	Trades   string
	WinRate  string
	PnL      string
	PnLColor string
	Persona  string
}

// FlagView is one behavioral flag block.
type FlagView struct {
	Title string
	Body  string
}

// ContextView is the price strip.
type ContextView struct {
	Asset  string
	Up     bool
	Change string
	Price  string
	Volume string
}

// EventView is one calendar entry.
type EventView struct {
	Label  string
	Time   string
	Impact string
}

// NewsView is one headline.
type NewsView struct {
	Label string
	URL   string
}

// EventsView is the economic-events region: events, then news.
type EventsView struct {
	Events []EventView
	News   []NewsView
}

func views(res *model.AnalysisResult, narrative func(string) template.HTML) map[Region]any {
	out := make(map[Region]any)

	if mm := res.MarketMetrics; mm != nil {
		if mm.MarketRegime != "" {
			out[RegionMarketRegime] = RegimeView{Label: mm.MarketRegime, Color: SafeColor(mm.RegimeColor)}
		}
		if mm.VIX.Valid {
			out[RegionVIX] = VIXView{Text: "VIX: " + mm.VIX.String()}
		}
		if mm.RiskIndex.Valid || mm.RiskLevel != "" {
			out[RegionRiskIndex] = riskView(mm)
		}
	}

	if ma := res.MarketAnalysis; ma != nil {
		if ma.CouncilOpinions != nil {
			out[RegionCouncilOpinions] = model.Seated(ma.CouncilOpinions)
		}
		if ma.Consensus != nil {
			out[RegionConsensus] = ma.Consensus
		}
		if mc := ma.MarketContext; mc != nil {
			out[RegionMarketContext] = ContextView{
				Asset:  res.DisplaySymbol(),
				Up:     mc.IsUp(),
				Change: Change(mc.ChangePct, mc.IsUp()),
				Price:  Price(mc.Price),
				Volume: Volume(mc.Volume),
			}
		}
	}

	if n := res.Narrative; n != nil {
		v := NarrativeView{Persona: res.PersonaLabel()}
		if text := n.Text(); text != "" {
			v.Body = narrative(text)
		} else {
			v.Empty = true
		}
		out[RegionNarrative] = v
	}

	if th := res.TradeHistory; th != nil {
		out[RegionTradeStats] = TradeStatsView{
			Trades:   Scalar(th.TotalTrades),
			WinRate:  Percent1(th.WinRate),
			PnL:      Money(th.TotalPnL),
			PnLColor: PnLColor(th.TotalPnL),
			Persona:  res.PersonaLabel(),
		}
	}

	if ba := res.BehavioralAnalysis; ba != nil && ba.Flags != nil {
		flags := make([]FlagView, 0, len(ba.Flags))
		for _, f := range ba.Flags {
			flags = append(flags, FlagView{Title: f.Title(), Body: f.Body()})
		}
		out[RegionBehavioralFlags] = flags
	}

	if ec := res.EconomicCalendar; ec != nil && ec.EconomicEvents != nil {
		out[RegionEconomicEvents] = eventsView(ec)
	}

	return out
}

func riskView(mm *model.MarketMetrics) RiskView {
	v := RiskView{Value: Missing, Level: mm.RiskLevel}
	if mm.RiskIndex.Valid {
		v.Value = mm.RiskIndex.String()
		v.Width = BarWidth(mm.RiskIndex.Value)
		v.Band = RiskBand(mm.RiskIndex.Value)
	}
	return v
}

func eventsView(ec *model.EconomicCalendar) EventsView {
	var v EventsView
	for _, e := range ec.EconomicEvents {
		if e.IsZero() {
			continue
		}
		v.Events = append(v.Events, EventView{
			Label:  e.Label("title", "event", "name"),
			Time:   e.First("time", "date"),
			Impact: e.Field("impact"),
		})
	}
	for _, n := range ec.RecentNews {
		if n.IsZero() {
			continue
		}
		v.News = append(v.News, NewsView{
			Label: n.Label("headline", "title", "description", "text"),
			URL:   n.First("url", "link"),
		})
	}
	return v
}
