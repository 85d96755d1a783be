package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tensortrade/council-dashboard/internal/model"
	"github.com/tensortrade/council-dashboard/internal/render"
)

// ContentType is the MIME type of the summary download.
const ContentType = "text/markdown; charset=utf-8"

// ErrNoAnalysis means there is no result with council opinions to summarise.
var ErrNoAnalysis = errors.New("export: no analysis to summarise")

// NoAnalysisMessage is the user-facing text for ErrNoAnalysis.
const NoAnalysisMessage = "No summary data available. Please run an analysis first."

var (
	rule         = strings.Repeat("=", 80)
	unsafeSymbol = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// Filename names the summary download after the symbol and the generation
// instant, e.g. TensorTrade_5LLM_Summary_AAPL_2026-10-19T14-30-05.md.
func Filename(symbol string, t time.Time) string {
	symbol = unsafeSymbol.ReplaceAllString(strings.TrimSpace(symbol), "_")
	if symbol == "" {
		symbol = "ANALYSIS"
	}
	return fmt.Sprintf("TensorTrade_5LLM_Summary_%s_%s.md", symbol, t.UTC().Format("2006-01-02T15-04-05"))
}

// Summary builds the Markdown report for a result. Sections whose source
// field is absent or empty are omitted, except the header, the council and
// the footer.
func Summary(res *model.AnalysisResult, generatedAt time.Time) (string, error) {
	if !res.HasCouncil() {
		return "", ErrNoAnalysis
	}

	var b strings.Builder
	writeHeader(&b, res, generatedAt)
	writeCouncil(&b, res.MarketAnalysis)
	writeConsensus(&b, res.MarketAnalysis.Consensus)
	writeNarrative(&b, res)
	writeTradeStats(&b, res.TradeHistory)
	if res.BehavioralAnalysis != nil {
		writeFlags(&b, res.BehavioralAnalysis.Flags)
	}
	if ec := res.EconomicCalendar; ec != nil {
		if ec.Summary != "" {
			fmt.Fprintf(&b, "\n## MARKET CONTEXT\n\n%s\n\n", ec.Summary)
		}
		writeEvents(&b, ec.EconomicEvents)
		writeNews(&b, ec.RecentNews)
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("\nReport generated by TensorTrade AI Trading Analyst\n")
	b.WriteString("Powered by 5-Agent LLM Council\n")
	return b.String(), nil
}

func writeHeader(b *strings.Builder, res *model.AnalysisResult, at time.Time) {
	b.WriteString("# 5 LLM COUNCIL IN-DEPTH ANALYSIS SUMMARY\n")
	fmt.Fprintf(b, "Generated: %s\n", at.UTC().Format("1/2/2006, 3:04:05 PM MST"))
	fmt.Fprintf(b, "Symbol: %s\n", res.DisplaySymbol())
	fmt.Fprintf(b, "Persona: %s\n", res.PersonaLabel())
	fmt.Fprintf(b, "\n%s\n\n", rule)
}

func writeCouncil(b *strings.Builder, ma *model.MarketAnalysis) {
	b.WriteString("## 5 LLM COUNCIL OPINIONS\n\n")
	for _, op := range model.Seated(ma.CouncilOpinions) {
		fmt.Fprintf(b, "### %s %s\n%s\n\n", op.Emoji, op.Name, op.Text)
	}
	if ma.JudgeSummary != "" {
		fmt.Fprintf(b, "**Judge:** %s\n\n", ma.JudgeSummary)
	}
}

func writeConsensus(b *strings.Builder, points []string) {
	if len(points) == 0 {
		return
	}
	b.WriteString("\n## CONSENSUS POINTS\n\n")
	for i, p := range points {
		fmt.Fprintf(b, "%d. %s\n", i+1, p)
	}
	b.WriteString("\n")
}

func writeNarrative(b *strings.Builder, res *model.AnalysisResult) {
	text := res.Narrative.Text()
	if text == "" {
		return
	}
	fmt.Fprintf(b, "\n## AI NARRATIVE (%s)\n\n%s\n\n", res.PersonaLabel(), text)
}

func writeTradeStats(b *strings.Builder, th *model.TradeHistory) {
	if th == nil {
		return
	}
	b.WriteString("\n## TRADE STATISTICS\n\n")
	fmt.Fprintf(b, "- Total Trades: %s\n", model.Num(th.TotalTrades.Or(0)).String())
	fmt.Fprintf(b, "- Win Rate: %s\n", render.Percent1(model.Num(th.WinRate.Or(0))))
	fmt.Fprintf(b, "- Total P&L: %s\n", render.Money(model.Num(th.TotalPnL.Or(0))))
	if avg, ok := averagePnL(th); ok {
		fmt.Fprintf(b, "- Average P&L: %s\n", avg)
	}
	if !th.LastTrade.IsZero() {
		fmt.Fprintf(b, "- Last Trade: %s\n", th.LastTrade.Label("description", "summary"))
	}
	b.WriteString("\n")
}

// averagePnL is the given average, else total / trades when both are known.
func averagePnL(th *model.TradeHistory) (string, bool) {
	if th.AvgPnL.Valid {
		return render.Money(th.AvgPnL), true
	}
	if th.TotalPnL.Valid && th.TotalTrades.Valid && th.TotalTrades.Value > 0 {
		avg := decimal.NewFromFloat(th.TotalPnL.Value).Div(decimal.NewFromFloat(th.TotalTrades.Value))
		return render.Money(model.Num(avg.InexactFloat64())), true
	}
	return "", false
}

func writeFlags(b *strings.Builder, flags []model.Flag) {
	if len(flags) == 0 {
		return
	}
	b.WriteString("\n## BEHAVIORAL FLAGS\n\n")
	for _, f := range flags {
		if f.Pattern != "" {
			fmt.Fprintf(b, "⚠️ %s: %s\n", f.Title(), f.Body())
			continue
		}
		fmt.Fprintf(b, "⚠️ %s\n", f.Body())
	}
	b.WriteString("\n")
}

func writeEvents(b *strings.Builder, events []model.Entry) {
	if len(events) == 0 {
		return
	}
	b.WriteString("\n## UPCOMING ECONOMIC EVENTS\n\n")
	for _, e := range events {
		switch {
		case e.IsZero():
		case !e.IsObject():
			fmt.Fprintf(b, "- %s\n", e.Text)
		default:
			fmt.Fprintf(b, "### %s\n", e.Label("title", "event", "name"))
			if t := e.First("time", "date"); t != "" {
				fmt.Fprintf(b, "- Time: %s\n", t)
			}
			if v := e.Field("impact"); v != "" {
				fmt.Fprintf(b, "- Impact: %s\n", v)
			}
			if v := e.Field("description"); v != "" {
				fmt.Fprintf(b, "- Description: %s\n", v)
			}
			b.WriteString("\n")
		}
	}
}

func writeNews(b *strings.Builder, news []model.Entry) {
	if len(news) == 0 {
		return
	}
	b.WriteString("\n## RECENT NEWS\n\n")
	for i, n := range news {
		switch {
		case n.IsZero():
		case !n.IsObject():
			fmt.Fprintf(b, "%d. %s\n", i+1, n.Text)
		default:
			fmt.Fprintf(b, "%d. %s\n", i+1, n.Label("headline", "title", "description", "text"))
			if src := n.First("url", "link"); src != "" {
				fmt.Fprintf(b, "   Source: %s\n", src)
			}
		}
	}
	b.WriteString("\n")
}
