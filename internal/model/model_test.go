package model

import (
	"encoding/json"
	"testing"
)

const samplePayload = `{
  "asset": "AAPL",
  "persona_selected": "mentor",
  "market_metrics": {"market_regime": "VOLATILE", "vix": 23.4, "risk_index": "71", "risk_level": "HIGH", "regime_color": "#ff4444"},
  "market_analysis": {
    "council_opinions": ["a", "b"],
    "consensus": [],
    "market_context": {"move_direction": "DOWN", "change_pct": -1.25, "price": null, "volume": "1,234,567"}
  },
  "trade_history": {"total_trades": 12, "win_rate": 66.666, "total_pnl": -12.345, "last_trade": {"symbol": "TSLA"}},
  "behavioral_analysis": {"flags": ["Revenge trading", {"pattern": "FOMO", "message": "Chasing"}]},
  "economic_calendar": {"economic_events": ["CPI Thursday", {"event": "FOMC", "impact": "high"}], "recent_news": [{"headline": "Apple beats"}]}
}`

func decodeSample(t *testing.T) *AnalysisResult {
	t.Helper()
	var r AnalysisResult
	if err := json.Unmarshal([]byte(samplePayload), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &r
}

func TestDecode_LenientNumbers(t *testing.T) {
	r := decodeSample(t)

	if !r.MarketMetrics.RiskIndex.Valid || r.MarketMetrics.RiskIndex.Value != 71 {
		t.Errorf("expected risk_index=71 from string, got %+v", r.MarketMetrics.RiskIndex)
	}
	mc := r.MarketAnalysis.MarketContext
	if mc.Price.Valid {
		t.Errorf("expected null price to be invalid, got %+v", mc.Price)
	}
	if mc.Volume.Value != 1234567 {
		t.Errorf("expected grouped string volume to parse, got %v", mc.Volume.Value)
	}
	if mc.IsUp() {
		t.Error("DOWN should not be up")
	}
	if r.TradeHistory.AvgPnL.Valid {
		t.Error("absent avg_pnl should be invalid")
	}
}

func TestDecode_NonFiniteNumbersAreAbsent(t *testing.T) {
	var r AnalysisResult
	payload := `{"market_metrics":{"vix":"NaN","risk_index":"Infinity","asset_volatility":"-Inf"}}`
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	mm := r.MarketMetrics
	if mm.VIX.Valid || mm.RiskIndex.Valid || mm.AssetVolatility.Valid {
		t.Errorf("expected non-finite values to be invalid, got %+v", mm)
	}
	if _, err := json.Marshal(&r); err != nil {
		t.Errorf("result should re-encode, got %v", err)
	}
}

func TestDecode_FlagsAndEntries(t *testing.T) {
	r := decodeSample(t)

	flags := r.BehavioralAnalysis.Flags
	if len(flags) != 2 {
		t.Fatalf("expected 2 flags, got %d", len(flags))
	}
	if flags[0].Title() != "Behavioral Pattern" || flags[0].Body() != "Revenge trading" {
		t.Errorf("unexpected plain flag: %q / %q", flags[0].Title(), flags[0].Body())
	}
	if flags[1].Title() != "FOMO" || flags[1].Body() != "Chasing" {
		t.Errorf("unexpected object flag: %q / %q", flags[1].Title(), flags[1].Body())
	}

	events := r.EconomicCalendar.EconomicEvents
	if got := events[0].Label("title", "event", "name"); got != "CPI Thursday" {
		t.Errorf("expected string event label, got %q", got)
	}
	if got := events[1].Label("title", "event", "name"); got != "FOMC" {
		t.Errorf("expected fallback to event field, got %q", got)
	}
	if got := r.TradeHistory.LastTrade.Label("description"); got != `{"symbol": "TSLA"}` {
		t.Errorf("expected raw dump fallback, got %q", got)
	}
}

func TestDecode_PresenceIsPreserved(t *testing.T) {
	r := decodeSample(t)

	if r.MarketAnalysis.Consensus == nil {
		t.Error("empty consensus array should decode as non-nil")
	}
	if r.Narrative != nil {
		t.Error("absent narrative should stay nil")
	}
	if !r.HasCouncil() {
		t.Error("expected council opinions to be present")
	}
	if r.PersonaLabel() != "MENTOR" {
		t.Errorf("expected MENTOR, got %s", r.PersonaLabel())
	}
}

func TestNarrative_Priority(t *testing.T) {
	cases := []struct {
		n    Narrative
		want string
	}{
		{Narrative{StyledMessage: "s", Summary: "m", ModeratedOutput: "o"}, "s"},
		{Narrative{StyledMessage: "  ", Summary: "m", ModeratedOutput: "o"}, "m"},
		{Narrative{ModeratedOutput: "o"}, "o"},
		{Narrative{}, ""},
	}
	for _, c := range cases {
		if got := c.n.Text(); got != c.want {
			t.Errorf("Text() = %q, want %q", got, c.want)
		}
	}
}

func TestAnalysisResult_NilSafe(t *testing.T) {
	var r *AnalysisResult
	if r.HasCouncil() {
		t.Error("nil result has no council")
	}
	if r.DisplaySymbol() != "ANALYSIS" {
		t.Errorf("expected ANALYSIS, got %s", r.DisplaySymbol())
	}
	if r.PersonaLabel() != "N/A" {
		t.Errorf("expected N/A, got %s", r.PersonaLabel())
	}
}
