// Package model defines the payload types exchanged with the analysis
// backend and the session records the dashboard keeps about them.
//
// The backend may omit any field, so nested objects are pointers (absent
// differs from empty) and loosely typed scalars decode through Number,
// Flag and Entry instead of failing the whole response.
package model

import (
	"strings"
)

// AnalysisResult is the decoded body of one /analyze-asset response.
// It is replaced wholesale on every successful request, never merged.
type AnalysisResult struct {
	Asset              string              `json:"asset,omitempty"`
	Symbol             string              `json:"symbol,omitempty"`
	UserID             string              `json:"user_id,omitempty"`
	AnalysisType       string              `json:"analysis_type,omitempty"`
	PersonaSelected    string              `json:"persona_selected,omitempty"`
	MarketMetrics      *MarketMetrics      `json:"market_metrics,omitempty"`
	MarketAnalysis     *MarketAnalysis     `json:"market_analysis,omitempty"`
	Narrative          *Narrative          `json:"narrative,omitempty"`
	TradeHistory       *TradeHistory       `json:"trade_history,omitempty"`
	BehavioralAnalysis *BehavioralAnalysis `json:"behavioral_analysis,omitempty"`
	EconomicCalendar   *EconomicCalendar   `json:"economic_calendar,omitempty"`
	PersonaPost        *PersonaPost        `json:"persona_post,omitempty"`
	Timestamp          string              `json:"timestamp,omitempty"`
	Errors             map[string]string   `json:"errors,omitempty"`
}

// MarketMetrics carries the backend's regime and risk computation.
type MarketMetrics struct {
	MarketRegime    string `json:"market_regime,omitempty"`
	VIX             Number `json:"vix"`
	RiskIndex       Number `json:"risk_index"` // 0-100
	RiskLevel       string `json:"risk_level,omitempty"`
	RegimeColor     string `json:"regime_color,omitempty"`
	AssetVolatility Number `json:"asset_volatility"`
}

// MarketAnalysis is the output of the five-member council.
type MarketAnalysis struct {
	CouncilOpinions []string       `json:"council_opinions"`
	Consensus       []string       `json:"consensus"`
	Disagreements   []string       `json:"disagreements,omitempty"`
	JudgeSummary    string         `json:"judge_summary,omitempty"`
	MarketContext   *MarketContext `json:"market_context,omitempty"`
}

// MarketContext is the one-line price strip for the analysed asset.
type MarketContext struct {
	MoveDirection string `json:"move_direction,omitempty"` // "UP" or "DOWN"
	ChangePct     Number `json:"change_pct"`
	Price         Number `json:"price"`
	Volume        Number `json:"volume"`
}

// IsUp reports whether the move direction is upward. Anything other than
// "UP" is treated as a downward move.
func (c *MarketContext) IsUp() bool {
	return strings.EqualFold(strings.TrimSpace(c.MoveDirection), "UP")
}

// Narrative holds the persona-styled text variants.
type Narrative struct {
	StyledMessage   string `json:"styled_message,omitempty"`
	Summary         string `json:"summary,omitempty"`
	ModeratedOutput string `json:"moderated_output,omitempty"`
}

// Text returns the first non-blank variant in display priority order:
// styled message, summary, moderated output.
func (n *Narrative) Text() string {
	if n == nil {
		return ""
	}
	for _, s := range []string{n.StyledMessage, n.Summary, n.ModeratedOutput} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// TradeHistory summarises the user's past trades.
type TradeHistory struct {
	TotalTrades Number `json:"total_trades"`
	WinRate     Number `json:"win_rate"`
	TotalPnL    Number `json:"total_pnl"`
	AvgPnL      Number `json:"avg_pnl"`
	LastTrade   Entry  `json:"last_trade"`
}

// BehavioralAnalysis lists detected trading-psychology patterns.
type BehavioralAnalysis struct {
	Flags    []Flag   `json:"flags"`
	Insights []string `json:"insights,omitempty"`
}

// EconomicCalendar holds scheduled events and recent headlines.
type EconomicCalendar struct {
	Summary        string  `json:"summary,omitempty"`
	EconomicEvents []Entry `json:"economic_events"`
	RecentNews     []Entry `json:"recent_news"`
	Earnings       Entry   `json:"earnings"`
}

// PersonaPost holds share-ready posts per platform.
type PersonaPost struct {
	X        string `json:"x"`
	LinkedIn string `json:"linkedin"`
}

// PersonaLabel returns the persona upper-cased for display, or "N/A".
func (r *AnalysisResult) PersonaLabel() string {
	if r == nil || strings.TrimSpace(r.PersonaSelected) == "" {
		return "N/A"
	}
	return strings.ToUpper(r.PersonaSelected)
}

// DisplaySymbol returns the asset symbol, falling back to "ANALYSIS".
func (r *AnalysisResult) DisplaySymbol() string {
	if r == nil {
		return "ANALYSIS"
	}
	if r.Asset != "" {
		return r.Asset
	}
	if r.Symbol != "" {
		return r.Symbol
	}
	return "ANALYSIS"
}

// HasCouncil reports whether the council opinions field was supplied.
func (r *AnalysisResult) HasCouncil() bool {
	return r != nil && r.MarketAnalysis != nil && r.MarketAnalysis.CouncilOpinions != nil
}
