package render

// ControlView is how the analyze control looks in one lifecycle state.
type ControlView struct {
	Status   string `json:"status"`
	Color    string `json:"color"`
	Button   string `json:"button"`
	Disabled bool   `json:"disabled"`
}

// Meter is one decorative pressure gauge.
type Meter struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// PageData feeds the skeleton.
type PageData struct {
	SessionID     string
	DefaultAsset  string
	DefaultUserID string
	WSPath        string

	// BackendReady switches placeholders from LOADING to AWAITING ANALYSIS
	// after a successful health probe.
	BackendReady bool

	Ready   ControlView
	Running ControlView
	Meters  []Meter
}

// Placeholders returns the pre-analysis region contents.
func (p PageData) Placeholders() Placeholders {
	if p.BackendReady {
		return Placeholders{
			Regime: RegimeView{Label: "AWAITING ANALYSIS", Color: ColorNeutral},
			VIX:    VIXView{Text: "VIX: Run analysis"},
			Risk:   RiskView{Value: Missing},
		}
	}
	return Placeholders{
		Regime: RegimeView{Label: "LOADING..."},
		VIX:    VIXView{Text: "VIX: " + Missing},
		Risk:   RiskView{Value: Missing},
	}
}

// Placeholders are the initial region views.
type Placeholders struct {
	Regime RegimeView
	VIX    VIXView
	Risk   RiskView
}
