package dashboard

import "github.com/tensortrade/council-dashboard/internal/render"

// ControlState is the lifecycle state of the analyze control.
type ControlState int

const (
	StateReady ControlState = iota
	StateRunning
	StateSucceeded
	StateFailed
)

const analyzeButton = "GENERATE ANALYSIS REPORT"

var stateNames = [...]string{"ready", "running", "succeeded", "failed"}

func (s ControlState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// View is how the control looks in this state.
func (s ControlState) View() render.ControlView {
	switch s {
	case StateRunning:
		return render.ControlView{Status: "Running 5-agent LLM council...", Color: "#ff8888", Button: "ANALYZING... (60-120s)", Disabled: true}
	case StateSucceeded:
		return render.ControlView{Status: "Analysis Complete ✓", Color: render.ColorProfit, Button: analyzeButton}
	case StateFailed:
		return render.ControlView{Status: "Analysis Failed - Check Console", Color: render.ColorLoss, Button: analyzeButton}
	default:
		return render.ControlView{Status: "Ready for Analysis", Color: render.ColorNeutral, Button: analyzeButton}
	}
}

// StateView is the JSON form of a control state.
type StateView struct {
	Name string `json:"name"`
	render.ControlView
}

func viewOf(s ControlState) *StateView {
	return &StateView{Name: s.String(), ControlView: s.View()}
}
