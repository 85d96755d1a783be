package dashboard

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tensortrade/council-dashboard/internal/render"
)

// DefaultTickInterval is how often the pressure meters move.
const DefaultTickInterval = 5 * time.Second

// maxStep bounds each tick's move to [-maxStep, maxStep].
const maxStep = 2

// PressureBoard is the decorative header gauge set. Each tick moves every
// meter by a random integer step and clamps it to [0, 100]. It shares no
// state with any session.
type PressureBoard struct {
	mu     sync.Mutex
	meters []render.Meter
	rng    *rand.Rand
	hub    *WSHub // optional
}

// NewPressureBoard creates a board with the default meters. A nil rng
// uses a randomly seeded source.
func NewPressureBoard(rng *rand.Rand) *PressureBoard {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PressureBoard{
		meters: []render.Meter{
			{Key: "buy", Label: "BUY PRESSURE", Value: 62},
			{Key: "sell", Label: "SELL PRESSURE", Value: 38},
			{Key: "volatility", Label: "VOLATILITY", Value: 45},
			{Key: "sentiment", Label: "SENTIMENT", Value: 71},
		},
		rng: rng,
	}
}

// Attach sets the hub that receives each tick.
func (b *PressureBoard) Attach(hub *WSHub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub = hub
}

// Snapshot returns a copy of the current meters.
func (b *PressureBoard) Snapshot() []render.Meter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]render.Meter(nil), b.meters...)
}

// Message wraps the current meters for the WebSocket hub.
func (b *PressureBoard) Message() WSMessage {
	return WSMessage{Type: "pressure", Meters: b.Snapshot()}
}

// Step advances every meter once and returns the new values.
func (b *PressureBoard) Step() []render.Meter {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.meters {
		delta := b.rng.IntN(2*maxStep+1) - maxStep
		b.meters[i].Value = clamp(b.meters[i].Value+delta, 0, 100)
	}
	return append([]render.Meter(nil), b.meters...)
}

// Run steps the board every interval and broadcasts the result until ctx
// is cancelled.
func (b *PressureBoard) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			meters := b.Step()
			b.mu.Lock()
			hub := b.hub
			b.mu.Unlock()
			if hub != nil {
				hub.Broadcast(WSMessage{Type: "pressure", Meters: meters})
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
