package nav

import (
	"time"

	"hexwake/server/internal/hexgrid"
)

const (
	// DefaultStep is the per-tile traversal time for boats that never
	// adjusted their speed.
	DefaultStep = 500 * time.Millisecond
	// MinStep caps how fast a client may ask to travel.
	MinStep = 50 * time.Millisecond
)

// ClampStep enforces the lower bound on a requested per-tile duration.
func ClampStep(d time.Duration) time.Duration {
	if d < MinStep {
		return MinStep
	}
	return d
}

// Plan is a boat's active navigation order: the remaining path (start
// tile excluded, destination inclusive), the moment traversal of the
// first tile began, and the per-tile step duration. Rooms only hold
// plans with at least one tile; arrival clears the plan instead.
type Plan struct {
	Path      []hexgrid.Axial
	StartedAt time.Time
	Step      time.Duration
}

// stepIndex is the number of whole tile traversals completed at now.
func (p *Plan) stepIndex(now time.Time) int {
	elapsed := now.Sub(p.StartedAt)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / p.Step)
}

// PositionAt derives the authoritative tile at now. before is the
// position the boat held when the plan started; it remains current
// until the first tile boundary passes.
func (p *Plan) PositionAt(now time.Time, before hexgrid.Axial) hexgrid.Axial {
	i := p.stepIndex(now)
	switch {
	case i <= 0:
		return before
	case i <= len(p.Path):
		return p.Path[i-1]
	default:
		return p.Path[len(p.Path)-1]
	}
}

// NextTile returns the tile the boat is approaching at now, clamped to
// the final tile once travel time runs out.
func (p *Plan) NextTile(now time.Time) hexgrid.Axial {
	i := p.stepIndex(now)
	if i > len(p.Path)-1 {
		i = len(p.Path) - 1
	}
	return p.Path[i]
}

// Arrived reports whether every tile of the path has been traversed.
func (p *Plan) Arrived(now time.Time) bool {
	return p.stepIndex(now) >= len(p.Path)
}

// Destination returns the plan's final tile.
func (p *Plan) Destination() hexgrid.Axial {
	return p.Path[len(p.Path)-1]
}

// Elapsed returns milliseconds spent on the plan so far; snapshots use
// it so late joiners can resume the animation mid-flight.
func (p *Plan) Elapsed(now time.Time) int64 {
	return now.Sub(p.StartedAt).Milliseconds()
}

// Reroute replaces the course mid-step. anchor is the tile currently
// being approached and rest the newly computed path onward from it.
// The replacement starts at now minus the time already spent traveling
// toward anchor, so in-flight progress carries over seamlessly. The
// step duration is kept: a carried fraction under a shorter step would
// teleport the boat past its anchor, so speed changes only take effect
// on plans started from rest.
func (p *Plan) Reroute(now time.Time, anchor hexgrid.Axial, rest []hexgrid.Axial) *Plan {
	path := make([]hexgrid.Axial, 0, len(rest)+1)
	path = append(path, anchor)
	path = append(path, rest...)

	frac := now.Sub(p.StartedAt) % p.Step
	if frac < 0 {
		frac = 0
	}
	return &Plan{Path: path, StartedAt: now.Add(-frac), Step: p.Step}
}
