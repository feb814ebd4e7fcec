package game

import (
	"time"

	"hexwake/server/internal/hexgrid"
	"hexwake/server/internal/nav"
	"hexwake/server/internal/net/proto"
)

// Spawn slots in join order. Both tiles sit inside the forced-water
// disc, so a fresh boat always has open water under it.
var (
	spawnTiles  = [MaxPlayers]hexgrid.Axial{{Q: 0, R: 0}, {Q: 2, R: 0}}
	spawnColors = [MaxPlayers]string{"red", "blue"}
)

// playerState is the room-owned record for one connected player. The
// room mutex guards every field.
type playerState struct {
	id       string
	color    string
	position hexgrid.Axial
	plan     *nav.Plan
	step     time.Duration
	session  Session
}

// snapshot renders the public view of the player at now.
func (p *playerState) snapshot(now time.Time) proto.Player {
	out := proto.Player{
		ID:       p.id,
		Color:    p.color,
		Position: p.position,
	}
	if p.plan != nil {
		out.Plan = &proto.ActivePlan{
			Path:     p.plan.Path,
			Duration: p.plan.Step.Milliseconds(),
			Elapsed:  p.plan.Elapsed(now),
		}
	}
	return out
}

// currentTile derives the clock-accurate tile, falling back to the
// committed position while idle or before the first boundary.
func (p *playerState) currentTile(now time.Time) hexgrid.Axial {
	if p.plan == nil {
		return p.position
	}
	return p.plan.PositionAt(now, p.position)
}
