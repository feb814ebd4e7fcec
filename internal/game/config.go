// Package game owns room state: the generated map, connected players
// and viewers, navigation plans, and the fixed tick that advances them.
package game

import "time"

const (
	// MaxPlayers is the hard cap on simultaneous player sessions per
	// room. Viewer sessions are not counted.
	MaxPlayers = 2

	DefaultMapRadius    = 10
	DefaultLandChance   = 0.3
	DefaultTickInterval = 50 * time.Millisecond
)

// Config carries the tunables a room is created with.
type Config struct {
	// MapRadius is the hex radius of generated maps.
	MapRadius int
	// LandChance is the per-tile land probability in [0,1].
	LandChance float64
	// Seed pins map generation when non-zero; zero draws a fresh seed
	// for every generation.
	Seed int64
	// TickInterval is the cadence of the room's movement tick.
	TickInterval time.Duration
	// Clock supplies the current time; nil means time.Now. Tests use it
	// to drive navigation deterministically.
	Clock func() time.Time
}

func (cfg Config) normalized() Config {
	normalized := cfg
	if normalized.MapRadius <= 0 {
		normalized.MapRadius = DefaultMapRadius
	}
	if normalized.LandChance < 0 {
		normalized.LandChance = 0
	}
	if normalized.LandChance > 1 {
		normalized.LandChance = 1
	}
	if normalized.TickInterval <= 0 {
		normalized.TickInterval = DefaultTickInterval
	}
	if normalized.Clock == nil {
		normalized.Clock = time.Now
	}
	return normalized
}
