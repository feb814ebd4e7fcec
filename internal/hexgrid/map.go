package hexgrid

import "math/rand"

// Terrain classifies a tile. Boats traverse water; land blocks movement.
type Terrain string

const (
	TerrainWater Terrain = "water"
	TerrainLand  Terrain = "land"
)

// Tiles within this distance of the origin are always water so fresh
// boats never spawn boxed in.
const forcedWaterRadius = 2

// Tile is one hex of the generated map. Identity is the coordinate;
// terrain never changes after generation.
type Tile struct {
	Coord   Axial   `json:"coord"`
	Terrain Terrain `json:"terrain"`
}

// Map is a hex-shaped region of tiles, fully determined by its
// generation parameters.
type Map struct {
	Seed       int64
	Radius     int
	LandChance float64

	tiles map[Axial]Terrain
	order []Tile
}

// Generate builds the map for the given parameters. The same
// (seed, radius, landChance) always produces the same tiles: a single
// PRNG stream is consumed in generation order (q ascending, then r
// ascending), one draw per tile, including tiles later forced to water.
func Generate(seed int64, radius int, landChance float64) *Map {
	rng := rand.New(rand.NewSource(seed))
	capacity := 3*radius*(radius+1) + 1
	m := &Map{
		Seed:       seed,
		Radius:     radius,
		LandChance: landChance,
		tiles:      make(map[Axial]Terrain, capacity),
		order:      make([]Tile, 0, capacity),
	}
	for q := -radius; q <= radius; q++ {
		rMin := max(-radius, -q-radius)
		rMax := min(radius, -q+radius)
		for r := rMin; r <= rMax; r++ {
			coord := Axial{Q: q, R: r}
			roll := rng.Float64()
			terrain := TerrainWater
			if roll < landChance && Distance(coord, Axial{}) > forcedWaterRadius {
				terrain = TerrainLand
			}
			m.tiles[coord] = terrain
			m.order = append(m.order, Tile{Coord: coord, Terrain: terrain})
		}
	}
	return m
}

// RandomSeed picks a seed for a fresh room.
func RandomSeed() int64 {
	return rand.Int63()
}

// Contains reports whether the coordinate lies inside the map region.
func (m *Map) Contains(c Axial) bool {
	_, ok := m.tiles[c]
	return ok
}

// Terrain returns the terrain at c and whether c is on the map.
func (m *Map) Terrain(c Axial) (Terrain, bool) {
	t, ok := m.tiles[c]
	return t, ok
}

// IsWater reports whether c is a traversable water tile.
func (m *Map) IsWater(c Axial) bool {
	return m.tiles[c] == TerrainWater
}

// Tiles returns every tile in generation order. Callers must not
// mutate the returned slice.
func (m *Map) Tiles() []Tile {
	return m.order
}

// TileCount returns the number of tiles in the region.
func (m *Map) TileCount() int {
	return len(m.order)
}
