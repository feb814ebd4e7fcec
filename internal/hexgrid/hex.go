// Package hexgrid provides axial hex coordinates and the procedural
// archipelago map the navigation engine runs on.
package hexgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Axial identifies a tile by axial coordinates. The zero value is the
// map origin.
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Neighbor offsets in fixed clockwise order starting east. Path results
// and broadcast payloads depend on this order staying stable.
var neighborOffsets = [...]Axial{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Add returns the component-wise sum of two coordinates.
func (a Axial) Add(b Axial) Axial {
	return Axial{Q: a.Q + b.Q, R: a.R + b.R}
}

// Neighbors returns the six adjacent coordinates in clockwise order
// starting east.
func (a Axial) Neighbors() [6]Axial {
	var out [6]Axial
	for i, offset := range neighborOffsets {
		out[i] = a.Add(offset)
	}
	return out
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Axial) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dq+dr) + abs(dr)) / 2
}

// Key encodes the coordinate as "q,r" for wire payloads and logs.
func (a Axial) Key() string {
	return strconv.Itoa(a.Q) + "," + strconv.Itoa(a.R)
}

// ParseKey decodes a "q,r" key produced by Key.
func ParseKey(key string) (Axial, error) {
	qPart, rPart, ok := strings.Cut(key, ",")
	if !ok {
		return Axial{}, fmt.Errorf("hexgrid: malformed key %q", key)
	}
	q, err := strconv.Atoi(qPart)
	if err != nil {
		return Axial{}, fmt.Errorf("hexgrid: malformed key %q: %w", key, err)
	}
	r, err := strconv.Atoi(rPart)
	if err != nil {
		return Axial{}, fmt.Errorf("hexgrid: malformed key %q: %w", key, err)
	}
	return Axial{Q: q, R: r}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
