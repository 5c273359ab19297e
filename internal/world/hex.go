// Package world provides the subsector hex grid, world records, and the
// read-only world registry consulted by routing and pricing.
// Distances are computed in axial coordinates (q, r) converted from the
// Traveller column/row hex numbers.
package world

import (
	"fmt"
	"strconv"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// Location is a Traveller map hex, written "XXYY" (column, row).
// Even columns sit half a hex lower than odd ones.
type Location struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ParseLocation parses a four-digit hex number such as "2408".
func ParseLocation(s string) (Location, error) {
	if len(s) != 4 {
		return Location{}, fmt.Errorf("hex %q: want 4 digits", s)
	}
	col, err := strconv.Atoi(s[:2])
	if err != nil {
		return Location{}, fmt.Errorf("hex %q: %w", s, err)
	}
	row, err := strconv.Atoi(s[2:])
	if err != nil {
		return Location{}, fmt.Errorf("hex %q: %w", s, err)
	}
	return Location{Col: col, Row: row}, nil
}

// String returns the "XXYY" form.
func (l Location) String() string {
	return fmt.Sprintf("%02d%02d", l.Col, l.Row)
}

// Axial converts the column/row hex to axial coordinates.
func (l Location) Axial() HexCoord {
	return HexCoord{Q: l.Col, R: l.Row - (l.Col+(l.Col&1))/2}
}

// Parsecs returns the jump distance between two map hexes.
func Parsecs(a, b Location) int {
	return Distance(a.Axial(), b.Axial())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
