package world

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Zone is a travel advisory.
type Zone uint8

const (
	ZoneGreen Zone = iota
	ZoneAmber
	ZoneRed
)

// ParseZone maps the map-file zone column ("A", "R", "-", "") to a Zone.
func ParseZone(s string) Zone {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return ZoneAmber
	case "R":
		return ZoneRed
	default:
		return ZoneGreen
	}
}

// String returns the single-letter zone code.
func (z Zone) String() string {
	switch z {
	case ZoneAmber:
		return "A"
	case ZoneRed:
		return "R"
	default:
		return "G"
	}
}

// World is one mainworld as read from reference data.
type World struct {
	Name       string   `json:"name"`
	UWP        UWP      `json:"-"`
	TradeCodes []string `json:"trade_codes"`
	Zone       Zone     `json:"zone"`
	Hex        Location `json:"hex"`
	Sector     string   `json:"sector"`
	Subsector  string   `json:"subsector,omitempty"`
	Importance int      `json:"importance"`
}

// Starport returns the facilities of the world's starport.
func (w *World) Starport() Starport {
	return StarportFor(w.UWP.Starport)
}

// TechLevel returns the UWP tech level.
func (w *World) TechLevel() int {
	return w.UWP.TechLevel
}

// Population returns the UWP population digit.
func (w *World) Population() int {
	return w.UWP.Population
}

// HasCode reports whether the world carries a trade classification.
func (w *World) HasCode(code string) bool {
	return slices.Contains(w.TradeCodes, code)
}

// Restricted reports whether the travel zone keeps merchants away.
func (w *World) Restricted() bool {
	return w.Zone != ZoneGreen
}

// FullName returns "Name/Sector (XXYY)".
func (w *World) FullName() string {
	return fmt.Sprintf("%s/%s (%s)", w.Name, w.Sector, w.Hex)
}

// Map holds the read-only world registry shared by every ship.
type Map struct {
	worlds map[string]*World
	names  []string // sorted, for deterministic iteration
}

// NewMap creates an empty registry.
func NewMap() *Map {
	return &Map{worlds: make(map[string]*World)}
}

// Add registers a world. A later world with the same name replaces the earlier one.
func (m *Map) Add(w *World) {
	if _, exists := m.worlds[w.Name]; !exists {
		i := sort.SearchStrings(m.names, w.Name)
		m.names = slices.Insert(m.names, i, w.Name)
	}
	m.worlds[w.Name] = w
}

// Get returns the named world, or nil.
func (m *Map) Get(name string) *World {
	return m.worlds[name]
}

// Names returns world names in sorted order.
func (m *Map) Names() []string {
	return slices.Clone(m.names)
}

// Worlds returns all worlds sorted by name.
func (m *Map) Worlds() []*World {
	out := make([]*World, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, m.worlds[n])
	}
	return out
}

// Len returns the number of worlds.
func (m *Map) Len() int {
	return len(m.worlds)
}

// WithinJump returns the worlds other than origin within n parsecs,
// sorted by name.
func (m *Map) WithinJump(origin *World, n int) []*World {
	var out []*World
	for _, name := range m.names {
		w := m.worlds[name]
		if w == origin || w.Name == origin.Name {
			continue
		}
		if Parsecs(origin.Hex, w.Hex) <= n {
			out = append(out, w)
		}
	}
	return out
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(worlds=%d)", m.Len())
}
