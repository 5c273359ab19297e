// Subsector generation using layered simplex noise.
// A density layer decides which hexes hold a world and a development layer
// biases starport quality, population and tech level, so developed worlds
// cluster the way they do on real maps.
package world

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds subsector generation parameters.
type GenConfig struct {
	Seed      int64   // Random seed (0 = random)
	Columns   int     // Subsector width in hexes
	Rows      int     // Subsector height in hexes
	Density   float64 // Rough fraction of hexes holding a world (0.0–1.0)
	Sector    string
	Subsector string
}

// DefaultGenConfig returns a standard 8×10 subsector at average density.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:      0,
		Columns:   8,
		Rows:      10,
		Density:   0.5,
		Sector:    "Foreven",
		Subsector: "A",
	}
}

// SmallTestConfig returns a dense 4×4 cluster for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:      42,
		Columns:   4,
		Rows:      4,
		Density:   0.9,
		Sector:    "Foreven",
		Subsector: "T",
	}
}

// Generate creates a subsector map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed + 100))

	densityNoise := opensimplex.NewNormalized(seed)
	devNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap()
	names := generateNames(rng, cfg.Columns*cfg.Rows)
	next := 0

	for col := 1; col <= cfg.Columns; col++ {
		for row := 1; row <= cfg.Rows; row++ {
			loc := Location{Col: col, Row: row}
			x, y := float64(col), float64(row)

			presence := octaveNoise(densityNoise, x, y, 3, 0.15, 0.5)*0.6 + rng.Float64()*0.4
			if presence < 1.0-cfg.Density {
				continue
			}
			dev := octaveNoise(devNoise, x, y, 2, 0.1, 0.5)
			uwp := rollUWP(rng, dev)
			codes := DeriveTradeCodes(uwp)

			m.Add(&World{
				Name:       names[next],
				UWP:        uwp,
				TradeCodes: codes,
				Zone:       rollZone(rng, uwp),
				Hex:        loc,
				Sector:     cfg.Sector,
				Subsector:  cfg.Subsector,
				Importance: Importance(uwp, codes),
			})
			next++
		}
	}
	return m
}

// rollUWP rolls a mainworld profile; dev in [0,1] shifts the
// starport and population rolls by up to ±2.
func rollUWP(rng *rand.Rand, dev float64) UWP {
	bias := int((dev - 0.5) * 4)
	d6 := func() int { return rng.Intn(6) + 1 }
	flux := func() int { return d6() - d6() }

	var u UWP
	port := d6() + d6() + bias
	switch {
	case port <= 2:
		u.Starport = 'X'
	case port <= 4:
		u.Starport = 'E'
	case port <= 6:
		u.Starport = 'D'
	case port <= 8:
		u.Starport = 'C'
	case port <= 10:
		u.Starport = 'B'
	default:
		u.Starport = 'A'
	}

	u.Size = d6() + d6() - 2
	if u.Size > 0 {
		u.Atmosphere = clamp(flux()+u.Size, 0, 15)
	}
	if u.Size > 1 {
		u.Hydrographic = clamp(flux()+u.Atmosphere, 0, 10)
	}
	u.Population = clamp(d6()+d6()-2+bias, 0, 12)
	if u.Population > 0 {
		u.Government = clamp(flux()+u.Population, 0, 15)
		u.Law = clamp(flux()+u.Government, 0, 18)
		u.TechLevel = clamp(d6()+techModifiers(u), 0, 15)
	}
	return u
}

func techModifiers(u UWP) int {
	mod := 0
	switch u.Starport {
	case 'A':
		mod += 6
	case 'B':
		mod += 4
	case 'C':
		mod += 2
	case 'X':
		mod -= 4
	}
	switch {
	case u.Size <= 1:
		mod += 2
	case u.Size <= 4:
		mod++
	}
	if u.Atmosphere <= 3 || u.Atmosphere >= 10 {
		mod++
	}
	switch u.Hydrographic {
	case 9:
		mod++
	case 10:
		mod += 2
	}
	switch {
	case u.Population >= 10:
		mod += 4
	case u.Population == 9:
		mod += 2
	case u.Population >= 1 && u.Population <= 5:
		mod++
	}
	switch u.Government {
	case 0, 5:
		mod++
	case 13:
		mod -= 2
	}
	return mod
}

func rollZone(rng *rand.Rand, u UWP) Zone {
	r := rng.Float64()
	switch {
	case r < 0.02:
		return ZoneRed
	case u.Law >= 12 && r < 0.5, u.Atmosphere >= 10 && r < 0.15:
		return ZoneAmber
	}
	return ZoneGreen
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// generateNames produces procedural world names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Reg", "Rhy", "Ef", "Ter", "Mor", "Lan", "Ale", "Vla", "Hev", "Jen",
		"Pix", "Str", "Yori", "Pyr", "Dron", "Kin", "Bel", "Wur", "Zar", "Quar",
		"Ash", "Cal", "Dor", "Gol", "Ith",
	}
	suffixes := []string{
		"ina", "anor", "ate", "ra", "ganth", "thanor", "sen", "ndar", "ia",
		"ion", "os", "ak", "enn", "ule", "ax", "ora", "ith", "uun", "ell", "ard",
	}

	used := make(map[string]bool)
	out := make([]string, 0, count)
	for len(out) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if used[name] {
			// Once combinations run low, number the repeats.
			if len(used) < len(prefixes)*len(suffixes)/2 {
				continue
			}
			name = fmt.Sprintf("%s %d", name, len(out))
		}
		used[name] = true
		out = append(out, name)
	}
	return out
}
