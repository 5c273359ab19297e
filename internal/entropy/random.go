// Package entropy provides the seeded random sources and dice used by the simulation.
// Every component draws from its own source derived from the run seed so a run
// is reproducible; crypto/rand is only used to pick a seed when none is given.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Source is the subset of *math/rand.Rand the simulation draws from.
// Tests substitute scripted sources.
type Source interface {
	Float64() float64
	Intn(n int) int
	NormFloat64() float64
}

// Component seed offsets. Each consumer gets an independent stream.
const (
	OffsetWorlds     int64 = 100
	OffsetSpawner    int64 = 300
	OffsetPopulation int64 = 400
	OffsetRoutes     int64 = 500
	OffsetAgents     int64 = 700
)

// New returns a math/rand source for the given seed.
func New(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// Derive returns a source for one component of a run.
func Derive(seed, offset int64) *mrand.Rand {
	return New(seed + offset)
}

// RandomSeed returns a fresh seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// D6 rolls one six-sided die.
func D6(src Source) int {
	return src.Intn(6) + 1
}

// Roll rolls n six-sided dice and returns the total. n <= 0 returns 0.
func Roll(src Source, n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += D6(src)
	}
	return total
}

// Flux rolls 1D6 - 1D6 (range -5..+5).
func Flux(src Source) int {
	return D6(src) - D6(src)
}

// Uniform returns a float in [lo, hi].
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// LogNormal draws from a lognormal distribution with the given parameters
// of the underlying normal.
func LogNormal(src Source, mu, sigma float64) float64 {
	return math.Exp(mu + sigma*src.NormFloat64())
}
