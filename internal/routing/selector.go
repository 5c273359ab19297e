// Package routing chooses where a ship jumps next.
// Selection is stateless: it depends only on the ship's class, its current
// world and the read-only world map, plus one random draw among ties.
package routing

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/merchant-lanes/internal/economy"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Reasons reported with a choice.
const (
	ReasonRandom = "randomly, no in-range system could buy cargo"
	ReasonStay   = "no compatible world in range"
)

// CanRefuelAt reports whether a ship of class can take on fuel at w:
// either it refines its own or the starport sells refined fuel.
func CanRefuelAt(class *ships.Class, w *world.World) bool {
	return class.CanRefineFuel || w.Starport().SellsRefinedFuel()
}

// Choice is the outcome of a destination selection.
type Choice struct {
	Destination  *world.World
	ProfitPerTon int // expected, for cargo from the origin
	Reason       string
}

// Stay reports whether the ship keeps its current location.
func (c Choice) Stay() bool {
	return c.Reason == ReasonStay
}

// Selector picks destinations on a world map.
type Selector struct {
	worlds *world.Map
	rng    entropy.Source
}

// NewSelector creates a selector drawing ties from src.
func NewSelector(m *world.Map, src entropy.Source) *Selector {
	return &Selector{worlds: m, rng: src}
}

// Reachable returns worlds within jump range of origin that the ship can
// refuel at and that are not under a travel advisory, sorted by name.
func (s *Selector) Reachable(class *ships.Class, origin *world.World) []*world.World {
	var out []*world.World
	for _, w := range s.worlds.WithinJump(origin, class.JumpRating) {
		if w.Restricted() || !CanRefuelAt(class, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Select chooses the next destination for a ship of class at origin.
// Profitable destinations win; otherwise any reachable world; otherwise
// the ship stays where it is.
func (s *Selector) Select(class *ships.Class, origin *world.World) Choice {
	candidates := s.Reachable(class, origin)
	if len(candidates) == 0 {
		return Choice{Destination: origin, Reason: ReasonStay}
	}

	var profitable []*world.World
	var profits []int
	for _, w := range candidates {
		if p := economy.ProfitPerTon(origin, w); p > 0 {
			profitable = append(profitable, w)
			profits = append(profits, p)
		}
	}
	if len(profitable) > 0 {
		i := s.rng.Intn(len(profitable))
		return Choice{
			Destination:  profitable[i],
			ProfitPerTon: profits[i],
			Reason:       fmt.Sprintf("profit of +Cr%s/ton", humanize.Comma(int64(profits[i]))),
		}
	}

	w := candidates[s.rng.Intn(len(candidates))]
	return Choice{
		Destination:  w,
		ProfitPerTon: economy.ProfitPerTon(origin, w),
		Reason:       ReasonRandom,
	}
}
