// Fleet setup: role allocation, class draws, starting worlds, and companies.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/routing"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// AllocateRoles splits n ships across roles in proportion to their weights
// using the largest-remainder method. Ties in remainder go to the role
// listed first. When every weight is zero the split is even.
func AllocateRoles(n int, roles []ships.Role, weight func(ships.Role) float64) (map[ships.Role]int, error) {
	counts := make(map[ships.Role]int, len(roles))
	if len(roles) == 0 {
		return counts, &ships.ConfigurationError{Msg: "no ship roles to allocate"}
	}

	weights := make([]float64, len(roles))
	total := 0.0
	for i, r := range roles {
		w := weight(r)
		if w < 0 || math.IsNaN(w) {
			return counts, &ships.ConfigurationError{Msg: fmt.Sprintf("role %s has invalid weight %v", r, w)}
		}
		weights[i] = w
		total += w
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}

	type remainder struct {
		role ships.Role
		frac float64
	}
	rems := make([]remainder, len(roles))
	assigned := 0
	for i, r := range roles {
		quota := float64(n) * weights[i] / total
		whole := int(math.Floor(quota + 1e-9))
		counts[r] = whole
		assigned += whole
		rems[i] = remainder{role: r, frac: quota - float64(whole)}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < n; i++ {
		counts[rems[i%len(rems)].role]++
		assigned++
	}
	return counts, nil
}

// PickClass draws a class by catalog frequency.
func PickClass(classes []*ships.Class, src entropy.Source) *ships.Class {
	if len(classes) == 0 {
		return nil
	}
	total := 0.0
	for _, c := range classes {
		total += c.Frequency
	}
	if total <= 0 {
		return classes[src.Intn(len(classes))]
	}
	r := src.Float64() * total
	for _, c := range classes {
		r -= c.Frequency
		if r < 0 {
			return c
		}
	}
	return classes[len(classes)-1]
}

type startCandidates struct {
	connected  []*world.World // can refuel and has somewhere to go
	refuelable []*world.World
}

// populate spawns the fleet. Ships are numbered in role order and each
// company holds ships of a single role.
func (s *Simulation) populate(roles []ships.Role) error {
	cfg := s.Config
	rng := entropy.Derive(cfg.Seed, entropy.OffsetPopulation)

	counts, err := AllocateRoles(cfg.Ships, roles, cfg.RoleWeight)
	if err != nil {
		return err
	}

	capital := ledger.Credits(cfg.StartingCapital)
	speculators := int(float64(cfg.Ships) * cfg.SpeculateCargoPct)
	starts := make(map[string]startCandidates)

	var company *ledger.Company
	owned := 0
	for _, role := range roles {
		classes := s.Catalog.ByRole(role)
		// Companies never span roles, so one role's bailouts never fund
		// another's payroll.
		company = nil
		for k := 0; k < counts[role]; k++ {
			class := PickClass(classes, rng)

			cand, ok := starts[class.Name]
			if !ok {
				cand = s.startCandidates(class)
				starts[class.Name] = cand
			}
			start, err := pickStart(class, cand, rng)
			if err != nil {
				return err
			}

			if cfg.ShipsPerCompany > 0 && (company == nil || owned == cfg.ShipsPerCompany) {
				fleet := min(cfg.ShipsPerCompany, counts[role]-k)
				company, err = ledger.NewCompany(fmt.Sprintf("Company_%03d", len(s.Companies)+1),
					capital.Mul(decimal.NewFromInt(int64(fleet))))
				if err != nil {
					return err
				}
				s.Companies = append(s.Companies, company)
				owned = 0
			}

			ship, err := s.Spawner.Spawn(class, start, company, capital)
			if err != nil {
				return fmt.Errorf("spawn %s: %w", class.Name, err)
			}
			ship.Speculates = len(s.Ships) < speculators
			owned++

			s.Ships = append(s.Ships, ship)
			s.ShipIndex[ship.ID] = ship
			slog.Debug("ship spawned",
				"ship", ship.Name,
				"class", class.Name,
				"role", role,
				"world", start.FullName(),
				"captain", ship.Captain.Risk,
				"crew", len(ship.Crew),
			)
		}
	}
	return nil
}

func (s *Simulation) startCandidates(class *ships.Class) startCandidates {
	var c startCandidates
	for _, w := range s.Worlds.Worlds() {
		if !routing.CanRefuelAt(class, w) {
			continue
		}
		c.refuelable = append(c.refuelable, w)
		if len(s.Env.Routes.Reachable(class, w)) > 0 {
			c.connected = append(c.connected, w)
		}
	}
	return c
}

func pickStart(class *ships.Class, c startCandidates, src entropy.Source) (*world.World, error) {
	switch {
	case len(c.connected) > 0:
		return c.connected[src.Intn(len(c.connected))], nil
	case len(c.refuelable) > 0:
		slog.Warn("no connected starting world", "class", class.Name)
		return c.refuelable[src.Intn(len(c.refuelable))], nil
	default:
		return nil, &ships.ConfigurationError{Msg: fmt.Sprintf("no world on the map can refuel a %s", class.Name)}
	}
}
