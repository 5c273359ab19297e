package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/agents"
	"github.com/talgya/merchant-lanes/internal/ships"
)

// SimStats tracks aggregate run statistics.
type SimStats struct {
	Ships        int             `json:"ships"`
	Active       int             `json:"active"`
	Broke        int             `json:"broke"`
	Voyages      int             `json:"voyages"`
	Bailouts     int             `json:"bailouts"`
	CargoSales   int             `json:"cargo_sales"`
	CargoProfit  decimal.Decimal `json:"cargo_profit"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	LowDeaths    int             `json:"low_deaths"`
	Events       uint64          `json:"events"`
}

// WorldStats counts activity at one world.
type WorldStats struct {
	Name     string          `json:"name"`
	Arrivals int             `json:"arrivals"`
	Sales    int             `json:"sales"`
	Profit   decimal.Decimal `json:"profit"`
}

// ShipSummary is one row of the results table.
type ShipSummary struct {
	Name     string          `json:"name"`
	Class    string          `json:"class"`
	Role     ships.Role      `json:"role"`
	Captain  string          `json:"captain"`
	Balance  decimal.Decimal `json:"balance"`
	Voyages  int             `json:"voyages"`
	Sales    int             `json:"sales"`
	Location string          `json:"location"`
	State    string          `json:"state"`
	Broke    bool            `json:"broke"`
	BrokeAt  float64         `json:"broke_at,omitempty"`
	Bailouts int             `json:"bailouts"`
}

func (s *Simulation) updateStats() {
	st := SimStats{Ships: len(s.Ships), Events: s.Scheduler.Dispatched}
	counted := make(map[string]bool)
	for _, ship := range s.Ships {
		if ship.Broke {
			st.Broke++
		} else {
			st.Active++
		}
		st.Voyages += ship.Voyages
		st.Bailouts += ship.Bailouts
		st.LowDeaths += ship.LowDeaths
		st.CargoSales += len(ship.Sales)
		for _, sale := range ship.Sales {
			st.CargoProfit = st.CargoProfit.Add(sale.Sale.Profit)
		}
		// Ships sharing a company share one balance.
		if acct := ship.Account(); !counted[acct.Name] {
			counted[acct.Name] = true
			st.TotalBalance = st.TotalBalance.Add(acct.Balance())
		}
	}
	s.Stats = st
}

// Summaries returns one row per ship in spawn order.
func (s *Simulation) Summaries() []ShipSummary {
	out := make([]ShipSummary, 0, len(s.Ships))
	for _, ship := range s.Ships {
		out = append(out, ShipSummary{
			Name:     ship.Name,
			Class:    ship.Class.Name,
			Role:     ship.Class.Role,
			Captain:  ship.Captain.Risk.String(),
			Balance:  ship.Balance(),
			Voyages:  ship.Voyages,
			Sales:    len(ship.Sales),
			Location: ship.Where(),
			State:    ship.State.String(),
			Broke:    ship.Broke,
			BrokeAt:  ship.BrokeAt,
			Bailouts: ship.Bailouts,
		})
	}
	return out
}

// Leaderboard returns the solvent civilian ships, richest first.
func (s *Simulation) Leaderboard() []*agents.Starship {
	var out []*agents.Starship
	for _, ship := range s.Ships {
		if ship.Class.Role == ships.RoleCivilian && !ship.Broke {
			out = append(out, ship)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance().GreaterThan(out[j].Balance())
	})
	return out
}

// BrokeShips returns the ships that went out of business, earliest first.
func (s *Simulation) BrokeShips() []*agents.Starship {
	var out []*agents.Starship
	for _, ship := range s.Ships {
		if ship.Broke {
			out = append(out, ship)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BrokeAt < out[j].BrokeAt })
	return out
}

// WorldReport returns per-world activity, busiest first.
func (s *Simulation) WorldReport() []WorldStats {
	out := make([]WorldStats, 0, len(s.visits))
	for _, ws := range s.visits {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Arrivals != out[j].Arrivals {
			return out[i].Arrivals > out[j].Arrivals
		}
		return out[i].Name < out[j].Name
	})
	return out
}
