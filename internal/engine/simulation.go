// Simulation ties the ships, the world map, and the scheduler together.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/merchant-lanes/internal/agents"
	"github.com/talgya/merchant-lanes/internal/calendar"
	"github.com/talgya/merchant-lanes/internal/config"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/routing"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Simulation holds the complete state of one run.
type Simulation struct {
	RunID    uuid.UUID
	Config   *config.Config
	Worlds   *world.Map
	Catalog  *ships.Catalog // restricted to the included roles
	Calendar calendar.Calendar

	Ships     []*agents.Starship
	ShipIndex map[agents.ShipID]*agents.Starship
	Companies []*ledger.Company

	Env       *agents.Env
	Scheduler *Scheduler
	Spawner   *agents.Spawner

	// Status receives one verbose line per ship action when set.
	Status io.Writer

	// Statistics, refreshed when the run completes.
	Stats SimStats

	visits    map[string]*WorldStats // world name → activity
	startedAt time.Time
}

// New validates the configuration and catalog, spawns the fleet, and queues
// each ship's first payroll and first step. No ship is created when the
// catalog or configuration is unusable.
func New(cfg *config.Config, m *world.Map, cat *ships.Catalog) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Len() == 0 {
		return nil, &ships.ConfigurationError{Msg: "world map is empty"}
	}
	roles, err := cfg.IncludedRoles()
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = cat.Roles()
	}
	included, err := cat.FilterRoles(roles)
	if err != nil {
		return nil, err
	}
	if err := ships.ValidateFrequencies(included.Classes()); err != nil {
		return nil, err
	}
	tuning, err := cfg.Tuning()
	if err != nil {
		return nil, err
	}

	cal := calendar.New(cfg.StartYear, cfg.StartDay)
	sim := &Simulation{
		RunID:     uuid.New(),
		Config:    cfg,
		Worlds:    m,
		Catalog:   included,
		Calendar:  cal,
		ShipIndex: make(map[agents.ShipID]*agents.Starship, cfg.Ships),
		Scheduler: NewScheduler(cfg.Days),
		Spawner:   agents.NewSpawner(cfg.Seed, cal),
		visits:    make(map[string]*WorldStats),
	}
	sim.Env = &agents.Env{
		Calendar: cal,
		Routes:   routing.NewSelector(m, entropy.Derive(cfg.Seed, entropy.OffsetRoutes)),
		Rand:     entropy.Derive(cfg.Seed, entropy.OffsetAgents),
		Tuning:   tuning,
		OnStatus: sim.onStatus,
		OnSale:   sim.onSale,
		OnArrive: sim.onArrive,
		OnBroke:  sim.onBroke,
	}
	sim.Scheduler.OnEvent = sim.dispatch

	if err := sim.populate(roles); err != nil {
		return nil, err
	}
	if err := sim.scheduleInitial(); err != nil {
		return nil, err
	}

	slog.Info("simulation ready",
		"run", sim.RunID,
		"seed", cfg.Seed,
		"ships", len(sim.Ships),
		"companies", len(sim.Companies),
		"worlds", m.Len(),
		"days", cfg.Days,
	)
	return sim, nil
}

// scheduleInitial queues every ship's first payroll ahead of its first step,
// so a run starting on a month boundary pays the crew before the ship acts.
func (s *Simulation) scheduleInitial() error {
	payday := s.Calendar.FirstPayday()
	for _, ship := range s.Ships {
		if err := s.Scheduler.Schedule(payday, EventPayroll, ship); err != nil {
			return err
		}
		if err := s.Scheduler.Schedule(0, EventStep, ship); err != nil {
			return err
		}
	}
	return nil
}

// Run advances the simulation to the configured horizon.
func (s *Simulation) Run(ctx context.Context) error {
	s.startedAt = time.Now()
	slog.Info("simulation started", "run", s.RunID, "start", s.Calendar.Date(0), "horizon", s.Calendar.Date(s.Config.Days))

	err := s.Scheduler.Run(ctx)
	s.Env.Now = s.Scheduler.Now
	s.updateStats()
	if err != nil {
		return err
	}

	slog.Info("simulation complete",
		"run", s.RunID,
		"date", s.Calendar.Date(s.Scheduler.Now),
		"events", s.Stats.Events,
		"active", s.Stats.Active,
		"broke", s.Stats.Broke,
		"voyages", s.Stats.Voyages,
		"cargo_profit", ledger.Cr(s.Stats.CargoProfit),
		"elapsed", time.Since(s.startedAt).Round(time.Millisecond),
	)
	return nil
}

// dispatch handles one event and queues the ship's next wake-up.
func (s *Simulation) dispatch(e *Event) {
	s.Env.Now = e.Time
	switch e.Kind {
	case EventStep:
		wake, ok := e.Ship.Step(s.Env)
		if !ok {
			return
		}
		s.reschedule(wake, EventStep, e.Ship)
	case EventPayroll:
		e.Ship.Payroll(s.Env)
		s.reschedule(s.Calendar.NextPayday(e.Time), EventPayroll, e.Ship)
	}
}

func (s *Simulation) reschedule(t float64, kind EventKind, ship *agents.Starship) {
	if err := s.Scheduler.Schedule(t, kind, ship); err != nil {
		slog.Error("reschedule failed", "ship", ship.Name, "error", err)
	}
}

// ── Callbacks ──────────────────────────────────────────────────────────────

func (s *Simulation) onStatus(ship *agents.Starship, now float64, memo string) {
	if s.Status == nil {
		return
	}
	fmt.Fprintln(s.Status, ship.StatusLine(s.Calendar, now, memo))
}

func (s *Simulation) onSale(ship *agents.Starship, sale agents.CargoSale) {
	ws := s.worldStats(sale.World)
	ws.Sales++
	ws.Profit = ws.Profit.Add(sale.Sale.Profit)
}

func (s *Simulation) onArrive(ship *agents.Starship, w *world.World) {
	s.worldStats(w.Name).Arrivals++
}

func (s *Simulation) onBroke(ship *agents.Starship) {
	slog.Info("ship out of business",
		"ship", ship.Name,
		"class", ship.Class.Name,
		"date", s.Calendar.Date(ship.BrokeAt),
		"reason", ship.BrokeReason,
	)
}

func (s *Simulation) worldStats(name string) *WorldStats {
	ws, ok := s.visits[name]
	if !ok {
		ws = &WorldStats{Name: name}
		s.visits[name] = ws
	}
	return ws
}

// Ship returns a ship by ID, or nil.
func (s *Simulation) Ship(id agents.ShipID) *agents.Starship {
	return s.ShipIndex[id]
}

// Now returns the simulation clock.
func (s *Simulation) Now() float64 {
	return s.Scheduler.Now
}
