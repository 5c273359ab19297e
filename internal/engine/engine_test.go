package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/agents"
	"github.com/talgya/merchant-lanes/internal/config"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// ── Scheduler ─────────────────────────────────────────────────────────────

func TestSchedulerOrdering(t *testing.T) {
	a := &agents.Starship{Name: "A"}
	b := &agents.Starship{Name: "B"}
	c := &agents.Starship{Name: "C"}

	s := NewScheduler(10)
	var got []string
	s.OnEvent = func(e *Event) {
		got = append(got, e.Ship.Name+":"+e.Kind.String())
		// Follow-ups at the same time queue behind what is already there.
		if e.Ship == c && e.Time == 0.5 {
			if err := s.Schedule(1.0, EventStep, c); err != nil {
				t.Fatalf("schedule: %v", err)
			}
		}
	}
	for _, ev := range []struct {
		t    float64
		kind EventKind
		ship *agents.Starship
	}{
		{2.0, EventStep, a},
		{1.0, EventStep, b},
		{1.0, EventPayroll, a},
		{0.5, EventStep, c},
	} {
		if err := s.Schedule(ev.t, ev.kind, ev.ship); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "C:step B:step A:payroll C:step A:step"
	if strings.Join(got, " ") != want {
		t.Fatalf("dispatch order %q, want %q", strings.Join(got, " "), want)
	}
}

func TestSchedulerStopsAtHorizon(t *testing.T) {
	ship := &agents.Starship{Name: "A"}
	s := NewScheduler(3)
	dispatched := 0
	s.OnEvent = func(*Event) { dispatched++ }
	for _, at := range []float64{1, 3, 5} {
		if err := s.Schedule(at, EventStep, ship); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if dispatched != 1 || s.Pending() != 2 {
		t.Fatalf("dispatched %d, pending %d", dispatched, s.Pending())
	}
	if s.Now != 3 {
		t.Fatalf("clock at %v, want horizon", s.Now)
	}
	if next, ok := s.Peek(); !ok || next != 3 {
		t.Fatalf("next event %v %v", next, ok)
	}
}

func TestSchedulerRefusesPast(t *testing.T) {
	ship := &agents.Starship{Name: "A"}
	s := NewScheduler(10)
	var err error
	s.OnEvent = func(e *Event) {
		err = s.Schedule(e.Time-1, EventStep, ship)
	}
	if e := s.Schedule(4, EventStep, ship); e != nil {
		t.Fatalf("schedule: %v", e)
	}
	if e := s.Run(context.Background()); e != nil {
		t.Fatalf("run: %v", e)
	}
	if err == nil {
		t.Fatalf("expected scheduling into the past to fail")
	}
}

func TestSchedulerCancelled(t *testing.T) {
	s := NewScheduler(10)
	if err := s.Schedule(1, EventStep, &agents.Starship{Name: "A"}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Dispatched != 0 {
		t.Fatalf("dispatched %d events after cancel", s.Dispatched)
	}
}

// ── Population ────────────────────────────────────────────────────────────

func TestAllocateRoles(t *testing.T) {
	civ, mil, sp := ships.RoleCivilian, ships.RoleMilitary, ships.RoleSpecialized
	for _, tc := range []struct {
		name    string
		n       int
		roles   []ships.Role
		weights map[ships.Role]float64
		want    map[ships.Role]int
	}{
		{"default split", 10, []ships.Role{civ, mil, sp},
			map[ships.Role]float64{civ: 0.8, mil: 0.1, sp: 0.1},
			map[ships.Role]int{civ: 8, mil: 1, sp: 1}},
		{"remainder to largest", 3, []ships.Role{civ, mil, sp},
			map[ships.Role]float64{civ: 0.8, mil: 0.1, sp: 0.1},
			map[ships.Role]int{civ: 3, mil: 0, sp: 0}},
		{"tie goes first", 7, []ships.Role{civ, mil},
			map[ships.Role]float64{civ: 0.5, mil: 0.5},
			map[ships.Role]int{civ: 4, mil: 3}},
		{"unweighted roles split evenly", 5, []ships.Role{mil, sp},
			map[ships.Role]float64{},
			map[ships.Role]int{mil: 3, sp: 2}},
	} {
		got, err := AllocateRoles(tc.n, tc.roles, func(r ships.Role) float64 { return tc.weights[r] })
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		total := 0
		for _, r := range tc.roles {
			total += got[r]
			if got[r] != tc.want[r] {
				t.Errorf("%s: %s got %d, want %d", tc.name, r, got[r], tc.want[r])
			}
		}
		if total != tc.n {
			t.Errorf("%s: allocated %d of %d", tc.name, total, tc.n)
		}
	}
}

func mustWorld(t *testing.T, name, hex, uwp string) *world.World {
	t.Helper()
	u, err := world.ParseUWP(uwp)
	if err != nil {
		t.Fatalf("uwp %s: %v", uwp, err)
	}
	loc, err := world.ParseLocation(hex)
	if err != nil {
		t.Fatalf("hex %s: %v", hex, err)
	}
	return &world.World{Name: name, UWP: u, Hex: loc, Sector: "Test"}
}

// lineMap is four worlds one parsec apart. Beta only sells unrefined fuel.
func lineMap(t *testing.T) *world.Map {
	m := world.NewMap()
	m.Add(mustWorld(t, "Alpha", "0101", "A867869-A"))
	m.Add(mustWorld(t, "Beta", "0102", "C867869-A"))
	m.Add(mustWorld(t, "Gamma", "0103", "B867869-A"))
	m.Add(mustWorld(t, "Delta", "0104", "A867869-A"))
	return m
}

func testConfig(n int, days float64) *config.Config {
	c := config.Default()
	c.Seed = 7
	c.Ships = n
	c.Days = days
	return c
}

func defaultCatalog(t *testing.T) *ships.Catalog {
	t.Helper()
	cat, err := ships.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func hauler(freq float64, refines bool) *ships.Class {
	return &ships.Class{
		Name:             "Hauler",
		Role:             ships.RoleCivilian,
		Frequency:        freq,
		CostMCr:          40,
		JumpRating:       1,
		CargoCapacity:    80,
		Staterooms:       4,
		LowBerths:        10,
		MailLocker:       1,
		JumpFuelCapacity: 20,
		OpsFuelCapacity:  4,
		CanRefineFuel:    refines,
		CrewPositions:    []string{"0", "A", "C"},
	}
}

func TestNewRejectsCorruptFrequencies(t *testing.T) {
	cat, err := ships.NewCatalog([]*ships.Class{hauler(0.7, true)})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	sim, err := New(testConfig(5, 30), lineMap(t), cat)
	var cfgErr *ships.ConfigurationError
	if !errors.As(err, &cfgErr) || sim != nil {
		t.Fatalf("expected ConfigurationError before spawning, got %v", err)
	}
}

func TestNewRejectsMissingRole(t *testing.T) {
	cat, err := ships.NewCatalog([]*ships.Class{hauler(1, true)})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := testConfig(5, 30)
	cfg.Roles = []string{"civilian", "military"}
	var cfgErr *ships.ConfigurationError
	if _, err := New(cfg, lineMap(t), cat); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewRejectsUnrefuelableMap(t *testing.T) {
	cat, err := ships.NewCatalog([]*ships.Class{hauler(1, false)})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	m := world.NewMap()
	m.Add(mustWorld(t, "Dust", "0101", "E867869-A"))
	var cfgErr *ships.ConfigurationError
	if _, err := New(testConfig(2, 30), m, cat); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestFleetComposition(t *testing.T) {
	cfg := testConfig(10, 30)
	cfg.SpeculateCargoPct = 0.5
	cfg.ShipsPerCompany = 2
	sim, err := New(cfg, lineMap(t), defaultCatalog(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	roles := make(map[ships.Role]int)
	for i, s := range sim.Ships {
		roles[s.Class.Role]++
		if want := agents.ShipName(agents.ShipID(i + 1)); s.Name != want {
			t.Errorf("ship %d named %s, want %s", i, s.Name, want)
		}
		if s.Speculates != (i < 5) {
			t.Errorf("%s speculates=%v", s.Name, s.Speculates)
		}
		if sim.Ship(s.ID) != s {
			t.Errorf("%s missing from index", s.Name)
		}
	}
	if roles[ships.RoleCivilian] != 8 || roles[ships.RoleMilitary] != 1 || roles[ships.RoleSpecialized] != 1 {
		t.Fatalf("unexpected role split %v", roles)
	}

	// 8 civilians in four pairs, then the lone military and specialized
	// ships each in a company of their own.
	if len(sim.Companies) != 6 {
		t.Fatalf("expected 6 companies, got %d", len(sim.Companies))
	}
	for i, c := range sim.Companies {
		want := ledger.Credits(2_000_000)
		if i >= 4 {
			want = ledger.Credits(1_000_000)
		}
		if !c.Balance().Equal(want) {
			t.Errorf("%s opened with %s, want %s", c.Name, ledger.Cr(c.Balance()), ledger.Cr(want))
		}
	}
	if sim.Ships[0].Account() != sim.Ships[1].Account() || sim.Ships[1].Account() == sim.Ships[2].Account() {
		t.Fatalf("ships not grouped into companies in pairs")
	}
	companyRole := make(map[*ledger.Company]ships.Role)
	for _, s := range sim.Ships {
		if r, ok := companyRole[s.Company]; ok && r != s.Class.Role {
			t.Fatalf("%s mixes %s and %s ships", s.Company.Name, r, s.Class.Role)
		}
		companyRole[s.Company] = s.Class.Role
	}
	if sim.Scheduler.Pending() != 20 {
		t.Fatalf("expected a step and a payroll per ship, got %d events", sim.Scheduler.Pending())
	}
}

func TestOwnBooksWithoutCompanies(t *testing.T) {
	cfg := testConfig(3, 30)
	cfg.ShipsPerCompany = 0
	sim, err := New(cfg, lineMap(t), defaultCatalog(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(sim.Companies) != 0 {
		t.Fatalf("expected no companies")
	}
	for _, s := range sim.Ships {
		if s.Company != nil || !s.Balance().Equal(ledger.Credits(1_000_000)) {
			t.Fatalf("%s: company %v balance %s", s.Name, s.Company, ledger.Cr(s.Balance()))
		}
	}
}

// ── Runs ──────────────────────────────────────────────────────────────────

func TestNonRefinersOnlyVisitRefinedPorts(t *testing.T) {
	cat, err := ships.NewCatalog([]*ships.Class{hauler(1, false)})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	sim, err := New(testConfig(6, 365), lineMap(t), cat)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, s := range sim.Ships {
		// Alpha can refuel but its only neighbour is Beta.
		if s.Location.Name != "Gamma" && s.Location.Name != "Delta" {
			t.Fatalf("%s started at %s", s.Name, s.Location.Name)
		}
	}
	arrive := sim.Env.OnArrive
	sim.Env.OnArrive = func(s *agents.Starship, w *world.World) {
		if !w.Starport().SellsRefinedFuel() {
			t.Errorf("%s arrived at %s", s.Name, w.FullName())
		}
		arrive(s, w)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sim.Stats.Voyages == 0 {
		t.Fatalf("no voyages in a year")
	}
	for _, ws := range sim.WorldReport() {
		if ws.Name == "Beta" || ws.Name == "Alpha" {
			t.Fatalf("unexpected activity at %s: %+v", ws.Name, ws)
		}
	}
}

func runYear(t *testing.T, seed int64) *Simulation {
	t.Helper()
	cfg := testConfig(12, 365)
	cfg.Seed = seed
	sim, err := New(cfg, lineMap(t), defaultCatalog(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return sim
}

func TestRunIsDeterministic(t *testing.T) {
	a, b := runYear(t, 11), runYear(t, 11)
	sa, sb := a.Summaries(), b.Summaries()
	if len(sa) != len(sb) {
		t.Fatalf("fleet sizes differ")
	}
	for i := range sa {
		if !sa[i].Balance.Equal(sb[i].Balance) || sa[i].Voyages != sb[i].Voyages || sa[i].State != sb[i].State {
			t.Fatalf("runs diverged at %s: %+v vs %+v", sa[i].Name, sa[i], sb[i])
		}
	}
	if a.Stats.Events != b.Stats.Events {
		t.Fatalf("event counts differ: %d vs %d", a.Stats.Events, b.Stats.Events)
	}
}

func TestLedgerIntegrityAfterRun(t *testing.T) {
	sim := runYear(t, 3)
	if sim.Now() != 365 {
		t.Fatalf("clock at %v", sim.Now())
	}
	seen := make(map[*ledger.Account]bool)
	payrolls := 0
	for _, s := range sim.Ships {
		acct := s.Account()
		if seen[acct] {
			continue
		}
		seen[acct] = true
		sum := decimal.Zero
		last := 0.0
		for i, e := range acct.Entries() {
			sum = sum.Add(e.Amount)
			if !e.BalanceAfter.Equal(sum) {
				t.Fatalf("%s entry %d: balance_after %s, running sum %s", acct.Name, i, e.BalanceAfter, sum)
			}
			if e.Time < last {
				t.Fatalf("%s entry %d at %v precedes %v", acct.Name, i, e.Time, last)
			}
			last = e.Time
			if strings.HasPrefix(e.Memo, "Crew payroll:") {
				payrolls++
			}
		}
		if !acct.Balance().Equal(sum) {
			t.Fatalf("%s balance %s, entries sum %s", acct.Name, acct.Balance(), sum)
		}
	}
	if payrolls == 0 {
		t.Fatalf("no payroll in a year")
	}
	for _, s := range sim.BrokeShips() {
		if s.Active() || s.BrokeReason == "" {
			t.Fatalf("%s broke without a reason", s.Name)
		}
	}
	board := sim.Leaderboard()
	for i := 1; i < len(board); i++ {
		if board[i].Balance().GreaterThan(board[i-1].Balance()) {
			t.Fatalf("leaderboard out of order at %d", i)
		}
	}
	if sim.Stats.Ships != 12 || sim.Stats.Active+sim.Stats.Broke != 12 {
		t.Fatalf("unexpected stats %+v", sim.Stats)
	}
}

func TestVerboseStatusLines(t *testing.T) {
	sim, err := New(testConfig(2, 10), lineMap(t), defaultCatalog(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var buf bytes.Buffer
	sim.Status = &buf
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected status lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "[001.00-1105] Trader_001 at ") || !strings.Contains(lines[0], "(DOCKED): company=Cr") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "[") || !strings.Contains(l, " | ") {
			t.Fatalf("malformed line %q", l)
		}
	}
}
