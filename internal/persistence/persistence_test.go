package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/talgya/merchant-lanes/internal/config"
	"github.com/talgya/merchant-lanes/internal/engine"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

func finishedRun(t *testing.T) *engine.Simulation {
	t.Helper()
	m := world.NewMap()
	for _, w := range []struct{ name, hex, uwp string }{
		{"Alpha", "0101", "A867869-A"},
		{"Gamma", "0102", "B867869-A"},
		{"Delta", "0103", "A867869-A"},
	} {
		u, err := world.ParseUWP(w.uwp)
		if err != nil {
			t.Fatalf("uwp: %v", err)
		}
		loc, err := world.ParseLocation(w.hex)
		if err != nil {
			t.Fatalf("hex: %v", err)
		}
		m.Add(&world.World{Name: w.name, UWP: u, Hex: loc, Sector: "Test"})
	}
	cat, err := ships.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := config.Default()
	cfg.Ships = 4
	cfg.Days = 90
	sim, err := engine.New(cfg, m, cat)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return sim
}

func TestSaveRun(t *testing.T) {
	sim := finishedRun(t)
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.SaveRun(sim); err != nil {
		t.Fatalf("save: %v", err)
	}
	runID := sim.RunID.String()

	rows, err := db.Ships(runID)
	if err != nil {
		t.Fatalf("ships: %v", err)
	}
	if len(rows) != len(sim.Ships) {
		t.Fatalf("exported %d ships, want %d", len(rows), len(sim.Ships))
	}
	for i, r := range rows {
		s := sim.Ships[i]
		if r.Name != s.Name || r.Balance != s.Balance().String() || r.Broke != s.Broke {
			t.Errorf("row %+v does not match %s", r, s)
		}
	}

	acct := sim.Ships[0].Account()
	entries, err := db.Entries(runID, acct.Name)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	want := acct.Entries()
	if len(entries) != len(want) {
		t.Fatalf("exported %d entries, want %d", len(entries), len(want))
	}
	last := entries[len(entries)-1]
	if last.BalanceAfter != acct.Balance().String() || last.Memo != want[len(want)-1].Memo {
		t.Fatalf("last entry %+v, balance %s", last, acct.Balance())
	}

	if err := db.SaveMeta(runID, "map", "test"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if v, err := db.GetMeta(runID, "map"); err != nil || v != "test" {
		t.Fatalf("meta %q %v", v, err)
	}
	if _, err := db.GetMeta(runID, "absent"); err == nil {
		t.Fatalf("expected an error for a missing key")
	}
}

func TestJournalRoundTrip(t *testing.T) {
	sim := finishedRun(t)
	path := filepath.Join(t.TempDir(), "ledger.jsonl.zst")

	j, err := CreateJournal(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := j.WriteSimulation(sim); err != nil {
		t.Fatalf("write: %v", err)
	}
	written := j.Len()
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	total := 0
	for _, a := range Accounts(sim) {
		total += a.Len()
	}
	if written != total {
		t.Fatalf("wrote %d entries, accounts hold %d", written, total)
	}

	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != total {
		t.Fatalf("read %d entries, want %d", len(got), total)
	}
	first := Accounts(sim)[0].Entries()[0]
	if got[0].ID != first.ID || !got[0].Amount.Equal(first.Amount) || got[0].Memo != first.Memo {
		t.Fatalf("first entry %+v, want %+v", got[0], first)
	}
}
