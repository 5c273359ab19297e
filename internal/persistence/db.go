// Package persistence exports finished runs: a SQLite database for offline
// analysis and a compressed ledger journal. Nothing here is read back into
// a running simulation.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/merchant-lanes/internal/engine"
	"github.com/talgya/merchant-lanes/internal/ledger"
)

// DB wraps a SQLite connection for run exports.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		ships INTEGER NOT NULL,
		days REAL NOT NULL,
		start_year INTEGER NOT NULL,
		start_day INTEGER NOT NULL,
		events INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ships (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		class TEXT NOT NULL,
		role TEXT NOT NULL,
		captain TEXT NOT NULL,
		threshold REAL NOT NULL,
		account TEXT NOT NULL,
		balance TEXT NOT NULL,
		voyages INTEGER NOT NULL,
		location TEXT NOT NULL,
		state TEXT NOT NULL,
		broke INTEGER NOT NULL,
		broke_at REAL,
		broke_reason TEXT,
		bailouts INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		account TEXT NOT NULL,
		seq INTEGER NOT NULL,
		time REAL NOT NULL,
		amount TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		memo TEXT NOT NULL,
		counterparty TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cargo_sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ship_id INTEGER NOT NULL,
		time REAL NOT NULL,
		lot TEXT NOT NULL,
		good TEXT NOT NULL DEFAULT '',
		world TEXT NOT NULL,
		proceeds TEXT NOT NULL,
		profit TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_visits (
		run_id TEXT NOT NULL,
		world TEXT NOT NULL,
		arrivals INTEGER NOT NULL,
		sales INTEGER NOT NULL,
		profit TEXT NOT NULL,
		PRIMARY KEY (run_id, world)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_account ON ledger_entries(run_id, account, seq);
	CREATE INDEX IF NOT EXISTS idx_sales_ship ON cargo_sales(run_id, ship_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a finished simulation in one transaction.
func (db *DB) SaveRun(sim *engine.Simulation) error {
	slog.Info("exporting run", "run", sim.RunID, "ships", len(sim.Ships))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runID := sim.RunID.String()
	cfg := sim.Config
	_, err = tx.Exec(`INSERT INTO runs (id, seed, ships, days, start_year, start_day, events, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, cfg.Seed, len(sim.Ships), cfg.Days, cfg.StartYear, cfg.StartDay,
		sim.Stats.Events, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := saveShips(tx, sim); err != nil {
		return fmt.Errorf("save ships: %w", err)
	}
	if err := saveEntries(tx, runID, Accounts(sim)); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	if err := saveSales(tx, sim); err != nil {
		return fmt.Errorf("save sales: %w", err)
	}
	for _, ws := range sim.WorldReport() {
		_, err := tx.Exec("INSERT INTO world_visits (run_id, world, arrivals, sales, profit) VALUES (?, ?, ?, ?, ?)",
			runID, ws.Name, ws.Arrivals, ws.Sales, ws.Profit.String())
		if err != nil {
			return fmt.Errorf("insert world %s: %w", ws.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run exported", "run", sim.RunID)
	return nil
}

func saveShips(tx *sqlx.Tx, sim *engine.Simulation) error {
	stmt, err := tx.Preparex(`INSERT INTO ships
		(run_id, id, name, class, role, captain, threshold, account, balance,
		 voyages, location, state, broke, broke_at, broke_reason, bailouts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range sim.Ships {
		broke := 0
		var brokeAt *float64
		if s.Broke {
			broke = 1
			at := s.BrokeAt
			brokeAt = &at
		}
		_, err := stmt.Exec(
			sim.RunID.String(), s.ID, s.Name, s.Class.Name, string(s.Class.Role),
			s.Captain.Risk.String(), s.Captain.DepartureThreshold,
			s.Account().Name, s.Balance().String(),
			s.Voyages, s.Where(), s.State.String(),
			broke, brokeAt, s.BrokeReason, s.Bailouts,
		)
		if err != nil {
			return fmt.Errorf("insert ship %d: %w", s.ID, err)
		}
	}
	return nil
}

func saveEntries(tx *sqlx.Tx, runID string, accounts []*ledger.Account) error {
	stmt, err := tx.Preparex(`INSERT INTO ledger_entries
		(id, run_id, account, seq, time, amount, balance_after, memo, counterparty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, acct := range accounts {
		for i, e := range acct.Entries() {
			_, err := stmt.Exec(
				e.ID.String(), runID, acct.Name, i, e.Time,
				e.Amount.String(), e.BalanceAfter.String(), e.Memo, e.Counterparty,
			)
			if err != nil {
				return fmt.Errorf("insert entry %s/%d: %w", acct.Name, i, err)
			}
		}
	}
	return nil
}

func saveSales(tx *sqlx.Tx, sim *engine.Simulation) error {
	for _, s := range sim.Ships {
		for _, sale := range s.Sales {
			_, err := tx.Exec(`INSERT INTO cargo_sales (run_id, ship_id, time, lot, good, world, proceeds, profit)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				sim.RunID.String(), s.ID, sale.Time, sale.Lot, sale.Good, sale.World,
				sale.Sale.Proceeds.String(), sale.Sale.Profit.String(),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Accounts returns every distinct account the fleet spends from, in ship
// order, followed by company equity accounts.
func Accounts(sim *engine.Simulation) []*ledger.Account {
	seen := make(map[*ledger.Account]bool)
	var out []*ledger.Account
	add := func(a *ledger.Account) {
		if a != nil && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, s := range sim.Ships {
		add(s.Account())
	}
	for _, c := range sim.Companies {
		add(c.Capital)
	}
	return out
}

// SaveMeta stores a key-value pair for a run.
func (db *DB) SaveMeta(runID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		runID, key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(runID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", runID, key)
	return value, err
}

// ShipRow is one exported ship.
type ShipRow struct {
	ID      int    `db:"id"`
	Name    string `db:"name"`
	Class   string `db:"class"`
	Role    string `db:"role"`
	Balance string `db:"balance"`
	Voyages int    `db:"voyages"`
	State   string `db:"state"`
	Broke   bool   `db:"broke"`
}

// Ships returns the exported ships of a run in ID order.
func (db *DB) Ships(runID string) ([]ShipRow, error) {
	var rows []ShipRow
	err := db.conn.Select(&rows,
		"SELECT id, name, class, role, balance, voyages, state, broke FROM ships WHERE run_id = ? ORDER BY id",
		runID,
	)
	return rows, err
}

// EntryRow is one exported ledger entry.
type EntryRow struct {
	Time         float64 `db:"time"`
	Amount       string  `db:"amount"`
	BalanceAfter string  `db:"balance_after"`
	Memo         string  `db:"memo"`
}

// Entries returns an account's exported entries in ledger order.
func (db *DB) Entries(runID, account string) ([]EntryRow, error) {
	var rows []EntryRow
	err := db.conn.Select(&rows,
		"SELECT time, amount, balance_after, memo FROM ledger_entries WHERE run_id = ? AND account = ? ORDER BY seq",
		runID, account,
	)
	return rows, err
}
