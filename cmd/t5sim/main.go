// Command t5sim runs the merchant starship simulation over a subsector and
// prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/merchant-lanes/internal/config"
	"github.com/talgya/merchant-lanes/internal/engine"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/persistence"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("t5sim failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	envFile      string
	ships        int
	days         float64
	seed         int64
	year         int
	day          int
	mapFile      string
	shipsFile    string
	dbPath       string
	journalPath  string
	verbose      bool
	ledgerShip   string
	ledgerAll    bool
	worldsReport bool

	includeCivilian    bool
	includeMilitary    bool
	includeSpecialized bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	def := config.Default()
	o := &options{}
	fs := flag.NewFlagSet("t5sim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "YAML run configuration")
	fs.StringVar(&o.envFile, "env", ".env", "dotenv file with T5SIM_* overrides")
	fs.IntVar(&o.ships, "ships", def.Ships, "number of ships")
	fs.Float64Var(&o.days, "days", def.Days, "simulation length in days")
	fs.Int64Var(&o.seed, "seed", def.Seed, "random seed (0 = random)")
	fs.IntVar(&o.year, "year", def.StartYear, "starting Imperial year")
	fs.IntVar(&o.day, "day", def.StartDay, "starting day of year (1-365)")
	fs.StringVar(&o.mapFile, "map", "", "tab-separated T5 map file (default: generate a subsector)")
	fs.StringVar(&o.shipsFile, "ships-file", "", "ship class catalog YAML (default: built-in)")
	fs.StringVar(&o.dbPath, "db", "", "export the run to this SQLite database")
	fs.StringVar(&o.journalPath, "journal", "", "write every ledger entry to this .jsonl.zst file")
	fs.BoolVar(&o.verbose, "verbose", false, "print a status line for every ship action")
	fs.StringVar(&o.ledgerShip, "ledger", "", "print the ledger of the named ship")
	fs.BoolVar(&o.ledgerAll, "ledger-all", false, "print every ship's ledger")
	fs.BoolVar(&o.worldsReport, "worlds-report", false, "print per-world activity")
	fs.BoolVar(&o.includeCivilian, "include-civilian", false, "include civilian ships")
	fs.BoolVar(&o.includeMilitary, "include-military", false, "include military ships")
	fs.BoolVar(&o.includeSpecialized, "include-specialized", false, "include specialized ships")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs, nil
}

// resolveConfig layers defaults, the YAML file, the environment, and the
// flags that were set explicitly.
func resolveConfig(o *options, fs *flag.FlagSet) (*config.Config, error) {
	if err := config.LoadEnv(o.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	var roles []string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ships":
			cfg.Ships = o.ships
		case "days":
			cfg.Days = o.days
		case "seed":
			cfg.Seed = o.seed
		case "year":
			cfg.StartYear = o.year
		case "day":
			cfg.StartDay = o.day
		case "map":
			cfg.MapFile = o.mapFile
		case "ships-file":
			cfg.ShipsFile = o.shipsFile
		case "db":
			cfg.DBPath = o.dbPath
		case "journal":
			cfg.JournalPath = o.journalPath
		case "include-civilian":
			if o.includeCivilian {
				roles = append(roles, string(ships.RoleCivilian))
			}
		case "include-military":
			if o.includeMilitary {
				roles = append(roles, string(ships.RoleMilitary))
			}
		case "include-specialized":
			if o.includeSpecialized {
				roles = append(roles, string(ships.RoleSpecialized))
			}
		}
	})
	if len(roles) > 0 {
		cfg.Roles = roles
	}
	if cfg.Seed == 0 {
		cfg.Seed = entropy.RandomSeed()
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(o, fs)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// ── World map ─────────────────────────────────────────────────────
	var worldMap *world.Map
	if cfg.MapFile != "" {
		worldMap, err = world.LoadMapFile(cfg.MapFile, cfg.Sector)
		if err != nil {
			return err
		}
		slog.Info("map loaded", "path", cfg.MapFile, "worlds", worldMap.Len())
	} else {
		gen := world.DefaultGenConfig()
		gen.Seed = cfg.Seed
		gen.Sector = cfg.Sector
		worldMap = world.Generate(gen)
		slog.Info("subsector generated", "sector", gen.Sector, "worlds", worldMap.Len())
	}

	// ── Ship classes ──────────────────────────────────────────────────
	var catalog *ships.Catalog
	if cfg.ShipsFile != "" {
		catalog, err = ships.LoadCatalog(cfg.ShipsFile)
	} else {
		catalog, err = ships.DefaultCatalog()
	}
	if err != nil {
		return err
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.New(cfg, worldMap, catalog)
	if err != nil {
		return err
	}
	if o.verbose {
		sim.Status = stdout
	}
	if err := sim.Run(ctx); err != nil {
		return err
	}

	// ── Reports ───────────────────────────────────────────────────────
	printResults(stdout, sim)
	if o.worldsReport {
		printWorlds(stdout, sim)
	}
	switch {
	case o.ledgerAll:
		for _, s := range sim.Ships {
			printLedger(stdout, sim, s)
		}
	case o.ledgerShip != "":
		s := findShip(sim, o.ledgerShip)
		if s == nil {
			return fmt.Errorf("no ship named %q", o.ledgerShip)
		}
		printLedger(stdout, sim, s)
	}

	// ── Exports ───────────────────────────────────────────────────────
	if cfg.DBPath != "" {
		if err := export(sim, cfg.DBPath, worldMap); err != nil {
			return err
		}
	}
	if cfg.JournalPath != "" {
		if err := writeJournal(sim, cfg.JournalPath); err != nil {
			return err
		}
	}
	return nil
}

func export(sim *engine.Simulation, path string, m *world.Map) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(sim); err != nil {
		return fmt.Errorf("export run: %w", err)
	}
	runID := sim.RunID.String()
	for key, value := range map[string]string{
		"map":    sim.Config.MapFile,
		"sector": sim.Config.Sector,
		"worlds": fmt.Sprintf("%d", m.Len()),
		"end":    sim.Calendar.Date(sim.Now()).String(),
	} {
		if err := db.SaveMeta(runID, key, value); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}
	slog.Info("database written", "path", path, "run", runID)
	return nil
}

func writeJournal(sim *engine.Simulation, path string) error {
	j, err := persistence.CreateJournal(path)
	if err != nil {
		return err
	}
	if err := j.WriteSimulation(sim); err != nil {
		j.Close()
		return err
	}
	if err := j.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	slog.Info("journal written", "path", path, "entries", j.Len())
	return nil
}
