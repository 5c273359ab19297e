// Package config resolves run settings: built-in defaults, then an optional
// YAML file, then environment variables. Command-line flags are applied
// last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/talgya/merchant-lanes/internal/agents"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/ships"
)

// Config holds everything needed to set up and run a simulation.
type Config struct {
	Seed      int64   `yaml:"seed"`
	Ships     int     `yaml:"ships"`
	Days      float64 `yaml:"days"`
	StartYear int     `yaml:"start_year"`
	StartDay  int     `yaml:"start_day"`

	StartingCapital   int64   `yaml:"starting_capital"`
	ShipsPerCompany   int     `yaml:"ships_per_company"` // 0: ships keep their own books
	SpeculateCargoPct float64 `yaml:"speculate_cargo_pct"`

	// Roles lists the included roles; empty means every role in the catalog.
	Roles       []string           `yaml:"roles"`
	RoleWeights map[string]float64 `yaml:"role_weights"`

	MapFile   string `yaml:"map_file"` // empty: generate a subsector
	ShipsFile string `yaml:"ships_file"`
	Sector    string `yaml:"sector"`

	DBPath      string `yaml:"db_path"`
	JournalPath string `yaml:"journal_path"`
	LogLevel    string `yaml:"log_level"`

	Lifecycle Lifecycle `yaml:"lifecycle"`
}

// Lifecycle holds the ship lifecycle tunables.
type Lifecycle struct {
	Durations          map[string]float64 `yaml:"durations"` // days, by state name
	RefinedFuelPrice   int64              `yaml:"refined_fuel_price"`
	UnrefinedFuelPrice int64              `yaml:"unrefined_fuel_price"`
	BailoutAmount      int64              `yaml:"bailout_amount"`
	CrewProfitShare    float64            `yaml:"crew_profit_share"`
	HopeIncrement      float64            `yaml:"hope_increment"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Seed:              42,
		Ships:             10,
		Days:              365,
		StartYear:         1105,
		StartDay:          1,
		StartingCapital:   1_000_000,
		ShipsPerCompany:   1,
		SpeculateCargoPct: 1.0,
		RoleWeights: map[string]float64{
			string(ships.RoleCivilian):    0.8,
			string(ships.RoleMilitary):    0.1,
			string(ships.RoleSpecialized): 0.1,
		},
		Sector:   "Foreven",
		LogLevel: "info",
		Lifecycle: Lifecycle{
			RefinedFuelPrice:   500,
			UnrefinedFuelPrice: 100,
			BailoutAmount:      1_000_000,
			CrewProfitShare:    0.10,
			HopeIncrement:      0.25,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadEnv loads variables from .env files into the environment. Missing
// files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from T5SIM_* environment variables.
func (c *Config) ApplyEnv() {
	c.Seed = int64(envIntOrDefault("T5SIM_SEED", int(c.Seed)))
	c.Ships = envIntOrDefault("T5SIM_SHIPS", c.Ships)
	c.Days = envFloatOrDefault("T5SIM_DAYS", c.Days)
	c.StartYear = envIntOrDefault("T5SIM_YEAR", c.StartYear)
	c.StartDay = envIntOrDefault("T5SIM_DAY", c.StartDay)
	c.MapFile = envOrDefault("T5SIM_MAP", c.MapFile)
	c.ShipsFile = envOrDefault("T5SIM_SHIPS_FILE", c.ShipsFile)
	c.DBPath = envOrDefault("T5SIM_DB", c.DBPath)
	c.JournalPath = envOrDefault("T5SIM_JOURNAL", c.JournalPath)
	c.LogLevel = envOrDefault("T5SIM_LOG_LEVEL", c.LogLevel)
}

// Validate checks the settings that would otherwise fail mid-run.
func (c *Config) Validate() error {
	switch {
	case c.Ships < 1:
		return &ships.ConfigurationError{Msg: "at least one ship is required"}
	case c.Days <= 0:
		return &ships.ConfigurationError{Msg: "simulation must run for a positive number of days"}
	case c.StartDay < 1 || c.StartDay > 365:
		return &ships.ConfigurationError{Msg: fmt.Sprintf("start day %d outside 1..365", c.StartDay)}
	case c.StartingCapital < 0:
		return &ships.ConfigurationError{Msg: "starting capital must not be negative"}
	case c.ShipsPerCompany < 0:
		return &ships.ConfigurationError{Msg: "ships per company must not be negative"}
	case c.SpeculateCargoPct < 0 || c.SpeculateCargoPct > 1:
		return &ships.ConfigurationError{Msg: "speculate_cargo_pct must be within 0..1"}
	case c.Lifecycle.HopeIncrement <= 0:
		return &ships.ConfigurationError{Msg: "hope_increment must be positive"}
	}
	if _, err := c.IncludedRoles(); err != nil {
		return err
	}
	if _, err := c.Tuning(); err != nil {
		return err
	}
	return nil
}

// IncludedRoles returns the configured roles in report order.
func (c *Config) IncludedRoles() ([]ships.Role, error) {
	if len(c.Roles) == 0 {
		return nil, nil
	}
	want := make(map[ships.Role]bool, len(c.Roles))
	for _, r := range c.Roles {
		role := ships.Role(strings.ToLower(strings.TrimSpace(r)))
		known := false
		for _, k := range ships.AllRoles {
			known = known || k == role
		}
		if !known {
			return nil, &ships.ConfigurationError{Msg: fmt.Sprintf("unknown ship role %q", r)}
		}
		want[role] = true
	}
	var out []ships.Role
	for _, r := range ships.AllRoles {
		if want[r] {
			out = append(out, r)
		}
	}
	return out, nil
}

// RoleWeight returns the population weight of a role.
func (c *Config) RoleWeight(r ships.Role) float64 {
	return c.RoleWeights[string(r)]
}

// Tuning builds the ship lifecycle parameters.
func (c *Config) Tuning() (agents.Tuning, error) {
	t := agents.DefaultTuning()
	names := make([]string, 0, len(c.Lifecycle.Durations))
	for name := range c.Lifecycle.Durations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st, ok := agents.ParseState(strings.ToUpper(name))
		if !ok {
			return t, &ships.ConfigurationError{Msg: fmt.Sprintf("unknown state %q in durations", name)}
		}
		d := c.Lifecycle.Durations[name]
		if d < 0 {
			return t, &ships.ConfigurationError{Msg: fmt.Sprintf("negative duration for %s", st)}
		}
		t.Durations[st] = d
	}
	t.RefinedFuelPrice = ledger.Credits(c.Lifecycle.RefinedFuelPrice)
	t.UnrefinedFuelPrice = ledger.Credits(c.Lifecycle.UnrefinedFuelPrice)
	t.BailoutAmount = ledger.Credits(c.Lifecycle.BailoutAmount)
	t.CrewProfitShare = decimal.NewFromFloat(c.Lifecycle.CrewProfitShare)
	t.HopeIncrement = c.Lifecycle.HopeIncrement
	return t, nil
}

// SlogLevel maps the configured log level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
