package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/merchant-lanes/internal/persistence"
)

const testMap = "Hex\tName\tUWP\tRemarks\tZone\n" +
	"0101\tAlpha\tA867869-A\tRi\t\n" +
	"0102\tGamma\tB574A77-C\tHi In\t\n" +
	"0103\tDelta\tA560565-8\tDe\t\n"

func TestRunReports(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "map.tsv")
	if err := os.WriteFile(mapPath, []byte(testMap), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	dbPath := filepath.Join(dir, "runs.db")
	journalPath := filepath.Join(dir, "ledger.jsonl.zst")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--env", filepath.Join(dir, "absent.env"),
		"--map", mapPath,
		"--ships", "3",
		"--days", "60",
		"--seed", "5",
		"--include-civilian",
		"--worlds-report",
		"--ledger", "trader_001",
		"--db", dbPath,
		"--journal", journalPath,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"=== Results: 3 ships, 001.00-1105 to 061.00-1105 (seed 5) ===",
		"Civilian leaderboard:",
		"=== Worlds ===",
		"=== Ledger: Trader_001 (Company_001 - Cash) ===",
		"Initial capitalization",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "military") || strings.Contains(out, "specialized") {
		t.Errorf("only civilian ships were requested:\n%s", out)
	}

	entries, err := persistence.ReadJournal(journalPath)
	if err != nil || len(entries) == 0 {
		t.Fatalf("journal: %d entries, %v", len(entries), err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not written: %v", err)
	}
}

func TestRunUnknownShipLedger(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "map.tsv")
	if err := os.WriteFile(mapPath, []byte(testMap), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--env", filepath.Join(dir, "absent.env"),
		"--map", mapPath, "--ships", "1", "--days", "5", "--ledger", "Nobody",
	}, &stdout, &stderr)
	if err == nil {
		t.Fatalf("expected an error for an unknown ship")
	}
}

func TestResolveConfigFlagsWin(t *testing.T) {
	var stderr bytes.Buffer
	t.Setenv("T5SIM_SHIPS", "40")
	t.Setenv("T5SIM_DAYS", "100")
	o, fs, err := parseFlags([]string{"--env", "", "--days", "30", "--include-military"}, &stderr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := resolveConfig(o, fs)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Ships != 40 || cfg.Days != 30 {
		t.Fatalf("ships %d days %v", cfg.Ships, cfg.Days)
	}
	if len(cfg.Roles) != 1 || cfg.Roles[0] != "military" {
		t.Fatalf("roles %v", cfg.Roles)
	}
}
