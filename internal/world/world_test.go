package world

import (
	"slices"
	"strings"
	"testing"
)

func TestParsecs(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"0101", "0101", 0},
		{"0101", "0102", 1},
		{"0101", "0201", 1},
		{"0101", "0200", 1},
		{"0101", "0202", 2},
		{"1910", "2010", 1},
		{"0101", "0401", 3},
		{"0101", "0105", 4},
	}
	for _, tc := range cases {
		a, err := ParseLocation(tc.a)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.a, err)
		}
		b, _ := ParseLocation(tc.b)
		if got := Parsecs(a, b); got != tc.want {
			t.Errorf("Parsecs(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := Parsecs(b, a); got != tc.want {
			t.Errorf("Parsecs(%s, %s) not symmetric: %d", tc.b, tc.a, got)
		}
	}
}

func TestParseLocationErrors(t *testing.T) {
	for _, s := range []string{"", "101", "01a1", "010101"} {
		if _, err := ParseLocation(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestParseUWP(t *testing.T) {
	u, err := ParseUWP("A788899-C")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Starport != 'A' || u.Size != 7 || u.Population != 8 || u.TechLevel != 12 {
		t.Fatalf("unexpected profile %+v", u)
	}
	if u.String() != "A788899-C" {
		t.Fatalf("round trip: %s", u.String())
	}
	for _, bad := range []string{"A788899C", "Z788899-C", "A78889I-C"} {
		if _, err := ParseUWP(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestEHexSkipsIAndO(t *testing.T) {
	if v, _ := EHex('J'); v != 18 {
		t.Fatalf("expected J=18 got %d", v)
	}
	if _, ok := EHex('I'); ok {
		t.Fatalf("I is not an ehex digit")
	}
}

func TestDeriveTradeCodes(t *testing.T) {
	u, _ := ParseUWP("A867A69-F") // Hi pop, atmo 6
	codes := DeriveTradeCodes(u)
	if !slices.Contains(codes, "Hi") {
		t.Fatalf("expected Hi in %v", codes)
	}
	u, _ = ParseUWP("C200000-0")
	codes = DeriveTradeCodes(u)
	if !slices.Contains(codes, "Va") || !slices.Contains(codes, "Ba") {
		t.Fatalf("expected Va and Ba in %v", codes)
	}
}

func TestStarportTable(t *testing.T) {
	cases := []struct {
		class   byte
		refined bool
		dice    int
	}{
		{'A', true, 2}, {'B', true, 2}, {'C', false, 4}, {'D', false, 4}, {'E', false, 0}, {'X', false, 0}, {'?', false, 0},
	}
	for _, tc := range cases {
		sp := StarportFor(tc.class)
		if sp.SellsRefinedFuel() != tc.refined || sp.RefuelDice != tc.dice {
			t.Errorf("starport %c: refined=%v dice=%d", tc.class, sp.SellsRefinedFuel(), sp.RefuelDice)
		}
	}
	if StarportFor('C').Fuel != FuelUnrefined || StarportFor('E').Fuel != FuelNone {
		t.Fatalf("unexpected fuel grades")
	}
}

const sampleMap = "Hex\tName\tUWP\tRemarks\tZone\t{Ix}\tSector\n" +
	"1910\tRegina\tA788899-C\tRi Pa Ph\t\t{ +4 }\tSpinward Marches\n" +
	"2010\tBeck\tC540000-0\tBa De Po\tA\t{ -3 }\tSpinward Marches\n" +
	"1810\tBoughene\tA8B3531-D\tFl Ni\t-\t{ 1 }\t\n"

func TestLoadMap(t *testing.T) {
	m, err := LoadMap(strings.NewReader(sampleMap), "Default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 worlds got %d", m.Len())
	}
	regina := m.Get("Regina")
	if regina == nil || regina.Importance != 4 || !regina.HasCode("Ri") {
		t.Fatalf("unexpected Regina %+v", regina)
	}
	if regina.FullName() != "Regina/Spinward Marches (1910)" {
		t.Fatalf("unexpected full name %q", regina.FullName())
	}
	if m.Get("Beck").Zone != ZoneAmber || !m.Get("Beck").Restricted() {
		t.Fatalf("expected Beck to be amber")
	}
	if m.Get("Boughene").Sector != "Default" {
		t.Fatalf("expected default sector for blank column")
	}
	if got := m.Names(); !slices.Equal(got, []string{"Beck", "Boughene", "Regina"}) {
		t.Fatalf("names not sorted: %v", got)
	}

	near := m.WithinJump(regina, 1)
	if len(near) != 2 {
		t.Fatalf("expected 2 worlds within J-1 of Regina, got %d", len(near))
	}
}

func TestLoadMapMissingColumn(t *testing.T) {
	_, err := LoadMap(strings.NewReader("Name\tUWP\nRegina\tA788899-C\n"), "x")
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg)
	b := Generate(cfg)
	if a.Len() == 0 {
		t.Fatalf("expected worlds in a dense cluster")
	}
	if !slices.Equal(a.Names(), b.Names()) {
		t.Fatalf("same seed produced different maps")
	}
	for _, w := range a.Worlds() {
		if w.Hex.Col < 1 || w.Hex.Col > cfg.Columns || w.Hex.Row < 1 || w.Hex.Row > cfg.Rows {
			t.Fatalf("world %s outside subsector: %s", w.Name, w.Hex)
		}
		if _, err := ParseUWP(w.UWP.String()); err != nil {
			t.Fatalf("world %s has invalid UWP %s: %v", w.Name, w.UWP, err)
		}
	}
}
