package world

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns the map loader requires; Sector, SS and {Ix} are optional.
var requiredColumns = []string{"Name", "UWP", "Zone", "Hex", "Remarks"}

// LoadMapFile reads a tab-separated T5 map export.
func LoadMapFile(path, defaultSector string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()
	m, err := LoadMap(f, defaultSector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadMap parses a tab-separated T5 map export from r.
func LoadMap(r io.Reader, defaultSector string) (*Map, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	m := NewMap()
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		name := field(rec, "Name")
		if name == "" {
			continue
		}
		uwp, err := ParseUWP(field(rec, "UWP"))
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", line, name, err)
		}
		hex, err := ParseLocation(field(rec, "Hex"))
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", line, name, err)
		}
		sector := field(rec, "Sector")
		if sector == "" {
			sector = defaultSector
		}
		m.Add(&World{
			Name:       name,
			UWP:        uwp,
			TradeCodes: strings.Fields(field(rec, "Remarks")),
			Zone:       ParseZone(field(rec, "Zone")),
			Hex:        hex,
			Sector:     sector,
			Subsector:  field(rec, "SS"),
			Importance: parseImportance(field(rec, "{Ix}")),
		})
	}
	if m.Len() == 0 {
		return nil, errors.New("map contains no worlds")
	}
	return m, nil
}

// parseImportance reads "{ +4 }", "{-1}" or "2"; anything else is 0.
func parseImportance(s string) int {
	s = strings.Trim(s, "{} ")
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// Importance computes the T5 importance extension for a world.
func Importance(u UWP, codes []string) int {
	ix := 0
	switch u.Starport {
	case 'A', 'B':
		ix++
	case 'D', 'E', 'X':
		ix--
	}
	if u.TechLevel >= 16 {
		ix++
	}
	if u.TechLevel >= 10 {
		ix++
	}
	if u.TechLevel <= 8 {
		ix--
	}
	for _, c := range codes {
		switch c {
		case "Ag", "Hi", "In", "Ri":
			ix++
		}
	}
	if u.Population <= 6 {
		ix--
	}
	return ix
}
