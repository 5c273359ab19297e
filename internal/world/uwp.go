package world

import (
	"fmt"
	"strings"
)

// UWP is a Universal World Profile such as "A788899-C".
type UWP struct {
	Starport     byte
	Size         int
	Atmosphere   int
	Hydrographic int
	Population   int
	Government   int
	Law          int
	TechLevel    int
}

const ehexDigits = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// EHex decodes one extended-hex digit (I and O are skipped).
func EHex(c byte) (int, bool) {
	i := strings.IndexByte(ehexDigits, upper(c))
	return i, i >= 0
}

// ToEHex encodes a value 0..33 as an extended-hex digit.
func ToEHex(v int) byte {
	if v < 0 {
		v = 0
	}
	if v >= len(ehexDigits) {
		v = len(ehexDigits) - 1
	}
	return ehexDigits[v]
}

// ParseUWP parses a nine-character UWP.
func ParseUWP(s string) (UWP, error) {
	s = strings.TrimSpace(s)
	if len(s) != 9 || s[7] != '-' {
		return UWP{}, fmt.Errorf("uwp %q: want format X000000-0", s)
	}
	u := UWP{Starport: upper(s[0])}
	if !strings.ContainsRune("ABCDEX", rune(u.Starport)) {
		return UWP{}, fmt.Errorf("uwp %q: unknown starport %q", s, u.Starport)
	}
	fields := []*int{&u.Size, &u.Atmosphere, &u.Hydrographic, &u.Population, &u.Government, &u.Law}
	for i, f := range fields {
		v, ok := EHex(s[i+1])
		if !ok {
			return UWP{}, fmt.Errorf("uwp %q: bad digit %q", s, s[i+1])
		}
		*f = v
	}
	tl, ok := EHex(s[8])
	if !ok {
		return UWP{}, fmt.Errorf("uwp %q: bad tech level %q", s, s[8])
	}
	u.TechLevel = tl
	return u, nil
}

// String renders the profile back to its nine-character form.
func (u UWP) String() string {
	return string([]byte{
		u.Starport,
		ToEHex(u.Size), ToEHex(u.Atmosphere), ToEHex(u.Hydrographic),
		ToEHex(u.Population), ToEHex(u.Government), ToEHex(u.Law),
		'-', ToEHex(u.TechLevel),
	})
}

// DeriveTradeCodes computes the trade classifications implied by a profile.
func DeriveTradeCodes(u UWP) []string {
	var codes []string
	add := func(ok bool, code string) {
		if ok {
			codes = append(codes, code)
		}
	}
	sz, atm, hyd, pop, gov, law := u.Size, u.Atmosphere, u.Hydrographic, u.Population, u.Government, u.Law
	add(atm >= 4 && atm <= 9 && hyd >= 4 && hyd <= 8 && pop >= 5 && pop <= 7, "Ag")
	add(sz == 0 && atm == 0 && hyd == 0, "As")
	add(pop == 0 && gov == 0 && law == 0, "Ba")
	add(atm >= 2 && atm <= 9 && hyd == 0, "De")
	add(atm >= 10 && atm <= 12 && hyd >= 1, "Fl")
	add(pop >= 9, "Hi")
	add(atm <= 1 && hyd >= 1, "Ic")
	add((atm <= 2 || atm == 4 || atm == 7 || atm == 9) && pop >= 9, "In")
	add(pop >= 1 && pop <= 3, "Lo")
	add(atm <= 3 && hyd <= 3 && pop >= 6, "Na")
	add(pop >= 4 && pop <= 6, "Ni")
	add(atm >= 2 && atm <= 5 && hyd <= 3, "Po")
	add((atm == 6 || atm == 8) && pop >= 6 && pop <= 8, "Ri")
	add(atm == 0 && sz > 0, "Va")
	add(hyd == 10, "Wa")
	return codes
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
