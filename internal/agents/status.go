package agents

import (
	"fmt"

	"github.com/talgya/merchant-lanes/internal/calendar"
	"github.com/talgya/merchant-lanes/internal/economy"
	"github.com/talgya/merchant-lanes/internal/ledger"
)

// Where describes the ship's position for reports.
func (s *Starship) Where() string {
	switch {
	case s.InJump:
		return "jump space"
	case s.Location == nil:
		return "nowhere"
	default:
		return s.Location.FullName()
	}
}

// StatusLine renders the verbose log line for the ship at time now.
func (s *Starship) StatusLine(cal calendar.Calendar, now float64, memo string) string {
	used, capacity := s.HoldUsed(), s.Class.CargoCapacity
	pct := 0
	if capacity > 0 {
		pct = used * 100 / capacity
	}
	p := s.Passengers
	return fmt.Sprintf("[%s] %s at %s (%s): company=%s, hold (%dt/%dt, %d%%), fuel (jump %d/%dt, ops %d/%dt), cargo=%d lots, freight=%d lots, passengers=(%dH/%dM/%dL), mail=%d bundles | %s",
		cal.Date(now), s.Name, s.Where(), s.State,
		ledger.Cr(s.Balance()),
		used, capacity, pct,
		s.JumpFuel, s.Class.JumpFuelCapacity, s.OpsFuel, s.Class.OpsFuelCapacity,
		len(s.Cargo), len(s.Freight),
		p[economy.HighPassage], p[economy.MiddlePassage], p[economy.LowPassage],
		len(s.Mail), memo)
}

func (s *Starship) String() string {
	return fmt.Sprintf("%s (%s) at %s, %s", s.Name, s.Class.Name, s.Where(), s.State)
}
