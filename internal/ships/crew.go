package ships

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/entropy"
)

// SalaryPerLevel is the monthly pay per level of a position's skill.
const SalaryPerLevel = 100

// Position is a crew slot on a ship class.
type Position struct {
	Code  string
	Title string
	Skill string // skill that sets the salary
}

var positions = map[string]Position{
	"0": {Code: "0", Title: "Captain", Skill: "Pilot"},
	"A": {Code: "A", Title: "Pilot", Skill: "Pilot"},
	"B": {Code: "B", Title: "Astrogator", Skill: "Astrogator"},
	"C": {Code: "C", Title: "Engineer", Skill: "Engineer"},
	"D": {Code: "D", Title: "Medic", Skill: "Medic"},
	"E": {Code: "E", Title: "Steward", Skill: "Steward"},
	"F": {Code: "F", Title: "Gunner", Skill: "Gunnery"},
	"G": {Code: "G", Title: "Liaison", Skill: "Liaison"},
	"H": {Code: "H", Title: "Purser", Skill: "Admin"},
	"I": {Code: "I", Title: "Fixer", Skill: "Streetwise"},
}

// PositionFor returns the position with the given code.
func PositionFor(code string) (Position, bool) {
	p, ok := positions[code]
	return p, ok
}

// CrewMember is one hired NPC.
type CrewMember struct {
	Position Position       `json:"position"`
	Skills   map[string]int `json:"skills"`
	Chief    bool           `json:"chief,omitempty"` // Chief Engineer
}

// Level returns the member's level in their position's skill.
func (m *CrewMember) Level() int {
	return m.Skills[m.Position.Skill]
}

// PayLevel is the level the member is paid at; the Chief Engineer is paid
// one level above their skill.
func (m *CrewMember) PayLevel() int {
	if m.Chief {
		return m.Level() + 1
	}
	return m.Level()
}

// Salary returns the monthly salary.
func (m *CrewMember) Salary() decimal.Decimal {
	return decimal.NewFromInt(int64(SalaryPerLevel * m.PayLevel()))
}

// Title returns the position title, marking the Chief Engineer.
func (m *CrewMember) Title() string {
	if m.Chief {
		return "Chief " + m.Position.Title
	}
	return m.Position.Title
}

// Crew is a ship's complement in position order.
type Crew []*CrewMember

// Hire fills every position of a class with rolled NPCs.
// The first engineer is the Chief Engineer.
func Hire(c *Class, src entropy.Source) Crew {
	crew := make(Crew, 0, len(c.CrewPositions))
	chief := false
	for _, code := range c.CrewPositions {
		p, ok := PositionFor(code)
		if !ok {
			continue
		}
		m := &CrewMember{Position: p, Skills: map[string]int{p.Skill: rollLevel(src)}}
		if code == "C" && !chief {
			m.Chief = true
			chief = true
		}
		// Captains handle brokers and port officials themselves.
		if code == "0" {
			m.Skills["Liaison"] = max(m.Skills["Liaison"], entropy.D6(src)/3)
		}
		crew = append(crew, m)
	}
	return crew
}

// rollLevel rolls a skill level 1–3 on 2D6.
func rollLevel(src entropy.Source) int {
	switch r := entropy.Roll(src, 2); {
	case r <= 5:
		return 1
	case r <= 9:
		return 2
	default:
		return 3
	}
}

// Payroll returns the crew's total monthly salary.
func (c Crew) Payroll() decimal.Decimal {
	total := decimal.Zero
	for _, m := range c {
		total = total.Add(m.Salary())
	}
	return total
}

// Best returns the highest level any member has in skill.
func (c Crew) Best(skill string) int {
	best := 0
	for _, m := range c {
		best = max(best, m.Skills[skill])
	}
	return best
}

func (c Crew) String() string {
	return fmt.Sprintf("%d crew, payroll Cr%s/month", len(c), c.Payroll().StringFixed(0))
}
