// Ship spawning: names, captains, crews, and opening books.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/calendar"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// NewStarship builds a ship docked at location with full tanks. Money moves
// through the company's cash account when company is set, else through an
// account of the ship's own.
func NewStarship(id ShipID, name string, class *ships.Class, location *world.World, company *ledger.Company) *Starship {
	s := &Starship{
		ID:       id,
		Name:     name,
		Class:    class,
		Company:  company,
		State:    StateDocked,
		Location: location,
		JumpFuel: class.JumpFuelCapacity,
		OpsFuel:  class.OpsFuelCapacity,

		Speculates:           true,
		AnnualMaintenanceDay: calendar.DaysPerYear,

		Captain: CaptainProfile{
			DepartureThreshold: StandardDepartureThreshold,
			Risk:               RiskStandard,
		},
	}
	if company != nil {
		s.account = company.Cash
	} else {
		s.account = ledger.NewAccount(name)
	}
	return s
}

// Spawner creates the ships of a run.
type Spawner struct {
	rng      *rand.Rand
	nextID   ShipID
	calendar calendar.Calendar
}

// NewSpawner creates a ship spawner with the given seed.
func NewSpawner(seed int64, cal calendar.Calendar) *Spawner {
	return &Spawner{
		rng:      entropy.Derive(seed, entropy.OffsetSpawner),
		nextID:   1,
		calendar: cal,
	}
}

// SetNextID sets the next ship ID to be issued.
func (sp *Spawner) SetNextID(id ShipID) {
	sp.nextID = id
}

// ShipName returns the standard name for a ship ID.
func ShipName(id ShipID) string {
	return fmt.Sprintf("Trader_%03d", id)
}

// Spawn creates one ship of class at location. A ship without a company
// gets its own account, opened with capital.
func (sp *Spawner) Spawn(class *ships.Class, location *world.World, company *ledger.Company, capital decimal.Decimal) (*Starship, error) {
	id := sp.nextID
	sp.nextID++

	s := NewStarship(id, ShipName(id), class, location, company)
	if company == nil && capital.IsPositive() {
		if err := s.account.CreditFrom(0, capital, "Initial capitalization", "Owner"); err != nil {
			return nil, fmt.Errorf("open account for %s: %w", s.Name, err)
		}
	}

	s.Captain = NewCaptainProfile(sp.rng)
	s.Crew = ships.Hire(class, sp.rng)

	// Maintenance falls on any day after the new-year holiday.
	s.AnnualMaintenanceDay = 2 + sp.rng.Intn(calendar.DaysPerYear-1)
	s.LastMaintenanceYear = sp.calendar.StartYear
	s.LastYearBalance = s.Balance()
	return s, nil
}
