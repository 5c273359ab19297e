// Package agents defines starships and the lifecycle state machine that
// moves each one from port to port. A ship never blocks: every call to
// Step performs one state's work and returns when it next wants to wake.
package agents

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/economy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/ships"
	"github.com/talgya/merchant-lanes/internal/world"
)

// ShipID is a unique starship identifier within a run.
type ShipID uint32

// State is a lifecycle state.
type State uint8

const (
	StateDocked State = iota
	StateOffloading
	StateSellingCargo
	StateMaintenance
	StateLoadingFreight
	StateLoadingCargo
	StateLoadingMail
	StateLoadingPassengers
	StateLoadingFuel
	StateDeparting
	StateManeuveringToJump
	StateJumping
	StateManeuveringToPort
	StateArriving
)

// NumStates is the number of lifecycle states.
const NumStates = 14

var stateNames = [NumStates]string{
	"DOCKED",
	"OFFLOADING",
	"SELLING_CARGO",
	"MAINTENANCE",
	"LOADING_FREIGHT",
	"LOADING_CARGO",
	"LOADING_MAIL",
	"LOADING_PASSENGERS",
	"LOADING_FUEL",
	"DEPARTING",
	"MANEUVERING_TO_JUMP",
	"JUMPING",
	"MANEUVERING_TO_PORT",
	"ARRIVING",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

// CargoSale records one completed cargo sale.
type CargoSale struct {
	Time  float64      `json:"time"`
	Lot   string       `json:"lot"`
	Good  string       `json:"good"`
	World string       `json:"world"`
	Sale  economy.Sale `json:"sale"`
}

// Starship is one trading ship and everything it carries.
type Starship struct {
	ID      ShipID          `json:"id"`
	Name    string          `json:"name"`
	Class   *ships.Class    `json:"class"`
	Captain CaptainProfile  `json:"captain"`
	Crew    ships.Crew      `json:"crew"`
	Company *ledger.Company `json:"-"` // nil for a ship that keeps its own books

	// Speculates is set for ships that buy cargo on their own account.
	Speculates bool `json:"speculates"`

	// account is the financial sink: the owning company's cash account if
	// there is one, else the ship's own.
	account *ledger.Account

	// Lifecycle
	State       State        `json:"state"`
	Location    *world.World `json:"-"`
	Destination *world.World `json:"-"`
	InJump      bool         `json:"in_jump"`
	RouteReason string       `json:"route_reason,omitempty"`

	// Manifests
	Cargo      []*economy.Lot        `json:"cargo"`
	Freight    []*economy.FreightLot `json:"freight"`
	Passengers [3]int                `json:"passengers"` // indexed by economy.PassengerClass
	Mail       []*economy.MailBundle `json:"mail"`

	// Fuel, in tons
	JumpFuel int `json:"jump_fuel"`
	OpsFuel  int `json:"ops_fuel"`

	// Maintenance
	AnnualMaintenanceDay int             `json:"annual_maintenance_day"`
	LastMaintenanceYear  int             `json:"last_maintenance_year"`
	LastYearBalance      decimal.Decimal `json:"last_year_balance"`
	Maintenances         int             `json:"maintenances"`

	// Outcome
	Broke        bool        `json:"broke"`
	BrokeAt      float64     `json:"broke_at,omitempty"`
	BrokeReason  string      `json:"broke_reason,omitempty"`
	Bailouts     int         `json:"bailouts"`
	Voyages      int         `json:"voyages"`
	Sales        []CargoSale `json:"sales,omitempty"`
	LowSurvivors int         `json:"low_survivors"`
	LowDeaths    int         `json:"low_deaths"`

	// Continuation state
	acted       bool    // the current state's action has run
	freightHope float64 // failed freight attempts, in quarters
	holdFull    bool    // a freight lot did not fit this port call
	jumped      bool    // arrived by jump, voyage not yet counted
}

// Account returns the account the ship spends from and earns into.
func (s *Starship) Account() *ledger.Account {
	return s.account
}

// Balance returns the balance of the ship's financial sink.
func (s *Starship) Balance() decimal.Decimal {
	return s.account.Balance()
}

// CargoMass returns the tons of speculative cargo aboard.
func (s *Starship) CargoMass() int {
	n := 0
	for _, l := range s.Cargo {
		n += l.Mass
	}
	return n
}

// FreightMass returns the tons of freight aboard.
func (s *Starship) FreightMass() int {
	n := 0
	for _, f := range s.Freight {
		n += f.Mass
	}
	return n
}

// HoldUsed returns the tons of hold in use.
func (s *Starship) HoldUsed() int {
	return s.CargoMass() + s.FreightMass()
}

// HoldFree returns the tons of hold still free.
func (s *Starship) HoldFree() int {
	return max(s.Class.CargoCapacity-s.HoldUsed(), 0)
}

// Occupancy returns the hold fill fraction in [0, 1].
func (s *Starship) Occupancy() float64 {
	if s.Class.CargoCapacity <= 0 {
		return 1
	}
	return float64(s.HoldUsed()) / float64(s.Class.CargoCapacity)
}

// PassengerCount returns the number of passengers aboard.
func (s *Starship) PassengerCount() int {
	return s.Passengers[economy.HighPassage] + s.Passengers[economy.MiddlePassage] + s.Passengers[economy.LowPassage]
}

// Staying reports whether the ship has no outbound destination this port call.
func (s *Starship) Staying() bool {
	return s.Destination != nil && s.Destination == s.Location
}

// Active reports whether the ship still runs its lifecycle.
func (s *Starship) Active() bool {
	return !s.Broke
}
