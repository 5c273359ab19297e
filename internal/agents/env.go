package agents

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/calendar"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/routing"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Tuning holds the timing and price parameters of the lifecycle.
type Tuning struct {
	// Durations in days, indexed by state. LOADING_FUEL is rolled and
	// its entry is unused.
	Durations [NumStates]float64

	RefinedFuelPrice   decimal.Decimal // per ton
	UnrefinedFuelPrice decimal.Decimal // per ton, for ships that refine
	BailoutAmount      decimal.Decimal
	CrewProfitShare    decimal.Decimal // fraction of annual profit
	HopeIncrement      float64         // per failed freight attempt
}

// DefaultTuning returns the standard lifecycle parameters.
func DefaultTuning() Tuning {
	var d [NumStates]float64
	d[StateDocked] = 0
	d[StateOffloading] = 0.25
	d[StateSellingCargo] = 0.5
	d[StateMaintenance] = 14
	d[StateLoadingFreight] = 1.0
	d[StateLoadingCargo] = 0.5
	d[StateLoadingMail] = 0.1
	d[StateLoadingPassengers] = 0.25
	d[StateDeparting] = 0.1
	d[StateManeuveringToJump] = 0.5
	d[StateJumping] = 7
	d[StateManeuveringToPort] = 0.5
	d[StateArriving] = 0.1
	return Tuning{
		Durations:          d,
		RefinedFuelPrice:   ledger.Credits(500),
		UnrefinedFuelPrice: ledger.Credits(100),
		BailoutAmount:      ledger.Credits(1_000_000),
		CrewProfitShare:    decimal.NewFromFloat(0.10),
		HopeIncrement:      0.25,
	}
}

// Env is everything a ship consults while it acts. One Env is shared by
// every ship in a run; the scheduler sets Now before each step.
type Env struct {
	Now      float64
	Calendar calendar.Calendar
	Routes   *routing.Selector
	Rand     entropy.Source
	Tuning   Tuning

	// Optional observers.
	OnStatus func(s *Starship, now float64, memo string)
	OnSale   func(s *Starship, sale CargoSale)
	OnArrive func(s *Starship, w *world.World)
	OnBroke  func(s *Starship)
}

func (e *Env) duration(st State) float64 {
	return e.Tuning.Durations[st]
}

func (e *Env) status(s *Starship, memo string) {
	if e.OnStatus != nil {
		e.OnStatus(s, e.Now, memo)
	}
}
