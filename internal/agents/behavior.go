package agents

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/calendar"
	"github.com/talgya/merchant-lanes/internal/economy"
	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/ledger"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Step resumes the ship at env.Now: it leaves the state whose work is
// done, performs the work of the state it enters, and returns the time
// it next wants to wake. ok is false once the ship is broke; a broke
// ship is never rescheduled.
func (s *Starship) Step(env *Env) (wake float64, ok bool) {
	if s.Broke {
		return 0, false
	}
	if s.acted {
		s.enter(env, s.next(env))
	}
	d := s.act(env)
	if s.Broke {
		return 0, false
	}
	s.acted = true
	return env.Now + d, true
}

func (s *Starship) enter(env *Env, st State) {
	if st == StateLoadingFreight && s.State != StateLoadingFreight {
		s.freightHope = 0
		s.holdFull = false
	}
	slog.Debug("state change", "ship", s.Name, "from", s.State, "to", st, "t", env.Now)
	s.State = st
}

// next returns the state that follows the current one.
func (s *Starship) next(env *Env) State {
	switch s.State {
	case StateDocked:
		return StateOffloading
	case StateOffloading:
		return StateSellingCargo
	case StateSellingCargo:
		if s.MaintenanceDue(env.Calendar.Date(env.Now)) {
			return StateMaintenance
		}
		return StateLoadingFreight
	case StateMaintenance:
		return StateLoadingFreight
	case StateLoadingFreight:
		if s.keepLoadingFreight() {
			return StateLoadingFreight
		}
		return StateLoadingCargo
	case StateLoadingCargo:
		return StateLoadingMail
	case StateLoadingMail:
		return StateLoadingPassengers
	case StateLoadingPassengers:
		return StateLoadingFuel
	case StateLoadingFuel:
		return StateDeparting
	case StateDeparting:
		return StateManeuveringToJump
	case StateManeuveringToJump:
		return StateJumping
	case StateJumping:
		return StateManeuveringToPort
	case StateManeuveringToPort:
		return StateArriving
	default:
		return StateDocked
	}
}

// act performs the current state's work and returns its duration.
func (s *Starship) act(env *Env) float64 {
	switch s.State {
	case StateDocked:
		env.status(s, "docked at "+s.Location.Name)
		return env.duration(StateDocked)
	case StateOffloading:
		return s.offload(env)
	case StateSellingCargo:
		return s.sellCargo(env)
	case StateMaintenance:
		return s.maintain(env)
	case StateLoadingFreight:
		return s.loadFreight(env)
	case StateLoadingCargo:
		return s.loadCargo(env)
	case StateLoadingMail:
		return s.loadMail(env)
	case StateLoadingPassengers:
		return s.loadPassengers(env)
	case StateLoadingFuel:
		return s.refuel(env)
	case StateDeparting:
		return s.depart(env)
	case StateManeuveringToJump:
		return s.maneuverToJump(env)
	case StateJumping:
		return s.jump(env)
	case StateManeuveringToPort:
		return s.maneuverToPort(env)
	default:
		return s.arrive(env)
	}
}

// MaintenanceDue reports whether annual maintenance should follow the
// sale at date.
func (s *Starship) MaintenanceDue(d calendar.Date) bool {
	return d.Day >= s.AnnualMaintenanceDay && d.Year != s.LastMaintenanceYear
}

func (s *Starship) keepLoadingFreight() bool {
	return !s.holdFull && !s.Captain.ReadyToDepart(s.Occupancy()) && s.freightHope < 1.0
}

// checkHold returns a CapacityExceededError if tons do not fit.
func (s *Starship) checkHold(tons int) error {
	if free := s.HoldFree(); tons > free {
		return &CapacityExceededError{Required: tons, Available: free, CapacityType: "cargo"}
	}
	return nil
}

// route runs destination selection from the current world.
func (s *Starship) route(env *Env) {
	c := env.Routes.Select(s.Class, s.Location)
	s.Destination = c.Destination
	s.RouteReason = c.Reason
	slog.Debug("route chosen", "ship", s.Name, "from", s.Location.Name, "to", c.Destination.Name, "reason", c.Reason)
}

// outbound reports whether the ship has somewhere to carry goods to.
func (s *Starship) outbound() bool {
	return s.Destination != nil && !s.Staying()
}

// ── Port ─────────────────────────────────────────────────────────────

func (s *Starship) offload(env *Env) float64 {
	var parts []string
	if n := len(s.Freight); n > 0 {
		parts = append(parts, fmt.Sprintf("%d freight lots (%dt)", n, s.FreightMass()))
		s.Freight = nil
	}
	if n := len(s.Mail); n > 0 {
		parts = append(parts, fmt.Sprintf("%d mail bundles", n))
		s.Mail = nil
	}
	if s.PassengerCount() > 0 {
		p := s.Passengers
		parts = append(parts, fmt.Sprintf("passengers %dH/%dM/%dL", p[economy.HighPassage], p[economy.MiddlePassage], p[economy.LowPassage]))
		medic := s.Crew.Best("Medic")
		lost := 0
		for i := 0; i < p[economy.LowPassage]; i++ {
			if economy.LowBerthSurvives(medic, env.Rand) {
				s.LowSurvivors++
			} else {
				s.LowDeaths++
				lost++
			}
		}
		if lost > 0 {
			parts = append(parts, fmt.Sprintf("%d low passengers failed to revive", lost))
		}
		s.Passengers = [3]int{}
	}
	memo := "nothing to offload"
	if len(parts) > 0 {
		memo = "offloaded " + strings.Join(parts, ", ")
	}
	env.status(s, memo)
	return env.duration(StateOffloading)
}

// sellCargo sells every lot that is priced at a profit here and keeps the
// rest, then picks the next destination.
func (s *Starship) sellCargo(env *Env) float64 {
	var kept []*economy.Lot
	sold := 0
	profit := decimal.Zero
	for _, lot := range s.Cargo {
		if lot.ProfitPerTon(s.Location) <= 0 {
			kept = append(kept, lot)
			continue
		}
		sale := lot.Quote(s.Location, s.Crew.Best("Liaison"), env.Rand)
		memo := fmt.Sprintf("Cargo sale: %s at %s", lot.ID, s.Location.Name)
		if err := s.account.CreditFrom(env.Now, sale.Proceeds, memo, s.Location.Name); err != nil {
			slog.Error("cargo sale not recorded", "ship", s.Name, "lot", lot.ID, "error", err)
			kept = append(kept, lot)
			continue
		}
		rec := CargoSale{Time: env.Now, Lot: lot.ID, Good: lot.Manifest(), World: s.Location.Name, Sale: sale}
		s.Sales = append(s.Sales, rec)
		if env.OnSale != nil {
			env.OnSale(s, rec)
		}
		sold++
		profit = profit.Add(sale.Profit)
	}
	s.Cargo = kept

	var memo string
	switch {
	case sold == 1 && s.Sales[len(s.Sales)-1].Good != "":
		memo = fmt.Sprintf("sold cargo lot of %s for %s profit", s.Sales[len(s.Sales)-1].Good, ledger.Cr(profit))
	case sold == 1:
		memo = fmt.Sprintf("sold cargo lot for %s profit", ledger.Cr(profit))
	case sold > 1:
		memo = fmt.Sprintf("sold %d cargo lots for %s profit", sold, ledger.Cr(profit))
	case len(kept) > 0:
		memo = fmt.Sprintf("holding %d cargo lots, no profitable sale here", len(kept))
	default:
		memo = "no cargo to sell"
	}
	env.status(s, memo)

	s.route(env)
	return env.duration(StateSellingCargo)
}

func (s *Starship) loadFreight(env *Env) float64 {
	d := env.duration(StateLoadingFreight)
	if !s.outbound() {
		s.freightHope += env.Tuning.HopeIncrement
		env.status(s, "no freight, no outbound route")
		return d
	}
	mass := economy.FreightLotMass(s.Location, s.Crew.Best("Liaison"), env.Rand)
	if mass == 0 {
		s.freightHope += env.Tuning.HopeIncrement
		env.status(s, fmt.Sprintf("no freight available (hope %.2f)", 1-s.freightHope))
		return d
	}
	if err := s.checkHold(mass); err != nil {
		var capErr *CapacityExceededError
		if errors.As(err, &capErr) {
			s.holdFull = true
			env.status(s, fmt.Sprintf("freight lot of %dt refused: %v", mass, err))
			return d
		}
	}
	lot := economy.NewFreightLot(s.Location.Name, s.Destination.Name, mass)
	memo := fmt.Sprintf("Freight: %dt %s to %s", mass, s.Location.Name, s.Destination.Name)
	if err := s.account.CreditFrom(env.Now, lot.Payment(), memo, s.Location.Name); err != nil {
		slog.Error("freight income not recorded", "ship", s.Name, "error", err)
		return d
	}
	s.Freight = append(s.Freight, lot)
	s.freightHope = 0
	env.status(s, fmt.Sprintf("loaded %dt freight for %s", mass, ledger.Cr(lot.Payment())))
	return d
}

// loadCargo buys speculative lots that would sell at a profit at the
// destination, until the hold or the account runs out.
func (s *Starship) loadCargo(env *Env) float64 {
	d := env.duration(StateLoadingCargo)
	if !s.Speculates {
		env.status(s, "not speculating in cargo")
		return d
	}
	if !s.outbound() {
		env.status(s, "no cargo bought, no outbound route")
		return d
	}
	offered := economy.AvailableCargo(s.Location, env.Rand)
	bought, skipped, tons := 0, 0, 0
	spent := decimal.Zero
	stop := ""
	for _, lot := range offered {
		if lot.ProfitPerTon(s.Destination) <= 0 {
			skipped++
			continue
		}
		if err := s.checkHold(lot.Mass); err != nil {
			stop = err.Error()
			break
		}
		memo := fmt.Sprintf("Cargo purchase: %s at %s", lot.ID, s.Location.Name)
		if err := s.account.DebitTo(env.Now, lot.Cost(), memo, s.Location.Name); err != nil {
			var short *ledger.InsufficientFundsError
			if errors.As(err, &short) {
				stop = "insufficient funds for cargo"
			} else {
				slog.Error("cargo purchase failed", "ship", s.Name, "lot", lot.ID, "error", err)
				stop = "purchase failed"
			}
			break
		}
		s.Cargo = append(s.Cargo, lot)
		bought++
		tons += lot.Mass
		spent = spent.Add(lot.Cost())
	}

	memo := fmt.Sprintf("bought %d of %d cargo lots (%dt) for %s", bought, len(offered), tons, ledger.Cr(spent))
	if skipped > 0 {
		memo += fmt.Sprintf(", skipped %d unprofitable", skipped)
	}
	if stop != "" {
		memo += ", " + stop
	}
	env.status(s, memo)
	return d
}

func (s *Starship) loadMail(env *Env) float64 {
	d := env.duration(StateLoadingMail)
	if !s.outbound() || !economy.MailAvailable(s.Location, s.Destination) {
		env.status(s, "no mail offered")
		return d
	}
	if free := s.Class.MailLocker - len(s.Mail); free < 1 {
		err := &CapacityExceededError{Required: 1, Available: max(free, 0), CapacityType: "mail locker"}
		env.status(s, "mail refused: "+err.Error())
		return d
	}
	bundle := economy.NewMailBundle(s.Location.Name, s.Destination.Name)
	pay := ledger.Credits(economy.MailPayment)
	memo := fmt.Sprintf("Mail contract: %s to %s", s.Location.Name, s.Destination.Name)
	if err := s.account.CreditFrom(env.Now, pay, memo, s.Location.Name); err != nil {
		slog.Error("mail income not recorded", "ship", s.Name, "error", err)
		return d
	}
	s.Mail = append(s.Mail, bundle)
	env.status(s, fmt.Sprintf("loaded mail bundle for %s", ledger.Cr(pay)))
	return d
}

func (s *Starship) loadPassengers(env *Env) float64 {
	d := env.duration(StateLoadingPassengers)
	if !s.outbound() {
		env.status(s, "no passengers, no outbound route")
		return d
	}
	parsecs := world.Parsecs(s.Location.Hex, s.Destination.Hex)
	skills := [3]int{s.Crew.Best("Steward"), s.Crew.Best("Admin"), s.Crew.Best("Streetwise")}

	staterooms := s.Class.Staterooms - s.Passengers[economy.HighPassage] - s.Passengers[economy.MiddlePassage]
	berths := s.Class.LowBerths - s.Passengers[economy.LowPassage]
	var boarded [3]int
	fares := decimal.Zero
	for _, class := range []economy.PassengerClass{economy.HighPassage, economy.MiddlePassage, economy.LowPassage} {
		want := economy.PassengerDemand(s.Location, class, skills[class], env.Rand)
		n := 0
		if class == economy.LowPassage {
			n = min(want, max(berths, 0))
			berths -= n
		} else {
			n = min(want, max(staterooms, 0))
			staterooms -= n
		}
		boarded[class] = n
		s.Passengers[class] += n
		fares = fares.Add(economy.Fare(class, parsecs).Mul(decimal.NewFromInt(int64(n))))
	}
	if fares.IsZero() {
		env.status(s, "no passengers boarded")
		return d
	}
	memo := fmt.Sprintf("Passenger fares: %dH/%dM/%dL to %s", boarded[0], boarded[1], boarded[2], s.Destination.Name)
	if err := s.account.CreditFrom(env.Now, fares, memo, s.Location.Name); err != nil {
		slog.Error("fares not recorded", "ship", s.Name, "error", err)
		return d
	}
	env.status(s, fmt.Sprintf("boarded %dH/%dM/%dL passengers for %s", boarded[0], boarded[1], boarded[2], ledger.Cr(fares)))
	return d
}

// fuelSource returns the price per ton and the description of the fuel the
// ship can take on here.
func (s *Starship) fuelSource(env *Env) (decimal.Decimal, string, bool) {
	switch sp := s.Location.Starport(); {
	case sp.Fuel == world.FuelRefined:
		return env.Tuning.RefinedFuelPrice, "refined", true
	case !s.Class.CanRefineFuel:
		return decimal.Zero, "", false
	case sp.Fuel == world.FuelUnrefined:
		return env.Tuning.UnrefinedFuelPrice, "unrefined", true
	default:
		return decimal.Zero, "skimmed", true
	}
}

// refuel fills both tanks. The next wake-up is delayed by the starport's
// refueling time.
func (s *Starship) refuel(env *Env) float64 {
	need := (s.Class.JumpFuelCapacity - s.JumpFuel) + (s.Class.OpsFuelCapacity - s.OpsFuel)
	if need <= 0 {
		env.status(s, "tanks full")
		return 0
	}
	price, grade, ok := s.fuelSource(env)
	if !ok {
		env.status(s, "no fuel for this ship at "+s.Location.Name)
		return 0
	}
	cost := price.Mul(decimal.NewFromInt(int64(need)))
	if cost.IsPositive() {
		memo := fmt.Sprintf("Refueling: %dt %s fuel at %s", need, grade, s.Location.Name)
		if !s.spend(env, cost, memo, "fuel") {
			return 0
		}
	}
	s.JumpFuel = s.Class.JumpFuelCapacity
	s.OpsFuel = s.Class.OpsFuelCapacity
	hours := entropy.Roll(env.Rand, s.Location.Starport().RefuelDice)
	env.status(s, fmt.Sprintf("refueled %dt %s for %s (%d hours)", need, grade, ledger.Cr(cost), hours))
	return float64(hours) / 24
}

// ── Space ────────────────────────────────────────────────────────────

func (s *Starship) depart(env *Env) float64 {
	if s.Destination == nil {
		s.route(env)
	}
	if s.Staying() {
		env.status(s, "remaining in system: "+s.RouteReason)
	} else {
		env.status(s, fmt.Sprintf("departing for %s (%s)", s.Destination.FullName(), s.RouteReason))
	}
	return env.duration(StateDeparting)
}

// burnOps spends one maneuver leg's worth of operations fuel.
func (s *Starship) burnOps() int {
	burn := min(max(s.Class.OpsFuelCapacity/10, 1), s.OpsFuel)
	s.OpsFuel -= burn
	return burn
}

// JumpFuelFor returns the jump fuel a jump of parsecs consumes.
func (s *Starship) JumpFuelFor(parsecs int) int {
	r := s.Class.JumpRating
	return (s.Class.JumpFuelCapacity*parsecs + r - 1) / r
}

func (s *Starship) maneuverToJump(env *Env) float64 {
	if s.Staying() {
		env.status(s, "holding in system")
		return env.duration(StateManeuveringToJump)
	}
	burn := s.burnOps()
	env.status(s, fmt.Sprintf("maneuvering to jump point, %dt ops fuel", burn))
	return env.duration(StateManeuveringToJump)
}

func (s *Starship) jump(env *Env) float64 {
	if s.Staying() {
		env.status(s, "holding at "+s.Location.Name+": "+s.RouteReason)
		return 0
	}
	parsecs := world.Parsecs(s.Location.Hex, s.Destination.Hex)
	burn := s.JumpFuelFor(parsecs)
	if burn > s.JumpFuel {
		err := &CapacityExceededError{Required: burn, Available: s.JumpFuel, CapacityType: "jump fuel"}
		env.status(s, "jump aborted: "+err.Error())
		s.Destination = s.Location
		return 0
	}
	s.JumpFuel -= burn
	s.InJump = true
	s.jumped = true
	env.status(s, fmt.Sprintf("jumping to %s, %d parsecs, %dt jump fuel", s.Destination.Name, parsecs, burn))
	return env.duration(StateJumping)
}

func (s *Starship) maneuverToPort(env *Env) float64 {
	if !s.InJump {
		env.status(s, "holding in system")
		return env.duration(StateManeuveringToPort)
	}
	s.InJump = false
	s.Location = s.Destination
	burn := s.burnOps()
	env.status(s, fmt.Sprintf("arrived in %s, jump fuel %d/%dt remaining, %dt ops fuel to port",
		s.Location.Name, s.JumpFuel, s.Class.JumpFuelCapacity, burn))
	return env.duration(StateManeuveringToPort)
}

func (s *Starship) arrive(env *Env) float64 {
	if s.jumped {
		s.jumped = false
		s.Voyages++
		if env.OnArrive != nil {
			env.OnArrive(s, s.Location)
		}
	}
	s.Destination = nil
	s.RouteReason = ""
	env.status(s, fmt.Sprintf("arriving at %s, voyage %s", s.Location.Name, humanize.Comma(int64(s.Voyages))))
	return env.duration(StateArriving)
}
