package economy

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/merchant-lanes/internal/entropy"
	"github.com/talgya/merchant-lanes/internal/world"
)

// Contract rates.
const (
	FreightRatePerTon = 1000  // Cr per ton, paid on loading
	MailPayment       = 25000 // Cr per bundle, paid on loading
	LowBerthRevival   = 5     // 2D6 + Medic needed to wake a low passenger
)

// freightMultiplierCodes double the freight a world ships.
var freightMultiplierCodes = []string{
	"Ag", "As", "Ba", "De", "Fl", "Hi", "Ic", "In", "Lo", "Na", "Ni", "Po", "Ri", "Va",
}

// FreightLot is a consignment shipped at the freight rate.
type FreightLot struct {
	Serial      uuid.UUID `json:"serial"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Mass        int       `json:"mass"`
}

// Payment returns the freight income for the lot.
func (f *FreightLot) Payment() decimal.Decimal {
	return decimal.NewFromInt(int64(f.Mass) * FreightRatePerTon)
}

// FreightLotMass rolls the size of the next freight lot on offer:
// (Flux + Pop) × (1 + multiplier code) + Liaison, never below zero.
func FreightLotMass(w *world.World, liaison int, src entropy.Source) int {
	mult := 1
	for _, c := range freightMultiplierCodes {
		if w.HasCode(c) {
			mult = 2
			break
		}
	}
	return max((entropy.Flux(src)+w.Population())*mult+liaison, 0)
}

// NewFreightLot creates a freight consignment.
func NewFreightLot(origin, destination string, mass int) *FreightLot {
	return &FreightLot{Serial: uuid.New(), Origin: origin, Destination: destination, Mass: mass}
}

// PassengerClass is a berth class.
type PassengerClass uint8

const (
	HighPassage PassengerClass = iota
	MiddlePassage
	LowPassage
)

// String returns the single-letter class code used in status lines.
func (c PassengerClass) String() string {
	switch c {
	case HighPassage:
		return "H"
	case MiddlePassage:
		return "M"
	default:
		return "L"
	}
}

var fares = [...]int64{10000, 8000, 1000}

// Fare returns the fare per passenger for a jump of the given length.
func Fare(class PassengerClass, parsecs int) decimal.Decimal {
	return decimal.NewFromInt(fares[class] * int64(max(parsecs, 1)))
}

// PassengerDemand rolls how many passengers of a class want passage.
// skill is the crew's Steward (high), Admin (middle) or Streetwise (low) level.
func PassengerDemand(w *world.World, class PassengerClass, skill int, src entropy.Source) int {
	pop := w.Population()
	var n int
	switch class {
	case HighPassage:
		n = entropy.Flux(src) + pop/2 + skill - 2
	case MiddlePassage:
		n = entropy.Flux(src) + pop/2 + skill
	default:
		n = entropy.Flux(src) + pop + skill - 2
	}
	return max(n, 0)
}

// LowBerthSurvives rolls revival for one low passenger.
func LowBerthSurvives(medic int, src entropy.Source) bool {
	return entropy.Roll(src, 2)+medic >= LowBerthRevival
}

// MailBundle is a sealed mail contract.
type MailBundle struct {
	Serial      uuid.UUID `json:"serial"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
}

// MailAvailable reports whether origin dispatches mail to destination.
func MailAvailable(origin, destination *world.World) bool {
	switch origin.UWP.Starport {
	case 'A', 'B', 'C':
	default:
		return false
	}
	return origin.Importance >= destination.Importance
}

// NewMailBundle creates a mail contract.
func NewMailBundle(origin, destination string) *MailBundle {
	return &MailBundle{Serial: uuid.New(), Origin: origin, Destination: destination}
}
