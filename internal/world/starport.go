package world

// FuelGrade is the best fuel a starport sells.
type FuelGrade uint8

const (
	FuelNone      FuelGrade = iota // E, X: no fuel for sale
	FuelUnrefined                  // C, D
	FuelRefined                    // A, B
)

// String returns the grade name.
func (g FuelGrade) String() string {
	switch g {
	case FuelRefined:
		return "refined"
	case FuelUnrefined:
		return "unrefined"
	default:
		return "none"
	}
}

// Starport holds the per-class facilities a ship can use.
type Starport struct {
	Class      byte
	Fuel       FuelGrade
	RefuelDice int     // refueling time is RefuelDice D6 hours
	BrokerDM   int     // best broker's modifier on the actual value roll
	BrokerRate float64 // broker's cut of the gross sale
}

var starports = map[byte]Starport{
	'A': {Class: 'A', Fuel: FuelRefined, RefuelDice: 2, BrokerDM: 4, BrokerRate: 0.20},
	'B': {Class: 'B', Fuel: FuelRefined, RefuelDice: 2, BrokerDM: 3, BrokerRate: 0.15},
	'C': {Class: 'C', Fuel: FuelUnrefined, RefuelDice: 4, BrokerDM: 2, BrokerRate: 0.10},
	'D': {Class: 'D', Fuel: FuelUnrefined, RefuelDice: 4, BrokerDM: 1, BrokerRate: 0.05},
	'E': {Class: 'E', Fuel: FuelNone},
	'X': {Class: 'X', Fuel: FuelNone},
}

// StarportFor returns the facilities for a starport class. Unknown classes
// are treated as X.
func StarportFor(class byte) Starport {
	if sp, ok := starports[upper(class)]; ok {
		return sp
	}
	return starports['X']
}

// SellsRefinedFuel reports whether the class sells refined fuel.
func (s Starport) SellsRefinedFuel() bool {
	return s.Fuel == FuelRefined
}
