// Package ships provides ship class reference data: the class catalog,
// its validation, and crew positions with their salaries.
package ships

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Role groups ship classes for population weighting and patronage.
type Role string

const (
	RoleCivilian    Role = "civilian"
	RoleMilitary    Role = "military"
	RoleSpecialized Role = "specialized"
)

// AllRoles lists the known roles in report order.
var AllRoles = []Role{RoleCivilian, RoleMilitary, RoleSpecialized}

// Patronized reports whether ships of this role are bailed out by a patron
// instead of going broke.
func (r Role) Patronized() bool {
	return r == RoleMilitary || r == RoleSpecialized
}

// Class is one ship design.
type Class struct {
	Name             string   `yaml:"class_name" json:"class_name"`
	Role             Role     `yaml:"role" json:"role"`
	Frequency        float64  `yaml:"frequency" json:"frequency"`
	CostMCr          float64  `yaml:"ship_cost" json:"ship_cost"`
	JumpRating       int      `yaml:"jump_rating" json:"jump_rating"`
	ManeuverRating   int      `yaml:"maneuver_rating" json:"maneuver_rating"`
	PowerplantRating int      `yaml:"powerplant_rating" json:"powerplant_rating"`
	CargoCapacity    int      `yaml:"cargo_capacity" json:"cargo_capacity"`
	Staterooms       int      `yaml:"staterooms" json:"staterooms"`
	LowBerths        int      `yaml:"low_berths" json:"low_berths"`
	MailLocker       int      `yaml:"mail_locker" json:"mail_locker"`
	JumpFuelCapacity int      `yaml:"jump_fuel_capacity" json:"jump_fuel_capacity"`
	OpsFuelCapacity  int      `yaml:"ops_fuel_capacity" json:"ops_fuel_capacity"`
	CanRefineFuel    bool     `yaml:"can_refine_fuel" json:"can_refine_fuel"`
	CrewPositions    []string `yaml:"crew_positions" json:"crew_positions"`
}

// Cost returns the purchase price in credits.
func (c *Class) Cost() decimal.Decimal {
	return decimal.NewFromFloat(c.CostMCr).Mul(decimal.NewFromInt(1_000_000)).Round(0)
}

// MaintenanceCost returns the annual maintenance charge: one thousandth of
// the ship's cost.
func (c *Class) MaintenanceCost() decimal.Decimal {
	return c.Cost().Div(decimal.NewFromInt(1000)).Round(0)
}

// Validate checks the fields the simulation depends on.
func (c *Class) Validate() error {
	switch {
	case c.Name == "":
		return &ConfigurationError{Msg: "ship class without a name"}
	case c.JumpRating < 1:
		return &ConfigurationError{Msg: fmt.Sprintf("ship class %q: jump rating must be at least 1", c.Name)}
	case c.CargoCapacity < 0 || c.JumpFuelCapacity < 0 || c.OpsFuelCapacity < 0:
		return &ConfigurationError{Msg: fmt.Sprintf("ship class %q: negative capacity", c.Name)}
	}
	for _, code := range c.CrewPositions {
		if _, ok := PositionFor(code); !ok {
			return &ConfigurationError{Msg: fmt.Sprintf("ship class %q: unknown crew position %q", c.Name, code)}
		}
	}
	return nil
}

func (c *Class) String() string {
	return fmt.Sprintf("%s (%s, J-%d, %dt)", c.Name, c.Role, c.JumpRating, c.CargoCapacity)
}
