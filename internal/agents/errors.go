package agents

import "fmt"

// CapacityExceededError is returned when something does not fit aboard.
// Loading states treat it as "nothing more fits" and move on.
type CapacityExceededError struct {
	Required     int
	Available    int
	CapacityType string // "cargo", "mail locker", "stateroom", "low berth"
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("Insufficient %s capacity: need %dt, have %dt", e.CapacityType, e.Required, e.Available)
}
