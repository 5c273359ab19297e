package agents

import (
	"math"

	"github.com/talgya/merchant-lanes/internal/entropy"
)

// Departure threshold bounds.
const (
	MinDepartureThreshold      = 0.60
	MaxDepartureThreshold      = 0.98
	StandardDepartureThreshold = 0.80
)

// RiskProfile classifies a captain by how full a hold they wait for.
type RiskProfile uint8

const (
	RiskStandard   RiskProfile = iota // the fleet default
	RiskModerate                      // slightly either side of standard
	RiskCautious                      // waits for a nearly full hold
	RiskAggressive                    // leaves early
)

func (r RiskProfile) String() string {
	switch r {
	case RiskModerate:
		return "MODERATE"
	case RiskCautious:
		return "CAUTIOUS"
	case RiskAggressive:
		return "AGGRESSIVE"
	default:
		return "STANDARD"
	}
}

// CaptainProfile is a ship's fixed command personality.
type CaptainProfile struct {
	DepartureThreshold float64     `json:"cargo_departure_threshold"`
	Risk               RiskProfile `json:"risk"`
}

// NewCaptainProfile draws a captain:
// 60% standard (0.80), 30% moderate U[0.70,0.90], 8% cautious U[0.91,0.95],
// 2% aggressive U[0.65,0.69].
func NewCaptainProfile(src entropy.Source) CaptainProfile {
	var p CaptainProfile
	switch r := src.Float64(); {
	case r < 0.60:
		p = CaptainProfile{DepartureThreshold: StandardDepartureThreshold, Risk: RiskStandard}
	case r < 0.90:
		p = CaptainProfile{DepartureThreshold: entropy.Uniform(src, 0.70, 0.90), Risk: RiskModerate}
	case r < 0.98:
		p = CaptainProfile{DepartureThreshold: entropy.Uniform(src, 0.91, 0.95), Risk: RiskCautious}
	default:
		p = CaptainProfile{DepartureThreshold: entropy.Uniform(src, 0.65, 0.69), Risk: RiskAggressive}
	}
	p.DepartureThreshold = math.Max(MinDepartureThreshold, math.Min(MaxDepartureThreshold, p.DepartureThreshold))
	return p
}

// ClassifyThreshold returns the risk profile a threshold falls in.
func ClassifyThreshold(t float64) RiskProfile {
	switch {
	case math.Abs(t-StandardDepartureThreshold) < 1e-9:
		return RiskStandard
	case t > 0.90:
		return RiskCautious
	case t < 0.70:
		return RiskAggressive
	default:
		return RiskModerate
	}
}

// ReadyToDepart reports whether a hold at occupancy satisfies the captain.
func (p CaptainProfile) ReadyToDepart(occupancy float64) bool {
	return occupancy >= p.DepartureThreshold
}
