package model

import "time"

// Slice - one sector of the wheel: credit payout and selection weight
type Slice struct {
	Credit int
	Weight float64
}

// Easing - easing curve applied by the animation host to a motion segment
type Easing int

const (
	EasingLinear Easing = iota
	EasingQuadOut
)

func (e Easing) String() string {
	switch e {
	case EasingLinear:
		return "linear"
	case EasingQuadOut:
		return "quad-ease-out"
	default:
		return "unknown"
	}
}

// Segment - one piece of the wheel motion.
// DeltaAngle is measured from the re-zeroed start of the segment.
type Segment struct {
	DeltaAngle float64
	Duration   time.Duration
	Easing     Easing
}

// MotionPlan - transient rotation profile for a single spin
type MotionPlan struct {
	TargetSlice int
	// Landing angle of the target slice in wheel-local degrees
	AngleToLand float64
	// Cruise rotation in degrees, always a multiple of 360
	CruiseRotation float64
	// Rotation target of the deceleration segment in the re-zeroed frame
	LandingRotation float64
	Segments        []Segment
}

// WheelPhase - phase of the wheel runtime
type WheelPhase int

const (
	PhaseIdle WheelPhase = iota
	PhaseAccelerating
	PhaseDecelerating
	PhaseLanded
)

var wheelPhaseNames = map[WheelPhase]string{
	PhaseIdle:         "Idle",
	PhaseAccelerating: "Accelerating",
	PhaseDecelerating: "Decelerating",
	PhaseLanded:       "Landed",
}

func (p WheelPhase) String() string {
	if s, ok := wheelPhaseNames[p]; ok {
		return s
	}
	return "Unknown"
}
