package wheel

import (
	"fmt"
	"math"
	"time"

	"prize_wheel/internal/model"
)

const (
	defaultTotalRotations = 5
	defaultSlowRotations  = 3
	// Alternating half-sector correction of the label layout
	defaultLandingOffset = 90
)

// PlannerConfig - rotation profile parameters
type PlannerConfig struct {
	// Total amount of turns the wheel makes during a spin
	TotalRotations int
	// Turns spent slowing down
	SlowRotations int
	// Landing correction applied to even slice indexes
	LandingOffset float64
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		TotalRotations: defaultTotalRotations,
		SlowRotations:  defaultSlowRotations,
		LandingOffset:  defaultLandingOffset,
	}
}

// Planner computes spin motion plans. Stateless and deterministic.
type Planner struct {
	cfg PlannerConfig
}

func NewPlanner(cfg PlannerConfig) (*Planner, error) {
	if cfg.SlowRotations < 0 || cfg.TotalRotations <= cfg.SlowRotations {
		return nil, fmt.Errorf("%w: rotations total=%d slow=%d", model.ErrInvalidConfiguration, cfg.TotalRotations, cfg.SlowRotations)
	}
	if math.IsNaN(cfg.LandingOffset) || math.IsInf(cfg.LandingOffset, 0) {
		return nil, fmt.Errorf("%w: landing offset %v", model.ErrInvalidConfiguration, cfg.LandingOffset)
	}
	return &Planner{cfg: cfg}, nil
}

func (p *Planner) Config() PlannerConfig {
	return p.cfg
}

// AngleToLand - landing angle of slice i on a wheel of n slices:
// i*(360/n) - ((i+1) mod 2)*offset
func (p *Planner) AngleToLand(n, i int) float64 {
	sector := 360 / float64(n)
	return float64(i)*sector - float64((i+1)%2)*p.cfg.LandingOffset
}

// Plan builds the cruise and deceleration segments for a spin that ends on
// target. The deceleration segment assumes the wheel is re-zeroed after the
// cruise; the runtime recomputes it with Decelerate once the cruise ends.
func (p *Planner) Plan(table *SliceTable, idleSpeed, spinSpeed float64, target int) (model.MotionPlan, error) {
	if table == nil || table.Len() == 0 {
		return model.MotionPlan{}, fmt.Errorf("%w: slice table is empty", model.ErrInvalidConfiguration)
	}
	if target < 0 || target >= table.Len() {
		return model.MotionPlan{}, fmt.Errorf("%w: target %d outside [0,%d)", model.ErrInvalidSlice, target, table.Len())
	}
	if spinSpeed <= 0 || idleSpeed < 0 {
		return model.MotionPlan{}, fmt.Errorf("%w: speeds idle=%v spin=%v", model.ErrInvalidConfiguration, idleSpeed, spinSpeed)
	}

	cruise := float64(p.cfg.TotalRotations-p.cfg.SlowRotations) * 360
	angle := p.AngleToLand(table.Len(), target)

	plan := model.MotionPlan{
		TargetSlice:     target,
		AngleToLand:     angle,
		CruiseRotation:  cruise,
		LandingRotation: cruise + angle,
	}

	decel, err := p.Decelerate(plan, spinSpeed, 0)
	if err != nil {
		return model.MotionPlan{}, err
	}

	plan.Segments = []model.Segment{
		{
			DeltaAngle: cruise,
			Duration:   seconds(cruise / spinSpeed),
			Easing:     model.EasingLinear,
		},
		decel,
	}
	return plan, nil
}

// Decelerate solves the landing segment from where the wheel actually rests
// after the cruise (restAngle, wheel-local degrees). Uniform deceleration to
// zero speed: distance = (v0 + 0)/2 * t, so t = 2*distance/v0.
func (p *Planner) Decelerate(plan model.MotionPlan, spinSpeed, restAngle float64) (model.Segment, error) {
	if spinSpeed <= 0 {
		return model.Segment{}, fmt.Errorf("%w: spin speed %v", model.ErrInvalidConfiguration, spinSpeed)
	}

	distance := plan.CruiseRotation + plan.AngleToLand - restAngle
	if distance <= 0 {
		return model.Segment{}, fmt.Errorf("%w: landing distance %v is not positive", model.ErrInvalidConfiguration, distance)
	}

	return model.Segment{
		DeltaAngle: distance,
		Duration:   seconds(2 * distance / spinSpeed),
		Easing:     model.EasingQuadOut,
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
