package wheel

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
	"prize_wheel/pkg/tween"
)

// Host - animation host the runtime drives its rotation through
type Host interface {
	Animate(target tween.Target, to float64, d time.Duration, ease tween.Ease, onComplete func()) tween.Handle
}

// RuntimeConfig - wheel speeds in degrees per second
type RuntimeConfig struct {
	IdleSpeed float64
	SpinSpeed float64
}

type pendingSegment int

const (
	segmentNone pendingSegment = iota
	segmentIdle
	segmentCruise
	segmentDeceleration
)

// Runtime owns the wheel angle and spin phase. Every method must be called
// from the same goroutine that advances the host.
type Runtime struct {
	table    *SliceTable
	selector *Selector
	planner  *Planner
	host     Host
	log      *zap.Logger

	idleSpeed float64
	spinSpeed float64

	angle  float64
	phase  model.WheelPhase
	plan   *model.MotionPlan
	target int
	landed int

	// Motion in flight. gen invalidates completions of cancelled motions.
	pending pendingSegment
	motion  tween.Handle
	gen     uint64

	tickIndex float64

	landedListeners []func(slice int)
	tickListeners   []func()
}

// NewRuntime validates the speeds and starts the idle rotation
func NewRuntime(table *SliceTable, selector *Selector, planner *Planner, host Host, cfg RuntimeConfig, logger *zap.Logger) (*Runtime, error) {
	if table == nil || selector == nil || planner == nil || host == nil {
		return nil, fmt.Errorf("%w: wheel runtime dependencies are missing", model.ErrInvalidConfiguration)
	}
	if selector.rnd == nil {
		return nil, fmt.Errorf("%w: selector has no random source", model.ErrInvalidConfiguration)
	}
	if cfg.SpinSpeed <= 0 || cfg.IdleSpeed < 0 {
		return nil, fmt.Errorf("%w: speeds idle=%v spin=%v", model.ErrInvalidConfiguration, cfg.IdleSpeed, cfg.SpinSpeed)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runtime{
		table:     table,
		selector:  selector,
		planner:   planner,
		host:      host,
		log:       logger.Named("wheel"),
		idleSpeed: cfg.IdleSpeed,
		spinSpeed: cfg.SpinSpeed,
		target:    NoSlice,
		landed:    NoSlice,
	}
	r.tickIndex = r.sectorIndex()
	r.startIdle()

	return r, nil
}

// OnLanded registers fn to run once per spin when the wheel stops on a slice
func (r *Runtime) OnLanded(fn func(slice int)) {
	if fn != nil {
		r.landedListeners = append(r.landedListeners, fn)
	}
}

// OnTick registers fn to run once per crossed sector boundary
func (r *Runtime) OnTick(fn func()) {
	if fn != nil {
		r.tickListeners = append(r.tickListeners, fn)
	}
}

func (r *Runtime) Table() *SliceTable           { return r.table }
func (r *Runtime) Angle() float64               { return r.angle }
func (r *Runtime) Phase() model.WheelPhase      { return r.phase }
func (r *Runtime) IsLanding() bool              { return r.phase != model.PhaseIdle }
func (r *Runtime) NormalizedAngle() float64     { return NormalizeAngle(r.angle) }
func (r *Runtime) TargetSlice() (int, bool)     { return r.target, r.target != NoSlice }
func (r *Runtime) LandedSlice() (int, bool)     { return r.landed, r.landed != NoSlice }
func (r *Runtime) Speeds() (idle, spin float64) { return r.idleSpeed, r.spinSpeed }

// Plan returns a copy of the plan of the spin in flight. Its cruise segment
// holds the distance actually travelled from the angle the spin started at.
func (r *Runtime) Plan() (model.MotionPlan, bool) {
	if r.plan == nil {
		return model.MotionPlan{}, false
	}
	plan := *r.plan
	plan.Segments = append([]model.Segment(nil), r.plan.Segments...)
	return plan, true
}

// SliceWin - credit of the slice the wheel last landed on
func (r *Runtime) SliceWin() (int, bool) {
	s, ok := r.table.Slice(r.landed)
	if !ok {
		return 0, false
	}
	return s.Credit, true
}

// LandOnSlice starts a spin. forced is a slice index or NoSlice for a
// weighted pick. Calling it while a spin is in progress does nothing.
func (r *Runtime) LandOnSlice(forced int) error {
	// Ignore double trigger
	if r.IsLanding() {
		r.log.Debug("land request ignored, wheel is already landing", zap.Stringer("phase", r.phase))
		return nil
	}

	if forced != NoSlice && (forced < 0 || forced >= r.table.Len()) {
		return fmt.Errorf("%w: %d outside [0,%d)", model.ErrInvalidSlice, forced, r.table.Len())
	}

	slice, err := r.selector.Select(r.table, forced)
	if err != nil {
		r.log.Error("logic error: couldn't find a slice to land on", zap.Error(err))
		return err
	}

	plan, err := r.planner.Plan(r.table, r.idleSpeed, r.spinSpeed, slice)
	if err != nil {
		r.log.Error("logic error: couldn't plan the spin", zap.Int("slice", slice), zap.Error(err))
		return err
	}

	r.cancelMotion()

	// Cruise always ends on a multiple of 360. The wheel is already part way
	// into its current turn, so the real distance is shorter than planned and
	// the duration follows it to keep the cruise at spin speed.
	base := math.Floor(r.angle/360) * 360
	to := base + plan.CruiseRotation
	cruise := model.Segment{
		DeltaAngle: to - r.angle,
		Duration:   seconds((to - r.angle) / r.spinSpeed),
		Easing:     model.EasingLinear,
	}
	plan.Segments[0] = cruise

	r.plan = &plan
	r.target = slice
	r.phase = model.PhaseAccelerating
	r.pending = segmentCruise
	r.animate(to, cruise.Duration, tween.Linear)

	r.log.Debug("spin started",
		zap.Int("slice", slice),
		zap.Bool("forced", forced != NoSlice),
		zap.Float64("angle_to_land", plan.AngleToLand),
		zap.Duration("cruise", cruise.Duration),
	)
	return nil
}

// ResetWheel clears the landed slice and resumes the idle rotation.
// Any motion in flight is cancelled and its completion will never fire.
func (r *Runtime) ResetWheel() {
	r.cancelMotion()
	r.plan = nil
	r.target = NoSlice
	r.landed = NoSlice
	r.startIdle()
}

// Update runs once per frame after the host has advanced. It fires one tick
// for every sector boundary crossed since the previous frame.
func (r *Runtime) Update() {
	idx := r.sectorIndex()
	crossed := int(math.Abs(idx - r.tickIndex))
	r.tickIndex = idx

	for i := 0; i < crossed; i++ {
		for _, fn := range r.tickListeners {
			fn()
		}
	}
}

// Offset by half a slice so ticks line up with the slice lines
func (r *Runtime) sectorIndex() float64 {
	sector := r.table.SectorWidth()
	return math.Floor((r.angle - sector/2) / sector)
}

func (r *Runtime) startIdle() {
	r.phase = model.PhaseIdle
	r.continueIdle()
}

func (r *Runtime) continueIdle() {
	if r.idleSpeed <= 0 {
		r.pending = segmentNone
		return
	}
	r.pending = segmentIdle
	r.animate(r.angle+360, seconds(360/r.idleSpeed), tween.Linear)
}

func (r *Runtime) animate(to float64, d time.Duration, ease tween.Ease) {
	gen := r.gen
	r.motion = r.host.Animate(angleProp{r: r}, to, d, ease, func() {
		r.onSegmentComplete(gen)
	})
}

func (r *Runtime) cancelMotion() {
	r.gen++
	if r.motion != nil {
		r.motion.Stop()
		r.motion = nil
	}
	r.pending = segmentNone
}

func (r *Runtime) onSegmentComplete(gen uint64) {
	// Stale completion from a cancelled motion
	if gen != r.gen {
		return
	}
	r.motion = nil
	r.gen++

	switch r.pending {
	case segmentIdle:
		r.continueIdle()
	case segmentCruise:
		r.beginDeceleration()
	case segmentDeceleration:
		r.land()
	default:
		r.pending = segmentNone
	}
}

func (r *Runtime) beginDeceleration() {
	plan := r.plan
	seg, err := r.planner.Decelerate(*plan, r.spinSpeed, NormalizeAngle(r.angle))
	if err != nil {
		r.log.Error("logic error: couldn't solve deceleration, using planned segment", zap.Error(err))
		seg = plan.Segments[1]
	}
	plan.Segments[1] = seg

	r.phase = model.PhaseDecelerating
	r.pending = segmentDeceleration
	r.animate(r.angle+seg.DeltaAngle, seg.Duration, tween.QuadOut)

	r.log.Debug("wheel decelerating",
		zap.Float64("distance", seg.DeltaAngle),
		zap.Duration("duration", seg.Duration),
	)
}

func (r *Runtime) land() {
	r.pending = segmentNone
	r.phase = model.PhaseLanded
	r.landed = r.target
	r.plan = nil

	r.log.Debug("wheel landed", zap.Int("slice", r.landed), zap.Float64("angle", r.angle))

	for _, fn := range r.landedListeners {
		fn(r.landed)
	}
}

// NormalizeAngle folds any angle into [0, 360)
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a = 360 - math.Abs(a)
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// angleProp exposes the wheel angle to the host without making it public
type angleProp struct {
	r *Runtime
}

func (p angleProp) Get() float64  { return p.r.angle }
func (p angleProp) Set(v float64) { p.r.angle = v }
