package wheel

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"prize_wheel/internal/model"
	"prize_wheel/pkg/tween"
)

const frame = 10 * time.Millisecond

func newTestRuntime(t *testing.T, idleSpeed float64) (*Runtime, *tween.Scheduler) {
	t.Helper()
	sched := tween.NewScheduler()
	r, err := NewRuntime(
		mustTable(t, defaultSlices()),
		NewSelector(rand.New(rand.NewPCG(3, 4))),
		mustPlanner(t),
		sched,
		RuntimeConfig{IdleSpeed: idleSpeed, SpinSpeed: 540},
		nil,
	)
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	return r, sched
}

func runFrames(sched *tween.Scheduler, r *Runtime, d, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		sched.Advance(step)
		r.Update()
	}
}

func TestIdleRotation(t *testing.T) {
	r, sched := newTestRuntime(t, 10)
	if r.Phase() != model.PhaseIdle {
		t.Fatalf("expected idle phase, got %v", r.Phase())
	}

	runFrames(sched, r, time.Second, frame)
	if math.Abs(r.Angle()-10) > 1e-9 {
		t.Errorf("expected angle 10 after one second, got %v", r.Angle())
	}

	// Idle loop keeps going past a full turn
	runFrames(sched, r, 40*time.Second, frame)
	if r.Angle() <= 360 {
		t.Errorf("expected idle rotation to continue past 360, got %v", r.Angle())
	}
}

func TestLandOnForcedSlice(t *testing.T) {
	r, sched := newTestRuntime(t, 10)

	var landed []int
	r.OnLanded(func(slice int) { landed = append(landed, slice) })

	if err := r.LandOnSlice(3); err != nil {
		t.Fatalf("LandOnSlice failed: %v", err)
	}
	if r.Phase() != model.PhaseAccelerating {
		t.Errorf("expected accelerating phase, got %v", r.Phase())
	}
	if target, ok := r.TargetSlice(); !ok || target != 3 {
		t.Errorf("expected target 3, got %d", target)
	}

	runFrames(sched, r, 2*time.Second, frame)
	if r.Phase() != model.PhaseDecelerating {
		t.Errorf("expected decelerating phase, got %v", r.Phase())
	}

	runFrames(sched, r, 5*time.Second, frame)
	if len(landed) != 1 || landed[0] != 3 {
		t.Fatalf("expected a single landing on slice 3, got %v", landed)
	}
	if r.Phase() != model.PhaseLanded {
		t.Errorf("expected landed phase, got %v", r.Phase())
	}
	if math.Abs(r.NormalizedAngle()-135) > 1e-6 {
		t.Errorf("expected to rest at 135 degrees, got %v", r.NormalizedAngle())
	}
	if win, ok := r.SliceWin(); !ok || win != 400 {
		t.Errorf("expected slice win 400, got %d", win)
	}
	if sched.Pending() != 0 {
		t.Errorf("expected no motion after landing, got %d pending", sched.Pending())
	}

	// Landed wheel stays put until reset
	runFrames(sched, r, 5*time.Second, frame)
	if len(landed) != 1 {
		t.Errorf("expected landed to fire once, fired %d times", len(landed))
	}
}

func TestLandOnSliceIgnoresDoubleTrigger(t *testing.T) {
	r, sched := newTestRuntime(t, 10)

	var landed []int
	r.OnLanded(func(slice int) { landed = append(landed, slice) })

	if err := r.LandOnSlice(2); err != nil {
		t.Fatalf("LandOnSlice failed: %v", err)
	}
	if err := r.LandOnSlice(5); err != nil {
		t.Fatalf("second LandOnSlice should be a no-op, got %v", err)
	}
	if sched.Pending() != 1 {
		t.Errorf("expected exactly one motion in flight, got %d", sched.Pending())
	}

	runFrames(sched, r, 2*time.Second, frame)
	if err := r.LandOnSlice(5); err != nil {
		t.Fatalf("LandOnSlice during deceleration should be a no-op, got %v", err)
	}

	runFrames(sched, r, 5*time.Second, frame)
	if len(landed) != 1 || landed[0] != 2 {
		t.Fatalf("expected a single landing on slice 2, got %v", landed)
	}
	if math.Abs(r.NormalizedAngle()) > 1e-6 && math.Abs(r.NormalizedAngle()-360) > 1e-6 {
		t.Errorf("expected to rest at 0 degrees, got %v", r.NormalizedAngle())
	}

	// Landed still counts as landing until reset
	if err := r.LandOnSlice(5); err != nil {
		t.Fatalf("LandOnSlice on a landed wheel should be a no-op, got %v", err)
	}
	if got, _ := r.LandedSlice(); got != 2 {
		t.Errorf("expected landed slice 2, got %d", got)
	}
}

func TestLandOnSliceRejectsOutOfRange(t *testing.T) {
	r, sched := newTestRuntime(t, 10)

	for _, forced := range []int{8, -2, 100} {
		err := r.LandOnSlice(forced)
		if !errors.Is(err, model.ErrInvalidSlice) {
			t.Errorf("forced %d: expected ErrInvalidSlice, got %v", forced, err)
		}
	}
	if r.Phase() != model.PhaseIdle {
		t.Errorf("expected wheel to stay idle, got %v", r.Phase())
	}
	if sched.Pending() != 1 {
		t.Errorf("expected idle rotation to keep running, got %d pending", sched.Pending())
	}
}

func TestWeightedSpinLandsOnTarget(t *testing.T) {
	r, sched := newTestRuntime(t, 10)
	runFrames(sched, r, 1234*time.Millisecond, frame)

	for spin := 0; spin < 5; spin++ {
		if err := r.LandOnSlice(NoSlice); err != nil {
			t.Fatalf("LandOnSlice failed: %v", err)
		}
		plan, ok := r.Plan()
		if !ok {
			t.Fatal("expected a plan while spinning")
		}

		runFrames(sched, r, 10*time.Second, frame)

		got, ok := r.LandedSlice()
		if !ok || got != plan.TargetSlice {
			t.Fatalf("spin %d: expected landing on %d, got %d", spin, plan.TargetSlice, got)
		}
		want := NormalizeAngle(plan.AngleToLand)
		if diff := math.Abs(r.NormalizedAngle() - want); diff > 1e-6 && math.Abs(diff-360) > 1e-6 {
			t.Errorf("spin %d: expected rest angle %v, got %v", spin, want, r.NormalizedAngle())
		}

		r.ResetWheel()
		runFrames(sched, r, 777*time.Millisecond, frame)
	}
}

func TestResetAfterLanding(t *testing.T) {
	r, sched := newTestRuntime(t, 10)
	_ = r.LandOnSlice(4)
	runFrames(sched, r, 6*time.Second, frame)

	if _, ok := r.LandedSlice(); !ok {
		t.Fatal("expected wheel to have landed")
	}

	r.ResetWheel()
	if _, ok := r.LandedSlice(); ok {
		t.Error("expected landed slice to be cleared")
	}
	if _, ok := r.SliceWin(); ok {
		t.Error("expected no slice win after reset")
	}
	if r.Phase() != model.PhaseIdle {
		t.Errorf("expected idle phase, got %v", r.Phase())
	}

	before := r.Angle()
	runFrames(sched, r, time.Second, frame)
	if math.Abs(r.Angle()-before-10) > 1e-6 {
		t.Errorf("expected idle rotation of 10 degrees, got %v", r.Angle()-before)
	}
}

func TestResetCancelsStaleCompletion(t *testing.T) {
	r, sched := newTestRuntime(t, 10)

	landed := 0
	r.OnLanded(func(int) { landed++ })

	_ = r.LandOnSlice(1)
	runFrames(sched, r, 500*time.Millisecond, frame)
	r.ResetWheel()

	runFrames(sched, r, 10*time.Second, frame)
	if landed != 0 {
		t.Errorf("expected cancelled spin never to land, landed %d times", landed)
	}
	if r.Phase() != model.PhaseIdle {
		t.Errorf("expected idle phase, got %v", r.Phase())
	}
	if sched.Pending() != 1 {
		t.Errorf("expected only the idle rotation in flight, got %d", sched.Pending())
	}

	// Reset during deceleration as well
	_ = r.LandOnSlice(1)
	runFrames(sched, r, 2*time.Second, frame)
	if r.Phase() != model.PhaseDecelerating {
		t.Fatalf("expected decelerating phase, got %v", r.Phase())
	}
	r.ResetWheel()
	runFrames(sched, r, 10*time.Second, frame)
	if landed != 0 {
		t.Errorf("expected cancelled spin never to land, landed %d times", landed)
	}
}

func TestAngleNeverDecreases(t *testing.T) {
	r, sched := newTestRuntime(t, 10)
	runFrames(sched, r, 3*time.Second, frame)

	_ = r.LandOnSlice(0)
	prev := r.Angle()
	for i := 0; i < 800; i++ {
		sched.Advance(frame)
		if r.Angle() < prev {
			t.Fatalf("angle went backwards from %v to %v", prev, r.Angle())
		}
		prev = r.Angle()
	}
	if got, _ := r.LandedSlice(); got != 0 {
		t.Errorf("expected landing on slice 0, got %d", got)
	}
}

func TestTicksPerSectorBoundary(t *testing.T) {
	tests := []struct {
		name  string
		step  time.Duration
		total time.Duration
	}{
		{"small frames", frame, 9 * time.Second},
		{"single frame", 9 * time.Second, 9 * time.Second},
	}

	for _, tt := range tests {
		r, sched := newTestRuntime(t, 10)
		ticks := 0
		r.OnTick(func() { ticks++ })

		// 0 -> 90 degrees crosses the boundaries at 22.5 and 67.5
		runFrames(sched, r, tt.total, tt.step)
		if ticks != 2 {
			t.Errorf("%s: expected 2 ticks, got %d", tt.name, ticks)
		}
	}
}

func TestTicksDuringSpin(t *testing.T) {
	for _, step := range []time.Duration{frame, 50 * time.Millisecond} {
		r, sched := newTestRuntime(t, 10)
		ticks := 0
		r.OnTick(func() { ticks++ })

		// 0 -> 1575 degrees: sector index goes from -1 to 34
		_ = r.LandOnSlice(3)
		runFrames(sched, r, 6*time.Second, step)
		if ticks != 35 {
			t.Errorf("step %v: expected 35 ticks, got %d", step, ticks)
		}
	}
}

func TestZeroIdleSpeedHoldsStill(t *testing.T) {
	r, sched := newTestRuntime(t, 0)
	runFrames(sched, r, time.Second, frame)

	if r.Angle() != 0 {
		t.Errorf("expected wheel to hold still, got %v", r.Angle())
	}
	if err := r.LandOnSlice(1); err != nil {
		t.Fatalf("LandOnSlice failed: %v", err)
	}
	runFrames(sched, r, 6*time.Second, frame)
	if got, ok := r.LandedSlice(); !ok || got != 1 {
		t.Errorf("expected landing on slice 1, got %d", got)
	}
}

func TestNewRuntimeValidation(t *testing.T) {
	table := mustTable(t, defaultSlices())
	sel := NewSelector(rand.New(rand.NewPCG(1, 1)))
	planner := mustPlanner(t)

	tests := []RuntimeConfig{
		{IdleSpeed: 10, SpinSpeed: 0},
		{IdleSpeed: -1, SpinSpeed: 540},
	}
	for _, cfg := range tests {
		_, err := NewRuntime(table, sel, planner, tween.NewScheduler(), cfg, nil)
		if !errors.Is(err, model.ErrInvalidConfiguration) {
			t.Errorf("%+v: expected ErrInvalidConfiguration, got %v", cfg, err)
		}
	}

	if _, err := NewRuntime(table, sel, planner, nil, RuntimeConfig{IdleSpeed: 10, SpinSpeed: 540}, nil); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for a missing host, got %v", err)
	}
	if _, err := NewRuntime(table, NewSelector(nil), planner, tween.NewScheduler(), RuntimeConfig{IdleSpeed: 10, SpinSpeed: 540}, nil); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for a missing random source, got %v", err)
	}
}

func TestCruiseKeepsSpinSpeedFromMidTurn(t *testing.T) {
	r, sched := newTestRuntime(t, 10)
	// 25 seconds of idle leaves the wheel at 250 degrees
	runFrames(sched, r, 25*time.Second, frame)
	start := r.Angle()

	if err := r.LandOnSlice(2); err != nil {
		t.Fatalf("LandOnSlice failed: %v", err)
	}
	plan, _ := r.Plan()
	cruise := plan.Segments[0]

	if math.Abs(cruise.DeltaAngle-(720-start)) > 1e-9 {
		t.Errorf("expected cruise distance %v, got %v", 720-start, cruise.DeltaAngle)
	}
	if !nearDuration(cruise.Duration, seconds(cruise.DeltaAngle/540)) {
		t.Errorf("expected cruise at 540 deg/s to take %v, got %v", seconds(cruise.DeltaAngle/540), cruise.Duration)
	}

	// One frame into the cruise the wheel moves at spin speed
	sched.Advance(frame)
	r.Update()
	if moved := r.Angle() - start; math.Abs(moved-5.4) > 1e-6 {
		t.Errorf("expected 5.4 degrees in one frame, got %v", moved)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{810, 90},
		{-720, 0},
		{1575, 135},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
