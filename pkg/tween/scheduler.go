package tween

import "time"

// Target - animated property
type Target interface {
	Get() float64
	Set(v float64)
}

// Var - plain float property usable as a Target
type Var struct {
	v float64
}

func NewVar(v float64) *Var {
	return &Var{v: v}
}

func (p *Var) Get() float64 {
	return p.v
}

func (p *Var) Set(v float64) {
	p.v = v
}

// Handle - reference to a running tween or timer
type Handle interface {
	// Stop cancels the tween/timer. Its completion callback will never run.
	Stop()
	Done() bool
}

type tweenJob struct {
	target     Target
	from, to   float64
	duration   time.Duration
	elapsed    time.Duration
	ease       Ease
	onComplete func()
	done       bool
	stopped    bool
}

func (t *tweenJob) Stop()      { t.stopped = true }
func (t *tweenJob) Done() bool { return t.done || t.stopped }

type timerJob struct {
	remaining time.Duration
	fn        func()
	done      bool
	stopped   bool
}

func (t *timerJob) Stop()      { t.stopped = true }
func (t *timerJob) Done() bool { return t.done || t.stopped }

// Scheduler - headless animation host. Tweens and one-shot timers advance only
// when Advance is called, so all callbacks run on the caller's goroutine.
// Not safe for concurrent use.
type Scheduler struct {
	now    time.Duration
	tweens []*tweenJob
	timers []*timerJob
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Animate - tween target from its current value to `to` over d.
// onComplete runs exactly once unless the tween is stopped first.
// Tweens created during Advance start on the next Advance.
func (s *Scheduler) Animate(target Target, to float64, d time.Duration, ease Ease, onComplete func()) Handle {
	if ease == nil {
		ease = Linear
	}
	t := &tweenJob{
		target:     target,
		from:       target.Get(),
		to:         to,
		duration:   d,
		ease:       ease,
		onComplete: onComplete,
	}
	s.tweens = append(s.tweens, t)
	return t
}

// After - run fn once after delay
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	t := &timerJob{remaining: delay, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now - virtual time elapsed since the scheduler was created
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending - number of live tweens and timers
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tweens {
		if !t.stopped {
			n++
		}
	}
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by dt, updating tweens first and timers
// second. Completion callbacks run after all values for this step are set.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	s.now += dt

	finished := s.stepTweens(dt)
	for _, t := range finished {
		if t.stopped {
			continue
		}
		t.done = true
		if t.onComplete != nil {
			t.onComplete()
		}
	}

	fired := s.stepTimers(dt)
	for _, t := range fired {
		if t.stopped {
			continue
		}
		t.done = true
		if t.fn != nil {
			t.fn()
		}
	}
}

func (s *Scheduler) stepTweens(dt time.Duration) []*tweenJob {
	active := s.tweens
	s.tweens = nil

	var finished []*tweenJob
	for _, t := range active {
		if t.stopped {
			continue
		}
		t.elapsed += dt

		progress := 1.0
		if t.duration > 0 && t.elapsed < t.duration {
			progress = float64(t.elapsed) / float64(t.duration)
		}

		if progress >= 1 {
			t.target.Set(t.to)
			finished = append(finished, t)
			continue
		}
		t.target.Set(t.from + (t.to-t.from)*t.ease(progress))
		s.tweens = append(s.tweens, t)
	}
	return finished
}

func (s *Scheduler) stepTimers(dt time.Duration) []*timerJob {
	active := s.timers
	s.timers = nil

	var fired []*timerJob
	for _, t := range active {
		if t.stopped {
			continue
		}
		t.remaining -= dt
		if t.remaining <= 0 {
			fired = append(fired, t)
			continue
		}
		s.timers = append(s.timers, t)
	}
	return fired
}
