package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
	"prize_wheel/internal/service/game"
	"prize_wheel/pkg/tween"
)

const (
	subscriberQueue = 256
	// Ticks are only queued while a subscriber has more room than this left,
	// the rest of the queue is kept for the events that carry outcomes
	tickHeadroom = subscriberQueue / 2
	// Longest frame fed to the game after a stall
	maxFrame = 250 * time.Millisecond
)

type command struct {
	fn   func(c *game.Controller) error
	resp chan error
}

// Session - one player's game. The controller lives on the session goroutine;
// every call from outside goes through the command channel.
type Session struct {
	id        string
	createdAt time.Time
	// unix nanos of the last command
	lastActive atomic.Int64

	cmds        chan command
	stop        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	closeReason atomic.Value

	subMu   sync.Mutex
	subs    map[uint64]chan model.Event
	lastSub uint64

	// Owned by the session goroutine
	sched     *tween.Scheduler
	ctrl      *game.Controller
	interval  time.Duration
	timeScale float64
	balance   int64
	winnings  int64
	spins     int

	sink Sink
	log  *zap.Logger
}

func newSession(id string, cfg Config, sink Sink, logger *zap.Logger) (*Session, error) {
	now := time.Now()
	s := &Session{
		id:        id,
		createdAt: now,
		cmds:      make(chan command),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		subs:      make(map[uint64]chan model.Event),
		sched:     tween.NewScheduler(),
		interval:  time.Second / time.Duration(cfg.TickRateHz),
		timeScale: cfg.TimeScale,
		sink:      sink,
		log:       logger.With(zap.String("session_id", id)),
	}
	s.lastActive.Store(now.UnixNano())
	if s.timeScale <= 0 {
		s.timeScale = 1
	}

	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	ctrl, err := game.New(cfg.Game, s.sched, presenter{s: s}, rnd, s.log)
	if err != nil {
		return nil, err
	}
	ctrl.OnState(func(state string) {
		s.publish(model.Event{Type: model.EventState, State: state})
	})
	ctrl.OnSpin(s.spinLanded)

	s.ctrl = ctrl
	snap := ctrl.Snapshot()
	s.balance, s.winnings = snap.Balance, snap.Winnings

	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Info() model.Session {
	return model.Session{
		ID:         s.id,
		CreatedAt:  s.createdAt,
		LastActive: time.Unix(0, s.lastActive.Load()),
	}
}

// Done is closed once the session goroutine has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Play(ctx context.Context) error {
	return s.do(ctx, (*game.Controller).Play)
}

func (s *Session) Spin(ctx context.Context) error {
	return s.do(ctx, (*game.Controller).Spin)
}

func (s *Session) Collect(ctx context.Context) error {
	return s.do(ctx, (*game.Controller).Collect)
}

func (s *Session) Demo(ctx context.Context, slice int) error {
	return s.do(ctx, func(c *game.Controller) error {
		return c.Demo(slice)
	})
}

func (s *Session) Snapshot(ctx context.Context) (model.GameSnapshot, error) {
	var snap model.GameSnapshot
	err := s.do(ctx, func(c *game.Controller) error {
		snap = c.Snapshot()
		return nil
	})
	return snap, err
}

// Subscribe returns a stream of session events. A slow subscriber loses tick
// events first; one too far behind to take any other event is disconnected
// instead of stalling the game. The channel is closed by cancel, on
// disconnect or when the session ends.
func (s *Session) Subscribe() (<-chan model.Event, func()) {
	ch := make(chan model.Event, subscriberQueue)

	s.subMu.Lock()
	select {
	case <-s.done:
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	s.lastSub++
	id := s.lastSub
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Close stops the session goroutine. Safe to call more than once.
func (s *Session) Close() {
	s.closeWith(model.CloseReasonClient)
}

func (s *Session) closeWith(reason string) {
	s.closeOnce.Do(func() {
		s.closeReason.Store(reason)
		close(s.stop)
	})
}

// summary - only valid on the session goroutine after run returned
func (s *Session) summary() model.Session {
	info := s.Info()
	info.ClosedAt = time.Now()
	info.CloseReason = model.CloseReasonShutdown
	if reason, ok := s.closeReason.Load().(string); ok {
		info.CloseReason = reason
	}
	info.Spins = s.spins
	info.FinalBalance = s.balance
	return info
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) do(ctx context.Context, fn func(c *game.Controller) error) error {
	s.touch()

	cmd := command{fn: fn, resp: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return model.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.resp:
		return err
	case <-s.done:
		return model.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the session goroutine
func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.shutdown()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case cmd := <-s.cmds:
			err := cmd.fn(s.ctrl)
			cmd.resp <- err
			s.publishBalance()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.step(dt)
		}
	}
}

func (s *Session) step(dt time.Duration) {
	if dt > maxFrame {
		dt = maxFrame
	}
	dt = time.Duration(float64(dt) * s.timeScale)

	s.sched.Advance(dt)
	s.ctrl.Update(dt)
	s.publishBalance()
}

func (s *Session) shutdown() {
	s.ctrl.Close()

	s.subMu.Lock()
	close(s.done)
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()

	s.log.Info("session closed")
}

func (s *Session) spinLanded(res model.SpinResult) {
	res.SessionID = s.id
	res.LandedAt = time.Now()

	s.spins++
	s.publish(model.Event{Type: model.EventLanded, Slice: res.SliceIndex, Credit: res.Credit})
	if s.sink != nil {
		s.sink.SpinLanded(res)
	}
}

func (s *Session) publishBalance() {
	snap := s.ctrl.Snapshot()
	if snap.Balance == s.balance && snap.Winnings == s.winnings {
		return
	}
	s.balance, s.winnings = snap.Balance, snap.Winnings
	s.publish(model.Event{Type: model.EventBalance, Balance: snap.Balance, Winnings: snap.Winnings})
}

func (s *Session) publish(e model.Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		if e.Type == model.EventTick && cap(ch)-len(ch) <= tickHeadroom {
			continue
		}
		select {
		case ch <- e:
		default:
			delete(s.subs, id)
			close(ch)
			s.log.Warn("event subscriber is too slow, disconnected",
				zap.Uint64("subscriber", id),
				zap.String("event", string(e.Type)),
			)
		}
	}
}
