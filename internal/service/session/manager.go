package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prize_wheel/internal/metrics"
	"prize_wheel/internal/model"
	"prize_wheel/internal/service/game"
	"prize_wheel/pkg/tween"
)

// Config - session limits and the game every session plays
type Config struct {
	TickRateHz  int
	IdleTimeout time.Duration
	MaxSessions int
	// Virtual seconds per wall second, 1 plays in real time
	TimeScale float64
	Game      game.Settings
}

// Sink receives the outcome of every session. Its methods are called from
// session goroutines and must not block.
type Sink interface {
	SpinLanded(spin model.SpinResult)
	SessionOpened(s model.Session)
	SessionClosed(s model.Session)
}

// Manager owns the live sessions
type Manager struct {
	cfg  Config
	sink Sink
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*Session
	// Slots taken by sessions still being built
	reserved int

	build func(id string) (*Session, error)
}

// NewManager - sink may be nil
func NewManager(cfg Config, sink Sink, logger *zap.Logger) (*Manager, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("%w: tick rate %d", model.ErrInvalidConfiguration, cfg.TickRateHz)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// A game that cannot be built here would fail every Create later
	rnd := rand.New(rand.NewPCG(0, 0))
	if _, err := game.New(cfg.Game, tween.NewScheduler(), nil, rnd, nil); err != nil {
		return nil, fmt.Errorf("game settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		sink:     sink,
		log:      logger.Named("session"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	m.build = func(id string) (*Session, error) {
		return newSession(id, m.cfg, m.sink, m.log)
	}
	return m, nil
}

// Create starts a new session
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return nil, model.ErrSessionClosed
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions)+m.reserved >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, model.ErrTooManySessions
	}
	m.reserved++
	m.mu.Unlock()

	id := uuid.NewString()
	s, err := m.build(id)

	m.mu.Lock()
	m.reserved--
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("new session: %w", err)
	}
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return nil, model.ErrSessionClosed
	}
	m.sessions[id] = s
	m.wg.Add(1)
	m.mu.Unlock()

	metrics.SessionOpened()
	if m.sink != nil {
		m.sink.SessionOpened(s.Info())
	}
	go func() {
		defer m.wg.Done()
		s.run(m.ctx)
		m.remove(id)
		metrics.SessionClosed()
		if m.sink != nil {
			m.sink.SessionClosed(s.summary())
		}
	}()

	m.log.Info("session created", zap.String("session_id", id))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// Close ends the session and waits for its goroutine
func (m *Manager) Close(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}

	s.Close()
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the idle timeout
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}

	m.mu.RLock()
	var idle []*Session
	for _, s := range m.sessions {
		if s.idleSince(now) > m.cfg.IdleTimeout {
			idle = append(idle, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range idle {
		m.log.Info("closing idle session", zap.String("session_id", s.ID()))
		s.closeWith(model.CloseReasonIdle)
	}
	return len(idle)
}

// Run reaps idle sessions until ctx is done, then closes every session
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.IdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return nil
		case now := <-ticker.C:
			m.Reap(now)
		}
	}
}

// Shutdown closes every session and waits for them to exit
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.log.Debug("session removed", zap.String("session_id", id))
}
