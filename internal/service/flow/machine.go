package flow

import (
	"fmt"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
)

// ListenerID - handle returned by AddListener, used to remove the listener
type ListenerID uint64

// Listener receives the name of the state the machine moved to
type Listener func(state string)

type listener struct {
	id      ListenerID
	fn      Listener
	removed bool
}

// Machine - ring of named states linked by NextState names.
// Not safe for concurrent use: it belongs to the goroutine driving the game.
type Machine struct {
	states  []model.FlowState
	byName  map[string]int
	first   int
	current int

	listeners []*listener
	lastID    ListenerID

	// Transitions requested from inside a listener run after the current pass
	notifying bool
	queued    int

	log *zap.Logger
}

// NewMachine validates the states and positions the machine at first
func NewMachine(states []model.FlowState, first string, logger *zap.Logger) (*Machine, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no flow states", model.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byName := make(map[string]int, len(states))
	for i, s := range states {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: flow state %d has no name", model.ErrInvalidConfiguration, i)
		}
		if _, ok := byName[s.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate flow state %q", model.ErrInvalidConfiguration, s.Name)
		}
		byName[s.Name] = i
	}

	idx, ok := byName[first]
	if !ok {
		return nil, fmt.Errorf("%w: first state %q is unknown", model.ErrInvalidConfiguration, first)
	}

	return &Machine{
		states:  append([]model.FlowState(nil), states...),
		byName:  byName,
		first:   idx,
		current: idx,
		log:     logger.Named("flow"),
	}, nil
}

func (m *Machine) CurrentState() string {
	return m.states[m.current].Name
}

// States returns a copy of the configured states
func (m *Machine) States() []model.FlowState {
	return append([]model.FlowState(nil), m.states...)
}

// NextState moves to the successor of the current state and notifies the
// listeners. An unresolvable successor is logged and leaves the machine where
// it is. Called from a listener, the transition is deferred until every
// listener has seen the current one.
func (m *Machine) NextState() {
	if m.notifying {
		m.queued++
		return
	}

	m.step()
	for m.queued > 0 {
		m.queued--
		m.step()
	}
}

// Reset jumps back to the first state without notifying listeners
func (m *Machine) Reset() {
	m.current = m.first
	m.queued = 0
}

func (m *Machine) AddListener(fn Listener) ListenerID {
	m.lastID++
	m.listeners = append(m.listeners, &listener{id: m.lastID, fn: fn})
	return m.lastID
}

// RemoveListener is safe to call from inside a listener. A removed listener
// is not called again, including later in a pass already in progress.
func (m *Machine) RemoveListener(id ListenerID) bool {
	for i, l := range m.listeners {
		if l.id != id {
			continue
		}
		l.removed = true
		m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
		return true
	}
	return false
}

func (m *Machine) step() {
	from := m.states[m.current]
	next, ok := m.byName[from.NextState]
	if !ok {
		m.log.Error("couldn't resolve next state",
			zap.String("state", from.Name),
			zap.String("next_state", from.NextState),
			zap.Error(model.ErrTransitionResolution),
		)
		return
	}

	m.current = next
	name := m.states[next].Name
	m.log.Debug("state changed", zap.String("from", from.Name), zap.String("to", name))

	m.notify(name)
}

func (m *Machine) notify(state string) {
	snapshot := m.listeners

	m.notifying = true
	defer func() { m.notifying = false }()

	for _, l := range snapshot {
		if l.removed || l.fn == nil {
			continue
		}
		l.fn(state)
	}
}
