package session

import (
	"context"

	"prize_wheel/internal/model"
)

// Manager methods addressing a session by ID

func (m *Manager) CreateSession(ctx context.Context) (*model.Session, error) {
	s, err := m.Create()
	if err != nil {
		return nil, err
	}
	info := s.Info()
	return &info, nil
}

func (m *Manager) CloseSession(ctx context.Context, sessionID string) error {
	return m.Close(ctx, sessionID)
}

func (m *Manager) State(ctx context.Context, sessionID string) (model.GameSnapshot, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return model.GameSnapshot{}, err
	}
	return s.Snapshot(ctx)
}

func (m *Manager) Play(ctx context.Context, sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.Play(ctx)
}

func (m *Manager) Spin(ctx context.Context, sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.Spin(ctx)
}

func (m *Manager) Demo(ctx context.Context, sessionID string, slice int) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.Demo(ctx, slice)
}

func (m *Manager) Collect(ctx context.Context, sessionID string) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	return s.Collect(ctx)
}

func (m *Manager) Subscribe(ctx context.Context, sessionID string) (<-chan model.Event, func(), error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.Subscribe()
	return ch, cancel, nil
}
