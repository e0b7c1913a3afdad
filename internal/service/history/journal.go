package history

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
)

// OpenSession journals a new session
func (s *serv) OpenSession(ctx context.Context, session model.Session) error {
	if err := s.sessions.CreateSession(ctx, &session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinishSession stores the session summary. A session whose opening was
// lost (full queue, database outage) is journaled on the spot.
func (s *serv) FinishSession(ctx context.Context, session model.Session) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		err := s.sessions.FinishSession(txCtx, &session)
		if !errors.Is(err, model.ErrSessionNotFound) {
			return err
		}

		s.log.Debug("closing a session that was never journaled", zap.String("session_id", session.ID))
		if err := s.sessions.CreateSession(txCtx, &session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return s.sessions.FinishSession(txCtx, &session)
	})
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}
