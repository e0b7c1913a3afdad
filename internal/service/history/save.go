package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
)

const maxSpinsLimit = 100

// Save stores the spin and bumps its slice counter in one transaction
func (s *serv) Save(ctx context.Context, spin model.SpinResult) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		id, err := s.repo.CreateSpin(txCtx, &spin)
		if err != nil {
			return fmt.Errorf("create spin: %w", err)
		}

		if err := s.repo.IncrementSliceHits(txCtx, spin.SliceIndex); err != nil {
			return fmt.Errorf("increment slice hits: %w", err)
		}

		s.log.Debug("spin saved", zap.Int64("id", id), zap.String("session_id", spin.SessionID))
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// Spins - latest spins of a session
func (s *serv) Spins(ctx context.Context, sessionID string, limit uint64) ([]model.SpinResult, error) {
	if limit == 0 || limit > maxSpinsLimit {
		limit = maxSpinsLimit
	}
	return s.repo.GetSpinsBySessionID(ctx, sessionID, limit)
}

// SliceHits - persisted landing count of every slice
func (s *serv) SliceHits(ctx context.Context) (map[int]int64, error) {
	hits, err := s.repo.GetSliceHits(ctx)
	if err != nil {
		return nil, fmt.Errorf("get slice hits: %w", err)
	}
	return hits, nil
}
