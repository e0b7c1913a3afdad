package repository

import (
	"context"

	"prize_wheel/internal/model"
)

type SpinRepository interface {
	CreateSpin(ctx context.Context, spin *model.SpinResult) (id int64, err error)
	IncrementSliceHits(ctx context.Context, slice int) error
	GetSpinsBySessionID(ctx context.Context, sessionID string, limit uint64) ([]model.SpinResult, error)
	GetSliceHits(ctx context.Context) (map[int]int64, error)
}

type StatsRepository interface {
	UpdateState(slice, bet, payout int)
	Stats() model.WheelStats
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	FinishSession(ctx context.Context, session *model.Session) error
}
