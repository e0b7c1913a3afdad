package service

import (
	"context"

	"prize_wheel/internal/model"
)

type GameService interface {
	CreateSession(ctx context.Context) (*model.Session, error)
	CloseSession(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (model.GameSnapshot, error)
	Play(ctx context.Context, sessionID string) error
	Spin(ctx context.Context, sessionID string) error
	Demo(ctx context.Context, sessionID string, slice int) error
	Collect(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) (<-chan model.Event, func(), error)
}

type HistoryService interface {
	Save(ctx context.Context, spin model.SpinResult) error
	Spins(ctx context.Context, sessionID string, limit uint64) ([]model.SpinResult, error)
	SliceHits(ctx context.Context) (map[int]int64, error)
	OpenSession(ctx context.Context, session model.Session) error
	FinishSession(ctx context.Context, session model.Session) error
}

type StatsService interface {
	Stats(ctx context.Context) model.WheelStats
}
