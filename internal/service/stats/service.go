package stats

import (
	"context"

	"prize_wheel/internal/model"
	"prize_wheel/internal/repository"
	"prize_wheel/internal/service"
)

type serv struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) service.StatsService {
	return &serv{repo: repo}
}

func (s *serv) Stats(ctx context.Context) model.WheelStats {
	return s.repo.Stats()
}
