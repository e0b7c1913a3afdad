package history

import (
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"go.uber.org/zap"

	"prize_wheel/internal/repository"
	"prize_wheel/internal/service"
)

type serv struct {
	repo      repository.SpinRepository
	sessions  repository.SessionRepository
	txManager trm.Manager
	log       *zap.Logger
}

func NewHistoryService(
	repo repository.SpinRepository,
	sessions repository.SessionRepository,
	txManager trm.Manager,
	logger *zap.Logger,
) service.HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &serv{
		repo:      repo,
		sessions:  sessions,
		txManager: txManager,
		log:       logger.Named("history"),
	}
}
