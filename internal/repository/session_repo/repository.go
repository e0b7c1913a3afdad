package session_repo

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"prize_wheel/internal/model"
	"prize_wheel/internal/repository"
)

const (
	table           = "wheel_sessions"
	colSessionID    = "session_id"
	colCreatedAt    = "created_at"
	colClosedAt     = "closed_at"
	colCloseReason  = "close_reason"
	colSpins        = "spins"
	colFinalBalance = "final_balance"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewSessionRepository(dbc *pgxpool.Pool) repository.SessionRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// CreateSession - journals an opened session
func (r *repo) CreateSession(ctx context.Context, session *model.Session) error {
	query := sq.Insert(table).
		Columns(colSessionID, colCreatedAt).
		Values(session.ID, session.CreatedAt).
		Suffix("ON CONFLICT (" + colSessionID + ") DO NOTHING").
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// FinishSession - stores how a session ended.
// Returns model.ErrSessionNotFound if it was never journaled.
func (r *repo) FinishSession(ctx context.Context, session *model.Session) error {
	query := sq.Update(table).
		Set(colClosedAt, session.ClosedAt).
		Set(colCloseReason, session.CloseReason).
		Set(colSpins, session.Spins).
		Set(colFinalBalance, session.FinalBalance).
		Where(sq.Eq{colSessionID: session.ID}).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}
