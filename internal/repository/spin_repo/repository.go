package spin_repo

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"prize_wheel/internal/model"
	"prize_wheel/internal/repository"
)

const (
	spinsTable    = "wheel_spins"
	colID         = "id"
	colSessionID  = "session_id"
	colSliceIndex = "slice_index"
	colCredit     = "credit"
	colBet        = "bet"
	colDemo       = "demo"
	colLandedAt   = "landed_at"

	hitsTable = "wheel_slice_hits"
	colHits   = "hits"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewSpinRepository(dbc *pgxpool.Pool) repository.SpinRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// CreateSpin - stores a landed spin, returns its ID.
// Runs inside the transaction carried by ctx, if any.
func (r *repo) CreateSpin(ctx context.Context, spin *model.SpinResult) (int64, error) {
	query := sq.Insert(spinsTable).
		Columns(colSessionID, colSliceIndex, colCredit, colBet, colDemo, colLandedAt).
		Values(spin.SessionID, spin.SliceIndex, spin.Credit, spin.Bet, spin.Demo, spin.LandedAt).
		Suffix("RETURNING " + colID).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// IncrementSliceHits - bumps the landing counter of a slice
func (r *repo) IncrementSliceHits(ctx context.Context, slice int) error {
	query := sq.Insert(hitsTable).
		Columns(colSliceIndex, colHits).
		Values(slice, 1).
		Suffix("ON CONFLICT (" + colSliceIndex + ") DO UPDATE SET " + colHits + " = " + hitsTable + "." + colHits + " + 1").
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

// GetSpinsBySessionID - latest spins of a session, newest first
func (r *repo) GetSpinsBySessionID(ctx context.Context, sessionID string, limit uint64) ([]model.SpinResult, error) {
	query := sq.Select(colSessionID, colSliceIndex, colCredit, colBet, colDemo, colLandedAt).
		From(spinsTable).
		Where(sq.Eq{colSessionID: sessionID}).
		OrderBy(colLandedAt + " DESC").
		Limit(limit).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spins []model.SpinResult
	for rows.Next() {
		var s model.SpinResult
		if err := rows.Scan(&s.SessionID, &s.SliceIndex, &s.Credit, &s.Bet, &s.Demo, &s.LandedAt); err != nil {
			return nil, err
		}
		spins = append(spins, s)
	}

	return spins, rows.Err()
}

// GetSliceHits - landing counters of every slice that was hit at least once
func (r *repo) GetSliceHits(ctx context.Context) (map[int]int64, error) {
	query := sq.Select(colSliceIndex, colHits).
		From(hitsTable).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.getter.DefaultTrOrDB(ctx, r.dbc).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := make(map[int]int64)
	for rows.Next() {
		var slice int
		var n int64
		if err := rows.Scan(&slice, &n); err != nil {
			return nil, err
		}
		hits[slice] = n
	}

	return hits, rows.Err()
}
