package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"

	"prize_wheel/internal/model"
	"prize_wheel/internal/repository/stats_repo"
)

type txKey struct{}

// fakeTx runs fn with a marked context and counts transactions
type fakeTx struct {
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (f *fakeTx) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return f.Do(ctx, fn)
}

type fakeSpinRepo struct {
	mu        sync.Mutex
	spins     []model.SpinResult
	hits      map[int]int64
	inTx      []bool
	createErr error
}

func newFakeSpinRepo() *fakeSpinRepo {
	return &fakeSpinRepo{hits: map[int]int64{}}
}

func (r *fakeSpinRepo) CreateSpin(ctx context.Context, spin *model.SpinResult) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.inTx = append(r.inTx, ctx.Value(txKey{}) != nil)
	r.spins = append(r.spins, *spin)
	return int64(len(r.spins)), nil
}

func (r *fakeSpinRepo) IncrementSliceHits(ctx context.Context, slice int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inTx = append(r.inTx, ctx.Value(txKey{}) != nil)
	r.hits[slice]++
	return nil
}

func (r *fakeSpinRepo) GetSpinsBySessionID(ctx context.Context, sessionID string, limit uint64) ([]model.SpinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SpinResult
	for i := len(r.spins) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		if r.spins[i].SessionID == sessionID {
			out = append(out, r.spins[i])
		}
	}
	return out, nil
}

func (r *fakeSpinRepo) GetSliceHits(ctx context.Context) (map[int]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]int64, len(r.hits))
	for k, v := range r.hits {
		out[k] = v
	}
	return out, nil
}

func (r *fakeSpinRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spins)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	creates  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]model.Session{}}
}

func (r *fakeSessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, ok := r.sessions[session.ID]; !ok {
		r.sessions[session.ID] = model.Session{ID: session.ID, CreatedAt: session.CreatedAt}
	}
	return nil
}

func (r *fakeSessionRepo) FinishSession(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	stored.ClosedAt = session.ClosedAt
	stored.CloseReason = session.CloseReason
	stored.Spins = session.Spins
	stored.FinalBalance = session.FinalBalance
	r.sessions[session.ID] = stored
	return nil
}

func (r *fakeSessionRepo) get(id string) (model.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func TestSaveRunsInOneTransaction(t *testing.T) {
	repo := newFakeSpinRepo()
	tx := &fakeTx{}
	s := NewHistoryService(repo, newFakeSessionRepo(), tx, nil)

	spin := model.SpinResult{SessionID: "a", SliceIndex: 3, Credit: 400, Bet: 500, LandedAt: time.Now()}
	if err := s.Save(context.Background(), spin); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", tx.calls)
	}
	for i, in := range repo.inTx {
		if !in {
			t.Errorf("repository call %d ran outside the transaction", i)
		}
	}
	if repo.hits[3] != 1 {
		t.Errorf("expected slice 3 to be counted, got %v", repo.hits)
	}
}

func TestSaveReturnsRepositoryError(t *testing.T) {
	repo := newFakeSpinRepo()
	repo.createErr = errors.New("db is down")
	s := NewHistoryService(repo, newFakeSessionRepo(), &fakeTx{}, nil)

	err := s.Save(context.Background(), model.SpinResult{SliceIndex: 1})
	if !errors.Is(err, repo.createErr) {
		t.Errorf("expected wrapped repository error, got %v", err)
	}
	if len(repo.hits) != 0 {
		t.Errorf("expected no counter update after a failed insert, got %v", repo.hits)
	}
}

func TestSpinsLimit(t *testing.T) {
	repo := newFakeSpinRepo()
	s := NewHistoryService(repo, newFakeSessionRepo(), &fakeTx{}, nil)
	for i := 0; i < 150; i++ {
		_ = s.Save(context.Background(), model.SpinResult{SessionID: "a", SliceIndex: i % 8})
	}

	spins, err := s.Spins(context.Background(), "a", 0)
	if err != nil {
		t.Fatalf("Spins failed: %v", err)
	}
	if len(spins) != maxSpinsLimit {
		t.Errorf("expected %d spins, got %d", maxSpinsLimit, len(spins))
	}

	spins, _ = s.Spins(context.Background(), "a", 5)
	if len(spins) != 5 || spins[0].SliceIndex != 149%8 {
		t.Errorf("expected 5 newest spins, got %+v", spins)
	}
}

func TestSliceHits(t *testing.T) {
	repo := newFakeSpinRepo()
	s := NewHistoryService(repo, newFakeSessionRepo(), &fakeTx{}, nil)
	for _, slice := range []int{1, 3, 3} {
		_ = s.Save(context.Background(), model.SpinResult{SessionID: "a", SliceIndex: slice})
	}

	hits, err := s.SliceHits(context.Background())
	if err != nil {
		t.Fatalf("SliceHits failed: %v", err)
	}
	if hits[1] != 1 || hits[3] != 2 {
		t.Errorf("expected 1 hit on slice 1 and 2 on slice 3, got %v", hits)
	}
}

func TestRecorderPersistsAndUpdatesStats(t *testing.T) {
	repo := newFakeSpinRepo()
	stats := stats_repo.NewStatsRepository([]model.Slice{{Credit: 400, Weight: 4}, {Credit: 100, Weight: 1}}, 10)
	rec := NewRecorder(NewHistoryService(repo, newFakeSessionRepo(), &fakeTx{}, nil), stats, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	rec.SpinLanded(model.SpinResult{SessionID: "a", SliceIndex: 0, Credit: 400, Bet: 500})
	rec.SpinLanded(model.SpinResult{SessionID: "a", SliceIndex: 1, Credit: 100, Bet: 500})

	if st := stats.Stats(); st.TotalSpins != 2 {
		t.Errorf("expected stats to be updated at once, got %d spins", st.TotalSpins)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}

	if repo.count() != 2 {
		t.Errorf("expected both spins to be persisted, got %d", repo.count())
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	repo := newFakeSpinRepo()
	rec := NewRecorder(NewHistoryService(repo, newFakeSessionRepo(), &fakeTx{}, nil), nil, 1, nil)

	// No worker is running, the second spin has nowhere to go
	rec.SpinLanded(model.SpinResult{SliceIndex: 0})
	rec.SpinLanded(model.SpinResult{SliceIndex: 1})

	if len(rec.queue) != 1 {
		t.Errorf("expected one queued spin, got %d", len(rec.queue))
	}
}

func TestRecorderWithoutHistory(t *testing.T) {
	stats := stats_repo.NewStatsRepository([]model.Slice{{Credit: 1, Weight: 1}}, 10)
	rec := NewRecorder(nil, stats, 0, nil)
	rec.SpinLanded(model.SpinResult{SliceIndex: 0, Credit: 1, Bet: 1})

	if st := stats.Stats(); st.TotalSpins != 1 {
		t.Errorf("expected stats to be updated, got %d spins", st.TotalSpins)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rec.Run(ctx); err != nil {
		t.Errorf("expected clean exit, got %v", err)
	}
}

func TestFinishSessionJournalsMissingOpen(t *testing.T) {
	sessions := newFakeSessionRepo()
	s := NewHistoryService(newFakeSpinRepo(), sessions, &fakeTx{}, nil)

	summary := model.Session{ID: "lost", CreatedAt: time.Now(), ClosedAt: time.Now(), CloseReason: model.CloseReasonIdle, Spins: 3, FinalBalance: 1200}
	if err := s.FinishSession(context.Background(), summary); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}

	got, ok := sessions.get("lost")
	if !ok || got.CloseReason != model.CloseReasonIdle || got.Spins != 3 || got.FinalBalance != 1200 {
		t.Errorf("unexpected journaled session %+v", got)
	}
}

func TestRecorderJournalsSessionsInOrder(t *testing.T) {
	sessions := newFakeSessionRepo()
	repo := newFakeSpinRepo()
	rec := NewRecorder(NewHistoryService(repo, sessions, &fakeTx{}, nil), nil, 8, nil)

	opened := model.Session{ID: "a", CreatedAt: time.Now()}
	rec.SessionOpened(opened)
	rec.SpinLanded(model.SpinResult{SessionID: "a", SliceIndex: 2, Credit: 1000, Bet: 500})
	closed := opened
	closed.ClosedAt = time.Now()
	closed.CloseReason = model.CloseReasonClient
	closed.Spins = 1
	closed.FinalBalance = 2500
	rec.SessionClosed(closed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rec.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	got, ok := sessions.get("a")
	if !ok || got.CloseReason != model.CloseReasonClient || got.Spins != 1 || got.FinalBalance != 2500 {
		t.Errorf("unexpected journaled session %+v", got)
	}
	if sessions.creates != 1 {
		t.Errorf("expected the session to be created once, got %d", sessions.creates)
	}
	if repo.count() != 1 {
		t.Errorf("expected the spin to be persisted, got %d", repo.count())
	}
}
