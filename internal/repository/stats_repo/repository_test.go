package stats_repo

import (
	"sync"
	"testing"

	"prize_wheel/internal/model"
)

func TestUpdateState(t *testing.T) {
	r := NewStatsRepository([]model.Slice{{Credit: 400, Weight: 4}, {Credit: 100, Weight: 1}}, 2)

	r.UpdateState(0, 500, 400)
	r.UpdateState(1, 500, 100)
	r.UpdateState(0, 500, 400)

	st := r.Stats()
	if st.TotalSpins != 3 {
		t.Errorf("expected 3 spins, got %d", st.TotalSpins)
	}
	if st.TotalBet.IntPart() != 1500 || st.TotalPayout.IntPart() != 900 {
		t.Errorf("expected bet 1500 payout 900, got %s %s", st.TotalBet, st.TotalPayout)
	}
	if got := st.RTP.String(); got != "60" {
		t.Errorf("expected RTP 60, got %s", got)
	}
	// Window holds the last two spins
	if got := st.WindowRTP.String(); got != "50" {
		t.Errorf("expected window RTP 50, got %s", got)
	}
	if st.WindowSize != 2 {
		t.Errorf("expected window size 2, got %d", st.WindowSize)
	}

	if st.Slices[0].Hits != 2 || st.Slices[1].Hits != 1 {
		t.Errorf("unexpected hits %+v", st.Slices)
	}
	if st.Slices[0].Expected != 0.8 || st.Slices[1].Expected != 0.2 {
		t.Errorf("unexpected expected frequencies %+v", st.Slices)
	}
}

func TestEmptyStats(t *testing.T) {
	st := NewStatsRepository([]model.Slice{{Credit: 1, Weight: 1}}, 0).Stats()

	if !st.RTP.IsZero() || !st.WindowRTP.IsZero() {
		t.Errorf("expected zero RTP without bets, got %s %s", st.RTP, st.WindowRTP)
	}
	if st.Slices[0].Observed != 0 {
		t.Errorf("expected no observed frequency, got %v", st.Slices[0].Observed)
	}
}

func TestDemoSpinsWithoutBet(t *testing.T) {
	r := NewStatsRepository([]model.Slice{{Credit: 1, Weight: 1}}, 10)
	r.UpdateState(0, 0, 5000)

	if st := r.Stats(); !st.RTP.IsZero() {
		t.Errorf("expected zero RTP without bets, got %s", st.RTP)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	r := NewStatsRepository([]model.Slice{{Credit: 1, Weight: 1}, {Credit: 2, Weight: 1}}, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(slice int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.UpdateState(slice, 1, 1)
				_ = r.Stats()
			}
		}(i % 2)
	}
	wg.Wait()

	st := r.Stats()
	if st.TotalSpins != 8000 || st.Slices[0].Hits != 4000 {
		t.Errorf("expected 8000 spins with 4000 on slice 0, got %d and %d", st.TotalSpins, st.Slices[0].Hits)
	}
}
