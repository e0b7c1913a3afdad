package stats_repo

import (
	"sync"

	"github.com/shopspring/decimal"

	"prize_wheel/internal/model"
)

const defaultWindowSize = 500

var hundred = decimal.NewFromInt(100)

type windowSpin struct {
	bet    int
	payout int
}

// StatsRepo - in-memory totals of every landed spin
type StatsRepo struct {
	mtx sync.RWMutex

	slices      []model.Slice
	totalWeight float64

	totalSpins  int64
	totalBet    decimal.Decimal
	totalPayout decimal.Decimal
	hits        []int64

	window     []windowSpin
	windowSize int
	windowBet  int64
	windowPay  int64
}

// NewStatsRepository - slices give the expected frequency of every slice
func NewStatsRepository(slices []model.Slice, windowSize int) *StatsRepo {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}

	var total float64
	for _, s := range slices {
		if s.Weight > 0 {
			total += s.Weight
		}
	}

	return &StatsRepo{
		slices:      append([]model.Slice(nil), slices...),
		totalWeight: total,
		hits:        make([]int64, len(slices)),
		windowSize:  windowSize,
		window:      make([]windowSpin, 0, windowSize),
	}
}

// UpdateState - records a landed spin
func (r *StatsRepo) UpdateState(slice, bet, payout int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.totalSpins++
	r.totalBet = r.totalBet.Add(decimal.NewFromInt(int64(bet)))
	r.totalPayout = r.totalPayout.Add(decimal.NewFromInt(int64(payout)))
	if slice >= 0 && slice < len(r.hits) {
		r.hits[slice]++
	}

	r.window = append(r.window, windowSpin{bet: bet, payout: payout})
	r.windowBet += int64(bet)
	r.windowPay += int64(payout)

	// Keep the window size
	if len(r.window) > r.windowSize {
		oldest := r.window[0]
		r.window = r.window[1:]
		r.windowBet -= int64(oldest.bet)
		r.windowPay -= int64(oldest.payout)
	}
}

// Stats - copy of the current totals
func (r *StatsRepo) Stats() model.WheelStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	st := model.WheelStats{
		TotalSpins:  r.totalSpins,
		TotalBet:    r.totalBet,
		TotalPayout: r.totalPayout,
		RTP:         rtp(r.totalPayout, r.totalBet),
		WindowRTP:   rtp(decimal.NewFromInt(r.windowPay), decimal.NewFromInt(r.windowBet)),
		WindowSize:  len(r.window),
		Slices:      make([]model.SliceStats, len(r.slices)),
	}

	for i, s := range r.slices {
		ss := model.SliceStats{
			Index:  i,
			Credit: s.Credit,
			Hits:   r.hits[i],
		}
		if r.totalWeight > 0 && s.Weight > 0 {
			ss.Expected = s.Weight / r.totalWeight
		}
		if r.totalSpins > 0 {
			ss.Observed = float64(r.hits[i]) / float64(r.totalSpins)
		}
		st.Slices[i] = ss
	}

	return st
}

// rtp - payout/bet in percent, zero without bets
func rtp(payout, bet decimal.Decimal) decimal.Decimal {
	if !bet.IsPositive() {
		return decimal.Zero
	}
	return payout.Div(bet).Mul(hundred).Round(2)
}
