package wheel

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSessionResponse struct {
	SessionID   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type StateResponse struct {
	State        string  `json:"state"`
	Phase        string  `json:"phase"`
	Angle        float64 `json:"angle"`
	WheelY       float64 `json:"wheel_y"`
	Balance      int64   `json:"balance"`
	Winnings     int64   `json:"winnings"`
	Bet          int     `json:"bet"`
	PickedSlice  *int    `json:"picked_slice,omitempty"` // Forced slice of a demo round
	TargetSlice  *int    `json:"target_slice,omitempty"` // Slice the wheel is heading to
	LandedSlice  *int    `json:"landed_slice,omitempty"` // Slice the wheel stopped on
	BangupActive bool    `json:"bangup_active"`
}

// Event - websocket message
type Event struct {
	Type       string `json:"type"`
	State      string `json:"state,omitempty"`
	Effect     string `json:"effect,omitempty"`
	Sound      string `json:"sound,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Slice      *int   `json:"slice,omitempty"`
	Credit     int    `json:"credit,omitempty"`
	Balance    *int64 `json:"balance,omitempty"`
	Winnings   *int64 `json:"winnings,omitempty"`
	At         int64  `json:"at"` // Unix ms
}

// Command - websocket message from the client
type Command struct {
	Action string `json:"action"` // play, spin, collect, demo
	Slice  int    `json:"slice"`  // Only for demo
}

type ErrorMessage struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

type StatsResponse struct {
	TotalSpins  int64           `json:"total_spins"`
	TotalBet    decimal.Decimal `json:"total_bet"`
	TotalPayout decimal.Decimal `json:"total_payout"`
	RTP         decimal.Decimal `json:"rtp"`
	WindowRTP   decimal.Decimal `json:"window_rtp"`
	WindowSize  int             `json:"window_size"`
	Slices      []SliceStats    `json:"slices"`
	// Landings stored in the database across restarts
	PersistedHits map[int]int64 `json:"persisted_hits,omitempty"`
}

type SliceStats struct {
	Index    int     `json:"index"`
	Credit   int     `json:"credit"`
	Hits     int64   `json:"hits"`
	Expected float64 `json:"expected"`
	Observed float64 `json:"observed"`
}

type SpinResponse struct {
	SliceIndex int       `json:"slice_index"`
	Credit     int       `json:"credit"`
	Bet        int       `json:"bet"`
	Demo       bool      `json:"demo"`
	LandedAt   time.Time `json:"landed_at"`
}

type HistoryResponse struct {
	Spins []SpinResponse `json:"spins"`
}
