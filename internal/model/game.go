package model

import "time"

// SpinResult - a landed spin as reported by the game controller
type SpinResult struct {
	SessionID  string
	SliceIndex int
	Credit     int
	Bet        int
	Demo       bool
	LandedAt   time.Time
}

// GameSnapshot - observable state of one game
type GameSnapshot struct {
	State        string
	Phase        WheelPhase
	Angle        float64
	WheelY       float64
	Balance      int64
	Winnings     int64
	Bet          int
	PickedSlice  int
	TargetSlice  int
	LandedSlice  int
	BangupActive bool
}

// Sound names played by the game
const (
	SoundCoinDrop       = "coin-drop"
	SoundGameLoop       = "game-loop"
	SoundWheelClick     = "wheel-click"
	SoundWheelLand      = "wheel-land"
	SoundWinCelebration = "win-celebration"
	SoundBangupStop     = "bangup-stop"
)
