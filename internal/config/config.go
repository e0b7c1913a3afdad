package config

import (
	"time"

	"github.com/joho/godotenv"

	"prize_wheel/internal/model"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
	ShutdownTimeout() time.Duration
}

type PGConfig interface {
	// DSN - empty when spin history is disabled
	DSN() string
	Enabled() bool
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
}

type LogConfig interface {
	Mode() string
	Level() string
	Dir() string
	File() bool
}

type WheelConfig interface {
	Slices() []model.Slice
	IdleSpeed() float64
	SpinSpeed() float64
	TotalRotations() int
	SlowRotations() int
	LandingOffset() float64
}

type FlowConfig interface {
	States() []model.FlowState
	FirstState() string
}

type GameConfig interface {
	Bet() int
	StartBalance() int64
	ChargeWager() bool
	CoinSlotDuration() time.Duration
	WheelMoveDuration() time.Duration
	AwardHoldDuration() time.Duration
	BangupDuration() time.Duration
	BangupHoldDuration() time.Duration
	WheelTopPos() float64
	WheelCenterPos() float64
}

type SessionConfig interface {
	TickRateHz() int
	IdleTimeout() time.Duration
	MaxSessions() int
	TimeScale() float64
	HistoryQueueSize() int
	StatsWindow() int
}
