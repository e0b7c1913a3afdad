package model

import "time"

type EventType string

const (
	EventState   EventType = "state"
	EventTick    EventType = "tick"
	EventLanded  EventType = "landed"
	EventEffect  EventType = "effect"
	EventBalance EventType = "balance"
)

// Effect names carried by EventEffect
const (
	EffectPlaySound  = "play_sound"
	EffectStopSound  = "stop_sound"
	EffectInsertCoin = "insert_coin"
	EffectHideLogo   = "hide_logo"
	EffectShowLogo   = "show_logo"
)

// Event - something that happened in a game session, streamed to subscribers
type Event struct {
	Type     EventType
	State    string
	Effect   string
	Sound    string
	Duration time.Duration
	Slice    int
	Credit   int
	Balance  int64
	Winnings int64
	At       time.Time
}
