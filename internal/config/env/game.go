package env

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"prize_wheel/internal/model"
)

const (
	gameConfigPathEnvName = "GAME_CONFIG_PATH"
	defaultGameConfigPath = "config.yaml"
)

type sliceYAML struct {
	Credit int     `yaml:"credit"`
	Weight float64 `yaml:"weight"`
}

type wheelYAML struct {
	IdleSpeed      float64     `yaml:"idle_speed"`
	SpinSpeed      float64     `yaml:"spin_speed"`
	TotalRotations int         `yaml:"total_rotations"`
	SlowRotations  int         `yaml:"slow_rotations"`
	LandingOffset  *float64    `yaml:"landing_offset"`
	Slices         []sliceYAML `yaml:"slices"`
}

type stateYAML struct {
	Name      string `yaml:"name"`
	NextState string `yaml:"next_state"`
}

type flowYAML struct {
	FirstState string      `yaml:"first_state"`
	States     []stateYAML `yaml:"states"`
}

type gameYAML struct {
	Bet                int           `yaml:"bet"`
	StartBalance       int64         `yaml:"start_balance"`
	ChargeWager        *bool         `yaml:"charge_wager"`
	CoinSlotDuration   time.Duration `yaml:"coin_slot_duration"`
	WheelMoveDuration  time.Duration `yaml:"wheel_move_duration"`
	AwardHoldDuration  time.Duration `yaml:"award_hold_duration"`
	BangupDuration     time.Duration `yaml:"bangup_duration"`
	BangupHoldDuration time.Duration `yaml:"bangup_hold_duration"`
	WheelTopPos        float64       `yaml:"wheel_top_pos"`
	WheelCenterPos     float64       `yaml:"wheel_center_pos"`
}

type sessionYAML struct {
	TickRateHz       int           `yaml:"tick_rate_hz"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	MaxSessions      int           `yaml:"max_sessions"`
	TimeScale        float64       `yaml:"time_scale"`
	HistoryQueueSize int           `yaml:"history_queue_size"`
	StatsWindow      int           `yaml:"stats_window"`
}

type gameFileYAML struct {
	Wheel   wheelYAML   `yaml:"wheel"`
	Flow    flowYAML    `yaml:"flow"`
	Game    gameYAML    `yaml:"game"`
	Session sessionYAML `yaml:"session"`
}

// GameFile - wheel, flow, game and session settings read from one YAML file
type GameFile struct {
	raw      gameFileYAML
	slices   []model.Slice
	states   []model.FlowState
	dangling []string
}

// GameConfigPath - GAME_CONFIG_PATH or config.yaml
func GameConfigPath() string {
	if path := os.Getenv(gameConfigPathEnvName); len(path) > 0 {
		return path
	}
	return defaultGameConfigPath
}

func NewGameConfigFromYAML(path string) (*GameFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a game file. Dangling next_state
// links are kept and reported by DanglingLinks.
func ParseGameConfig(data []byte) (*GameFile, error) {
	var raw gameFileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode game config: %v", model.ErrInvalidConfiguration, err)
	}
	applyDefaults(&raw)

	f := &GameFile{raw: raw}

	var total float64
	for i, s := range raw.Wheel.Slices {
		if s.Weight < 0 {
			return nil, fmt.Errorf("%w: slice %d has negative weight %v", model.ErrInvalidConfiguration, i, s.Weight)
		}
		total += s.Weight
		f.slices = append(f.slices, model.Slice{Credit: s.Credit, Weight: s.Weight})
	}
	if len(f.slices) == 0 || total <= 0 {
		return nil, fmt.Errorf("%w: wheel needs at least one slice with positive weight", model.ErrInvalidConfiguration)
	}

	w := raw.Wheel
	if w.SpinSpeed <= 0 || w.IdleSpeed < 0 {
		return nil, fmt.Errorf("%w: wheel speeds idle=%v spin=%v", model.ErrInvalidConfiguration, w.IdleSpeed, w.SpinSpeed)
	}
	if w.SlowRotations < 0 || w.TotalRotations <= w.SlowRotations {
		return nil, fmt.Errorf("%w: wheel rotations total=%d slow=%d", model.ErrInvalidConfiguration, w.TotalRotations, w.SlowRotations)
	}
	if off := *w.LandingOffset; math.IsNaN(off) || math.IsInf(off, 0) {
		return nil, fmt.Errorf("%w: landing offset %v", model.ErrInvalidConfiguration, off)
	}

	if len(raw.Flow.States) == 0 {
		return nil, fmt.Errorf("%w: flow has no states", model.ErrInvalidConfiguration)
	}
	names := make(map[string]struct{}, len(raw.Flow.States))
	for i, s := range raw.Flow.States {
		if len(s.Name) == 0 {
			return nil, fmt.Errorf("%w: flow state %d has no name", model.ErrInvalidConfiguration, i)
		}
		if _, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate flow state %q", model.ErrInvalidConfiguration, s.Name)
		}
		names[s.Name] = struct{}{}
		f.states = append(f.states, model.FlowState{Name: s.Name, NextState: s.NextState})
	}
	if _, ok := names[raw.Flow.FirstState]; !ok {
		return nil, fmt.Errorf("%w: first state %q is not defined", model.ErrInvalidConfiguration, raw.Flow.FirstState)
	}
	for _, s := range raw.Flow.States {
		if _, ok := names[s.NextState]; !ok {
			f.dangling = append(f.dangling, s.Name+" -> "+s.NextState)
		}
	}

	if raw.Session.TickRateHz <= 0 {
		return nil, fmt.Errorf("%w: tick rate %d", model.ErrInvalidConfiguration, raw.Session.TickRateHz)
	}
	if raw.Game.Bet < 0 || raw.Game.StartBalance < 0 {
		return nil, fmt.Errorf("%w: bet and start balance must not be negative", model.ErrInvalidConfiguration)
	}

	return f, nil
}

func applyDefaults(raw *gameFileYAML) {
	if raw.Wheel.TotalRotations == 0 && raw.Wheel.SlowRotations == 0 {
		raw.Wheel.TotalRotations, raw.Wheel.SlowRotations = 5, 3
	}
	if raw.Wheel.LandingOffset == nil {
		offset := 90.0
		raw.Wheel.LandingOffset = &offset
	}
	if len(raw.Flow.FirstState) == 0 && len(raw.Flow.States) > 0 {
		raw.Flow.FirstState = raw.Flow.States[0].Name
	}
	if raw.Game.ChargeWager == nil {
		charge := true
		raw.Game.ChargeWager = &charge
	}
	if raw.Session.TickRateHz == 0 {
		raw.Session.TickRateHz = 60
	}
	if raw.Session.TimeScale == 0 {
		raw.Session.TimeScale = 1
	}
	if raw.Session.HistoryQueueSize == 0 {
		raw.Session.HistoryQueueSize = 1024
	}
}

// DanglingLinks - "state -> missing" for every unresolved next_state
func (f *GameFile) DanglingLinks() []string {
	return append([]string(nil), f.dangling...)
}

func (f *GameFile) Slices() []model.Slice {
	return append([]model.Slice(nil), f.slices...)
}

func (f *GameFile) IdleSpeed() float64     { return f.raw.Wheel.IdleSpeed }
func (f *GameFile) SpinSpeed() float64     { return f.raw.Wheel.SpinSpeed }
func (f *GameFile) TotalRotations() int    { return f.raw.Wheel.TotalRotations }
func (f *GameFile) SlowRotations() int     { return f.raw.Wheel.SlowRotations }
func (f *GameFile) LandingOffset() float64 { return *f.raw.Wheel.LandingOffset }

func (f *GameFile) States() []model.FlowState {
	return append([]model.FlowState(nil), f.states...)
}

func (f *GameFile) FirstState() string {
	return f.raw.Flow.FirstState
}

func (f *GameFile) Bet() int                          { return f.raw.Game.Bet }
func (f *GameFile) StartBalance() int64               { return f.raw.Game.StartBalance }
func (f *GameFile) ChargeWager() bool                 { return *f.raw.Game.ChargeWager }
func (f *GameFile) CoinSlotDuration() time.Duration   { return f.raw.Game.CoinSlotDuration }
func (f *GameFile) WheelMoveDuration() time.Duration  { return f.raw.Game.WheelMoveDuration }
func (f *GameFile) AwardHoldDuration() time.Duration  { return f.raw.Game.AwardHoldDuration }
func (f *GameFile) BangupDuration() time.Duration     { return f.raw.Game.BangupDuration }
func (f *GameFile) BangupHoldDuration() time.Duration { return f.raw.Game.BangupHoldDuration }
func (f *GameFile) WheelTopPos() float64              { return f.raw.Game.WheelTopPos }
func (f *GameFile) WheelCenterPos() float64           { return f.raw.Game.WheelCenterPos }

func (f *GameFile) TickRateHz() int            { return f.raw.Session.TickRateHz }
func (f *GameFile) IdleTimeout() time.Duration { return f.raw.Session.IdleTimeout }
func (f *GameFile) MaxSessions() int           { return f.raw.Session.MaxSessions }
func (f *GameFile) TimeScale() float64         { return f.raw.Session.TimeScale }
func (f *GameFile) HistoryQueueSize() int      { return f.raw.Session.HistoryQueueSize }
func (f *GameFile) StatsWindow() int           { return f.raw.Session.StatsWindow }
