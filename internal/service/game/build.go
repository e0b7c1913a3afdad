package game

import (
	"fmt"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
	"prize_wheel/internal/service/flow"
	"prize_wheel/internal/service/wheel"
)

// Settings - everything needed to assemble one game
type Settings struct {
	Slices     []model.Slice
	Planner    wheel.PlannerConfig
	Wheel      wheel.RuntimeConfig
	States     []model.FlowState
	FirstState string
	Game       Config
}

// New assembles the slice table, wheel runtime, flow machine and controller
// of one game on top of host.
func New(s Settings, host Host, presenter Presenter, rnd wheel.RandSource, logger *zap.Logger) (*Controller, error) {
	if rnd == nil {
		return nil, fmt.Errorf("%w: game has no random source", model.ErrInvalidConfiguration)
	}
	table, err := wheel.NewSliceTable(s.Slices)
	if err != nil {
		return nil, fmt.Errorf("slice table: %w", err)
	}
	planner, err := wheel.NewPlanner(s.Planner)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	rt, err := wheel.NewRuntime(table, wheel.NewSelector(rnd), planner, host, s.Wheel, logger)
	if err != nil {
		return nil, fmt.Errorf("wheel runtime: %w", err)
	}
	machine, err := flow.NewMachine(s.States, s.FirstState, logger)
	if err != nil {
		return nil, fmt.Errorf("flow machine: %w", err)
	}
	return NewController(s.Game, machine, rt, host, presenter, logger)
}
