package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/model"
	"prize_wheel/internal/service/flow"
	"prize_wheel/internal/service/wheel"
	"prize_wheel/pkg/tween"
)

// Flow states the controller reacts to
const (
	StateWaitForPlay   = "WaitForPlay"
	StateWheelDown     = "WheelDown"
	StateBonusInput    = "BonusInput"
	StateWheelSpinning = "WheelSpinning"
	StateWheelLanded   = "WheelLanded"
	StateAward         = "Award"
)

// Host - animation host shared by the wheel and the controller
type Host interface {
	wheel.Host
	After(delay time.Duration, fn func()) tween.Handle
}

// Presenter - audio/visual effects triggered by the game
type Presenter interface {
	PlaySound(name string)
	StopSound(name string)
	InsertCoin(d time.Duration)
	HideLogo()
	ShowLogo()
}

// Config - wager and timings of one play cycle
type Config struct {
	Bet          int
	StartBalance int64
	ChargeWager  bool

	CoinSlotDuration   time.Duration
	WheelMoveDuration  time.Duration
	AwardHoldDuration  time.Duration
	BangupDuration     time.Duration
	BangupHoldDuration time.Duration

	WheelTopPos    float64
	WheelCenterPos float64
}

func DefaultConfig() Config {
	return Config{
		Bet:                500,
		StartBalance:       2000,
		ChargeWager:        true,
		CoinSlotDuration:   500 * time.Millisecond,
		WheelMoveDuration:  3 * time.Second,
		AwardHoldDuration:  3 * time.Second,
		BangupDuration:     5 * time.Second,
		BangupHoldDuration: 3 * time.Second,
		WheelTopPos:        115,
		WheelCenterPos:     300,
	}
}

// Controller wires player input and effects to the flow machine and the wheel.
// Like the machine and the runtime, it must only be used from the goroutine
// that advances the host.
type Controller struct {
	cfg       Config
	machine   *flow.Machine
	wheel     *wheel.Runtime
	meter     *CreditMeter
	host      Host
	presenter Presenter
	log       *zap.Logger

	picked     int
	wagered    int
	wheelY     *tween.Var
	wheelUp    bool
	bangupDone bool
	// Cleared by a wager, set again once the wheel is reset after the award
	ready      bool
	stateID    flow.ListenerID
	timers     []tween.Handle

	spinListeners []func(model.SpinResult)
}

func NewController(cfg Config, machine *flow.Machine, rt *wheel.Runtime, host Host, presenter Presenter, logger *zap.Logger) (*Controller, error) {
	if machine == nil || rt == nil || host == nil {
		return nil, fmt.Errorf("%w: game controller dependencies are missing", model.ErrInvalidConfiguration)
	}
	if cfg.Bet < 0 || cfg.StartBalance < 0 {
		return nil, fmt.Errorf("%w: bet %d, start balance %d", model.ErrInvalidConfiguration, cfg.Bet, cfg.StartBalance)
	}
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		cfg:        cfg,
		machine:    machine,
		wheel:      rt,
		meter:      NewCreditMeter(cfg.StartBalance, cfg.BangupDuration),
		host:       host,
		presenter:  presenter,
		log:        logger.Named("game"),
		picked:     wheel.NoSlice,
		wheelY:     tween.NewVar(cfg.WheelTopPos),
		bangupDone: true,
		ready:      true,
	}

	c.stateID = machine.AddListener(c.stateChanged)
	rt.OnLanded(c.wheelLanded)
	rt.OnTick(func() { c.presenter.PlaySound(model.SoundWheelClick) })

	return c, nil
}

// OnSpin registers fn to run for every landed spin
func (c *Controller) OnSpin(fn func(model.SpinResult)) {
	if fn != nil {
		c.spinListeners = append(c.spinListeners, fn)
	}
}

func (c *Controller) State() string            { return c.machine.CurrentState() }
func (c *Controller) Table() *wheel.SliceTable { return c.wheel.Table() }

// OnState registers fn to run on every flow transition
func (c *Controller) OnState(fn flow.Listener) flow.ListenerID {
	return c.machine.AddListener(fn)
}

// Play is the wager button: in WaitForPlay it charges the bet and starts a
// cycle with a weighted spin, during Award it collects the winnings.
func (c *Controller) Play() error {
	if c.machine.CurrentState() == StateAward {
		return c.Collect()
	}
	return c.wager(false)
}

// Demo starts a cycle that lands on slice
func (c *Controller) Demo(slice int) error {
	if slice < 0 || slice >= c.wheel.Table().Len() {
		return fmt.Errorf("%w: %d", model.ErrInvalidSlice, slice)
	}
	if c.machine.CurrentState() != StateWaitForPlay {
		return fmt.Errorf("%w: demo in %s", model.ErrWrongState, c.machine.CurrentState())
	}

	c.picked = slice
	return c.wager(true)
}

// Spin lands the wheel once it is down in BonusInput
func (c *Controller) Spin() error {
	if c.machine.CurrentState() != StateBonusInput {
		return fmt.Errorf("%w: spin in %s", model.ErrWrongState, c.machine.CurrentState())
	}
	if c.wheel.IsLanding() {
		return model.ErrBusy
	}

	if err := c.wheel.LandOnSlice(c.picked); err != nil {
		return fmt.Errorf("land on slice: %w", err)
	}
	c.machine.NextState()
	return nil
}

// Collect finishes the bangup at once
func (c *Controller) Collect() error {
	if c.machine.CurrentState() != StateAward {
		return fmt.Errorf("%w: collect in %s", model.ErrWrongState, c.machine.CurrentState())
	}

	if c.meter.CompleteBangup() {
		c.bangupFinished()
	}
	c.presenter.PlaySound(model.SoundBangupStop)
	c.presenter.StopSound(model.SoundWinCelebration)
	return nil
}

// Update runs once per frame after the host advanced by dt
func (c *Controller) Update(dt time.Duration) {
	c.wheel.Update()
	if c.meter.Update(dt) {
		c.bangupFinished()
	}
}

func (c *Controller) Snapshot() model.GameSnapshot {
	target, _ := c.wheel.TargetSlice()
	landed, _ := c.wheel.LandedSlice()
	return model.GameSnapshot{
		State:        c.machine.CurrentState(),
		Phase:        c.wheel.Phase(),
		Angle:        c.wheel.NormalizedAngle(),
		WheelY:       c.wheelY.Get(),
		Balance:      c.meter.Balance(),
		Winnings:     c.meter.Winnings(),
		Bet:          c.cfg.Bet,
		PickedSlice:  c.picked,
		TargetSlice:  target,
		LandedSlice:  landed,
		BangupActive: c.meter.BangupActive(),
	}
}

// Close stops pending timers and detaches from the flow machine
func (c *Controller) Close() {
	for _, h := range c.timers {
		h.Stop()
	}
	c.timers = nil
	c.machine.RemoveListener(c.stateID)
}

func (c *Controller) wager(force bool) error {
	if c.machine.CurrentState() != StateWaitForPlay {
		return fmt.Errorf("%w: play in %s", model.ErrWrongState, c.machine.CurrentState())
	}
	if !c.ready {
		return fmt.Errorf("%w: previous round is still resetting", model.ErrBusy)
	}

	if c.cfg.ChargeWager {
		if err := c.meter.Deduct(int64(c.cfg.Bet)); err != nil {
			return err
		}
	}
	c.wagered = c.cfg.Bet
	c.ready = false
	if !force {
		c.picked = wheel.NoSlice
	}

	c.machine.NextState()
	return nil
}

func (c *Controller) stateChanged(state string) {
	switch state {
	case StateWheelDown:
		c.wheelUp = false
		c.presenter.InsertCoin(c.cfg.CoinSlotDuration)
		c.after(c.cfg.CoinSlotDuration, func() {
			c.presenter.PlaySound(model.SoundGameLoop)
			c.presenter.HideLogo()
			// Move wheel down before allowing player to spin the wheel
			c.track(c.host.Animate(c.wheelY, c.cfg.WheelCenterPos, c.cfg.WheelMoveDuration, tween.Linear, c.machine.NextState))
		})
	case StateBonusInput:
		if c.picked != wheel.NoSlice {
			if err := c.Spin(); err != nil {
				c.log.Error("couldn't start demo spin", zap.Int("slice", c.picked), zap.Error(err))
			}
		}
	case StateWheelLanded:
		c.machine.NextState()
	case StateAward:
		c.award()
	}
}

func (c *Controller) wheelLanded(slice int) {
	c.machine.NextState()
	c.presenter.PlaySound(model.SoundWheelLand)

	credit, _ := c.wheel.SliceWin()
	res := model.SpinResult{
		SliceIndex: slice,
		Credit:     credit,
		Bet:        c.wagered,
		Demo:       c.picked != wheel.NoSlice,
	}
	c.log.Debug("spin landed", zap.Int("slice", slice), zap.Int("credit", credit), zap.Bool("demo", res.Demo))

	for _, fn := range c.spinListeners {
		fn(res)
	}
}

func (c *Controller) award() {
	c.bangupDone = false
	win, _ := c.wheel.SliceWin()

	c.presenter.StopSound(model.SoundGameLoop)
	c.presenter.PlaySound(model.SoundWinCelebration)
	if !c.meter.BangupTo(int64(win)) {
		c.bangupFinished()
	}

	c.after(c.cfg.AwardHoldDuration, func() {
		// Move wheel back up
		c.track(c.host.Animate(c.wheelY, c.cfg.WheelTopPos, c.cfg.WheelMoveDuration, tween.Linear, func() {
			c.wheelUp = true
			if c.bangupDone {
				c.resetUI()
			}
		}))
	})
}

func (c *Controller) bangupFinished() {
	c.after(c.cfg.BangupHoldDuration, func() {
		c.machine.NextState()
		c.bangupDone = true
		if c.wheelUp {
			c.resetUI()
		}
	})
}

func (c *Controller) resetUI() {
	c.presenter.ShowLogo()
	c.wheel.ResetWheel()
	c.ready = true
}

func (c *Controller) after(d time.Duration, fn func()) {
	c.track(c.host.After(d, fn))
}

func (c *Controller) track(h tween.Handle) {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.Done() {
			live = append(live, t)
		}
	}
	c.timers = append(live, h)
}

// NopPresenter discards every effect
type NopPresenter struct{}

func (NopPresenter) PlaySound(string)         {}
func (NopPresenter) StopSound(string)         {}
func (NopPresenter) InsertCoin(time.Duration) {}
func (NopPresenter) HideLogo()                {}
func (NopPresenter) ShowLogo()                {}
