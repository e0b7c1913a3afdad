package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"prize_wheel/internal/model"
	"prize_wheel/internal/repository/stats_repo"
	"prize_wheel/internal/service/game"
	"prize_wheel/internal/service/wheel"
	"prize_wheel/pkg/tween"
)

// Longest a single step of a cycle may take in virtual time
const stepLimit = 10 * time.Minute

var ErrStuck = errors.New("game did not reach the expected state")

// Config - how many cycles to play and how
type Config struct {
	Cycles  int
	Workers int
	Seed    uint64
	// Virtual frame length
	Frame time.Duration
	// Skip the bangup by collecting as soon as the award starts
	Collect bool
	// Slice every cycle is forced to land on, wheel.NoSlice for weighted spins
	Demo int
}

func DefaultConfig() Config {
	return Config{
		Cycles:  10000,
		Workers: 4,
		Seed:    1,
		Frame:   50 * time.Millisecond,
		Collect: true,
		Demo:    wheel.NoSlice,
	}
}

// Report - outcome of a run
type Report struct {
	Stats       model.WheelStats
	VirtualTime time.Duration
	WallTime    time.Duration
}

// Run plays cfg.Cycles complete play cycles spread over cfg.Workers headless
// games, each with its own scheduler and random stream.
func Run(ctx context.Context, settings game.Settings, cfg Config, logger *zap.Logger) (Report, error) {
	if cfg.Cycles <= 0 || cfg.Workers <= 0 || cfg.Frame <= 0 {
		return Report{}, fmt.Errorf("%w: cycles=%d workers=%d frame=%v", model.ErrInvalidConfiguration, cfg.Cycles, cfg.Workers, cfg.Frame)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("simulation")

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return Report{}, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	stats := stats_repo.NewStatsRepository(settings.Slices, cfg.Cycles)
	start := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		virtual time.Duration
		errs    []error
	)

	for w := 0; w < cfg.Workers; w++ {
		n := cfg.Cycles / cfg.Workers
		if w < cfg.Cycles%cfg.Workers {
			n++
		}
		if n == 0 {
			continue
		}
		w := w

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			p := &player{cfg: cfg, stats: stats, log: log.With(zap.Int("worker", w))}
			elapsed, err := p.play(ctx, settings, uint64(w), n)

			mu.Lock()
			virtual += elapsed
			if err != nil {
				errs = append(errs, fmt.Errorf("worker %d: %w", w, err))
			}
			mu.Unlock()
		}); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit worker %d: %w", w, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	report := Report{
		Stats:       stats.Stats(),
		VirtualTime: virtual,
		WallTime:    time.Since(start),
	}
	log.Info("simulation finished",
		zap.Int64("spins", report.Stats.TotalSpins),
		zap.String("rtp", report.Stats.RTP.String()),
		zap.Duration("virtual", report.VirtualTime),
		zap.Duration("wall", report.WallTime),
	)
	return report, errors.Join(errs...)
}

type player struct {
	cfg   Config
	stats *stats_repo.StatsRepo
	log   *zap.Logger

	sched   *tween.Scheduler
	ctrl    *game.Controller
	elapsed time.Duration
}

func (p *player) play(ctx context.Context, settings game.Settings, stream uint64, cycles int) (time.Duration, error) {
	// Enough credits to wager every cycle without winning
	settings.Game.StartBalance += int64(settings.Game.Bet) * int64(cycles)

	p.sched = tween.NewScheduler()
	rnd := rand.New(rand.NewPCG(p.cfg.Seed, stream))

	ctrl, err := game.New(settings, p.sched, game.NopPresenter{}, rnd, p.log)
	if err != nil {
		return 0, err
	}
	defer ctrl.Close()
	p.ctrl = ctrl

	landed := 0
	ctrl.OnSpin(func(res model.SpinResult) {
		p.stats.UpdateState(res.SliceIndex, res.Bet, res.Credit)
		landed++
	})

	for i := 0; i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return p.elapsed, err
		}
		if err := p.cycle(); err != nil {
			return p.elapsed, fmt.Errorf("cycle %d: %w", i, err)
		}
	}
	// Let the last round land before reporting
	if err := p.until(func() bool { return landed == cycles }); err != nil {
		return p.elapsed, err
	}
	return p.elapsed, nil
}

func (p *player) cycle() error {
	start := func() error {
		if p.cfg.Demo != wheel.NoSlice {
			return p.ctrl.Demo(p.cfg.Demo)
		}
		return p.ctrl.Play()
	}
	if err := p.retry(start); err != nil {
		return err
	}

	if p.cfg.Demo == wheel.NoSlice {
		if err := p.until(func() bool { return p.ctrl.State() == game.StateBonusInput }); err != nil {
			return err
		}
		if err := p.ctrl.Spin(); err != nil {
			return err
		}
	}

	if err := p.until(func() bool { return p.ctrl.State() == game.StateAward }); err != nil {
		return err
	}
	if p.cfg.Collect {
		return p.ctrl.Collect()
	}
	return nil
}

// retry calls fn every frame until the game accepts it
func (p *player) retry(fn func() error) error {
	var last error
	err := p.until(func() bool {
		last = fn()
		return !errors.Is(last, model.ErrBusy) && !errors.Is(last, model.ErrWrongState)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", err, last)
	}
	return last
}

func (p *player) until(done func() bool) error {
	for waited := time.Duration(0); waited <= stepLimit; waited += p.cfg.Frame {
		if done() {
			return nil
		}
		p.sched.Advance(p.cfg.Frame)
		p.ctrl.Update(p.cfg.Frame)
		p.elapsed += p.cfg.Frame
	}
	return fmt.Errorf("%w: stuck in %s", ErrStuck, p.ctrl.State())
}
