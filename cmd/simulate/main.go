package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/app"
	"prize_wheel/internal/config/env"
	"prize_wheel/internal/service/simulation"
	"prize_wheel/internal/service/wheel"
	"prize_wheel/pkg/logger"
)

func main() {
	def := simulation.DefaultConfig()

	var (
		configPath = flag.String("config", env.GameConfigPath(), "game config file")
		cycles     = flag.Int("cycles", def.Cycles, "play cycles to run")
		workers    = flag.Int("workers", def.Workers, "games played in parallel")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
		frame      = flag.Duration("frame", def.Frame, "virtual frame length")
		collect    = flag.Bool("collect", def.Collect, "collect the award instead of waiting for the bangup")
		demo       = flag.Int("demo", wheel.NoSlice, "force every spin onto this slice")
		level      = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	log := logger.New(&logger.Config{Mode: logger.Dev, Level: *level, App: "simulate"})
	defer func() { _ = log.Sync() }()

	f, err := env.NewGameConfigFromYAML(*configPath)
	if err != nil {
		log.Fatal("load game config", zap.String("path", *configPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := simulation.Run(ctx, app.GameSettings(f, f, f), simulation.Config{
		Cycles:  *cycles,
		Workers: *workers,
		Seed:    *seed,
		Frame:   *frame,
		Collect: *collect,
		Demo:    *demo,
	}, log)
	if err != nil {
		log.Error("simulation failed", zap.Error(err))
	}

	printReport(report, *seed)
	if err != nil {
		os.Exit(1)
	}
}

func printReport(r simulation.Report, seed uint64) {
	st := r.Stats
	fmt.Printf("seed %d, %d spins, %v virtual time in %v\n\n", seed, st.TotalSpins, r.VirtualTime.Round(time.Second), r.WallTime.Round(time.Millisecond))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "slice\tcredit\thits\texpected\tobserved\tdiff\t")
	for _, s := range st.Slices {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.4f\t%.4f\t%+.4f\t\n", s.Index, s.Credit, s.Hits, s.Expected, s.Observed, s.Observed-s.Expected)
	}
	_ = tw.Flush()

	fmt.Printf("\ntotal bet %s, total payout %s, RTP %s%%\n", st.TotalBet, st.TotalPayout, st.RTP)
}
