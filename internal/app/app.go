package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"prize_wheel/internal/config"
)

type App struct {
	ServiceProvider *ServiceProvider
}

func NewApp() *App {
	return &App{}
}

func (s *App) initServiceProvider() {
	s.ServiceProvider = newServiceProvider()
}

// Run serves HTTP and runs the session reaper and the spin recorder until
// SIGINT or SIGTERM.
func (s *App) Run() error {
	envErr := config.Load(".env")
	s.initServiceProvider()

	sp := s.ServiceProvider
	log := sp.Logger()
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              sp.HTTPCfg().Address(),
		Handler:           sp.Router(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}
	sessions := sp.SessionManager(ctx)
	recorder := sp.Recorder(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sp.HTTPCfg().ShutdownTimeout())
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	// The recorder outlives the sessions so their last spins are persisted
	recCtx, recCancel := context.WithCancel(context.Background())
	defer recCancel()

	g.Go(func() error {
		defer recCancel()
		return sessions.Run(gctx)
	})

	g.Go(func() error {
		return recorder.Run(recCtx)
	})

	err := g.Wait()

	if db := sp.dbClient; db != nil {
		db.Close()
	}
	log.Info("server stopped", zap.Error(err))
	return err
}
