package app

import (
	"context"
	"net/http"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	sessionAPI "prize_wheel/internal/api/session"
	wheelAPI "prize_wheel/internal/api/wheel"
	"prize_wheel/internal/config"
	"prize_wheel/internal/config/env"
	"prize_wheel/internal/middleware"
	"prize_wheel/internal/repository"
	"prize_wheel/internal/repository/session_repo"
	"prize_wheel/internal/repository/spin_repo"
	"prize_wheel/internal/repository/stats_repo"
	"prize_wheel/internal/service"
	"prize_wheel/internal/service/game"
	"prize_wheel/internal/service/history"
	"prize_wheel/internal/service/session"
	"prize_wheel/internal/service/stats"
	"prize_wheel/internal/service/wheel"
	"prize_wheel/pkg/logger"
)

const appName = "prize_wheel"

type ServiceProvider struct {
	logger *zap.Logger

	//TXManager
	txManager trm.Manager

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Configs
	logCfg   config.LogConfig
	jwtCfg   config.JWTConfig
	gameFile *env.GameFile

	// History and stats bits
	spinRepo    repository.SpinRepository
	sessionRepo repository.SessionRepository
	statsRepo   repository.StatsRepository
	historyServ service.HistoryService
	statsServ   service.StatsService
	recorder    *history.Recorder

	// Session bits
	sessions    *session.Manager
	sessionHand *sessionAPI.Handler
	wheelHand   *wheelAPI.Handler

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) LogCfg() config.LogConfig {
	if sp.logCfg == nil {
		cfg, err := env.NewLogConfig()
		if err != nil {
			panic("failed to get log config: " + err.Error())
		}
		sp.logCfg = cfg
	}
	return sp.logCfg
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.logger == nil {
		cfg := sp.LogCfg()
		sp.logger = logger.New(&logger.Config{
			Mode:  logger.ParseMode(cfg.Mode()),
			Level: cfg.Level(),
			App:   appName,
			Dir:   cfg.Dir(),
			File:  cfg.File(),
		})
	}
	return sp.logger
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

// DBClient - nil when spin history is disabled
func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil && sp.PgConfig().Enabled() {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}

		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping database: " + err.Error())
		}

		sp.dbClient = dbc
	}

	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) GameFile() *env.GameFile {
	if sp.gameFile == nil {
		f, err := env.NewGameConfigFromYAML(env.GameConfigPath())
		if err != nil {
			panic("failed to get game config: " + err.Error())
		}
		for _, link := range f.DanglingLinks() {
			sp.Logger().Warn("flow state links to an unknown state", zap.String("link", link))
		}
		sp.gameFile = f
	}
	return sp.gameFile
}

func (sp *ServiceProvider) GameSettings() game.Settings {
	return GameSettings(sp.GameFile(), sp.GameFile(), sp.GameFile())
}

// GameSettings assembles the settings of one game from its config sections
func GameSettings(w config.WheelConfig, f config.FlowConfig, g config.GameConfig) game.Settings {
	return game.Settings{
		Slices: w.Slices(),
		Planner: wheel.PlannerConfig{
			TotalRotations: w.TotalRotations(),
			SlowRotations:  w.SlowRotations(),
			LandingOffset:  w.LandingOffset(),
		},
		Wheel: wheel.RuntimeConfig{
			IdleSpeed: w.IdleSpeed(),
			SpinSpeed: w.SpinSpeed(),
		},
		States:     f.States(),
		FirstState: f.FirstState(),
		Game: game.Config{
			Bet:                g.Bet(),
			StartBalance:       g.StartBalance(),
			ChargeWager:        g.ChargeWager(),
			CoinSlotDuration:   g.CoinSlotDuration(),
			WheelMoveDuration:  g.WheelMoveDuration(),
			AwardHoldDuration:  g.AwardHoldDuration(),
			BangupDuration:     g.BangupDuration(),
			BangupHoldDuration: g.BangupHoldDuration(),
			WheelTopPos:        g.WheelTopPos(),
			WheelCenterPos:     g.WheelCenterPos(),
		},
	}
}

func (sp *ServiceProvider) SpinRepository(ctx context.Context) repository.SpinRepository {
	if sp.spinRepo == nil && sp.PgConfig().Enabled() {
		sp.spinRepo = spin_repo.NewSpinRepository(sp.DBClient(ctx))
	}
	return sp.spinRepo
}

func (sp *ServiceProvider) SessionRepository(ctx context.Context) repository.SessionRepository {
	if sp.sessionRepo == nil && sp.PgConfig().Enabled() {
		sp.sessionRepo = session_repo.NewSessionRepository(sp.DBClient(ctx))
	}
	return sp.sessionRepo
}

func (sp *ServiceProvider) StatsRepository() repository.StatsRepository {
	if sp.statsRepo == nil {
		sp.statsRepo = stats_repo.NewStatsRepository(sp.GameFile().Slices(), sp.GameFile().StatsWindow())
	}
	return sp.statsRepo
}

// HistoryService - nil when spin history is disabled
func (sp *ServiceProvider) HistoryService(ctx context.Context) service.HistoryService {
	if sp.historyServ == nil && sp.PgConfig().Enabled() {
		sp.historyServ = history.NewHistoryService(
			sp.SpinRepository(ctx),
			sp.SessionRepository(ctx),
			sp.TXManager(ctx),
			sp.Logger(),
		)
	}
	return sp.historyServ
}

func (sp *ServiceProvider) StatsService() service.StatsService {
	if sp.statsServ == nil {
		sp.statsServ = stats.NewStatsService(sp.StatsRepository())
	}
	return sp.statsServ
}

func (sp *ServiceProvider) Recorder(ctx context.Context) *history.Recorder {
	if sp.recorder == nil {
		hist := sp.HistoryService(ctx)
		if hist == nil {
			sp.Logger().Warn("PG_DSN is empty, spin history and session journal are disabled")
		}
		sp.recorder = history.NewRecorder(hist, sp.StatsRepository(), sp.GameFile().HistoryQueueSize(), sp.Logger())
	}
	return sp.recorder
}

func (sp *ServiceProvider) SessionManager(ctx context.Context) *session.Manager {
	if sp.sessions == nil {
		f := sp.GameFile()
		m, err := session.NewManager(session.Config{
			TickRateHz:  f.TickRateHz(),
			IdleTimeout: f.IdleTimeout(),
			MaxSessions: f.MaxSessions(),
			TimeScale:   f.TimeScale(),
			Game:        sp.GameSettings(),
		}, sp.Recorder(ctx), sp.Logger())
		if err != nil {
			panic("failed to create session manager: " + err.Error())
		}
		sp.sessions = m
	}
	return sp.sessions
}

func (sp *ServiceProvider) SessionHandler(ctx context.Context) *sessionAPI.Handler {
	if sp.sessionHand == nil {
		sp.sessionHand = sessionAPI.NewHandler(sessionAPI.HandlerDeps{
			Serv:      sp.SessionManager(ctx),
			SecretKey: sp.JWTCfg().AccessTokenSecretKey(),
			TokenTTL:  sp.JWTCfg().AccessTokenDuration(),
			Logger:    sp.Logger(),
		})
	}
	return sp.sessionHand
}

func (sp *ServiceProvider) WheelHandler(ctx context.Context) *wheelAPI.Handler {
	if sp.wheelHand == nil {
		sp.wheelHand = wheelAPI.NewHandler(wheelAPI.HandlerDeps{
			Serv:    sp.SessionManager(ctx),
			Stats:   sp.StatsService(),
			History: sp.HistoryService(ctx),
			Logger:  sp.Logger(),
		})
	}
	return sp.wheelHand
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		r.Use(chimw.RequestID)
		r.Use(chimw.Recoverer)
		r.Use(middleware.Logger(sp.Logger()))

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Handle("/metrics", promhttp.Handler())

		auth := middleware.Auth(sp.JWTCfg().AccessTokenSecretKey())

		// Session endpoints
		sessionHandler := sp.SessionHandler(ctx)
		r.Route("/sessions", func(rr chi.Router) {
			rr.Post("/", sessionHandler.Create)
			rr.With(auth).Delete("/", sessionHandler.Close)
		})

		// Wheel endpoints
		wheelHandler := sp.WheelHandler(ctx)
		r.Route("/wheel", func(rr chi.Router) {
			rr.Get("/stats", wheelHandler.Stats)
			rr.Group(func(ar chi.Router) {
				ar.Use(auth)
				ar.Get("/state", wheelHandler.State)
				ar.Post("/play", wheelHandler.Play)
				ar.Post("/spin", wheelHandler.Spin)
				ar.Post("/demo/{slice}", wheelHandler.Demo)
				ar.Post("/collect", wheelHandler.Collect)
				ar.Get("/history", wheelHandler.History)
				ar.Get("/events", wheelHandler.Events)
			})
		})

		sp.router = r
	}

	return sp.router
}
