package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"prize_wheel/internal/metrics"
	"prize_wheel/internal/model"
	"prize_wheel/internal/repository"
	"prize_wheel/internal/service"
)

const (
	defaultQueueSize = 256
	saveTimeout      = 5 * time.Second
	// How long Run keeps flushing the queue after shutdown
	drainTimeout = 10 * time.Second
)

type jobKind int

const (
	jobSpin jobKind = iota
	jobOpen
	jobClose
)

type job struct {
	kind    jobKind
	spin    model.SpinResult
	session model.Session
}

// Recorder collects the outcome of the game sessions. None of its sink
// methods block: stats are updated in place and everything else is queued
// for Run to persist in arrival order.
type Recorder struct {
	history service.HistoryService
	stats   repository.StatsRepository
	queue   chan job
	log     *zap.Logger
}

// NewRecorder - history may be nil, then spins only feed the stats
func NewRecorder(history service.HistoryService, stats repository.StatsRepository, queueSize int, logger *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		history: history,
		stats:   stats,
		queue:   make(chan job, queueSize),
		log:     logger.Named("recorder"),
	}
}

func (r *Recorder) SpinLanded(spin model.SpinResult) {
	if r.stats != nil {
		r.stats.UpdateState(spin.SliceIndex, spin.Bet, spin.Credit)
		st := r.stats.Stats()
		metrics.SetRTP(st.RTP.InexactFloat64(), st.WindowRTP.InexactFloat64())
	}
	metrics.SpinLanded(spin.SliceIndex, spin.Demo, spin.Bet, spin.Credit)

	r.enqueue(job{kind: jobSpin, spin: spin}, spin.SessionID)
}

func (r *Recorder) SessionOpened(session model.Session) {
	r.enqueue(job{kind: jobOpen, session: session}, session.ID)
}

func (r *Recorder) SessionClosed(session model.Session) {
	r.enqueue(job{kind: jobClose, session: session}, session.ID)
}

func (r *Recorder) enqueue(j job, sessionID string) {
	if r.history == nil {
		return
	}

	select {
	case r.queue <- j:
	default:
		metrics.HistoryDropped()
		r.log.Warn("history queue is full, record dropped",
			zap.String("session_id", sessionID),
			zap.Int("kind", int(j.kind)),
		)
	}
}

// Run persists queued records until ctx is done, then drains what is left
func (r *Recorder) Run(ctx context.Context) error {
	if r.history == nil {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return nil
		case j := <-r.queue:
			r.save(context.Background(), j)
		}
	}
}

func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case j := <-r.queue:
			r.save(ctx, j)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, j job) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	switch j.kind {
	case jobSpin:
		if err := r.history.Save(ctx, j.spin); err != nil {
			r.log.Error("couldn't save spin",
				zap.String("session_id", j.spin.SessionID),
				zap.Int("slice", j.spin.SliceIndex),
				zap.Error(err),
			)
		}
	case jobOpen:
		if err := r.history.OpenSession(ctx, j.session); err != nil {
			r.log.Error("couldn't journal session", zap.String("session_id", j.session.ID), zap.Error(err))
		}
	case jobClose:
		if err := r.history.FinishSession(ctx, j.session); err != nil {
			r.log.Error("couldn't finish session", zap.String("session_id", j.session.ID), zap.Error(err))
		}
	}
}
