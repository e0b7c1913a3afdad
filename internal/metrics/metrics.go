package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelSlice = "slice"
	labelDemo  = "demo"
)

// Metric names: prize_wheel_<name>

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prize_wheel_sessions_active",
		Help: "Open game sessions",
	})
	spins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prize_wheel_spins_total",
		Help: "Landed spins by slice",
	}, []string{labelSlice, labelDemo})
	betCredits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prize_wheel_bet_credits_total",
		Help: "Credits wagered",
	})
	payoutCredits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prize_wheel_payout_credits_total",
		Help: "Credits paid out",
	})
	rtpPct       = newGauge("prize_wheel_rtp_pct", "RTP % since start")
	windowRTPPct = newGauge("prize_wheel_window_rtp_pct", "RTP % over the recent window")
	historyDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prize_wheel_history_dropped_total",
		Help: "Spins not persisted because the history queue was full",
	})
)

func newGauge(name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func SessionOpened()  { sessionsActive.Inc() }
func SessionClosed()  { sessionsActive.Dec() }
func HistoryDropped() { historyDrops.Inc() }

// SpinLanded counts a landed spin with its wager and payout
func SpinLanded(slice int, demo bool, bet, credit int) {
	spins.With(prometheus.Labels{
		labelSlice: strconv.Itoa(slice),
		labelDemo:  strconv.FormatBool(demo),
	}).Inc()
	betCredits.Add(float64(bet))
	payoutCredits.Add(float64(credit))
}

func SetRTP(total, window float64) {
	rtpPct.Set(total)
	windowRTPPct.Set(window)
}
