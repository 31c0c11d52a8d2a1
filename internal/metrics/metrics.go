// Package metrics exposes Prometheus collectors for the trading engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder tracks cycle outcomes and collaborator availability.
type Recorder struct {
	cyclesTotal     *prometheus.CounterVec
	tradesSimulated prometheus.Counter
	signalsTotal    prometheus.Counter
	regimeGauge     *prometheus.GaugeVec
	collaboratorUp  *prometheus.GaugeVec
	cycleDuration   prometheus.Histogram
}

// New creates a recorder registered against reg. Passing a fresh registry
// keeps tests independent; the server wires the same registry into the
// /metrics handler.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		cyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexflow_cycles_total",
				Help: "Trading cycles by terminal status",
			},
			[]string{"status"},
		),
		tradesSimulated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "indexflow_trades_simulated_total",
				Help: "Trade records produced by the execution simulator",
			},
		),
		signalsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "indexflow_signals_generated_total",
				Help: "Strategy signals above the execution threshold",
			},
		),
		regimeGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexflow_market_regime",
				Help: "Current market regime (1 for the active label)",
			},
			[]string{"regime"},
		),
		collaboratorUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexflow_collaborator_up",
				Help: "Collaborator availability (1 available, 0 degraded)",
			},
			[]string{"collaborator"},
		),
		cycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "indexflow_cycle_duration_seconds",
				Help:    "End-to-end trading cycle duration",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// CycleFinished records a completed cycle.
func (r *Recorder) CycleFinished(status string, seconds float64) {
	r.cyclesTotal.WithLabelValues(status).Inc()
	r.cycleDuration.Observe(seconds)
}

// TradeSimulated increments the trade counter.
func (r *Recorder) TradeSimulated() {
	r.tradesSimulated.Inc()
}

// SignalGenerated increments the signal counter.
func (r *Recorder) SignalGenerated() {
	r.signalsTotal.Inc()
}

// SetRegime marks the active regime label.
func (r *Recorder) SetRegime(regime string) {
	r.regimeGauge.Reset()
	r.regimeGauge.WithLabelValues(regime).Set(1)
}

// SetCollaborator records a collaborator capability flag.
func (r *Recorder) SetCollaborator(name string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	r.collaboratorUp.WithLabelValues(name).Set(v)
}
