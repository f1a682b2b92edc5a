package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus метрики планировщика.
type Metrics struct {
	// Cycles — количество циклов claim-and-process по окну и исходу.
	Cycles *prometheus.CounterVec

	// TickDuration — длительность тика целиком.
	TickDuration prometheus.Histogram

	// TicksSkipped — тики, пропущенные из-за незавершённого предыдущего.
	TicksSkipped prometheus.Counter

	// Bootstrap — результаты seed: inserted, skipped, failed.
	Bootstrap *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики в reg.
// В тестах передаётся prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifs",
			Name:      "claim_cycles_total",
			Help:      "Claim-and-process cycles by window and outcome.",
		}, []string{"window", "outcome"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ifs",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a scheduler tick across all windows.",
			Buckets:   prometheus.DefBuckets,
		}),
		TicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ifs",
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because the previous tick was still running.",
		}),
		Bootstrap: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifs",
			Name:      "bootstrap_total",
			Help:      "Seed attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Cycles, m.TickDuration, m.TicksSkipped, m.Bootstrap)
	return m
}

// ObserveCycle увеличивает счётчик циклов. Безопасен для nil.
func (m *Metrics) ObserveCycle(window, outcome string) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(window, outcome).Inc()
}

// ObserveTick записывает длительность тика. Безопасен для nil.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(d.Seconds())
}

// ObserveSkip учитывает пропущенный тик. Безопасен для nil.
func (m *Metrics) ObserveSkip() {
	if m == nil {
		return
	}
	m.TicksSkipped.Inc()
}

// ObserveBootstrap учитывает попытку seed. Безопасен для nil.
func (m *Metrics) ObserveBootstrap(result string) {
	if m == nil {
		return
	}
	m.Bootstrap.WithLabelValues(result).Inc()
}
