package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// SchedulerCollector bundles Prometheus metrics for the MAC scheduling
// core. It satisfies core.MetricsRecorder so the engine can drive the
// counters directly from its allocation loop without depending on
// Prometheus itself.
type SchedulerCollector struct {
	gatherer prometheus.Gatherer

	GrantsTotal      *prometheus.CounterVec
	UESkippedTotal   *prometheus.CounterVec
	StrideClampTotal prometheus.Counter
	ScheduleDur      *prometheus.HistogramVec
	ActiveUEs        prometheus.Gauge
}

// NewSchedulerCollector registers scheduler metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSchedulerCollector(reg prometheus.Registerer) (*SchedulerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	grants := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mac_grants_total",
		Help: "Total number of scheduling grants issued, labeled by direction.",
	}, []string{"direction"})
	grants, err := register(reg, grants, "mac_grants_total")
	if err != nil {
		return nil, err
	}

	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mac_ues_skipped_total",
		Help: "UEs skipped during a scheduling pass, labeled by direction and reason.",
	}, []string{"direction", "reason"})
	skipped, err = register(reg, skipped, "mac_ues_skipped_total")
	if err != nil {
		return nil, err
	}

	clamps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mac_stride_clamps_total",
		Help: "Times the uplink RBG stride degenerated to zero and was clamped to 1.",
	})
	clamps, err = register(reg, clamps, "mac_stride_clamps_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mac_schedule_duration_seconds",
		Help:    "Duration of one scheduling pass, labeled by direction.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"direction"})
	durations, err = register(reg, durations, "mac_schedule_duration_seconds")
	if err != nil {
		return nil, err
	}

	activeUEs, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mac_cell_active_ues",
		Help: "Number of UEs registered in the cell.",
	}), "mac_cell_active_ues")
	if err != nil {
		return nil, err
	}

	return &SchedulerCollector{
		gatherer:         gatherer,
		GrantsTotal:      grants,
		UESkippedTotal:   skipped,
		StrideClampTotal: clamps,
		ScheduleDur:      durations,
		ActiveUEs:        activeUEs,
	}, nil
}

// GrantIssued satisfies core.MetricsRecorder.
func (c *SchedulerCollector) GrantIssued(dir model.Direction) {
	if c == nil || c.GrantsTotal == nil {
		return
	}
	c.GrantsTotal.WithLabelValues(dir.String()).Inc()
}

// UESkipped satisfies core.MetricsRecorder.
func (c *SchedulerCollector) UESkipped(dir model.Direction, reason string) {
	if c == nil || c.UESkippedTotal == nil {
		return
	}
	c.UESkippedTotal.WithLabelValues(dir.String(), reason).Inc()
}

// StrideClamped satisfies core.MetricsRecorder.
func (c *SchedulerCollector) StrideClamped() {
	if c == nil || c.StrideClampTotal == nil {
		return
	}
	c.StrideClampTotal.Inc()
}

// ScheduleDuration satisfies core.MetricsRecorder.
func (c *SchedulerCollector) ScheduleDuration(dir model.Direction, d time.Duration) {
	if c == nil || c.ScheduleDur == nil {
		return
	}
	c.ScheduleDur.WithLabelValues(dir.String()).Observe(d.Seconds())
}

// SetActiveUEs records the cell's UE population size.
func (c *SchedulerCollector) SetActiveUEs(n int) {
	if c == nil || c.ActiveUEs == nil {
		return
	}
	c.ActiveUEs.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SchedulerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register tolerates double registration: when the collector already
// exists with the same descriptor, the existing instance is returned so
// repeated constructor calls share one set of series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var zero C
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}
