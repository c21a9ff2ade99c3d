package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors ledger traffic into Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	acquiredTotal *prometheus.CounterVec
	releasedTotal *prometheus.CounterVec
	liveGauge     *prometheus.GaugeVec
}

// NewMetrics builds the collectors for one boundary and registers them on reg.
// reg may be nil, in which case the collectors are usable but unregistered.
// Collectors already registered for the same boundary are reused.
func NewMetrics(reg prometheus.Registerer, boundary string) (*Metrics, error) {
	labels := prometheus.Labels{"boundary": boundary}

	m := &Metrics{
		acquiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "omnibus",
			Name:        "allocations_total",
			Help:        "Values transferred out across the boundary.",
			ConstLabels: labels,
		}, []string{"kind"}),
		releasedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "omnibus",
			Name:        "releases_total",
			Help:        "Transferred values handed back to their release operation.",
			ConstLabels: labels,
		}, []string{"kind"}),
		liveGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "omnibus",
			Name:        "live_allocations",
			Help:        "Transferred values not yet released.",
			ConstLabels: labels,
		}, []string{"kind"}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.acquiredTotal, err = register(reg, m.acquiredTotal); err != nil {
		return nil, err
	}
	if m.releasedTotal, err = register(reg, m.releasedTotal); err != nil {
		return nil, err
	}
	if m.liveGauge, err = register(reg, m.liveGauge); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Acquired records one outward transfer of kind.
func (m *Metrics) Acquired(kind Kind) { m.acquired(kind) }

// Released records one release of kind.
func (m *Metrics) Released(kind Kind) { m.released(kind) }

// SetLive sets the live gauge for kind to n.
func (m *Metrics) SetLive(kind Kind, n int) {
	if m == nil {
		return
	}
	m.liveGauge.WithLabelValues(string(kind)).Set(float64(n))
}

func (m *Metrics) acquired(kind Kind) {
	if m == nil {
		return
	}
	m.acquiredTotal.WithLabelValues(string(kind)).Inc()
	m.liveGauge.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) released(kind Kind) {
	if m == nil {
		return
	}
	m.releasedTotal.WithLabelValues(string(kind)).Inc()
	m.liveGauge.WithLabelValues(string(kind)).Dec()
}

// AcquiredTotal returns the acquire counter for kind.
func (m *Metrics) AcquiredTotal(kind Kind) prometheus.Counter {
	return m.acquiredTotal.WithLabelValues(string(kind))
}

// ReleasedTotal returns the release counter for kind.
func (m *Metrics) ReleasedTotal(kind Kind) prometheus.Counter {
	return m.releasedTotal.WithLabelValues(string(kind))
}

// LiveGauge returns the live allocation gauge for kind.
func (m *Metrics) LiveGauge(kind Kind) prometheus.Gauge {
	return m.liveGauge.WithLabelValues(string(kind))
}
