package envcors

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "envcors"

// Metrics counts CORS decisions.
// A nil *Metrics counts nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
	narrowed  prometheus.Counter
}

// NewMetrics creates the counters of a [Metrics] and registers them with reg,
// if reg is non-nil. Counters that reg already holds are reused, so that
// several factories can share a registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decisions_total",
			Help:      "Number of CORS decisions, by outcome and kind of exchange.",
		}, []string{"outcome", "kind"}),
		narrowed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wildcard_narrowed_total",
			Help:      "Number of CORS decisions in which the environment replaced the wildcard origin.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.decisions, err = register(reg, m.decisions); err != nil {
		return nil, err
	}
	if m.narrowed, err = register(reg, m.narrowed); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (m *Metrics) observe(dec *Decision, preflight bool) {
	if m == nil {
		return
	}
	kind := "actual"
	if preflight {
		kind = "preflight"
	}
	m.decisions.WithLabelValues(dec.Outcome.String(), kind).Inc()
	if dec.Narrowed {
		m.narrowed.Inc()
	}
}
