package ephemqd

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricsNamespace = "ephemq"

	// outcome label values for pop metrics
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Metrics holds the daemon's Prometheus collectors. Queue names are never
// used as label values; names are unbounded.
type Metrics struct {
	messagesPushed prometheus.Counter
	bytesPushed    prometheus.Counter
	pops           *prometheus.CounterVec   // by outcome
	popWait        *prometheus.HistogramVec // by outcome, timed pops only
	waitersActive  prometheus.Gauge
	queues         prometheus.GaugeFunc
	depth          prometheus.GaugeFunc
}

// NewMetrics creates the collectors and registers them with reg. The queue
// and depth gauges are read from r at scrape time.
func NewMetrics(reg prometheus.Registerer, r *Registry) (*Metrics, error) {
	m := &Metrics{
		messagesPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "messages_pushed_total",
			Help:      "Total number of messages pushed",
		}),
		bytesPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "bytes_pushed_total",
			Help:      "Total payload bytes pushed",
		}),
		pops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "pops_total",
			Help:      "Total pop requests by outcome",
		}, []string{"outcome"}),
		popWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "pop_wait_seconds",
			Help:      "Time spent in timed pops by outcome",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		waitersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "waiters_active",
			Help:      "Number of timed pops currently waiting",
		}),
		queues: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "queues",
			Help:      "Number of queues ever created",
		}, func() float64 { return float64(r.Len()) }),
		depth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "messages_queued",
			Help:      "Number of messages currently held across all queues",
		}, func() float64 { return float64(r.TotalDepth()) }),
	}

	err := errors.Join(
		reg.Register(m.messagesPushed),
		reg.Register(m.bytesPushed),
		reg.Register(m.pops),
		reg.Register(m.popWait),
		reg.Register(m.waitersActive),
		reg.Register(m.queues),
		reg.Register(m.depth),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) Pushed(size int) {
	if m == nil {
		return
	}
	m.messagesPushed.Inc()
	m.bytesPushed.Add(float64(size))
}

// Popped records the outcome of a pop. timed distinguishes waits from
// immediate probes; only timed pops are observed in the wait histogram.
func (m *Metrics) Popped(hit bool, timed bool, wait time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeMiss
	if hit {
		outcome = OutcomeHit
	}
	m.pops.WithLabelValues(outcome).Inc()
	if timed {
		m.popWait.WithLabelValues(outcome).Observe(wait.Seconds())
	}
}

func (m *Metrics) IncWaiters() {
	if m == nil {
		return
	}
	m.waitersActive.Inc()
}

func (m *Metrics) DecWaiters() {
	if m == nil {
		return
	}
	m.waitersActive.Dec()
}
