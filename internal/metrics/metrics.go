package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loginsight_webhook"

// Webhook outcomes recorded on RequestsTotal.
const (
	OutcomeDispatched      = "dispatched"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeInvalid         = "invalid"
	OutcomeNotifierFailed  = "notifier_failed"
)

// Collector holds the service's prometheus instruments. A nil *Collector is
// valid and records nothing.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	ChatFailures     prometheus.Counter
	AuditFailures    *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Webhook requests by outcome.",
		}, []string{"outcome"}),
		ChatFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_failures_total",
			Help:      "Chat sends that failed after all retries.",
		}),
		AuditFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audit rows that could not be written, by reason.",
		}, []string{"reason"}),
		DispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent handling an authenticated webhook event.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) ObserveRequest(outcome string) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveChatFailure() {
	if c == nil {
		return
	}
	c.ChatFailures.Inc()
}

func (c *Collector) ObserveAuditFailure(reason string) {
	if c == nil {
		return
	}
	c.AuditFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) ObserveDispatch(start time.Time) {
	if c == nil {
		return
	}
	c.DispatchDuration.Observe(time.Since(start).Seconds())
}
