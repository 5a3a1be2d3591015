package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var notificationTotal = &Metric{
	ID:          "notificationTotal",
	Name:        "easypay_notification_total",
	Description: "Webhook notifications received, partitioned by kind and outcome.",
	Type:        "counter_vec",
	Args:        []string{"kind", "outcome"},
}

var reconcileTotal = &Metric{
	ID:          "reconcileTotal",
	Name:        "easypay_reconcile_total",
	Description: "Reconciliation attempts, partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

// BusinessMetrics records notification and reconciliation outcomes.
// A nil *BusinessMetrics is valid and records nothing.
type BusinessMetrics struct {
	notifications *prometheus.CounterVec
	reconciles    *prometheus.CounterVec
	process       *prometheus.HistogramVec
}

func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	return &BusinessMetrics{
		notifications: register(reg, NewMetric(notificationTotal, "")).(*prometheus.CounterVec),
		reconciles:    register(reg, NewMetric(reconcileTotal, "")).(*prometheus.CounterVec),
		process:       register(reg, NewMetric(MetricsBusinessProcess, "")).(*prometheus.HistogramVec),
	}
}

// NewDefaultBusinessMetrics registers against the global prometheus registry
// served by the gin middleware.
func NewDefaultBusinessMetrics() *BusinessMetrics {
	return NewBusinessMetrics(prometheus.DefaultRegisterer)
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *BusinessMetrics) NotificationReceived(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *BusinessMetrics) Reconciled(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(outcome).Inc()
	m.process.WithLabelValues("reconcile", outcome).Observe(MillisecondsSince(start))
}

// Module exposes BusinessMetrics via Fx.
var Module = fx.Options(
	fx.Provide(NewDefaultBusinessMetrics),
)
