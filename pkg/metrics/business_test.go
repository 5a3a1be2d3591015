package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBusinessMetrics(reg)

	m.NotificationReceived("transaction", "ok")
	m.NotificationReceived("transaction", "ok")
	m.NotificationReceived("mbway", "malformed")
	m.Reconciled("updated", time.Now())

	require.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues("transaction", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("mbway", "malformed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.reconciles.WithLabelValues("updated")))
}

func TestBusinessMetrics_ReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewBusinessMetrics(reg)
	second := NewBusinessMetrics(reg)

	first.Reconciled("miss", time.Now())
	require.Equal(t, 1.0, testutil.ToFloat64(second.reconciles.WithLabelValues("miss")))
}

func TestBusinessMetrics_NilIsNoop(t *testing.T) {
	var m *BusinessMetrics
	require.NotPanics(t, func() {
		m.NotificationReceived("generic", "ok")
		m.Reconciled("failed", time.Now())
	})
}
