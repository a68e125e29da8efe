package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("alumni")

	m.RegistrationSubmitted("alumni")
	m.RegistrationDecided("company", "approved")
	m.RegistrationDecided("company", "approved")
	m.AccessDenied("admin")
	m.ObserveRequest("GET", "/api/health", 200, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues("alumni")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationDecisions.WithLabelValues("company", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDenials.WithLabelValues("admin")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RegistrationSubmitted("alumni")
		m.RegistrationDecided("alumni", "rejected")
		m.AccessDenied("profile")
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		_ = m.Handler()
	})
}
