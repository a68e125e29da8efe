// Package metrics holds the Prometheus collectors of the API. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration   *prometheus.HistogramVec
	RegistrationsTotal    *prometheus.CounterVec
	RegistrationDecisions *prometheus.CounterVec
	AccessDenials         *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RegistrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_submitted_total",
			Help:      "Registrations submitted, by kind",
		}, []string{"kind"}),
		RegistrationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_decisions_total",
			Help:      "Admin approve/reject decisions, by kind",
		}, []string{"kind", "decision"}),
		AccessDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_guard_denials_total",
			Help:      "Requests rewritten to not-found by the route guard, by area",
		}, []string{"area"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.RegistrationDecisions,
		m.AccessDenials,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) RegistrationSubmitted(kind string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RegistrationDecided(kind, decision string) {
	if m == nil {
		return
	}
	m.RegistrationDecisions.WithLabelValues(kind, decision).Inc()
}

func (m *Metrics) AccessDenied(area string) {
	if m == nil {
		return
	}
	m.AccessDenials.WithLabelValues(area).Inc()
}
