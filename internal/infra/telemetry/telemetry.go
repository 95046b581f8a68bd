package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider holds the Prometheus collectors exposed on /metrics.
type Provider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginsTotal     *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// Attach registers the service collectors on the given registerer. Passing
// nil uses the default registry.
func Attach(reg prometheus.Registerer) (*Provider, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	provider := &Provider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "account",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "account",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "account",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "account",
			Name:      "active_sessions",
			Help:      "Approximate number of users holding a live refresh token.",
		}),
	}

	return provider, nil
}

// ObserveRequest records one completed HTTP request.
func (p *Provider) ObserveRequest(method, route string, status int, seconds float64) {
	if p == nil {
		return
	}
	statusLabel := fmt.Sprintf("%d", status)
	p.requestsTotal.WithLabelValues(method, route, statusLabel).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveLogin records a login attempt outcome, "success" or "failure".
func (p *Provider) ObserveLogin(outcome string) {
	if p == nil {
		return
	}
	p.loginsTotal.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the live session gauge.
func (p *Provider) SessionOpened() {
	if p != nil {
		p.activeSessions.Inc()
	}
}

// SessionClosed decrements the live session gauge.
func (p *Provider) SessionClosed() {
	if p != nil {
		p.activeSessions.Dec()
	}
}
