// Package metrics exposes Prometheus counters for the tracker. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the tracker's counters.
type Metrics struct {
	foodsLogged *prometheus.CounterVec
	resets      prometheus.Counter
	summaries   *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		foodsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Name:      "foods_logged_total",
			Help:      "Food entries appended to daily logs.",
		}, []string{"source"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Name:      "log_resets_total",
			Help:      "Daily logs reset by users.",
		}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Name:      "summaries_total",
			Help:      "Summaries computed, by period.",
		}, []string{"period"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(m.foodsLogged, m.resets, m.summaries, m.requests)
	return m
}

// FoodLogged counts an appended entry; source is "custom" or "catalog".
func (m *Metrics) FoodLogged(source string) {
	if m == nil {
		return
	}
	m.foodsLogged.WithLabelValues(source).Inc()
}

// LogReset counts a daily log reset.
func (m *Metrics) LogReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}

// SummaryComputed counts a summary for period.
func (m *Metrics) SummaryComputed(period string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(period).Inc()
}

// RequestServed counts an HTTP request.
func (m *Metrics) RequestServed(method, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
}
