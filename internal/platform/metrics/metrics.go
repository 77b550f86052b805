// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus registry of a process and the collectors
the identity service records into.

Usage:

	registry := metrics.NewRegistry()
	recorder := metrics.New(registry)
	router.Handle("/metrics", metrics.Handler(registry))

A nil [*Metrics] is valid and records nothing, so components can be built
without observability in tests.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "epiclogue"

// Outcome labels shared by the auth and mail collectors.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics groups the custom collectors of the service.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	AuthEvents   *prometheus.CounterVec
	MailTasks    *prometheus.CounterVec
}

// NewRegistry returns an isolated registry preloaded with the Go runtime and
// process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// New creates the service collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_operations_total",
				Help:      "Total number of account lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		MailTasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mail_tasks_total",
				Help:      "Total number of mail tasks by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.AuthEvents, m.MailTasks)

	return m
}

// Handler exposes reg in the Prometheus text and OpenMetrics formats.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuth counts one lifecycle operation. result is "success" or an error kind.
func (m *Metrics) RecordAuth(operation, result string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(operation, result).Inc()
}

// RecordMail counts one processed or enqueued mail task.
func (m *Metrics) RecordMail(kind, outcome string) {
	if m == nil {
		return
	}
	m.MailTasks.WithLabelValues(kind, outcome).Inc()
}
