// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagepresence

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation label values.
const (
	operationIsUploaded = "is_uploaded"
	operationQueryURL   = "query_url"
)

// Outcome label values.
const (
	outcomeUploaded  = "uploaded"
	outcomeAbsent    = "absent"
	outcomeResolved  = "resolved"
	outcomeNoSession = "no_session"
	outcomeNoBackend = "no_backend"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

// Metrics holds the Prometheus collectors for presence requests.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with
// registerer. Registering twice with the same registerer fails.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "chatimage",
				Subsystem: "presence",
				Name:      "requests_total",
				Help:      "Presence and URL requests by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "chatimage",
				Subsystem: "presence",
				Name:      "request_duration_seconds",
				Help:      "Time spent in the backend per presence or URL request.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "chatimage",
				Subsystem: "presence",
				Name:      "requests_in_flight",
				Help:      "Presence and URL requests currently waiting on the backend.",
			},
			[]string{"operation"},
		),
	}
	for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration, metrics.inFlight} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("imagepresence: registering metrics: %w", err)
		}
	}
	return metrics, nil
}

// The methods below accept a nil receiver so the Service can call them
// unconditionally.

func (m *Metrics) begin(operation string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(operation).Inc()
}

// done pairs with begin. Callers defer it so a panicking backend still
// leaves the in-flight gauge balanced.
func (m *Metrics) done(operation string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(operation).Dec()
}

func (m *Metrics) observe(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) count(operation, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
}
