// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "subclient_rpc"

// metrics are the client collectors. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	if registerer == nil {
		return nil, nil //nolint:nilnil
	}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Number of JSON-RPC requests sent, by method.",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Number of failed JSON-RPC requests, by method.",
		}, []string{"method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC request latency, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "requests_in_flight",
			Help:      "Number of JSON-RPC requests awaiting a response.",
		}),
	}

	var err error
	m.requests, err = register(registerer, m.requests)
	if err != nil {
		return nil, err
	}
	m.errors, err = register(registerer, m.errors)
	if err != nil {
		return nil, err
	}
	m.latency, err = register(registerer, m.latency)
	if err != nil {
		return nil, err
	}
	m.inFlight, err = register(registerer, m.inFlight)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses the collector already registered by another client.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	err := registerer.Register(collector)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(T)
		if ok {
			return existing, nil
		}
	}
	return collector, err
}

// begin records a request start and returns the function recording its end.
func (m *metrics) begin(method string) (end func(err error)) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	m.requests.WithLabelValues(method).Inc()
	m.inFlight.Inc()
	return func(err error) {
		m.inFlight.Dec()
		m.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if err != nil {
			m.errors.WithLabelValues(method).Inc()
		}
	}
}
