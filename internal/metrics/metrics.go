// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package metrics serves Prometheus collectors over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChainSafe/subclient/internal/httpserver"
	"github.com/ChainSafe/subclient/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const stopTimeout = 30 * time.Second

var logger log.LeveledLogger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

var errExitedUnexpectedly = errors.New("metrics server exited unexpectedly")

// NewRegistry returns a registry with the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return registry
}

// Server is a metrics http server
type Server struct {
	cancel context.CancelFunc
	server *httpserver.Server
	done   chan error
}

// NewServer creates a server exposing the gatherer on /metrics.
func NewServer(address string, gatherer prometheus.Gatherer) (s *Server) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		server: httpserver.New("metrics", address, m, logger),
	}
}

// Start starts the server and returns once it listens.
func (s *Server) Start() (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error, 1)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("metrics available at http://%s/metrics", s.server.GetAddress())
		return nil
	case err := <-s.done:
		cancel()
		if err != nil {
			return err
		}
		return errExitedUnexpectedly
	}
}

// Address returns the listening address, once started.
func (s *Server) Address() string {
	return s.server.GetAddress()
}

// Stop shuts the server down.
func (s *Server) Stop() (err error) {
	s.cancel()
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case err := <-s.done:
		return err
	case <-timer.C:
		return fmt.Errorf("metrics server exit timeout after %s", stopTimeout)
	}
}
