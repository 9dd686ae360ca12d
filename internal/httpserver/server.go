// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package httpserver runs an http.Handler until its context is canceled.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// Logger is the logger interface accepted by the server.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Server is an HTTP server with a name used in its logs.
type Server struct {
	name       string
	address    string
	addressSet chan struct{}
	addressMu  sync.RWMutex
	handler    http.Handler
	logger     Logger
	settings   settings
}

// New creates a server listening on address once run.
// An address with port 0 gets a port assigned by the OS,
// see GetAddress.
func New(name, address string, handler http.Handler,
	logger Logger, options ...Option) *Server {
	return &Server{
		name:       name,
		address:    address,
		addressSet: make(chan struct{}),
		handler:    handler,
		logger:     logger,
		settings:   newSettings(options),
	}
}

// GetAddress blocks until the server listens and returns its address.
func (s *Server) GetAddress() (address string) {
	<-s.addressSet
	s.addressMu.RLock()
	defer s.addressMu.RUnlock()
	return s.address
}

// Run listens and serves until ctx is canceled. It closes ready once
// listening and sends the final error, nil after a clean shutdown, on done.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.settings.readHeaderTimeout,
		WriteTimeout:      s.settings.writeTimeout,
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		close(s.addressSet)
		done <- fmt.Errorf("%s server: %w", s.name, err)
		return
	}

	s.addressMu.Lock()
	s.address = listener.Addr().String()
	s.addressMu.Unlock()
	close(s.addressSet)

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Warn(s.name + " http server shutting down: " + ctx.Err().Error())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.shutdownTimeout)
		defer cancel()
		shutdownDone <- server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(s.name + " http server listening on " + s.GetAddress())
	close(ready)

	err = server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		// serve failed before any shutdown was requested
		s.logger.Error(s.name + " http server failed: " + err.Error())
		done <- fmt.Errorf("%s server: %w", s.name, err)
		return
	}

	err = <-shutdownDone
	if err != nil {
		err = fmt.Errorf("%s server shutdown: %w", s.name, err)
	}
	done <- err
}
