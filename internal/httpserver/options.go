// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package httpserver

import (
	"time"
)

// Option is a functional option for the HTTP server.
type Option func(s *settings)

// settings are the http.Server timeouts and the shutdown grace period.
type settings struct {
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	shutdownTimeout   time.Duration
}

func newSettings(options []Option) settings {
	s := settings{
		readHeaderTimeout: time.Second,
		writeTimeout:      10 * time.Second,
		shutdownTimeout:   3 * time.Second,
	}
	for _, option := range options {
		option(&s)
	}
	return s
}

// ReadHeaderTimeout sets the header read timeout, 1s by default.
func ReadHeaderTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.readHeaderTimeout = timeout }
}

// WriteTimeout sets the response write timeout, 10s by default.
func WriteTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.writeTimeout = timeout }
}

// ShutdownTimeout sets how long connections may drain once the
// context is canceled, 3s by default.
func ShutdownTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.shutdownTimeout = timeout }
}
