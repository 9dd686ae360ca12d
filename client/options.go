// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChainSafe/subclient/internal/database"
	"github.com/ChainSafe/subclient/lib/crypto"
)

// Option is a functional option for New.
type Option func(s *settings)

type settings struct {
	registerer prometheus.Registerer
	database   database.Database
	crypto     crypto.Context
}

// Registerer registers the RPC client collectors on the registerer.
func Registerer(registerer prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = registerer
	}
}

// Database stores cached metadata in db instead of the database
// configured by the cache path. The client does not close it.
func Database(db database.Database) Option {
	return func(s *settings) {
		s.database = db
	}
}

// CryptoContext sets the signing context and randomness source.
func CryptoContext(ctx crypto.Context) Option {
	return func(s *settings) {
		s.crypto = ctx
	}
}
