// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

import (
	"crypto/rand"
	"io"
)

// SigningContext is the sr25519 signing context label of Substrate chains.
var SigningContext = []byte("substrate")

// Context holds the signing state of a client.
type Context struct {
	// SigningContext is the sr25519 signing context label.
	SigningContext []byte
	// Rand is the entropy source of key and mnemonic generation.
	Rand io.Reader
}

// DefaultContext returns the Substrate signing context with the system
// randomness source.
func DefaultContext() Context {
	return Context{
		SigningContext: SigningContext,
		Rand:           rand.Reader,
	}
}

// WithDefaults returns a copy of the context with unset fields defaulted.
func (c Context) WithDefaults() Context {
	if c.SigningContext == nil {
		c.SigningContext = SigningContext
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}
	return c
}
