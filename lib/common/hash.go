// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Hash is a 32 bytes blake2b digest of a block, an extrinsic or a
// storage value. It is encoded as 0x prefixed hex in JSON and TOML.
type Hash [32]byte

// EmptyHash is the zero value hash.
var EmptyHash = Hash{}

// ErrHashLength is returned when a hex string does not hold 32 bytes.
var ErrHashLength = errors.New("hash must be 32 bytes")

// HexToHash decodes a 0x prefixed hex string holding 32 bytes.
func HexToHash(in string) (h Hash, err error) {
	b, err := HexToBytes(in)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("%w: got %d bytes", ErrHashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// MustHexToHash is HexToHash panicking on error, for constants and tests.
func MustHexToHash(in string) Hash {
	h, err := HexToHash(in)
	if err != nil {
		panic(err)
	}
	return h
}

// ToBytes returns a copy of the hash bytes.
func (h Hash) ToBytes() []byte {
	return append([]byte(nil), h[:]...)
}

func (h Hash) IsEmpty() bool { return h == EmptyHash }

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Short abbreviates the hash to its first and last 4 bytes, for logs.
func (h Hash) Short() string {
	return "0x" + hex.EncodeToString(h[:4]) + "..." + hex.EncodeToString(h[28:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) (err error) {
	*h, err = HexToHash(string(text))
	return err
}
