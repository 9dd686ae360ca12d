// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPrefix is returned when trying to convert a hex-encoded string with no 0x prefix
var ErrNoPrefix = errors.New("could not byteify non 0x prefixed string")

// HexToBytes turns a 0x prefixed hex string into a byte slice.
// An odd number of digits is left padded with a zero.
func HexToBytes(in string) ([]byte, error) {
	if !strings.HasPrefix(in, "0x") {
		return nil, fmt.Errorf("%w: %q", ErrNoPrefix, in)
	}

	in = in[2:]
	if len(in)%2 != 0 {
		in = "0" + in
	}

	return hex.DecodeString(in)
}

// MustHexToBytes turns a 0x prefixed hex string into a byte slice
// it panic if it cannot decode the string
func MustHexToBytes(in string) []byte {
	out, err := HexToBytes(in)
	if err != nil {
		panic(err)
	}
	return out
}

// BytesToHex turns a byte slice into a 0x prefixed hex string
func BytesToHex(in []byte) string {
	return "0x" + hex.EncodeToString(in)
}

// Bytes is a byte slice with a 0x prefixed hex JSON representation.
type Bytes []byte

// MarshalJSON encodes the bytes as a 0x prefixed hex string.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + BytesToHex(b) + `"`), nil
}

// UnmarshalJSON decodes a 0x prefixed hex string.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	decoded, err := HexToBytes(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// String returns the 0x prefixed hex string.
func (b Bytes) String() string {
	return BytesToHex(b)
}
