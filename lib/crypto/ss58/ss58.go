// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package ss58 encodes and decodes SS58 account addresses.
package ss58

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// Well known address formats.
const (
	PolkadotFormat uint16 = 0
	KusamaFormat   uint16 = 2
	// SubstrateFormat is the generic Substrate format.
	SubstrateFormat uint16 = 42
	// MaxFormat is the largest encodable format.
	MaxFormat uint16 = 16383
)

var (
	ErrFormat   = fmt.Errorf("%w: invalid ss58 address format", errkind.ErrInvalidParams)
	ErrAddress  = fmt.Errorf("%w: invalid ss58 address", errkind.ErrInvalidParams)
	ErrChecksum = fmt.Errorf("%w: invalid ss58 checksum", errkind.ErrInvalidParams)
)

var checksumPrefix = []byte("SS58PRE")

func checksum(data []byte) []byte {
	sum := blake2b.Sum512(append(append([]byte{}, checksumPrefix...), data...))
	return sum[:]
}

// checksumLength returns the checksum length for a payload length.
func checksumLength(payload int) (int, bool) {
	switch payload {
	case 1, 2, 4, 8:
		return 1, true
	case 32, 33:
		return 2, true
	default:
		return 0, false
	}
}

func encodeFormat(format uint16) ([]byte, error) {
	switch {
	case format < 64:
		return []byte{byte(format)}, nil
	case format <= MaxFormat:
		first := byte((format&0b0000_0000_1111_1100)>>2) | 0b0100_0000
		second := byte(format>>8) | byte(format&0b0000_0000_0000_0011)<<6
		return []byte{first, second}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrFormat, format)
	}
}

// Encode returns the SS58 address of the account id for the format.
func Encode(accountID []byte, format uint16) (string, error) {
	n, ok := checksumLength(len(accountID))
	if !ok {
		return "", fmt.Errorf("%w: account id of %d bytes", ErrAddress, len(accountID))
	}
	prefix, err := encodeFormat(format)
	if err != nil {
		return "", err
	}

	data := append(prefix, accountID...)
	data = append(data, checksum(data)[:n]...)
	return base58.Encode(data), nil
}

// Decode returns the account id and format of the SS58 address.
func Decode(address string) (accountID []byte, format uint16, err error) {
	data := base58.Decode(address)
	if len(data) < 2 {
		return nil, 0, fmt.Errorf("%w: %q", ErrAddress, address)
	}

	prefixLength := 1
	switch {
	case data[0] < 64:
		format = uint16(data[0])
	case data[0] < 128:
		lower := (data[0] << 2) | (data[1] >> 6)
		upper := data[1] & 0b0011_1111
		format = uint16(lower) | uint16(upper)<<8
		prefixLength = 2
	default:
		return nil, 0, fmt.Errorf("%w: prefix byte %d", ErrFormat, data[0])
	}

	payload := len(data) - prefixLength
	var n int
	for _, candidate := range []int{2, 1} {
		if l, ok := checksumLength(payload - candidate); ok && l == candidate {
			n = candidate
			break
		}
	}
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: %q has %d bytes", ErrAddress, address, len(data))
	}

	body := data[:len(data)-n]
	if !bytes.Equal(checksum(body)[:n], data[len(data)-n:]) {
		return nil, 0, fmt.Errorf("%w: %q", ErrChecksum, address)
	}
	return bytes.Clone(body[prefixLength:]), format, nil
}
