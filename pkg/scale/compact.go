// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"slices"
)

const (
	compactSingleByteMax = 1<<6 - 1
	compactTwoByteMax    = 1<<14 - 1
	compactFourByteMax   = 1<<30 - 1
	// largest compact integer is 67 bytes long.
	compactMaxBytes = 67
)

// CompactUint returns the compact encoding of n.
func CompactUint(n uint64) []byte {
	switch {
	case n <= compactSingleByteMax:
		return []byte{byte(n) << 2}
	case n <= compactTwoByteMax:
		return binary.LittleEndian.AppendUint16(nil, uint16(n<<2)|0b01)
	case n <= compactFourByteMax:
		return binary.LittleEndian.AppendUint32(nil, uint32(n<<2)|0b10)
	}

	le := binary.LittleEndian.AppendUint64(nil, n)
	numBytes := 8
	for le[numBytes-1] == 0 {
		numBytes--
	}
	out := make([]byte, 0, numBytes+1)
	out = append(out, byte(numBytes-4)<<2|0b11)
	return append(out, le[:numBytes]...)
}

// CompactBigInt returns the compact encoding of n.
func CompactBigInt(n *big.Int) ([]byte, error) {
	switch {
	case n == nil:
		return nil, fmt.Errorf("%w: nil *big.Int", ErrUnsupportedType)
	case n.Sign() < 0:
		return nil, fmt.Errorf("%w: %s", ErrNegativeCompact, n)
	case n.IsUint64():
		return CompactUint(n.Uint64()), nil
	}

	be := n.Bytes()
	if len(be) > compactMaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrCompactTooLarge, len(be))
	}
	out := make([]byte, 0, len(be)+1)
	out = append(out, byte(len(be)-4)<<2|0b11)
	slices.Reverse(be)
	return append(out, be...), nil
}

// readCompact reads a compact integer.
func (d *Decoder) readCompact() (*big.Int, error) {
	first, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch first & 0b11 {
	case 0b00:
		return big.NewInt(int64(first >> 2)), nil
	case 0b01:
		next, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		value := binary.LittleEndian.Uint16([]byte{first, next}) >> 2
		return big.NewInt(int64(value)), nil
	case 0b10:
		rest, err := d.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		value := binary.LittleEndian.Uint32(append([]byte{first}, rest...)) >> 2
		return big.NewInt(int64(value)), nil
	default:
		numBytes := int(first>>2) + 4
		le, err := d.ReadBytes(numBytes)
		if err != nil {
			return nil, err
		}
		slices.Reverse(le)
		return new(big.Int).SetBytes(le), nil
	}
}
