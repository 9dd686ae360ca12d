// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Uint128 is an unsigned 128 bits integer, encoded as 16 little endian
// bytes. Balances are Uint128 on most chains.
type Uint128 struct {
	hi, lo uint64
}

// MaxUint128 is the largest Uint128.
var MaxUint128 = Uint128{hi: ^uint64(0), lo: ^uint64(0)}

// NewUint128 converts a non negative *big.Int of at most 128 bits.
func NewUint128(n *big.Int) (Uint128, error) {
	if n == nil || n.Sign() < 0 || n.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("%w: %v out of uint128 range", ErrUnsupportedType, n)
	}
	var be [16]byte
	n.FillBytes(be[:])
	return Uint128{
		hi: binary.BigEndian.Uint64(be[:8]),
		lo: binary.BigEndian.Uint64(be[8:]),
	}, nil
}

// MustNewUint128 is NewUint128 panicking on error.
func MustNewUint128(n *big.Int) Uint128 {
	u, err := NewUint128(n)
	if err != nil {
		panic(err)
	}
	return u
}

func uint128FromBytes(le []byte) Uint128 {
	return Uint128{
		hi: binary.LittleEndian.Uint64(le[8:16]),
		lo: binary.LittleEndian.Uint64(le[:8]),
	}
}

// Bytes returns the 16 little endian bytes of u.
func (u Uint128) Bytes() []byte {
	b := binary.LittleEndian.AppendUint64(make([]byte, 0, 16), u.lo)
	return binary.LittleEndian.AppendUint64(b, u.hi)
}

func (u Uint128) BigInt() *big.Int {
	n := new(big.Int).SetUint64(u.hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(u.lo))
}

func (u Uint128) String() string {
	return u.BigInt().String()
}

// Cmp returns -1, 0 or 1 when u is lower than, equal to or greater than v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.hi != v.hi:
		if u.hi < v.hi {
			return -1
		}
		return 1
	case u.lo < v.lo:
		return -1
	case u.lo > v.lo:
		return 1
	}
	return 0
}
