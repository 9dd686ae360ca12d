// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/ChainSafe/subclient/pkg/scale"
)

const (
	minEraPeriod = 4
	maxEraPeriod = 1 << 16
)

// Era is the validity window of a transaction. The zero value is immortal.
type Era struct {
	period uint64
	phase  uint64
}

// Immortal is an era valid forever.
var Immortal = Era{}

// NewMortalEra returns an era starting at the given block and lasting
// period blocks. The period is rounded up to a power of two within
// [4, 65536] and the phase is quantized the way the runtime decodes it.
func NewMortalEra(current, period uint64) Era {
	period = min(max(period, minEraPeriod), maxEraPeriod)
	if bits.OnesCount64(period) != 1 {
		period = 1 << bits.Len64(period)
		period = min(period, maxEraPeriod)
	}

	quantizeFactor := max(period>>12, 1)
	phase := current % period / quantizeFactor * quantizeFactor
	return Era{period: period, phase: phase}
}

// IsImmortal returns true for the immortal era.
func (e Era) IsImmortal() bool { return e.period == 0 }

// Period returns the length of the era in blocks, zero if immortal.
func (e Era) Period() uint64 { return e.period }

// Phase returns the offset of the era start within the period.
func (e Era) Phase() uint64 { return e.phase }

// Birth returns the first block of the era relative to current.
// The hash of that block is signed as the era checkpoint.
func (e Era) Birth(current uint64) uint64 {
	if e.IsImmortal() {
		return 0
	}
	return (max(current, e.phase)-e.phase)/e.period*e.period + e.phase
}

// Death returns the first block at which the era is no longer valid.
func (e Era) Death(current uint64) uint64 {
	if e.IsImmortal() {
		return math.MaxUint64
	}
	return e.Birth(current) + e.period
}

// Encode returns the one byte immortal or two bytes mortal encoding.
func (e Era) Encode() []byte {
	if e.IsImmortal() {
		return []byte{0}
	}
	quantizeFactor := max(e.period>>12, 1)
	low := min(max(uint64(bits.TrailingZeros64(e.period))-1, 1), 15)
	encoded := low | (e.phase/quantizeFactor)<<4
	return []byte{byte(encoded), byte(encoded >> 8)}
}

// DecodeEra decodes an era and returns the number of bytes read.
func DecodeEra(data []byte) (era Era, n int, err error) {
	if len(data) == 0 {
		return Era{}, 0, fmt.Errorf("%w: empty input", ErrInvalidEra)
	}
	if data[0] == 0 {
		return Immortal, 1, nil
	}
	if len(data) < 2 {
		return Era{}, 0, fmt.Errorf("%w: truncated mortal era", ErrInvalidEra)
	}

	encoded := uint64(data[0]) | uint64(data[1])<<8
	period := uint64(2) << (encoded % 16)
	quantizeFactor := max(period>>12, 1)
	phase := (encoded >> 4) * quantizeFactor
	if period < minEraPeriod || phase >= period {
		return Era{}, 0, fmt.Errorf("%w: period %d phase %d", ErrInvalidEra, period, phase)
	}
	return Era{period: period, phase: phase}, 2, nil
}

// MarshalSCALE implements scale.Marshaler.
func (e Era) MarshalSCALE() ([]byte, error) {
	return e.Encode(), nil
}

// UnmarshalSCALE implements scale.Unmarshaler.
func (e *Era) UnmarshalSCALE(reader io.Reader) error {
	decoder := scale.NewDecoder(reader)
	first, err := decoder.ReadByte()
	if err != nil {
		return err
	}
	data := []byte{first}
	if first != 0 {
		second, err := decoder.ReadByte()
		if err != nil {
			return err
		}
		data = append(data, second)
	}
	*e, _, err = DecodeEra(data)
	return err
}

func (e Era) String() string {
	if e.IsImmortal() {
		return "immortal"
	}
	return fmt.Sprintf("mortal(period=%d, phase=%d)", e.period, e.phase)
}
