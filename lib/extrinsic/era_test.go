// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"errors"
	"math"
	"testing"

	ctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	gsrpccodec "github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/ChainSafe/subclient/pkg/scale"
)

func Test_NewMortalEra(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		current uint64
		period  uint64
		era     Era
		encoded []byte
	}{
		"power_of_two": {
			current: 42,
			period:  64,
			era:     Era{period: 64, phase: 42},
			encoded: []byte{5 + 42%16*16, 42 / 16},
		},
		"rounded_up": {
			current: 513,
			period:  200,
			era:     Era{period: 256, phase: 1},
			encoded: []byte{7 + 1*16, 0},
		},
		"clamped_low": {
			current: 1,
			period:  2,
			era:     Era{period: 4, phase: 1},
			encoded: []byte{1 + 1*16, 0},
		},
		"long_period_quantized": {
			current: 20000,
			period:  32768,
			era:     Era{period: 32768, phase: 20000},
			encoded: []byte{14 + 2500%16*16, 2500 / 16},
		},
		"clamped_high": {
			current: 1_000_000,
			period:  1_000_000,
			era:     Era{period: 65536, phase: 1_000_000 % 65536 / 16 * 16},
			encoded: []byte{0x4f, 0x42},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			era := NewMortalEra(testCase.current, testCase.period)
			assert.Equal(t, testCase.era, era)
			assert.False(t, era.IsImmortal())
			assert.Equal(t, testCase.encoded, era.Encode())

			decoded, n, err := DecodeEra(testCase.encoded)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, era, decoded)
		})
	}
}

func Test_Era_BirthDeath(t *testing.T) {
	t.Parallel()

	era := NewMortalEra(42, 64)
	assert.Equal(t, uint64(42), era.Birth(42))
	assert.Equal(t, uint64(42), era.Birth(100))
	assert.Equal(t, uint64(106), era.Death(100))
	assert.Equal(t, uint64(106), era.Birth(106))
	assert.Equal(t, uint64(42), era.Birth(10))

	assert.Equal(t, uint64(0), Immortal.Birth(1000))
	assert.Equal(t, uint64(math.MaxUint64), Immortal.Death(1000))
}

func Test_DecodeEra_errors(t *testing.T) {
	t.Parallel()

	testCases := map[string][]byte{
		"empty":          nil,
		"truncated":      {0x05},
		"period_2":       {0x10, 0x00},
		"phase_overflow": {0x41, 0x00},
	}

	for name, data := range testCases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := DecodeEra(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEra))
			assert.True(t, errors.Is(err, errkind.ErrCodec))
		})
	}
}

func Test_Era_scale(t *testing.T) {
	t.Parallel()

	for _, era := range []Era{Immortal, NewMortalEra(1234, 128)} {
		encoded, err := scale.Marshal(era)
		require.NoError(t, err)
		assert.Equal(t, era.Encode(), encoded)

		var decoded Era
		err = scale.Unmarshal(encoded, &decoded)
		require.NoError(t, err)
		assert.Equal(t, era, decoded)
	}
}

func Test_Era_matchesGSRPC(t *testing.T) {
	t.Parallel()

	immortal, err := gsrpccodec.Encode(ctypes.ExtrinsicEra{IsImmortalEra: true})
	require.NoError(t, err)
	assert.Equal(t, immortal, Immortal.Encode())

	era := NewMortalEra(9_000_017, 64)
	var decoded ctypes.ExtrinsicEra
	err = gsrpccodec.Decode(era.Encode(), &decoded)
	require.NoError(t, err)
	require.True(t, decoded.IsMortalEra)

	reencoded, err := gsrpccodec.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, era.Encode(), reencoded)
}
