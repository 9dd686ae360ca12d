// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/metadata/metadatatest"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountHex = "0x578002f699722394afc52169069a1ffc98da36f1"

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func Test_Hash(t *testing.T) {
	t.Parallel()

	account := common.MustHexToBytes(accountHex)
	blake128 := common.MustHexToBytes("0xf7aabc11418d41240be376456cdbf49a")
	blake256 := common.MustHexToBytes("0x1e228300b50d166e95eb11b671a8795bd5d6801c247575cbe17c876b95223fe5")

	testCases := map[string]struct {
		hasher     metadata.Hasher
		expected   []byte
		errWrapped error
	}{
		"blake2_128": {
			hasher:   metadata.Blake2_128,
			expected: blake128,
		},
		"blake2_256": {
			hasher:   metadata.Blake2_256,
			expected: blake256,
		},
		"blake2_128 concat": {
			hasher:   metadata.Blake2_128Concat,
			expected: concat(blake128, account),
		},
		"twox128": {
			hasher:   metadata.Twox128,
			expected: common.Twox128(account),
		},
		"twox256": {
			hasher:   metadata.Twox256,
			expected: common.Twox256(account),
		},
		"twox64 concat": {
			hasher:   metadata.Twox64Concat,
			expected: concat(common.Twox64(account), account),
		},
		"identity": {
			hasher:   metadata.Identity,
			expected: account,
		},
		"unknown": {
			hasher:     metadata.Hasher(42),
			errWrapped: ErrUnknownHasher,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hashed, err := Hash(testCase.hasher, account)

			assert.ErrorIs(t, err, testCase.errWrapped)
			assert.Equal(t, testCase.expected, hashed)
		})
	}
}

func Test_Prefix(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{})

	prefix, err := Prefix(m, "System", "Account")
	require.NoError(t, err)
	assert.Equal(t, "0x26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9", prefix.Hex())

	_, err = Prefix(m, "System", "Accounts")
	assert.ErrorIs(t, err, metadata.ErrStorageNotFound)
	assert.ErrorIs(t, err, errkind.ErrNotFound)
}

func Test_BuildKey(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{})
	account := common.MustHexToBytes(accountHex)
	round := binary.LittleEndian.AppendUint32(nil, 5)

	systemAccount := common.MustHexToBytes(
		"0x26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9" +
			"f7aabc11418d41240be376456cdbf49a")

	testCases := map[string]struct {
		pallet     string
		item       string
		params     []any
		expected   Key
		errWrapped error
	}{
		"plain": {
			pallet: "System",
			item:   "Number",
			expected: concat(common.Twox128([]byte("System")),
				common.Twox128([]byte("Number"))),
		},
		"map with hex account": {
			pallet:   "System",
			item:     "Account",
			params:   []any{accountHex},
			expected: concat(systemAccount, account),
		},
		"map with byte account": {
			pallet:   "System",
			item:     "Account",
			params:   []any{account},
			expected: concat(systemAccount, account),
		},
		"double map": {
			pallet: "ParachainStaking",
			item:   "AtStake",
			params: []any{uint32(5), accountHex},
			expected: concat(common.Twox128([]byte("ParachainStaking")),
				common.Twox128([]byte("AtStake")),
				common.Twox64(round), round,
				common.Twox64(account), account),
		},
		"twox64 concat map": {
			pallet: "System",
			item:   "BlockHash",
			params: []any{0},
			expected: concat(common.Twox128([]byte("System")),
				common.Twox128([]byte("BlockHash")),
				common.Twox64([]byte{0, 0, 0, 0}), []byte{0, 0, 0, 0}),
		},
		"missing parameter": {
			pallet:     "System",
			item:       "Account",
			errWrapped: ErrParamCount,
		},
		"parameter for plain entry": {
			pallet:     "System",
			item:       "Number",
			params:     []any{1},
			errWrapped: ErrParamCount,
		},
		"too many parameters": {
			pallet:     "ParachainStaking",
			item:       "AtStake",
			params:     []any{1, accountHex, 2},
			errWrapped: ErrParamCount,
		},
		"wrong account length": {
			pallet:     "System",
			item:       "Account",
			params:     []any{"0x1234"},
			errWrapped: ErrParamEncoding,
		},
		"unknown item": {
			pallet:     "System",
			item:       "Unknown",
			errWrapped: metadata.ErrStorageNotFound,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			key, err := BuildKey(m, testCase.pallet, testCase.item, testCase.params...)

			assert.ErrorIs(t, err, testCase.errWrapped)
			assert.Equal(t, testCase.expected, key)
			if testCase.errWrapped == ErrParamCount || testCase.errWrapped == ErrParamEncoding {
				assert.ErrorIs(t, err, errkind.ErrInvalidParams)
			}
		})
	}
}

func Test_BuildKey_deterministic(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{Version: metadata.V15})

	first, err := BuildKey(m, "ParachainStaking", "AtStake", 7, accountHex)
	require.NoError(t, err)
	second, err := BuildKey(m, "ParachainStaking", "AtStake", "7", common.MustHexToBytes(accountHex))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func Test_DecodeKey(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{})
	account := common.MustHexToBytes(accountHex)

	key, err := BuildKey(m, "ParachainStaking", "AtStake", 9, account)
	require.NoError(t, err)

	params, err := DecodeKey(m, "ParachainStaking", "AtStake", key)
	require.NoError(t, err)
	assert.Equal(t, []any{uint32(9), account}, params)

	_, err = DecodeKey(m, "System", "Account", key)
	assert.ErrorIs(t, err, ErrParamEncoding)
}

func Test_DecodeValue(t *testing.T) {
	t.Parallel()

	m := metadatatest.New(t, metadatatest.Options{})
	bigComparer := cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })

	accountEntry, err := m.StorageEntry("System", "Account")
	require.NoError(t, err)
	atStake, err := m.StorageEntry("ParachainStaking", "AtStake")
	require.NoError(t, err)
	number, err := m.StorageEntry("System", "Number")
	require.NoError(t, err)

	accountInfo := concat(
		[]byte{3, 0, 0, 0}, []byte{1, 0, 0, 0}, []byte{1, 0, 0, 0}, []byte{0, 0, 0, 0},
		concat([]byte{0x00, 0x00, 0x64, 0xa7, 0xb3, 0xb6, 0xe0, 0x0d}, make([]byte, 8)),
		make([]byte, 48),
	)

	testCases := map[string]struct {
		entry      metadata.StorageEntry
		raw        []byte
		expected   any
		errWrapped error
	}{
		"default when absent": {
			entry: accountEntry.Entry,
			expected: map[string]any{
				"nonce": uint32(0), "consumers": uint32(0), "providers": uint32(0), "sufficients": uint32(0),
				"data": map[string]any{
					"free": big.NewInt(0), "reserved": big.NewInt(0),
					"frozen": big.NewInt(0), "flags": big.NewInt(0),
				},
			},
		},
		"account info": {
			entry: accountEntry.Entry,
			raw:   accountInfo,
			expected: map[string]any{
				"nonce": uint32(3), "consumers": uint32(1), "providers": uint32(1), "sufficients": uint32(0),
				"data": map[string]any{
					"free": big.NewInt(1_000_000_000_000_000_000), "reserved": big.NewInt(0),
					"frozen": big.NewInt(0), "flags": big.NewInt(0),
				},
			},
		},
		"optional absent": {
			entry: atStake.Entry,
		},
		"plain u32": {
			entry:    number.Entry,
			raw:      []byte{5, 0, 0, 0},
			expected: uint32(5),
		},
		"trailing bytes": {
			entry:      number.Entry,
			raw:        []byte{5, 0, 0, 0, 1},
			errWrapped: errkind.ErrCodec,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			value, err := DecodeValue(m, testCase.entry, testCase.raw)

			assert.ErrorIs(t, err, testCase.errWrapped)
			if diff := cmp.Diff(testCase.expected, value, bigComparer); diff != "" {
				t.Errorf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}
