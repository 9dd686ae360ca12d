// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ss58

import (
	"testing"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = common.MustHexToBytes("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")

func Test_Encode(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		accountID  []byte
		format     uint16
		address    string
		errWrapped error
	}{
		"substrate": {
			accountID: alice,
			format:    SubstrateFormat,
			address:   "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		},
		"polkadot": {
			accountID: alice,
			format:    PolkadotFormat,
			address:   "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5",
		},
		"format too large": {
			accountID:  alice,
			format:     MaxFormat + 1,
			errWrapped: ErrFormat,
		},
		"bad account length": {
			accountID:  alice[:20],
			format:     SubstrateFormat,
			errWrapped: ErrAddress,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			address, err := Encode(testCase.accountID, testCase.format)

			assert.ErrorIs(t, err, testCase.errWrapped)
			assert.Equal(t, testCase.address, address)
		})
	}
}

func Test_Decode(t *testing.T) {
	t.Parallel()

	accountID, format, err := Decode("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(t, err)
	assert.Equal(t, alice, accountID)
	assert.Equal(t, SubstrateFormat, format)

	_, _, err = Decode("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ")
	assert.ErrorIs(t, err, ErrChecksum)
	assert.ErrorIs(t, err, errkind.ErrInvalidParams)

	_, _, err = Decode("1")
	assert.ErrorIs(t, err, ErrAddress)
}

func Test_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []uint16{0, 2, 42, 63, 64, 1287, 5000, MaxFormat} {
		for _, accountID := range [][]byte{alice, append([]byte{2}, alice...), alice[:8], alice[:1]} {
			address, err := Encode(accountID, format)
			require.NoError(t, err)

			decoded, decodedFormat, err := Decode(address)
			require.NoError(t, err)
			assert.Equal(t, accountID, decoded)
			assert.Equal(t, format, decodedFormat)
		}
	}
}
