// Copyright 2019 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwox128(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		in       string
		expected string
	}{
		"System": {
			in:       "System",
			expected: "0x26aa394eea5630e07c48ae0c9558cef7",
		},
		"Account": {
			in:       "Account",
			expected: "0xb99d880ec681799c0cf30e8886371da9",
		},
		"Balances": {
			in:       "Balances",
			expected: "0xc2261276cc9d1f8598ea4b6a74b15c2f",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := Twox128([]byte(testCase.in))
			assert.Equal(t, testCase.expected, BytesToHex(h))
		})
	}
}

func TestTwox64_isPrefixOfTwox128(t *testing.T) {
	t.Parallel()

	in := []byte("Sudo")
	assert.Equal(t, Twox128(in)[:8], Twox64(in))
	assert.Len(t, Twox256(in), 32)
	assert.Equal(t, Twox128(in), Twox256(in)[:16])
}

func TestBlake2b(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		Blake2b256([]byte{}).String())
	assert.Equal(t, "0xcae66941d9efbd404e4d88758ea67670", BytesToHex(Blake2b128([]byte{})))
}

func TestKeccak256(t *testing.T) {
	t.Parallel()

	h := Keccak256([]byte{})
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		h.String())
}
