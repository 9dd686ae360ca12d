// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChainSafe/subclient/lib/common"
)

func Test_state_keysPaged(t *testing.T) {
	t.Parallel()

	s := state{
		"\x01\x03": {1},
		"\x01\x01": {2},
		"\x01\x02": {3},
		"\x02\x01": {4},
	}

	testCases := map[string]struct {
		prefix   []byte
		count    uint32
		start    []byte
		expected []common.Bytes
	}{
		"all_with_prefix": {
			prefix:   []byte{1},
			count:    10,
			expected: []common.Bytes{{1, 1}, {1, 2}, {1, 3}},
		},
		"count_limit": {
			prefix:   []byte{1},
			count:    2,
			expected: []common.Bytes{{1, 1}, {1, 2}},
		},
		"after_start": {
			prefix:   []byte{1},
			count:    10,
			start:    []byte{1, 1},
			expected: []common.Bytes{{1, 2}, {1, 3}},
		},
		"no_match": {
			prefix:   []byte{3},
			count:    10,
			expected: []common.Bytes{},
		},
		"empty_prefix": {
			count:    10,
			start:    []byte{1, 3},
			expected: []common.Bytes{{2, 1}},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			keys := s.keysPaged(testCase.prefix, testCase.count, testCase.start)
			assert.Equal(t, testCase.expected, keys)
		})
	}
}

func Test_state_root(t *testing.T) {
	t.Parallel()

	s := state{"a": {1}}
	cloned := s.clone()
	assert.Equal(t, s.root(), cloned.root())

	cloned["b"] = []byte{2}
	assert.NotEqual(t, s.root(), cloned.root())
	assert.Len(t, s, 1)
}
