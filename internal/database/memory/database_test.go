// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/subclient/internal/database"
)

func Test_Database(t *testing.T) {
	t.Parallel()

	db := New()

	value := []byte{1}
	require.NoError(t, db.Set([]byte("key"), value))
	value[0] = 9

	got, err := db.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)

	table := db.NewTable("prefix/")
	_, err = table.Get([]byte("key"))
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	require.NoError(t, table.Set([]byte("key"), []byte{2}))
	got, err = db.Get([]byte("prefix/key"))
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got)

	require.NoError(t, table.Delete([]byte("key")))
	_, err = table.Get([]byte("key"))
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	require.NoError(t, db.Close())
	_, err = db.Get([]byte("key"))
	assert.ErrorIs(t, err, database.ErrClosed)
}

func Test_Database_Keys(t *testing.T) {
	t.Parallel()

	db := New()
	for _, key := range []string{"b/2", "a/1", "b/1", "c"} {
		require.NoError(t, db.Set([]byte(key), nil))
	}

	testCases := map[string]struct {
		prefix   string
		expected [][]byte
	}{
		"all": {
			expected: [][]byte{[]byte("a/1"), []byte("b/1"), []byte("b/2"), []byte("c")},
		},
		"prefix": {
			prefix:   "b/",
			expected: [][]byte{[]byte("b/1"), []byte("b/2")},
		},
		"none": {
			prefix:   "d",
			expected: [][]byte{},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			keys, err := db.Keys([]byte(testCase.prefix))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, keys)
		})
	}

	table := db.NewTable("b/")
	keys, err := table.Keys(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("2")}, keys)
}
