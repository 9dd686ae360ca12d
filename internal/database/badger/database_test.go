// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/subclient/internal/database"
)

func Test_New(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		settings Settings
		errWrap  error
	}{
		"in_memory": {
			settings: Settings{InMemory: true},
		},
		"on_disk": {
			settings: Settings{Path: t.TempDir()},
		},
		"no_path": {
			errWrap: ErrNoPath,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			db, err := New(testCase.settings)
			require.ErrorIs(t, err, testCase.errWrap)
			if err == nil {
				assert.NoError(t, db.Close())
			}
		})
	}
}

func Test_Database(t *testing.T) {
	t.Parallel()

	path := t.TempDir()
	db, err := New(Settings{Path: path})
	require.NoError(t, err)

	_, err = db.Get([]byte{1})
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	require.NoError(t, db.Set([]byte{1}, []byte{2}))
	value, err := db.Get([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, value)

	table := db.NewTable("meta/")
	require.NoError(t, table.Set([]byte{2}, []byte{3}))
	require.NoError(t, table.Set([]byte{1}, []byte{4}))
	value, err = db.Get([]byte("meta/\x02"))
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, value)

	keys, err := table.Keys(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1}, {2}}, keys)

	require.NoError(t, db.Delete([]byte{1}))
	_, err = db.Get([]byte{1})
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	require.NoError(t, db.Close())

	reopened, err := New(Settings{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, reopened.Close()) })
	value, err = reopened.NewTable("meta/").Get([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, value)
}
