// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package memory implements the database in memory, for clients
// running without a cache directory.
package memory

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ChainSafe/subclient/internal/database"
)

// Database is an in-memory database.
type Database struct {
	mutex  sync.RWMutex
	values map[string][]byte
}

var _ database.Database = (*Database)(nil)

// New returns an empty in-memory database.
func New() *Database {
	return &Database{values: make(map[string][]byte)}
}

// Get returns a copy of the value of the key.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	if db.values == nil {
		return nil, database.ErrClosed
	}

	value, ok := db.values[string(key)]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", database.ErrKeyNotFound, key)
	}
	return bytes.Clone(value), nil
}

// Set stores a copy of the value.
func (db *Database) Set(key, value []byte) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if db.values == nil {
		return database.ErrClosed
	}

	db.values[string(key)] = bytes.Clone(value)
	return nil
}

// Delete removes the key, absent keys are ignored.
func (db *Database) Delete(key []byte) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	if db.values == nil {
		return database.ErrClosed
	}

	delete(db.values, string(key))
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (db *Database) Keys(prefix []byte) ([][]byte, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	if db.values == nil {
		return nil, database.ErrClosed
	}

	var matching []string
	for key := range db.values {
		if strings.HasPrefix(key, string(prefix)) {
			matching = append(matching, key)
		}
	}
	slices.Sort(matching)

	keys := make([][]byte, len(matching))
	for i, key := range matching {
		keys[i] = []byte(key)
	}
	return keys, nil
}

// NewTable returns a view of the database under the prefix.
func (db *Database) NewTable(prefix string) database.Table {
	return database.NewTable(db, prefix)
}

// Close drops the values, later calls return database.ErrClosed.
func (db *Database) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.values = nil
	return nil
}
