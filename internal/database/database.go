// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package database defines the key value store persisting client
// data across runs, such as fetched runtime metadata.
package database

import (
	"errors"
	"io"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
	// ErrClosed is returned when operating on a closed database.
	ErrClosed = errors.New("database closed")
)

// Store reads and writes values. Keys returns the keys starting with
// prefix, in ascending byte order.
type Store interface {
	Get(key []byte) (value []byte, err error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys(prefix []byte) (keys [][]byte, err error)
}

// Database is a key value store. All methods are safe for concurrent use.
type Database interface {
	Store
	io.Closer
	// NewTable returns a view of the database under the prefix.
	NewTable(prefix string) Table
}

// Table is a view of a store where keys are relative to a prefix.
type Table interface {
	Store
}

// NewTable returns a table of the store under the prefix.
func NewTable(store Store, prefix string) Table {
	return &table{prefix: []byte(prefix), store: store}
}

type table struct {
	prefix []byte
	store  Store
}

func (t *table) key(key []byte) []byte {
	// prefix is never appended to in place so tables never share key memory
	prefixed := make([]byte, 0, len(t.prefix)+len(key))
	prefixed = append(prefixed, t.prefix...)
	return append(prefixed, key...)
}

func (t *table) Get(key []byte) ([]byte, error) { return t.store.Get(t.key(key)) }

func (t *table) Set(key, value []byte) error { return t.store.Set(t.key(key), value) }

func (t *table) Delete(key []byte) error { return t.store.Delete(t.key(key)) }

func (t *table) Keys(prefix []byte) ([][]byte, error) {
	keys, err := t.store.Keys(t.key(prefix))
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		keys[i] = key[len(t.prefix):]
	}
	return keys, nil
}
