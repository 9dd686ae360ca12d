// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package badger implements the database on badger v2.
package badger

import (
	"errors"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v2"

	"github.com/ChainSafe/subclient/internal/database"
	"github.com/ChainSafe/subclient/internal/log"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "badger"))

// ErrNoPath is returned by New for on disk databases without a path.
var ErrNoPath = errors.New("no database path")

// Settings is the database settings.
type Settings struct {
	// Path is the database directory, required unless InMemory is set.
	Path string
	// InMemory keeps the data in memory only.
	InMemory bool
}

func (s Settings) options() (options badger.Options, err error) {
	if s.InMemory {
		return badger.DefaultOptions("").WithInMemory(true), nil
	}
	if s.Path == "" {
		return options, ErrNoPath
	}
	path, err := filepath.Abs(s.Path)
	if err != nil {
		return options, fmt.Errorf("making path absolute: %w", err)
	}
	return badger.DefaultOptions(path), nil
}

// Database is a database backed by badger.
type Database struct {
	db *badger.DB
}

var _ database.Database = (*Database)(nil)

// New opens the badger database.
func New(settings Settings) (*Database, error) {
	options, err := settings.options()
	if err != nil {
		return nil, err
	}

	db, err := badger.Open(options.WithLogger(badgerLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &Database{db: db}, nil
}

// Get returns the value of the key, or an error wrapping
// database.ErrKeyNotFound.
func (d *Database) Get(key []byte) (value []byte, err error) {
	err = d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, fmt.Errorf("%w: 0x%x", database.ErrKeyNotFound, key)
	case errors.Is(err, badger.ErrDBClosed):
		return nil, database.ErrClosed
	case err != nil:
		return nil, fmt.Errorf("reading 0x%x: %w", key, err)
	}
	return value, nil
}

// Set sets the value of the key.
func (d *Database) Set(key, value []byte) error {
	return d.update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes the key, absent keys are ignored.
func (d *Database) Delete(key []byte) error {
	return d.update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (d *Database) update(fn func(txn *badger.Txn) error) error {
	err := d.db.Update(fn)
	if errors.Is(err, badger.ErrDBClosed) {
		return database.ErrClosed
	}
	return err
}

// Keys returns the keys starting with prefix.
func (d *Database) Keys(prefix []byte) (keys [][]byte, err error) {
	err = d.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, database.ErrClosed
	}
	return keys, err
}

// NewTable returns a view of the database under the prefix.
func (d *Database) NewTable(prefix string) database.Table {
	return database.NewTable(d, prefix)
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

// badgerLogger routes badger logs to the package logger, badger
// informational logs being logged at the debug level.
type badgerLogger struct {
	logger log.LeveledLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }

func (l badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }

func (l badgerLogger) Infof(format string, args ...interface{}) { l.logger.Debugf(format, args...) }

func (l badgerLogger) Debugf(format string, args ...interface{}) { l.logger.Tracef(format, args...) }
