// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/subclient/internal/database"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/klauspost/compress/zstd"
)

const cachePrefix = "metadata/"

// Cache stores zstd compressed metadata blobs keyed by genesis
// hash and runtime spec version.
type Cache struct {
	table   database.Table
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCache returns a metadata cache backed by the given database.
func NewCache(db database.Database) (*Cache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Cache{
		table:   db.NewTable(cachePrefix),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func cacheKey(genesis common.Hash, specVersion uint32) []byte {
	return binary.BigEndian.AppendUint32(genesis.ToBytes(), specVersion)
}

// Get returns the cached metadata blob and true, or false if absent.
func (c *Cache) Get(genesis common.Hash, specVersion uint32) (raw []byte, ok bool, err error) {
	compressed, err := c.table.Get(cacheKey(genesis, specVersion))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("getting cached metadata: %w", err)
	}

	raw, err = c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cached metadata: %w", err)
	}
	return raw, true, nil
}

// Put stores the metadata blob.
func (c *Cache) Put(genesis common.Hash, specVersion uint32, raw []byte) error {
	compressed := c.encoder.EncodeAll(raw, nil)
	err := c.table.Set(cacheKey(genesis, specVersion), compressed)
	if err != nil {
		return fmt.Errorf("setting cached metadata: %w", err)
	}
	logger.Debugf("cached metadata for %s spec %d (%d bytes, %d compressed)",
		genesis.Short(), specVersion, len(raw), len(compressed))
	return nil
}

// Prune removes the metadata of the chain cached for spec versions
// other than keep, and returns how many were removed.
func (c *Cache) Prune(genesis common.Hash, keep uint32) (removed int, err error) {
	keys, err := c.table.Keys(genesis.ToBytes())
	if err != nil {
		return 0, fmt.Errorf("listing cached metadata: %w", err)
	}

	kept := cacheKey(genesis, keep)
	for _, key := range keys {
		if bytes.Equal(key, kept) {
			continue
		}
		err = c.table.Delete(key)
		if err != nil {
			return removed, fmt.Errorf("deleting cached metadata: %w", err)
		}
		removed++
	}
	return removed, nil
}

// Close releases the compression resources.
func (c *Cache) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
