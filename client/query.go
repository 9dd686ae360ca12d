// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"context"
	"fmt"
	"slices"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/storage"
)

// GetMetadataConstants lists the constants of every pallet.
func (c *Client) GetMetadataConstants() []metadata.ConstantInfo {
	return slices.Collect(c.runtime.Metadata.Constants())
}

// GetMetadataStorageFunctions lists the storage entries of every pallet.
func (c *Client) GetMetadataStorageFunctions() []metadata.StorageFunction {
	return slices.Collect(c.runtime.Metadata.StorageFunctions())
}

// GetConstant returns the decoded value of a runtime constant.
func (c *Client) GetConstant(pallet, name string) (any, error) {
	value, _, err := c.runtime.Metadata.Constant(pallet, name)
	return value, err
}

// QueryResult is a decoded storage value with its entry.
type QueryResult struct {
	Key   storage.Key
	Value any
	Entry metadata.StorageEntry
	// Exists is false when the node has no value and Value is the default.
	Exists bool
}

// Query reads a storage entry at the best block.
func (c *Client) Query(ctx context.Context, pallet, item string, params ...any) (*QueryResult, error) {
	return c.QueryAt(ctx, nil, pallet, item, params...)
}

// QueryAt reads a storage entry at the block with the given hash, or at
// the best block when hash is nil.
func (c *Client) QueryAt(ctx context.Context, hash *common.Hash,
	pallet, item string, params ...any) (*QueryResult, error) {
	m := c.runtime.Metadata
	fn, err := m.StorageEntry(pallet, item)
	if err != nil {
		return nil, err
	}
	key, err := storage.BuildKey(m, pallet, item, params...)
	if err != nil {
		return nil, err
	}

	raw, err := c.rpc.GetStorage(ctx, key, hash)
	if err != nil {
		return nil, fmt.Errorf("querying %s.%s: %w", pallet, item, err)
	}
	value, err := storage.DecodeValue(m, fn.Entry, raw)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Key: key, Value: value, Entry: fn.Entry, Exists: raw != nil}, nil
}
