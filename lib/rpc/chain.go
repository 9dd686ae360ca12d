// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"context"
	"fmt"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// JSON-RPC methods of a Substrate node.
const (
	MethodGetBlockHash              = "chain_getBlockHash"
	MethodGetFinalizedHead          = "chain_getFinalizedHead"
	MethodGetHeader                 = "chain_getHeader"
	MethodGetBlock                  = "chain_getBlock"
	MethodSubscribeNewHeads         = "chain_subscribeNewHeads"
	MethodUnsubscribeNewHeads       = "chain_unsubscribeNewHeads"
	MethodSubscribeFinalizedHeads   = "chain_subscribeFinalizedHeads"
	MethodUnsubscribeFinalizedHeads = "chain_unsubscribeFinalizedHeads"
	MethodGetRuntimeVersion         = "state_getRuntimeVersion"
	MethodGetMetadata               = "state_getMetadata"
	MethodGetStorage                = "state_getStorage"
	MethodGetKeysPaged              = "state_getKeysPaged"
	MethodAccountNextIndex          = "system_accountNextIndex"
	MethodSystemChain               = "system_chain"
	MethodSystemProperties          = "system_properties"
	MethodSubmitExtrinsic           = "author_submitExtrinsic"
	MethodSubmitAndWatchExtrinsic   = "author_submitAndWatchExtrinsic"
	MethodUnwatchExtrinsic          = "author_unwatchExtrinsic"
)

// atBlock returns the optional trailing block hash parameter.
func atBlock(params []any, hash *common.Hash) []any {
	if hash == nil {
		return params
	}
	return append(params, *hash)
}

// GetBlockHash returns the hash of the block with the given number,
// or of the best block when number is nil.
func (c *Client) GetBlockHash(ctx context.Context, number *uint64) (common.Hash, error) {
	var params []any
	block := "best"
	if number != nil {
		params = append(params, *number)
		block = fmt.Sprint(*number)
	}
	var hash *common.Hash
	err := c.Call(ctx, &hash, MethodGetBlockHash, params...)
	if err != nil {
		return common.Hash{}, err
	}
	if hash == nil {
		return common.Hash{}, fmt.Errorf("%w: block %s", errkind.ErrNotFound, block)
	}
	return *hash, nil
}

// GetGenesisHash returns the hash of block zero.
func (c *Client) GetGenesisHash(ctx context.Context) (common.Hash, error) {
	var zero uint64
	return c.GetBlockHash(ctx, &zero)
}

// GetFinalizedHead returns the hash of the last finalized block.
func (c *Client) GetFinalizedHead(ctx context.Context) (common.Hash, error) {
	var hash common.Hash
	err := c.Call(ctx, &hash, MethodGetFinalizedHead)
	return hash, err
}

// GetHeader returns the header of the block, or of the best block when hash is nil.
func (c *Client) GetHeader(ctx context.Context, hash *common.Hash) (*Header, error) {
	var header *Header
	err := c.Call(ctx, &header, MethodGetHeader, atBlock(nil, hash)...)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: header %s", errkind.ErrNotFound, hash)
	}
	return header, nil
}

// GetBlock returns the block, or the best block when hash is nil.
func (c *Client) GetBlock(ctx context.Context, hash *common.Hash) (*SignedBlock, error) {
	var block *SignedBlock
	err := c.Call(ctx, &block, MethodGetBlock, atBlock(nil, hash)...)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("%w: block %s", errkind.ErrNotFound, hash)
	}
	return block, nil
}

// GetRuntimeVersion returns the runtime version at the block, or at the best block.
func (c *Client) GetRuntimeVersion(ctx context.Context, hash *common.Hash) (*RuntimeVersion, error) {
	var version RuntimeVersion
	err := c.Call(ctx, &version, MethodGetRuntimeVersion, atBlock(nil, hash)...)
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetMetadata returns the metadata blob at the block, or at the best block.
func (c *Client) GetMetadata(ctx context.Context, hash *common.Hash) ([]byte, error) {
	var raw common.Bytes
	err := c.Call(ctx, &raw, MethodGetMetadata, atBlock(nil, hash)...)
	return raw, err
}

// GetStorage returns the raw storage value, nil when the key has no value.
func (c *Client) GetStorage(ctx context.Context, key []byte, hash *common.Hash) ([]byte, error) {
	var value *common.Bytes
	err := c.Call(ctx, &value, MethodGetStorage, atBlock([]any{common.Bytes(key)}, hash)...)
	if err != nil || value == nil {
		return nil, err
	}
	return *value, nil
}

// GetKeysPaged returns up to count keys with the prefix, following startKey when set.
func (c *Client) GetKeysPaged(ctx context.Context, prefix []byte, count uint32,
	startKey []byte, hash *common.Hash) ([]common.Bytes, error) {
	params := []any{common.Bytes(prefix), count}
	if startKey != nil || hash != nil {
		var start any
		if startKey != nil {
			start = common.Bytes(startKey)
		}
		params = append(params, start)
	}
	var keys []common.Bytes
	err := c.Call(ctx, &keys, MethodGetKeysPaged, atBlock(params, hash)...)
	return keys, err
}

// AccountNextIndex returns the next nonce of the account, pool included.
func (c *Client) AccountNextIndex(ctx context.Context, address string) (uint64, error) {
	var nonce uint64
	err := c.Call(ctx, &nonce, MethodAccountNextIndex, address)
	return nonce, err
}

// SystemChain returns the chain name.
func (c *Client) SystemChain(ctx context.Context) (string, error) {
	var chain string
	err := c.Call(ctx, &chain, MethodSystemChain)
	return chain, err
}

// SystemProperties returns the chain properties, such as ss58Format and tokenSymbol.
func (c *Client) SystemProperties(ctx context.Context) (map[string]any, error) {
	var properties map[string]any
	err := c.Call(ctx, &properties, MethodSystemProperties)
	return properties, err
}

// SubmitExtrinsic submits an encoded extrinsic and returns its hash.
func (c *Client) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (common.Hash, error) {
	var hash common.Hash
	err := c.Call(ctx, &hash, MethodSubmitExtrinsic, common.Bytes(extrinsic))
	return hash, err
}

// SubmitAndWatchExtrinsic submits an encoded extrinsic and subscribes to its
// TransactionStatus notifications.
func (c *Client) SubmitAndWatchExtrinsic(ctx context.Context, extrinsic []byte) (*Subscription, error) {
	return c.Subscribe(ctx, MethodSubmitAndWatchExtrinsic, MethodUnwatchExtrinsic, common.Bytes(extrinsic))
}

// SubscribeNewHeads subscribes to Header notifications of new best blocks.
func (c *Client) SubscribeNewHeads(ctx context.Context) (*Subscription, error) {
	return c.Subscribe(ctx, MethodSubscribeNewHeads, MethodUnsubscribeNewHeads)
}

// SubscribeFinalizedHeads subscribes to Header notifications of finalized blocks.
func (c *Client) SubscribeFinalizedHeads(ctx context.Context) (*Subscription, error) {
	return c.Subscribe(ctx, MethodSubscribeFinalizedHeads, MethodUnsubscribeFinalizedHeads)
}

// NextHeader decodes the next notification of a heads subscription.
func NextHeader(ctx context.Context, sub *Subscription) (*Header, error) {
	var header Header
	err := sub.Next(ctx, &header)
	if err != nil {
		return nil, err
	}
	return &header, nil
}
