// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"context"
	"fmt"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

var ErrNotFinalized = fmt.Errorf("%w: block is not finalized", errkind.ErrNotFound)

// Header is a block header with its hash.
type Header struct {
	Hash common.Hash
	rpc.Header
}

// Block is a block with its decoded extrinsics.
type Block struct {
	Header
	Extrinsics []*extrinsic.Extrinsic
}

// Signed returns the signed extrinsics of the block.
func (b *Block) Signed() []*extrinsic.Extrinsic {
	return b.filter(true)
}

// Unsigned returns the unsigned extrinsics, inherents included.
func (b *Block) Unsigned() []*extrinsic.Extrinsic {
	return b.filter(false)
}

func (b *Block) filter(signed bool) []*extrinsic.Extrinsic {
	extrinsics := make([]*extrinsic.Extrinsic, 0, len(b.Extrinsics))
	for _, e := range b.Extrinsics {
		if e.Signed() == signed {
			extrinsics = append(extrinsics, e)
		}
	}
	return extrinsics
}

// GetBlock returns the block with the given hash, or the best block when
// hash is nil.
func (c *Client) GetBlock(ctx context.Context, hash *common.Hash) (*Block, error) {
	signed, err := c.rpc.GetBlock(ctx, hash)
	if err != nil {
		return nil, err
	}

	header := signed.Block.Header
	block := &Block{
		Header:     Header{Hash: header.Hash(), Header: header},
		Extrinsics: make([]*extrinsic.Extrinsic, len(signed.Block.Extrinsics)),
	}
	for i, raw := range signed.Block.Extrinsics {
		block.Extrinsics[i], err = extrinsic.Decode(c.runtime.Metadata, raw)
		if err != nil {
			return nil, fmt.Errorf("decoding extrinsic %d of block #%d: %w", i, header.Number, err)
		}
	}
	return block, nil
}

// GetBlockHeader returns the header of the block with the given hash, or
// of the best block when hash is nil. With finalizedOnly, a nil hash
// selects the finalized head and a given hash must be finalized.
func (c *Client) GetBlockHeader(ctx context.Context, hash *common.Hash, finalizedOnly bool) (*Header, error) {
	if !finalizedOnly {
		return c.header(ctx, hash)
	}

	finalized, err := c.rpc.GetFinalizedHead(ctx)
	if err != nil {
		return nil, err
	}
	head, err := c.header(ctx, &finalized)
	if err != nil || hash == nil || *hash == finalized {
		return head, err
	}

	header, err := c.header(ctx, hash)
	if err != nil {
		return nil, err
	}
	if header.Number > head.Number {
		return nil, fmt.Errorf("%w: #%d is after finalized #%d", ErrNotFinalized, header.Number, head.Number)
	}
	number := uint64(header.Number)
	canonical, err := c.rpc.GetBlockHash(ctx, &number)
	if err != nil {
		return nil, err
	}
	if canonical != *hash {
		return nil, fmt.Errorf("%w: %s is not on the finalized chain", ErrNotFinalized, hash.Short())
	}
	return header, nil
}

func (c *Client) header(ctx context.Context, hash *common.Hash) (*Header, error) {
	header, err := c.rpc.GetHeader(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &Header{Hash: header.Hash(), Header: *header}, nil
}
