// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ChainSafe/subclient/lib/author"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/crypto"
	"github.com/ChainSafe/subclient/lib/crypto/ss58"
	"github.com/ChainSafe/subclient/lib/extrinsic"
	"github.com/ChainSafe/subclient/lib/keyring"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// SignOptions overrides the values the client fills in for signing.
type SignOptions struct {
	// Nonce is read from the node when nil.
	Nonce *uint64
	// Tip defaults to the configured tip.
	Tip *big.Int
	// EraPeriod defaults to the configured period, zero is immortal.
	EraPeriod *uint64
}

// Address returns the address of an account: 0x hex for 20-byte
// accounts, SS58 for 32-byte accounts.
func (c *Client) Address(accountID []byte) (string, error) {
	switch len(accountID) {
	case 20:
		return common.BytesToHex(accountID), nil
	case 32:
		return ss58.Encode(accountID, c.runtime.SS58Format)
	default:
		return "", fmt.Errorf("%w: account of %d bytes", errkind.ErrInvalidParams, len(accountID))
	}
}

// AccountNonce returns the next nonce of the account, pending pool
// transactions included.
func (c *Client) AccountNonce(ctx context.Context, accountID []byte) (uint64, error) {
	address, err := c.Address(accountID)
	if err != nil {
		return 0, err
	}
	nonce, err := c.rpc.AccountNextIndex(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("getting nonce of %s: %w", address, err)
	}
	return nonce, nil
}

// ComposeCall builds a call checked against the runtime metadata.
func (c *Client) ComposeCall(pallet, function string, params map[string]any) (extrinsic.Call, error) {
	return extrinsic.ComposeCall(c.runtime.Metadata, pallet, function, params)
}

// SigningOptions returns the extrinsic options for the signer account:
// its nonce, the tip, the era with its checkpoint block and the runtime
// versions and genesis hash.
func (c *Client) SigningOptions(ctx context.Context, accountID []byte, o SignOptions) (extrinsic.Options, error) {
	options := extrinsic.Options{
		Era:                extrinsic.Immortal,
		Tip:                new(big.Int).SetUint64(c.cfg.Chain.Tip),
		SpecVersion:        c.runtime.Version.SpecVersion,
		TransactionVersion: c.runtime.Version.TransactionVersion,
		GenesisHash:        c.runtime.GenesisHash,
	}
	if o.Tip != nil {
		options.Tip = o.Tip
	}

	if o.Nonce != nil {
		options.Nonce = *o.Nonce
	} else {
		nonce, err := c.AccountNonce(ctx, accountID)
		if err != nil {
			return options, err
		}
		options.Nonce = nonce
	}

	period := c.cfg.Chain.EraPeriod
	if o.EraPeriod != nil {
		period = *o.EraPeriod
	}
	if period == 0 {
		return options, nil
	}

	head, err := c.GetBlockHeader(ctx, nil, true)
	if err != nil {
		return options, fmt.Errorf("getting era checkpoint: %w", err)
	}
	current := uint64(head.Number)
	options.Era = extrinsic.NewMortalEra(current, period)
	birth := options.Era.Birth(current)
	options.BlockHash = head.Hash
	if birth != current {
		options.BlockHash, err = c.rpc.GetBlockHash(ctx, &birth)
		if err != nil {
			return options, fmt.Errorf("getting era birth block #%d: %w", birth, err)
		}
	}
	return options, nil
}

// GenerateSignaturePayload returns the bytes to sign for the call, for
// signing outside of the client.
func (c *Client) GenerateSignaturePayload(call extrinsic.Call, options extrinsic.Options) ([]byte, error) {
	return extrinsic.GenerateSignaturePayload(c.runtime.Metadata, call, options)
}

// CreateSignedExtrinsic signs the call with the keypair, or uses the
// signature when one is given.
func (c *Client) CreateSignedExtrinsic(call extrinsic.Call, keypair crypto.Keypair,
	options extrinsic.Options, signature []byte) (*extrinsic.Extrinsic, error) {
	return extrinsic.CreateSignedExtrinsic(c.runtime.Metadata, call, keypair, options, signature)
}

// SignCall signs the call with options filled in from the node.
func (c *Client) SignCall(ctx context.Context, call extrinsic.Call, keypair crypto.Keypair,
	o SignOptions) (*extrinsic.Extrinsic, error) {
	options, err := c.SigningOptions(ctx, keypair.AccountID(), o)
	if err != nil {
		return nil, err
	}
	return c.CreateSignedExtrinsic(call, keypair, options, nil)
}

// SubmitExtrinsic submits the extrinsic, optionally waiting for its
// inclusion and finalization. Rejections are *errkind.RejectionError.
func (c *Client) SubmitExtrinsic(ctx context.Context, e *extrinsic.Extrinsic,
	waitForInclusion, waitForFinalization bool) (*author.Receipt, error) {
	return c.author.Submit(ctx, e.Encode(), author.Options{
		WaitForInclusion:    waitForInclusion,
		WaitForFinalization: waitForFinalization,
		FinalizationTimeout: c.cfg.Author.FinalizationTimeout,
	})
}

// GenerateKeypair creates a random keypair with the client randomness source.
func (c *Client) GenerateKeypair(scheme keyring.Scheme) (crypto.Keypair, error) {
	return keyring.GenerateKeypair(c.runtime.Crypto, scheme)
}
