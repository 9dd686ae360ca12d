// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package author submits extrinsics and follows them through the
// transaction pool until inclusion or finalization.
package author

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/subclient/internal/log"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "author"))

const unsubscribeTimeout = 5 * time.Second

// Options configures how long Submit waits.
type Options struct {
	// WaitForInclusion waits until the extrinsic is in a block.
	WaitForInclusion bool
	// WaitForFinalization waits until that block is finalized.
	WaitForFinalization bool
	// FinalizationTimeout bounds the wait between inclusion and
	// finalization. Zero waits as long as the context allows.
	FinalizationTimeout time.Duration
}

// Author submits extrinsics to a node.
type Author struct {
	node     Node
	metadata *metadata.Metadata
}

// New returns an author submitting through node. The metadata decodes
// the events of included extrinsics.
func New(node Node, m *metadata.Metadata) *Author {
	return &Author{node: node, metadata: m}
}

// Submit submits the encoded extrinsic. Without waiting it returns once
// the node accepted the extrinsic in its pool. Node refusals are returned
// as *errkind.RejectionError. When the finalization wait times out, the
// receipt of the included extrinsic is returned with ErrFinalizationTimeout.
func (a *Author) Submit(ctx context.Context, encoded []byte, options Options) (*Receipt, error) {
	if !options.WaitForInclusion && !options.WaitForFinalization {
		hash, err := a.node.SubmitExtrinsic(ctx, encoded)
		if err != nil {
			return nil, fmt.Errorf("submitting extrinsic: %w", rejection(err))
		}
		logger.Debugf("extrinsic %s accepted in pool", hash.Short())
		return &Receipt{ExtrinsicHash: hash, State: InPool, author: a}, nil
	}

	hash := common.Blake2b256(encoded)
	stream, err := a.node.WatchExtrinsic(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("submitting extrinsic: %w", rejection(err))
	}
	defer func() {
		unsubscribeCtx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
		defer cancel()
		err := stream.Unsubscribe(unsubscribeCtx)
		if err != nil {
			logger.Debugf("unwatching extrinsic %s: %s", hash.Short(), err)
		}
	}()

	receipt := &Receipt{ExtrinsicHash: hash, State: Pending, author: a}
	err = a.watch(ctx, stream, receipt, options)
	if err != nil && !errors.Is(err, ErrFinalizationTimeout) {
		return nil, err
	}
	return receipt, err
}

func (a *Author) watch(ctx context.Context, stream StatusStream, receipt *Receipt, options Options) error {
	waitCtx := ctx
	finalizationBounded := false
	cancelFinalization := func() {}
	defer func() { cancelFinalization() }()

	for {
		status, err := stream.Next(waitCtx)
		if err != nil {
			return waitError(ctx, waitCtx, receipt, err)
		}

		receipt.Statuses = append(receipt.Statuses, status)
		receipt.State = receipt.State.next(status.Kind)
		logger.Debugf("extrinsic %s status %s, state %s", receipt.ExtrinsicHash.Short(), status.Kind, receipt.State)

		switch status.Kind {
		case rpc.StatusInBlock:
			receipt.BlockHash = status.BlockHash
			if !options.WaitForFinalization {
				return nil
			}
			if options.FinalizationTimeout > 0 && !finalizationBounded {
				waitCtx, cancelFinalization = context.WithTimeout(ctx, options.FinalizationTimeout)
				finalizationBounded = true
			}
		case rpc.StatusRetracted:
			receipt.BlockHash = common.Hash{}
		case rpc.StatusFinalized:
			receipt.BlockHash = status.BlockHash
			return nil
		case rpc.StatusFinalityTimeout:
			return fmt.Errorf("%w: node stopped waiting in block %s", ErrFinalizationTimeout, status.BlockHash.Short())
		case rpc.StatusInvalid, rpc.StatusDropped, rpc.StatusUsurped:
			return &errkind.RejectionError{Message: string(status.Kind)}
		}
	}
}

// waitError maps a status stream failure, waitCtx being the context
// bounding the finalization wait.
func waitError(ctx, waitCtx context.Context, receipt *Receipt, err error) error {
	switch {
	case ctx.Err() == nil && waitCtx.Err() != nil:
		return fmt.Errorf("%w: after %d statuses", ErrFinalizationTimeout, len(receipt.Statuses))
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: waiting for extrinsic %s: %w", errkind.ErrTimeout, receipt.ExtrinsicHash.Short(), err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("waiting for extrinsic %s: %w", receipt.ExtrinsicHash.Short(), err)
	case errors.Is(err, errkind.ErrConnection):
		return fmt.Errorf("waiting for extrinsic %s: %w", receipt.ExtrinsicHash.Short(), err)
	default:
		return fmt.Errorf("%w: %w", ErrStreamEnded, err)
	}
}
