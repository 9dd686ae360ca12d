// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package author

import (
	"context"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/rpc"
)

//go:generate mockgen -destination=mocks_test.go -package $GOPACKAGE . Node,StatusStream

// Node is the node API used to submit and track extrinsics.
type Node interface {
	SubmitExtrinsic(ctx context.Context, extrinsic []byte) (common.Hash, error)
	WatchExtrinsic(ctx context.Context, extrinsic []byte) (StatusStream, error)
	GetBlock(ctx context.Context, hash *common.Hash) (*rpc.SignedBlock, error)
	GetStorage(ctx context.Context, key []byte, hash *common.Hash) ([]byte, error)
}

// StatusStream yields the pool statuses of a watched extrinsic.
type StatusStream interface {
	Next(ctx context.Context) (rpc.TransactionStatus, error)
	Unsubscribe(ctx context.Context) error
}

// NewNode returns the Node backed by the RPC client.
func NewNode(client *rpc.Client) Node {
	return &rpcNode{Client: client}
}

type rpcNode struct {
	*rpc.Client
}

func (n *rpcNode) WatchExtrinsic(ctx context.Context, extrinsic []byte) (StatusStream, error) {
	sub, err := n.SubmitAndWatchExtrinsic(ctx, extrinsic)
	if err != nil {
		return nil, err
	}
	return &statusStream{sub: sub}, nil
}

type statusStream struct {
	sub *rpc.Subscription
}

func (s *statusStream) Next(ctx context.Context) (status rpc.TransactionStatus, err error) {
	err = s.sub.Next(ctx, &status)
	return status, err
}

func (s *statusStream) Unsubscribe(ctx context.Context) error {
	return s.sub.Unsubscribe(ctx)
}
