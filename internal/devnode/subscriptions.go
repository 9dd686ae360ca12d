// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/rpc"
)

// Notification methods.
const (
	notifyNewHead         = "chain_newHead"
	notifyFinalizedHead   = "chain_finalizedHead"
	notifyExtrinsicUpdate = "author_extrinsicUpdate"
)

type headsKind uint8

const (
	newHeads headsKind = iota
	finalizedHeads
)

func (k headsKind) notification() string {
	if k == finalizedHeads {
		return notifyFinalizedHead
	}
	return notifyNewHead
}

type subscription struct {
	conn *wsConn
	kind headsKind
}

// watch follows a submitted extrinsic until its block is finalized.
type watch struct {
	conn      *wsConn
	extrinsic common.Hash
	block     *block
}

// The notify methods require n.mu to be held.

func (n *Node) notifyHeads(kind headsKind, b *block) {
	for id, sub := range n.subscriptions {
		if sub.kind == kind {
			sub.conn.notify(kind.notification(), id, b.header)
		}
	}
}

func (n *Node) notifyIncluded(b *block) {
	for id, w := range n.watches {
		if w.block == nil && b.contains(w.extrinsic) {
			w.block = b
			w.conn.notify(notifyExtrinsicUpdate, id,
				rpc.TransactionStatus{Kind: rpc.StatusInBlock, BlockHash: b.hash})
		}
	}
}

func (n *Node) notifyFinalized(b *block) {
	for id, w := range n.watches {
		if w.block == b {
			w.conn.notify(notifyExtrinsicUpdate, id,
				rpc.TransactionStatus{Kind: rpc.StatusFinalized, BlockHash: b.hash})
			delete(n.watches, id)
		}
	}
}

// dropConn releases the subscriptions and watches of a closed connection.
func (n *Node) dropConn(c *wsConn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, sub := range n.subscriptions {
		if sub.conn == c {
			delete(n.subscriptions, id)
		}
	}
	for id, w := range n.watches {
		if w.conn == c {
			delete(n.watches, id)
		}
	}
	delete(n.conns, c)
}
