// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package author

import "github.com/ChainSafe/subclient/lib/rpc"

// State is the lifecycle state of a submitted extrinsic.
type State uint8

const (
	Pending State = iota
	InPool
	Included
	Finalized
	Rejected
	Dropped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InPool:
		return "in pool"
	case Included:
		return "included"
	case Finalized:
		return "finalized"
	case Rejected:
		return "rejected"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Terminal is true for states no status can leave.
func (s State) Terminal() bool {
	return s == Finalized || s == Rejected || s == Dropped
}

// next returns the state reached from s on the status.
func (s State) next(status rpc.StatusKind) State {
	switch status {
	case rpc.StatusFuture, rpc.StatusReady, rpc.StatusBroadcast:
		if s == Pending {
			return InPool
		}
		return s
	case rpc.StatusInBlock:
		return Included
	case rpc.StatusRetracted:
		return InPool
	case rpc.StatusFinalized:
		return Finalized
	case rpc.StatusInvalid:
		return Rejected
	case rpc.StatusDropped, rpc.StatusUsurped:
		return Dropped
	default:
		return s
	}
}
