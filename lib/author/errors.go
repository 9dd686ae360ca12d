// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package author

import (
	"encoding/json"
	"fmt"

	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	ErrFinalizationTimeout = fmt.Errorf("%w: extrinsic not finalized in time", errkind.ErrTimeout)
	ErrStreamEnded         = fmt.Errorf("%w: status stream ended before a terminal status", errkind.ErrConnection)
	ErrNotIncluded         = fmt.Errorf("%w: extrinsic is not included in a block", errkind.ErrNotFound)
	ErrExtrinsicNotInBlock = fmt.Errorf("%w: extrinsic missing from its block", errkind.ErrNotFound)
	ErrNoOutcome           = fmt.Errorf("%w: no dispatch outcome event for extrinsic", errkind.ErrNotFound)
)

// rejection converts a JSON-RPC error into a rejection error,
// other errors are returned unchanged.
func rejection(err error) error {
	rpcErr, ok := rpc.AsError(err)
	if !ok {
		return err
	}

	rejected := &errkind.RejectionError{Code: rpcErr.Code, Message: rpcErr.Message}
	if len(rpcErr.Data) > 0 {
		var data string
		if json.Unmarshal(rpcErr.Data, &data) == nil {
			rejected.Data = data
		} else {
			rejected.Data = string(rpcErr.Data)
		}
	}
	return rejected
}
