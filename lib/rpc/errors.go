// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	ErrClosed                   = fmt.Errorf("%w: client closed", errkind.ErrConnection)
	ErrUnsupportedScheme        = fmt.Errorf("%w: unsupported endpoint scheme", errkind.ErrInvalidParams)
	ErrInvalidResponse          = fmt.Errorf("%w: invalid JSON-RPC response", errkind.ErrCodec)
	ErrSubscriptionsUnsupported = errors.New("subscriptions are not supported over HTTP")
)

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// AsError returns the JSON-RPC error wrapped in err, if any.
func AsError(err error) (rpcErr *Error, ok bool) {
	ok = errors.As(err, &rpcErr)
	return rpcErr, ok
}
