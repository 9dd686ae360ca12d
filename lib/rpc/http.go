// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// httpTransport sends one POST request per call.
type httpTransport struct {
	client   *resty.Client
	endpoint string
}

func newHTTPTransport(endpoint string) *httpTransport {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &httpTransport{client: client, endpoint: endpoint}
}

func (t *httpTransport) call(ctx context.Context, method string, params []any,
	_ *Subscription) (json.RawMessage, error) {
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	logger.Tracef("http request sent: %s", body)

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(t.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", errkind.ErrConnection, method, err)
	}
	logger.Tracef("http response received: %s", resp.Body())

	var result json.RawMessage
	err = json2.DecodeClientResponse(bytes.NewReader(resp.Body()), &result)
	var jsonErr *json2.Error
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, json2.ErrNullResult):
		return json.RawMessage("null"), nil
	case errors.As(err, &jsonErr):
		rpcErr := &Error{Code: int(jsonErr.Code), Message: jsonErr.Message}
		if jsonErr.Data != nil {
			rpcErr.Data, _ = json.Marshal(jsonErr.Data)
		}
		return nil, rpcErr
	case resp.IsError():
		return nil, fmt.Errorf("%w: %s: HTTP status %s", errkind.ErrConnection, method, resp.Status())
	default:
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, method, err)
	}
}

func (*httpTransport) subscribe(context.Context, string, string, []any) (*Subscription, error) {
	return nil, ErrSubscriptionsUnsupported
}

func (*httpTransport) close() error { return nil }

func (*httpTransport) supportsSubscriptions() bool { return false }
