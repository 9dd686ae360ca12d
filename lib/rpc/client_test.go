// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubscriptionID = "sub-1"

func testHeaderJSON(number uint64) map[string]any {
	return map[string]any{
		"parentHash":     common.Hash{1}.String(),
		"number":         fmt.Sprintf("0x%x", number),
		"stateRoot":      common.Hash{2}.String(),
		"extrinsicsRoot": common.Hash{3}.String(),
		"digest":         map[string]any{"logs": []string{}},
	}
}

// chainHandler answers a small set of node methods.
func chainHandler(unsubscribed chan<- []string) testHandler {
	return func(t *testing.T, conn *testConn, req testRequest) {
		switch req.Method {
		case "system_chain":
			conn.reply(t, req, "Development")
		case "echo":
			var params []any
			_ = json.Unmarshal(req.Params, &params)
			conn.reply(t, req, params)
		case "sleep":
			var params []int
			_ = json.Unmarshal(req.Params, &params)
			time.Sleep(time.Duration(params[0]) * time.Millisecond)
			conn.reply(t, req, params[0])
		case "hang":
		case "drop":
			conn.drop()
		case "failing":
			conn.replyError(t, req, 1010, "Invalid Transaction")
		case MethodGetStorage, MethodGetBlockHash:
			conn.reply(t, req, nil)
		case MethodSubscribeNewHeads:
			conn.reply(t, req, testSubscriptionID)
			for number := uint64(1); number <= 3; number++ {
				conn.notify(t, "chain_newHead", testSubscriptionID, testHeaderJSON(number))
			}
		case "subscribe_then_drop":
			conn.reply(t, req, testSubscriptionID)
			time.Sleep(20 * time.Millisecond)
			conn.drop()
		case MethodUnsubscribeNewHeads:
			var params []string
			_ = json.Unmarshal(req.Params, &params)
			conn.reply(t, req, true)
			if unsubscribed != nil {
				unsubscribed <- params
			}
		default:
			conn.replyError(t, req, -32601, "Method not found")
		}
	}
}

func dialTest(t *testing.T, endpoint string, options ...Option) *Client {
	t.Helper()
	client, err := Dial(context.Background(), endpoint, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func Test_Dial_unsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "ftp://localhost:9944")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.ErrorIs(t, err, errkind.ErrInvalidParams)
}

func Test_Dial_unreachable(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "ws://127.0.0.1:1")
	assert.ErrorIs(t, err, errkind.ErrConnection)
}

func Test_Client_Call(t *testing.T) {
	t.Parallel()

	wsURL, httpURL := newTestServer(t, chainHandler(nil))

	testCases := map[string]struct {
		endpoint      string
		subscriptions bool
	}{
		"websocket": {endpoint: wsURL, subscriptions: true},
		"http":      {endpoint: httpURL},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := dialTest(t, testCase.endpoint)
			assert.Equal(t, testCase.endpoint, client.Endpoint())
			assert.Equal(t, testCase.subscriptions, client.SupportsSubscriptions())

			chain, err := client.SystemChain(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "Development", chain)

			var echoed []any
			err = client.Call(context.Background(), &echoed, "echo", "a", 1)
			require.NoError(t, err)
			assert.Equal(t, []any{"a", float64(1)}, echoed)

			err = client.Call(context.Background(), nil, "echo")
			require.NoError(t, err)

			err = client.Call(context.Background(), nil, "failing")
			require.Error(t, err)
			rpcErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, 1010, rpcErr.Code)
			assert.Equal(t, "Invalid Transaction", rpcErr.Message)

			var chainNumber int
			err = client.Call(context.Background(), &chainNumber, "system_chain")
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func Test_Client_nullResults(t *testing.T) {
	t.Parallel()

	wsURL, httpURL := newTestServer(t, chainHandler(nil))

	for _, endpoint := range []string{wsURL, httpURL} {
		client := dialTest(t, endpoint)

		value, err := client.GetStorage(context.Background(), []byte{1, 2}, nil)
		require.NoError(t, err)
		assert.Nil(t, value)

		number := uint64(7)
		_, err = client.GetBlockHash(context.Background(), &number)
		assert.ErrorIs(t, err, errkind.ErrNotFound)
	}
}

func Test_Client_Call_concurrentResponsesOutOfOrder(t *testing.T) {
	t.Parallel()

	wsURL, _ := newTestServer(t, chainHandler(nil))
	client := dialTest(t, wsURL)

	delays := []int{80, 10, 50, 1, 30}
	results := make([]int, len(delays))
	var wg sync.WaitGroup
	for i, delay := range delays {
		wg.Add(1)
		go func(i, delay int) {
			defer wg.Done()
			err := client.Call(context.Background(), &results[i], "sleep", delay)
			assert.NoError(t, err)
		}(i, delay)
	}
	wg.Wait()

	assert.Equal(t, delays, results)
}

func Test_Client_Call_timeout(t *testing.T) {
	t.Parallel()

	wsURL, _ := newTestServer(t, chainHandler(nil))

	client := dialTest(t, wsURL, Timeout(50*time.Millisecond))
	err := client.Call(context.Background(), nil, "hang")
	assert.ErrorIs(t, err, errkind.ErrTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	client = dialTest(t, wsURL)
	err = client.Call(ctx, nil, "hang")
	assert.ErrorIs(t, err, errkind.ErrTimeout)

	// the connection is still usable
	_, err = client.SystemChain(context.Background())
	assert.NoError(t, err)
}

func Test_Client_connectionDropped(t *testing.T) {
	t.Parallel()

	wsURL, _ := newTestServer(t, chainHandler(nil))
	client := dialTest(t, wsURL)

	sub, err := client.Subscribe(context.Background(), "subscribe_then_drop", MethodUnsubscribeNewHeads)
	require.NoError(t, err)

	err = client.Call(context.Background(), nil, "hang")
	assert.ErrorIs(t, err, errkind.ErrConnection)

	_, err = NextHeader(context.Background(), sub)
	assert.ErrorIs(t, err, errkind.ErrConnection)
	assert.ErrorIs(t, sub.Err(), errkind.ErrConnection)

	err = client.Call(context.Background(), nil, "system_chain")
	assert.ErrorIs(t, err, errkind.ErrConnection)
}

func Test_Client_Close(t *testing.T) {
	t.Parallel()

	wsURL, _ := newTestServer(t, chainHandler(nil))
	client := dialTest(t, wsURL)

	sub, err := client.SubscribeNewHeads(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.Close())

	err = client.Call(context.Background(), nil, "system_chain")
	assert.ErrorIs(t, err, ErrClosed)

	for range sub.Notifications() {
	}
	assert.ErrorIs(t, sub.Err(), ErrClosed)
}

func Test_Client_Subscribe(t *testing.T) {
	t.Parallel()

	unsubscribed := make(chan []string, 1)
	wsURL, _ := newTestServer(t, chainHandler(unsubscribed))
	client := dialTest(t, wsURL)

	sub, err := client.SubscribeNewHeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSubscriptionID, sub.ID())
	assert.Equal(t, MethodSubscribeNewHeads, sub.Method())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for number := BlockNumber(1); number <= 3; number++ {
		header, err := NextHeader(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, number, header.Number)
		assert.Equal(t, common.Hash{1}, header.ParentHash)
	}

	err = sub.Unsubscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testSubscriptionID}, <-unsubscribed)
	assert.NoError(t, sub.Err())

	_, err = NextHeader(ctx, sub)
	assert.ErrorIs(t, err, ErrClosed)

	// second unsubscribe is a no-op
	assert.NoError(t, sub.Unsubscribe(ctx))
}

func Test_Client_Subscribe_lateResponse(t *testing.T) {
	t.Parallel()

	answer := make(chan struct{})
	unsubscribed := make(chan json.RawMessage, 1)
	wsURL, _ := newTestServer(t, func(t *testing.T, conn *testConn, req testRequest) {
		switch req.Method {
		case "test_subscribe":
			<-answer
			conn.reply(t, req, "late-sub")
		case "test_unsubscribe":
			unsubscribed <- req.Params
			conn.reply(t, req, true)
		}
	})
	client := dialTest(t, wsURL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Subscribe(ctx, "test_subscribe", "test_unsubscribe")
	require.ErrorIs(t, err, errkind.ErrTimeout)
	close(answer)

	select {
	case params := <-unsubscribed:
		assert.JSONEq(t, `["late-sub"]`, string(params))
	case <-time.After(5 * time.Second):
		t.Fatal("late subscription was not released")
	}
}

func Test_Client_Subscribe_http(t *testing.T) {
	t.Parallel()

	_, httpURL := newTestServer(t, chainHandler(nil))
	client := dialTest(t, httpURL)

	_, err := client.SubscribeNewHeads(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionsUnsupported)
}

func Test_Client_metrics(t *testing.T) {
	t.Parallel()

	_, httpURL := newTestServer(t, chainHandler(nil))
	registry := prometheus.NewRegistry()

	client := dialTest(t, httpURL, Metrics(registry))
	// a second client shares the registered collectors
	other := dialTest(t, httpURL, Metrics(registry))

	_, err := client.SystemChain(context.Background())
	require.NoError(t, err)
	_, err = other.SystemChain(context.Background())
	require.NoError(t, err)
	err = client.Call(context.Background(), nil, "failing")
	require.Error(t, err)

	m := client.metrics
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("system_chain")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.errors.WithLabelValues("system_chain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("failing")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(m.latency))
}
