// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// testConn sends JSON messages to one client.
type testConn struct {
	mu   sync.Mutex
	send func(v any) error
	drop func()
}

func (c *testConn) write(t *testing.T, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.send(v)
	if err != nil {
		t.Logf("test server write: %s", err)
	}
}

func (c *testConn) reply(t *testing.T, req testRequest, result any) {
	c.write(t, map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func (c *testConn) replyError(t *testing.T, req testRequest, code int, msg string) {
	c.write(t, map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"error":   map[string]any{"code": code, "message": msg},
	})
}

func (c *testConn) notify(t *testing.T, method, subscription string, result any) {
	c.write(t, map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  map[string]any{"subscription": subscription, "result": result},
	})
}

type testHandler func(t *testing.T, conn *testConn, req testRequest)

// newTestServer serves handler over websocket and HTTP. Websocket requests
// are handled concurrently so responses may arrive out of order.
func newTestServer(t *testing.T, handler testHandler) (wsURL, httpURL string) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		conn := &testConn{
			send: ws.WriteJSON,
			drop: func() { _ = ws.Close() },
		}
		for {
			var req testRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				return
			}
			go handler(t, conn, req)
		}
	})
	mux.HandleFunc("/http", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req testRequest
		require.NoError(t, json.Unmarshal(body, &req))

		w.Header().Set("Content-Type", "application/json")
		conn := &testConn{
			send: json.NewEncoder(w).Encode,
			drop: func() {},
		}
		handler(t, conn, req)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws", server.URL + "/http"
}
