// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/google/uuid"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/gorilla/websocket"
)

const (
	jsonrpcVersion = "2.0"
	writeTimeout   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params Params          `json:"params"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type wsResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
}

type wsNotification struct {
	Version string               `json:"jsonrpc"`
	Method  string               `json:"method"`
	Params  wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription string `json:"subscription"`
	Result       any    `json:"result"`
}

// wsConn serves one websocket connection. Subscription methods are
// handled here, other methods go through the JSON-RPC services.
type wsConn struct {
	node *Node
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (n *Node) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debugf("websocket upgrade failed: %s", err)
		return
	}

	c := &wsConn{node: n, conn: conn}
	n.mu.Lock()
	n.conns[c] = struct{}{}
	n.mu.Unlock()

	c.handle()
}

func (c *wsConn) handle() {
	defer func() {
		c.node.dropConn(c)
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debugf("websocket connection closed: %s", err)
			return
		}
		logger.Tracef("websocket message received: %s", data)

		var req wsRequest
		err = json.Unmarshal(data, &req)
		if err != nil || req.Method == "" {
			c.replyError(json.RawMessage("null"),
				&json2.Error{Code: json2.E_INVALID_REQ, Message: "Invalid request"})
			continue
		}

		switch canonicalMethod(req.Method) {
		case rpc.MethodSubscribeNewHeads:
			c.subscribeHeads(req, newHeads)
		case rpc.MethodSubscribeFinalizedHeads:
			c.subscribeHeads(req, finalizedHeads)
		case rpc.MethodUnsubscribeNewHeads:
			c.unsubscribe(req, newHeads)
		case rpc.MethodUnsubscribeFinalizedHeads:
			c.unsubscribe(req, finalizedHeads)
		case rpc.MethodSubmitAndWatchExtrinsic:
			c.submitAndWatch(req)
		case rpc.MethodUnwatchExtrinsic:
			c.unwatch(req)
		default:
			c.forward(data)
		}
	}
}

// subscribeHeads registers a heads subscription and sends the current
// head right away.
func (c *wsConn) subscribeHeads(req wsRequest, kind headsKind) {
	n := c.node
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.NewString()
	n.subscriptions[id] = &subscription{conn: c, kind: kind}
	c.reply(req.ID, id)

	head := n.best()
	if kind == finalizedHeads {
		head = n.blocks[n.finalized]
	}
	c.notify(kind.notification(), id, head.header)
}

func (c *wsConn) unsubscribe(req wsRequest, kind headsKind) {
	var id string
	err := req.Params.decode(0, &id)
	if err != nil {
		c.replyError(req.ID, err)
		return
	}

	n := c.node
	n.mu.Lock()
	defer n.mu.Unlock()
	sub, ok := n.subscriptions[id]
	ok = ok && sub.conn == c && sub.kind == kind
	if ok {
		delete(n.subscriptions, id)
	}
	c.reply(req.ID, ok)
}

// submitAndWatch validates the extrinsic, registers its watch, reports
// it ready and seals it.
func (c *wsConn) submitAndWatch(req wsRequest) {
	var raw common.Bytes
	err := req.Params.decode(0, &raw)
	if err != nil {
		c.replyError(req.ID, err)
		return
	}

	n := c.node
	n.mu.Lock()
	defer n.mu.Unlock()
	sub, err := n.check(raw)
	if err != nil {
		c.replyError(req.ID, err)
		return
	}

	id := uuid.NewString()
	n.watches[id] = &watch{conn: c, extrinsic: sub.hash}
	c.reply(req.ID, id)
	c.notify(notifyExtrinsicUpdate, id, rpc.TransactionStatus{Kind: rpc.StatusReady})

	_, err = n.seal(sub)
	if err != nil {
		logger.Errorf("sealing block: %s", err)
		delete(n.watches, id)
		c.notify(notifyExtrinsicUpdate, id, rpc.TransactionStatus{Kind: rpc.StatusDropped})
	}
}

func (c *wsConn) unwatch(req wsRequest) {
	var id string
	err := req.Params.decode(0, &id)
	if err != nil {
		c.replyError(req.ID, err)
		return
	}

	n := c.node
	n.mu.Lock()
	defer n.mu.Unlock()
	w, ok := n.watches[id]
	ok = ok && w.conn == c
	if ok {
		delete(n.watches, id)
	}
	c.reply(req.ID, ok)
}

// forward serves the request through the JSON-RPC services in process,
// as if it was posted over HTTP.
func (c *wsConn) forward(data []byte) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	if err != nil {
		logger.Errorf("building forwarded request: %s", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	response := newResponseBuffer()
	c.node.rpcServer.ServeHTTP(response, req)
	body := bytes.TrimSpace(response.body.Bytes())
	if len(body) == 0 {
		return
	}
	c.write(websocket.TextMessage, body)
}

func (c *wsConn) reply(id json.RawMessage, result any) {
	encoded, err := json.Marshal(result)
	if err != nil {
		logger.Errorf("encoding result: %s", err)
		return
	}
	c.send(wsResponse{Version: jsonrpcVersion, ID: id, Result: encoded})
}

func (c *wsConn) replyError(id json.RawMessage, err error) {
	wsErr := &wsError{Code: int(json2.E_SERVER), Message: err.Error()}
	var jsonErr *json2.Error
	if errors.As(err, &jsonErr) {
		wsErr = &wsError{Code: int(jsonErr.Code), Message: jsonErr.Message, Data: jsonErr.Data}
	}
	c.send(wsResponse{Version: jsonrpcVersion, ID: id, Error: wsErr})
}

func (c *wsConn) notify(method, subscription string, result any) {
	c.send(wsNotification{
		Version: jsonrpcVersion,
		Method:  method,
		Params:  wsNotificationParams{Subscription: subscription, Result: result},
	})
}

func (c *wsConn) send(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("encoding websocket message: %s", err)
		return
	}
	c.write(websocket.TextMessage, data)
}

func (c *wsConn) write(messageType int, data []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err == nil {
		err = c.conn.WriteMessage(messageType, data)
	}
	if err != nil {
		logger.Debugf("writing websocket message: %s", err)
		return
	}
	logger.Tracef("websocket message sent: %s", data)
}

// responseBuffer is an http.ResponseWriter keeping the body in memory.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), status: http.StatusOK}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *responseBuffer) WriteHeader(status int) { b.status = status }
