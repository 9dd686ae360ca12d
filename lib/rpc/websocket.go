// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/gorilla/websocket"
)

type response struct {
	result json.RawMessage
	err    error
}

type pendingCall struct {
	method   string
	response chan response
	// subscription is registered by the read loop before any of its
	// notifications are dispatched.
	subscription *Subscription
	// abandoned marks a subscribe call its caller gave up on. It stays
	// pending so a late subscription is released on the node.
	abandoned bool
}

// wsTransport multiplexes requests and subscriptions over one websocket.
type wsTransport struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu            sync.Mutex
	nextID        uint64
	pending       map[uint64]*pendingCall
	subscriptions map[string]*Subscription
	closeErr      error

	closed chan struct{}
}

func dialWebsocket(ctx context.Context, endpoint string, readLimit int64) (*wsTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %w", errkind.ErrConnection, endpoint, err)
	}
	if readLimit > 0 {
		conn.SetReadLimit(readLimit)
	}

	t := &wsTransport{
		conn:          conn,
		pending:       make(map[uint64]*pendingCall),
		subscriptions: make(map[string]*Subscription),
		closed:        make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *wsTransport) readLoop() {
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.fail(err)
			return
		}
		logger.Tracef("websocket message received: %s", data)

		var msg message
		err = json.Unmarshal(data, &msg)
		if err != nil {
			logger.Debugf("dropping malformed websocket message: %s", err)
			continue
		}
		t.dispatch(&msg)
	}
}

func (t *wsTransport) dispatch(msg *message) {
	if msg.isNotification() {
		var params notificationParams
		err := json.Unmarshal(msg.Params, &params)
		if err != nil {
			logger.Debugf("dropping malformed %s notification: %s", msg.Method, err)
			return
		}
		id := subscriptionID(params.Subscription)
		t.mu.Lock()
		sub, ok := t.subscriptions[id]
		t.mu.Unlock()
		if !ok {
			logger.Debugf("dropping %s notification for unknown subscription %s", msg.Method, id)
			return
		}
		sub.deliver(params.Result)
		return
	}

	id, ok := msg.id()
	if !ok {
		logger.Debugf("dropping response with id %s", msg.ID)
		return
	}
	t.mu.Lock()
	call, ok := t.pending[id]
	delete(t.pending, id)
	abandoned := ok && call.abandoned
	if ok && !abandoned && call.subscription != nil && msg.Error == nil {
		call.subscription.id = subscriptionID(msg.Result)
		t.subscriptions[call.subscription.id] = call.subscription
	}
	t.mu.Unlock()
	switch {
	case !ok:
		logger.Debugf("dropping response to unknown request %d", id)
		return
	case abandoned:
		if msg.Error == nil {
			logger.Debugf("releasing late %s subscription", call.method)
			go t.release(call.subscription.unsubscribeMethod, subscriptionID(msg.Result))
		}
		return
	}

	if msg.Error != nil {
		if isNull(msg.Error.Data) {
			msg.Error.Data = nil
		}
		call.response <- response{err: msg.Error}
		return
	}
	call.response <- response{result: msg.Result}
}

// fail closes the transport, failing pending calls and subscriptions.
func (t *wsTransport) fail(cause error) {
	t.mu.Lock()
	if t.closeErr != nil {
		t.mu.Unlock()
		return
	}
	t.closeErr = cause
	if !errors.Is(cause, errkind.ErrConnection) {
		t.closeErr = fmt.Errorf("%w: %w", errkind.ErrConnection, cause)
	}
	pending := t.pending
	subscriptions := t.subscriptions
	t.pending = make(map[uint64]*pendingCall)
	t.subscriptions = make(map[string]*Subscription)
	close(t.closed)
	t.mu.Unlock()

	logger.Debugf("websocket connection closed: %s", cause)
	for _, call := range pending {
		call.response <- response{err: t.closeErr}
	}
	for _, sub := range subscriptions {
		sub.close(t.closeErr)
	}
	_ = t.conn.Close()
}

func (t *wsTransport) call(ctx context.Context, method string, params []any,
	subscription *Subscription) (json.RawMessage, error) {
	call := &pendingCall{
		method:       method,
		response:     make(chan response, 1),
		subscription: subscription,
	}

	t.mu.Lock()
	if t.closeErr != nil {
		err := t.closeErr
		t.mu.Unlock()
		return nil, err
	}
	t.nextID++
	id := t.nextID
	t.pending[id] = call
	t.mu.Unlock()

	err := t.write(ctx, request{Version: version, ID: id, Method: method, Params: params})
	if err != nil {
		t.forget(id)
		return nil, err
	}

	select {
	case resp := <-call.response:
		return resp.result, resp.err
	case <-ctx.Done():
		t.abandon(id)
		return nil, ctx.Err()
	}
}

// abandon forgets the call of a caller giving up. Subscribe calls are
// kept as abandoned until the node answers them.
func (t *wsTransport) abandon(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	call, ok := t.pending[id]
	switch {
	case !ok:
	case call.subscription == nil:
		delete(t.pending, id)
	default:
		call.abandoned = true
	}
}

// release unsubscribes a subscription nobody listens to.
func (t *wsTransport) release(unsubscribeMethod, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_, err := t.call(ctx, unsubscribeMethod, []any{id}, nil)
	if err != nil {
		logger.Debugf("releasing subscription %s: %s", id, err)
	}
}

func (t *wsTransport) forget(id uint64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *wsTransport) write(ctx context.Context, req request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", req.Method, err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	err = t.conn.SetWriteDeadline(deadline)
	if err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrConnection, err)
	}

	logger.Tracef("websocket message sent: %s", data)
	err = t.conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.fail(err)
		return fmt.Errorf("%w: writing %s request: %w", errkind.ErrConnection, req.Method, err)
	}
	return nil
}

func (t *wsTransport) subscribe(ctx context.Context, method, unsubscribeMethod string,
	params []any) (*Subscription, error) {
	sub := newSubscription(t, method, unsubscribeMethod)
	_, err := t.call(ctx, method, params, sub)
	if err != nil {
		sub.close(err)
		t.mu.Lock()
		registered := sub.id != "" && t.subscriptions[sub.id] == sub
		t.mu.Unlock()
		if registered {
			// the server subscribed after the caller gave up
			t.removeSubscription(sub.id)
			go t.release(unsubscribeMethod, sub.id)
		}
		return nil, err
	}
	return sub, nil
}

func (t *wsTransport) removeSubscription(id string) {
	t.mu.Lock()
	delete(t.subscriptions, id)
	t.mu.Unlock()
}

func (t *wsTransport) close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.writeMu.Unlock()
	t.fail(ErrClosed)
	return nil
}

func (*wsTransport) supportsSubscriptions() bool { return true }
