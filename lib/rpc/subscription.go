// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Subscription is a stream of notifications of a server side subscription.
// Notifications are queued so a slow reader never blocks the connection.
type Subscription struct {
	id                string
	method            string
	unsubscribeMethod string
	transport         *wsTransport

	notifications chan json.RawMessage
	wake          chan struct{}
	quit          chan struct{}

	mu     sync.Mutex
	queue  []json.RawMessage
	err    error
	closed bool
}

func newSubscription(t *wsTransport, method, unsubscribeMethod string) *Subscription {
	s := &Subscription{
		method:            method,
		unsubscribeMethod: unsubscribeMethod,
		transport:         t,
		notifications:     make(chan json.RawMessage),
		wake:              make(chan struct{}, 1),
		quit:              make(chan struct{}),
	}
	go s.forward()
	return s
}

// ID returns the server assigned subscription id.
func (s *Subscription) ID() string { return s.id }

// Method returns the subscribe method name.
func (s *Subscription) Method() string { return s.method }

// Notifications returns the notification results in arrival order.
// The channel is closed when the subscription ends, Err then tells why.
func (s *Subscription) Notifications() <-chan json.RawMessage {
	return s.notifications
}

// Err returns the reason the subscription ended: nil after Unsubscribe,
// an error wrapping errkind.ErrConnection when the connection dropped.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next blocks until the next notification and decodes it into result.
func (s *Subscription) Next(ctx context.Context, result any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-s.notifications:
		if !ok {
			err := s.Err()
			if err == nil {
				err = fmt.Errorf("subscription %s: %w", s.id, ErrClosed)
			}
			return err
		}
		err := json.Unmarshal(raw, result)
		if err != nil {
			return fmt.Errorf("%w: %s notification: %w", ErrInvalidResponse, s.method, err)
		}
		return nil
	}
}

// Unsubscribe ends the subscription and releases it on the server.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	if !s.close(nil) {
		return nil
	}
	s.transport.removeSubscription(s.id)

	var ok bool
	raw, err := s.transport.call(ctx, s.unsubscribeMethod, []any{s.id}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", s.unsubscribeMethod, err)
	}
	if json.Unmarshal(raw, &ok) == nil && !ok {
		logger.Debugf("%s: server did not know subscription %s", s.unsubscribeMethod, s.id)
	}
	return nil
}

func (s *Subscription) deliver(result json.RawMessage) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, result)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// close ends the subscription with err and returns false if it was already closed.
func (s *Subscription) close(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.err = err
	s.queue = nil
	close(s.quit)
	return true
}

func (s *Subscription) forward() {
	defer close(s.notifications)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.quit:
				return
			}
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.notifications <- next:
		case <-s.quit:
			return
		}
	}
}
