// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package retry polls functions against live nodes.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Error is returned when the context ends before polling succeeded.
type Error struct {
	Attempts int
	Elapsed  time.Duration
	// Last is the last error returned by the polled function, if any.
	Last error
	// Err is the context error.
	Err error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("gave up after %d attempt(s) in %s: %s",
		e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err)
	if e.Last != nil {
		s += fmt.Sprintf(" (last error: %s)", e.Last)
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Last == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Last}
}

// Value calls f every interval until it returns a nil error,
// and returns the value of that call.
func Value[T any](ctx context.Context, interval time.Duration,
	f func() (T, error)) (value T, err error) {
	var last error
	attempts, elapsed, ctxErr := poll(ctx, interval, func() bool {
		value, last = f()
		return last == nil
	})
	if ctxErr != nil {
		return value, &Error{Attempts: attempts, Elapsed: elapsed, Last: last, Err: ctxErr}
	}
	return value, nil
}

// UntilNoError calls f every interval until it returns a nil error.
func UntilNoError(ctx context.Context, interval time.Duration, f func() error) error {
	_, err := Value(ctx, interval, func() (struct{}, error) {
		return struct{}{}, f()
	})
	return err
}

// UntilOK calls f every interval until it reports ok. A non nil error
// from f stops polling immediately.
func UntilOK(ctx context.Context, interval time.Duration,
	f func() (ok bool, err error)) error {
	var stop error
	attempts, elapsed, ctxErr := poll(ctx, interval, func() bool {
		ok, err := f()
		if err != nil {
			stop = err
			return true
		}
		return ok
	})
	switch {
	case stop != nil:
		return fmt.Errorf("stop retrying: %w", stop)
	case ctxErr != nil:
		return &Error{Attempts: attempts, Elapsed: elapsed, Err: ctxErr}
	}
	return nil
}

// poll calls done at least once, then on every tick until it
// returns true or the context ends.
func poll(ctx context.Context, interval time.Duration,
	done func() bool) (attempts int, elapsed time.Duration, err error) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		attempts++
		if done() {
			return attempts, time.Since(start), nil
		}
		select {
		case <-ctx.Done():
			return attempts, time.Since(start), ctx.Err()
		case <-ticker.C:
		}
	}
}
