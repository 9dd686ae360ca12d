// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_UntilOK(t *testing.T) {
	t.Parallel()

	errTest := errors.New("test error")

	testCases := map[string]struct {
		results []bool
		err     error
		errWrap error
		calls   int
	}{
		"ok_first": {
			results: []bool{true},
			calls:   1,
		},
		"ok_third": {
			results: []bool{false, false, true},
			calls:   3,
		},
		"error": {
			results: []bool{false},
			err:     errTest,
			errWrap: errTest,
			calls:   1,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := UntilOK(context.Background(), time.Millisecond, func() (bool, error) {
				ok := testCase.results[calls]
				calls++
				return ok, testCase.err
			})
			assert.ErrorIs(t, err, testCase.errWrap)
			assert.Equal(t, testCase.calls, calls)
		})
	}
}

func Test_UntilNoError_canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errTest := errors.New("test error")
	err := UntilNoError(ctx, 5*time.Millisecond, func() error { return errTest })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "last error: test error")
}

func Test_UntilOK_canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := UntilOK(ctx, time.Millisecond, func() (bool, error) { return false, nil })
	var retryErr *Error
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "last error")
}

func Test_Value(t *testing.T) {
	t.Parallel()

	calls := 0
	value, err := Value(context.Background(), time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, calls)
}

func Test_UntilNoError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := UntilNoError(context.Background(), time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
