// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package author

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/pkg/errkind"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testExtrinsic = []byte{0x10, 0x04, 0x00, 0x00, 0x01}
	testBlockA    = common.Hash{0xa}
	testBlockB    = common.Hash{0xb}
)

func status(kind rpc.StatusKind, hash common.Hash) rpc.TransactionStatus {
	return rpc.TransactionStatus{Kind: kind, BlockHash: hash}
}

func Test_Author_Submit_withoutWaiting(t *testing.T) {
	t.Parallel()

	errTest := errors.New("test error")
	extrinsicHash := common.Blake2b256(testExtrinsic)

	testCases := map[string]struct {
		hash       common.Hash
		submitErr  error
		receipt    *Receipt
		errWrapped error
		errMessage string
	}{
		"accepted": {
			hash:    extrinsicHash,
			receipt: &Receipt{ExtrinsicHash: extrinsicHash, State: InPool},
		},
		"rejected": {
			submitErr: &rpc.Error{Code: 1010, Message: "Invalid Transaction",
				Data: json.RawMessage(`"Transaction is outdated"`)},
			errWrapped: errkind.ErrSubmissionRejected,
			errMessage: "submitting extrinsic: submission rejected: Invalid Transaction (code 1010): " +
				"Transaction is outdated",
		},
		"connection error": {
			submitErr:  errTest,
			errWrapped: errTest,
			errMessage: "submitting extrinsic: test error",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			node := NewMockNode(ctrl)
			node.EXPECT().SubmitExtrinsic(gomock.Any(), testExtrinsic).
				Return(testCase.hash, testCase.submitErr)

			author := New(node, nil)
			receipt, err := author.Submit(context.Background(), testExtrinsic, Options{})

			if testCase.errWrapped != nil {
				assert.ErrorIs(t, err, testCase.errWrapped)
				assert.EqualError(t, err, testCase.errMessage)
				assert.Nil(t, receipt)
				return
			}
			require.NoError(t, err)
			testCase.receipt.author = author
			assert.Equal(t, testCase.receipt, receipt)
			assert.False(t, receipt.Included())
		})
	}
}

func Test_Author_Submit_waiting(t *testing.T) {
	t.Parallel()

	errTest := errors.New("test error")

	testCases := map[string]struct {
		options    Options
		statuses   []rpc.TransactionStatus
		streamErr  error
		state      State
		blockHash  common.Hash
		noReceipt  bool
		errWrapped error
		errMessage string
	}{
		"included": {
			options: Options{WaitForInclusion: true},
			statuses: []rpc.TransactionStatus{
				{Kind: rpc.StatusReady},
				{Kind: rpc.StatusBroadcast, Peers: []string{"peer"}},
				status(rpc.StatusInBlock, testBlockA),
			},
			state:     Included,
			blockHash: testBlockA,
		},
		"finalized": {
			options: Options{WaitForInclusion: true, WaitForFinalization: true},
			statuses: []rpc.TransactionStatus{
				{Kind: rpc.StatusReady},
				status(rpc.StatusInBlock, testBlockA),
				status(rpc.StatusFinalized, testBlockA),
			},
			state:     Finalized,
			blockHash: testBlockA,
		},
		"finalization implies waiting": {
			options: Options{WaitForFinalization: true},
			statuses: []rpc.TransactionStatus{
				{Kind: rpc.StatusFuture},
				status(rpc.StatusInBlock, testBlockA),
				status(rpc.StatusRetracted, testBlockA),
				status(rpc.StatusInBlock, testBlockB),
				status(rpc.StatusFinalized, testBlockB),
			},
			state:     Finalized,
			blockHash: testBlockB,
		},
		"invalid": {
			options:    Options{WaitForInclusion: true},
			statuses:   []rpc.TransactionStatus{{Kind: rpc.StatusInvalid}},
			noReceipt:  true,
			errWrapped: errkind.ErrSubmissionRejected,
			errMessage: "submission rejected: invalid",
		},
		"dropped": {
			options:    Options{WaitForInclusion: true},
			statuses:   []rpc.TransactionStatus{{Kind: rpc.StatusReady}, {Kind: rpc.StatusDropped}},
			noReceipt:  true,
			errWrapped: errkind.ErrSubmissionRejected,
			errMessage: "submission rejected: dropped",
		},
		"finality timeout from node": {
			options: Options{WaitForFinalization: true},
			statuses: []rpc.TransactionStatus{
				status(rpc.StatusInBlock, testBlockA),
				status(rpc.StatusFinalityTimeout, testBlockA),
			},
			state:      Included,
			blockHash:  testBlockA,
			errWrapped: ErrFinalizationTimeout,
			errMessage: "timeout: extrinsic not finalized in time: node stopped waiting in block " +
				testBlockA.Short(),
		},
		"connection dropped": {
			options:    Options{WaitForInclusion: true},
			statuses:   []rpc.TransactionStatus{{Kind: rpc.StatusReady}},
			streamErr:  rpc.ErrClosed,
			noReceipt:  true,
			errWrapped: errkind.ErrConnection,
		},
		"malformed status": {
			options:    Options{WaitForInclusion: true},
			streamErr:  errTest,
			noReceipt:  true,
			errWrapped: ErrStreamEnded,
			errMessage: "connection error: status stream ended before a terminal status: test error",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			stream := NewMockStatusStream(ctrl)
			var calls []*gomock.Call
			for _, s := range testCase.statuses {
				calls = append(calls, stream.EXPECT().Next(gomock.Any()).Return(s, nil))
			}
			if testCase.streamErr != nil {
				calls = append(calls, stream.EXPECT().Next(gomock.Any()).
					Return(rpc.TransactionStatus{}, testCase.streamErr))
			}
			gomock.InOrder(calls...)
			stream.EXPECT().Unsubscribe(gomock.Any()).Return(nil)

			node := NewMockNode(ctrl)
			node.EXPECT().WatchExtrinsic(gomock.Any(), testExtrinsic).Return(stream, nil)

			receipt, err := New(node, nil).Submit(context.Background(), testExtrinsic, testCase.options)

			if testCase.errWrapped != nil {
				assert.ErrorIs(t, err, testCase.errWrapped)
				if testCase.errMessage != "" {
					assert.EqualError(t, err, testCase.errMessage)
				}
			} else {
				require.NoError(t, err)
			}
			if testCase.noReceipt {
				assert.Nil(t, receipt)
				return
			}
			require.NotNil(t, receipt)
			assert.Equal(t, common.Blake2b256(testExtrinsic), receipt.ExtrinsicHash)
			assert.Equal(t, testCase.state, receipt.State)
			assert.Equal(t, testCase.blockHash, receipt.BlockHash)
			assert.Equal(t, testCase.statuses, receipt.Statuses)
		})
	}
}

func Test_Author_Submit_watchRejected(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	node := NewMockNode(ctrl)
	node.EXPECT().WatchExtrinsic(gomock.Any(), testExtrinsic).
		Return(nil, &rpc.Error{Code: 1014, Message: "Priority is too low"})

	_, err := New(node, nil).Submit(context.Background(), testExtrinsic, Options{WaitForInclusion: true})
	rejection, ok := errkind.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, 1014, rejection.Code)
	assert.Equal(t, "Priority is too low", rejection.Message)
}

func blockingNext(ctx context.Context) (rpc.TransactionStatus, error) {
	<-ctx.Done()
	return rpc.TransactionStatus{}, ctx.Err()
}

func Test_Author_Submit_finalizationTimeout(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	stream := NewMockStatusStream(ctrl)
	gomock.InOrder(
		stream.EXPECT().Next(gomock.Any()).Return(status(rpc.StatusInBlock, testBlockA), nil),
		stream.EXPECT().Next(gomock.Any()).DoAndReturn(blockingNext),
	)
	stream.EXPECT().Unsubscribe(gomock.Any()).Return(nil)

	node := NewMockNode(ctrl)
	node.EXPECT().WatchExtrinsic(gomock.Any(), testExtrinsic).Return(stream, nil)

	options := Options{WaitForFinalization: true, FinalizationTimeout: 10 * time.Millisecond}
	receipt, err := New(node, nil).Submit(context.Background(), testExtrinsic, options)

	assert.ErrorIs(t, err, ErrFinalizationTimeout)
	assert.ErrorIs(t, err, errkind.ErrTimeout)
	require.NotNil(t, receipt)
	assert.Equal(t, Included, receipt.State)
	assert.Equal(t, testBlockA, receipt.BlockHash)
}

func Test_Author_Submit_contextDeadline(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	stream := NewMockStatusStream(ctrl)
	stream.EXPECT().Next(gomock.Any()).DoAndReturn(blockingNext)
	stream.EXPECT().Unsubscribe(gomock.Any()).Return(nil)

	node := NewMockNode(ctrl)
	node.EXPECT().WatchExtrinsic(gomock.Any(), testExtrinsic).Return(stream, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	receipt, err := New(node, nil).Submit(ctx, testExtrinsic, Options{WaitForInclusion: true})

	assert.ErrorIs(t, err, errkind.ErrTimeout)
	assert.NotErrorIs(t, err, ErrFinalizationTimeout)
	assert.Nil(t, receipt)
}

func Test_State(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		from     State
		status   rpc.StatusKind
		to       State
		terminal bool
	}{
		"pending to pool":          {from: Pending, status: rpc.StatusReady, to: InPool},
		"broadcast keeps included": {from: Included, status: rpc.StatusBroadcast, to: Included},
		"in block":                 {from: InPool, status: rpc.StatusInBlock, to: Included},
		"retracted":                {from: Included, status: rpc.StatusRetracted, to: InPool},
		"finalized":                {from: Included, status: rpc.StatusFinalized, to: Finalized, terminal: true},
		"finality timeout":         {from: Included, status: rpc.StatusFinalityTimeout, to: Included},
		"invalid":                  {from: Pending, status: rpc.StatusInvalid, to: Rejected, terminal: true},
		"usurped":                  {from: InPool, status: rpc.StatusUsurped, to: Dropped, terminal: true},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			next := testCase.from.next(testCase.status)
			assert.Equal(t, testCase.to, next)
			assert.Equal(t, testCase.terminal, next.Terminal())
		})
	}
}
