// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package author

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/rpc"
	"github.com/ChainSafe/subclient/lib/storage"
)

// Receipt is the outcome of a submission.
type Receipt struct {
	ExtrinsicHash common.Hash
	// BlockHash is the including block, zero until included.
	BlockHash common.Hash
	State     State
	// Statuses are the pool statuses received while waiting.
	Statuses []rpc.TransactionStatus

	author *Author
	index  *uint32
	events []Event
}

// Event is a runtime event emitted while applying the extrinsic.
type Event struct {
	Pallet string
	Name   string
	Fields any
	Topics []any
}

// Included is true once the extrinsic is in a block.
func (r *Receipt) Included() bool {
	return r.State == Included || r.State == Finalized
}

// Finalized is true once the including block is finalized.
func (r *Receipt) Finalized() bool {
	return r.State == Finalized
}

// ExtrinsicIndex returns the position of the extrinsic in its block.
func (r *Receipt) ExtrinsicIndex(ctx context.Context) (uint32, error) {
	if r.index != nil {
		return *r.index, nil
	}
	if !r.Included() {
		return 0, ErrNotIncluded
	}

	block, err := r.author.node.GetBlock(ctx, &r.BlockHash)
	if err != nil {
		return 0, fmt.Errorf("getting block %s: %w", r.BlockHash.Short(), err)
	}
	for i, extrinsic := range block.Block.Extrinsics {
		if common.Blake2b256(extrinsic) == r.ExtrinsicHash {
			index := uint32(i)
			r.index = &index
			return index, nil
		}
	}
	return 0, fmt.Errorf("%w: %s in block %s", ErrExtrinsicNotInBlock,
		r.ExtrinsicHash.Short(), r.BlockHash.Short())
}

// Events returns the events emitted by the extrinsic, read from the
// System.Events storage of its block.
func (r *Receipt) Events(ctx context.Context) ([]Event, error) {
	if r.events != nil {
		return r.events, nil
	}
	index, err := r.ExtrinsicIndex(ctx)
	if err != nil {
		return nil, err
	}

	m := r.author.metadata
	fn, err := m.StorageEntry("System", "Events")
	if err != nil {
		return nil, err
	}
	key, err := storage.BuildKey(m, "System", "Events")
	if err != nil {
		return nil, err
	}
	raw, err := r.author.node.GetStorage(ctx, key, &r.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("getting events of block %s: %w", r.BlockHash.Short(), err)
	}
	value, err := storage.DecodeValue(m, fn.Entry, raw)
	if err != nil {
		return nil, err
	}

	records, _ := value.([]any)
	events := make([]Event, 0)
	for _, record := range records {
		event, ok := extrinsicEvent(record, index)
		if ok {
			events = append(events, event)
		}
	}
	r.events = events
	return events, nil
}

// extrinsicEvent returns the event of the record if it was emitted
// while applying the extrinsic at index.
func extrinsicEvent(record any, index uint32) (event Event, ok bool) {
	fields, ok := record.(map[string]any)
	if !ok {
		return event, false
	}
	phase, ok := fields["phase"].(codec.Variant)
	if !ok || phase.Name != "ApplyExtrinsic" || phase.Value != index {
		return event, false
	}
	pallet, ok := fields["event"].(codec.Variant)
	if !ok {
		return event, false
	}
	inner, ok := pallet.Value.(codec.Variant)
	if !ok {
		return event, false
	}
	topics, _ := fields["topics"].([]any)
	return Event{Pallet: pallet.Name, Name: inner.Name, Fields: inner.Value, Topics: topics}, true
}

// IsSuccess returns true when the extrinsic emitted System.ExtrinsicSuccess
// and false when it emitted System.ExtrinsicFailed.
func (r *Receipt) IsSuccess(ctx context.Context) (bool, error) {
	events, err := r.Events(ctx)
	if err != nil {
		return false, err
	}
	for _, event := range events {
		if event.Pallet != "System" {
			continue
		}
		switch event.Name {
		case "ExtrinsicSuccess":
			return true, nil
		case "ExtrinsicFailed":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrNoOutcome, r.ExtrinsicHash.Short())
}

// Failure returns the dispatch error of a failed extrinsic, nil if it succeeded.
func (r *Receipt) Failure(ctx context.Context) (any, error) {
	events, err := r.Events(ctx)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if event.Pallet == "System" && event.Name == "ExtrinsicFailed" {
			fields, _ := event.Fields.(map[string]any)
			return fields["dispatch_error"], nil
		}
	}
	return nil, nil //nolint:nilnil
}

func (r *Receipt) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "extrinsic %s %s", r.ExtrinsicHash, r.State)
	if r.Included() {
		fmt.Fprintf(&b, " in block %s", r.BlockHash)
	}
	return b.String()
}
