// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package errkind holds the error kinds surfaced by the client core.
// Every error returned by the core wraps exactly one of these sentinels
// so callers can branch on them with errors.Is.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is a transport level failure, the request may or may not
	// have reached the node.
	ErrConnection = errors.New("connection error")
	// ErrTimeout is returned when a request exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrCodec is a malformed, truncated or mistyped binary value.
	ErrCodec = errors.New("codec error")
	// ErrMetadataParse is returned for unknown metadata versions or malformed metadata.
	ErrMetadataParse = errors.New("metadata parse error")
	// ErrNotFound is returned for a missing pallet, storage item, constant or call.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParams is returned when storage parameters do not match the item key.
	ErrInvalidParams = errors.New("invalid params")
	// ErrInvalidCall is returned when call parameters do not match the call signature.
	ErrInvalidCall = errors.New("invalid call")
	// ErrInvalidKey is returned for malformed key material.
	ErrInvalidKey = errors.New("invalid key")
	// ErrSigning is returned when a payload cannot be signed for the target chain.
	ErrSigning = errors.New("signing error")
	// ErrSubmissionRejected is returned when the node refuses an extrinsic.
	ErrSubmissionRejected = errors.New("submission rejected")
)

// RejectionError describes a node refusing an extrinsic.
// It matches ErrSubmissionRejected with errors.Is.
type RejectionError struct {
	// Code is the JSON-RPC error code, or zero for status based rejections.
	Code int
	// Message is the node message or the terminal status name.
	Message string
	// Data is the optional error data returned by the node.
	Data any
}

func (e *RejectionError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s: %s", ErrSubmissionRejected, e.Message)
	}
	if e.Data != nil {
		return fmt.Sprintf("%s: %s (code %d): %v", ErrSubmissionRejected, e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s: %s (code %d)", ErrSubmissionRejected, e.Message, e.Code)
}

// Is makes errors.Is(err, ErrSubmissionRejected) true.
func (e *RejectionError) Is(target error) bool {
	return target == ErrSubmissionRejected
}

// AsRejection returns the rejection error wrapped in err, if any.
func AsRejection(err error) (rejection *RejectionError, ok bool) {
	ok = errors.As(err, &rejection)
	return rejection, ok
}
