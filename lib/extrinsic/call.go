// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
	"github.com/ChainSafe/subclient/pkg/errkind"
)

// Call is a pallet function call with its encoded arguments.
type Call struct {
	Pallet      string
	Function    string
	PalletIndex uint8
	CallIndex   uint8
	// Params holds the argument values by field name. Unnamed fields
	// are keyed by their position.
	Params map[string]any
	// Args is the SCALE encoding of the arguments in declaration order.
	Args []byte
}

// Encode returns pallet index ‖ call index ‖ arguments.
func (c Call) Encode() []byte {
	encoded := make([]byte, 0, 2+len(c.Args))
	encoded = append(encoded, c.PalletIndex, c.CallIndex)
	return append(encoded, c.Args...)
}

// Hex returns the 0x prefixed encoded call.
func (c Call) Hex() string { return common.BytesToHex(c.Encode()) }

func (c Call) String() string { return c.Pallet + "." + c.Function }

func paramName(i int, field codec.Field) string {
	if field.Name != nil {
		return *field.Name
	}
	return strconv.Itoa(i)
}

// ComposeCall validates params against the call fields and encodes them.
// The parameter names must match the field names exactly.
func ComposeCall(m *metadata.Metadata, pallet, function string, params map[string]any) (Call, error) {
	info, err := m.Call(pallet, function)
	if err != nil {
		return Call{}, fmt.Errorf("%w: %w", errkind.ErrInvalidCall, err)
	}

	known := make(map[string]struct{}, len(info.Fields))
	for i, field := range info.Fields {
		known[paramName(i, field)] = struct{}{}
	}
	var unknown []string
	for name := range params {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Call{}, fmt.Errorf("%w: %v for %s.%s", ErrUnknownParam, unknown, pallet, function)
	}

	registry := m.Registry()
	args := bytes.NewBuffer(nil)
	for i, field := range info.Fields {
		name := paramName(i, field)
		value, ok := params[name]
		if !ok {
			return Call{}, fmt.Errorf("%w: %s for %s.%s", ErrMissingParam, name, pallet, function)
		}
		err = registry.EncodeTo(args, value, field.Type)
		if err != nil {
			return Call{}, fmt.Errorf("%w: %s of %s.%s: %w", ErrParamEncoding, name, pallet, function, err)
		}
	}

	copied := make(map[string]any, len(params))
	for name, value := range params {
		copied[name] = value
	}
	return Call{
		Pallet:      info.Pallet,
		Function:    info.Name,
		PalletIndex: info.PalletIndex,
		CallIndex:   info.Index,
		Params:      copied,
		Args:        args.Bytes(),
	}, nil
}

// DecodeCall decodes an encoded call and returns the bytes following it.
func DecodeCall(m *metadata.Metadata, data []byte) (call Call, remaining []byte, err error) {
	if len(data) < 2 {
		return Call{}, nil, fmt.Errorf("%w: call of %d bytes", errkind.ErrCodec, len(data))
	}
	info, err := m.CallByIndex(data[0], data[1])
	if err != nil {
		return Call{}, nil, fmt.Errorf("%w: %w", errkind.ErrCodec, err)
	}

	registry := m.Registry()
	params := make(map[string]any, len(info.Fields))
	remaining = data[2:]
	for i, field := range info.Fields {
		var value any
		value, remaining, err = registry.Decode(remaining, field.Type)
		if err != nil {
			return Call{}, nil, fmt.Errorf("decoding %s.%s argument %s: %w",
				info.Pallet, info.Name, paramName(i, field), err)
		}
		params[paramName(i, field)] = value
	}

	argsLen := len(data) - 2 - len(remaining)
	return Call{
		Pallet:      info.Pallet,
		Function:    info.Name,
		PalletIndex: info.PalletIndex,
		CallIndex:   info.Index,
		Params:      params,
		Args:        append([]byte(nil), data[2:2+argsLen]...),
	}, remaining, nil
}
