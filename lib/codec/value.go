// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/pkg/scale"
)

// Variant is the decoded value of an enum which is not an Option.
// Value follows the composite rules: nil, a single value,
// a []any or a map[string]any.
type Variant struct {
	Name  string
	Value any
}

func (v Variant) String() string {
	if v.Value == nil {
		return v.Name
	}
	return fmt.Sprintf("%s(%v)", v.Name, v.Value)
}

// toBigInt converts the accepted integer representations into a *big.Int.
func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrTypeMismatch)
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case scale.Uint128:
		return v.BigInt(), nil
	case string:
		n, ok := parseIntString(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, v)
		}
		return n, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("%w: %T is not an integer", ErrTypeMismatch, value)
}

func parseIntString(s string) (*big.Int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if strings.HasPrefix(s, "0x") {
		if len(s) == 2 {
			return nil, false
		}
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

// toBytes converts the accepted byte representations into a byte slice.
func toBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case common.Bytes:
		return v, true
	case string:
		if strings.HasPrefix(v, "0x") {
			b, err := common.HexToBytes(v)
			return b, err == nil
		}
		return []byte(v), true
	case []any:
		out := make([]byte, len(v))
		for i, elem := range v {
			n, err := toBigInt(elem)
			if err != nil || n.Sign() < 0 || n.BitLen() > 8 {
				return nil, false
			}
			out[i] = byte(n.Uint64())
		}
		return out, true
	}

	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Array || rv.Kind() == reflect.Slice) && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		for i := range out {
			out[i] = byte(rv.Index(i).Uint())
		}
		return out, true
	}
	return nil, false
}

// toSlice converts any Go slice or array into []any.
func toSlice(value any) ([]any, bool) {
	if v, ok := value.([]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
