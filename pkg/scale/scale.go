// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package scale implements the SCALE codec for static Go types using reflection.
//
// Mapping of Go types:
//   - bool, fixed width integers (int8..int64, uint8..uint64) little endian
//   - int, uint and *big.Int as compact integers
//   - Uint128 as 16 little endian bytes
//   - string and []byte length prefixed
//   - pointers as Option (0x00 for nil, 0x01 followed by the value)
//   - arrays element by element, slices length prefixed
//   - structs field by field, ordered by the optional `scale:"n"` tag
//
// Types implementing Marshaler and Unmarshaler encode themselves.
package scale

import (
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Marshaler is implemented by types with a custom SCALE encoding.
type Marshaler interface {
	MarshalSCALE() ([]byte, error)
}

// Unmarshaler is implemented by types with a custom SCALE decoding.
type Unmarshaler interface {
	UnmarshalSCALE(reader io.Reader) error
}

// fieldOrders caches the fieldOrder result per struct type.
var fieldOrders sync.Map

// fieldOrder returns the indices of the encoded fields of the struct
// type t: fields tagged `scale:"n"` by ascending n, then the untagged
// exported fields in declaration order. Fields tagged `scale:"-"` and
// unexported fields are skipped.
func fieldOrder(t reflect.Type) []int {
	if order, ok := fieldOrders.Load(t); ok {
		return order.([]int)
	}

	type field struct {
		index  int
		tag    int
		tagged bool
	}
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		structField := t.Field(i)
		tag := strings.TrimSpace(structField.Tag.Get("scale"))
		if !structField.IsExported() || tag == "-" {
			continue
		}
		n, err := strconv.Atoi(tag)
		fields = append(fields, field{index: i, tag: n, tagged: err == nil})
	}

	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].tagged != fields[j].tagged {
			return fields[i].tagged
		}
		return fields[i].tagged && fields[i].tag < fields[j].tag
	})

	order := make([]int, len(fields))
	for i, f := range fields {
		order[i] = f.index
	}
	fieldOrders.Store(t, order)
	return order
}
