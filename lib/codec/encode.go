// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
	"unicode/utf8"

	"github.com/ChainSafe/subclient/pkg/scale"
)

// Encode encodes value as type id.
func (r *Registry) Encode(value any, id TypeID) ([]byte, error) {
	var buf bytes.Buffer
	err := r.EncodeTo(&buf, value, id)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo appends the encoding of value as type id to buf.
func (r *Registry) EncodeTo(buf *bytes.Buffer, value any, id TypeID) error {
	return r.encode(buf, value, id, 0)
}

func (r *Registry) encode(buf *bytes.Buffer, value any, id TypeID, depth int) error {
	if depth > maxDepth {
		return ErrRecursionLimit
	}
	t, err := r.Type(id)
	if err != nil {
		return err
	}

	switch t.Def.Kind {
	case KindComposite:
		return r.encodeFields(buf, value, t.Def.Fields, depth)
	case KindVariant:
		return r.encodeVariant(buf, value, t, depth)
	case KindSequence:
		return r.encodeElements(buf, value, t.Def.Elem, -1, depth)
	case KindArray:
		return r.encodeElements(buf, value, t.Def.Elem, int(t.Def.Len), depth)
	case KindTuple:
		return r.encodeTuple(buf, value, t.Def.Tuple, depth)
	case KindPrimitive:
		return encodePrimitive(buf, value, t.Def.Primitive)
	case KindCompact:
		n, err := toBigInt(value)
		if err != nil {
			return err
		}
		encoded, err := scale.CompactBigInt(n)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	case KindBitSequence:
		return r.encodeBitSequence(buf, value, t)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTypeDefKind, t.Def.Kind)
	}
}

func (r *Registry) encodeFields(buf *bytes.Buffer, value any, fields []Field, depth int) error {
	switch {
	case len(fields) == 0:
		if value != nil {
			if s, ok := toSlice(value); !ok || len(s) != 0 {
				return fmt.Errorf("%w: %T for a type without fields", ErrTypeMismatch, value)
			}
		}
		return nil
	case len(fields) == 1:
		if m, ok := value.(map[string]any); ok && fields[0].Name != nil {
			return r.encodeNamedFields(buf, m, fields, depth)
		}
		if s, ok := value.([]any); ok && len(s) == 1 && !r.acceptsSlice(fields[0].Type) {
			value = s[0]
		}
		return r.encode(buf, value, fields[0].Type, depth+1)
	case fields[0].Name != nil:
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %T for named fields, want map[string]any", ErrTypeMismatch, value)
		}
		return r.encodeNamedFields(buf, m, fields, depth)
	default:
		values, ok := toSlice(value)
		if !ok {
			return fmt.Errorf("%w: %T for unnamed fields, want []any", ErrTypeMismatch, value)
		}
		if len(values) != len(fields) {
			return fmt.Errorf("%w: %d values for %d fields", ErrLengthMismatch, len(values), len(fields))
		}
		for i, field := range fields {
			err := r.encode(buf, values[i], field.Type, depth+1)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *Registry) encodeNamedFields(buf *bytes.Buffer, values map[string]any, fields []Field, depth int) error {
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[fieldName(field)] = struct{}{}
	}
	var unexpected []string
	for name := range values {
		if _, ok := known[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return fmt.Errorf("%w: %v", ErrUnexpectedField, unexpected)
	}

	for _, field := range fields {
		name := fieldName(field)
		value, ok := values[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		err := r.encode(buf, value, field.Type, depth+1)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}
	return nil
}

// acceptsSlice returns true for types whose values are naturally slices,
// looking through newtypes since they decode to their inner value.
func (r *Registry) acceptsSlice(id TypeID) bool {
	for depth := 0; depth <= maxDepth; depth++ {
		t, ok := r.types[id]
		if !ok {
			return false
		}
		switch t.Def.Kind {
		case KindSequence, KindArray, KindTuple, KindBitSequence:
			return true
		case KindComposite:
			fields := t.Def.Fields
			if len(fields) == 1 && fields[0].Name == nil {
				id = fields[0].Type
				continue
			}
			return len(fields) > 1 && fields[0].Name == nil
		}
		return false
	}
	return false
}

func (r *Registry) encodeVariant(buf *bytes.Buffer, value any, t *Type, depth int) error {
	if inner, isOption := optionInner(t); isOption {
		if r.isOption(inner) {
			// Some of a nested option is an explicit variant, see decodeVariant.
			if v, ok := asVariant(value); ok {
				switch v.Name {
				case "None":
					value = nil
				case "Some":
					buf.WriteByte(1)
					return r.encode(buf, v.Value, inner, depth+1)
				}
			}
		}
		if value == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return r.encode(buf, value, inner, depth+1)
	}

	var name string
	var fields any
	switch v := value.(type) {
	case Variant:
		name, fields = v.Name, v.Value
	case *Variant:
		name, fields = v.Name, v.Value
	case string:
		name = v
	case map[string]any:
		if len(v) != 1 {
			return fmt.Errorf("%w: map with %d keys for %s", ErrTypeMismatch, len(v), pathName(t))
		}
		for key, inner := range v {
			name, fields = key, inner
		}
	default:
		return fmt.Errorf("%w: %T for enum %s", ErrTypeMismatch, value, pathName(t))
	}

	variant, ok := variantByName(t, name)
	if !ok {
		return fmt.Errorf("%w: %s of %s", ErrUnknownVariant, name, pathName(t))
	}
	buf.WriteByte(variant.Index)
	err := r.encodeFields(buf, fields, variant.Fields, depth)
	if err != nil {
		return fmt.Errorf("variant %s: %w", name, err)
	}
	return nil
}

func asVariant(value any) (Variant, bool) {
	switch v := value.(type) {
	case Variant:
		return v, true
	case *Variant:
		if v != nil {
			return *v, true
		}
	}
	return Variant{}, false
}

// encodeElements encodes a sequence when length is negative and an array otherwise.
func (r *Registry) encodeElements(buf *bytes.Buffer, value any, elem TypeID, length, depth int) error {
	if r.isByte(elem) {
		b, ok := toBytes(value)
		if !ok {
			return fmt.Errorf("%w: %T for bytes", ErrTypeMismatch, value)
		}
		if length >= 0 && len(b) != length {
			return fmt.Errorf("%w: %d bytes for [u8; %d]", ErrLengthMismatch, len(b), length)
		}
		if length < 0 {
			buf.Write(scale.CompactUint(uint64(len(b))))
		}
		buf.Write(b)
		return nil
	}

	values, ok := toSlice(value)
	if !ok {
		return fmt.Errorf("%w: %T for a sequence", ErrTypeMismatch, value)
	}
	if length >= 0 && len(values) != length {
		return fmt.Errorf("%w: %d values for an array of %d", ErrLengthMismatch, len(values), length)
	}
	if length < 0 {
		buf.Write(scale.CompactUint(uint64(len(values))))
	}
	for _, v := range values {
		err := r.encode(buf, v, elem, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) encodeTuple(buf *bytes.Buffer, value any, members []TypeID, depth int) error {
	if len(members) == 0 {
		return nil
	}
	values, ok := toSlice(value)
	if !ok || (len(members) == 1 && len(values) != 1) {
		if len(members) != 1 {
			return fmt.Errorf("%w: %T for a tuple", ErrTypeMismatch, value)
		}
		values = []any{value}
	}
	if len(values) != len(members) {
		return fmt.Errorf("%w: %d values for a tuple of %d", ErrLengthMismatch, len(values), len(members))
	}
	for i, member := range members {
		err := r.encode(buf, values[i], member, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

func encodePrimitive(buf *bytes.Buffer, value any, p Primitive) error {
	switch p {
	case Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %T for bool", ErrTypeMismatch, value)
		}
		if b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil
	case Char:
		var c rune
		switch v := value.(type) {
		case rune:
			c = v
		case string:
			if utf8.RuneCountInString(v) != 1 {
				return fmt.Errorf("%w: %q", ErrInvalidChar, v)
			}
			c, _ = utf8.DecodeRuneInString(v)
		default:
			return fmt.Errorf("%w: %T for char", ErrTypeMismatch, value)
		}
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(c)))
		return nil
	case Str:
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		default:
			return fmt.Errorf("%w: %T for str", ErrTypeMismatch, value)
		}
		buf.Write(scale.CompactUint(uint64(len(s))))
		buf.WriteString(s)
		return nil
	}

	size, signed := p.size()
	if size == 0 {
		return fmt.Errorf("%w: primitive %d", ErrUnknownTypeDefKind, p)
	}
	n, err := toBigInt(value)
	if err != nil {
		return err
	}
	le, err := fixedWidth(n, size, signed)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	buf.Write(le)
	return nil
}

// fixedWidth returns the size bytes little endian two's complement representation of n.
func fixedWidth(n *big.Int, size int, signed bool) ([]byte, error) {
	bits := uint(8 * size)
	var lower, upper *big.Int
	if signed {
		lower = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
		upper = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))
	} else {
		lower = big.NewInt(0)
		upper = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	}
	if n.Cmp(lower) < 0 || n.Cmp(upper) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, n)
	}

	v := n
	if n.Sign() < 0 {
		v = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), bits))
	}
	be := make([]byte, size)
	v.FillBytes(be)
	le := make([]byte, size)
	for i := range be {
		le[size-1-i] = be[i]
	}
	return le, nil
}

func (r *Registry) encodeBitSequence(buf *bytes.Buffer, value any, t *Type) error {
	bits, ok := value.([]bool)
	if !ok {
		return fmt.Errorf("%w: %T for a bit sequence, want []bool", ErrTypeMismatch, value)
	}
	storeBytes, msb0, err := r.bitLayout(t)
	if err != nil {
		return err
	}

	storeBits := 8 * storeBytes
	stores := (len(bits) + storeBits - 1) / storeBits
	words := make([]uint64, stores)
	for i, bit := range bits {
		if !bit {
			continue
		}
		pos := i % storeBits
		if msb0 {
			pos = storeBits - 1 - pos
		}
		words[i/storeBits] |= 1 << pos
	}

	buf.Write(scale.CompactUint(uint64(len(bits))))
	for _, word := range words {
		buf.Write(binary.LittleEndian.AppendUint64(nil, word)[:storeBytes])
	}
	return nil
}
