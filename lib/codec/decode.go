// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/ChainSafe/subclient/pkg/scale"
)

// maxDepth bounds the nesting of types while encoding or decoding.
const maxDepth = 256

// Decode decodes a value of type id from the start of data,
// returning the value and the bytes left over.
func (r *Registry) Decode(data []byte, id TypeID) (value any, remaining []byte, err error) {
	reader := bytes.NewReader(data)
	value, err = r.DecodeFrom(scale.NewDecoder(reader), id)
	if err != nil {
		return nil, nil, err
	}
	return value, data[len(data)-reader.Len():], nil
}

// DecodeAll decodes a value of type id which must span all of data.
func (r *Registry) DecodeAll(data []byte, id TypeID) (any, error) {
	value, remaining, err := r.Decode(data, id)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes decoding %s",
			ErrLengthMismatch, len(remaining), r.TypeName(id))
	}
	return value, nil
}

// DecodeFrom decodes a value of type id from the decoder.
func (r *Registry) DecodeFrom(d *scale.Decoder, id TypeID) (any, error) {
	return r.decode(d, id, 0)
}

func (r *Registry) decode(d *scale.Decoder, id TypeID, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrRecursionLimit
	}
	t, err := r.Type(id)
	if err != nil {
		return nil, err
	}

	switch t.Def.Kind {
	case KindComposite:
		return r.decodeFields(d, t.Def.Fields, depth)
	case KindVariant:
		return r.decodeVariant(d, t, depth)
	case KindSequence:
		n, err := d.ReadLength()
		if err != nil {
			return nil, err
		}
		return r.decodeElements(d, t.Def.Elem, n, depth)
	case KindArray:
		return r.decodeElements(d, t.Def.Elem, int(t.Def.Len), depth)
	case KindTuple:
		if len(t.Def.Tuple) == 0 {
			return nil, nil
		}
		values := make([]any, len(t.Def.Tuple))
		for i, member := range t.Def.Tuple {
			values[i], err = r.decode(d, member, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return values, nil
	case KindPrimitive:
		return decodePrimitive(d, t.Def.Primitive)
	case KindCompact:
		return d.ReadCompact()
	case KindBitSequence:
		return r.decodeBitSequence(d, t)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTypeDefKind, t.Def.Kind)
	}
}

// decodeFields decodes composite or variant fields following the value model:
// nil without fields, the inner value for a single unnamed field, a map
// for named fields and a slice otherwise.
func (r *Registry) decodeFields(d *scale.Decoder, fields []Field, depth int) (any, error) {
	switch {
	case len(fields) == 0:
		return nil, nil
	case len(fields) == 1 && fields[0].Name == nil:
		return r.decode(d, fields[0].Type, depth+1)
	case fields[0].Name != nil:
		values := make(map[string]any, len(fields))
		for _, field := range fields {
			value, err := r.decode(d, field.Type, depth+1)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fieldName(field), err)
			}
			values[fieldName(field)] = value
		}
		return values, nil
	default:
		values := make([]any, len(fields))
		for i, field := range fields {
			value, err := r.decode(d, field.Type, depth+1)
			if err != nil {
				return nil, err
			}
			values[i] = value
		}
		return values, nil
	}
}

func fieldName(f Field) string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

func (r *Registry) decodeVariant(d *scale.Decoder, t *Type, depth int) (any, error) {
	index, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	variant, ok := variantByIndex(t, index)
	if !ok {
		return nil, fmt.Errorf("%w: index %d of %s", ErrUnknownVariant, index, pathName(t))
	}

	if inner, isOption := optionInner(t); isOption {
		if index == 0 {
			return nil, nil
		}
		value, err := r.decode(d, inner, depth+1)
		if err != nil {
			return nil, err
		}
		if r.isOption(inner) {
			// Some(None) must stay distinct from None.
			return Variant{Name: "Some", Value: value}, nil
		}
		return value, nil
	}

	value, err := r.decodeFields(d, variant.Fields, depth)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", variant.Name, err)
	}
	return Variant{Name: variant.Name, Value: value}, nil
}

func variantByIndex(t *Type, index uint8) (VariantDef, bool) {
	for _, v := range t.Def.Variants {
		if v.Index == index {
			return v, true
		}
	}
	return VariantDef{}, false
}

func variantByName(t *Type, name string) (VariantDef, bool) {
	for _, v := range t.Def.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDef{}, false
}

func pathName(t *Type) string {
	if len(t.Path) == 0 {
		return "enum"
	}
	return t.Path[len(t.Path)-1]
}

func (r *Registry) decodeElements(d *scale.Decoder, elem TypeID, n, depth int) (any, error) {
	if r.isByte(elem) {
		return d.ReadBytes(n)
	}

	if !r.IsEmpty(elem) {
		err := d.CheckLength(n)
		if err != nil {
			return nil, err
		}
	}

	values := make([]any, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		value, err := r.decode(d, elem, depth+1)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func (r *Registry) isByte(id TypeID) bool {
	t, ok := r.types[id]
	return ok && t.Def.Kind == KindPrimitive && t.Def.Primitive == U8
}

func decodePrimitive(d *scale.Decoder, p Primitive) (any, error) {
	switch p {
	case Bool:
		return d.ReadBool()
	case Char:
		b, err := d.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		c := rune(binary.LittleEndian.Uint32(b))
		if !utf8.ValidRune(c) {
			return nil, fmt.Errorf("%w: 0x%x", ErrInvalidChar, uint32(c))
		}
		return c, nil
	case Str:
		return d.ReadString()
	}

	size, signed := p.size()
	if size == 0 {
		return nil, fmt.Errorf("%w: primitive %d", ErrUnknownTypeDefKind, p)
	}
	b, err := d.ReadBytes(size)
	if err != nil {
		return nil, err
	}

	switch p {
	case U8:
		return b[0], nil
	case U16:
		return binary.LittleEndian.Uint16(b), nil
	case U32:
		return binary.LittleEndian.Uint32(b), nil
	case U64:
		return binary.LittleEndian.Uint64(b), nil
	case I8:
		return int8(b[0]), nil
	case I16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case I32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case I64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	}

	be := make([]byte, size)
	for i := range b {
		be[size-1-i] = b[i]
	}
	n := new(big.Int).SetBytes(be)
	if signed && be[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*size)))
	}
	return n, nil
}

// bitLayout returns the byte width of the store type and whether
// bits are ordered most significant first.
func (r *Registry) bitLayout(t *Type) (storeBytes int, msb0 bool, err error) {
	store, err := r.Type(t.Def.BitStore)
	if err != nil {
		return 0, false, err
	}
	if store.Def.Kind != KindPrimitive {
		return 0, false, fmt.Errorf("%w: bit store %s", ErrTypeMismatch, store.Def.Kind)
	}
	storeBytes, _ = store.Def.Primitive.size()
	if storeBytes == 0 || storeBytes > 8 {
		return 0, false, fmt.Errorf("%w: bit store %s", ErrTypeMismatch, store.Def.Primitive)
	}

	order, err := r.Type(t.Def.BitOrder)
	if err != nil {
		return 0, false, err
	}
	msb0 = len(order.Path) > 0 && order.Path[len(order.Path)-1] == "Msb0"
	return storeBytes, msb0, nil
}

func (r *Registry) decodeBitSequence(d *scale.Decoder, t *Type) (any, error) {
	storeBytes, msb0, err := r.bitLayout(t)
	if err != nil {
		return nil, err
	}
	bitCount, err := d.ReadCompactUint()
	if err != nil {
		return nil, err
	}
	if bitCount > 1<<32 {
		return nil, fmt.Errorf("%w: %d bits", ErrOutOfRange, bitCount)
	}
	bits := int(bitCount)

	storeBits := 8 * storeBytes
	stores := (bits + storeBits - 1) / storeBits
	raw, err := d.ReadBytes(stores * storeBytes)
	if err != nil {
		return nil, err
	}

	out := make([]bool, bits)
	for i := range out {
		word := readStore(raw[(i/storeBits)*storeBytes:], storeBytes)
		pos := i % storeBits
		if msb0 {
			pos = storeBits - 1 - pos
		}
		out[i] = word>>pos&1 == 1
	}
	return out, nil
}

func readStore(b []byte, size int) uint64 {
	padded := make([]byte, 8)
	copy(padded, b[:size])
	return binary.LittleEndian.Uint64(padded)
}
