// Copyright 2019 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"reflect"
)

var (
	bigIntType          = reflect.TypeOf((*big.Int)(nil))
	uint128Type         = reflect.TypeOf(Uint128{})
	marshalerType       = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// Marshal returns the SCALE encoding of v.
func Marshal(v interface{}) (b []byte, err error) {
	var es encodeState
	err = es.marshal(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return es.Bytes(), nil
}

// Encoder writes SCALE encoded values to an io.Writer.
type Encoder struct {
	writer io.Writer
}

// NewEncoder returns a new encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

// Encode writes the SCALE encoding of v.
func (e *Encoder) Encode(v interface{}) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.writer.Write(b)
	return err
}

type encodeState struct {
	bytes.Buffer
}

func (es *encodeState) marshal(v reflect.Value) (err error) {
	if !v.IsValid() {
		return fmt.Errorf("%w: nil", ErrUnsupportedType)
	}

	switch {
	case v.Type() == bigIntType:
		if v.IsNil() {
			return fmt.Errorf("%w: nil *big.Int", ErrUnsupportedType)
		}
		return es.encodeBigInt(v.Interface().(*big.Int))
	case v.Type() == uint128Type:
		_, _ = es.Write(v.Interface().(Uint128).Bytes())
		return nil
	case v.Kind() != reflect.Ptr && v.Type().Implements(marshalerType):
		return es.encodeMarshaler(v.Interface().(Marshaler))
	case v.Kind() != reflect.Ptr && v.CanAddr() && v.Addr().Type().Implements(marshalerType):
		return es.encodeMarshaler(v.Addr().Interface().(Marshaler))
	}

	switch v.Kind() {
	case reflect.Bool:
		es.encodeBool(v.Bool())
	case reflect.Int8:
		_ = es.WriteByte(byte(v.Int()))
	case reflect.Int16:
		_, _ = es.Write(binary.LittleEndian.AppendUint16(nil, uint16(v.Int())))
	case reflect.Int32:
		_, _ = es.Write(binary.LittleEndian.AppendUint32(nil, uint32(v.Int())))
	case reflect.Int64:
		_, _ = es.Write(binary.LittleEndian.AppendUint64(nil, uint64(v.Int())))
	case reflect.Uint8:
		_ = es.WriteByte(byte(v.Uint()))
	case reflect.Uint16:
		_, _ = es.Write(binary.LittleEndian.AppendUint16(nil, uint16(v.Uint())))
	case reflect.Uint32:
		_, _ = es.Write(binary.LittleEndian.AppendUint32(nil, uint32(v.Uint())))
	case reflect.Uint64:
		_, _ = es.Write(binary.LittleEndian.AppendUint64(nil, v.Uint()))
	case reflect.Int:
		if v.Int() < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeCompact, v.Int())
		}
		_, _ = es.Write(CompactUint(uint64(v.Int())))
	case reflect.Uint:
		_, _ = es.Write(CompactUint(v.Uint()))
	case reflect.String:
		es.encodeBytes([]byte(v.String()))
	case reflect.Ptr:
		// pointers are Option values
		if v.IsNil() {
			_ = es.WriteByte(0)
			return nil
		}
		_ = es.WriteByte(1)
		return es.marshal(v.Elem())
	case reflect.Interface:
		if v.IsNil() {
			return fmt.Errorf("%w: nil interface", ErrUnsupportedType)
		}
		return es.marshal(v.Elem())
	case reflect.Struct:
		return es.encodeStruct(v)
	case reflect.Array:
		return es.encodeArray(v)
	case reflect.Slice:
		return es.encodeSlice(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func (es *encodeState) encodeMarshaler(m Marshaler) error {
	b, err := m.MarshalSCALE()
	if err != nil {
		return err
	}
	_, _ = es.Write(b)
	return nil
}

func (es *encodeState) encodeSlice(v reflect.Value) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		es.encodeBytes(v.Bytes())
		return nil
	}

	_, _ = es.Write(CompactUint(uint64(v.Len())))
	for i := 0; i < v.Len(); i++ {
		err := es.marshal(v.Index(i))
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeArray encodes each element of the array in order, without a length prefix.
func (es *encodeState) encodeArray(v reflect.Value) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		for i := 0; i < v.Len(); i++ {
			_ = es.WriteByte(byte(v.Index(i).Uint()))
		}
		return nil
	}

	for i := 0; i < v.Len(); i++ {
		err := es.marshal(v.Index(i))
		if err != nil {
			return err
		}
	}
	return nil
}

func (es *encodeState) encodeBigInt(i *big.Int) error {
	b, err := CompactBigInt(i)
	if err != nil {
		return err
	}
	_, _ = es.Write(b)
	return nil
}

func (es *encodeState) encodeBool(l bool) {
	if l {
		_ = es.WriteByte(0x01)
		return
	}
	_ = es.WriteByte(0x00)
}

// encodeBytes writes the compact length of b followed by b.
func (es *encodeState) encodeBytes(b []byte) {
	_, _ = es.Write(CompactUint(uint64(len(b))))
	_, _ = es.Write(b)
}

// encodeStruct encodes the exported fields of the struct ordered by their scale index.
func (es *encodeState) encodeStruct(v reflect.Value) error {
	for _, i := range fieldOrder(v.Type()) {
		err := es.marshal(v.Field(i))
		if err != nil {
			return fmt.Errorf("encoding field %s: %w", v.Type().Field(i).Name, err)
		}
	}
	return nil
}
