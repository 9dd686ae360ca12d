// Copyright 2019 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
)

// Unmarshal decodes data into dst, which must be a non nil pointer.
// Trailing bytes are ignored.
func Unmarshal(data []byte, dst interface{}) error {
	return NewDecoder(bytes.NewReader(data)).Decode(dst)
}

// Decoder reads SCALE encoded values from an io.Reader.
type Decoder struct {
	reader io.Reader
}

// NewDecoder returns a new decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// Decode decodes the next value into dst, which must be a non nil pointer.
func (d *Decoder) Decode(dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
	}
	return d.unmarshal(rv.Elem())
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads exactly n bytes.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrLengthTooLarge, n)
	}
	if remaining, ok := d.remaining(); ok && n > remaining {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, remaining)
	}
	b := make([]byte, n)
	_, err := io.ReadFull(d.reader, b)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes", ErrTruncated, n)
		}
		return nil, err
	}
	return b, nil
}

// ReadBool reads a single byte boolean.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBoolByte, b)
	}
}

// ReadCompact reads a compact integer of arbitrary size.
func (d *Decoder) ReadCompact() (*big.Int, error) {
	return d.readCompact()
}

// ReadCompactUint reads a compact integer which must fit in an uint64.
func (d *Decoder) ReadCompactUint() (uint64, error) {
	n, err := d.readCompact()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows uint64", ErrCompactTooLarge, n)
	}
	return n.Uint64(), nil
}

// ReadLength reads a compact length prefix. The length is an item count and
// is not compared with the remaining input, zero-size items take no bytes.
// Callers decoding items of at least one byte follow up with CheckLength.
func (d *Decoder) ReadLength() (int, error) {
	n, err := d.ReadCompactUint()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d", ErrLengthTooLarge, n)
	}
	return int(n), nil
}

// CheckLength fails with ErrLengthTooLarge when n items of at least one byte
// each cannot fit in the remaining input.
func (d *Decoder) CheckLength(n int) error {
	if remaining, ok := d.remaining(); ok && n > remaining {
		return fmt.Errorf("%w: %d items with %d bytes left", ErrLengthTooLarge, n, remaining)
	}
	return nil
}

// ReadString reads a length prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadLength()
	if err != nil {
		return "", err
	}
	b, err := d.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Remaining returns the number of unread bytes when the underlying
// reader exposes it, and false otherwise.
func (d *Decoder) Remaining() (int, bool) {
	return d.remaining()
}

func (d *Decoder) remaining() (int, bool) {
	type lener interface{ Len() int }
	l, ok := d.reader.(lener)
	if !ok {
		return 0, false
	}
	return l.Len(), true
}

func (d *Decoder) unmarshal(v reflect.Value) error {
	switch {
	case v.Type() == bigIntType:
		n, err := d.readCompact()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(n))
		return nil
	case v.Type() == uint128Type:
		b, err := d.ReadBytes(16)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(uint128FromBytes(b)))
		return nil
	case v.CanAddr() && v.Addr().Type().Implements(unmarshalerType):
		return v.Addr().Interface().(Unmarshaler).UnmarshalSCALE(d.reader)
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := d.ReadBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		u, err := d.readFixedWidth(int(v.Type().Size()))
		if err != nil {
			return err
		}
		v.SetInt(signExtend(u, int(v.Type().Size())))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := d.readFixedWidth(int(v.Type().Size()))
		if err != nil {
			return err
		}
		v.SetUint(u)
	case reflect.Int:
		n, err := d.ReadCompactUint()
		if err != nil {
			return err
		}
		if n > math.MaxInt64 {
			return fmt.Errorf("%w: %d overflows int", ErrCompactTooLarge, n)
		}
		v.SetInt(int64(n))
	case reflect.Uint:
		n, err := d.ReadCompactUint()
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.String:
		s, err := d.ReadString()
		if err != nil {
			return err
		}
		v.SetString(s)
	case reflect.Ptr:
		return d.decodeOption(v)
	case reflect.Struct:
		return d.decodeStruct(v)
	case reflect.Array:
		return d.decodeArray(v)
	case reflect.Slice:
		return d.decodeSlice(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func (d *Decoder) readFixedWidth(size int) (uint64, error) {
	b, err := d.ReadBytes(size)
	if err != nil {
		return 0, err
	}
	padded := make([]byte, 8)
	copy(padded, b)
	return binary.LittleEndian.Uint64(padded), nil
}

func signExtend(u uint64, size int) int64 {
	shift := 64 - 8*size
	return int64(u<<shift) >> shift
}

func (d *Decoder) decodeOption(v reflect.Value) error {
	b, err := d.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case 0:
		v.Set(reflect.Zero(v.Type()))
		return nil
	case 1:
		elem := reflect.New(v.Type().Elem())
		err = d.unmarshal(elem.Elem())
		if err != nil {
			return err
		}
		v.Set(elem)
		return nil
	default:
		return fmt.Errorf("%w: 0x%02x", ErrInvalidOptionByte, b)
	}
}

func (d *Decoder) decodeStruct(v reflect.Value) error {
	for _, i := range fieldOrder(v.Type()) {
		err := d.unmarshal(v.Field(i))
		if err != nil {
			return fmt.Errorf("decoding field %s: %w", v.Type().Field(i).Name, err)
		}
	}
	return nil
}

func (d *Decoder) decodeArray(v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		err := d.unmarshal(v.Index(i))
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeSlice(v reflect.Value) error {
	n, err := d.ReadLength()
	if err != nil {
		return err
	}
	if n == 0 {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	if v.Type().Elem().Kind() == reflect.Uint8 {
		b, err := d.ReadBytes(n)
		if err != nil {
			return err
		}
		v.SetBytes(b)
		return nil
	}

	if v.Type().Elem().Size() > 0 {
		err = d.CheckLength(n)
		if err != nil {
			return err
		}
	}

	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		err = d.unmarshal(out.Index(i))
		if err != nil {
			return err
		}
	}
	v.Set(out)
	return nil
}

// NewDecoderBytes returns a new decoder reading from data.
func NewDecoderBytes(data []byte) *Decoder {
	return NewDecoder(bytes.NewReader(data))
}
