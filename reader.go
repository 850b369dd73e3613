// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"

	"golang.org/x/text/encoding"
)

// Reader provides bounds checked, byte order aware random access to a Source.
//
// A Reader is a small value. The byte order is part of the value, so
// WithByteOrder returns a new Reader and never changes the byte order seen
// by other holders of the same Reader.
type Reader struct {
	src   Source
	order binary.ByteOrder
}

// NewReader creates a new Reader reading src in the given byte order.
func NewReader(src Source, order binary.ByteOrder) Reader {
	if order == nil {
		order = binary.BigEndian
	}
	return Reader{src: src, order: order}
}

// NewBytesReader creates a big endian Reader over b.
func NewBytesReader(b []byte) Reader {
	return NewReader(NewBytesSource(b), binary.BigEndian)
}

// ByteOrder returns the byte order used for multi-byte reads.
func (r Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// IsMotorola reports whether r reads big endian.
func (r Reader) IsMotorola() bool {
	return r.order == binary.BigEndian
}

// WithByteOrder returns a copy of r reading in the given byte order.
func (r Reader) WithByteOrder(order binary.ByteOrder) Reader {
	r.order = order
	return r
}

// WithShiftedBaseOffset returns a Reader where index 0 maps to index shift in r.
func (r Reader) WithShiftedBaseOffset(shift int) (Reader, error) {
	if shift == 0 {
		return r, nil
	}
	if err := r.validate(shift, 0); err != nil {
		return Reader{}, err
	}
	if s, ok := r.src.(shiftedSource); ok {
		s.shift += int64(shift)
		r.src = s
		return r, nil
	}
	r.src = shiftedSource{src: r.src, shift: int64(shift)}
	return r, nil
}

// ToUnshiftedOffset converts index to an index relative to the start of the underlying data.
func (r Reader) ToUnshiftedOffset(index int) int64 {
	return r.src.unshifted(int64(index))
}

// Length returns the number of bytes available to r.
// For stream sources this reads the stream to its end.
func (r Reader) Length() (int64, error) {
	return r.src.Length()
}

// IsValidIndex reports whether n bytes starting at index can be read.
func (r Reader) IsValidIndex(index, n int) (bool, error) {
	if index < 0 || n < 0 {
		return false, nil
	}
	if int64(index)+int64(n)-1 > math.MaxInt32 {
		return false, nil
	}
	return r.src.available(int64(index), int64(n))
}

// validate checks that n bytes starting at index can be read.
// The end position is computed in 64 bit so that a corrupt count cannot wrap around.
func (r Reader) validate(index, n int) error {
	if index < 0 {
		return &BoundsError{Kind: NegativeIndex, Index: r.src.unshifted(int64(index)), Count: int64(n), Length: r.boundsLength()}
	}
	if n < 0 {
		return &BoundsError{Kind: NegativeLength, Index: r.src.unshifted(int64(index)), Count: int64(n), Length: r.boundsLength()}
	}
	if int64(index)+int64(n)-1 > math.MaxInt32 {
		return &BoundsError{Kind: Overflow, Index: r.src.unshifted(int64(index)), Count: int64(n), Length: r.boundsLength()}
	}
	ok, err := r.src.available(int64(index), int64(n))
	if err != nil {
		return err
	}
	if !ok {
		return &BoundsError{Kind: PastEnd, Index: r.src.unshifted(int64(index)), Count: int64(n), Length: r.boundsLength()}
	}
	return nil
}

func (r Reader) boundsLength() int64 {
	n := knownLength(r.src)
	if n < 0 {
		return n
	}
	return r.src.unshifted(n)
}

func (r Reader) read(index, n int) ([]byte, error) {
	if err := r.validate(index, n); err != nil {
		return nil, err
	}
	return r.src.readAt(int64(index), int64(n))
}

// Bytes returns a copy of the n bytes starting at index.
func (r Reader) Bytes(index, n int) ([]byte, error) {
	b, err := r.read(index, n)
	if err != nil {
		return nil, err
	}
	return slices.Clone(b), nil
}

// Bit reports whether bit index is set, counting from the least significant
// bit of the first byte.
func (r Reader) Bit(index int) (bool, error) {
	byteIndex := index / 8
	bitIndex := index % 8
	if index < 0 {
		byteIndex = -1
	}
	b, err := r.read(byteIndex, 1)
	if err != nil {
		return false, err
	}
	return (b[0]>>bitIndex)&1 == 1, nil
}

// Uint8 reads an unsigned 8 bit integer.
func (r Reader) Uint8(index int) (uint8, error) {
	b, err := r.read(index, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads a signed 8 bit integer.
func (r Reader) Int8(index int) (int8, error) {
	v, err := r.Uint8(index)
	return int8(v), err
}

// Uint16 reads an unsigned 16 bit integer.
func (r Reader) Uint16(index int) (uint16, error) {
	b, err := r.read(index, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// Int16 reads a signed 16 bit integer.
func (r Reader) Int16(index int) (int16, error) {
	v, err := r.Uint16(index)
	return int16(v), err
}

// Int24 reads a 24 bit integer. The value is not sign extended.
func (r Reader) Int24(index int) (int32, error) {
	b, err := r.read(index, 3)
	if err != nil {
		return 0, err
	}
	if r.IsMotorola() {
		return int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2]), nil
	}
	return int32(b[2])<<16 | int32(b[1])<<8 | int32(b[0]), nil
}

// Uint32 reads an unsigned 32 bit integer.
func (r Reader) Uint32(index int) (uint32, error) {
	b, err := r.read(index, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// Int32 reads a signed 32 bit integer.
func (r Reader) Int32(index int) (int32, error) {
	v, err := r.Uint32(index)
	return int32(v), err
}

// Int64 reads a signed 64 bit integer.
func (r Reader) Int64(index int) (int64, error) {
	b, err := r.read(index, 8)
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(b)), nil
}

// S15Fixed16 reads a signed 15.16 fixed point number as used in ICC profiles.
func (r Reader) S15Fixed16(index int) (float32, error) {
	b, err := r.read(index, 4)
	if err != nil {
		return 0, err
	}
	return s15Fixed16(r.order, b), nil
}

func s15Fixed16(order binary.ByteOrder, b []byte) float32 {
	var hi int16
	var lo uint16
	if order == binary.BigEndian {
		hi = int16(uint16(b[0])<<8 | uint16(b[1]))
		lo = uint16(b[2])<<8 | uint16(b[3])
	} else {
		hi = int16(uint16(b[3])<<8 | uint16(b[2]))
		lo = uint16(b[1])<<8 | uint16(b[0])
	}
	return float32(float64(hi) + float64(lo)/65536.0)
}

// Float32 reads an IEEE 754 single precision float.
func (r Reader) Float32(index int) (float32, error) {
	v, err := r.Uint32(index)
	return math.Float32frombits(v), err
}

// Float64 reads an IEEE 754 double precision float.
func (r Reader) Float64(index int) (float64, error) {
	b, err := r.read(index, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// String reads n bytes and decodes them using charset.
// A nil charset decodes UTF-8, falling back to ISO-8859-1 for invalid input.
func (r Reader) String(index, n int, charset encoding.Encoding) (string, error) {
	b, err := r.read(index, n)
	if err != nil {
		return "", err
	}
	return decodeString(b, charset)
}

// StringValue reads n bytes into a StringValue with the given charset.
func (r Reader) StringValue(index, n int, charset encoding.Encoding) (StringValue, error) {
	b, err := r.Bytes(index, n)
	if err != nil {
		return StringValue{}, err
	}
	return StringValue{Bytes: b, Charset: charset}, nil
}

// NullTerminatedBytes reads up to maxLen bytes, stopping before the first NUL byte.
// All maxLen bytes must be available.
func (r Reader) NullTerminatedBytes(index, maxLen int) ([]byte, error) {
	b, err := r.read(index, maxLen)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return slices.Clone(b), nil
}

// NullTerminatedString reads a NUL terminated string of at most maxLen bytes.
func (r Reader) NullTerminatedString(index, maxLen int, charset encoding.Encoding) (string, error) {
	b, err := r.NullTerminatedBytes(index, maxLen)
	if err != nil {
		return "", err
	}
	return decodeString(b, charset)
}

// NullTerminatedStringValue reads a NUL terminated StringValue of at most maxLen bytes.
func (r Reader) NullTerminatedStringValue(index, maxLen int, charset encoding.Encoding) (StringValue, error) {
	b, err := r.NullTerminatedBytes(index, maxLen)
	if err != nil {
		return StringValue{}, err
	}
	return StringValue{Bytes: b, Charset: charset}, nil
}

func otherByteOrder(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
