// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding"
)

var errEndOfData = errors.New("end of data reached")

// SequentialReader reads typed values from a stream, advancing a position counter.
// A short read is an error; it is never retried.
// Note that this is not thread safe.
type SequentialReader struct {
	r     io.Reader
	order binary.ByteOrder
	pos   int64

	buf [8]byte
}

// NewSequentialReader creates a big endian SequentialReader reading from r.
func NewSequentialReader(r io.Reader) *SequentialReader {
	return &SequentialReader{r: r, order: binary.BigEndian}
}

// ByteOrder returns the byte order used for multi-byte reads.
func (s *SequentialReader) ByteOrder() binary.ByteOrder {
	return s.order
}

// SetByteOrder sets the byte order used for multi-byte reads.
func (s *SequentialReader) SetByteOrder(order binary.ByteOrder) {
	s.order = order
}

// Position returns the number of bytes consumed so far.
func (s *SequentialReader) Position() int64 {
	return s.pos
}

func (s *SequentialReader) readFull(b []byte) error {
	n, err := io.ReadFull(s.r, b)
	s.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w (position %d, requested %d bytes, got %d)", errEndOfData, s.pos, len(b), n)
		}
		return &SourceError{Err: err}
	}
	return nil
}

func (s *SequentialReader) readN(n int) ([]byte, error) {
	b := s.buf[:n]
	if err := s.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Bytes reads the next n bytes.
func (s *SequentialReader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &BoundsError{Kind: NegativeLength, Index: s.pos, Count: int64(n), Length: -1}
	}
	b := make([]byte, n)
	if err := s.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Uint8 reads an unsigned 8 bit integer.
func (s *SequentialReader) Uint8() (uint8, error) {
	b, err := s.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads a signed 8 bit integer.
func (s *SequentialReader) Int8() (int8, error) {
	v, err := s.Uint8()
	return int8(v), err
}

// Uint16 reads an unsigned 16 bit integer.
func (s *SequentialReader) Uint16() (uint16, error) {
	b, err := s.readN(2)
	if err != nil {
		return 0, err
	}
	return s.order.Uint16(b), nil
}

// Int16 reads a signed 16 bit integer.
func (s *SequentialReader) Int16() (int16, error) {
	v, err := s.Uint16()
	return int16(v), err
}

// Int24 reads a 24 bit integer. The value is not sign extended.
func (s *SequentialReader) Int24() (int32, error) {
	b, err := s.readN(3)
	if err != nil {
		return 0, err
	}
	if s.order == binary.BigEndian {
		return int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2]), nil
	}
	return int32(b[2])<<16 | int32(b[1])<<8 | int32(b[0]), nil
}

// Uint32 reads an unsigned 32 bit integer.
func (s *SequentialReader) Uint32() (uint32, error) {
	b, err := s.readN(4)
	if err != nil {
		return 0, err
	}
	return s.order.Uint32(b), nil
}

// Int32 reads a signed 32 bit integer.
func (s *SequentialReader) Int32() (int32, error) {
	v, err := s.Uint32()
	return int32(v), err
}

// Uint64 reads an unsigned 64 bit integer.
func (s *SequentialReader) Uint64() (uint64, error) {
	b, err := s.readN(8)
	if err != nil {
		return 0, err
	}
	return s.order.Uint64(b), nil
}

// Int64 reads a signed 64 bit integer.
func (s *SequentialReader) Int64() (int64, error) {
	v, err := s.Uint64()
	return int64(v), err
}

// S15Fixed16 reads a signed 15.16 fixed point number.
func (s *SequentialReader) S15Fixed16() (float32, error) {
	b, err := s.readN(4)
	if err != nil {
		return 0, err
	}
	return s15Fixed16(s.order, b), nil
}

// Float32 reads an IEEE 754 single precision float.
func (s *SequentialReader) Float32() (float32, error) {
	v, err := s.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads an IEEE 754 double precision float.
func (s *SequentialReader) Float64() (float64, error) {
	v, err := s.Uint64()
	return math.Float64frombits(v), err
}

// String reads n bytes and decodes them using charset.
func (s *SequentialReader) String(n int, charset encoding.Encoding) (string, error) {
	b, err := s.Bytes(n)
	if err != nil {
		return "", err
	}
	return decodeString(b, charset)
}

// StringValue reads n bytes into a StringValue.
func (s *SequentialReader) StringValue(n int, charset encoding.Encoding) (StringValue, error) {
	b, err := s.Bytes(n)
	if err != nil {
		return StringValue{}, err
	}
	return StringValue{Bytes: b, Charset: charset}, nil
}

// NullTerminatedBytes reads bytes until a NUL byte or until maxLen bytes have
// been consumed. The NUL byte is consumed but not returned.
func (s *SequentialReader) NullTerminatedBytes(maxLen int) ([]byte, error) {
	var b []byte
	for range maxLen {
		c, err := s.Uint8()
		if err != nil {
			return nil, err
		}
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return b, nil
}

// NullTerminatedString reads a NUL terminated string of at most maxLen bytes.
func (s *SequentialReader) NullTerminatedString(maxLen int, charset encoding.Encoding) (string, error) {
	b, err := s.NullTerminatedBytes(maxLen)
	if err != nil {
		return "", err
	}
	return decodeString(b, charset)
}

// Skip skips exactly n bytes. It is an error if the stream ends first.
func (s *SequentialReader) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("n must be zero or greater, got %d", n)
	}
	skipped, err := s.skip(n)
	if err != nil {
		return err
	}
	if skipped != n {
		return fmt.Errorf("%w: unable to skip, requested %d bytes but skipped %d", errEndOfData, n, skipped)
	}
	return nil
}

// TrySkip skips up to n bytes and reports whether all of them were skipped.
func (s *SequentialReader) TrySkip(n int64) (bool, error) {
	if n < 0 {
		return false, fmt.Errorf("n must be zero or greater, got %d", n)
	}
	skipped, err := s.skip(n)
	if err != nil {
		return false, err
	}
	return skipped == n, nil
}

// Available returns the number of bytes left in the stream, if the
// underlying reader has a Len method or is an io.Seeker.
func (s *SequentialReader) Available() (int64, bool) {
	switch r := s.r.(type) {
	case interface{ Len() int }:
		return int64(r.Len()), true
	case io.Seeker:
		cur, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		end, err := r.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, false
		}
		if _, err := r.Seek(cur, io.SeekStart); err != nil {
			return 0, false
		}
		return end - cur, true
	}
	return 0, false
}

// skip keeps reading until n bytes are consumed or the
// underlying reader stops making progress.
func (s *SequentialReader) skip(n int64) (int64, error) {
	if seeker, ok := s.r.(io.Seeker); ok {
		if skipped, ok := s.seekSkip(seeker, n); ok {
			return skipped, nil
		}
	}
	var scratch [512]byte
	var skipped int64
	for skipped < n {
		m, err := s.r.Read(scratch[:min(int64(len(scratch)), n-skipped)])
		skipped += int64(m)
		s.pos += int64(m)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return skipped, &SourceError{Err: err}
		}
		if m == 0 {
			break
		}
	}
	return skipped, nil
}

// seekSkip skips using Seek when the total size is known,
// clamping to the end of the stream.
func (s *SequentialReader) seekSkip(seeker io.Seeker, n int64) (int64, bool) {
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	target := min(cur+n, end)
	if _, err := seeker.Seek(target, io.SeekStart); err != nil {
		return 0, false
	}
	s.pos += target - cur
	return target - cur, true
}
