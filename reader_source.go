// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the chunk size used by NewStreamSource when none is given.
const DefaultChunkSize = 2048

// Source is a random access byte source backing a Reader.
// The ranges passed to it have already been validated against
// negative values and 32 bit overflow.
//
// Sources are not safe for concurrent use.
type Source interface {
	// Length returns the total number of bytes in the source.
	// For stream sources this reads the stream to its end.
	Length() (int64, error)

	// available reports whether n bytes starting at index can be read,
	// pulling more data from the underlying reader if needed.
	available(index, n int64) (bool, error)

	// readAt returns n bytes starting at index.
	// The returned slice may alias internal storage and must not be modified.
	readAt(index, n int64) ([]byte, error)

	// unshifted converts index into an index relative to the start of the underlying data.
	unshifted(index int64) int64
}

// NewBytesSource creates a Source from b.
func NewBytesSource(b []byte) Source {
	return bytesSource{b: b}
}

type bytesSource struct {
	b []byte
}

func (s bytesSource) Length() (int64, error) {
	return int64(len(s.b)), nil
}

func (s bytesSource) available(index, n int64) (bool, error) {
	return index+n <= int64(len(s.b)), nil
}

func (s bytesSource) readAt(index, n int64) ([]byte, error) {
	return s.b[index : index+n], nil
}

func (s bytesSource) unshifted(index int64) int64 {
	return index
}

// shiftedSource is a view into another source starting at shift.
type shiftedSource struct {
	src   Source
	shift int64
}

func (s shiftedSource) Length() (int64, error) {
	n, err := s.src.Length()
	if err != nil {
		return 0, err
	}
	return n - s.shift, nil
}

func (s shiftedSource) available(index, n int64) (bool, error) {
	return s.src.available(index+s.shift, n)
}

func (s shiftedSource) readAt(index, n int64) ([]byte, error) {
	return s.src.readAt(index+s.shift, n)
}

func (s shiftedSource) unshifted(index int64) int64 {
	return s.src.unshifted(index + s.shift)
}

// NewFileSource creates a Source from a io.ReadSeeker, typically an *os.File.
// The length is determined up front by seeking to the end.
func NewFileSource(r io.ReadSeeker) (Source, error) {
	length, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &SourceError{Err: err}
	}
	return &fileSource{r: r, length: length, pos: -1}, nil
}

type fileSource struct {
	r      io.ReadSeeker
	length int64

	// The current position in r, -1 if unknown.
	pos int64
}

func (s *fileSource) Length() (int64, error) {
	return s.length, nil
}

func (s *fileSource) available(index, n int64) (bool, error) {
	return index+n <= s.length, nil
}

func (s *fileSource) readAt(index, n int64) ([]byte, error) {
	if index != s.pos {
		if _, err := s.r.Seek(index, io.SeekStart); err != nil {
			s.pos = -1
			return nil, &SourceError{Err: err}
		}
		s.pos = index
	}
	b := make([]byte, n)
	m, err := io.ReadFull(s.r, b)
	s.pos += int64(m)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &SourceError{Err: fmt.Errorf("unexpected end of file encountered: %w", io.ErrUnexpectedEOF)}
		}
		return nil, &SourceError{Err: err}
	}
	return b, nil
}

func (s *fileSource) unshifted(index int64) int64 {
	return index
}

// NewStreamSource creates a Source that reads r lazily in chunks of chunkSize bytes.
// Only the chunks needed to satisfy a request are read and buffered.
// The length is not known until the stream has been read to its end.
func NewStreamSource(r io.Reader, chunkSize int) Source {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &streamSource{r: r, chunkSize: int64(chunkSize), length: -1}
}

type streamSource struct {
	r         io.Reader
	chunkSize int64
	chunks    [][]byte

	// Set when r is exhausted.
	done   bool
	length int64
}

func (s *streamSource) Length() (int64, error) {
	for !s.done {
		if err := s.readChunk(); err != nil {
			return 0, err
		}
	}
	return s.length, nil
}

func (s *streamSource) readChunk() error {
	buf := make([]byte, s.chunkSize)
	n, err := io.ReadFull(s.r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.done = true
			s.length = int64(len(s.chunks))*s.chunkSize + int64(n)
			if n > 0 {
				s.chunks = append(s.chunks, buf[:n])
			}
			return nil
		}
		return &SourceError{Err: err}
	}
	s.chunks = append(s.chunks, buf)
	return nil
}

func (s *streamSource) available(index, n int64) (bool, error) {
	end := index + n - 1
	if end < 0 {
		return true, nil
	}
	chunkIndex := end / s.chunkSize
	for !s.done && int64(len(s.chunks)) <= chunkIndex {
		if err := s.readChunk(); err != nil {
			return false, err
		}
	}
	if s.done {
		return end < s.length, nil
	}
	return true, nil
}

func (s *streamSource) readAt(index, n int64) ([]byte, error) {
	b := make([]byte, n)
	var copied int64
	for copied < n {
		pos := index + copied
		chunk := s.chunks[pos/s.chunkSize]
		copied += int64(copy(b[copied:], chunk[pos%s.chunkSize:]))
	}
	return b, nil
}

func (s *streamSource) unshifted(index int64) int64 {
	return index
}

// knownLength returns the length of src if it can be determined without
// reading more data, else -1.
func knownLength(src Source) int64 {
	switch s := src.(type) {
	case *streamSource:
		if !s.done {
			return -1
		}
		return s.length
	case shiftedSource:
		n := knownLength(s.src)
		if n < 0 {
			return n
		}
		return n - s.shift
	default:
		n, err := src.Length()
		if err != nil {
			return -1
		}
		return n
	}
}
