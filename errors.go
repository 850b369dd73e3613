// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"errors"
	"fmt"
	"io"
)

// BoundsKind classifies a BoundsError.
type BoundsKind int

const (
	// NegativeIndex is returned when the requested index is below zero.
	NegativeIndex BoundsKind = iota + 1
	// NegativeLength is returned when the number of requested bytes is below zero.
	NegativeLength
	// Overflow is returned when index+count-1 does not fit in a signed 32 bit integer.
	Overflow
	// PastEnd is returned when the requested range extends beyond the end of the source.
	PastEnd
)

func (k BoundsKind) String() string {
	switch k {
	case NegativeIndex:
		return "NegativeIndex"
	case NegativeLength:
		return "NegativeLength"
	case Overflow:
		return "Overflow"
	case PastEnd:
		return "PastEnd"
	default:
		return fmt.Sprintf("BoundsKind(%d)", int(k))
	}
}

// BoundsError is returned by the readers when a requested byte range is not
// accessible. It is always returned before any byte is read.
type BoundsError struct {
	Kind BoundsKind

	// Index is the requested index, relative to the start of the underlying data.
	Index int64
	// Count is the number of requested bytes.
	Count int64
	// Length is the known length of the underlying data, -1 if not known.
	Length int64
}

func (e *BoundsError) Error() string {
	switch e.Kind {
	case NegativeIndex:
		return fmt.Sprintf("attempt to read from buffer using a negative index (%d)", e.Index)
	case NegativeLength:
		return fmt.Sprintf("number of requested bytes cannot be negative (%d)", e.Count)
	case Overflow:
		return fmt.Sprintf("number of requested bytes summed with starting index exceed maximum range of signed 32 bit integers (requested index: %d, requested count: %d)", e.Index, e.Count)
	default:
		return fmt.Sprintf("attempt to read from beyond end of underlying data source (requested index: %d, requested count: %d, max index: %d)", e.Index, e.Count, e.Length-1)
	}
}

// IsBoundsError reports whether err is or wraps a *BoundsError.
func IsBoundsError(err error) bool {
	var be *BoundsError
	return errors.As(err, &be)
}

// ProcessingError is returned when the structure of a container is invalid,
// e.g. an unknown byte order mark, a rejected marker or an unreadable IFD.
// The walk of that container is aborted, but any directories decoded so far
// are kept in the Metadata.
type ProcessingError struct {
	msg string
	err error
}

func newProcessingErrorf(format string, args ...any) *ProcessingError {
	return &ProcessingError{msg: fmt.Sprintf(format, args...)}
}

func newProcessingError(msg string, err error) *ProcessingError {
	return &ProcessingError{msg: msg, err: err}
}

func (e *ProcessingError) Error() string {
	if e.err == nil {
		return "tiffmeta: " + e.msg
	}
	return fmt.Sprintf("tiffmeta: %s: %v", e.msg, e.err)
}

func (e *ProcessingError) Unwrap() error {
	return e.err
}

// IsProcessingError reports whether err is or wraps a *ProcessingError.
func IsProcessingError(err error) bool {
	var pe *ProcessingError
	return errors.As(err, &pe)
}

// SourceError wraps a failure reported by the underlying io.Reader or io.ReadSeeker.
// These are never downgraded to directory errors.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return "tiffmeta: read failed: " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func isSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

var errInvalidFormat = errors.New("tiffmeta: invalid format")

type invalidFormatError struct {
	err error
}

func (e *invalidFormatError) Error() string {
	return fmt.Sprintf("%s: %v", errInvalidFormat, e.err)
}

func (e *invalidFormatError) Is(target error) bool {
	return target == errInvalidFormat
}

func (e *invalidFormatError) Unwrap() error {
	return e.err
}

func newInvalidFormatError(err error) error {
	if err == nil || errors.Is(err, errInvalidFormat) {
		return err
	}
	return &invalidFormatError{err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &invalidFormatError{err: fmt.Errorf(format, args...)}
}

// IsInvalidFormat reports whether err signals that the image data could not
// be understood, as opposed to e.g. an I/O error.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, errInvalidFormat)
}

func isInvalidFormatErrorCandidate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || IsBoundsError(err)
}
