// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"encoding/binary"
	"fmt"
	"math"
)

type exifType uint16

const (
	typeUnsignedByte  exifType = 1
	typeUnsignedAscii exifType = 2
	typeUnsignedShort exifType = 3
	typeUnsignedLong  exifType = 4
	typeUnsignedRat   exifType = 5
	typeSignedByte    exifType = 6
	typeUndef         exifType = 7
	typeSignedShort   exifType = 8
	typeSignedLong    exifType = 9
	typeSignedRat     exifType = 10
	typeSignedFloat   exifType = 11
	typeSignedDouble  exifType = 12
)

// Size in bytes of each type.
var typeSize = map[exifType]int64{
	typeUnsignedByte:  1,
	typeUnsignedAscii: 1,
	typeUnsignedShort: 2,
	typeUnsignedLong:  4,
	typeUnsignedRat:   8,
	typeSignedByte:    1,
	typeUndef:         1,
	typeSignedShort:   2,
	typeSignedLong:    4,
	typeSignedRat:     8,
	typeSignedFloat:   4,
	typeSignedDouble:  8,
}

const maxInvalidFormatCodes = 5

// WalkTIFF decodes the TIFF structure starting at headerOffset in r, using h
// for all format specific decisions. The directories found are added to md.
// If parent is set, it becomes the parent of the first directory.
//
// The returned error is a *ProcessingError if the TIFF structure itself is
// invalid, or the error from the underlying source. Directories decoded
// before the failure are kept in md.
func WalkTIFF(r Reader, headerOffset int, h Handler, md *Metadata, parent *Directory) error {
	return walkTIFF(r, headerOffset, h, md, parent, Options{})
}

func walkTIFF(r Reader, headerOffset int, h Handler, md *Metadata, parent *Directory, opts Options) (err error) {
	opts = opts.withDefaults()
	w := &walker{
		md:         md,
		h:          h,
		opts:       opts,
		visited:    make(map[int]bool),
		rootParent: parent,
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = newProcessingError("panic during TIFF walk", e)
			} else {
				err = newProcessingErrorf("panic during TIFF walk: %v", r)
			}
		}
	}()

	return w.walk(r, headerOffset)
}

type walker struct {
	md   *Metadata
	h    Handler
	opts Options

	// Offsets of all IFDs entered in this walk, nested walks included.
	visited map[int]bool

	current    *Directory
	stack      []*Directory
	rootParent *Directory
}

func (w *walker) walk(r Reader, headerOffset int) error {
	b, err := r.Bytes(headerOffset, 2)
	if err != nil {
		return w.structureError("unable to read TIFF byte order", err)
	}
	switch string(b) {
	case "MM":
		r = r.WithByteOrder(binary.BigEndian)
	case "II":
		r = r.WithByteOrder(binary.LittleEndian)
	default:
		return newProcessingErrorf("Unclear distinction between Motorola/Intel byte ordering: 0x%04X", binary.BigEndian.Uint16(b))
	}

	marker, err := r.Uint16(headerOffset + 2)
	if err != nil {
		return w.structureError("unable to read TIFF marker", err)
	}
	typ, err := w.h.ValidateMarker(marker)
	if err != nil {
		return newProcessingError("invalid TIFF marker", err)
	}

	first, err := r.Int32(headerOffset + 4)
	if err != nil {
		return w.structureError("unable to read first IFD offset", err)
	}
	firstOffset := int64(first) + int64(headerOffset)
	ok, err := w.isValidIndex(r, firstOffset, 2)
	if err != nil {
		return err
	}
	if !ok {
		w.warnf("First IFD offset is beyond the end of the TIFF data segment -- trying default offset")
		firstOffset = int64(headerOffset) + 2 + 2 + 4
	}

	return w.processIFD(r, typ, int(firstOffset), headerOffset)
}

// processIFD decodes the IFD at ifdOffset into a new directory of type typ.
// Entry level failures are recorded on the directory.
func (w *walker) processIFD(r Reader, typ DirectoryType, ifdOffset, headerOffset int) error {
	if w.visited[ifdOffset] {
		return nil
	}
	ok, err := w.isValidIndex(r, int64(ifdOffset), 1)
	if err != nil {
		return err
	}
	if !ok {
		w.errorf("Ignored IFD marked to start outside data segment")
		return nil
	}
	w.visited[ifdOffset] = true

	w.push(typ)
	defer w.pop()

	count, err := r.Uint16(ifdOffset)
	if err != nil {
		return w.structureError("unable to read IFD entry count", err)
	}
	numEntries := int(count)

	// Some software changes the byte order of a file but misses some IFDs.
	if numEntries > 0xFF && numEntries&0xFF == 0 {
		numEntries >>= 8
		r = r.WithByteOrder(otherByteOrder(r.ByteOrder()))
	}

	dirLength := int64(2 + 12*numEntries + 4)
	ok, err = w.isValidIndex(r, int64(ifdOffset), dirLength)
	if err != nil {
		return err
	}
	if !ok {
		w.errorf("Illegally sized IFD")
		return nil
	}

	var invalidFormatCodes int
	for i := range numEntries {
		entryOffset := ifdOffset + 2 + 12*i
		stop, err := w.processEntry(r, entryOffset, headerOffset, &invalidFormatCodes)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}

	next, err := r.Int32(ifdOffset + 2 + 12*numEntries)
	if err != nil {
		return w.structureError("unable to read next IFD offset", err)
	}
	if next == 0 {
		return nil
	}
	nextOffset := int64(next) + int64(headerOffset)
	ok, err = w.isValidIndex(r, nextOffset, 1)
	if err != nil {
		return err
	}
	if !ok {
		w.warnf("Ignored next IFD offset %d outside data segment", nextOffset)
		return nil
	}

	if typ, ok := w.h.FollowerDirectory(w.current); ok {
		return w.processIFD(r, typ, int(nextOffset), headerOffset)
	}

	return nil
}

// processEntry decodes the 12 byte IFD entry at entryOffset.
// It returns true if the rest of the IFD should be skipped.
func (w *walker) processEntry(r Reader, entryOffset, headerOffset int, invalidFormatCodes *int) (bool, error) {
	tagID16, err := r.Uint16(entryOffset)
	if err != nil {
		return false, w.structureError("unable to read IFD entry", err)
	}
	formatCode16, err := r.Uint16(entryOffset + 2)
	if err != nil {
		return false, w.structureError("unable to read IFD entry", err)
	}
	componentCount, err := r.Uint32(entryOffset + 4)
	if err != nil {
		return false, w.structureError("unable to read IFD entry", err)
	}
	tagID, formatCode, count := int(tagID16), int(formatCode16), int64(componentCount)

	var byteCount int64
	if size, found := typeSize[exifType(formatCode)]; found {
		byteCount = count * size
	} else {
		n, ok := w.h.FormatLength(tagID, formatCode, count)
		if !ok {
			w.errorf("Invalid TIFF tag format code %d for tag 0x%04X", formatCode, tagID)
			*invalidFormatCodes++
			if *invalidFormatCodes > maxInvalidFormatCodes {
				w.errorf("Stopping processing as too many errors seen in TIFF IFD")
				return true, nil
			}
			return false, nil
		}
		byteCount = n
	}

	if byteCount < 0 || byteCount > math.MaxInt32 {
		w.errorf("Illegal number of bytes for TIFF tag data: %d", byteCount)
		return false, nil
	}

	valueOffset := int64(entryOffset + 8)
	if byteCount > 4 {
		ptr, err := r.Uint32(entryOffset + 8)
		if err != nil {
			return false, w.structureError("unable to read IFD entry", err)
		}
		valueOffset = int64(headerOffset) + int64(ptr)
	}
	ok, err := w.isValidIndex(r, valueOffset, byteCount)
	if err != nil {
		return false, err
	}
	if !ok {
		w.errorf("Illegal TIFF tag pointer offset")
		return false, nil
	}

	if byteCount == 4*count {
		if typ, ok := w.h.SubDirectory(w.current, tagID); ok {
			for i := range int(count) {
				p, err := r.Int32(int(valueOffset) + i*4)
				if err != nil {
					return false, w.structureError("unable to read sub IFD offset", err)
				}
				if err := w.processIFD(r, typ, headerOffset+int(p), headerOffset); err != nil {
					return false, err
				}
			}
			return false, nil
		}
	}

	if byteCount > w.opts.LimitTagSize {
		w.errorf("Ignored %d bytes of data for tag 0x%04X, exceeds limit of %d bytes", byteCount, tagID, w.opts.LimitTagSize)
		return false, nil
	}

	tc := &TagContext{
		Reader:       r,
		HeaderOffset: headerOffset,
		ValueOffset:  int(valueOffset),
		TagID:        tagID,
		ByteCount:    int(byteCount),
		Directory:    w.current,
		w:            w,
	}
	handled, err := w.h.ProcessTag(tc)
	if err != nil {
		if isSourceError(err) {
			return false, err
		}
		w.current.AddError(err.Error())
		return false, nil
	}
	if handled {
		return false, nil
	}

	if err := w.decodeValue(r, tagID, exifType(formatCode), int(valueOffset), int(count)); err != nil {
		if isSourceError(err) {
			return false, err
		}
		w.current.AddError(err.Error())
	}

	return false, nil
}

// decodeValue decodes a value using the standard TIFF format rules and stores it
// in the current directory. A count of zero stores nothing.
func (w *walker) decodeValue(r Reader, tagID int, typ exifType, offset, count int) error {
	d := w.current
	if count == 0 {
		return nil
	}

	switch typ {
	case typeUndef:
		b, err := r.Bytes(offset, count)
		if err != nil {
			return err
		}
		d.Set(tagID, b)
		return nil
	case typeUnsignedAscii:
		s, err := r.NullTerminatedStringValue(offset, count, nil)
		if err != nil {
			return err
		}
		d.Set(tagID, s)
		return nil
	}

	size, found := typeSize[typ]
	if !found {
		return fmt.Errorf("Invalid TIFF tag format code %d for tag 0x%04X", typ, tagID)
	}
	b, err := r.Bytes(offset, count*int(size))
	if err != nil {
		return err
	}
	order := r.ByteOrder()

	switch typ {
	case typeUnsignedByte:
		if count == 1 {
			d.Set(tagID, int(b[0]))
		} else {
			d.Set(tagID, b)
		}
	case typeSignedByte:
		if count == 1 {
			d.Set(tagID, int(int8(b[0])))
		} else {
			d.Set(tagID, decodeArray(b, 1, func(b []byte) int8 { return int8(b[0]) }))
		}
	case typeUnsignedShort:
		if count == 1 {
			d.Set(tagID, int(order.Uint16(b)))
		} else {
			d.Set(tagID, decodeArray(b, 2, order.Uint16))
		}
	case typeSignedShort:
		if count == 1 {
			d.Set(tagID, int(int16(order.Uint16(b))))
		} else {
			d.Set(tagID, decodeArray(b, 2, func(b []byte) int16 { return int16(order.Uint16(b)) }))
		}
	case typeUnsignedLong:
		if count == 1 {
			d.Set(tagID, int64(order.Uint32(b)))
		} else {
			d.Set(tagID, decodeArray(b, 4, order.Uint32))
		}
	case typeSignedLong:
		if count == 1 {
			d.Set(tagID, int(int32(order.Uint32(b))))
		} else {
			d.Set(tagID, decodeArray(b, 4, func(b []byte) int32 { return int32(order.Uint32(b)) }))
		}
	case typeUnsignedRat:
		rats := decodeArray(b, 8, func(b []byte) Rational {
			return Rational{Num: int64(order.Uint32(b)), Den: int64(order.Uint32(b[4:]))}
		})
		setRationals(d, tagID, rats)
	case typeSignedRat:
		rats := decodeArray(b, 8, func(b []byte) Rational {
			return Rational{Num: int64(int32(order.Uint32(b))), Den: int64(int32(order.Uint32(b[4:])))}
		})
		setRationals(d, tagID, rats)
	case typeSignedFloat:
		floats := decodeArray(b, 4, func(b []byte) float32 { return math.Float32frombits(order.Uint32(b)) })
		if count == 1 {
			d.Set(tagID, floats[0])
		} else {
			d.Set(tagID, floats)
		}
	case typeSignedDouble:
		floats := decodeArray(b, 8, func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) })
		if count == 1 {
			d.Set(tagID, floats[0])
		} else {
			d.Set(tagID, floats)
		}
	}

	return nil
}

func setRationals(d *Directory, tagID int, rats []Rational) {
	if len(rats) == 1 {
		d.Set(tagID, rats[0])
		return
	}
	d.Set(tagID, rats)
}

func decodeArray[T any](b []byte, size int, fn func([]byte) T) []T {
	vals := make([]T, len(b)/size)
	for i := range vals {
		vals[i] = fn(b[i*size:])
	}
	return vals
}

func (w *walker) push(typ DirectoryType) *Directory {
	d := NewDirectory(typ)
	if w.current == nil {
		if w.rootParent != nil {
			d.SetParent(w.rootParent)
			w.rootParent = nil
		}
	} else {
		w.stack = append(w.stack, w.current)
		d.SetParent(w.current)
	}
	w.current = d
	w.md.Add(d)
	return d
}

func (w *walker) pop() {
	if n := len(w.stack); n > 0 {
		w.current = w.stack[n-1]
		w.stack = w.stack[:n-1]
		return
	}
	w.current = nil
}

// isValidIndex is Reader.IsValidIndex for 64 bit arguments.
// Anything not representable as a signed 32 bit offset is invalid.
func (w *walker) isValidIndex(r Reader, index, n int64) (bool, error) {
	if index < 0 || n < 0 || index+n-1 > math.MaxInt32 {
		return false, nil
	}
	return r.IsValidIndex(int(index), int(n))
}

func (w *walker) currentOrErrorDirectory() *Directory {
	if w.current != nil {
		return w.current
	}
	return w.md.errorDirectory()
}

func (w *walker) errorf(format string, args ...any) {
	w.currentOrErrorDirectory().AddError(fmt.Sprintf(format, args...))
}

func (w *walker) warnf(format string, args ...any) {
	w.errorf(format, args...)
	w.opts.Warnf(format, args...)
}

func (w *walker) structureError(msg string, err error) error {
	if isSourceError(err) {
		return err
	}
	return newProcessingError(msg, err)
}
