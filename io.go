// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"io"
)

type imageDecoder interface {
	decode() error
}

type fourCC [4]byte

func (f fourCC) String() string {
	return string(f[:])
}

// baseDecoder is shared by the image container decoders.
type baseDecoder struct {
	r    Reader
	md   *Metadata
	opts Options
}

// segment returns the n bytes at offset.
// Segments larger than LimitTagSize are rejected.
func (e *baseDecoder) segment(offset, n int) ([]byte, error) {
	if n < 0 {
		return nil, newInvalidFormatErrorf("negative length")
	}
	if int64(n) > e.opts.LimitTagSize {
		return nil, newInvalidFormatErrorf("length %d exceeds max %d", n, e.opts.LimitTagSize)
	}
	if n == 0 {
		return nil, nil
	}
	return e.r.Bytes(offset, n)
}

// errorf records an error that is not tied to a decoded directory.
func (e *baseDecoder) errorf(format string, args ...any) {
	e.md.errorDirectory().AddError(fmt.Sprintf(format, args...))
}

// decodeExif walks the TIFF structure of an embedded Exif block.
// Failures in the block are recorded as errors, only
// source errors are returned.
func (e *baseDecoder) decodeExif(b []byte) error {
	if err := decodeTIFF(NewBytesReader(b), 0, e.md, nil, e.opts); err != nil {
		if isSourceError(err) {
			return err
		}
		e.errorf("Exception processing TIFF data: %s", err)
	}
	return nil
}

// setImageConfig stores the container dimensions if CONFIG was requested.
func (e *baseDecoder) setImageConfig(width, height int) {
	if !e.opts.Sources.Has(CONFIG) || width <= 0 || height <= 0 {
		return
	}
	e.md.config = ImageConfig{Width: width, Height: height}
}

// readerAt adapts a Reader to io.ReaderAt.
type readerAt struct {
	r Reader
}

func (ra readerAt) ReadAt(p []byte, off int64) (int, error) {
	length, err := ra.r.Length()
	if err != nil {
		return 0, err
	}
	if off >= length {
		return 0, io.EOF
	}
	n := min(int64(len(p)), length-off)
	b, err := ra.r.Bytes(int(off), int(n))
	if err != nil {
		return 0, err
	}
	copy(p, b)
	if int(n) < len(p) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// newSectionReader returns an io.Reader over all of r.
func newSectionReader(r Reader) (*io.SectionReader, error) {
	length, err := r.Length()
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(readerAt{r: r}, 0, length), nil
}
