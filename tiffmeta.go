// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package tiffmeta reads metadata from TIFF structured data: Exif, camera RAW
// files and the TIFF blocks embedded in JPEG, PNG, WebP and HEIF images,
// including maker notes and the IPTC, XMP, ICC and Photoshop blocks they carry.
package tiffmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// EXIF is the EXIF tag source, which includes maker notes.
	EXIF TagSource = 1 << iota
	// IPTC is the IPTC tag source.
	IPTC
	// XMP is the XMP tag source.
	XMP
	// ICC is the ICC profile tag source.
	ICC

	// CONFIG source, which currently the image dimensions encoded in the image.
	// Note that this must not be confused with the dimensions stored in EXIF tags.
	CONFIG
)

const allMetadataSources = EXIF | IPTC | XMP | ICC

const (
	// ImageFormatAuto detects the image format from the first bytes of the data.
	ImageFormatAuto ImageFormat = iota
	// JPEG is the JPEG image format.
	JPEG
	// TIFF is the TIFF image format, which includes most camera RAW formats.
	TIFF
	// PNG is the PNG image format.
	PNG
	// WebP is the WebP image format.
	WebP
	// HEIF is the HEIF/HEIC image format (ISO Base Media File Format with HEVC codec).
	HEIF
	// AVIF is the AVIF image format (ISO Base Media File Format with AV1 codec).
	AVIF
)

// DefaultLimitTagSize is the default for Options.LimitTagSize.
// 10 MB should be plenty for image metadata.
const DefaultLimitTagSize = 10 * 1024 * 1024

// ImageFormat is the image format.
type ImageFormat int

var imageFormatNames = map[ImageFormat]string{
	ImageFormatAuto: "ImageFormatAuto",
	JPEG:            "JPEG",
	TIFF:            "TIFF",
	PNG:             "PNG",
	WebP:            "WebP",
	HEIF:            "HEIF",
	AVIF:            "AVIF",
}

func (f ImageFormat) String() string {
	if s, ok := imageFormatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("ImageFormat(%d)", int(f))
}

// ImageFormatFromExtension returns the image format for a file extension
// such as ".jpg" or "cr2". Most camera RAW formats are TIFF based.
func ImageFormatFromExtension(ext string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "jpe", "jfif":
		return JPEG, true
	case "tif", "tiff", "dng", "nef", "nrw", "cr2", "arw", "srf", "sr2", "orf", "rw2", "rwl", "pef", "3fr", "erf", "kdc", "dcr", "mos", "iiq", "srw", "x3f":
		return TIFF, true
	case "png":
		return PNG, true
	case "webp":
		return WebP, true
	case "heic", "heif", "hif":
		return HEIF, true
	case "avif":
		return AVIF, true
	}
	return ImageFormatAuto, false
}

// TagSource is a bitmask and you may send multiple sources at once.
type TagSource uint32

var tagSourceNames = []struct {
	s    TagSource
	name string
}{
	{EXIF, "EXIF"},
	{IPTC, "IPTC"},
	{XMP, "XMP"},
	{ICC, "ICC"},
	{CONFIG, "CONFIG"},
}

// ParseTagSources parses a comma separated list of source names, e.g. "exif,xmp".
func ParseTagSources(s string) (TagSource, error) {
	var sources TagSource
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var found bool
		for _, ts := range tagSourceNames {
			if strings.EqualFold(part, ts.name) {
				sources |= ts.s
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown tag source %q", part)
		}
	}
	return sources, nil
}

func (t TagSource) String() string {
	if t == 0 {
		return "none"
	}
	var names []string
	for _, ts := range tagSourceNames {
		if t.Has(ts.s) {
			names = append(names, ts.name)
		}
	}
	return strings.Join(names, "|")
}

// Remove removes the given source.
func (t TagSource) Remove(source TagSource) TagSource {
	t &= ^source
	return t
}

// Has returns true if the given source is set.
func (t TagSource) Has(source TagSource) bool {
	return t&source != 0
}

// IsZero returns true if the source is zero.
func (t TagSource) IsZero() bool {
	return t == 0
}

// Options contains the options for the Decode function.
type Options struct {
	// The Reader (typically a *os.File) to read image metadata from.
	// If R implements io.ReadSeeker, values are read on demand.
	// Otherwise R is read lazily in chunks of ChunkSize bytes.
	R io.Reader

	// Data holds the whole image in memory, e.g. a memory mapped file.
	// If set, R is ignored and values are read from Data directly.
	Data []byte

	// The image format in R.
	// If not set, the format is detected from the first bytes in R.
	ImageFormat ImageFormat

	// If set, the decoder will only read the given tag sources.
	// Note that this is a bitmask and you may send multiple sources at once.
	// The default is all metadata sources, but not CONFIG.
	Sources TagSource

	// Warnf will be called for each warning.
	Warnf func(string, ...any)

	// LimitTagSize is the maximum size in bytes of a tag value or
	// embedded block to read. Larger values are skipped and recorded
	// as a directory error.
	// Default value is DefaultLimitTagSize.
	LimitTagSize int64

	// ChunkSize is the chunk size used when R is not an io.ReadSeeker.
	// Default value is DefaultChunkSize.
	ChunkSize int
}

func (o Options) withDefaults() Options {
	if o.Sources == 0 {
		o.Sources = allMetadataSources
	}
	if o.Warnf == nil {
		o.Warnf = func(string, ...any) {}
	}
	if o.LimitTagSize <= 0 {
		o.LimitTagSize = DefaultLimitTagSize
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// Decode reads the metadata in opts.R.
//
// The returned Metadata is never nil; directories decoded before a failure
// are kept. Failures in the TIFF structure of a TIFF or RAW file are returned
// as a *ProcessingError, failures in embedded blocks are recorded on the
// directories. Errors from opts.R are returned as a *SourceError.
func Decode(opts Options) (md *Metadata, err error) {
	md = NewMetadata()

	defer func() {
		if r := recover(); r != nil {
			if errp, ok := r.(error); ok {
				err = errp
			} else {
				err = fmt.Errorf("unknown panic: %v", r)
			}
		}
		err = finalError(err)
	}()

	if opts.R == nil && opts.Data == nil {
		return md, errors.New("no reader provided")
	}
	opts = opts.withDefaults()

	r, err := newSourceReader(opts)
	if err != nil {
		return md, err
	}

	if opts.ImageFormat == ImageFormatAuto {
		if opts.ImageFormat, err = detectImageFormat(r); err != nil {
			return md, err
		}
	}

	// Remove sources not supported by the format.
	var sourceSet TagSource
	switch opts.ImageFormat {
	case JPEG, TIFF, PNG:
		sourceSet = allMetadataSources | CONFIG
	case WebP:
		sourceSet = EXIF | XMP | ICC | CONFIG
	case HEIF, AVIF:
		sourceSet = EXIF | XMP | CONFIG
	default:
		return md, fmt.Errorf("unsupported image format %s", opts.ImageFormat)
	}
	opts.Sources &= sourceSet
	if opts.Sources.IsZero() {
		return md, nil
	}

	base := &baseDecoder{r: r, md: md, opts: opts}

	var dec imageDecoder
	switch opts.ImageFormat {
	case JPEG:
		dec = &imageDecoderJPEG{baseDecoder: base}
	case TIFF:
		dec = &imageDecoderTIF{baseDecoder: base}
	case PNG:
		dec = &imageDecoderPNG{baseDecoder: base}
	case WebP:
		dec = &imageDecoderWebP{baseDecoder: base}
	case HEIF, AVIF:
		dec = &imageDecoderHEIF{baseDecoder: base}
	}

	return md, dec.decode()
}

func newSourceReader(opts Options) (Reader, error) {
	var src Source
	if opts.Data != nil {
		src = NewBytesSource(opts.Data)
	} else if rs, ok := opts.R.(io.ReadSeeker); ok {
		var err error
		if src, err = NewFileSource(rs); err != nil {
			return Reader{}, err
		}
	} else {
		src = NewStreamSource(opts.R, opts.ChunkSize)
	}
	return NewReader(src, binary.BigEndian), nil
}

func detectImageFormat(r Reader) (ImageFormat, error) {
	b, err := r.Bytes(0, 12)
	if err != nil {
		if isSourceError(err) {
			return ImageFormatAuto, err
		}
		return ImageFormatAuto, newInvalidFormatErrorf("too short to detect the image format")
	}

	s := string(b)
	switch {
	case b[0] == 0xFF && b[1] == 0xD8:
		return JPEG, nil
	case strings.HasPrefix(s, "\x89PNG\r\n\x1a\n"):
		return PNG, nil
	case s[:4] == "RIFF" && s[8:12] == "WEBP":
		return WebP, nil
	case s[4:8] == "ftyp":
		switch s[8:12] {
		case "avif", "avis":
			return AVIF, nil
		}
		return HEIF, nil
	case s[:2] == "MM" || s[:2] == "II":
		return TIFF, nil
	}
	return ImageFormatAuto, newInvalidFormatErrorf("unknown image format")
}

func finalError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	if isSourceError(err) || IsProcessingError(err) {
		return err
	}
	if isInvalidFormatErrorCandidate(err) {
		return newInvalidFormatError(err)
	}
	return err
}
