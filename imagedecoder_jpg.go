// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import "bytes"

const (
	markerSOI   = 0xffd8
	markerSOS   = 0xffda
	markerEOI   = 0xffd9
	markerApp1  = 0xffe1
	markerApp2  = 0xffe2
	markerApp13 = 0xffed
)

var (
	markerExif      = []byte("Exif\x00\x00")
	markerXMP       = []byte("http://ns.adobe.com/xap/1.0/\x00")
	markerICC       = []byte("ICC_PROFILE\x00")
	markerPhotoshop = []byte("Photoshop 3.0\x00")
)

// The ICC_PROFILE identifier followed by the sequence number and the chunk count.
const iccSegmentHeaderLen = 14

type imageDecoderJPEG struct {
	*baseDecoder

	iccChunks [][]byte
}

// decodeJPEG decodes the metadata segments of the JPEG in r into md.
func decodeJPEG(r Reader, md *Metadata, opts Options) error {
	dec := &imageDecoderJPEG{baseDecoder: &baseDecoder{r: r, md: md, opts: opts.withDefaults()}}
	return dec.decode()
}

func (e *imageDecoderJPEG) decode() error {
	soi, err := e.r.Uint16(0)
	if err != nil {
		if isSourceError(err) {
			return err
		}
		return newInvalidFormatError(err)
	}
	if soi != markerSOI {
		return newInvalidFormatErrorf("invalid JPEG start marker 0x%04X", soi)
	}

	pos := 2
	for {
		marker, next, err := e.nextMarker(pos)
		if err != nil {
			if isSourceError(err) {
				return err
			}
			// Truncated after the last complete segment.
			break
		}
		pos = next

		if marker == markerSOS || marker == markerEOI {
			// Start of scan. We're done.
			break
		}
		if isStandaloneMarker(marker) {
			continue
		}

		// The 16-bit length of the segment includes the 2 bytes for the length itself.
		length, err := e.r.Uint16(pos)
		if err != nil {
			if isSourceError(err) {
				return err
			}
			break
		}
		if length < 2 {
			return newInvalidFormatErrorf("invalid JPEG segment length %d for marker 0x%04X", length, marker)
		}
		if err := e.handleSegment(marker, pos+2, int(length)-2); err != nil {
			return err
		}
		pos += int(length)
	}

	if len(e.iccChunks) > 0 {
		decodeICC(NewBytesReader(bytes.Join(e.iccChunks, nil)), e.md, nil)
	}

	return nil
}

// nextMarker reads the marker at pos, skipping any fill bytes.
// It returns the marker and the position after it.
func (e *imageDecoderJPEG) nextMarker(pos int) (uint16, int, error) {
	b, err := e.r.Uint8(pos)
	if err != nil {
		return 0, 0, err
	}
	if b != 0xff {
		return 0, 0, newInvalidFormatErrorf("expected JPEG marker at offset %d, got 0x%02X", pos, b)
	}
	for b == 0xff {
		pos++
		if b, err = e.r.Uint8(pos); err != nil {
			return 0, 0, err
		}
	}
	return 0xff00 | uint16(b), pos + 1, nil
}

// isStandaloneMarker reports whether marker has no length field (TEM and RSTn).
func isStandaloneMarker(marker uint16) bool {
	return marker == 0xff01 || (marker >= 0xffd0 && marker <= 0xffd7)
}

// isSOFMarker reports whether marker is a start of frame marker.
func isSOFMarker(marker uint16) bool {
	return marker >= 0xffc0 && marker <= 0xffcf && marker != 0xffc4 && marker != 0xffc8 && marker != 0xffcc
}

func (e *imageDecoderJPEG) handleSegment(marker uint16, offset, length int) error {
	sources := e.opts.Sources

	switch {
	case isSOFMarker(marker) && sources.Has(CONFIG):
		return e.handleSOF(offset, length)
	case marker == markerApp1 && sources.Has(EXIF|XMP):
		return e.handleApp1(offset, length)
	case marker == markerApp2 && sources.Has(ICC):
		return e.handleICC(offset, length)
	case marker == markerApp13 && sources.Has(IPTC):
		return e.handlePhotoshop(offset, length)
	}
	return nil
}

func (e *imageDecoderJPEG) handleSOF(offset, length int) error {
	if length < 5 {
		return nil
	}
	// Sample precision, then height and width.
	height, err := e.r.Uint16(offset + 1)
	if err != nil {
		return e.segmentError("SOF", err)
	}
	width, err := e.r.Uint16(offset + 3)
	if err != nil {
		return e.segmentError("SOF", err)
	}
	e.setImageConfig(int(width), int(height))
	return nil
}

func (e *imageDecoderJPEG) handleApp1(offset, length int) error {
	b, err := e.segment(offset, length)
	if err != nil {
		return e.segmentError("APP1", err)
	}
	switch {
	case bytes.HasPrefix(b, markerExif) && e.opts.Sources.Has(EXIF):
		return e.decodeExif(b[len(markerExif):])
	case bytes.HasPrefix(b, markerXMP) && e.opts.Sources.Has(XMP):
		decodeXMP(b[len(markerXMP):], e.md, nil)
	}
	return nil
}

func (e *imageDecoderJPEG) handleICC(offset, length int) error {
	b, err := e.segment(offset, length)
	if err != nil {
		return e.segmentError("APP2", err)
	}
	if len(b) > iccSegmentHeaderLen && bytes.HasPrefix(b, markerICC) {
		e.iccChunks = append(e.iccChunks, b[iccSegmentHeaderLen:])
	}
	return nil
}

func (e *imageDecoderJPEG) handlePhotoshop(offset, length int) error {
	b, err := e.segment(offset, length)
	if err != nil {
		return e.segmentError("APP13", err)
	}
	if bytes.HasPrefix(b, markerPhotoshop) {
		decodePhotoshop(b[len(markerPhotoshop):], e.md, nil, e.opts)
	}
	return nil
}

// segmentError records a segment that could not be read.
// Only source errors are returned.
func (e *imageDecoderJPEG) segmentError(name string, err error) error {
	if isSourceError(err) {
		return err
	}
	e.errorf("Error reading JPEG %s segment: %s", name, err)
	return nil
}
