// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

var (
	fccVP8  = riff.FourCC{'V', 'P', '8', ' '}
	fccVP8L = riff.FourCC{'V', 'P', '8', 'L'}
	fccVP8X = riff.FourCC{'V', 'P', '8', 'X'}
	fccWEBP = riff.FourCC{'W', 'E', 'B', 'P'}
	fccEXIF = riff.FourCC{'E', 'X', 'I', 'F'}
	fccXMP  = riff.FourCC{'X', 'M', 'P', ' '}
	fccICCP = riff.FourCC{'I', 'C', 'C', 'P'}
)

type imageDecoderWebP struct {
	*baseDecoder
}

func (e *imageDecoderWebP) decode() error {
	sr, err := newSectionReader(e.r)
	if err != nil {
		return err
	}

	formType, riffReader, err := riff.NewReader(sr)
	if err != nil {
		if isSourceError(err) {
			return err
		}
		return newInvalidFormatError(err)
	}
	if formType != fccWEBP {
		return newInvalidFormatErrorf("not a WebP file")
	}

	for {
		chunkID, chunkLen, chunkData, err := riffReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if isSourceError(err) {
				return err
			}
			// Truncated after the last complete chunk.
			return nil
		}

		switch chunkID {
		case fccVP8X, fccVP8, fccVP8L:
			if !e.opts.Sources.Has(CONFIG) {
				continue
			}
		case fccEXIF:
			if !e.opts.Sources.Has(EXIF) {
				continue
			}
		case fccXMP:
			if !e.opts.Sources.Has(XMP) {
				continue
			}
		case fccICCP:
			if !e.opts.Sources.Has(ICC) {
				continue
			}
		default:
			continue
		}

		if int64(chunkLen) > e.opts.LimitTagSize {
			e.errorf("Ignored WebP %s chunk of %d bytes, exceeds limit of %d bytes", fourCC(chunkID), chunkLen, e.opts.LimitTagSize)
			continue
		}
		b, err := io.ReadAll(chunkData)
		if err != nil {
			if isSourceError(err) {
				return err
			}
			e.errorf("Error reading WebP %s chunk: %s", fourCC(chunkID), err)
			return nil
		}

		switch chunkID {
		case fccVP8X, fccVP8, fccVP8L:
			if w, h, err := webpDimensions(chunkID, b); err == nil {
				e.setImageConfig(w, h)
			}
		case fccEXIF:
			// Some writers keep the JPEG APP1 identifier.
			if err := e.decodeExif(bytes.TrimPrefix(b, markerExif)); err != nil {
				return err
			}
		case fccXMP:
			decodeXMP(b, e.md, nil)
		case fccICCP:
			decodeICC(NewBytesReader(b), e.md, nil)
		}
	}
}

// webpDimensions reads the canvas or frame size from a VP8X, VP8 or VP8L chunk.
func webpDimensions(id riff.FourCC, b []byte) (int, int, error) {
	switch id {
	case fccVP8X:
		if len(b) < 10 {
			return 0, 0, fmt.Errorf("VP8X chunk too short")
		}
		// 24 bit canvas width and height minus one.
		w := int(b[4]) | int(b[5])<<8 | int(b[6])<<16
		h := int(b[7]) | int(b[8])<<8 | int(b[9])<<16
		return w + 1, h + 1, nil
	case fccVP8:
		// Frame tag, start code and 14 bit dimensions.
		if len(b) < 10 || b[3] != 0x9d || b[4] != 0x01 || b[5] != 0x2a {
			return 0, 0, fmt.Errorf("invalid VP8 frame header")
		}
		w := int(binary.LittleEndian.Uint16(b[6:]) & 0x3fff)
		h := int(binary.LittleEndian.Uint16(b[8:]) & 0x3fff)
		return w, h, nil
	case fccVP8L:
		if len(b) < 5 || b[0] != 0x2f {
			return 0, 0, fmt.Errorf("invalid VP8L header")
		}
		bits := binary.LittleEndian.Uint32(b[1:])
		w := int(bits&0x3fff) + 1
		h := int((bits>>14)&0x3fff) + 1
		return w, h, nil
	}
	return 0, 0, fmt.Errorf("no dimensions in %s chunk", fourCC(id))
}
