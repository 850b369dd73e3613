// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var (
	pngChunkIHDR = fourCC{'I', 'H', 'D', 'R'}
	pngChunkEXIF = fourCC{'e', 'X', 'I', 'f'}
	pngChunkITXT = fourCC{'i', 'T', 'X', 't'}
	pngChunkICCP = fourCC{'i', 'C', 'C', 'P'}
	pngChunkIEND = fourCC{'I', 'E', 'N', 'D'}
)

const pngKeywordXMP = "XML:com.adobe.xmp"

type imageDecoderPNG struct {
	*baseDecoder
}

func (e *imageDecoderPNG) decode() error {
	sig, err := e.r.Bytes(0, len(pngSignature))
	if err != nil {
		if isSourceError(err) {
			return err
		}
		return newInvalidFormatError(err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return newInvalidFormatErrorf("invalid PNG signature")
	}

	// http://ftp-osl.osuosl.org/pub/libpng/documents/pngext-1.5.0.html#C.eXIf
	// The data segment of the eXIf chunk contains an Exif profile without the
	// JPEG APP1 marker, length and "Exif" identifier.
	pos := len(pngSignature)
	for {
		length, err := e.r.Uint32(pos)
		if err != nil {
			if isSourceError(err) {
				return err
			}
			// No IEND chunk.
			return nil
		}
		typb, err := e.r.Bytes(pos+4, 4)
		if err != nil {
			if isSourceError(err) {
				return err
			}
			return nil
		}
		typ := fourCC(typb)
		if length > 0x7fffffff {
			return newInvalidFormatErrorf("invalid PNG chunk length %d for %s", length, typ)
		}
		data := pos + 8

		switch typ {
		case pngChunkIEND:
			return nil
		case pngChunkIHDR:
			if err := e.handleIHDR(data); err != nil {
				return err
			}
		case pngChunkEXIF:
			if e.opts.Sources.Has(EXIF) {
				if err := e.handleChunk(typ, data, int(length), e.decodeExif); err != nil {
					return err
				}
			}
		case pngChunkITXT:
			if e.opts.Sources.Has(XMP) {
				if err := e.handleChunk(typ, data, int(length), e.handleITXT); err != nil {
					return err
				}
			}
		case pngChunkICCP:
			if e.opts.Sources.Has(ICC) {
				if err := e.handleChunk(typ, data, int(length), e.handleICCP); err != nil {
					return err
				}
			}
		}

		// Data followed by the CRC.
		pos = data + int(length) + 4
	}
}

func (e *imageDecoderPNG) handleIHDR(offset int) error {
	if !e.opts.Sources.Has(CONFIG) {
		return nil
	}
	width, err := e.r.Uint32(offset)
	if err != nil {
		return err
	}
	height, err := e.r.Uint32(offset + 4)
	if err != nil {
		return err
	}
	e.setImageConfig(int(width), int(height))
	return nil
}

// handleChunk reads the chunk data and passes it to fn.
// Chunks that cannot be read or decoded are recorded as errors.
func (e *imageDecoderPNG) handleChunk(typ fourCC, offset, length int, fn func(b []byte) error) error {
	b, err := e.segment(offset, length)
	if err == nil {
		err = fn(b)
	}
	if err != nil {
		if isSourceError(err) {
			return err
		}
		e.errorf("Error processing PNG %s chunk: %s", typ, err)
	}
	return nil
}

func (e *imageDecoderPNG) handleITXT(b []byte) error {
	keyword, rest, ok := bytes.Cut(b, []byte{0})
	if !ok || string(keyword) != pngKeywordXMP {
		return nil
	}
	if len(rest) < 2 {
		return fmt.Errorf("iTXt chunk too short")
	}
	compressed, method := rest[0] == 1, rest[1]
	rest = rest[2:]

	// Language tag and translated keyword.
	for range 2 {
		if _, rest, ok = bytes.Cut(rest, []byte{0}); !ok {
			return fmt.Errorf("invalid iTXt chunk")
		}
	}

	if compressed {
		if method != 0 {
			return fmt.Errorf("unknown iTXt compression method %d", method)
		}
		var err error
		if rest, err = e.inflate(rest); err != nil {
			return err
		}
	}
	decodeXMP(rest, e.md, nil)
	return nil
}

func (e *imageDecoderPNG) handleICCP(b []byte) error {
	// Profile name, compression method and the compressed profile.
	_, rest, ok := bytes.Cut(b, []byte{0})
	if !ok || len(rest) < 1 {
		return fmt.Errorf("invalid iCCP chunk")
	}
	if rest[0] != 0 {
		return fmt.Errorf("unknown iCCP compression method %d", rest[0])
	}
	profile, err := e.inflate(rest[1:])
	if err != nil {
		return err
	}
	decodeICC(NewBytesReader(profile), e.md, nil)
	return nil
}

func (e *imageDecoderPNG) inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, e.opts.LimitTagSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > e.opts.LimitTagSize {
		return nil, fmt.Errorf("inflated size exceeds max %d", e.opts.LimitTagSize)
	}
	return out, nil
}
