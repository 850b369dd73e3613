// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const iptcMarker = 0x1c

const (
	characterSetUTF8     = "UTF-8"
	characterSetISO88591 = "ISO-8859-1"
)

// decodeIPTC decodes the IPTC records in b into a new IPTC directory.
// Records are delimited by 0x1C. Decoding stops at the first malformed record,
// which is recorded as a directory error.
func decodeIPTC(b []byte, md *Metadata, parent *Directory) {
	d := NewDirectory(DirIPTC)
	if parent != nil {
		d.SetParent(parent)
	}
	md.Add(d)

	dec := &metaDecoderIPTC{
		s:      NewSequentialReader(bytes.NewReader(b)),
		d:      d,
		length: int64(len(b)),
	}
	dec.decode()
}

type metaDecoderIPTC struct {
	s      *SequentialReader
	d      *Directory
	length int64

	charset encoding.Encoding
}

func (e *metaDecoderIPTC) decode() {
	for e.s.Position() < e.length {
		marker, err := e.s.Uint8()
		if err != nil {
			e.d.AddError("Unable to read starting byte of IPTC tag")
			return
		}
		if marker != iptcMarker {
			// A single trailing byte is common and not worth an error.
			if e.s.Position() != e.length {
				e.d.AddError(fmt.Sprintf("Invalid IPTC tag marker at offset %d. Expected '0x%x' but got '0x%x'.", e.s.Position()-1, iptcMarker, marker))
			}
			return
		}
		if e.s.Position()+4 > e.length {
			e.d.AddError("Too few bytes remain for a valid IPTC tag")
			return
		}

		record, dataset, size, err := e.readHeader()
		if err != nil {
			e.d.AddError("IPTC data segment ended mid-way through tag descriptor")
			return
		}
		if e.s.Position()+int64(size) > e.length {
			e.d.AddError("Data for tag extends beyond end of IPTC segment")
			return
		}
		if err := e.decodeRecord(int(record)<<8|int(dataset), size); err != nil {
			e.d.AddError("Error processing IPTC tag")
			return
		}
	}
}

func (e *metaDecoderIPTC) readHeader() (record, dataset uint8, size int, err error) {
	if record, err = e.s.Uint8(); err != nil {
		return
	}
	if dataset, err = e.s.Uint8(); err != nil {
		return
	}
	var n uint16
	if n, err = e.s.Uint16(); err != nil {
		return
	}
	size = int(n)
	if n > 0x7fff {
		// Extended dataset.
		var low uint16
		if low, err = e.s.Uint16(); err != nil {
			return
		}
		size = int(n&0x7fff)<<16 | int(low)
	}
	return
}

func (e *metaDecoderIPTC) decodeRecord(id, size int) error {
	d := e.d
	if size == 0 {
		d.Set(id, "")
		return nil
	}

	field, known := iptcFields[id]
	if !known {
		field = iptcField{name: fmt.Sprintf("Unknown tag (0x%04x)", id), format: "string"}
	}

	b, err := e.s.Bytes(size)
	if err != nil {
		return err
	}

	if id == iptcTagCodedCharacterSet {
		name := resolveCodedCharacterSet(b)
		if name == "" {
			name = string(b)
		}
		e.charset = iptcCharset(name)
		d.Set(id, name)
		return nil
	}

	switch field.format {
	case "short":
		if size >= 2 {
			d.Set(id, int(b[0])<<8|int(b[1]))
			return nil
		}
	case "byte":
		d.Set(id, int(b[0]))
		return nil
	case "bytes":
		d.Set(id, b)
		return nil
	}

	sv := StringValue{Bytes: bytes.TrimSpace(trimBytesNulls(b)), Charset: e.charset}

	if field.repeatable || d.Has(id) {
		var values []string
		if v, ok := d.Object(id); ok {
			switch vv := v.(type) {
			case []string:
				values = vv
			default:
				values = []string{formatValue(vv)}
			}
		}
		d.Set(id, append(values, sv.String()))
		return nil
	}

	d.Set(id, sv)
	return nil
}

func iptcCharset(name string) encoding.Encoding {
	switch name {
	case characterSetUTF8:
		return unicode.UTF8
	case characterSetISO88591:
		return charmap.ISO8859_1
	}
	return nil
}

// resolveCodedCharacterSet resolves the ISO 2022 escape sequence in the IPTC
// CodedCharacterSet record to either UTF-8 or ISO-8859-1, or an empty string
// if it cannot be resolved.
func resolveCodedCharacterSet(b []byte) string {
	const (
		esc           = 0x1B
		percent       = 0x25
		latinCapitalG = 0x47
		dot           = 0x2E
		latinCapitalA = 0x41
		minus         = 0x2D
	)

	if len(b) > 2 && b[0] == esc && b[1] == percent && b[2] == latinCapitalG {
		return characterSetUTF8
	}

	if len(b) > 2 && b[0] == esc && (b[1] == dot || b[1] == minus) && b[2] == latinCapitalA {
		return characterSetISO88591
	}

	if len(b) > 4 && b[0] == esc && (b[1] == dot || b[2] == dot || b[3] == dot) && b[4] == latinCapitalA {
		return characterSetISO88591
	}

	return ""
}

// iptcDate normalizes an IPTC date to the Exif layout.
func iptcDate(s string) string {
	s = strings.TrimSpace(s)
	// 20211020 => 2021:10:20
	if len(s) == 8 {
		return fmt.Sprintf("%s:%s:%s", s[:4], s[4:6], s[6:])
	}
	// 2015-01-22 => 2015:01:22
	if len(s) == 10 {
		return fmt.Sprintf("%s:%s:%s", s[:4], s[5:7], s[8:])
	}
	return s
}

// iptcTime normalizes an IPTC time, keeping any zone offset.
func iptcTime(s string) string {
	s = strings.TrimSpace(s)
	// 124633 => 12:46:33
	if len(s) == 6 {
		return fmt.Sprintf("%s:%s:%s", s[:2], s[2:4], s[4:])
	}
	// 130444+1000 => 13:04:44+10:00
	if len(s) == 11 {
		return fmt.Sprintf("%s:%s:%s%s:%s", s[:2], s[2:4], s[4:6], s[6:9], s[9:])
	}
	return s
}
