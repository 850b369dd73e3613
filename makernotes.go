// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// makernoteLayout describes a maker note stored as a TIFF IFD.
type makernoteLayout struct {
	typ DirectoryType

	// Offset of the IFD from the start of the maker note.
	ifd int

	// If set, value offsets are relative to the maker note start plus base
	// and not to the TIFF header.
	relative bool
	base     int

	// Forced byte order, nil keeps the byte order of the Exif data.
	order binary.ByteOrder
}

// makernoteRule is one entry in the maker note table.
// Rules are tried in order, the first match wins.
type makernoteRule struct {
	name   string
	match  func(m *makernoteContext) bool
	layout *makernoteLayout

	// parse is used when layout is nil.
	parse func(m *makernoteContext) (bool, error)
}

var makernoteRules = []makernoteRule{
	{
		// Epson and Agfa use the Olympus format.
		name: "Olympus",
		match: func(m *makernoteContext) bool {
			return m.prefix(6) == "OLYMP\x00" || m.prefix(5) == "EPSON" || m.prefix(4) == "AGFA"
		},
		layout: &makernoteLayout{typ: DirOlympus, ifd: 8},
	},
	{
		name:   "Olympus II",
		match:  func(m *makernoteContext) bool { return m.prefix(10) == "OLYMPUS\x00II" },
		layout: &makernoteLayout{typ: DirOlympus, ifd: 12, relative: true},
	},
	{
		name:   "Minolta",
		match:  func(m *makernoteContext) bool { return hasPrefixFold(m.make, "MINOLTA") },
		layout: &makernoteLayout{typ: DirOlympus},
	},
	{
		name:  "Nikon",
		match: func(m *makernoteContext) bool { return hasPrefixFold(strings.TrimSpace(m.make), "NIKON") },
		parse: parseNikonMakernote,
	},
	{
		name: "Sony",
		match: func(m *makernoteContext) bool {
			p := m.prefix(8)
			return p == "SONY CAM" || p == "SONY DSC"
		},
		layout: &makernoteLayout{typ: DirSony1, ifd: 12},
	},
	{
		// SR2 and ARW, the IFD starts at the first byte.
		name: "Sony ARW",
		match: func(m *makernoteContext) bool {
			if !strings.HasPrefix(m.make, "SONY") {
				return false
			}
			b, err := m.r.Bytes(m.offset, 2)
			return err == nil && !bytes.Equal(b, []byte{0x01, 0x00})
		},
		layout: &makernoteLayout{typ: DirSony1},
	},
	{
		// 12 byte header, then "MM" and 6 more bytes.
		name:   "Sony Ericsson",
		match:  func(m *makernoteContext) bool { return m.prefix(12) == "SEMC MS\x00\x00\x00\x00\x00" },
		layout: &makernoteLayout{typ: DirSony6, ifd: 20, order: binary.BigEndian},
	},
	{
		name: "Sigma",
		match: func(m *makernoteContext) bool {
			p := m.prefix(8)
			return p == "SIGMA\x00\x00\x00" || p == "FOVEON\x00\x00"
		},
		layout: &makernoteLayout{typ: DirSigma, ifd: 10},
	},
	{
		name:  "Kodak",
		match: func(m *makernoteContext) bool { return m.prefix(3) == "KDK" },
		parse: parseKodakMakernote,
	},
	{
		name:   "Canon",
		match:  func(m *makernoteContext) bool { return strings.EqualFold(m.make, "Canon") },
		layout: &makernoteLayout{typ: DirCanon},
	},
	{
		name:  "Casio",
		match: func(m *makernoteContext) bool { return hasPrefixFold(m.make, "CASIO") },
		parse: func(m *makernoteContext) (bool, error) {
			if m.prefix(6) == "QVC\x00\x00\x00" {
				return m.walk(makernoteLayout{typ: DirCasio2, ifd: 6})
			}
			return m.walk(makernoteLayout{typ: DirCasio1})
		},
	},
	{
		// Also used by some Leica cameras, such as the Digilux 4.3.
		name: "Fujifilm",
		match: func(m *makernoteContext) bool {
			return m.prefix(8) == "FUJIFILM" || strings.EqualFold(m.make, "Fujifilm")
		},
		parse: parseFujifilmMakernote,
	},
	{
		name:   "Kyocera",
		match:  func(m *makernoteContext) bool { return m.prefix(7) == "KYOCERA" },
		layout: &makernoteLayout{typ: DirKyocera, ifd: 22},
	},
	{
		name:  "Leica",
		match: func(m *makernoteContext) bool { return m.prefix(5) == "LEICA" },
		parse: parseLeicaMakernote,
	},
	{
		// No next IFD pointer.
		name:   "Panasonic",
		match:  func(m *makernoteContext) bool { return m.prefix(12) == "Panasonic\x00\x00\x00" },
		layout: &makernoteLayout{typ: DirPanasonic, ifd: 12},
	},
	{
		// Casio type 2 tags, seen in the Pentax *ist D.
		name:   "Pentax AOC",
		match:  func(m *makernoteContext) bool { return m.prefix(4) == "AOC\x00" },
		layout: &makernoteLayout{typ: DirCasio2, ifd: 6, relative: true},
	},
	{
		name: "Pentax",
		match: func(m *makernoteContext) bool {
			return hasPrefixFold(m.make, "PENTAX") || hasPrefixFold(m.make, "ASAHI")
		},
		layout: &makernoteLayout{typ: DirPentax, relative: true},
	},
	{
		name:   "Sanyo",
		match:  func(m *makernoteContext) bool { return m.prefix(8) == "SANYO\x00\x01\x00" },
		layout: &makernoteLayout{typ: DirSanyo, ifd: 8, relative: true},
	},
	{
		name:  "Ricoh",
		match: func(m *makernoteContext) bool { return hasPrefixFold(m.make, "ricoh") },
		parse: parseRicohMakernote,
	},
	{
		name:   "Apple",
		match:  func(m *makernoteContext) bool { return m.prefix(10) == "Apple iOS\x00" },
		layout: &makernoteLayout{typ: DirApple, ifd: 14, relative: true, order: binary.BigEndian},
	},
	{
		name: "Reconyx HyperFire",
		match: func(m *makernoteContext) bool {
			v, err := m.r.Uint16(m.offset)
			return err == nil && v == reconyxHyperFireVersion
		},
		parse: func(m *makernoteContext) (bool, error) {
			return true, decodeReconyxHyperFire(m.r, m.offset, m.tc.AddDirectory(DirReconyxHyperFire))
		},
	},
	{
		name:  "Reconyx UltraFire",
		match: func(m *makernoteContext) bool { return strings.EqualFold(m.prefix(9), "RECONYXUF") },
		parse: func(m *makernoteContext) (bool, error) {
			return true, decodeReconyxUltraFire(m.r, m.offset, m.tc.AddDirectory(DirReconyxUltraFire))
		},
	},
	{
		// Only type 2 notes.
		name:   "Samsung",
		match:  func(m *makernoteContext) bool { return m.make == "SAMSUNG" },
		layout: &makernoteLayout{typ: DirSamsung2},
	},
}

type makernoteContext struct {
	tc     *TagContext
	r      Reader
	offset int

	// Camera make from IFD0.
	make string
}

// prefix returns the first n bytes of the maker note as a string,
// or an empty string if the maker note is shorter.
func (m *makernoteContext) prefix(n int) string {
	b, err := m.r.Bytes(m.offset, n)
	if err != nil {
		return ""
	}
	return string(b)
}

func (m *makernoteContext) walk(l makernoteLayout) (bool, error) {
	r := m.r
	if l.order != nil {
		r = r.WithByteOrder(l.order)
	}
	header := m.tc.HeaderOffset
	if l.relative {
		header = m.offset + l.base
	}
	return true, m.tc.WalkIFD(r, l.typ, m.offset+l.ifd, header)
}

// processMakernote finds the maker note format in the rules table and decodes it.
// It returns false if the format is not known, and the maker note is then
// stored as a byte slice.
func (h exifHandler) processMakernote(tc *TagContext) (bool, error) {
	m := &makernoteContext{
		tc:     tc,
		r:      tc.Reader,
		offset: tc.ValueOffset,
	}
	if ifd0 := tc.Metadata().FirstDirectoryOfType(DirIFD0); ifd0 != nil {
		m.make, _ = ifd0.TagString(TagMake)
	}

	for _, rule := range makernoteRules {
		if !rule.match(m) {
			continue
		}
		if rule.layout != nil {
			return m.walk(*rule.layout)
		}
		return rule.parse(m)
	}

	return false, nil
}

func parseNikonMakernote(m *makernoteContext) (bool, error) {
	if m.prefix(5) != "Nikon" {
		// CoolPix 775, E990 and D1, the IFD starts at the first byte.
		return m.walk(makernoteLayout{typ: DirNikon2})
	}
	version, err := m.r.Uint8(m.offset + 6)
	if err != nil {
		return false, err
	}
	switch version {
	case 1:
		return m.walk(makernoteLayout{typ: DirNikon1, ifd: 8})
	case 2:
		// Embedded TIFF header at offset 10, which may use
		// another byte order than the Exif data.
		l := makernoteLayout{typ: DirNikon2, ifd: 18, relative: true, base: 10}
		if p := m.prefix(12); len(p) == 12 {
			switch p[10:] {
			case "MM":
				l.order = binary.BigEndian
			case "II":
				l.order = binary.LittleEndian
			}
		}
		return m.walk(l)
	}
	m.tc.Errorf("Unsupported Nikon makernote data ignored.")
	return true, nil
}

// The 4 bytes after "FUJIFILM" hold the IFD offset relative to the maker note.
func parseFujifilmMakernote(m *makernoteContext) (bool, error) {
	m.r = m.r.WithByteOrder(binary.LittleEndian)
	ifd, err := m.r.Int32(m.offset + 8)
	if err != nil {
		return false, err
	}
	return m.walk(makernoteLayout{typ: DirFujifilm, ifd: int(ifd), relative: true})
}

func parseLeicaMakernote(m *makernoteContext) (bool, error) {
	m.r = m.r.WithByteOrder(binary.LittleEndian)
	switch m.prefix(8) {
	case "LEICA\x00\x01\x00", "LEICA\x00\x04\x00", "LEICA\x00\x05\x00", "LEICA\x00\x06\x00", "LEICA\x00\x07\x00":
		// X1, X2, X Vario, T and X.
		return m.walk(makernoteLayout{typ: DirLeica5, ifd: 8, relative: true})
	}
	switch m.make {
	case "Leica Camera AG":
		return m.walk(makernoteLayout{typ: DirLeica, ifd: 8})
	case "LEICA":
		return m.walk(makernoteLayout{typ: DirPanasonic, ifd: 8})
	}
	return false, nil
}

func parseRicohMakernote(m *makernoteContext) (bool, error) {
	if m.prefix(2) == "Rv" || m.prefix(3) == "Rev" {
		// Text format, not supported.
		return false, nil
	}
	if strings.EqualFold(m.prefix(5), "Ricoh") {
		return m.walk(makernoteLayout{typ: DirRicoh, ifd: 8, relative: true, order: binary.BigEndian})
	}
	return false, nil
}

func parseKodakMakernote(m *makernoteContext) (bool, error) {
	order := binary.ByteOrder(binary.LittleEndian)
	if m.prefix(8) == "KDK INFO" {
		order = binary.BigEndian
	}
	return true, decodeKodak(m.r.WithByteOrder(order), m.offset, m.tc.AddDirectory(DirKodak))
}
