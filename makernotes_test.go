// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

// newTestMakernoteExif returns Exif data where IFD0 has the given make and
// the Exif sub IFD holds note as its maker note.
func newTestMakernoteExif(order binary.ByteOrder, cameraMake string, note []byte) []byte {
	b := newTIFFBuilder(order)
	exif := b.addIFD(0,
		b.rational(TagExposureTime, 1, 60),
		b.undefined(TagMakernote, note),
	)
	ifd0 := b.addIFD(0,
		b.ascii(TagMake, cameraMake),
		b.long(TagExifSubIFDOffset, exif),
	)
	b.setFirstIFD(ifd0)
	return b.bytes()
}

// inlineIFD returns an IFD where all values fit in the entries.
func inlineIFD(order binary.ByteOrder, entries func(b *tiffBuilder) []tiffEntry) []byte {
	b := &tiffBuilder{order: order}
	b.addIFD(0, entries(b)...)
	return b.bytes()
}

func newTestPrintIM(order binary.ByteOrder) []byte {
	b := make([]byte, 16+2*6)
	copy(b, "PrintIM\x000300")
	order.PutUint16(b[14:], 2)
	order.PutUint16(b[16:], 0x0001)
	order.PutUint32(b[18:], 5)
	order.PutUint16(b[22:], 0x0101)
	order.PutUint32(b[24:], 0x11)
	return b
}

func TestMakernoteNikonType2(t *testing.T) {
	c := qt.New(t)

	nb := newTIFFBuilder(binary.BigEndian)
	nb.addIFD(0,
		nb.short(0x0001, 0x0210),
		nb.ascii(0x0004, "FINE  "),
		nb.undefined(TagMakernotePrintIM, newTestPrintIM(binary.BigEndian)),
	)
	note := append([]byte("Nikon\x00\x02\x10\x00\x00"), nb.bytes()...)

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		md, err := decodeTestTIFF(c, newTestMakernoteExif(order, "NIKON CORPORATION", note), Options{})
		c.Assert(err, qt.IsNil)
		c.Assert(md.HasErrors(), qt.IsFalse, qt.Commentf("%v", md.Errors()))
		c.Assert(directoryNames(md), qt.DeepEquals, []string{"Exif IFD0", "Exif SubIFD", "Nikon Makernote", "PrintIM"})

		nikon := md.FirstDirectoryOfType(DirNikon2)
		c.Assert(nikon.Parent(), qt.Equals, md.FirstDirectoryOfType(DirExifSubIFD))
		s, _ := nikon.TagString(0x0004)
		c.Assert(s, qt.Equals, "FINE  ")
		v, _, _ := nikon.Int(0x0001)
		c.Assert(v, qt.Equals, 0x0210)

		printIM := md.FirstDirectoryOfType(DirPrintIM)
		c.Assert(printIM.Parent(), qt.Equals, nikon)
		s, _ = printIM.TagString(printIMVersion)
		c.Assert(s, qt.Equals, "0300")
		v, _, _ = printIM.Int(0x0101)
		c.Assert(v, qt.Equals, 0x11)

		// The maker note is decoded, not stored.
		c.Assert(md.FirstDirectoryOfType(DirExifSubIFD).Has(TagMakernote), qt.IsFalse)
	}
}

func TestMakernoteNikonUnsupportedVersion(t *testing.T) {
	c := qt.New(t)

	note := []byte("Nikon\x00\x07\x00\x00\x00MM\x00\x2a\x00\x00\x00\x08")
	md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.BigEndian, "NIKON", note), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(md.FirstDirectoryOfType(DirExifSubIFD).Errors(), qt.DeepEquals, []string{"Unsupported Nikon makernote data ignored."})
}

func TestMakernoteOlympus(t *testing.T) {
	c := qt.New(t)

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		ifd := inlineIFD(order, func(b *tiffBuilder) []tiffEntry {
			return []tiffEntry{b.short(0x0201, 1, 2), b.short(0x0202, 3)}
		})
		note := append([]byte("OLYMP\x00\x01\x00"), ifd...)
		md, err := decodeTestTIFF(c, newTestMakernoteExif(order, "OLYMPUS OPTICAL CO.,LTD", note), Options{})
		c.Assert(err, qt.IsNil)
		olympus := md.FirstDirectoryOfType(DirOlympus)
		c.Assert(olympus, qt.IsNotNil)
		ints, _, err := olympus.IntArray(0x0201)
		c.Assert(err, qt.IsNil)
		c.Assert(ints, qt.DeepEquals, []int{1, 2})
		v, _, _ := olympus.Int(0x0202)
		c.Assert(v, qt.Equals, 3)
	}
}

func TestMakernoteByMake(t *testing.T) {
	c := qt.New(t)

	ifd := func(order binary.ByteOrder) []byte {
		return inlineIFD(order, func(b *tiffBuilder) []tiffEntry {
			return []tiffEntry{b.short(0x0001, 42)}
		})
	}

	for _, test := range []struct {
		cameraMake string
		prefix     string
		typ        DirectoryType
	}{
		{"Canon", "", DirCanon},
		{"CASIO COMPUTER CO.,LTD.", "", DirCasio1},
		{"CASIO", "QVC\x00\x00\x00", DirCasio2},
		{"PENTAX Corporation", "", DirPentax},
		{"SAMSUNG", "", DirSamsung2},
		{"", "Panasonic\x00\x00\x00", DirPanasonic},
		{"", "SIGMA\x00\x00\x00\x01\x00", DirSigma},
		{"", "SONY DSC \x00\x00\x00", DirSony1},
		{"", "SANYO\x00\x01\x00", DirSanyo},
		{"", "AOC\x00II", DirCasio2},
		{"RICOH", "Ricoh\x00\x00\x00", DirRicoh},
	} {
		c.Run(test.typ.String()+" "+test.cameraMake, func(c *qt.C) {
			order := binary.ByteOrder(binary.LittleEndian)
			if test.typ == DirRicoh {
				order = binary.BigEndian
			}
			note := append([]byte(test.prefix), ifd(order)...)
			md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.LittleEndian, test.cameraMake, note), Options{})
			c.Assert(err, qt.IsNil)
			d := md.FirstDirectoryOfType(test.typ)
			c.Assert(d, qt.IsNotNil, qt.Commentf("%v", directoryNames(md)))
			v, _, _ := d.Int(0x0001)
			c.Assert(v, qt.Equals, 42)
		})
	}
}

func TestMakernoteByteOrderRestored(t *testing.T) {
	c := qt.New(t)

	// A big endian Ricoh note inside little endian Exif, with entries read
	// after the note in both the Exif sub IFD and IFD0.
	note := append([]byte("Ricoh\x00\x00\x00"), inlineIFD(binary.BigEndian, func(b *tiffBuilder) []tiffEntry {
		return []tiffEntry{b.short(0x0001, 0x0102)}
	})...)

	b := newTIFFBuilder(binary.LittleEndian)
	exif := b.addIFD(0,
		b.undefined(TagMakernote, note),
		b.short(TagExifImageWidth, 0x0102),
	)
	ifd0 := b.addIFD(0,
		b.ascii(TagMake, "RICOH"),
		b.long(TagExifSubIFDOffset, exif),
		b.short(TagOrientation, 0x0203),
	)
	b.setFirstIFD(ifd0)

	md, err := decodeTestTIFF(c, b.bytes(), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(md.HasErrors(), qt.IsFalse, qt.Commentf("%v", md.Errors()))
	c.Assert(directoryNames(md), qt.DeepEquals, []string{"Exif IFD0", "Exif SubIFD", "Ricoh Makernote"})

	v, _, _ := md.FirstDirectoryOfType(DirRicoh).Int(0x0001)
	c.Assert(v, qt.Equals, 0x0102)
	v, _, _ = md.FirstDirectoryOfType(DirExifSubIFD).Int(TagExifImageWidth)
	c.Assert(v, qt.Equals, 0x0102)
	v, _, _ = md.FirstDirectoryOfType(DirIFD0).Int(TagOrientation)
	c.Assert(v, qt.Equals, 0x0203)
}

func TestMakernoteUnknown(t *testing.T) {
	c := qt.New(t)

	note := []byte("Some unknown maker note data")
	md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.BigEndian, "Acme", note), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(directoryNames(md), qt.DeepEquals, []string{"Exif IFD0", "Exif SubIFD"})
	b, found, err := md.FirstDirectoryOfType(DirExifSubIFD).Bytes(TagMakernote)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(b, qt.DeepEquals, note)

	// Ricoh text notes are not decoded.
	md, err = decodeTestTIFF(c, newTestMakernoteExif(binary.BigEndian, "RICOH", []byte("Rev0103;Rv0102")), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(md.FirstDirectoryOfType(DirRicoh), qt.IsNil)
	c.Assert(md.FirstDirectoryOfType(DirExifSubIFD).Has(TagMakernote), qt.IsTrue)
}

func newTestKodakNote() []byte {
	be := binary.BigEndian
	b := make([]byte, 8+108)
	copy(b, "KDK INFO")
	d := b[8:]
	copy(d[kodakModel:], "KODAK DX")
	d[kodakQuality] = 2
	be.PutUint16(d[kodakImageWidth:], 2160)
	be.PutUint16(d[kodakImageHeight:], 1440)
	be.PutUint16(d[kodakYearCreated:], 2001)
	be.PutUint16(d[kodakFNumber:], 280)
	be.PutUint32(d[kodakExposureTime:], 1000)
	be.PutUint16(d[kodakExposureCompensation:], 0xfffe)
	be.PutUint16(d[kodakISO:], 100)
	d[kodakSharpness] = 0xff
	return b
}

func TestMakernoteKodak(t *testing.T) {
	c := qt.New(t)

	md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.LittleEndian, "EASTMAN KODAK COMPANY", newTestKodakNote()), Options{})
	c.Assert(err, qt.IsNil)
	kodak := md.FirstDirectoryOfType(DirKodak)
	c.Assert(kodak, qt.IsNotNil)
	c.Assert(kodak.Errors(), qt.HasLen, 0)
	c.Assert(kodak.Parent(), qt.Equals, md.FirstDirectoryOfType(DirExifSubIFD))

	s, _ := kodak.TagString(kodakModel)
	c.Assert(s, qt.Equals, "KODAK DX")
	for id, want := range map[int]int{
		kodakQuality:              2,
		kodakImageWidth:           2160,
		kodakImageHeight:          1440,
		kodakYearCreated:          2001,
		kodakFNumber:              280,
		kodakExposureTime:         1000,
		kodakExposureCompensation: -2,
		kodakISO:                  100,
		kodakSharpness:            -1,
	} {
		v, found, err := kodak.Int(id)
		c.Assert(err, qt.IsNil)
		c.Assert(found, qt.IsTrue)
		c.Assert(v, qt.Equals, want, qt.Commentf("tag %d", id))
	}
}

func TestMakernoteKodakTruncated(t *testing.T) {
	c := qt.New(t)

	note := newTestKodakNote()[:8+20]
	md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.LittleEndian, "EASTMAN KODAK COMPANY", note), Options{})
	c.Assert(err, qt.IsNil)
	kodak := md.FirstDirectoryOfType(DirKodak)
	c.Assert(kodak.Has(kodakImageWidth), qt.IsTrue)
	c.Assert(kodak.Has(kodakISO), qt.IsFalse)
	c.Assert(kodak.Errors(), qt.HasLen, 1)
	c.Assert(kodak.Errors()[0], qt.Matches, "Error processing Kodak makernote data: .*")
}

func newTestHyperFireNote(order binary.ByteOrder, year int) []byte {
	b := make([]byte, hyperFireUserLabel+44)
	put := func(off, v int) { order.PutUint16(b[off:], uint16(v)) }
	put(hyperFireMakernoteVersion, reconyxHyperFireVersion)
	for i, v := range []int{3, 1, 2, 0x2012, 0x0517} {
		put(hyperFireFirmwareVersion+i*2, v)
	}
	put(hyperFireTriggerMode, 'M')
	put(hyperFireSequence, 1)
	put(hyperFireSequence+2, 3)
	put(hyperFireEventNumber+2, 42)
	for i, v := range []int{5, 4, 3, 2, 1, year} {
		put(hyperFireDateTimeOriginal+i*2, v)
	}
	put(hyperFireMoonPhase, 4)
	put(hyperFireAmbientTempF, 70)
	put(hyperFireAmbientTemp, 21)
	for i, r := range "H500" {
		binary.LittleEndian.PutUint16(b[hyperFireSerialNumber+i*2:], uint16(r))
	}
	put(hyperFireBatteryVoltage, 8300)
	copy(b[hyperFireUserLabel:], "CAM1")
	return b
}

func TestMakernoteReconyxHyperFire(t *testing.T) {
	c := qt.New(t)

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		md, err := decodeTestTIFF(c, newTestMakernoteExif(order, "RECONYX", newTestHyperFireNote(order, 2013)), Options{})
		c.Assert(err, qt.IsNil)
		d := md.FirstDirectoryOfType(DirReconyxHyperFire)
		c.Assert(d, qt.IsNotNil)
		c.Assert(d.Errors(), qt.HasLen, 0)

		str := func(id int) string {
			s, _ := d.TagString(id)
			return s
		}
		c.Assert(str(hyperFireFirmwareVersion), qt.Equals, "3.1.2.20120517")
		c.Assert(str(hyperFireTriggerMode), qt.Equals, "M")
		c.Assert(str(hyperFireSequence), qt.Equals, "1 3")
		c.Assert(str(hyperFireEventNumber), qt.Equals, "42")
		c.Assert(str(hyperFireDateTimeOriginal), qt.Equals, "2013: 2: 1  3: 4: 5")
		c.Assert(strings.TrimRight(str(hyperFireSerialNumber), "\x00"), qt.Equals, "H500")
		c.Assert(str(hyperFireUserLabel), qt.Equals, "CAM1")

		desc, _ := d.Description(hyperFireBatteryVoltage)
		c.Assert(desc, qt.Equals, "8.300 Volts")
		desc, _ = d.Description(hyperFireAmbientTemp)
		c.Assert(desc, qt.Equals, "21 C")
	}
}

func TestMakernoteReconyxHyperFireInvalidDate(t *testing.T) {
	c := qt.New(t)

	md, err := decodeTestTIFF(c, newTestMakernoteExif(binary.LittleEndian, "RECONYX", newTestHyperFireNote(binary.LittleEndian, 0)), Options{})
	c.Assert(err, qt.IsNil)
	d := md.FirstDirectoryOfType(DirReconyxHyperFire)
	c.Assert(d.Has(hyperFireDateTimeOriginal), qt.IsFalse)
	c.Assert(d.Errors(), qt.DeepEquals, []string{"Error processing Reconyx HyperFire makernote data: Date/Time Original 0-2-1 3:4:5 is not a valid date/time."})
	c.Assert(d.Has(hyperFireUserLabel), qt.IsTrue)
}

func TestPrintIM(t *testing.T) {
	c := qt.New(t)

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		b := newTIFFBuilder(order)
		b.addIFD(0, b.undefined(TagPrintIM, newTestPrintIM(order)))
		md, err := decodeTestTIFF(c, b.bytes(), Options{})
		c.Assert(err, qt.IsNil)
		d := md.FirstDirectoryOfType(DirPrintIM)
		c.Assert(d.Parent(), qt.Equals, md.FirstDirectoryOfType(DirIFD0))
		c.Assert(d.Errors(), qt.HasLen, 0)
		c.Assert(d.TagName(0x0001), qt.Equals, "CompressionFactor")
		v, _, _ := d.Int(0x0001)
		c.Assert(v, qt.Equals, 5)
	}
}

func TestPrintIMErrors(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "Empty PrintIM data"},
		{"short", []byte("PrintIM\x00"), "Bad PrintIM data"},
		{"header", bytes.Repeat([]byte{'x'}, 20), "Invalid PrintIM header"},
		{"size", append([]byte("PrintIM\x000300\x00\x00\x00\x40"), make([]byte, 8)...), "Bad PrintIM size"},
	} {
		c.Run(test.name, func(c *qt.C) {
			d := NewDirectory(DirPrintIM)
			b := append(test.data, make([]byte, 4)...)
			decodePrintIM(NewBytesReader(b), 0, len(test.data), d)
			c.Assert(d.Errors(), qt.DeepEquals, []string{test.want})
		})
	}
}

func TestPanasonicRawBinary(t *testing.T) {
	c := qt.New(t)

	wb := make([]byte, 8)
	for i, v := range []uint16{2, 1, 2048, 1024} {
		binary.LittleEndian.PutUint16(wb[i*2:], v)
	}

	b := newTIFFBuilder(binary.LittleEndian)
	b.setMarker(markerPanasonicRaw)
	b.addIFD(0,
		b.ascii(TagMake, "Panasonic"),
		b.undefined(TagPanasonicRawWbInfo, wb),
	)
	md, err := decodeTestTIFF(c, b.bytes(), Options{})
	c.Assert(err, qt.IsNil)
	c.Assert(directoryNames(md), qt.DeepEquals, []string{"PanasonicRaw Exif IFD0", "PanasonicRaw WbInfo"})

	d := md.FirstDirectoryOfType(DirPanasonicRawWbInfo)
	v, _ := d.Object(0)
	c.Assert(v, qt.Equals, 2)
	v, _ = d.Object(1)
	c.Assert(v, qt.Equals, 1)
	v, _ = d.Object(2)
	c.Assert(v, qt.DeepEquals, []int{2048, 1024})
	c.Assert(d.TagCount(), qt.Equals, 3)
}

func TestPanasonicRawBinarySigned(t *testing.T) {
	c := qt.New(t)

	data := make([]byte, 14*2)
	for i := range 14 {
		binary.BigEndian.PutUint16(data[i*2:], uint16(int16(i-7)))
	}
	d := NewDirectory(DirPanasonicRawDistortion)
	decodePanasonicBinary(NewBytesReader(data), 0, len(data), true, 1, d)

	c.Assert(d.Errors(), qt.HasLen, 0)
	c.Assert(d.IDs(), qt.DeepEquals, []int{2, 4, 5, 7, 8, 9, 11, 12})
	get := func(id int) any {
		v, _ := d.Object(id)
		return v
	}
	c.Assert(get(2), qt.DeepEquals, []int16{-5})
	c.Assert(get(4), qt.Equals, -3)
	c.Assert(get(5), qt.DeepEquals, []int16{-2})
	c.Assert(get(8), qt.Equals, 1)
	c.Assert(get(12), qt.DeepEquals, []int16{5})

	// The last array does not fit.
	d = NewDirectory(DirPanasonicRawWbInfo2)
	decodePanasonicBinary(NewBytesReader(make([]byte, 8)), 0, 8, false, 3, d)
	c.Assert(d.IDs(), qt.DeepEquals, []int{0, 1})
}
