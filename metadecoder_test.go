// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// iptcDataset encodes one IPTC dataset.
func iptcDataset(record, tag byte, data []byte) []byte {
	b := []byte{iptcMarker, record, tag, byte(len(data) >> 8), byte(len(data))}
	return append(b, data...)
}

// photoshopBlock encodes an 8BIM image resource block with an empty name.
func photoshopBlock(id uint16, data []byte) []byte {
	b := []byte("8BIM")
	b = binary.BigEndian.AppendUint16(b, id)
	b = append(b, 0, 0)
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, data...)
	if len(data)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func TestDecodeIPTC(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodeIPTC(newTestIPTC(), md, nil)

	d := md.FirstDirectoryOfType(DirIPTC)
	c.Assert(d, qt.IsNotNil)
	c.Assert(d.Name(), qt.Equals, "IPTC")
	c.Assert(d.Errors(), qt.HasLen, 0)
	c.Assert(d.IDs(), qt.DeepEquals, []int{2<<8 | 0, 2<<8 | 5, iptcTagKeywords})

	v, _, err := d.Int(2<<8 | 0)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, 4)
	c.Assert(d.TagName(2<<8|5), qt.Equals, "ObjectName")
	s, _ := d.TagString(2<<8 | 5)
	c.Assert(s, qt.Equals, "The Object")

	keywords, _ := d.Object(iptcTagKeywords)
	c.Assert(keywords, qt.DeepEquals, []string{"one", "two"})
	s, _ = d.Description(iptcTagKeywords)
	c.Assert(s, qt.Equals, "one two")
}

func TestDecodeIPTCCharset(t *testing.T) {
	c := qt.New(t)

	var b []byte
	b = append(b, iptcDataset(1, 90, []byte{0x1b, 0x2d, 0x41})...)
	b = append(b, iptcDataset(2, 120, []byte("Caf\xe9"))...)

	md := NewMetadata()
	decodeIPTC(b, md, nil)
	d := md.FirstDirectoryOfType(DirIPTC)

	cs, _ := d.TagString(iptcTagCodedCharacterSet)
	c.Assert(cs, qt.Equals, "ISO-8859-1")
	caption, _ := d.TagString(2<<8 | 120)
	c.Assert(caption, qt.Equals, "Café")
}

func TestDecodeIPTCDateTime(t *testing.T) {
	c := qt.New(t)

	var b []byte
	b = append(b, iptcDataset(2, 55, []byte("20200102"))...)
	b = append(b, iptcDataset(2, 60, []byte("030405+0100"))...)

	md := NewMetadata()
	decodeIPTC(b, md, nil)

	tm, err := md.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm.Equal(time.Date(2020, 1, 2, 2, 4, 5, 0, time.UTC)), qt.IsTrue, qt.Commentf("%s", tm))
}

func TestDecodeIPTCErrors(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		name   string
		data   []byte
		errMsg string
	}{
		{"bad marker", append(iptcDataset(2, 5, []byte("a")), 0x99, 2, 5, 0, 0), "Invalid IPTC tag marker at offset 6. Expected '0x1c' but got '0x99'."},
		{"too few bytes", []byte{iptcMarker, 2, 5}, "Too few bytes remain for a valid IPTC tag"},
		{"truncated data", []byte{iptcMarker, 2, 5, 0, 10, 'a', 'b'}, "Data for tag extends beyond end of IPTC segment"},
	} {
		c.Run(test.name, func(c *qt.C) {
			md := NewMetadata()
			decodeIPTC(test.data, md, nil)
			d := md.FirstDirectoryOfType(DirIPTC)
			c.Assert(d.Errors(), qt.DeepEquals, []string{test.errMsg})
		})
	}

	// A single trailing byte is ignored.
	md := NewMetadata()
	decodeIPTC(append(iptcDataset(2, 5, []byte("a")), 0), md, nil)
	c.Assert(md.HasErrors(), qt.IsFalse)
}

func TestDecodeXMP(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodeXMP([]byte(testXMP), md, nil)

	d := md.FirstDirectoryOfType(DirXMP)
	c.Assert(d, qt.IsNotNil)
	c.Assert(d.Errors(), qt.HasLen, 0)

	packet, _ := d.TagString(tagXMPPacket)
	c.Assert(packet, qt.Equals, testXMP)
	c.Assert(d.TagName(tagXMPPacket), qt.Equals, "XMPValue")

	props := d.XMPProperties()
	c.Assert(props["CreatorTool"], qt.Equals, "Test Tool")
	c.Assert(props["Rating"], qt.Equals, "4")
	c.Assert(props["Subject"], qt.DeepEquals, []string{"one", "two"})
	_, found := props["About"]
	c.Assert(found, qt.IsFalse)

	tm, err := md.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm.Equal(time.Date(2020, 1, 2, 3, 4, 5, 0, time.Local)), qt.IsTrue, qt.Commentf("%s", tm))
}

func TestDecodeXMPGPS(t *testing.T) {
	c := qt.New(t)

	const xmp = `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:exif="http://ns.adobe.com/exif/1.0/"
    exif:GPSLatitude="26,34.951N"
    exif:GPSLongitude="80.2002W"
    exif:DateTimeOriginal="2019-05-06T07:08:09+02:00"/>
 </rdf:RDF>
</x:xmpmeta>`

	md := NewMetadata()
	decodeXMP([]byte(xmp), md, nil)

	lat, long, ok := md.LatLong()
	c.Assert(ok, qt.IsTrue)
	c.Assert(math.Abs(lat-26.582516666) < 1e-8, qt.IsTrue, qt.Commentf("%v", lat))
	c.Assert(long, qt.Equals, -80.2002)

	tm, err := md.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm.Equal(time.Date(2019, 5, 6, 5, 8, 9, 0, time.UTC)), qt.IsTrue, qt.Commentf("%s", tm))
}

func TestDecodeXMPInvalid(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodeXMP([]byte("<x:xmpmeta><rdf:RDF>"), md, nil)

	d := md.FirstDirectoryOfType(DirXMP)
	c.Assert(d.Errors(), qt.HasLen, 1)
	c.Assert(d.Errors()[0], qt.Matches, "Error processing XMP data: .*")
	// The raw packet is kept.
	c.Assert(d.Has(tagXMPPacket), qt.IsTrue)
	c.Assert(d.XMPProperties(), qt.HasLen, 0)
}

func TestDecodeICC(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodeICC(NewBytesReader(newTestICC()), md, nil)

	d := md.FirstDirectoryOfType(DirICC)
	c.Assert(d, qt.IsNotNil)
	c.Assert(d.Name(), qt.Equals, "ICC Profile")
	c.Assert(d.Errors(), qt.HasLen, 0)

	desc := func(id int) string {
		c.Helper()
		s, ok := d.Description(id)
		c.Assert(ok, qt.IsTrue, qt.Commentf("tag %d", id))
		return s
	}

	c.Assert(desc(iccProfileByteCount), qt.Equals, "156")
	c.Assert(desc(iccCMMType), qt.Equals, "lcms")
	c.Assert(desc(iccProfileVersion), qt.Equals, "4.3.0")
	c.Assert(desc(iccProfileClass), qt.Equals, "mntr")
	c.Assert(desc(iccColorSpace), qt.Equals, "RGB ")
	c.Assert(desc(iccProfileDateTime), qt.Equals, "2019:03:04 05:06:07")
	c.Assert(desc(iccSignature), qt.Equals, "acsp")
	c.Assert(desc(iccPlatform), qt.Equals, "Apple Computer, Inc.")
	c.Assert(desc(iccRenderingIntent), qt.Equals, "Media-Relative Colorimetric")
	c.Assert(desc(iccTagCount), qt.Equals, "1")
	c.Assert(d.TagName(iccProfileDateTime), qt.Equals, "ProfileDateTime")

	xyz, _ := d.Object(iccXYZValues)
	c.Assert(xyz, qt.DeepEquals, []float32{float32(0xf6d6) / 65536, 1, float32(0xd32d) / 65536})

	// Zero values are not stored.
	c.Assert(d.Has(iccCMMFlags), qt.IsFalse)
	c.Assert(d.Has(iccDeviceMake), qt.IsFalse)

	cprt, _, err := d.Bytes(int(binary.BigEndian.Uint32([]byte("cprt"))))
	c.Assert(err, qt.IsNil)
	c.Assert(string(cprt), qt.Equals, "text\x00\x00\x00\x00Test")
}

func TestDecodeICCTruncated(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodeICC(NewBytesReader(newTestICC()[:100]), md, nil)

	d := md.FirstDirectoryOfType(DirICC)
	c.Assert(d.Errors(), qt.HasLen, 1)
	c.Assert(d.Errors()[0], qt.Matches, "Exception reading ICC profile: attempt to read from beyond end.*")
	// Values read before the failure are kept.
	c.Assert(d.Has(iccCMMType), qt.IsTrue)
}

func TestDecodeICCInvalidDate(t *testing.T) {
	c := qt.New(t)

	b := newTestICC()
	binary.BigEndian.PutUint16(b[26:], 13)

	md := NewMetadata()
	decodeICC(NewBytesReader(b), md, nil)

	d := md.FirstDirectoryOfType(DirICC)
	c.Assert(d.Errors(), qt.DeepEquals, []string{"ICC data describes an invalid date/time: year=2019 month=13 day=4 hour=5 minute=6 second=7"})
	c.Assert(d.Has(iccProfileDateTime), qt.IsFalse)
	// Decoding continues after the date.
	c.Assert(d.Has(iccTagCount), qt.IsTrue)
}

func newTestPhotoshop() []byte {
	var buf bytes.Buffer
	buf.Write(photoshopBlock(0x03ed, []byte{0, 72, 0, 0, 0, 1, 0, 1}))
	buf.Write(photoshopBlock(photoshopIPTC, newTestIPTC()))
	buf.Write(photoshopBlock(photoshopXMP, []byte(testXMP)))
	buf.Write(photoshopBlock(photoshopICC, newTestICC()))
	buf.Write(photoshopBlock(photoshopExif1, newTestExif(binary.LittleEndian)))
	buf.Write(photoshopBlock(0x07d0, []byte{1, 2, 3}))
	return buf.Bytes()
}

func TestDecodePhotoshop(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodePhotoshop(newTestPhotoshop(), md, nil, Options{})

	c.Assert(directoryNames(md), qt.DeepEquals, []string{
		"Photoshop", "IPTC", "XMP", "ICC Profile", "Exif IFD0", "Exif SubIFD", "GPS", "Exif Thumbnail",
	})
	c.Assert(md.HasErrors(), qt.IsFalse, qt.Commentf("%v", md.Errors()))

	ps := md.FirstDirectoryOfType(DirPhotoshop)
	for _, d := range md.Directories()[1:5] {
		c.Assert(d.Parent(), qt.Equals, ps)
	}
	c.Assert(ps.IDs(), qt.DeepEquals, []int{0x03ed, 0x07d0})
	c.Assert(ps.TagName(0x03ed), qt.Equals, "ResolutionInfo")
	clip, _, _ := ps.Bytes(0x07d0)
	c.Assert(clip, qt.DeepEquals, []byte{1, 2, 3})

	s, _ := md.FirstDirectoryOfType(DirIFD0).TagString(TagMake)
	c.Assert(s, qt.Equals, "Test Make")
	kw, _ := md.FirstDirectoryOfType(DirIPTC).Object(iptcTagKeywords)
	c.Assert(kw, qt.DeepEquals, []string{"one", "two"})
}

func TestDecodePhotoshopSources(t *testing.T) {
	c := qt.New(t)

	md := NewMetadata()
	decodePhotoshop(newTestPhotoshop(), md, nil, Options{Sources: XMP})

	c.Assert(directoryNames(md), qt.DeepEquals, []string{"Photoshop", "XMP"})
	// Blocks for disabled sources are kept raw.
	ps := md.FirstDirectoryOfType(DirPhotoshop)
	c.Assert(ps.Has(photoshopIPTC), qt.IsTrue)
	c.Assert(ps.Has(photoshopXMP), qt.IsFalse)
}

func TestDecodePhotoshopErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("signature", func(c *qt.C) {
		b := photoshopBlock(0x0406, []byte{1, 2})
		copy(b, "XXXX")
		md := NewMetadata()
		decodePhotoshop(b, md, nil, Options{})
		c.Assert(md.Errors(), qt.DeepEquals, []string{`Photoshop: Unable to read Photoshop data: invalid image resource block signature "XXXX"`})
	})

	c.Run("size", func(c *qt.C) {
		b := photoshopBlock(0x0406, []byte{1, 2})
		binary.BigEndian.PutUint32(b[8:], 100)
		md := NewMetadata()
		decodePhotoshop(b, md, nil, Options{})
		c.Assert(md.Errors(), qt.DeepEquals, []string{"Photoshop: Unable to read Photoshop data: resource block 0x0406 size 100 exceeds the data"})
	})

	c.Run("limit", func(c *qt.C) {
		b := photoshopBlock(0x0406, make([]byte, 20))
		md := NewMetadata()
		decodePhotoshop(b, md, nil, Options{LimitTagSize: 10})
		c.Assert(md.Errors(), qt.DeepEquals, []string{"Photoshop: Ignored 20 bytes of data for Photoshop block 0x0406, exceeds limit of 10 bytes"})
	})

	c.Run("exif", func(c *qt.C) {
		b := photoshopBlock(photoshopExif3, []byte("not a tiff header"))
		md := NewMetadata()
		decodePhotoshop(b, md, nil, Options{})
		c.Assert(md.Errors(), qt.HasLen, 1)
		c.Assert(md.Errors()[0], qt.Matches, "Photoshop: Error processing Exif data in Photoshop block 0x0423: .*")
	})
}

// newTestEmbeddedTIFF returns TIFF data with IPTC, XMP, ICC and Photoshop
// blocks in IFD0.
func newTestEmbeddedTIFF(order binary.ByteOrder) []byte {
	b := newTIFFBuilder(order)
	ifd0 := b.addIFD(0,
		b.ascii(TagMake, "Embedded"),
		b.byteValues(TagApplicationNotes, []byte(testXMP)...),
		b.long(TagIPTCNAA, 0),
		b.undefined(TagPhotoshopSettings, photoshopBlock(0x0406, []byte{0, 12})),
		b.undefined(TagInterColorProfile, newTestICC()),
	)
	b.setFirstIFD(ifd0)

	// Adobe stores IPTC as longs, the urgency record makes it 44 bytes.
	iptc := append(newTestIPTC(), iptcDataset(2, 10, []byte{5})...)
	offset := b.addRaw(iptc)
	// Patch the IPTC entry, the third in IFD0.
	e := ifd0 + 2 + 12*2
	order.PutUint32(b.buf[e+4:], uint32(len(iptc)/4))
	order.PutUint32(b.buf[e+8:], offset)
	return b.bytes()
}

func TestWalkTIFFEmbedded(t *testing.T) {
	c := qt.New(t)

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		c.Run(order.String(), func(c *qt.C) {
			md, err := decodeTestTIFF(c, newTestEmbeddedTIFF(order), Options{})
			c.Assert(err, qt.IsNil)
			c.Assert(md.HasErrors(), qt.IsFalse, qt.Commentf("%v", md.Errors()))
			c.Assert(directoryNames(md), qt.DeepEquals, []string{"Exif IFD0", "XMP", "IPTC", "Photoshop", "ICC Profile"})

			ifd0 := md.FirstDirectoryOfType(DirIFD0)
			c.Assert(ifd0.IDs(), qt.DeepEquals, []int{TagMake})
			for _, d := range md.Directories()[1:] {
				c.Assert(d.Parent(), qt.Equals, ifd0)
			}

			name, _ := md.FirstDirectoryOfType(DirIPTC).TagString(2<<8 | 5)
			c.Assert(name, qt.Equals, "The Object")
			c.Assert(md.FirstDirectoryOfType(DirXMP).XMPProperties()["CreatorTool"], qt.Equals, "Test Tool")
			q, _, _ := md.FirstDirectoryOfType(DirPhotoshop).Bytes(0x0406)
			c.Assert(q, qt.DeepEquals, []byte{0, 12})
		})
	}
}

func TestWalkTIFFEmbeddedSources(t *testing.T) {
	c := qt.New(t)

	md, err := decodeTestTIFF(c, newTestEmbeddedTIFF(binary.BigEndian), Options{Sources: EXIF | ICC})
	c.Assert(err, qt.IsNil)
	// The Photoshop directory is always decoded, its blocks are gated.
	c.Assert(directoryNames(md), qt.DeepEquals, []string{"Exif IFD0", "Photoshop", "ICC Profile"})
	c.Assert(md.FirstDirectoryOfType(DirIFD0).IDs(), qt.DeepEquals, []int{TagMake})
}
