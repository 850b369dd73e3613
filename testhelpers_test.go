// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"encoding/binary"
	"math"
)

// tiffEntry is one IFD entry with its value encoded in the byte order of
// the builder that created it.
type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// tiffBuilder assembles TIFF data for tests. IFDs are appended, so
// sub IFDs must be added before the IFD pointing to them.
// All offsets are relative to the start of the TIFF header.
type tiffBuilder struct {
	order binary.ByteOrder
	buf   []byte
}

func newTIFFBuilder(order binary.ByteOrder) *tiffBuilder {
	b := &tiffBuilder{order: order, buf: make([]byte, 8)}
	if order == binary.BigEndian {
		copy(b.buf, "MM")
	} else {
		copy(b.buf, "II")
	}
	order.PutUint16(b.buf[2:], markerTIFF)
	order.PutUint32(b.buf[4:], 8)
	return b
}

func (b *tiffBuilder) setMarker(marker uint16) {
	b.order.PutUint16(b.buf[2:], marker)
}

func (b *tiffBuilder) setFirstIFD(offset uint32) {
	b.order.PutUint32(b.buf[4:], offset)
}

// setNext patches the next IFD pointer of the IFD at ifd.
func (b *tiffBuilder) setNext(ifd, next uint32) {
	n := b.order.Uint16(b.buf[ifd:])
	b.order.PutUint32(b.buf[ifd+2+12*uint32(n):], next)
}

// addIFD appends an IFD followed by its out of line values and returns its offset.
func (b *tiffBuilder) addIFD(next uint32, entries ...tiffEntry) uint32 {
	offset := uint32(len(b.buf))
	n := len(entries)
	ifd := make([]byte, 2+12*n+4)
	dataOffset := offset + uint32(len(ifd))
	var data []byte

	b.order.PutUint16(ifd, uint16(n))
	for i, e := range entries {
		p := ifd[2+12*i:]
		b.order.PutUint16(p, e.tag)
		b.order.PutUint16(p[2:], e.typ)
		b.order.PutUint32(p[4:], e.count)
		if len(e.data) <= 4 {
			copy(p[8:12], e.data)
			continue
		}
		b.order.PutUint32(p[8:], dataOffset+uint32(len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	b.order.PutUint32(ifd[2+12*n:], next)

	b.buf = append(b.buf, ifd...)
	b.buf = append(b.buf, data...)
	return offset
}

// addRaw appends p and returns its offset.
func (b *tiffBuilder) addRaw(p []byte) uint32 {
	offset := uint32(len(b.buf))
	b.buf = append(b.buf, p...)
	return offset
}

func (b *tiffBuilder) bytes() []byte {
	return bytes.Clone(b.buf)
}

func (b *tiffBuilder) entry(tag, typ uint16, count uint32, data []byte) tiffEntry {
	return tiffEntry{tag: tag, typ: typ, count: count, data: data}
}

func (b *tiffBuilder) ascii(tag uint16, s string) tiffEntry {
	data := append([]byte(s), 0)
	return b.entry(tag, uint16(typeUnsignedAscii), uint32(len(data)), data)
}

func (b *tiffBuilder) undefined(tag uint16, data []byte) tiffEntry {
	return b.entry(tag, uint16(typeUndef), uint32(len(data)), data)
}

func (b *tiffBuilder) byteValues(tag uint16, vals ...byte) tiffEntry {
	return b.entry(tag, uint16(typeUnsignedByte), uint32(len(vals)), vals)
}

func (b *tiffBuilder) short(tag uint16, vals ...uint16) tiffEntry {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		b.order.PutUint16(data[2*i:], v)
	}
	return b.entry(tag, uint16(typeUnsignedShort), uint32(len(vals)), data)
}

func (b *tiffBuilder) long(tag uint16, vals ...uint32) tiffEntry {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(data[4*i:], v)
	}
	return b.entry(tag, uint16(typeUnsignedLong), uint32(len(vals)), data)
}

func (b *tiffBuilder) slong(tag uint16, v int32) tiffEntry {
	data := make([]byte, 4)
	b.order.PutUint32(data, uint32(v))
	return b.entry(tag, uint16(typeSignedLong), 1, data)
}

// rational takes numerator and denominator pairs.
func (b *tiffBuilder) rational(tag uint16, vals ...uint32) tiffEntry {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(data[4*i:], v)
	}
	return b.entry(tag, uint16(typeUnsignedRat), uint32(len(vals)/2), data)
}

func (b *tiffBuilder) double(tag uint16, v float64) tiffEntry {
	data := make([]byte, 8)
	b.order.PutUint64(data, math.Float64bits(v))
	return b.entry(tag, uint16(typeSignedDouble), 1, data)
}

// newTestExif returns Exif data with IFD0, an Exif sub IFD, GPS and a thumbnail IFD.
func newTestExif(order binary.ByteOrder) []byte {
	b := newTIFFBuilder(order)
	thumb := b.addIFD(0,
		b.short(0x0103, 6),
		b.long(0x0201, 0),
	)
	exif := b.addIFD(0,
		b.rational(TagExposureTime, 1, 250),
		b.rational(TagFNumber, 28, 10),
		b.ascii(TagDateTimeOriginal, "2021:08:07 12:13:14"),
		b.long(TagExifImageWidth, 4000),
		b.long(TagExifImageHeight, 3000),
	)
	gps := b.addIFD(0,
		b.ascii(TagGPSLatitudeRef, "N"),
		b.rational(TagGPSLatitude, 59, 1, 55, 1, 0, 1),
		b.ascii(TagGPSLongitudeRef, "E"),
		b.rational(TagGPSLongitude, 10, 1, 45, 1, 0, 1),
	)
	ifd0 := b.addIFD(thumb,
		b.ascii(TagMake, "Test Make"),
		b.ascii(TagModel, "Test Model"),
		b.short(TagOrientation, 1),
		b.ascii(TagDateTime, "2021:08:07 12:13:14"),
		b.long(TagExifSubIFDOffset, exif),
		b.long(TagGPSInfoOffset, gps),
	)
	b.setFirstIFD(ifd0)
	return b.bytes()
}

// jpegSegment returns a JPEG marker segment with the length prefix.
func jpegSegment(marker uint16, payload ...[]byte) []byte {
	data := bytes.Join(payload, nil)
	b := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint16(b, marker)
	binary.BigEndian.PutUint16(b[2:], uint16(len(data)+2))
	return append(b, data...)
}

// newTestJPEG wraps the segments in SOI, a SOF0 for width x height, SOS and EOI.
func newTestJPEG(width, height int, segments ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	for _, s := range segments {
		buf.Write(s)
	}
	sof := []byte{8, byte(height >> 8), byte(height), byte(width >> 8), byte(width), 1, 1, 0x11, 0}
	buf.Write(jpegSegment(0xffc0, sof))
	buf.Write(jpegSegment(0xffda, []byte{1, 1, 0, 0, 0x3f, 0}))
	buf.Write([]byte{0x12, 0x34, 0xff, 0xd9})
	return buf.Bytes()
}

const testXMP = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmp:CreatorTool="Test Tool"
    xmp:Rating="4"
    xmp:CreateDate="2020-01-02T03:04:05">
   <dc:subject>
    <rdf:Bag>
     <rdf:li>one</rdf:li>
     <rdf:li>two</rdf:li>
    </rdf:Bag>
   </dc:subject>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

// newTestIPTC returns an IPTC stream with a record version, an object name and two keywords.
func newTestIPTC() []byte {
	var buf bytes.Buffer
	ds := func(record, tag byte, data []byte) {
		buf.Write([]byte{iptcMarker, record, tag, byte(len(data) >> 8), byte(len(data))})
		buf.Write(data)
	}
	ds(2, 0, []byte{0, 4})
	ds(2, 5, []byte("The Object"))
	ds(2, 25, []byte("one"))
	ds(2, 25, []byte("two"))
	return buf.Bytes()
}

// newTestICC returns a minimal ICC profile with a header and one tag.
func newTestICC() []byte {
	const size = 128 + 4 + 12 + 12
	b := make([]byte, size)
	be := binary.BigEndian
	be.PutUint32(b[0:], size)
	copy(b[4:], "lcms")
	be.PutUint32(b[8:], 0x04300000)
	copy(b[12:], "mntr")
	copy(b[16:], "RGB ")
	copy(b[20:], "XYZ ")
	// 2019:03:04 05:06:07
	for i, v := range []uint16{2019, 3, 4, 5, 6, 7} {
		be.PutUint16(b[24+2*i:], v)
	}
	copy(b[36:], "acsp")
	copy(b[40:], "APPL")
	be.PutUint32(b[64:], 1)
	// D50 illuminant.
	be.PutUint32(b[68:], 0x0000f6d6)
	be.PutUint32(b[72:], 0x00010000)
	be.PutUint32(b[76:], 0x0000d32d)

	// Tag table with one entry pointing to 12 bytes of data.
	be.PutUint32(b[128:], 1)
	copy(b[132:], "cprt")
	be.PutUint32(b[136:], 144)
	be.PutUint32(b[140:], 12)
	copy(b[144:], "text\x00\x00\x00\x00Test")
	return b
}
