// Copyright 2026 Toni Melisma
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"encoding/binary"
	"math"
)

// ISOBMFF box and item types used in HEIF/AVIF containers.
var (
	fccFtyp = fourCC{'f', 't', 'y', 'p'}
	fccMeta = fourCC{'m', 'e', 't', 'a'}
	fccIinf = fourCC{'i', 'i', 'n', 'f'}
	fccInfe = fourCC{'i', 'n', 'f', 'e'}
	fccIloc = fourCC{'i', 'l', 'o', 'c'}
	fccIprp = fourCC{'i', 'p', 'r', 'p'}
	fccIpco = fourCC{'i', 'p', 'c', 'o'}
	fccIpma = fourCC{'i', 'p', 'm', 'a'}
	fccIspe = fourCC{'i', 's', 'p', 'e'}
	fccIrot = fourCC{'i', 'r', 'o', 't'}
	fccPitm = fourCC{'p', 'i', 't', 'm'}
	fccExif = fourCC{'E', 'x', 'i', 'f'}
	fccMime = fourCC{'m', 'i', 'm', 'e'}
)

type imageDecoderHEIF struct {
	*baseDecoder

	// Item ids from iinf and pitm.
	exifItemID    uint32
	xmpItemID     uint32
	primaryItemID uint32

	// iloc entries keyed by item ID, resolved after the full meta scan
	// so that box ordering (iloc before/after iinf) doesn't matter.
	ilocEntries map[uint32]heifExtent

	// For CONFIG: ipco properties and ipma associations are collected during
	// the meta box scan and resolved afterwards, so box ordering doesn't matter.
	ipcoProps          []heifProperty
	primaryPropIndices []int // 1-based property indices from ipma
}

type heifExtent struct {
	offset, length uint64
}

type heifProperty struct {
	isIspe        bool
	isIrot        bool
	width, height uint32
	angle         uint8
}

// heifBox is an ISOBMFF box header.
type heifBox struct {
	typ fourCC
	// start is the offset of the header, payload the offset after it.
	start, payload int64
	// end is the offset after the box, math.MaxInt64 if it extends to EOF.
	end int64
}

// heifCursor reads big endian values at increasing offsets.
// The first error stops all further reads.
type heifCursor struct {
	r   Reader
	pos int64
	err error
}

func (c *heifCursor) uint8() uint8 {
	if c.err != nil {
		return 0
	}
	v, err := c.r.Uint8(int(c.pos))
	c.err = err
	c.pos++
	return v
}

func (c *heifCursor) uint16() uint16 {
	if c.err != nil {
		return 0
	}
	v, err := c.r.Uint16(int(c.pos))
	c.err = err
	c.pos += 2
	return v
}

func (c *heifCursor) uint32() uint32 {
	if c.err != nil {
		return 0
	}
	v, err := c.r.Uint32(int(c.pos))
	c.err = err
	c.pos += 4
	return v
}

func (c *heifCursor) uint64() uint64 {
	hi := c.uint32()
	return uint64(hi)<<32 | uint64(c.uint32())
}

// varUint reads n bytes as a big-endian unsigned value.
// n must be 0, 2, 4, or 8. Returns 0 for n == 0.
func (c *heifCursor) varUint(n int) uint64 {
	switch n {
	case 0:
		return 0
	case 2:
		return uint64(c.uint16())
	case 4:
		return uint64(c.uint32())
	case 8:
		return c.uint64()
	}
	if c.err == nil {
		c.err = newInvalidFormatErrorf("heif: unsupported iloc field size: %d", n)
	}
	return 0
}

func (c *heifCursor) fourCC() fourCC {
	var f fourCC
	if c.err != nil {
		return f
	}
	b, err := c.r.Bytes(int(c.pos), 4)
	c.err = err
	c.pos += 4
	copy(f[:], b)
	return f
}

// box reads the box header at the current position and leaves the cursor at its payload.
func (c *heifCursor) box() heifBox {
	b := heifBox{start: c.pos}
	size := uint64(c.uint32())
	b.typ = c.fourCC()
	if size == 1 {
		// Extended size: next 8 bytes hold the actual size.
		size = c.uint64()
	}
	b.payload = c.pos
	switch {
	case size == 0:
		b.end = math.MaxInt64
	case size > math.MaxInt32 || int64(size) < b.payload-b.start:
		if c.err == nil {
			c.err = newInvalidFormatErrorf("heif: invalid size %d for box %s", size, b.typ)
		}
	default:
		b.end = b.start + int64(size)
	}
	return b
}

func (e *imageDecoderHEIF) decode() error {
	c := &heifCursor{r: e.r}

	// Step 1: Read and validate the ftyp box.
	ftyp := c.box()
	if c.err != nil || ftyp.typ != fccFtyp {
		return newInvalidFormatErrorf("heif: missing ftyp box")
	}
	if ftyp.end == math.MaxInt64 {
		return nil
	}
	c.pos = ftyp.end

	// Step 2: Scan top-level boxes for the meta box.
	var meta heifBox
	for {
		b := c.box()
		if c.err != nil {
			if isSourceError(c.err) {
				return c.err
			}
			return nil // No meta box found; nothing to decode.
		}
		if b.typ == fccMeta {
			meta = b
			break
		}
		if b.end == math.MaxInt64 {
			return nil // Box extends to EOF; no meta found.
		}
		c.pos = b.end
	}

	// Step 3: Parse the meta FullBox (skip 4 bytes version+flags).
	c.pos += 4

	e.ilocEntries = make(map[uint32]heifExtent)

	// Step 4: Iterate inner boxes of meta to find pitm, iinf, iloc, and iprp.
	for c.pos+8 <= meta.end {
		inner := c.box()
		if c.err != nil || inner.end == math.MaxInt64 {
			break
		}

		switch inner.typ {
		case fccPitm:
			vf := c.uint32()
			if vf>>24 == 0 {
				e.primaryItemID = uint32(c.uint16())
			} else {
				e.primaryItemID = c.uint32()
			}
		case fccIinf:
			e.readIinf(c)
		case fccIloc:
			e.readIloc(c)
		case fccIprp:
			if e.opts.Sources.Has(CONFIG) {
				e.readIprp(c, inner.end)
			}
		}
		if c.err != nil {
			break
		}

		// Always advance to the end of this inner box.
		c.pos = inner.end
	}
	if c.err != nil && isSourceError(c.err) {
		return c.err
	}
	if c.err != nil {
		e.errorf("Error reading HEIF meta box: %s", c.err)
	}

	// Step 5: Resolve CONFIG dimensions from collected ipco/ipma/pitm data.
	e.resolveImageConfig()

	// Step 6: Extract EXIF and XMP metadata using the absolute offsets from iloc.
	if loc, ok := e.ilocEntries[e.exifItemID]; ok && e.exifItemID != 0 && e.opts.Sources.Has(EXIF) {
		if err := e.handleEXIF(loc); err != nil {
			return err
		}
	}
	if loc, ok := e.ilocEntries[e.xmpItemID]; ok && e.xmpItemID != 0 && e.opts.Sources.Has(XMP) && loc.length > 0 {
		b, err := e.segment(int(loc.offset), int(loc.length))
		if err != nil {
			if isSourceError(err) {
				return err
			}
			e.errorf("Error reading HEIF XMP item: %s", err)
		} else {
			decodeXMP(b, e.md, nil)
		}
	}

	return nil
}

func (e *imageDecoderHEIF) readIinf(c *heifCursor) {
	// iinf is a FullBox: read version+flags then item count.
	vf := c.uint32()
	var count uint32
	if vf>>24 == 0 {
		count = uint32(c.uint16())
	} else {
		count = c.uint32()
	}

	// Iterate infe sub-boxes.
	for range count {
		infe := c.box()
		if c.err != nil || infe.end == math.MaxInt64 {
			return
		}
		if infe.typ == fccInfe {
			// infe is a FullBox: read version+flags.
			version := c.uint32() >> 24
			if version >= 2 {
				var itemID uint32
				if version == 2 {
					itemID = uint32(c.uint16())
				} else {
					// Version 3: 32-bit item ID.
					itemID = c.uint32()
				}
				c.pos += 2 // protectionIndex
				switch c.fourCC() {
				case fccExif:
					e.exifItemID = itemID
				case fccMime:
					e.xmpItemID = itemID
				}
			} else {
				e.opts.Warnf("heif: infe version %d not supported, skipping", version)
			}
		}
		c.pos = infe.end
	}
}

func (e *imageDecoderHEIF) readIloc(c *heifCursor) {
	// iloc is a FullBox: read version+flags.
	version := uint8(c.uint32() >> 24)

	b1 := c.uint8()
	offsetSize := int(b1 >> 4)
	lengthSize := int(b1 & 0x0f)

	b2 := c.uint8()
	baseOffsetSize := int(b2 >> 4)
	indexSize := int(b2 & 0x0f)

	var count uint32
	if version < 2 {
		count = uint32(c.uint16())
	} else {
		count = c.uint32()
	}

	for range count {
		if c.err != nil {
			return
		}
		var itemID uint32
		if version < 2 {
			itemID = uint32(c.uint16())
		} else {
			itemID = c.uint32()
		}

		var constructionMethod uint16
		if version >= 1 {
			constructionMethod = c.uint16() & 0x0f
		}
		c.pos += 2 // dataReferenceIndex

		baseOffset := c.varUint(baseOffsetSize)
		extentCount := c.uint16()

		var first heifExtent
		for j := range extentCount {
			if version >= 1 && indexSize > 0 {
				c.varUint(indexSize) // extent index, discard
			}
			off := c.varUint(offsetSize)
			length := c.varUint(lengthSize)
			if j == 0 {
				first = heifExtent{offset: baseOffset + off, length: length}
			}
		}

		// Only file-offset construction (method 0) is supported.
		if constructionMethod == 0 {
			e.ilocEntries[itemID] = first
		}
	}
}

func (e *imageDecoderHEIF) readIprp(c *heifCursor, end int64) {
	for c.pos+8 <= end {
		child := c.box()
		if c.err != nil || child.end == math.MaxInt64 {
			return
		}

		switch child.typ {
		case fccIpco:
			for c.pos+8 <= child.end {
				prop := c.box()
				if c.err != nil || prop.end == math.MaxInt64 {
					return
				}
				var p heifProperty
				switch prop.typ {
				case fccIspe:
					c.pos += 4 // version+flags
					p = heifProperty{isIspe: true, width: c.uint32(), height: c.uint32()}
				case fccIrot:
					p = heifProperty{isIrot: true, angle: c.uint8() & 0x03}
				}
				e.ipcoProps = append(e.ipcoProps, p)
				c.pos = prop.end
			}
		case fccIpma:
			// ipma maps item IDs to property indices in ipco.
			vf := c.uint32()
			version := uint8(vf >> 24)
			flags := vf & 0xFFFFFF
			entryCount := c.uint32()
			for range entryCount {
				if c.err != nil {
					return
				}
				var itemID uint32
				if version < 1 {
					itemID = uint32(c.uint16())
				} else {
					itemID = c.uint32()
				}
				assocCount := c.uint8()
				for range assocCount {
					var propIdx int
					if flags&1 != 0 {
						propIdx = int(c.uint16() & 0x7FFF)
					} else {
						propIdx = int(c.uint8() & 0x7F)
					}
					if itemID == e.primaryItemID && e.primaryItemID != 0 {
						e.primaryPropIndices = append(e.primaryPropIndices, propIdx)
					}
				}
			}
		}
		c.pos = child.end
	}
}

func (e *imageDecoderHEIF) resolveImageConfig() {
	if !e.opts.Sources.Has(CONFIG) || len(e.ipcoProps) == 0 {
		return
	}

	var width, height uint32
	var rotate bool

	// Primary path: use pitm + ipma to find the primary item's properties.
	for _, idx := range e.primaryPropIndices {
		if idx < 1 || idx > len(e.ipcoProps) {
			continue
		}
		p := e.ipcoProps[idx-1]
		if p.isIspe && p.width > 0 && p.height > 0 {
			width, height = p.width, p.height
		}
		if p.isIrot && (p.angle == 1 || p.angle == 3) {
			rotate = true
		}
	}

	if width == 0 || height == 0 {
		// Fallback: use the largest ispe (primary image is always larger
		// than tiles or thumbnails in standard HEIF/AVIF output).
		for _, p := range e.ipcoProps {
			if p.isIspe && uint64(p.width)*uint64(p.height) > uint64(width)*uint64(height) {
				width, height = p.width, p.height
			}
			if p.isIrot && (p.angle == 1 || p.angle == 3) {
				rotate = true
			}
		}
	}

	if rotate {
		width, height = height, width
	}
	e.setImageConfig(int(width), int(height))
}

// handleEXIF decodes the Exif item. HEIF Exif blobs are prefixed with a
// 4-byte big-endian offset to the TIFF header.
func (e *imageDecoderHEIF) handleEXIF(loc heifExtent) error {
	if loc.length <= 4 {
		return nil
	}
	b, err := e.segment(int(loc.offset), int(loc.length))
	if err != nil {
		if isSourceError(err) {
			return err
		}
		e.errorf("Error reading HEIF Exif item: %s", err)
		return nil
	}
	hdr := uint64(binary.BigEndian.Uint32(b))
	if hdr > loc.length-4 {
		e.errorf("Invalid HEIF Exif header offset %d", hdr)
		return nil
	}
	return e.decodeExif(b[4+hdr:])
}
