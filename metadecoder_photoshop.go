// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"fmt"
)

const (
	photoshopIPTC      = 0x0404
	photoshopICC       = 0x040F
	photoshopExif1     = 0x0422
	photoshopExif3     = 0x0423
	photoshopXMP       = 0x0424
	photoshopClipFirst = 0x07D0
	photoshopClipLast  = 0x0BB6
)

var photoshopSignatures = map[string]bool{
	"8BIM": true,
	"MeSa": true,
	"AgHg": true,
	"PHUT": true,
	"DCSR": true,
}

// decodePhotoshop decodes a sequence of Photoshop image resource blocks
// into a new Photoshop directory. Blocks carrying IPTC, XMP, ICC or Exif
// data are decoded into their own directories, parented to the Photoshop one.
func decodePhotoshop(b []byte, md *Metadata, parent *Directory, opts Options) {
	opts = opts.withDefaults()
	d := NewDirectory(DirPhotoshop)
	if parent != nil {
		d.SetParent(parent)
	}
	md.Add(d)

	if err := decodePhotoshopBlocks(b, md, d, opts); err != nil {
		d.AddError(fmt.Sprintf("Unable to read Photoshop data: %s", err))
	}
}

func decodePhotoshopBlocks(b []byte, md *Metadata, d *Directory, opts Options) error {
	s := NewSequentialReader(bytes.NewReader(b))
	length := int64(len(b))

	// Each block has at least a signature, an id, an empty name and a size.
	for s.Position()+12 <= length {
		sig, err := s.String(4, nil)
		if err != nil {
			return err
		}
		if !photoshopSignatures[sig] {
			return fmt.Errorf("invalid image resource block signature %q", sig)
		}
		id, err := s.Uint16()
		if err != nil {
			return err
		}

		// Pascal string, padded to an even size including the length byte.
		nameLen, err := s.Uint8()
		if err != nil {
			return err
		}
		if (int(nameLen)+1)%2 != 0 {
			nameLen++
		}
		if err := s.Skip(int64(nameLen)); err != nil {
			return err
		}

		size, err := s.Int32()
		if err != nil {
			return err
		}
		if size < 0 || s.Position()+int64(size) > length {
			return fmt.Errorf("resource block 0x%04X size %d exceeds the data", id, size)
		}
		data, err := s.Bytes(int(size))
		if err != nil {
			return err
		}
		if size%2 != 0 {
			if _, err := s.TrySkip(1); err != nil {
				return err
			}
		}

		if err := decodePhotoshopBlock(int(id), data, md, d, opts); err != nil {
			return err
		}
	}
	return nil
}

func decodePhotoshopBlock(id int, data []byte, md *Metadata, d *Directory, opts Options) error {
	switch {
	case id == photoshopIPTC && opts.Sources.Has(IPTC):
		decodeIPTC(data, md, d)
	case id == photoshopICC && opts.Sources.Has(ICC):
		decodeICC(NewBytesReader(data), md, d)
	case id == photoshopXMP && opts.Sources.Has(XMP):
		decodeXMP(data, md, d)
	case (id == photoshopExif1 || id == photoshopExif3) && opts.Sources.Has(EXIF):
		if err := decodeTIFF(NewBytesReader(data), 0, md, d, opts); err != nil {
			if isSourceError(err) {
				return err
			}
			d.AddError(fmt.Sprintf("Error processing Exif data in Photoshop block 0x%04X: %s", id, err))
		}
	case id >= photoshopClipFirst && id <= photoshopClipLast:
		// Clipping paths are kept as raw data.
		d.Set(id, data)
	default:
		if int64(len(data)) > opts.LimitTagSize {
			d.AddError(fmt.Sprintf("Ignored %d bytes of data for Photoshop block 0x%04X, exceeds limit of %d bytes", len(data), id, opts.LimitTagSize))
			return nil
		}
		d.Set(id, data)
	}
	return nil
}
