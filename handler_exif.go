// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
)

const (
	markerTIFF         = 0x002a
	markerOlympusRaw   = 0x4f52
	markerOlympusRaw2  = 0x5352
	markerPanasonicRaw = 0x0055
)

type subDirectoryKey struct {
	parent DirectoryType
	tagID  int
}

// Sub IFD pointers that are only valid in a given parent.
// TagSubIFDOffset is valid in any directory and handled separately.
var exifSubDirectories = map[subDirectoryKey]DirectoryType{
	{DirIFD0, TagExifSubIFDOffset}:             DirExifSubIFD,
	{DirIFD0, TagGPSInfoOffset}:                DirGPS,
	{DirPanasonicRawIFD0, TagExifSubIFDOffset}: DirExifSubIFD,
	{DirPanasonicRawIFD0, TagGPSInfoOffset}:    DirGPS,
	{DirExifSubIFD, TagInteropOffset}:          DirInterop,
}

// Olympus stores these either as IFD pointers or as IFDs that
// begin at the tag value.
var olympusSubDirectories = map[int]DirectoryType{
	TagOlympusEquipment:       DirOlympusEquipment,
	TagOlympusCameraSettings:  DirOlympusCameraSettings,
	TagOlympusRawDevelopment:  DirOlympusRawDevelopment,
	TagOlympusRawDevelopment2: DirOlympusRawDevelopment2,
	TagOlympusImageProcessing: DirOlympusImageProcessing,
	TagOlympusFocusInfo:       DirOlympusFocusInfo,
	TagOlympusRawInfo:         DirOlympusRawInfo,
	TagOlympusMainInfo:        DirOlympus,
}

// Maker note directories where tag 0x0e00 holds PrintIM data.
var printIMMakernotes = map[DirectoryType]bool{
	DirCasio2:    true,
	DirKyocera:   true,
	DirNikon2:    true,
	DirOlympus:   true,
	DirPanasonic: true,
	DirPentax:    true,
	DirRicoh:     true,
	DirSanyo:     true,
	DirSony1:     true,
}

// exifHandler is the Handler for Exif and camera RAW files.
type exifHandler struct{}

// NewExifHandler returns the Handler used to decode Exif data,
// including camera maker notes and embedded IPTC, XMP, ICC and Photoshop blocks.
func NewExifHandler() Handler {
	return exifHandler{}
}

func (h exifHandler) ValidateMarker(marker uint16) (DirectoryType, error) {
	switch marker {
	case markerTIFF, markerOlympusRaw, markerOlympusRaw2:
		return DirIFD0, nil
	case markerPanasonicRaw:
		return DirPanasonicRawIFD0, nil
	default:
		return DirUnknown, fmt.Errorf("Unexpected TIFF marker: 0x%X", marker)
	}
}

func (h exifHandler) SubDirectory(current *Directory, tagID int) (DirectoryType, bool) {
	if tagID == TagSubIFDOffset {
		return DirExifSubIFD, true
	}
	if typ, ok := exifSubDirectories[subDirectoryKey{current.Type, tagID}]; ok {
		return typ, true
	}
	if current.Type == DirOlympus {
		typ, ok := olympusSubDirectories[tagID]
		return typ, ok
	}
	return DirUnknown, false
}

func (h exifHandler) FollowerDirectory(current *Directory) (DirectoryType, bool) {
	switch current.Type {
	case DirIFD0, DirExifImage:
		// Multi page TIFF.
		if current.Has(TagPageNumber) {
			return DirExifImage, true
		}
		return DirThumbnail, true
	case DirThumbnail:
		// The Canon EOS 7D (CR2) has three chained thumbnail IFDs.
		return DirThumbnail, true
	}
	return DirUnknown, false
}

func (h exifHandler) FormatLength(tagID, formatCode int, count int64) (int64, bool) {
	switch formatCode {
	case 13:
		// IFD pointer.
		return count * 4, true
	case 0:
		// May be claimed in ProcessTag.
		return 0, true
	}
	return 0, false
}

func (h exifHandler) ProcessTag(tc *TagContext) (bool, error) {
	d := tc.Directory
	r := tc.Reader
	sources := tc.Options().Sources

	if tc.TagID == 0 {
		if d.Has(0) {
			return false, nil
		}
		if tc.ByteCount == 0 {
			return true, nil
		}
	}

	switch {
	case tc.TagID == TagMakernote && d.Type == DirExifSubIFD:
		return h.processMakernote(tc)
	case tc.TagID == TagIPTCNAA && d.Type == DirIFD0:
		// Adobe sets type 4 for IPTC instead of 7.
		first, err := r.Uint8(tc.ValueOffset)
		if err != nil || first != iptcMarker {
			return false, nil
		}
		if !sources.Has(IPTC) {
			return true, nil
		}
		b, err := r.Bytes(tc.ValueOffset, tc.ByteCount)
		if err != nil {
			return false, err
		}
		decodeIPTC(b, tc.Metadata(), d)
		return true, nil
	case tc.TagID == TagInterColorProfile:
		if !sources.Has(ICC) {
			return true, nil
		}
		b, err := r.Bytes(tc.ValueOffset, tc.ByteCount)
		if err != nil {
			return false, err
		}
		decodeICC(NewBytesReader(b), tc.Metadata(), d)
		return true, nil
	case tc.TagID == TagPhotoshopSettings && d.Type == DirIFD0:
		b, err := r.Bytes(tc.ValueOffset, tc.ByteCount)
		if err != nil {
			return false, err
		}
		decodePhotoshop(b, tc.Metadata(), d, tc.Options())
		return true, nil
	case tc.TagID == TagApplicationNotes && d.Type == DirIFD0:
		if !sources.Has(XMP) {
			return true, nil
		}
		b, err := r.NullTerminatedBytes(tc.ValueOffset, tc.ByteCount)
		if err != nil {
			return false, err
		}
		decodeXMP(b, tc.Metadata(), d)
		return true, nil
	case tc.TagID == TagPrintIM || (tc.TagID == TagMakernotePrintIM && printIMMakernotes[d.Type]):
		decodePrintIM(r, tc.ValueOffset, tc.ByteCount, tc.AddDirectory(DirPrintIM))
		return true, nil
	}

	if d.Type == DirOlympus {
		if typ, ok := olympusSubDirectories[tc.TagID]; ok {
			return true, tc.WalkIFD(r, typ, tc.ValueOffset, tc.HeaderOffset)
		}
	}

	if d.Type == DirPanasonicRawIFD0 {
		switch tc.TagID {
		case TagPanasonicRawWbInfo:
			decodePanasonicBinary(r, tc.ValueOffset, tc.ByteCount, false, 2, tc.AddDirectory(DirPanasonicRawWbInfo))
			return true, nil
		case TagPanasonicRawWbInfo2:
			decodePanasonicBinary(r, tc.ValueOffset, tc.ByteCount, false, 3, tc.AddDirectory(DirPanasonicRawWbInfo2))
			return true, nil
		case TagPanasonicRawDistortion:
			decodePanasonicBinary(r, tc.ValueOffset, tc.ByteCount, true, 1, tc.AddDirectory(DirPanasonicRawDistortion))
			return true, nil
		case TagPanasonicRawJpgFromRaw:
			return h.processJpgFromRaw(tc)
		}
	}

	return false, nil
}

// processJpgFromRaw decodes the JPEG preview embedded in Panasonic RAW files.
func (h exifHandler) processJpgFromRaw(tc *TagContext) (bool, error) {
	b, err := tc.Reader.Bytes(tc.ValueOffset, tc.ByteCount)
	if err != nil {
		return false, err
	}
	embedded := NewMetadata()
	if err := decodeJPEG(NewBytesReader(b), embedded, tc.Options()); err != nil {
		tc.Errorf("Error processing JpgFromRaw: %s", err)
		return false, nil
	}
	for _, d := range embedded.Directories() {
		if d.Parent() == nil {
			d.SetParent(tc.Directory)
		}
		tc.Metadata().Add(d)
	}
	return true, nil
}

// DecodeTIFF decodes the TIFF structure at headerOffset in r with the Exif handler.
func DecodeTIFF(r Reader, headerOffset int, md *Metadata, parent *Directory) error {
	return decodeTIFF(r, headerOffset, md, parent, Options{})
}

func decodeTIFF(r Reader, headerOffset int, md *Metadata, parent *Directory, opts Options) error {
	return walkTIFF(r, headerOffset, exifHandler{}, md, parent, opts)
}
