// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"strings"
)

// Tag ids in the ICC directory are byte offsets into the profile header,
// except for the tag table entries which use the tag signature.
const (
	iccProfileByteCount      = 0
	iccCMMType               = 4
	iccProfileVersion        = 8
	iccProfileClass          = 12
	iccColorSpace            = 16
	iccProfileConnectSpace   = 20
	iccProfileDateTime       = 24
	iccSignature             = 36
	iccPlatform              = 40
	iccCMMFlags              = 44
	iccDeviceMake            = 48
	iccDeviceModel           = 52
	iccDeviceAttributes      = 56
	iccRenderingIntent       = 64
	iccXYZValues             = 68
	iccProfileCreator        = 80
	iccTagCount              = 128
	iccTagTableEntrySize     = 12
	iccDeviceModelStringMask = 0x20202020
)

// decodeICC decodes an ICC profile into a new ICC directory.
// The directory is added even if the profile is truncated.
func decodeICC(r Reader, md *Metadata, parent *Directory) {
	d := NewDirectory(DirICC)
	if parent != nil {
		d.SetParent(parent)
	}
	md.Add(d)

	if err := decodeICCProfile(r, d); err != nil {
		d.AddError(fmt.Sprintf("Exception reading ICC profile: %s", err))
	}
}

func decodeICCProfile(r Reader, d *Directory) error {
	size, err := r.Int32(iccProfileByteCount)
	if err != nil {
		return err
	}
	d.Set(iccProfileByteCount, int(size))

	for _, id := range []int{iccCMMType, iccProfileClass, iccColorSpace, iccProfileConnectSpace, iccSignature, iccPlatform, iccDeviceMake, iccProfileCreator} {
		if err := setICCSignature(r, d, id); err != nil {
			return err
		}
	}
	for _, id := range []int{iccProfileVersion, iccCMMFlags, iccRenderingIntent} {
		v, err := r.Int32(id)
		if err != nil {
			return err
		}
		if v != 0 {
			d.Set(id, int(v))
		}
	}

	model, err := r.Int32(iccDeviceModel)
	if err != nil {
		return err
	}
	if model != 0 {
		if model <= iccDeviceModelStringMask {
			d.Set(iccDeviceModel, int(model))
		} else if err := setICCSignature(r, d, iccDeviceModel); err != nil {
			return err
		}
	}

	attrs, err := r.Int64(iccDeviceAttributes)
	if err != nil {
		return err
	}
	if attrs != 0 {
		d.Set(iccDeviceAttributes, attrs)
	}

	if err := setICCDateTime(r, d); err != nil {
		return err
	}

	xyz := make([]float32, 3)
	for i := range xyz {
		if xyz[i], err = r.S15Fixed16(iccXYZValues + i*4); err != nil {
			return err
		}
	}
	d.Set(iccXYZValues, xyz)

	count, err := r.Int32(iccTagCount)
	if err != nil {
		return err
	}
	d.Set(iccTagCount, int(count))

	for i := range int(count) {
		pos := iccTagCount + 4 + i*iccTagTableEntrySize
		sig, err := r.Int32(pos)
		if err != nil {
			return err
		}
		ptr, err := r.Int32(pos + 4)
		if err != nil {
			return err
		}
		n, err := r.Int32(pos + 8)
		if err != nil {
			return err
		}
		b, err := r.Bytes(int(ptr), int(n))
		if err != nil {
			return err
		}
		d.Set(int(uint32(sig)), b)
	}

	return nil
}

// setICCSignature stores the 4 character signature at id, if set.
func setICCSignature(r Reader, d *Directory, id int) error {
	v, err := r.Int32(id)
	if err != nil {
		return err
	}
	if v == 0 {
		return nil
	}
	s, err := r.String(id, 4, nil)
	if err != nil {
		return err
	}
	d.Set(id, s)
	return nil
}

func setICCDateTime(r Reader, d *Directory) error {
	var v [6]int
	for i := range v {
		n, err := r.Uint16(iccProfileDateTime + i*2)
		if err != nil {
			return err
		}
		v[i] = int(n)
	}
	year, month, day, hour, minute, second := v[0], v[1], v[2], v[3], v[4], v[5]
	if year >= 1 && year <= 9999 && month >= 1 && month <= 12 && day >= 1 && day <= 31 && hour < 24 && minute < 60 && second < 60 {
		d.Set(iccProfileDateTime, fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d", year, month, day, hour, minute, second))
		return nil
	}
	d.AddError(fmt.Sprintf("ICC data describes an invalid date/time: year=%d month=%d day=%d hour=%d minute=%d second=%d", year, month, day, hour, minute, second))
	return nil
}

var iccRenderingIntents = [...]string{
	"Perceptual",
	"Media-Relative Colorimetric",
	"Saturation",
	"ICC-Absolute Colorimetric",
}

type iccDescriptor struct{}

func (iccDescriptor) Describe(d *Directory, id int) (string, bool) {
	switch id {
	case iccProfileVersion:
		v, ok, _ := d.Int(id)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%d.%d.%d", (v>>24)&0xFF, (v>>20)&0x0F, (v>>16)&0x0F), true
	case iccRenderingIntent:
		v, ok, _ := d.Int(id)
		if !ok || v < 0 || v >= len(iccRenderingIntents) {
			return "", false
		}
		return iccRenderingIntents[v], true
	case iccPlatform:
		s, ok := d.TagString(id)
		if !ok {
			return "", false
		}
		switch strings.TrimSpace(s) {
		case "APPL":
			return "Apple Computer, Inc.", true
		case "MSFT":
			return "Microsoft Corporation", true
		case "SGI":
			return "Silicon Graphics, Inc.", true
		case "SUNW":
			return "Sun Microsystems, Inc.", true
		}
	case iccXYZValues:
		v, ok := d.Object(id)
		xyz, isFloats := v.([]float32)
		if !ok || !isFloats || len(xyz) != 3 {
			return "", false
		}
		return fmt.Sprintf("(%g, %g, %g)", xyz[0], xyz[1], xyz[2]), true
	}
	return binaryDescriptor{}.Describe(d, id)
}
