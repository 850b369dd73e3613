// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var descriptors = map[DirectoryType]Descriptor{
	DirIFD0:       exifDescriptor{},
	DirExifSubIFD: exifDescriptor{},
	DirExifImage:  exifDescriptor{},
	DirThumbnail:  exifDescriptor{},
	DirGPS:        gpsDescriptor{},
	DirKodak:      binaryDescriptor{},
	DirICC:        iccDescriptor{},
	DirPhotoshop:  binaryDescriptor{},

	DirReconyxHyperFire: DescriptorFunc(describeReconyxHyperFire),
}

// DescriptorFunc adapts a function to the Descriptor interface.
type DescriptorFunc func(d *Directory, id int) (string, bool)

func (f DescriptorFunc) Describe(d *Directory, id int) (string, bool) {
	return f(d, id)
}

type exifDescriptor struct{}

var orientations = [...]string{
	1: "Top, left side (Horizontal / normal)",
	2: "Top, right side (Mirror horizontal)",
	3: "Bottom, right side (Rotate 180)",
	4: "Bottom, left side (Mirror vertical)",
	5: "Left side, top (Mirror horizontal and rotate 270 CW)",
	6: "Right side, top (Rotate 90 CW)",
	7: "Right side, bottom (Mirror horizontal and rotate 90 CW)",
	8: "Left side, bottom (Rotate 270 CW)",
}

func (exifDescriptor) Describe(d *Directory, id int) (string, bool) {
	switch id {
	case TagOrientation:
		v, _, err := d.Int(id)
		if err != nil || v < 1 || v >= len(orientations) {
			return "", false
		}
		return orientations[v], true
	case TagFNumber:
		r, _, err := d.Rational(id)
		if err != nil || r.IsZero() {
			return "", false
		}
		return formatFNumber(r.Float64()), true
	case TagApertureValue, TagMaxApertureValue:
		f, _, err := d.Float64(id)
		if err != nil {
			return "", false
		}
		return formatFNumber(apexToFNumber(f)), true
	case TagExposureTime:
		r, _, err := d.Rational(id)
		if err != nil {
			return "", false
		}
		return r.SimpleString(true) + " sec", true
	case TagShutterSpeedValue:
		f, _, err := d.Float64(id)
		if err != nil {
			return "", false
		}
		return formatShutterSpeed(f), true
	case TagUserComment:
		b, _, err := d.Bytes(id)
		if err != nil {
			return "", false
		}
		return decodeUserComment(b), true
	case TagMakernote, TagPrintIM, TagInterColorProfile, TagApplicationNotes, TagIPTCNAA:
		return binaryDescriptor{}.Describe(d, id)
	}
	return "", false
}

type gpsDescriptor struct{}

func (gpsDescriptor) Describe(d *Directory, id int) (string, bool) {
	switch id {
	case TagGPSLatitude, TagGPSLongitude:
		rats, _, err := d.Rationals(id)
		if err != nil || len(rats) != 3 {
			return "", false
		}
		return fmt.Sprintf("%s° %s' %s\"", rats[0].SimpleString(true), rats[1].SimpleString(true), strconv.FormatFloat(rats[2].Float64(), 'f', -1, 64)), true
	}
	return "", false
}

// binaryDescriptor shortens large byte slices.
type binaryDescriptor struct{}

func (binaryDescriptor) Describe(d *Directory, id int) (string, bool) {
	v, _ := d.Object(id)
	if b, ok := v.([]byte); ok && len(b) > 16 {
		return fmt.Sprintf("(%d bytes binary data)", len(b)), true
	}
	return "", false
}

func apexToFNumber(f float64) float64 {
	return math.Pow(math.Sqrt2, f)
}

func formatFNumber(f float64) string {
	return "f/" + strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}

func formatShutterSpeed(apex float64) string {
	if apex <= 1 {
		seconds := 1 / math.Exp2(apex)
		return strconv.FormatFloat(math.Round(seconds*10)/10, 'f', -1, 64) + " sec"
	}
	return fmt.Sprintf("1/%d sec", int(math.Exp2(apex)+0.5))
}

// decodeUserComment decodes an Exif UserComment, which starts with an
// 8 byte character code.
func decodeUserComment(b []byte) string {
	if len(b) < 8 {
		return printableString(string(b))
	}
	code, body := string(bytes.TrimRight(b[:8], "\x00 ")), b[8:]
	switch code {
	case "UNICODE":
		s, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(body)
		if err == nil {
			return printableString(string(s))
		}
	case "ASCII", "JIS", "":
		return printableString(string(trimBytesNulls(body)))
	}
	return printableString(strings.TrimRight(string(b), "\x00"))
}
