// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import "strings"

const printIMVersion = 0x0000

// decodePrintIM decodes a PrintIM block: a 16 byte header with a
// "PrintIM" identifier, a 4 byte version and an entry count,
// followed by 6 byte (tag, value) entries.
func decodePrintIM(r Reader, offset, byteCount int, d *Directory) {
	if byteCount == 0 {
		d.AddError("Empty PrintIM data")
		return
	}
	if byteCount <= 15 {
		d.AddError("Bad PrintIM data")
		return
	}

	header, err := r.String(offset, 12, nil)
	if err != nil {
		d.AddError(err.Error())
		return
	}
	if !strings.HasPrefix(header, "PrintIM") {
		d.AddError("Invalid PrintIM header")
		return
	}

	num, err := r.Uint16(offset + 14)
	if err != nil {
		d.AddError(err.Error())
		return
	}
	if byteCount < 16+int(num)*6 {
		// Maybe the byte order is wrong.
		r = r.WithByteOrder(otherByteOrder(r.ByteOrder()))
		num, _ = r.Uint16(offset + 14)
		if byteCount < 16+int(num)*6 {
			d.AddError("Bad PrintIM size")
			return
		}
	}

	d.Set(printIMVersion, header[8:12])
	for i := range int(num) {
		pos := offset + 16 + i*6
		tag, err := r.Uint16(pos)
		if err != nil {
			d.AddError(err.Error())
			return
		}
		v, err := r.Uint32(pos + 2)
		if err != nil {
			d.AddError(err.Error())
			return
		}
		d.Set(int(tag), int64(v))
	}
}
