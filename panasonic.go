// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

// decodePanasonicBinary decodes the binary Panasonic RAW blocks (white balance
// and distortion info). Every 16 bit word is a tag id. A known tag followed by
// another known tag is a single value, a known tag followed by an unknown one
// starts an array of arrayLen values. Arrays cut short by the end of the
// block are dropped.
func decodePanasonicBinary(r Reader, offset, byteCount int, signed bool, arrayLen int, d *Directory) {
	read := func(i int) (int, error) {
		if signed {
			v, err := r.Int16(offset + i*2)
			return int(v), err
		}
		v, err := r.Uint16(offset + i*2)
		return int(v), err
	}

	words := byteCount / 2
	for i := 0; i < words; i++ {
		if !d.HasTagName(i) {
			continue
		}
		if i < words-1 && d.HasTagName(i+1) {
			v, err := read(i)
			if err != nil {
				d.AddError(err.Error())
				return
			}
			d.Set(i, v)
			continue
		}

		if i+arrayLen > words {
			return
		}
		vals := make([]int, arrayLen)
		for j := range vals {
			v, err := read(i + j)
			if err != nil {
				d.AddError(err.Error())
				return
			}
			vals[j] = v
		}
		if signed {
			d.Set(i, toInt16s(vals))
		} else {
			d.Set(i, vals)
		}
		i += arrayLen - 1
	}
}

func toInt16s(vals []int) []int16 {
	s := make([]int16, len(vals))
	for i, v := range vals {
		s[i] = int16(v)
	}
	return s
}
