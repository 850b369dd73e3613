// Copyright 2026 Toni Melisma
// SPDX-License-Identifier: MIT

package tiffmeta

// ImageConfig contains basic image configuration.
type ImageConfig struct {
	Width  int
	Height int
}

// ImageConfig returns the image dimensions.
// Dimensions read from the image container are preferred when the CONFIG
// source was requested, otherwise they are derived from the decoded
// directories: DefaultCropSize if present, else the largest of the
// dimensions found in IFD0, the Exif sub IFD and the RAW sub IFDs.
func (m *Metadata) ImageConfig() (ImageConfig, bool) {
	if m.config.Width > 0 && m.config.Height > 0 {
		return m.config, true
	}
	return imageConfigFromDirectories(m)
}

func imageConfigFromDirectories(m *Metadata) (ImageConfig, bool) {
	var best, crop ImageConfig

	consider := func(w, h int) {
		if w*h > best.Width*best.Height {
			best = ImageConfig{Width: w, Height: h}
		}
	}

	for _, d := range m.Directories() {
		switch d.Type {
		case DirIFD0, DirExifSubIFD, DirPanasonicRawIFD0:
		default:
			continue
		}
		if w, h, ok := dimensions(d, TagImageWidth, TagImageHeight); ok {
			consider(w, h)
		}
		if w, h, ok := dimensions(d, TagExifImageWidth, TagExifImageHeight); ok {
			consider(w, h)
		}
		// A DefaultCropSize in a sub IFD wins over the one in IFD0.
		if w, h, ok := defaultCropSize(d); ok {
			crop = ImageConfig{Width: w, Height: h}
		}
	}

	if crop.Width > 0 && crop.Height > 0 {
		return crop, true
	}
	return best, best.Width > 0 && best.Height > 0
}

func dimensions(d *Directory, wTag, hTag int) (int, int, bool) {
	w, ok1, err1 := d.Int(wTag)
	h, ok2, err2 := d.Int(hTag)
	if !ok1 || !ok2 || err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// defaultCropSize reads DefaultCropSize, stored as SHORT, LONG or RATIONAL pairs.
func defaultCropSize(d *Directory) (int, int, bool) {
	if rats, ok, err := d.Rationals(TagDefaultCropSize); ok && err == nil && len(rats) == 2 {
		return rats[0].Int(), rats[1].Int(), true
	}
	if ints, ok, err := d.IntArray(TagDefaultCropSize); ok && err == nil && len(ints) == 2 {
		return ints[0], ints[1], true
	}
	return 0, 0, false
}
