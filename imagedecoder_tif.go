// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

// imageDecoderTIF decodes TIFF files and the TIFF based camera RAW formats.
// The whole file is the TIFF structure, so failures in it are returned.
type imageDecoderTIF struct {
	*baseDecoder
}

func (e *imageDecoderTIF) decode() error {
	// CONFIG is read from the decoded directories, so the walk is always needed.
	if err := decodeTIFF(e.r, 0, e.md, nil, e.opts); err != nil {
		return err
	}
	if e.opts.Sources.Has(CONFIG) {
		if cfg, ok := imageConfigFromDirectories(e.md); ok {
			e.setImageConfig(cfg.Width, cfg.Height)
		}
	}
	return nil
}
