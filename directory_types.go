// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import "fmt"

// DirectoryType identifies the kind of a Directory.
type DirectoryType int

const (
	DirUnknown DirectoryType = iota

	// Errors that could not be attributed to a directory.
	DirError

	DirIFD0
	DirExifSubIFD
	DirExifImage
	DirThumbnail
	DirGPS
	DirInterop

	DirPanasonicRawIFD0
	DirPanasonicRawWbInfo
	DirPanasonicRawWbInfo2
	DirPanasonicRawDistortion

	DirPrintIM
	DirIPTC
	DirXMP
	DirICC
	DirPhotoshop

	DirOlympus
	DirOlympusEquipment
	DirOlympusCameraSettings
	DirOlympusRawDevelopment
	DirOlympusRawDevelopment2
	DirOlympusImageProcessing
	DirOlympusFocusInfo
	DirOlympusRawInfo
	DirNikon1
	DirNikon2
	DirSony1
	DirSony6
	DirSigma
	DirKodak
	DirCanon
	DirCasio1
	DirCasio2
	DirFujifilm
	DirKyocera
	DirLeica
	DirLeica5
	DirPanasonic
	DirPentax
	DirSanyo
	DirRicoh
	DirApple
	DirReconyxHyperFire
	DirReconyxUltraFire
	DirSamsung2

	dirTypeCount
)

var directoryTypeNames = [dirTypeCount]string{
	DirUnknown: "Unknown",
	DirError:   "Error",

	DirIFD0:       "Exif IFD0",
	DirExifSubIFD: "Exif SubIFD",
	DirExifImage:  "Exif Image",
	DirThumbnail:  "Exif Thumbnail",
	DirGPS:        "GPS",
	DirInterop:    "Interoperability",

	DirPanasonicRawIFD0:       "PanasonicRaw Exif IFD0",
	DirPanasonicRawWbInfo:     "PanasonicRaw WbInfo",
	DirPanasonicRawWbInfo2:    "PanasonicRaw WbInfo2",
	DirPanasonicRawDistortion: "PanasonicRaw DistortionInfo",

	DirPrintIM:   "PrintIM",
	DirIPTC:      "IPTC",
	DirXMP:       "XMP",
	DirICC:       "ICC Profile",
	DirPhotoshop: "Photoshop",

	DirOlympus:                "Olympus Makernote",
	DirOlympusEquipment:       "Olympus Equipment",
	DirOlympusCameraSettings:  "Olympus Camera Settings",
	DirOlympusRawDevelopment:  "Olympus Raw Development",
	DirOlympusRawDevelopment2: "Olympus Raw Development 2",
	DirOlympusImageProcessing: "Olympus Image Processing",
	DirOlympusFocusInfo:       "Olympus Focus Info",
	DirOlympusRawInfo:         "Olympus Raw Info",
	DirNikon1:                 "Nikon Makernote",
	DirNikon2:                 "Nikon Makernote",
	DirSony1:                  "Sony Makernote",
	DirSony6:                  "Sony Makernote",
	DirSigma:                  "Sigma Makernote",
	DirKodak:                  "Kodak Makernote",
	DirCanon:                  "Canon Makernote",
	DirCasio1:                 "Casio Makernote",
	DirCasio2:                 "Casio Makernote",
	DirFujifilm:               "Fujifilm Makernote",
	DirKyocera:                "Kyocera/Contax Makernote",
	DirLeica:                  "Leica Makernote",
	DirLeica5:                 "Leica Makernote",
	DirPanasonic:              "Panasonic Makernote",
	DirPentax:                 "Pentax Makernote",
	DirSanyo:                  "Sanyo Makernote",
	DirRicoh:                  "Ricoh Makernote",
	DirApple:                  "Apple Makernote",
	DirReconyxHyperFire:       "Reconyx HyperFire Makernote",
	DirReconyxUltraFire:       "Reconyx UltraFire Makernote",
	DirSamsung2:               "Samsung Makernote",
}

// String returns the display name of t.
func (t DirectoryType) String() string {
	if t < 0 || t >= dirTypeCount {
		return fmt.Sprintf("DirectoryType(%d)", int(t))
	}
	return directoryTypeNames[t]
}

// IsMakernote reports whether t is a vendor maker note directory.
func (t DirectoryType) IsMakernote() bool {
	return t >= DirOlympus && t < dirTypeCount
}
