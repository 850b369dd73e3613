// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

// Exif tag ids referenced by the decoders.
const (
	TagInteropIndex             = 0x0001
	TagImageWidth               = 0x0100
	TagImageHeight              = 0x0101
	TagMake                     = 0x010f
	TagModel                    = 0x0110
	TagOrientation              = 0x0112
	TagDateTime                 = 0x0132
	TagPageNumber               = 0x0129
	TagSubIFDOffset             = 0x014a
	TagApplicationNotes         = 0x02bc
	TagIPTCNAA                  = 0x83bb
	TagPhotoshopSettings        = 0x8649
	TagExifSubIFDOffset         = 0x8769
	TagInterColorProfile        = 0x8773
	TagGPSInfoOffset            = 0x8825
	TagExposureTime             = 0x829a
	TagFNumber                  = 0x829d
	TagDateTimeOriginal         = 0x9003
	TagShutterSpeedValue        = 0x9201
	TagApertureValue            = 0x9202
	TagMaxApertureValue         = 0x9205
	TagMakernote                = 0x927c
	TagUserComment              = 0x9286
	TagExifImageWidth           = 0xa002
	TagExifImageHeight          = 0xa003
	TagInteropOffset            = 0xa005
	TagPrintIM                  = 0xc4a5
	TagDefaultCropSize          = 0xc620
	TagMakernotePrintIM         = 0x0e00
	TagPanasonicRawWbInfo       = 0x0013
	TagPanasonicRawWbInfo2      = 0x0027
	TagPanasonicRawDistortion   = 0x0119
	TagPanasonicRawJpgFromRaw   = 0x002e
	TagGPSLatitudeRef           = 0x0001
	TagGPSLatitude              = 0x0002
	TagGPSLongitudeRef          = 0x0003
	TagGPSLongitude             = 0x0004
	TagOlympusEquipment         = 0x2010
	TagOlympusCameraSettings    = 0x2020
	TagOlympusRawDevelopment    = 0x2030
	TagOlympusRawDevelopment2   = 0x2031
	TagOlympusImageProcessing   = 0x2040
	TagOlympusFocusInfo         = 0x2050
	TagOlympusRawInfo           = 0x3000
	TagOlympusMainInfo          = 0x4000
	tagXMPPacket                = 0xffff
)

var (
	fieldsExif = map[int]string{
		0x0001: "InteropIndex", 0x0002: "InteropVersion", 0x000b: "ProcessingSoftware",
		0x00fe: "SubfileType", 0x0100: "ImageWidth", 0x0101: "ImageLength", 0x0102: "BitsPerSample",
		0x0103: "Compression", 0x0106: "PhotometricInterpretation", 0x010e: "ImageDescription",
		0x010f: "Make", 0x0110: "Model", 0x0111: "StripOffsets", 0x0112: "Orientation",
		0x0115: "SamplesPerPixel", 0x0116: "RowsPerStrip", 0x0117: "StripByteCounts",
		0x011a: "XResolution", 0x011b: "YResolution", 0x011c: "PlanarConfiguration",
		0x0128: "ResolutionUnit", 0x0129: "PageNumber", 0x0131: "Software", 0x0132: "DateTime",
		0x013b: "Artist", 0x013e: "WhitePoint", 0x013f: "PrimaryChromaticities",
		0x014a: "SubIFDs", 0x0201: "JPEGInterchangeFormat", 0x0202: "JPEGInterchangeFormatLength",
		0x0211: "YCbCrCoefficients", 0x0212: "YCbCrSubSampling", 0x0213: "YCbCrPositioning",
		0x0214: "ReferenceBlackWhite", 0x02bc: "ApplicationNotes", 0x8298: "Copyright",
		0x829a: "ExposureTime", 0x829d: "FNumber", 0x83bb: "IPTC-NAA", 0x8649: "PhotoshopSettings",
		0x8769: "ExifIFDPointer", 0x8773: "ICCProfile", 0x8822: "ExposureProgram",
		0x8824: "SpectralSensitivity", 0x8825: "GPSInfoIFDPointer", 0x8827: "ISOSpeedRatings",
		0x8828: "OECF", 0x8830: "SensitivityType", 0x9000: "ExifVersion", 0x9003: "DateTimeOriginal",
		0x9004: "DateTimeDigitized", 0x9010: "OffsetTime", 0x9011: "OffsetTimeOriginal",
		0x9012: "OffsetTimeDigitized", 0x9101: "ComponentsConfiguration",
		0x9102: "CompressedBitsPerPixel", 0x9201: "ShutterSpeedValue", 0x9202: "ApertureValue",
		0x9203: "BrightnessValue", 0x9204: "ExposureBiasValue", 0x9205: "MaxApertureValue",
		0x9206: "SubjectDistance", 0x9207: "MeteringMode", 0x9208: "LightSource", 0x9209: "Flash",
		0x920a: "FocalLength", 0x9214: "SubjectArea", 0x927c: "MakerNote", 0x9286: "UserComment",
		0x9290: "SubSecTime", 0x9291: "SubSecTimeOriginal", 0x9292: "SubSecTimeDigitized",
		0x9c9b: "XPTitle", 0x9c9c: "XPComment", 0x9c9d: "XPAuthor", 0x9c9e: "XPKeywords",
		0x9c9f: "XPSubject", 0xa000: "FlashpixVersion", 0xa001: "ColorSpace",
		0xa002: "PixelXDimension", 0xa003: "PixelYDimension", 0xa004: "RelatedSoundFile",
		0xa005: "InteroperabilityIFDPointer", 0xa20b: "FlashEnergy",
		0xa20c: "SpatialFrequencyResponse", 0xa20e: "FocalPlaneXResolution",
		0xa20f: "FocalPlaneYResolution", 0xa210: "FocalPlaneResolutionUnit",
		0xa214: "SubjectLocation", 0xa215: "ExposureIndex", 0xa217: "SensingMethod",
		0xa300: "FileSource", 0xa301: "SceneType", 0xa302: "CFAPattern", 0xa401: "CustomRendered",
		0xa402: "ExposureMode", 0xa403: "WhiteBalance", 0xa404: "DigitalZoomRatio",
		0xa405: "FocalLengthIn35mmFilm", 0xa406: "SceneCaptureType", 0xa407: "GainControl",
		0xa408: "Contrast", 0xa409: "Saturation", 0xa40a: "Sharpness",
		0xa40b: "DeviceSettingDescription", 0xa40c: "SubjectDistanceRange",
		0xa420: "ImageUniqueID", 0xa430: "CameraOwnerName", 0xa431: "BodySerialNumber",
		0xa432: "LensSpecification", 0xa433: "LensMake", 0xa434: "LensModel",
		0xa435: "LensSerialNumber", 0xc4a5: "PrintIM", 0xc612: "DNGVersion",
		0xc614: "UniqueCameraModel", 0xc620: "DefaultCropSize",
	}

	fieldsGPS = map[int]string{
		0x0: "GPSVersionID", 0x1: "GPSLatitudeRef", 0x2: "GPSLatitude", 0x3: "GPSLongitudeRef",
		0x4: "GPSLongitude", 0x5: "GPSAltitudeRef", 0x6: "GPSAltitude", 0x7: "GPSTimeStamp",
		0x8: "GPSSatellites", 0x9: "GPSStatus", 0xa: "GPSMeasureMode", 0xb: "GPSDOP",
		0xc: "GPSSpeedRef", 0xd: "GPSSpeed", 0xe: "GPSTrackRef", 0xf: "GPSTrack",
		0x10: "GPSImgDirectionRef", 0x11: "GPSImgDirection", 0x12: "GPSMapDatum",
		0x13: "GPSDestLatitudeRef", 0x14: "GPSDestLatitude", 0x15: "GPSDestLongitudeRef",
		0x16: "GPSDestLongitude", 0x17: "GPSDestBearingRef", 0x18: "GPSDestBearing",
		0x19: "GPSDestDistanceRef", 0x1a: "GPSDestDistance", 0x1b: "GPSProcessingMethod",
		0x1c: "GPSAreaInformation", 0x1d: "GPSDateStamp", 0x1e: "GPSDifferential",
		0x1f: "GPSHPositioningError",
	}

	fieldsPanasonicRaw = map[int]string{
		0x0001: "PanasonicRawVersion", 0x0002: "SensorWidth", 0x0003: "SensorHeight",
		0x0004: "SensorTopBorder", 0x0005: "SensorLeftBorder", 0x0006: "SensorBottomBorder",
		0x0007: "SensorRightBorder", 0x0008: "BlackLevel1", 0x0009: "BlackLevel2",
		0x000a: "BlackLevel3", 0x000e: "LinearityLimitRed", 0x000f: "LinearityLimitGreen",
		0x0010: "LinearityLimitBlue", 0x0011: "RedBalance", 0x0012: "BlueBalance",
		0x0013: "WBInfo", 0x0017: "ISO", 0x0018: "HighISOMultiplierRed",
		0x0019: "HighISOMultiplierGreen", 0x001a: "HighISOMultiplierBlue",
		0x001c: "BlackLevelRed", 0x001d: "BlackLevelGreen", 0x001e: "BlackLevelBlue",
		0x0024: "WBRedLevel", 0x0025: "WBGreenLevel", 0x0026: "WBBlueLevel", 0x0027: "WBInfo2",
		0x002d: "RawFormat", 0x002e: "JpgFromRaw", 0x002f: "CropTop", 0x0030: "CropLeft",
		0x0031: "CropBottom", 0x0032: "CropRight", 0x0119: "DistortionInfo",
	}

	fieldsPanasonicRawWbInfo = map[int]string{
		0: "NumWBEntries", 1: "WBType1", 2: "WBRGBLevels1", 4: "WBType2", 5: "WBRGBLevels2",
		7: "WBType3", 8: "WBRGBLevels3", 10: "WBType4", 11: "WBRGBLevels4", 13: "WBType5",
		14: "WBRGBLevels5", 16: "WBType6", 17: "WBRGBLevels6", 19: "WBType7", 20: "WBRGBLevels7",
	}

	fieldsPanasonicRawWbInfo2 = map[int]string{
		0: "NumWBEntries", 1: "WBType1", 2: "WBRGBLevels1", 5: "WBType2", 6: "WBRGBLevels2",
		9: "WBType3", 10: "WBRGBLevels3", 13: "WBType4", 14: "WBRGBLevels4", 17: "WBType5",
		18: "WBRGBLevels5", 21: "WBType6", 22: "WBRGBLevels6", 25: "WBType7", 26: "WBRGBLevels7",
	}

	fieldsPanasonicRawDistortion = map[int]string{
		2: "DistortionParam02", 4: "DistortionParam04", 5: "DistortionScale",
		7: "DistortionCorrection", 8: "DistortionParam08", 9: "DistortionParam09",
		11: "DistortionParam11", 12: "DistortionN",
	}

	fieldsKodak = map[int]string{
		0: "KodakModel", 9: "Quality", 10: "BurstMode", 12: "ImageWidth", 14: "ImageHeight",
		16: "YearCreated", 18: "MonthDayCreated", 20: "TimeCreated", 24: "BurstMode2",
		27: "ShutterMode", 28: "MeteringMode", 29: "SequenceNumber", 30: "FNumber",
		32: "ExposureTime", 36: "ExposureCompensation", 56: "FocusMode", 64: "WhiteBalance",
		92: "FlashMode", 93: "FlashFired", 94: "ISOSetting", 96: "ISO", 98: "TotalZoom",
		100: "DateTimeStamp", 102: "ColorMode", 104: "DigitalZoom", 107: "Sharpness",
	}

	fieldsReconyxHyperFire = map[int]string{
		0: "MakernoteVersion", 2: "FirmwareVersion", 12: "TriggerMode", 14: "Sequence",
		18: "EventNumber", 22: "DateTimeOriginal", 36: "MoonPhase",
		38: "AmbientTemperatureFahrenheit", 40: "AmbientTemperature", 42: "SerialNumber",
		72: "Contrast", 74: "Brightness", 76: "Sharpness", 78: "Saturation",
		80: "InfraredIlluminator", 82: "MotionSensitivity", 84: "BatteryVoltage", 86: "UserLabel",
	}

	fieldsReconyxUltraFire = map[int]string{
		0: "MakernoteLabel", 10: "MakernoteID", 14: "MakernoteSize", 18: "MakernotePublicID",
		22: "MakernotePublicSize", 24: "CameraVersion", 31: "UibVersion", 38: "BtlVersion",
		45: "PexVersion", 52: "EventType", 53: "Sequence", 55: "EventNumber",
		59: "DateTimeOriginal", 66: "DayOfWeek", 67: "MoonPhase",
		68: "AmbientTemperatureFahrenheit", 70: "AmbientTemperature", 72: "Flash",
		73: "BatteryVoltage", 75: "SerialNumber", 80: "UserLabel",
	}

	fieldsPrintIM = map[int]string{
		0x0000: "PrintIMVersion", 0x0001: "CompressionFactor", 0x0101: "EXIFDataToCopy",
		0x0104: "RecordingMode", 0x0107: "PrintSharpness",
	}

	fieldsICC = map[int]string{
		0: "ProfileSize", 4: "CMMType", 8: "Version", 12: "Class", 16: "ColorSpace",
		20: "ProfileConnectionSpace", 24: "ProfileDateTime", 36: "Signature",
		40: "PrimaryPlatform", 44: "CMMFlags", 48: "DeviceManufacturer", 52: "DeviceModel",
		56: "DeviceAttributes", 64: "RenderingIntent", 68: "XYZValues", 80: "ProfileCreator",
		128: "TagCount",
		0x63707274: "ProfileCopyright", 0x64657363: "ProfileDescription",
		0x77747074: "MediaWhitePoint", 0x626b7074: "MediaBlackPoint",
		0x7258595a: "RedColorant", 0x6758595a: "GreenColorant", 0x6258595a: "BlueColorant",
		0x72545243: "RedTRC", 0x67545243: "GreenTRC", 0x62545243: "BlueTRC",
		0x646d6e64: "DeviceMfgDescription", 0x646d6464: "DeviceModelDescription",
		0x76756564: "ViewingCondDescription", 0x76696577: "ViewingConditions",
		0x6c756d69: "Luminance", 0x6d656173: "Measurement", 0x74656368: "Technology",
		0x63686164: "ChromaticAdaptation",
	}

	fieldsPhotoshop = map[int]string{
		0x03e8: "ChannelsRowsColumnsDepthMode", 0x03ed: "ResolutionInfo",
		0x0404: "IPTC-NAA", 0x0406: "JPEGQuality", 0x040a: "CopyrightFlag",
		0x040b: "URL", 0x040c: "ThumbnailData", 0x040f: "ICCProfile", 0x0411: "ICCUntagged",
		0x0414: "IDsBaseValue", 0x0419: "GlobalAltitude", 0x041a: "Slices",
		0x041e: "URLList", 0x0421: "VersionInfo", 0x0422: "ExifData1", 0x0423: "ExifData3",
		0x0424: "XMPData", 0x0425: "IPTCDigest", 0x0426: "PrintScale",
		0x0428: "PixelAspectRatio", 0x043a: "PrintInfo2", 0x043b: "PrintStyle",
	}

	fieldsXMP = map[int]string{
		tagXMPPacket: "XMPValue",
	}
)

var fieldsByType = map[DirectoryType]map[int]string{
	DirIFD0:                   fieldsExif,
	DirExifSubIFD:             fieldsExif,
	DirExifImage:              fieldsExif,
	DirThumbnail:              fieldsExif,
	DirInterop:                fieldsExif,
	DirGPS:                    fieldsGPS,
	DirPanasonicRawIFD0:       fieldsPanasonicRaw,
	DirPanasonicRawWbInfo:     fieldsPanasonicRawWbInfo,
	DirPanasonicRawWbInfo2:    fieldsPanasonicRawWbInfo2,
	DirPanasonicRawDistortion: fieldsPanasonicRawDistortion,
	DirKodak:                  fieldsKodak,
	DirReconyxHyperFire:       fieldsReconyxHyperFire,
	DirReconyxUltraFire:       fieldsReconyxUltraFire,
	DirPrintIM:                fieldsPrintIM,
	DirICC:                    fieldsICC,
	DirPhotoshop:              fieldsPhotoshop,
	DirIPTC:                   fieldsIPTC,
	DirXMP:                    fieldsXMP,
}

func tagNames(t DirectoryType) map[int]string {
	return fieldsByType[t]
}
