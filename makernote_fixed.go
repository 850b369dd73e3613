// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const reconyxHyperFireVersion = 61697

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// fixedReader reads maker notes with values at fixed offsets.
// The first error stops all further reads and setters.
type fixedReader struct {
	r    Reader
	base int
	d    *Directory
	err  error
}

func (f *fixedReader) uint8(off int) int {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint8(f.base + off)
	f.err = err
	return int(v)
}

func (f *fixedReader) int8(off int) int {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Int8(f.base + off)
	f.err = err
	return int(v)
}

func (f *fixedReader) uint16(off int) int {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint16(f.base + off)
	f.err = err
	return int(v)
}

func (f *fixedReader) int16(off int) int {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Int16(f.base + off)
	f.err = err
	return int(v)
}

func (f *fixedReader) uint32(off int) int64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint32(f.base + off)
	f.err = err
	return int64(v)
}

func (f *fixedReader) bytes(off, n int) []byte {
	if f.err != nil {
		return nil
	}
	b, err := f.r.Bytes(f.base+off, n)
	f.err = err
	return b
}

func (f *fixedReader) string(off, n int) string {
	if f.err != nil {
		return ""
	}
	s, err := f.r.String(f.base+off, n, nil)
	f.err = err
	return s
}

func (f *fixedReader) nullTerminatedString(off, maxLen int) string {
	if f.err != nil {
		return ""
	}
	s, err := f.r.NullTerminatedString(f.base+off, maxLen, nil)
	f.err = err
	return s
}

func (f *fixedReader) stringValue(off, n int, charset encoding.Encoding) StringValue {
	return StringValue{Bytes: f.bytes(off, n), Charset: charset}
}

// set stores v under id unless a read has failed.
func (f *fixedReader) set(id int, v any) {
	if f.err != nil {
		return
	}
	f.d.Set(id, v)
}

// The tag ids of the fixed layout notes are the byte offsets of the values.
const (
	kodakModel                = 0
	kodakQuality              = 9
	kodakBurstMode            = 10
	kodakImageWidth           = 12
	kodakImageHeight          = 14
	kodakYearCreated          = 16
	kodakMonthDayCreated      = 18
	kodakTimeCreated          = 20
	kodakBurstMode2           = 24
	kodakShutterMode          = 27
	kodakMeteringMode         = 28
	kodakSequenceNumber       = 29
	kodakFNumber              = 30
	kodakExposureTime         = 32
	kodakExposureCompensation = 36
	kodakFocusMode            = 56
	kodakWhiteBalance         = 64
	kodakFlashMode            = 92
	kodakFlashFired           = 93
	kodakISOSetting           = 94
	kodakISO                  = 96
	kodakTotalZoom            = 98
	kodakDateTimeStamp        = 100
	kodakColorMode            = 102
	kodakDigitalZoom          = 104
	kodakSharpness            = 107
)

// decodeKodak decodes a Kodak maker note. The values start after the 8 byte "KDK" header.
func decodeKodak(r Reader, offset int, d *Directory) error {
	f := &fixedReader{r: r, base: offset + 8, d: d}

	f.set(kodakModel, f.stringValue(kodakModel, 8, nil))
	for _, id := range []int{kodakQuality, kodakBurstMode} {
		f.set(id, f.uint8(id))
	}
	for _, id := range []int{kodakImageWidth, kodakImageHeight, kodakYearCreated} {
		f.set(id, f.uint16(id))
	}
	f.set(kodakMonthDayCreated, f.bytes(kodakMonthDayCreated, 2))
	f.set(kodakTimeCreated, f.bytes(kodakTimeCreated, 4))
	f.set(kodakBurstMode2, f.uint16(kodakBurstMode2))
	for _, id := range []int{kodakShutterMode, kodakMeteringMode, kodakSequenceNumber} {
		f.set(id, f.uint8(id))
	}
	f.set(kodakFNumber, f.uint16(kodakFNumber))
	f.set(kodakExposureTime, f.uint32(kodakExposureTime))
	f.set(kodakExposureCompensation, f.int16(kodakExposureCompensation))
	for _, id := range []int{kodakFocusMode, kodakWhiteBalance, kodakFlashMode, kodakFlashFired} {
		f.set(id, f.uint8(id))
	}
	for _, id := range []int{kodakISOSetting, kodakISO, kodakTotalZoom, kodakDateTimeStamp, kodakColorMode, kodakDigitalZoom} {
		f.set(id, f.uint16(id))
	}
	f.set(kodakSharpness, f.int8(kodakSharpness))

	return fixedError(d, "Kodak", f.err)
}

const (
	hyperFireMakernoteVersion    = 0
	hyperFireFirmwareVersion     = 2
	hyperFireTriggerMode         = 12
	hyperFireSequence            = 14
	hyperFireEventNumber         = 18
	hyperFireDateTimeOriginal    = 22
	hyperFireMoonPhase           = 36
	hyperFireAmbientTempF        = 38
	hyperFireAmbientTemp         = 40
	hyperFireSerialNumber        = 42
	hyperFireContrast            = 72
	hyperFireBrightness          = 74
	hyperFireSharpness           = 76
	hyperFireSaturation          = 78
	hyperFireInfraredIlluminator = 80
	hyperFireMotionSensitivity   = 82
	hyperFireBatteryVoltage      = 84
	hyperFireUserLabel           = 86
)

func decodeReconyxHyperFire(r Reader, offset int, d *Directory) error {
	f := &fixedReader{r: r, base: offset, d: d}

	f.set(hyperFireMakernoteVersion, f.uint16(hyperFireMakernoteVersion))

	major := f.uint16(hyperFireFirmwareVersion)
	minor := f.uint16(hyperFireFirmwareVersion + 2)
	revision := f.uint16(hyperFireFirmwareVersion + 4)
	build := fmt.Sprintf("%04X%04X", f.uint16(hyperFireFirmwareVersion+6), f.uint16(hyperFireFirmwareVersion+8))
	if f.err == nil {
		if n, err := strconv.Atoi(build); err == nil {
			d.Set(hyperFireFirmwareVersion, fmt.Sprintf("%d.%d.%d.%d", major, minor, revision, n))
		} else {
			d.Set(hyperFireFirmwareVersion, fmt.Sprintf("%d.%d.%d", major, minor, revision))
			d.AddError(fmt.Sprintf("Error processing Reconyx HyperFire makernote data: build '%s' is not in the expected format and will be omitted from Firmware Version.", build))
		}
	}

	f.set(hyperFireTriggerMode, string(rune(f.uint16(hyperFireTriggerMode))))
	f.set(hyperFireSequence, []int{f.uint16(hyperFireSequence), f.uint16(hyperFireSequence + 2)})
	f.set(hyperFireEventNumber, f.uint16(hyperFireEventNumber)<<16+f.uint16(hyperFireEventNumber+2))

	var dt [6]int
	for i := range dt {
		dt[i] = f.uint16(hyperFireDateTimeOriginal + i*2)
	}
	seconds, minutes, hour, month, day, year := dt[0], dt[1], dt[2], dt[3], dt[4], dt[5]
	if f.err == nil {
		if seconds < 60 && minutes < 60 && hour < 24 && month >= 1 && month < 13 && day >= 1 && day < 32 && year >= 1 && year <= 9999 {
			d.Set(hyperFireDateTimeOriginal, fmt.Sprintf("%4d:%2d:%2d %2d:%2d:%2d", year, month, day, hour, minutes, seconds))
		} else {
			d.AddError(fmt.Sprintf("Error processing Reconyx HyperFire makernote data: Date/Time Original %d-%d-%d %d:%d:%d is not a valid date/time.", year, month, day, hour, minutes, seconds))
		}
	}

	f.set(hyperFireMoonPhase, f.uint16(hyperFireMoonPhase))
	f.set(hyperFireAmbientTempF, f.int16(hyperFireAmbientTempF))
	f.set(hyperFireAmbientTemp, f.int16(hyperFireAmbientTemp))
	// Followed by two bytes of null terminator.
	f.set(hyperFireSerialNumber, f.stringValue(hyperFireSerialNumber, 28, utf16LE))
	for id := hyperFireContrast; id <= hyperFireMotionSensitivity; id += 2 {
		f.set(id, f.uint16(id))
	}
	f.set(hyperFireBatteryVoltage, float64(f.uint16(hyperFireBatteryVoltage))/1000)
	f.set(hyperFireUserLabel, f.nullTerminatedString(hyperFireUserLabel, 44))

	return fixedError(d, "Reconyx HyperFire", f.err)
}

const (
	ultraFireLabel        = 0
	ultraFireEventType    = 52
	ultraFireSequence     = 53
	ultraFireMoonPhase    = 67
	ultraFireFlash        = 72
	ultraFireSerialNumber = 75
	ultraFireUserLabel    = 80
)

// decodeReconyxUltraFire decodes the parts of the UltraFire maker note with
// a known layout. The date and the temperatures are not decoded.
func decodeReconyxUltraFire(r Reader, offset int, d *Directory) error {
	f := &fixedReader{r: r, base: offset, d: d}

	f.set(ultraFireLabel, f.string(ultraFireLabel, 9))
	f.set(ultraFireEventType, f.string(ultraFireEventType, 1))
	f.set(ultraFireSequence, []int{f.int8(ultraFireSequence), f.int8(ultraFireSequence + 1)})
	f.set(ultraFireMoonPhase, f.int8(ultraFireMoonPhase))
	f.set(ultraFireFlash, f.int8(ultraFireFlash))
	f.set(ultraFireSerialNumber, f.stringValue(ultraFireSerialNumber, 14, nil))
	f.set(ultraFireUserLabel, f.nullTerminatedString(ultraFireUserLabel, 20))

	return fixedError(d, "Reconyx UltraFire", f.err)
}

// fixedError records a read error on d. Source errors are returned.
func fixedError(d *Directory, vendor string, err error) error {
	if err == nil {
		return nil
	}
	if isSourceError(err) {
		return err
	}
	d.AddError(fmt.Sprintf("Error processing %s makernote data: %s", vendor, err))
	return nil
}

func describeReconyxHyperFire(d *Directory, id int) (string, bool) {
	switch id {
	case hyperFireBatteryVoltage:
		v, ok := d.Object(id)
		if f, isFloat := v.(float64); ok && isFloat {
			return strconv.FormatFloat(f, 'f', 3, 64) + " Volts", true
		}
	case hyperFireAmbientTemp:
		v, ok := d.Object(id)
		if n, isInt := v.(int); ok && isInt {
			return strconv.Itoa(n) + " C", true
		}
	case hyperFireAmbientTempF:
		v, ok := d.Object(id)
		if n, isInt := v.(int); ok && isInt {
			return strconv.Itoa(n) + " F", true
		}
	}
	return "", false
}
