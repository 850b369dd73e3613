// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Metadata is the ordered list of directories produced by one Decode.
type Metadata struct {
	dirs []*Directory

	// Dimensions read from the image container.
	config ImageConfig
}

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// Add appends d.
func (m *Metadata) Add(d *Directory) {
	m.dirs = append(m.dirs, d)
}

// errorDirectory returns the directory for errors that cannot be
// attributed to a decoded directory, creating it if needed.
func (m *Metadata) errorDirectory() *Directory {
	if d := m.FirstDirectoryOfType(DirError); d != nil {
		return d
	}
	d := NewDirectory(DirError)
	m.Add(d)
	return d
}

// Directories returns all directories in the order they were added.
func (m *Metadata) Directories() []*Directory {
	return m.dirs
}

// DirectoryCount returns the number of directories.
func (m *Metadata) DirectoryCount() int {
	return len(m.dirs)
}

// FirstDirectoryOfType returns the first directory of type t, or nil.
func (m *Metadata) FirstDirectoryOfType(t DirectoryType) *Directory {
	for _, d := range m.dirs {
		if d.Type == t {
			return d
		}
	}
	return nil
}

// DirectoriesOfType returns all directories of type t.
func (m *Metadata) DirectoriesOfType(t DirectoryType) []*Directory {
	var dirs []*Directory
	for _, d := range m.dirs {
		if d.Type == t {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// HasErrors reports whether any directory has recorded errors.
func (m *Metadata) HasErrors() bool {
	for _, d := range m.dirs {
		if d.HasErrors() {
			return true
		}
	}
	return false
}

// Errors returns all directory errors prefixed with the directory name.
func (m *Metadata) Errors() []string {
	var errs []string
	for _, d := range m.dirs {
		for _, e := range d.Errors() {
			errs = append(errs, d.Name()+": "+e)
		}
	}
	return errs
}

func (m *Metadata) String() string {
	return fmt.Sprintf("Metadata (%d directories)", len(m.dirs))
}

// DateTime tries to find a date/time value from the available directories.
// It checks Exif first (DateTimeOriginal, DateTime), then XMP (DateTimeOriginal, CreateDate, DateCreated),
// and finally IPTC (DateCreated + TimeCreated).
// A zero time and no error is returned if none is found.
func (m *Metadata) DateTime() (time.Time, error) {
	dateStr, hasTimeZone := m.dateTime()
	if dateStr == "" {
		return time.Time{}, nil
	}

	const layout = "2006:01:02 15:04:05"

	if hasTimeZone {
		for _, l := range []string{
			"2006:01:02 15:04:05-07:00",
			"2006-01-02T15:04:05-07:00",
			"2006:01:02 15:04:05Z07:00",
			"2006-01-02T15:04:05Z07:00",
		} {
			if tm, err := time.Parse(l, dateStr); err == nil {
				return tm, nil
			}
		}
	}

	if strings.Contains(dateStr, "T") {
		dateStr = strings.Replace(strings.ReplaceAll(dateStr[:min(len(dateStr), 19)], "-", ":"), "T", " ", 1)
	}

	return time.ParseInLocation(layout, dateStr, time.Local)
}

func (m *Metadata) dateTime() (string, bool) {
	if d := m.FirstDirectoryOfType(DirExifSubIFD); d != nil {
		if s, ok := d.TagString(TagDateTimeOriginal); ok && s != "" {
			return strings.TrimSpace(s), false
		}
	}
	if d := m.FirstDirectoryOfType(DirIFD0); d != nil {
		if s, ok := d.TagString(TagDateTime); ok && s != "" {
			return strings.TrimSpace(s), false
		}
	}

	if d := m.FirstDirectoryOfType(DirXMP); d != nil {
		props := d.XMPProperties()
		for _, name := range []string{"DateTimeOriginal", "CreateDate", "DateCreated"} {
			if s, ok := props[name].(string); ok && s != "" {
				return s, len(s) > 19
			}
		}
	}

	if d := m.FirstDirectoryOfType(DirIPTC); d != nil {
		dateStr, ok := d.TagString(iptcTagDateCreated)
		if ok {
			dateStr = iptcDate(dateStr)
			if timeStr, ok := d.TagString(iptcTagTimeCreated); ok {
				timeStr = iptcTime(timeStr)
				return dateStr + " " + timeStr, len(timeStr) > 8
			}
			return dateStr + " 00:00:00", false
		}
	}

	return "", false
}

// LatLong returns the latitude and longitude from the GPS directory,
// falling back to XMP. found is false if no position could be determined.
func (m *Metadata) LatLong() (lat, long float64, found bool) {
	if lat, long, found = m.latLongFromGPS(); found {
		return
	}
	return m.latLongFromXMP()
}

func (m *Metadata) latLongFromGPS() (lat, long float64, found bool) {
	d := m.FirstDirectoryOfType(DirGPS)
	if d == nil {
		return
	}
	latRats, ok, err := d.Rationals(TagGPSLatitude)
	if !ok || err != nil {
		return
	}
	longRats, ok, err := d.Rationals(TagGPSLongitude)
	if !ok || err != nil {
		return
	}
	lat, err = toDegrees(latRats)
	if err != nil {
		return
	}
	long, err = toDegrees(longRats)
	if err != nil {
		return
	}

	if ref, _ := d.TagString(TagGPSLatitudeRef); strings.TrimSpace(ref) == "S" {
		lat = -lat
	}
	if ref, _ := d.TagString(TagGPSLongitudeRef); strings.TrimSpace(ref) == "W" {
		long = -long
	}

	if math.IsNaN(lat) || math.IsNaN(long) {
		return 0, 0, false
	}

	return lat, long, true
}

func (m *Metadata) latLongFromXMP() (lat, long float64, found bool) {
	d := m.FirstDirectoryOfType(DirXMP)
	if d == nil {
		return
	}
	props := d.XMPProperties()
	lat, ok1 := props["GPSLatitude"].(float64)
	long, ok2 := props["GPSLongitude"].(float64)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return lat, long, true
}
