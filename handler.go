// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import "fmt"

// Handler makes the format specific decisions during a TIFF walk.
// The walker owns the traversal; the handler decides which directory kinds
// to create and which tags it decodes itself.
type Handler interface {
	// ValidateMarker receives the 2 byte marker following the byte order mark
	// and returns the type of the first directory.
	// An error aborts the walk.
	ValidateMarker(marker uint16) (DirectoryType, error)

	// SubDirectory reports whether tagID in current points to a sub directory,
	// and of which type.
	SubDirectory(current *Directory, tagID int) (DirectoryType, bool)

	// FollowerDirectory reports whether a non-zero next IFD pointer in current
	// should be followed, and with which directory type.
	FollowerDirectory(current *Directory) (DirectoryType, bool)

	// FormatLength returns the byte length of a value with a format code
	// unknown to the walker. It returns false if the format code is invalid.
	FormatLength(tagID, formatCode int, count int64) (int64, bool)

	// ProcessTag may take over decoding of one entry.
	// It returns true if the entry was handled.
	ProcessTag(tc *TagContext) (bool, error)
}

// TagContext describes the entry passed to Handler.ProcessTag.
type TagContext struct {
	// Reader in the byte order of the current IFD.
	Reader Reader

	// HeaderOffset is the offset of the TIFF header that
	// value pointers in the current IFD are relative to.
	HeaderOffset int

	// ValueOffset is the absolute offset of the entry value.
	ValueOffset int

	TagID     int
	ByteCount int

	// Directory is the directory currently being decoded.
	Directory *Directory

	w *walker
}

// Metadata returns the Metadata the walk adds directories to.
func (tc *TagContext) Metadata() *Metadata {
	return tc.w.md
}

// WalkIFD decodes the IFD at ifdOffset into a new directory of type typ,
// which becomes a child of the current directory.
// Offsets already visited in this walk are skipped.
func (tc *TagContext) WalkIFD(r Reader, typ DirectoryType, ifdOffset, headerOffset int) error {
	return tc.w.processIFD(r, typ, ifdOffset, headerOffset)
}

// AddDirectory adds a new directory of type typ as a child of the
// current directory. It does not become the current directory.
func (tc *TagContext) AddDirectory(typ DirectoryType) *Directory {
	d := NewDirectory(typ)
	d.SetParent(tc.Directory)
	tc.w.md.Add(d)
	return d
}

// Warnf records a warning on the current directory.
func (tc *TagContext) Warnf(format string, args ...any) {
	tc.w.warnf(format, args...)
}

// Errorf records an error on the current directory.
func (tc *TagContext) Errorf(format string, args ...any) {
	tc.Directory.AddError(fmt.Sprintf(format, args...))
}

// Options returns the decode options of the walk.
func (tc *TagContext) Options() Options {
	return tc.w.opts
}
