// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import "fmt"

// Tag is a tag id in a Directory, used for display.
type Tag struct {
	ID  int
	dir *Directory
}

// Directory returns the directory owning the tag.
func (t Tag) Directory() *Directory {
	return t.dir
}

// Name returns the tag name, or a placeholder for unknown tags.
func (t Tag) Name() string {
	return t.dir.TagName(t.ID)
}

// HasName reports whether the tag has a known name.
func (t Tag) HasName() bool {
	return t.dir.HasTagName(t.ID)
}

// Description returns the human readable value of the tag.
func (t Tag) Description() string {
	s, _ := t.dir.Description(t.ID)
	return s
}

// HexID returns the tag id formatted as e.g. 0x010f.
func (t Tag) HexID() string {
	return fmt.Sprintf("0x%04x", t.ID)
}

func (t Tag) String() string {
	desc := t.Description()
	if desc == "" {
		v, _ := t.dir.Object(t.ID)
		desc = fmt.Sprintf("%v (unable to formulate description)", v)
	}
	return fmt.Sprintf("[%s] %s - %s", t.dir.Name(), t.Name(), desc)
}
