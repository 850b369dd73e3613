// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Descriptor renders tag values of a directory for display.
type Descriptor interface {
	// Describe returns a human readable description of tag id in d.
	// It returns false if it has no special handling for the tag.
	Describe(d *Directory, id int) (string, bool)
}

// Directory holds the decoded values of one IFD or embedded block.
//
// A tag id maps to at most one value; setting an id again replaces the
// value but keeps its original position in the tag order.
type Directory struct {
	Type DirectoryType

	values map[int]any
	ids    []int
	errors []string
	parent *Directory

	descriptor Descriptor

	// Only set for XMP directories.
	xmpProperties map[string]any
}

// NewDirectory creates an empty directory of type t.
func NewDirectory(t DirectoryType) *Directory {
	return &Directory{
		Type:       t,
		values:     make(map[int]any),
		descriptor: descriptors[t],
	}
}

// Name returns the display name of the directory.
func (d *Directory) Name() string {
	return d.Type.String()
}

// Parent returns the directory this one was reached from, or nil.
func (d *Directory) Parent() *Directory {
	return d.parent
}

// SetParent sets the parent directory.
func (d *Directory) SetParent(parent *Directory) {
	d.parent = parent
}

// SetDescriptor overrides the descriptor used by Description.
func (d *Directory) SetDescriptor(desc Descriptor) {
	d.descriptor = desc
}

// Set stores v under id. Nil values are ignored.
func (d *Directory) Set(id int, v any) {
	if v == nil {
		return
	}
	if _, found := d.values[id]; !found {
		d.ids = append(d.ids, id)
	}
	d.values[id] = v
}

// Has reports whether id has a value.
func (d *Directory) Has(id int) bool {
	_, found := d.values[id]
	return found
}

// Object returns the raw value stored under id.
func (d *Directory) Object(id int) (any, bool) {
	v, found := d.values[id]
	return v, found
}

// TagCount returns the number of tags with a value.
func (d *Directory) TagCount() int {
	return len(d.ids)
}

// IDs returns the tag ids in the order they were first set.
func (d *Directory) IDs() []int {
	ids := make([]int, len(d.ids))
	copy(ids, d.ids)
	return ids
}

// Tags returns the tags in the order they were first set.
func (d *Directory) Tags() []Tag {
	tags := make([]Tag, len(d.ids))
	for i, id := range d.ids {
		tags[i] = Tag{ID: id, dir: d}
	}
	return tags
}

// AddError records a non fatal error.
func (d *Directory) AddError(msg string) {
	d.errors = append(d.errors, msg)
}

// Errors returns the recorded errors.
func (d *Directory) Errors() []string {
	return d.errors
}

// HasErrors reports whether any errors were recorded.
func (d *Directory) HasErrors() bool {
	return len(d.errors) > 0
}

// XMPProperties returns the XMP properties keyed by namespace + local name.
// It is nil for all but XMP directories.
func (d *Directory) XMPProperties() map[string]any {
	return d.xmpProperties
}

// HasTagName reports whether id has a known name in this directory type.
func (d *Directory) HasTagName(id int) bool {
	_, found := tagNames(d.Type)[id]
	return found
}

// TagName returns the name of tag id.
func (d *Directory) TagName(id int) string {
	if name, found := tagNames(d.Type)[id]; found {
		return name
	}
	return fmt.Sprintf("Unknown tag (0x%04x)", id)
}

// Description returns a human readable representation of the value of id.
func (d *Directory) Description(id int) (string, bool) {
	if !d.Has(id) {
		return "", false
	}
	if d.descriptor != nil {
		if s, ok := d.descriptor.Describe(d, id); ok {
			return s, true
		}
	}
	return d.TagString(id)
}

// TagString returns the value of id formatted without a descriptor.
func (d *Directory) TagString(id int) (string, bool) {
	v, found := d.values[id]
	if !found {
		return "", false
	}
	return formatValue(v), true
}

// Int returns the value of id coerced to an int.
// It returns false if the tag is not set, and an error if it is set
// but cannot be represented as an int.
func (d *Directory) Int(id int) (int, bool, error) {
	v, found := d.values[id]
	if !found {
		return 0, false, nil
	}
	i, ok := toInt(v)
	if !ok {
		return 0, true, d.conversionError(id, v, "int")
	}
	return i, true, nil
}

// Int64 returns the value of id coerced to an int64.
func (d *Directory) Int64(id int) (int64, bool, error) {
	i, found, err := d.Int(id)
	return int64(i), found, err
}

// Float64 returns the value of id coerced to a float64.
func (d *Directory) Float64(id int) (float64, bool, error) {
	v, found := d.values[id]
	if !found {
		return 0, false, nil
	}
	switch vv := v.(type) {
	case float64:
		return vv, true, nil
	case float32:
		return float64(vv), true, nil
	case Rational:
		return vv.Float64(), true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(vv), 64)
		if err == nil {
			return f, true, nil
		}
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(vv.String()), 64)
		if err == nil {
			return f, true, nil
		}
	default:
		if i, ok := toInt(v); ok {
			return float64(i), true, nil
		}
	}
	return 0, true, d.conversionError(id, v, "float64")
}

// Rational returns the value of id as a Rational.
func (d *Directory) Rational(id int) (Rational, bool, error) {
	v, found := d.values[id]
	if !found {
		return Rational{}, false, nil
	}
	switch vv := v.(type) {
	case Rational:
		return vv, true, nil
	case []Rational:
		if len(vv) == 1 {
			return vv[0], true, nil
		}
	default:
		if i, ok := toInt(v); ok {
			return Rational{Num: int64(i), Den: 1}, true, nil
		}
	}
	return Rational{}, true, d.conversionError(id, v, "Rational")
}

// Rationals returns the value of id as a slice of Rational.
func (d *Directory) Rationals(id int) ([]Rational, bool, error) {
	v, found := d.values[id]
	if !found {
		return nil, false, nil
	}
	switch vv := v.(type) {
	case []Rational:
		return vv, true, nil
	case Rational:
		return []Rational{vv}, true, nil
	}
	return nil, true, d.conversionError(id, v, "[]Rational")
}

// IntArray returns the value of id as a slice of int.
func (d *Directory) IntArray(id int) ([]int, bool, error) {
	v, found := d.values[id]
	if !found {
		return nil, false, nil
	}
	switch vv := v.(type) {
	case []int:
		return vv, true, nil
	case []uint8:
		return convertInts(vv), true, nil
	case []int8:
		return convertInts(vv), true, nil
	case []uint16:
		return convertInts(vv), true, nil
	case []int16:
		return convertInts(vv), true, nil
	case []uint32:
		return convertInts(vv), true, nil
	case []int32:
		return convertInts(vv), true, nil
	}
	if i, ok := toInt(v); ok {
		return []int{i}, true, nil
	}
	return nil, true, d.conversionError(id, v, "[]int")
}

// Bytes returns the value of id as a byte slice.
func (d *Directory) Bytes(id int) ([]byte, bool, error) {
	v, found := d.values[id]
	if !found {
		return nil, false, nil
	}
	switch vv := v.(type) {
	case []byte:
		return vv, true, nil
	case StringValue:
		return vv.Bytes, true, nil
	case string:
		return []byte(vv), true, nil
	}
	return nil, true, d.conversionError(id, v, "[]byte")
}

// StringValue returns the value of id as a StringValue.
func (d *Directory) StringValue(id int) (StringValue, bool, error) {
	v, found := d.values[id]
	if !found {
		return StringValue{}, false, nil
	}
	switch vv := v.(type) {
	case StringValue:
		return vv, true, nil
	case string:
		return StringValue{Bytes: []byte(vv)}, true, nil
	case []byte:
		return StringValue{Bytes: vv}, true, nil
	}
	return StringValue{}, true, d.conversionError(id, v, "StringValue")
}

func (d *Directory) conversionError(id int, v any, typ string) error {
	return fmt.Errorf("tag %q cannot be converted to %s, it is of type %T", d.TagName(id), typ, v)
}

// String returns e.g. "Exif IFD0 Directory (12 tags)".
func (d *Directory) String() string {
	return fmt.Sprintf("%s Directory (%d tags)", d.Name(), d.TagCount())
}

type integer interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~int | ~int64
}

func convertInts[T integer](s []T) []int {
	ints := make([]int, len(s))
	for i, v := range s {
		ints[i] = int(v)
	}
	return ints
}

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int64:
		if vv < math.MinInt || vv > math.MaxInt {
			return 0, false
		}
		return int(vv), true
	case uint8:
		return int(vv), true
	case int8:
		return int(vv), true
	case uint16:
		return int(vv), true
	case int16:
		return int(vv), true
	case uint32:
		return int(vv), true
	case int32:
		return int(vv), true
	case float32:
		return int(vv), true
	case float64:
		return int(vv), true
	case Rational:
		return vv.Int(), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(vv))
		return i, err == nil
	case StringValue:
		i, err := strconv.Atoi(strings.TrimSpace(vv.String()))
		return i, err == nil
	case []int:
		if len(vv) == 1 {
			return vv[0], true
		}
	case []uint8:
		if len(vv) == 1 {
			return int(vv[0]), true
		}
	case []uint16:
		if len(vv) == 1 {
			return int(vv[0]), true
		}
	case []uint32:
		if len(vv) == 1 {
			return int(vv[0]), true
		}
	}
	return 0, false
}

// formatValue formats v for display; arrays are space separated.
func formatValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case StringValue:
		return vv.String()
	case Rational:
		return vv.SimpleString(true)
	case []Rational:
		parts := make([]string, len(vv))
		for i, r := range vv {
			parts[i] = r.SimpleString(true)
		}
		return strings.Join(parts, " ")
	case []byte:
		return joinInts(convertInts(vv))
	case []int8:
		return joinInts(convertInts(vv))
	case []uint16:
		return joinInts(convertInts(vv))
	case []int16:
		return joinInts(convertInts(vv))
	case []uint32:
		return joinInts(convertInts(vv))
	case []int32:
		return joinInts(convertInts(vv))
	case []int:
		return joinInts(vv)
	case []string:
		return strings.Join(vv, " ")
	case []float32:
		parts := make([]string, len(vv))
		for i, f := range vv {
			parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
		}
		return strings.Join(parts, " ")
	case []float64:
		parts := make([]string, len(vv))
		for i, f := range vv {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func joinInts(ints []int) string {
	var sb strings.Builder
	for i, v := range ints {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}
