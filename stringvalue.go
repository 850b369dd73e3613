// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// StringValue holds undecoded string bytes and an optional charset.
// Decoding is deferred until String is called, as many tags carry text
// in an ambiguous or vendor specific encoding.
type StringValue struct {
	Bytes []byte

	// Charset used to decode Bytes. If nil, UTF-8 is assumed, with
	// ISO-8859-1 as a fallback for invalid UTF-8.
	Charset encoding.Encoding
}

// String decodes the bytes. Undecodable input falls back to the default decoding.
func (s StringValue) String() string {
	str, err := decodeString(s.Bytes, s.Charset)
	if err != nil {
		str, _ = decodeString(s.Bytes, nil)
	}
	return str
}

func decodeString(b []byte, charset encoding.Encoding) (string, error) {
	if charset != nil {
		out, err := charset.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
