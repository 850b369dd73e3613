// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// toDegrees converts a degrees, minutes, seconds triplet to decimal degrees.
func toDegrees(v []Rational) (float64, error) {
	if len(v) != 3 {
		return 0, fmt.Errorf("expected 3 values, got %d", len(v))
	}
	deg := v[0].Float64()
	min := v[1].Float64()
	sec := v[2].Float64()
	return deg + min/60 + sec/3600, nil
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

func trimBytesNulls(b []byte) []byte {
	var lo, hi int
	for lo = 0; lo < len(b) && b[lo] == 0; lo++ {
	}
	for hi = len(b) - 1; hi >= 0 && b[hi] == 0; hi-- {
	}
	if lo > hi {
		return nil
	}
	return b[lo : hi+1]
}

func firstUpper(s string) string {
	if s == "" {
		return ""
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// hasPrefixFold is strings.HasPrefix ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
