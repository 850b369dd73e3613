// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffmeta

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

var (
	_ encoding.TextUnmarshaler = (*Rational)(nil)
	_ encoding.TextMarshaler   = Rational{}
)

// Rational is an immutable numerator/denominator pair.
// 0/0 is treated as zero, never as an error.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns a new Rational. It is not simplified.
func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 returns the float64 representation of r.
// It is 0 whenever the numerator is 0, including 0/0.
func (r Rational) Float64() float64 {
	if r.Num == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Float32 returns the float32 representation of r.
func (r Rational) Float32() float32 {
	return float32(r.Float64())
}

// Int returns the integer part of r.
func (r Rational) Int() int {
	return int(r.Float64())
}

// IsZero reports whether the numerator or the denominator is zero.
func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// IsInteger reports whether r can be represented as an integer without loss.
func (r Rational) IsInteger() bool {
	if r.Den == 0 {
		return r.Num == 0
	}
	return r.Den == 1 || r.Num%r.Den == 0
}

// Reciprocal returns Den/Num.
func (r Rational) Reciprocal() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// Simplified returns r with the greatest common divisor removed and
// a non-negative denominator.
func (r Rational) Simplified() Rational {
	gcd := func(a, b int64) int64 {
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		for b != 0 {
			a, b = b, a%b
		}
		return a
	}
	d := gcd(r.Num, r.Den)
	if d == 0 {
		return r
	}
	num, den := r.Num/d, r.Den/d
	if den < 0 {
		num, den = -num, -den
	}
	return Rational{Num: num, Den: den}
}

// Equal reports whether r and other have the same numeric value.
func (r Rational) Equal(other Rational) bool {
	return r.Float64() == other.Float64()
}

// String returns r as "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// SimpleString returns the simplest representation of r, e.g. "1/2", "3" or,
// if allowDecimal is set and the decimal form is short, "0.5".
func (r Rational) SimpleString(allowDecimal bool) string {
	if r.Den == 0 && r.Num != 0 {
		return r.String()
	}
	if r.IsInteger() {
		return strconv.Itoa(r.Int())
	}
	s := r.Simplified()
	if allowDecimal {
		if f := strconv.FormatFloat(s.Float64(), 'f', -1, 64); len(f) < 5 {
			return f
		}
	}
	return s.String()
}

func (r *Rational) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.Contains(s, "/") {
		num, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.Num = num
		r.Den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.Num, &r.Den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

func (r Rational) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}
