// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"
	"math"
)

// Numeric conversion errors. Callers branch on these to decide whether a
// line is a data point or free text, so the three kinds stay distinct.
var (
	ErrOverflow      = errors.New("value too large")
	ErrUnderflow     = errors.New("value too small")
	ErrInconvertible = errors.New("not an integer")
)

// ParseInt converts s to a signed 64-bit integer. The entire string must be
// consumed: optional leading whitespace, an optional sign, an optional base
// prefix (0x or a leading 0 for octal) and at least one digit.
//
// Range errors take precedence over trailing characters, so
// "99999999999999999999x" reports ErrOverflow rather than ErrInconvertible.
func ParseInt(s string) (int64, error) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	base := uint64(10)
	digitsStart := i
	if i < len(s) && s[i] == '0' {
		if i+1 < len(s) {
			switch s[i+1] {
			case 'x', 'X':
				base = 16
				i += 2
			default:
				// leading zero: octal, the zero itself is a digit
				base = 8
			}
		}
		digitsStart = i
	}

	// magnitude limit depends on the sign
	limit := uint64(math.MaxInt64)
	if negative {
		limit = uint64(math.MaxInt64) + 1
	}

	var acc uint64
	outOfRange := false
	for i < len(s) {
		d, ok := digitValue(s[i])
		if !ok || d >= base {
			break
		}
		if !outOfRange {
			if acc > (limit-d)/base {
				outOfRange = true
			} else {
				acc = acc*base + d
			}
		}
		i++
	}

	if outOfRange {
		if negative {
			return 0, ErrUnderflow
		}
		return 0, ErrOverflow
	}
	if i == digitsStart || i != len(s) {
		return 0, ErrInconvertible
	}

	if negative {
		if acc == uint64(math.MaxInt64)+1 {
			return math.MinInt64, nil
		}
		return -int64(acc), nil
	}
	return int64(acc), nil
}

func digitValue(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 10, true
	case c >= 'A' && c <= 'Z':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
