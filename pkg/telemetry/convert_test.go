// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"
	"math"
	"testing"
)

// ============================================================
// ParseInt Tests
// ============================================================

func TestParseInt_Valid(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"42", 42},
		{"+17", 17},
		{"-17", -17},
		{"  12", 12},
		{"\t-3", -3},
		{"0x1F", 31},
		{"0X1f", 31},
		{"-0x10", -16},
		{"010", 8},
		{"9223372036854775807", math.MaxInt64},
		{"-9223372036854775808", math.MinInt64},
		{"0x7FFFFFFFFFFFFFFF", math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInt(tt.input)
			if err != nil {
				t.Fatalf("ParseInt(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseInt(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseInt_Errors(t *testing.T) {
	tests := []struct {
		input    string
		expected error
	}{
		{"", ErrInconvertible},
		{" ", ErrInconvertible},
		{"-", ErrInconvertible},
		{"+", ErrInconvertible},
		{"abc", ErrInconvertible},
		{"12abc", ErrInconvertible},
		{"12 ", ErrInconvertible},
		{"1.5", ErrInconvertible},
		{"1e3", ErrInconvertible},
		{"0x", ErrInconvertible},
		{"08", ErrInconvertible},
		{"0b101", ErrInconvertible},
		{"0o17", ErrInconvertible},
		{"0O17", ErrInconvertible},
		{"1_000", ErrInconvertible},
		{"--1", ErrInconvertible},
		{"9223372036854775808", ErrOverflow},
		{"99999999999999999999", ErrOverflow},
		{"0x10000000000000000", ErrOverflow},
		{"99999999999999999999x", ErrOverflow},
		{"-9223372036854775809", ErrUnderflow},
		{"-99999999999999999999", ErrUnderflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInt(tt.input)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("ParseInt(%q) error = %v, expected %v", tt.input, err, tt.expected)
			}
			if got != 0 {
				t.Errorf("ParseInt(%q) should return 0 on error, got %d", tt.input, got)
			}
		})
	}
}

func TestParseInt_ErrorKindsDistinct(t *testing.T) {
	kinds := []error{ErrOverflow, ErrUnderflow, ErrInconvertible}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
