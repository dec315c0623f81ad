// Package confval converts typed scalar values to and from their
// configuration-file text form. Formatting variants are selected with a
// small flag set; the zero flag value means the default format. The
// configuration engine treats values it does not convert itself as
// opaque text, so callers with custom types can bring their own pair of
// conversions and still store the result through the string accessors.
package confval

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags select a formatting variant for scalar conversion.
type Flags uint8

const (
	// Oct formats and parses integers in octal with a leading 0.
	Oct Flags = 1 << iota
	// Hex formats and parses integers in hexadecimal with a leading 0x.
	Hex
	// Color formats and parses integers as #rrggbb color literals.
	Color
	// Scientific forces scientific notation when formatting floats.
	Scientific
)

// Scalar is the set of types the converter understands. The constraint
// intentionally lists exact types: conversion dispatches on the dynamic
// type, and custom named types are expected to provide their own
// conversion pair instead.
type Scalar interface {
	bool | string |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// trueWords and falseWords are the accepted boolean spellings, compared
// case-insensitively. An empty string reads as false.
var (
	trueWords  = []string{"true", "yes", "on", "1"}
	falseWords = []string{"false", "no", "off", "0", ""}
)

// ToString formats value according to flags.
func ToString[T Scalar](value T, flags Flags) (string, error) {
	switch v := any(value).(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return formatInt(int64(v), flags)
	case int8:
		return formatInt(int64(v), flags)
	case int16:
		return formatInt(int64(v), flags)
	case int32:
		return formatInt(int64(v), flags)
	case int64:
		return formatInt(v, flags)
	case uint:
		return formatUint(uint64(v), flags)
	case uint8:
		return formatUint(uint64(v), flags)
	case uint16:
		return formatUint(uint64(v), flags)
	case uint32:
		return formatUint(uint64(v), flags)
	case uint64:
		return formatUint(v, flags)
	case float32:
		return formatFloat(float64(v), flags, 32), nil
	case float64:
		return formatFloat(v, flags, 64), nil
	}
	return "", fmt.Errorf("confval: unsupported type %T", value)
}

// FromString parses s according to flags. Missing keys should not reach
// the converter; the zero value of each type is the caller's default.
func FromString[T Scalar](s string, flags Flags) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *string:
		*p = s
	case *bool:
		*p, err = parseBool(s)
	case *int:
		var v int64
		v, err = parseInt(s, flags, strconv.IntSize)
		*p = int(v)
	case *int8:
		var v int64
		v, err = parseInt(s, flags, 8)
		*p = int8(v)
	case *int16:
		var v int64
		v, err = parseInt(s, flags, 16)
		*p = int16(v)
	case *int32:
		var v int64
		v, err = parseInt(s, flags, 32)
		*p = int32(v)
	case *int64:
		*p, err = parseInt(s, flags, 64)
	case *uint:
		var v uint64
		v, err = parseUint(s, flags, strconv.IntSize)
		*p = uint(v)
	case *uint8:
		var v uint64
		v, err = parseUint(s, flags, 8)
		*p = uint8(v)
	case *uint16:
		var v uint64
		v, err = parseUint(s, flags, 16)
		*p = uint16(v)
	case *uint32:
		var v uint64
		v, err = parseUint(s, flags, 32)
		*p = uint32(v)
	case *uint64:
		*p, err = parseUint(s, flags, 64)
	case *float32:
		var v float64
		v, err = parseFloat(s, 32)
		*p = float32(v)
	case *float64:
		*p, err = parseFloat(s, 64)
	default:
		err = fmt.Errorf("confval: unsupported type %T", out)
	}
	return out, err
}

func formatInt(v int64, flags Flags) (string, error) {
	switch {
	case flags&Color != 0:
		if v < 0 || v > 0xffffff {
			return "", fmt.Errorf("confval: value %d out of color range", v)
		}
		return fmt.Sprintf("#%06x", v), nil
	case flags&Hex != 0:
		if v < 0 {
			return "-0x" + strconv.FormatInt(-v, 16), nil
		}
		return "0x" + strconv.FormatInt(v, 16), nil
	case flags&Oct != 0:
		if v < 0 {
			return "-0" + strconv.FormatInt(-v, 8), nil
		}
		if v == 0 {
			return "0", nil
		}
		return "0" + strconv.FormatInt(v, 8), nil
	}
	return strconv.FormatInt(v, 10), nil
}

func formatUint(v uint64, flags Flags) (string, error) {
	switch {
	case flags&Color != 0:
		if v > 0xffffff {
			return "", fmt.Errorf("confval: value %d out of color range", v)
		}
		return fmt.Sprintf("#%06x", v), nil
	case flags&Hex != 0:
		return "0x" + strconv.FormatUint(v, 16), nil
	case flags&Oct != 0:
		if v == 0 {
			return "0", nil
		}
		return "0" + strconv.FormatUint(v, 8), nil
	}
	return strconv.FormatUint(v, 10), nil
}

func formatFloat(v float64, flags Flags, bits int) string {
	if flags&Scientific != 0 {
		return strconv.FormatFloat(v, 'e', -1, bits)
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

func parseBool(s string) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, w := range trueWords {
		if lower == w {
			return true, nil
		}
	}
	for _, w := range falseWords {
		if lower == w {
			return false, nil
		}
	}
	return false, fmt.Errorf("confval: %q is not a boolean", s)
}

func parseInt(s string, flags Flags, bits int) (int64, error) {
	digits, base, err := integerBase(s, flags)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(digits, base, bits)
}

func parseUint(s string, flags Flags, bits int) (uint64, error) {
	digits, base, err := integerBase(s, flags)
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(digits, "-") {
		return 0, fmt.Errorf("confval: %q is negative", s)
	}
	return strconv.ParseUint(digits, base, bits)
}

// integerBase strips the flag-specific prefix from s and returns the
// remaining digits with the base to parse them in. The sign, when
// present, comes before the prefix: -0x1f, -017.
func integerBase(s string, flags Flags) (string, int, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var digits string
	var base int
	switch {
	case flags&Color != 0:
		if !strings.HasPrefix(s, "#") || len(s) != 7 {
			return "", 0, fmt.Errorf("confval: %q is not a #rrggbb color", s)
		}
		digits, base = s[1:], 16
	case flags&Hex != 0:
		digits = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		if digits == s {
			return "", 0, fmt.Errorf("confval: %q has no 0x prefix", s)
		}
		base = 16
	case flags&Oct != 0:
		digits, base = s, 8
	default:
		digits, base = s, 10
	}

	if negative {
		digits = "-" + digits
	}
	return digits, base, nil
}

func parseFloat(s string, bits int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), bits)
}
