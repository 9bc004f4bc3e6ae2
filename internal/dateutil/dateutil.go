// Package dateutil resolves the "auto" date syntax used by sign-off
// configuration into concrete date strings.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat matches the MM-DD-YY convention of task metadata.
const DefaultDateFormat = "MM-DD-YY"

// layoutTokens maps format tokens to Go layout fragments, longest first.
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets are named shortcuts usable as "auto:<preset>".
var DatePresets = map[string]string{
	"mtl":      "MM-DD-YY",
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD, D)
// into a Go time layout. Text inside [brackets] is copied literally; any other
// non-token character is kept as is.
func ParseDateFormat(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				pos := len(format) - len(rest)
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			layout.WriteString(literal)
			rest = after
			continue
		}

		n := writeToken(&layout, rest)
		rest = rest[n:]
	}

	return layout.String(), nil
}

// writeToken writes the layout for the token at the start of s, or the first
// byte when none matches, and returns how many bytes were consumed.
func writeToken(b *strings.Builder, s string) int {
	for _, t := range layoutTokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.layout)
			return len(t.token)
		}
	}
	b.WriteByte(s[0])
	return 1
}

// autoLayout returns the Go layout for an "auto" or "auto:FORMAT" value.
// ok is false when value is a literal date.
func autoLayout(value string) (layout string, ok bool, err error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return "", false, nil
	}

	format := DefaultDateFormat
	if lower != "auto" {
		spec, found := strings.CutPrefix(value, value[:4]+":")
		if !found {
			return "", true, fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		if spec == "" {
			return "", true, fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		format = spec
		if preset, isPreset := DatePresets[strings.ToLower(spec)]; isPreset {
			format = preset
		}
	}

	layout, err = ParseDateFormat(format)
	return layout, true, err
}

// ResolveDate expands "auto" (DefaultDateFormat), "auto:FORMAT" and
// "auto:<preset>" using now. Any other value is returned unchanged.
func ResolveDate(value string, now time.Time) (string, error) {
	layout, isAuto, err := autoLayout(value)
	if err != nil {
		return "", err
	}
	if !isAuto {
		return value, nil
	}
	return now.Format(layout), nil
}

// ValidateDateValue reports whether value would resolve without error.
func ValidateDateValue(value string) error {
	_, _, err := autoLayout(value)
	return err
}
