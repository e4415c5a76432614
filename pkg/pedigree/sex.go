package pedigree

import (
	"strings"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
)

// Sex is the recorded sex of an individual. The zero value is invalid so
// that an unset field is caught by validation.
type Sex int

const (
	// Male individuals may appear as fathers and are drawn as squares.
	Male Sex = iota + 1
	// Female individuals may appear as mothers and are drawn as circles.
	Female
)

// String returns "male" or "female", or "unknown" for invalid values.
func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// Valid reports whether s is Male or Female.
func (s Sex) Valid() bool { return s == Male || s == Female }

// ParseSex parses a textual sex code. It accepts "male", "m" and "1" for
// [Male] and "female", "f" and "2" for [Female], ignoring case and
// surrounding whitespace.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1":
		return Male, nil
	case "female", "f", "2":
		return Female, nil
	}
	return 0, perrors.New(perrors.ErrCodeInvalidSex, "invalid sex %q (must be male or female)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Sex) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, perrors.New(perrors.ErrCodeInvalidSex, "invalid sex value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sex) UnmarshalText(text []byte) error {
	v, err := ParseSex(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
