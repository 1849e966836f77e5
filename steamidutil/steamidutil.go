// Package steamidutil converts Steam account identifiers between the legacy
// STEAM_X:Y:Z form, the bracketed [L:1:W] form and the 64-bit integer form.
//
// Every identifier reduces to a (universe, type, instance, account number)
// tuple. The 64-bit form is the lossless one; the two text forms are views
// of it. Conversions between the text forms reuse fields directly instead of
// translating them, so LegacyID and ShortID conversions keep the field
// layout of the types they came from.
package steamidutil

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedID is returned when text does not have the delimiters,
	// brackets or numeric fields its form requires.
	ErrMalformedID = errors.New("malformed steam id")

	// ErrUnknownTypeLetter is returned when a short-form letter matches no
	// account type.
	ErrUnknownTypeLetter = errors.New("unknown account type letter")

	// ErrTypeOutOfRange is returned when an account type code is not in the
	// account type table.
	ErrTypeOutOfRange = errors.New("account type out of range")

	// ErrUniverseOutOfRange is returned when a universe has no known name.
	ErrUniverseOutOfRange = errors.New("universe out of range")
)

// Form names one of the three textual forms.
type Form string

const (
	FormLegacy Form = "legacy"
	FormShort  Form = "short"
	FormFull   Form = "full"
)

// DetectForm picks the form from the shape of text: a STEAM_ prefix is
// legacy, an opening bracket is short and anything else is the 64-bit
// integer. It does not validate the rest of the text.
func DetectForm(text string) Form {
	switch {
	case strings.HasPrefix(text, legacyPrefix):
		return FormLegacy
	case strings.HasPrefix(text, "["):
		return FormShort
	default:
		return FormFull
	}
}

// ParseAny parses any of the three textual forms and returns the 64-bit
// form.
func ParseAny(text string) (FullID, error) {
	switch DetectForm(text) {
	case FormLegacy:
		id, err := ParseLegacyID(text)
		if err != nil {
			return FullID{}, fmt.Errorf("parse legacy id: %w", err)
		}

		return id.ToFullID(), nil
	case FormShort:
		id, err := ParseShortID(text)
		if err != nil {
			return FullID{}, fmt.Errorf("parse short id: %w", err)
		}

		return id.ToFullID(), nil
	default:
		id, err := ParseFullID(text)
		if err != nil {
			return FullID{}, fmt.Errorf("parse full id: %w", err)
		}

		return id, nil
	}
}

func malformed(text, format string, a ...any) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedID, text, fmt.Sprintf(format, a...))
}

// fold packs an account number and its low bit into the number printed in
// the short form. accountNumber must be below 1<<31 or the result wraps.
func fold(accountNumber, id uint32) uint32 {
	return 2*accountNumber + id
}

func unfold(packed uint32) (accountNumber, id uint32) {
	return packed >> 1, packed & 1
}
