package steamidutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ShortID is the bracketed [L:1:W] form, where L is the account type letter
// and W the folded account number and id bit.
type ShortID struct {
	Type uint8
	ID   uint32
	// AccountNumber must be below 1<<31 so that it folds into 32 bits.
	AccountNumber uint32
}

// PackedNumber returns W, the number printed in the short form. It is not
// the account number.
func (s ShortID) PackedNumber() uint32 {
	return fold(s.AccountNumber, s.ID)
}

// String formats the id as [L:1:W]. Parsers never produce a type outside
// the table; a constructed one formats with an empty letter, which
// ParseShortID rejects.
func (s ShortID) String() string {
	var letter string

	if t, err := LookupAccountType(s.Type); err == nil {
		letter = t.Letter()
	}

	return fmt.Sprintf("[%s:1:%d]", letter, s.PackedNumber())
}

// ToFullID returns the 64-bit form in universe 1, instance 1.
func (s ShortID) ToFullID() FullID {
	return FullID{
		Universe:     1,
		Type:         s.Type,
		Instance:     DesktopInstance,
		PackedNumber: s.PackedNumber(),
	}
}

// ToLegacyID reuses the type as the legacy universe.
func (s ShortID) ToLegacyID() LegacyID {
	return LegacyID{
		Universe:      s.Type,
		ID:            s.ID,
		AccountNumber: s.AccountNumber,
	}
}

// URL returns the community URL with the short form as the last path
// segment.
func (s ShortID) URL() (string, bool) {
	return profileURL(s.Type, s.String())
}

func (s ShortID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ShortID) UnmarshalText(text []byte) error {
	id, err := ParseShortID(string(text))
	if err != nil {
		return err
	}

	*s = id

	return nil
}

// ParseShortID parses [L:1:W]. The middle field is not checked.
func ParseShortID(text string) (ShortID, error) {
	inner, ok := strings.CutPrefix(text, "[")
	if !ok {
		return ShortID{}, malformed(text, "missing opening bracket")
	}

	inner, ok = strings.CutSuffix(inner, "]")
	if !ok {
		return ShortID{}, malformed(text, "missing closing bracket")
	}

	parts := strings.Split(inner, ":")
	if len(parts) != 3 {
		return ShortID{}, malformed(text, "want 3 colon-separated fields, got %d", len(parts))
	}

	typ, err := AccountTypeByLetter(parts[0])
	if err != nil {
		return ShortID{}, fmt.Errorf("lookup type: %w", err)
	}

	packed, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return ShortID{}, fmt.Errorf("%w: parse packed number: %w", ErrMalformedID, err)
	}

	accountNumber, id := unfold(uint32(packed))

	s := ShortID{
		Type:          typ,
		ID:            id,
		AccountNumber: accountNumber,
	}

	return s, nil
}
