package steamidutil

import (
	"fmt"
	"strconv"
	"strings"
)

const legacyPrefix = "STEAM_"

// LegacyID is the STEAM_X:Y:Z form. It only carries an account number and
// its low bit; the universe digit is dropped when converting to the 64-bit
// form.
type LegacyID struct {
	Universe uint8
	ID       uint32
	// AccountNumber must be below 1<<31 so that it folds into 32 bits.
	AccountNumber uint32
}

func (l LegacyID) String() string {
	return fmt.Sprintf("%s%d:%d:%d", legacyPrefix, l.Universe, l.ID, l.AccountNumber)
}

// ToFullID returns the 64-bit form. Universe, type and instance are always 1.
func (l LegacyID) ToFullID() FullID {
	return FullID{
		Universe:     1,
		Type:         TypeIndividual,
		Instance:     DesktopInstance,
		PackedNumber: fold(l.AccountNumber, l.ID),
	}
}

// ToShortID reinterprets the fields positionally: the type is taken from ID
// and the short id's ID from AccountNumber.
func (l LegacyID) ToShortID() ShortID {
	return ShortID{
		Type: uint8(l.ID),
		ID:   l.AccountNumber,
	}
}

func (l LegacyID) URL() (string, bool) {
	return l.ToFullID().URL()
}

func (l LegacyID) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LegacyID) UnmarshalText(text []byte) error {
	id, err := ParseLegacyID(string(text))
	if err != nil {
		return err
	}

	*l = id

	return nil
}

// ParseLegacyID parses STEAM_X:Y:Z where X is a single digit, Y is 0 or 1
// and Z is below 1<<31.
func ParseLegacyID(text string) (LegacyID, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return LegacyID{}, malformed(text, "want 3 colon-separated fields, got %d", len(parts))
	}

	digit, ok := strings.CutPrefix(parts[0], legacyPrefix)
	if !ok || len(digit) != 1 {
		return LegacyID{}, malformed(text, "want %sX prefix", legacyPrefix)
	}

	universe, err := strconv.ParseUint(digit, 10, 8)
	if err != nil {
		return LegacyID{}, fmt.Errorf("%w: parse universe: %w", ErrMalformedID, err)
	}

	id, err := strconv.ParseUint(parts[1], 10, 1)
	if err != nil {
		return LegacyID{}, fmt.Errorf("%w: parse id: %w", ErrMalformedID, err)
	}

	accountNumber, err := strconv.ParseUint(parts[2], 10, 31)
	if err != nil {
		return LegacyID{}, fmt.Errorf("%w: parse account number: %w", ErrMalformedID, err)
	}

	l := LegacyID{
		Universe:      uint8(universe),
		ID:            uint32(id),
		AccountNumber: uint32(accountNumber),
	}

	return l, nil
}
