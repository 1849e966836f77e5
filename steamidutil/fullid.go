package steamidutil

import (
	"fmt"
	"strconv"
)

// Bit layout of the 64-bit form, low to high:
//
//	32: packed number (account number << 1 | id)
//	20: instance
//	 4: type
//	 8: universe
const (
	instanceShift = 32
	typeShift     = 52
	universeShift = 56

	packedNumberMask = 1<<32 - 1
	instanceMask     = 1<<20 - 1
	typeMask         = 1<<4 - 1
	universeMask     = 1<<8 - 1
)

// DesktopInstance is the instance used by user accounts.
const DesktopInstance = 1

// FullID is the 64-bit form, also known as the community id.
type FullID struct {
	Universe     uint8
	Type         uint8
	Instance     uint32
	PackedNumber uint32
}

// Pack returns the 64-bit integer. Fields wider than their slot are
// truncated.
func (f FullID) Pack() uint64 {
	return uint64(f.PackedNumber) |
		(uint64(f.Instance)&instanceMask)<<instanceShift |
		(uint64(f.Type)&typeMask)<<typeShift |
		(uint64(f.Universe)&universeMask)<<universeShift
}

func Unpack(v uint64) FullID {
	return FullID{
		Universe:     uint8(v >> universeShift & universeMask),
		Type:         uint8(v >> typeShift & typeMask),
		Instance:     uint32(v >> instanceShift & instanceMask),
		PackedNumber: uint32(v & packedNumberMask),
	}
}

// String returns STEAM_ID_PENDING for pending accounts, UNKNOWN for invalid
// ones and the decimal 64-bit integer otherwise.
func (f FullID) String() string {
	switch f.Type {
	case TypePending:
		return "STEAM_ID_PENDING"
	case TypeInvalid:
		return "UNKNOWN"
	default:
		return strconv.FormatUint(f.Pack(), 10)
	}
}

// AccountNumber returns the real account number.
func (f FullID) AccountNumber() uint32 {
	accountNumber, _ := unfold(f.PackedNumber)
	return accountNumber
}

// ID returns the low bit of the packed number.
func (f FullID) ID() uint32 {
	_, id := unfold(f.PackedNumber)
	return id
}

// ToLegacyID reuses the type as the legacy universe.
func (f FullID) ToLegacyID() LegacyID {
	return LegacyID{
		Universe:      f.Type,
		ID:            f.ID(),
		AccountNumber: f.AccountNumber(),
	}
}

func (f FullID) ToShortID() ShortID {
	return ShortID{
		Type:          f.Type,
		ID:            f.ID(),
		AccountNumber: f.AccountNumber(),
	}
}

// URL returns the community URL built from the decimal 64-bit integer. It
// returns false when the type has no URL path, including a constructed type
// outside the table; ParseFullID never yields one.
func (f FullID) URL() (string, bool) {
	return profileURL(f.Type, strconv.FormatUint(f.Pack(), 10))
}

// MarshalText always writes the decimal integer so that pending and invalid
// ids survive a round trip.
func (f FullID) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, f.Pack(), 10), nil
}

func (f *FullID) UnmarshalText(text []byte) error {
	id, err := ParseFullID(string(text))
	if err != nil {
		return err
	}

	*f = id

	return nil
}

// ParseFullID parses the decimal 64-bit integer. Type codes outside the
// account type table are rejected with ErrTypeOutOfRange.
func ParseFullID(text string) (FullID, error) {
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return FullID{}, fmt.Errorf("%w: parse integer: %w", ErrMalformedID, err)
	}

	f := Unpack(v)

	if _, err := LookupAccountType(f.Type); err != nil {
		return FullID{}, fmt.Errorf("lookup type: %w", err)
	}

	return f, nil
}
