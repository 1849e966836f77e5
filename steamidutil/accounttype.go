package steamidutil

import (
	"fmt"
	"strings"
)

const (
	TypeInvalid uint8 = iota
	TypeIndividual
	TypeMultiseat
	TypeGameServer
	TypeAnonGameServer
	TypePending
	TypeContentServer
	TypeClan
	TypeChat
	TypeP2PSuperSeeder
	TypeAnonUser
)

// AccountType describes one account type code.
type AccountType struct {
	Number uint8
	// Letters holds every letter accepted for the type in the short form.
	// The first one is used when formatting. Types without a letter have an
	// empty string.
	Letters string
	Name    string
	Usable  bool
	// URLPath is the steamcommunity.com path segment, empty when the type
	// has no community page.
	URLPath string
	// SteamID64Ident is the header of a 64-bit id of this type with a zero
	// account number.
	SteamID64Ident uint64
}

// Letter returns the canonical short-form letter.
func (t AccountType) Letter() string {
	if t.Letters == "" {
		return ""
	}

	return t.Letters[:1]
}

var accountTypes = [...]AccountType{
	{Number: TypeInvalid, Letters: "I", Name: "Invalid"},
	{Number: TypeIndividual, Letters: "U", Name: "Individual", Usable: true, URLPath: "profiles", SteamID64Ident: 0x01100001 << 32},
	{Number: TypeMultiseat, Letters: "M", Name: "Multiseat", Usable: true},
	{Number: TypeGameServer, Letters: "G", Name: "GameServer", Usable: true},
	{Number: TypeAnonGameServer, Letters: "A", Name: "AnonGameServer", Usable: true},
	{Number: TypePending, Letters: "P", Name: "Pending"},
	{Number: TypeContentServer, Letters: "C", Name: "ContentServer"},
	{Number: TypeClan, Letters: "g", Name: "Clan", Usable: true, URLPath: "gid", SteamID64Ident: 0x017 << 52},
	{Number: TypeChat, Letters: "cLT", Name: "Chat", Usable: true},
	{Number: TypeP2PSuperSeeder, Name: "P2P SuperSeeder"},
	{Number: TypeAnonUser, Name: "AnonUser"},
}

// AccountTypes returns a copy of the account type table, indexed by type
// code.
func AccountTypes() []AccountType {
	types := make([]AccountType, len(accountTypes))
	copy(types, accountTypes[:])

	return types
}

func LookupAccountType(code uint8) (AccountType, error) {
	if int(code) >= len(accountTypes) {
		return AccountType{}, fmt.Errorf("%w: %d", ErrTypeOutOfRange, code)
	}

	return accountTypes[code], nil
}

// AccountTypeByLetter returns the code of the first account type accepting
// letter.
func AccountTypeByLetter(letter string) (uint8, error) {
	if len(letter) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTypeLetter, letter)
	}

	for _, t := range accountTypes {
		if strings.Contains(t.Letters, letter) {
			return t.Number, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownTypeLetter, letter)
}

var universes = [...]string{
	"Individual/Unspecified",
	"Public",
	"Beta",
	"Internal",
	"Dev",
	"RC",
}

func UniverseName(universe uint8) (string, error) {
	if int(universe) >= len(universes) {
		return "", fmt.Errorf("%w: %d", ErrUniverseOutOfRange, universe)
	}

	return universes[universe], nil
}

const communityURL = "https://steamcommunity.com"

// profileURL builds the community URL for an account of type code, or
// returns false when the type has no URL path.
func profileURL(code uint8, id string) (string, bool) {
	t, err := LookupAccountType(code)
	if err != nil || t.URLPath == "" {
		return "", false
	}

	return communityURL + "/" + t.URLPath + "/" + id, true
}
