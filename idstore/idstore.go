package idstore

import (
	"context"
	"steamids/idconvert"
	"steamids/steamidhttp"
	"strconv"
	"time"
)

// Record is one resolved account, keyed by its 64-bit id.
type Record struct {
	SteamID64   uint64    `json:"steamid64,string"`
	SteamID     string    `json:"steamid"`
	SteamID3    string    `json:"steamid3"`
	AccountType uint8     `json:"account_type"`
	URL         string    `json:"url,omitempty"`
	Updated     time.Time `json:"updated"`
}

type Store interface {
	InsertRecords(ctx context.Context, records []Record) error
	GetRecord(ctx context.Context, steamID64 uint64) (Record, bool, error)
	LookupSteamID(ctx context.Context, steamID string) (uint64, bool, error)
	Close() error
}

// NewRecord builds a record from a successful conversion.
func NewRecord(c idconvert.Conversion, updated time.Time) Record {
	return Record{
		SteamID64:   c.Full.Pack(),
		SteamID:     c.Legacy.String(),
		SteamID3:    c.Short.String(),
		AccountType: c.Full.Type,
		URL:         c.URL,
		Updated:     updated,
	}
}

// Records builds records for every conversion without an error.
func Records(conversions []idconvert.Conversion, updated time.Time) []Record {
	records := make([]Record, 0, len(conversions))

	for _, c := range conversions {
		if c.Err != nil {
			continue
		}

		records = append(records, NewRecord(c, updated))
	}

	return records
}

func (r Record) ToHTTP() steamidhttp.LookupResponse {
	return steamidhttp.LookupResponse{
		SteamID64:   strconv.FormatUint(r.SteamID64, 10),
		SteamID:     r.SteamID,
		SteamID3:    r.SteamID3,
		AccountType: r.AccountType,
		URL:         r.URL,
		Updated:     r.Updated.UnixMilli(),
	}
}
