package idstore_test

import (
	"context"
	"steamids/idconvert"
	"steamids/idstore"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsSkipsFailures(t *testing.T) {
	conversions, err := idconvert.ConvertAll(context.Background(), []string{"[g:1:4]", "nope", "STEAM_0:1:7"}, 2)
	require.NoError(t, err)

	updated := time.Now()
	records := idstore.Records(conversions, updated)
	require.Len(t, records, 2)

	assert.Equal(t, uint64(103582795724488708), records[0].SteamID64)
	assert.Equal(t, "[g:1:4]", records[0].SteamID3)
	assert.Equal(t, uint8(7), records[0].AccountType)
	assert.Equal(t, "https://steamcommunity.com/gid/103582795724488708", records[0].URL)

	assert.Equal(t, "STEAM_0:1:7", records[1].SteamID)
	assert.Equal(t, "[U:1:15]", records[1].SteamID3)
	assert.Equal(t, updated, records[1].Updated)
}

func TestRecordToHTTP(t *testing.T) {
	r := idstore.Record{
		SteamID64:   76561197960268402,
		SteamID:     "STEAM_0:0:1337",
		SteamID3:    "[U:1:2674]",
		AccountType: 1,
		Updated:     time.UnixMilli(1700000000000),
	}

	resp := r.ToHTTP()

	assert.Equal(t, "76561197960268402", resp.SteamID64)
	assert.Equal(t, "[U:1:2674]", resp.SteamID3)
	assert.Equal(t, int64(1700000000000), resp.Updated)
}
