package idconvert_test

import (
	"context"
	"fmt"
	"steamids/idconvert"
	"steamids/steamidutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLegacy(t *testing.T) {
	c, err := idconvert.Convert(" STEAM_0:0:1337\n")
	require.NoError(t, err)

	assert.Equal(t, "STEAM_0:0:1337", c.Input)
	assert.Equal(t, steamidutil.FormLegacy, c.Form)
	assert.Equal(t, "STEAM_0:0:1337", c.Legacy.String())
	assert.Equal(t, "[U:1:2674]", c.Short.String())
	assert.Equal(t, "76561197960268402", c.Full.String())
	assert.Equal(t, "Individual", c.Type.Name)
	assert.Equal(t, "Public", c.Universe)
	assert.Equal(t, "https://steamcommunity.com/profiles/76561197960268402", c.URL)
}

func TestConvertShortClan(t *testing.T) {
	c, err := idconvert.Convert("[g:1:4]")
	require.NoError(t, err)

	assert.Equal(t, steamidutil.FormShort, c.Form)
	assert.Equal(t, "103582795724488708", c.Full.String())
	assert.Equal(t, "STEAM_7:0:2", c.Legacy.String())
	assert.Equal(t, "https://steamcommunity.com/gid/103582795724488708", c.URL)
}

func TestConvertFullWithoutURL(t *testing.T) {
	full := steamidutil.FullID{Universe: 1, Type: steamidutil.TypeGameServer, Instance: 0, PackedNumber: 10}

	c, err := idconvert.Convert(fmt.Sprint(full.Pack()))
	require.NoError(t, err)

	assert.Equal(t, steamidutil.FormFull, c.Form)
	assert.Equal(t, full, c.Full)
	assert.Empty(t, c.URL)
	assert.Equal(t, "GameServer", c.Type.Name)
}

func TestConvertErrors(t *testing.T) {
	_, err := idconvert.Convert("STEAM_0:2:1")
	assert.ErrorIs(t, err, steamidutil.ErrMalformedID)

	// 2*3000000000+1 does not fit the 32-bit packed number
	_, err = idconvert.Convert("STEAM_0:1:3000000000")
	assert.ErrorIs(t, err, steamidutil.ErrMalformedID)

	_, err = idconvert.Convert("[Z:1:1]")
	assert.ErrorIs(t, err, steamidutil.ErrUnknownTypeLetter)

	// type 15 decodes but has no table entry
	_, err = idconvert.Convert(fmt.Sprint(uint64(15) << 52))
	assert.ErrorIs(t, err, steamidutil.ErrTypeOutOfRange)
}

func TestConvertAllKeepsOrder(t *testing.T) {
	inputs := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		inputs = append(inputs, fmt.Sprintf("STEAM_0:%d:%d", i%2, i))
		inputs = append(inputs, "garbage")
	}

	results, err := idconvert.ConvertAll(context.Background(), inputs, 8)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, c := range results {
		assert.Equal(t, inputs[i], c.Input)

		if i%2 == 1 {
			assert.ErrorIs(t, c.Err, steamidutil.ErrMalformedID)
			continue
		}

		require.NoError(t, c.Err)
		assert.Equal(t, uint32(i/2), c.Full.AccountNumber())
	}
}

func TestConvertAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idconvert.ConvertAll(ctx, []string{"STEAM_0:0:1"}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToHTTP(t *testing.T) {
	c, err := idconvert.Convert("76561197960268402")
	require.NoError(t, err)

	r := idconvert.ToHTTP(c)
	assert.Equal(t, "STEAM_1:0:1337", r.SteamID)
	assert.Equal(t, "[U:1:2674]", r.SteamID3)
	assert.Equal(t, "76561197960268402", r.SteamID64)
	assert.Equal(t, uint32(1337), r.AccountID)
	assert.Equal(t, "U", r.AccountType.Letter)
	assert.Equal(t, uint64(0x0110000100000000), r.AccountType.SteamID64Ident)
	assert.Empty(t, r.Error)

	failed := idconvert.ToHTTP(idconvert.Conversion{Input: "x", Err: steamidutil.ErrMalformedID})
	assert.Equal(t, "x", failed.Input)
	assert.NotEmpty(t, failed.Error)
}

func TestToHTTPPending(t *testing.T) {
	full := steamidutil.FullID{Universe: 1, Type: steamidutil.TypePending, Instance: 1, PackedNumber: 8}

	c, err := idconvert.Convert(fmt.Sprint(full.Pack()))
	require.NoError(t, err)

	r := idconvert.ToHTTP(c)
	assert.Equal(t, "STEAM_ID_PENDING", r.Display)
	assert.Equal(t, fmt.Sprint(full.Pack()), r.SteamID64)
}
