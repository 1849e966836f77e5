package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"steamids/cmd/steamid-httpd/httpserveutil"
	"steamids/redisidstore"
	"steamids/steamidhttp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	individualSteamID64 = "76561197960268402"
	individualURL       = "https://steamcommunity.com/profiles/76561197960268402"
	// universe 1, type 15
	outOfRangeSteamID64 = "139611588448485376"
	// universe 1, game server 10
	gameServerSteamID64 = "85568392920039434"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestServer(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()

	if h.workers == 0 {
		h.workers = 2
	}

	if h.maxBatch == 0 {
		h.maxBatch = 10
	}

	h.now = func() time.Time { return fixedNow }

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := mux.NewRouter()
	httpserveutil.Register(r, logger, h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func newRedisHandler(t *testing.T) *Handler {
	t.Helper()

	mini := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})

	store := redisidstore.NewWithClient(client, redisidstore.DefaultConfig())
	t.Cleanup(func() { store.Close() })

	return &Handler{store: store}
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)

	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestConvert(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	var resp steamidhttp.ConvertResponse
	getJSON(t, srv.URL+"/api/v0/convert/STEAM_0:0:1337", http.StatusOK, &resp)

	assert.Equal(t, "legacy", resp.Form)
	assert.Equal(t, "STEAM_0:0:1337", resp.SteamID)
	assert.Equal(t, "[U:1:2674]", resp.SteamID3)
	assert.Equal(t, individualSteamID64, resp.SteamID64)
	assert.Equal(t, individualURL, resp.URL)
	assert.Equal(t, "Individual", resp.AccountType.Name)
}

func TestConvertShortID(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	var resp steamidhttp.ConvertResponse
	getJSON(t, srv.URL+"/api/v0/convert/%5BU:1:2674%5D", http.StatusOK, &resp)

	assert.Equal(t, "short", resp.Form)
	assert.Equal(t, individualSteamID64, resp.SteamID64)
	assert.Equal(t, uint32(1337), resp.AccountID)
}

func TestConvertBadInput(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	tests := map[string]string{
		"malformed":        "STEAM_0:2:1337",
		"account too wide": "STEAM_0:1:3000000000",
		"unknown letter":   "%5BQ:1:4%5D",
		"type range":       outOfRangeSteamID64,
		"not a number":     "hello",
	}

	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			getJSON(t, srv.URL+"/api/v0/convert/"+id, http.StatusBadRequest, nil)
		})
	}
}

func TestConvertBatch(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	resp := postJSON(t, srv.URL+"/api/v0/convert", `{"ids": ["STEAM_0:0:1337", "bogus", "[g:1:4]"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var batch steamidhttp.ConvertBatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))

	require.Len(t, batch.Results, 3)
	assert.Equal(t, individualSteamID64, batch.Results[0].SteamID64)
	assert.Equal(t, "bogus", batch.Results[1].Input)
	assert.NotEmpty(t, batch.Results[1].Error)
	assert.Equal(t, "103582795724488708", batch.Results[2].SteamID64)
}

func TestConvertBatchRejected(t *testing.T) {
	srv := newTestServer(t, &Handler{maxBatch: 2})

	tests := map[string]string{
		"empty":         `{"ids": []}`,
		"too many":      `{"ids": ["1", "2", "3"]}`,
		"unknown field": `{"ids": ["1"], "extra": true}`,
		"not json":      `ids=1`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v0/convert", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAccountTypes(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	var resp steamidhttp.AccountTypesResponse
	getJSON(t, srv.URL+"/api/v0/types", http.StatusOK, &resp)

	require.Len(t, resp.Types, 11)
	assert.Equal(t, "Invalid", resp.Types[0].Name)
	assert.Equal(t, "c", resp.Types[8].Letter)
	assert.Equal(t, "cLT", resp.Types[8].Letters)
	assert.Equal(t, uint64(0x0110000100000000), resp.Types[1].SteamID64Ident)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	resp := postJSON(t, srv.URL+"/api/v0/types", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLookupWithoutStore(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	getJSON(t, srv.URL+"/api/v0/lookup/STEAM_0:0:1337", http.StatusNotFound, nil)
}

func TestLookupRecordedConversion(t *testing.T) {
	srv := newTestServer(t, newRedisHandler(t))

	getJSON(t, srv.URL+"/api/v0/lookup/STEAM_0:0:1337", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v0/convert/STEAM_0:0:1337", http.StatusOK, nil)

	for _, id := range []string{"STEAM_0:0:1337", "%5BU:1:2674%5D", individualSteamID64} {
		var resp steamidhttp.LookupResponse
		getJSON(t, srv.URL+"/api/v0/lookup/"+id, http.StatusOK, &resp)

		assert.Equal(t, individualSteamID64, resp.SteamID64)
		assert.Equal(t, "STEAM_0:0:1337", resp.SteamID)
		assert.Equal(t, "[U:1:2674]", resp.SteamID3)
		assert.Equal(t, uint8(1), resp.AccountType)
		assert.Equal(t, fixedNow.UnixMilli(), resp.Updated)
	}
}

func TestLookupBatchRecordsSkipFailures(t *testing.T) {
	srv := newTestServer(t, newRedisHandler(t))

	resp := postJSON(t, srv.URL+"/api/v0/convert", `{"ids": ["[g:1:4]", "bogus"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lookup steamidhttp.LookupResponse
	getJSON(t, srv.URL+"/api/v0/lookup/%5Bg:1:4%5D", http.StatusOK, &lookup)
	assert.Equal(t, "103582795724488708", lookup.SteamID64)

	getJSON(t, srv.URL+"/api/v0/lookup/bogus", http.StatusBadRequest, nil)
}

func TestProfileRedirect(t *testing.T) {
	srv := newTestServer(t, &Handler{})

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/profile/STEAM_0:0:1337")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, individualURL, resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/profile/" + gameServerSteamID64)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steamid-httpd.toml")

	data := []byte(`
port = "8080"
redis_url = "redis://cache:6379/1"
record_ttl = "1h"
max_batch = 50
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Address)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.RecordTTL)
	assert.Equal(t, 50, cfg.MaxBatch)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steamid-httpd.toml")
	require.NoError(t, os.WriteFile(path, []byte("prot = \"8080\"\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "prot")
}

func TestParseConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steamid-httpd.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = \"8080\"\nworkers = 4\n"), 0o600))

	var stderr bytes.Buffer

	cfg, ok, err := parseConfig([]string{"-config", path, "-port", "9000"}, &stderr)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
}

func TestParseConfigRejects(t *testing.T) {
	tests := map[string][]string{
		"two stores":   {"-rqlite-address", "http://localhost:4001", "-redis-url", "redis://localhost:6379"},
		"cert alone":   {"-cert", "server.crt"},
		"zero workers": {"-workers", "0"},
		"bad flag":     {"-nope"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseConfig(args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	var stderr bytes.Buffer

	_, ok, err := parseConfig([]string{"-h"}, &stderr)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, stderr.String(), "usage: steamid-httpd")
}

func TestOpenStoreSchemaFailure(t *testing.T) {
	rqlite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"error": "database is locked"}]}`))
	}))
	defer rqlite.Close()

	cfg := DefaultConfig()
	cfg.RqliteAddress = rqlite.URL + "?disableClusterDiscovery=true"
	cfg.Initialize = true

	store, err := openStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "create schema")
	assert.Nil(t, store)
}
