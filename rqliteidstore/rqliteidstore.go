package rqliteidstore

import (
	"context"
	"fmt"
	"steamids/idstore"
	"strconv"
	"time"

	"github.com/rqlite/gorqlite"
)

type DB struct {
	conn *gorqlite.Connection
}

var _ idstore.Store = (*DB)(nil)

func New(addr string) (*DB, error) {
	conn, err := gorqlite.Open(addr)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	if err := conn.SetExecutionWithTransaction(true); err != nil {
		return nil, fmt.Errorf("set execution with transaction: %w", err)
	}

	db := &DB{
		conn: conn,
	}

	return db, nil
}

// Open connects to addr and creates the schema when initialize is set.
func Open(ctx context.Context, addr string, initialize bool) (*DB, error) {
	db, err := New(addr)
	if err != nil {
		return nil, err
	}

	if initialize {
		if err := db.CreateSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return db, nil
}

func (db *DB) Close() error {
	db.conn.Close()
	return nil
}

const insertRecordQuery = `
INSERT INTO steam_ids (steam_id64, steam_id, steam_id3, account_type, url, updated)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (steam_id64) DO UPDATE SET
steam_id = excluded.steam_id,
steam_id3 = excluded.steam_id3,
account_type = excluded.account_type,
url = excluded.url,
updated = excluded.updated;
`

func insertStatements(records []idstore.Record) []gorqlite.ParameterizedStatement {
	params := make([]gorqlite.ParameterizedStatement, 0, len(records))

	for _, r := range records {
		param := gorqlite.ParameterizedStatement{
			Query: insertRecordQuery,
			// rqlite stores INTEGER as a signed 64-bit value
			Arguments: []any{int64(r.SteamID64), r.SteamID, r.SteamID3, r.AccountType, r.URL, r.Updated.UnixMilli()},
		}

		params = append(params, param)
	}

	return params
}

func (db *DB) InsertRecords(ctx context.Context, records []idstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	results, err := db.conn.WriteParameterizedContext(ctx, insertStatements(records))
	if err != nil {
		return fmt.Errorf("do query: %w", err)
	}

	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("result error: %w", r.Err)
		}
	}

	return nil
}

func (db *DB) GetRecord(ctx context.Context, steamID64 uint64) (idstore.Record, bool, error) {
	var record idstore.Record

	const query = `
SELECT
	steam_id,
	steam_id3,
	account_type,
	url,
	updated
FROM
	steam_ids
WHERE
	steam_id64 = ?;`

	param := gorqlite.ParameterizedStatement{
		Query:     query,
		Arguments: []any{int64(steamID64)},
	}

	results, err := db.conn.QueryOneParameterizedContext(ctx, param)
	if err != nil {
		return record, false, fmt.Errorf("do query: %w", err)
	}

	if results.NumRows() == 0 {
		return record, false, nil
	}

	var (
		accountType int64
		updated     int64
	)

	for results.Next() {
		if err := results.Scan(&record.SteamID, &record.SteamID3, &accountType, &record.URL, &updated); err != nil {
			return record, false, fmt.Errorf("scan results: %w", err)
		}
	}

	record.SteamID64 = steamID64
	record.AccountType = uint8(accountType)
	record.Updated = time.UnixMilli(updated)

	return record, true, nil
}

func (db *DB) LookupSteamID(ctx context.Context, steamID string) (uint64, bool, error) {
	// as text, 64-bit integers do not survive the JSON round trip
	const query = "SELECT CAST(steam_id64 AS TEXT) FROM steam_ids WHERE steam_id = ? OR steam_id3 = ? LIMIT 1;"

	param := gorqlite.ParameterizedStatement{
		Query:     query,
		Arguments: []any{steamID, steamID},
	}

	results, err := db.conn.QueryOneParameterizedContext(ctx, param)
	if err != nil {
		return 0, false, fmt.Errorf("do query: %w", err)
	}

	if results.NumRows() == 0 {
		return 0, false, nil
	}

	var text string

	for results.Next() {
		if err := results.Scan(&text); err != nil {
			return 0, false, fmt.Errorf("scan results: %w", err)
		}
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse steam_id64: %w", err)
	}

	return uint64(id), true, nil
}

func (db *DB) CreateSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS steam_ids (
	steam_id64    INTEGER  NOT NULL,
	steam_id      TEXT     NOT NULL,
	steam_id3     TEXT     NOT NULL,
	account_type  INTEGER  NOT NULL,
	url           TEXT     NOT NULL,
	updated       INTEGER  NOT NULL,
	PRIMARY KEY (steam_id64)
);

CREATE INDEX IF NOT EXISTS steam_ids_steam_id_index
ON steam_ids (steam_id);

CREATE INDEX IF NOT EXISTS steam_ids_steam_id3_index
ON steam_ids (steam_id3);
`
	param := gorqlite.ParameterizedStatement{
		Query:     query,
		Arguments: []any{},
	}

	result, err := db.conn.WriteOneParameterizedContext(ctx, param)
	if err != nil {
		return fmt.Errorf("do query: %w", err)
	}

	if result.Err != nil {
		return fmt.Errorf("result error: %w", result.Err)
	}

	return nil
}
