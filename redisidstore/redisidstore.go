package redisidstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"steamids/idstore"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "steamids"

func recordKey(steamID64 uint64) string {
	return fmt.Sprintf("%s:record:%d", keyPrefix, steamID64)
}

// textIndexKey maps a legacy or short form to its 64-bit id.
func textIndexKey(steamID string) string {
	return fmt.Sprintf("%s:idx:text:%s", keyPrefix, steamID)
}

type Store struct {
	client *redis.Client
	cfg    Config
}

var _ idstore.Store = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) InsertRecords(ctx context.Context, records []idstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()

	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}

		id := strconv.FormatUint(r.SteamID64, 10)

		pipe.Set(ctx, recordKey(r.SteamID64), b, s.cfg.RecordTTL)
		pipe.Set(ctx, textIndexKey(r.SteamID), id, s.cfg.RecordTTL)
		pipe.Set(ctx, textIndexKey(r.SteamID3), id, s.cfg.RecordTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("exec pipeline: %w", err)
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, steamID64 uint64) (idstore.Record, bool, error) {
	var record idstore.Record

	b, err := s.client.Get(ctx, recordKey(steamID64)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return record, false, nil
		}

		return record, false, fmt.Errorf("get record: %w", err)
	}

	if err := json.Unmarshal(b, &record); err != nil {
		return record, false, fmt.Errorf("unmarshal record: %w", err)
	}

	return record, true, nil
}

func (s *Store) LookupSteamID(ctx context.Context, steamID string) (uint64, bool, error) {
	v, err := s.client.Get(ctx, textIndexKey(steamID)).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("get index: %w", err)
	}

	return v, true, nil
}
