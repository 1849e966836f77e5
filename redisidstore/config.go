package redisidstore

import "time"

type Config struct {
	// URL is the Redis connection URL, e.g. redis://localhost:6379/0.
	URL string

	PoolSize     int
	MinIdleConns int

	// RecordTTL expires records after the given duration. Zero keeps them
	// forever.
	RecordTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
