package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"steamids/cmd/steamid-httpd/httpserveutil"
	"steamids/idstore"
	"steamids/redisidstore"
	"steamids/rqliteidstore"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gorilla/mux"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type Config struct {
	Address       string        `toml:"address"`
	Port          string        `toml:"port"`
	RqliteAddress string        `toml:"rqlite_address"`
	RedisURL      string        `toml:"redis_url"`
	RecordTTL     time.Duration `toml:"record_ttl"`
	Cert          string        `toml:"cert"`
	Key           string        `toml:"key"`
	Workers       int           `toml:"workers"`
	MaxBatch      int           `toml:"max_batch"`
	Initialize    bool          `toml:"initialize"`
}

func DefaultConfig() Config {
	return Config{
		Address:  "0.0.0.0",
		Port:     "9876",
		Workers:  8,
		MaxBatch: 1000,
	}
}

// LoadConfig decodes path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	return cfg, nil
}

func parseConfig(args []string, stderr io.Writer) (Config, bool, error) {
	flags := NewFlagSet("steamid-httpd")

	var configpath string
	var flagcfg Config

	flags.StringVar(&configpath, "config", "", "")
	flags.StringVar(&flagcfg.Address, "address", "", "")
	flags.StringVar(&flagcfg.Port, "port", "", "")
	flags.StringVar(&flagcfg.RqliteAddress, "rqlite-address", "", "")
	flags.StringVar(&flagcfg.RedisURL, "redis-url", "", "")
	flags.DurationVar(&flagcfg.RecordTTL, "record-ttl", 0, "")
	flags.StringVar(&flagcfg.Cert, "cert", "", "")
	flags.StringVar(&flagcfg.Key, "key", "", "")
	flags.IntVar(&flagcfg.Workers, "workers", 0, "")
	flags.IntVar(&flagcfg.MaxBatch, "max-batch", 0, "")
	flags.BoolVar(&flagcfg.Initialize, "initialize", false, "")

	ok, err := ParseArgs(flags, args, stderr, usage)
	if err != nil {
		return Config{}, false, fmt.Errorf("parse args: %w", err)
	}

	if !ok {
		return Config{}, false, nil
	}

	cfg, err := LoadConfig(configpath)
	if err != nil {
		return Config{}, false, fmt.Errorf("load config: %w", err)
	}

	// explicitly set flags win over the file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "address":
			cfg.Address = flagcfg.Address
		case "port":
			cfg.Port = flagcfg.Port
		case "rqlite-address":
			cfg.RqliteAddress = flagcfg.RqliteAddress
		case "redis-url":
			cfg.RedisURL = flagcfg.RedisURL
		case "record-ttl":
			cfg.RecordTTL = flagcfg.RecordTTL
		case "cert":
			cfg.Cert = flagcfg.Cert
		case "key":
			cfg.Key = flagcfg.Key
		case "workers":
			cfg.Workers = flagcfg.Workers
		case "max-batch":
			cfg.MaxBatch = flagcfg.MaxBatch
		case "initialize":
			cfg.Initialize = flagcfg.Initialize
		}
	})

	if cfg.RqliteAddress != "" && cfg.RedisURL != "" {
		return Config{}, false, fmt.Errorf("only one of -rqlite-address and -redis-url may be set")
	}

	if (cfg.Cert == "") != (cfg.Key == "") {
		return Config{}, false, fmt.Errorf("-cert and -key must be set together")
	}

	if cfg.Workers < 1 {
		return Config{}, false, fmt.Errorf("-workers must be positive")
	}

	if cfg.MaxBatch < 1 {
		return Config{}, false, fmt.Errorf("-max-batch must be positive")
	}

	return cfg, true, nil
}

const usage = `usage: steamid-httpd [flags]

  -config path          TOML config file
  -address addr         listen address (default 0.0.0.0)
  -port port            listen port (default 9876)
  -rqlite-address url   record conversions in rqlite
  -redis-url url        record conversions in redis
  -record-ttl duration  expire redis records
  -initialize           create the rqlite schema
  -cert, -key path      serve https
  -workers n            batch conversion workers (default 8)
  -max-batch n          maximum ids per batch request (default 1000)`

func openStore(ctx context.Context, cfg Config) (idstore.Store, error) {
	switch {
	case cfg.RqliteAddress != "":
		db, err := rqliteidstore.Open(ctx, cfg.RqliteAddress, cfg.Initialize)
		if err != nil {
			return nil, fmt.Errorf("open rqlite store: %w", err)
		}

		return db, nil
	case cfg.RedisURL != "":
		rcfg := redisidstore.DefaultConfig()
		rcfg.URL = cfg.RedisURL
		rcfg.RecordTTL = cfg.RecordTTL

		store, err := redisidstore.New(rcfg)
		if err != nil {
			return nil, fmt.Errorf("new redis store: %w", err)
		}

		return store, nil
	default:
		return nil, nil
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, ok, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if store != nil {
		defer store.Close()
	}

	h := &Handler{
		store:    store,
		workers:  cfg.Workers,
		maxBatch: cfg.MaxBatch,
		now:      time.Now,
	}

	r := mux.NewRouter()
	httpserveutil.Register(r, logger, h)

	var tlsconf *tls.Config

	if cfg.Cert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.Cert, cfg.Key)
		if err != nil {
			return fmt.Errorf("load key pair: %w", err)
		}

		tlsconf = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	addr := net.JoinHostPort(cfg.Address, cfg.Port)

	server := httpserveutil.NewServer(addr, r, tlsconf, logger)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	return nil
}

func NewFlagSet(prog string) *flag.FlagSet {
	f := flag.NewFlagSet(prog, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = nil

	return f
}

func ParseArgs(flags *flag.FlagSet, args []string, stderr io.Writer, usage string) (bool, error) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, usage)
			return false, nil
		}

		return false, fmt.Errorf("argument parsing failure: %w\n\n%s", err, usage)
	}

	return true, nil
}
