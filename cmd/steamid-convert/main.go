package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"steamids/idstore"
	"steamids/redisidstore"
	"steamids/rqliteidstore"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	output        string
	rqliteAddress string
	initialize    bool
	redisURL      string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "steamid-convert",
		Short:         "Convert Steam account ids between their textual forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}

			if opts.rqliteAddress != "" && opts.redisURL != "" {
				return fmt.Errorf("only one of --rqlite-address and --redis-url may be set")
			}

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	flags.StringVar(&opts.rqliteAddress, "rqlite-address", "", "Record conversions in rqlite")
	flags.BoolVar(&opts.initialize, "initialize", false, "Create the rqlite schema")
	flags.StringVar(&opts.redisURL, "redis-url", "", "Record conversions in redis")

	root.AddCommand(
		newConvertCmd(opts),
		newTypesCmd(opts),
		newRemoteCmd(opts),
		newLookupCmd(opts),
	)

	return root
}

// openStore returns nil when no store is configured.
func (opts *options) openStore(ctx context.Context) (idstore.Store, error) {
	switch {
	case opts.rqliteAddress != "":
		db, err := rqliteidstore.Open(ctx, opts.rqliteAddress, opts.initialize)
		if err != nil {
			return nil, fmt.Errorf("open rqlite store: %w", err)
		}

		return db, nil
	case opts.redisURL != "":
		cfg := redisidstore.DefaultConfig()
		cfg.URL = opts.redisURL

		store, err := redisidstore.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("new redis store: %w", err)
		}

		return store, nil
	default:
		return nil, nil
	}
}
