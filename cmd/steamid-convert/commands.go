package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"steamids/idconvert"
	"steamids/idstore"
	"steamids/steamidhttp"
	"steamids/steamidhttprpc"
	"steamids/steamidutil"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newConvertCmd(opts *options) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "convert [ids...]",
		Short: "Convert ids locally, reading one per line from stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids, err := inputIDs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			conversions, err := idconvert.ConvertAll(ctx, ids, workers)
			if err != nil {
				return fmt.Errorf("convert all: %w", err)
			}

			store, err := opts.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			if store != nil {
				defer store.Close()

				if err := store.InsertRecords(ctx, idstore.Records(conversions, time.Now())); err != nil {
					return fmt.Errorf("insert records: %w", err)
				}
			}

			response := steamidhttp.ConvertBatchResponse{
				Results: make([]steamidhttp.ConvertResponse, 0, len(conversions)),
			}

			for _, c := range conversions {
				response.Results = append(response.Results, idconvert.ToHTTP(c))
			}

			return writeConversions(cmd.OutOrStdout(), opts.output, response)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 8, "Number of conversion workers")

	return cmd
}

func newTypesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the account types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := steamidutil.AccountTypes()

			response := steamidhttp.AccountTypesResponse{
				Types: make([]steamidhttp.AccountType, 0, len(types)),
			}

			for _, t := range types {
				response.Types = append(response.Types, idconvert.AccountTypeToHTTP(t))
			}

			return writeOutput(cmd.OutOrStdout(), opts.output, response, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NUMBER\tNAME\tLETTERS\tUSABLE\tURL PATH\tIDENT")

				for _, t := range response.Types {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\t%d\n", t.Number, t.Name, t.Letters, t.Usable, t.URLPath, t.SteamID64Ident)
				}

				return tw.Flush()
			})
		},
	}
}

func newRemoteCmd(opts *options) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "remote [ids...]",
		Short: "Convert ids with a steamid-httpd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := inputIDs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			client := steamidhttprpc.NewClient(http.Client{Timeout: 30 * time.Second}, server)

			response, err := client.ConvertBatch(cmd.Context(), ids)
			if err != nil {
				return fmt.Errorf("convert batch: %w", err)
			}

			return writeConversions(cmd.OutOrStdout(), opts.output, *response)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server API address (default http://localhost:9876/api/v0)")

	return cmd
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <id>",
		Short: "Show the stored record for an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := opts.openStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			if store == nil {
				return fmt.Errorf("lookup needs --rqlite-address or --redis-url")
			}

			defer store.Close()

			steamID64, ok, err := store.LookupSteamID(ctx, id)
			if err != nil {
				return fmt.Errorf("lookup steam id: %w", err)
			}

			if !ok {
				c, err := idconvert.Convert(id)
				if err != nil {
					return fmt.Errorf("convert: %w", err)
				}

				steamID64 = c.Full.Pack()
			}

			record, ok, err := store.GetRecord(ctx, steamID64)
			if err != nil {
				return fmt.Errorf("get record: %w", err)
			}

			if !ok {
				return fmt.Errorf("no record for %s", id)
			}

			response := record.ToHTTP()

			return writeOutput(cmd.OutOrStdout(), opts.output, response, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					response.SteamID, response.SteamID3, response.SteamID64, response.URL,
					record.Updated.UTC().Format(time.RFC3339))
				return err
			})
		},
	}
}

// inputIDs returns args, or the non-blank lines of r when args is empty.
func inputIDs(r io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var ids []string

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ids = append(ids, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}

	return ids, nil
}

// writeConversions writes every result and fails if any input did not
// convert.
func writeConversions(w io.Writer, format string, response steamidhttp.ConvertBatchResponse) error {
	err := writeOutput(w, format, response, func(w io.Writer) error {
		for _, r := range response.Results {
			if r.Error != "" {
				fmt.Fprintf(w, "%s\terror: %s\n", r.Input, r.Error)
				continue
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Input, r.SteamID, r.SteamID3, r.Display, r.URL)
		}

		return nil
	})
	if err != nil {
		return err
	}

	failed := 0

	for _, r := range response.Results {
		if r.Error != "" {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d ids failed to convert", failed, len(response.Results))
	}

	return nil
}
