package idconvert

import (
	"context"
	"fmt"
	"steamids/steamidhttp"
	"steamids/steamidutil"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Conversion is one input resolved into every form.
type Conversion struct {
	Input    string
	Form     steamidutil.Form
	Legacy   steamidutil.LegacyID
	Short    steamidutil.ShortID
	Full     steamidutil.FullID
	Type     steamidutil.AccountType
	Universe string
	URL      string
	Err      error
}

func Convert(text string) (Conversion, error) {
	text = strings.TrimSpace(text)

	c := Conversion{
		Input: text,
		Form:  steamidutil.DetectForm(text),
	}

	switch c.Form {
	case steamidutil.FormLegacy:
		legacy, err := steamidutil.ParseLegacyID(text)
		if err != nil {
			return c, fmt.Errorf("parse legacy id: %w", err)
		}

		c.Legacy = legacy
		c.Full = legacy.ToFullID()
		c.Short = c.Full.ToShortID()
	case steamidutil.FormShort:
		short, err := steamidutil.ParseShortID(text)
		if err != nil {
			return c, fmt.Errorf("parse short id: %w", err)
		}

		c.Short = short
		c.Legacy = short.ToLegacyID()
		c.Full = short.ToFullID()
	default:
		full, err := steamidutil.ParseFullID(text)
		if err != nil {
			return c, fmt.Errorf("parse full id: %w", err)
		}

		c.Full = full
		c.Legacy = full.ToLegacyID()
		c.Short = full.ToShortID()
	}

	t, err := steamidutil.LookupAccountType(c.Full.Type)
	if err != nil {
		return c, fmt.Errorf("lookup account type: %w", err)
	}

	c.Type = t

	// unnamed universes are still valid ids
	if name, err := steamidutil.UniverseName(c.Full.Universe); err == nil {
		c.Universe = name
	}

	if url, ok := c.Full.URL(); ok {
		c.URL = url
	}

	return c, nil
}

// ConvertAll converts inputs on a pool of workers. The result at index i
// belongs to inputs[i]; inputs that fail to convert carry their error in
// Err instead of failing the batch.
func ConvertAll(ctx context.Context, inputs []string, workers int) ([]Conversion, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Conversion, len(inputs))

	in := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for idx := range in {
				c, err := Convert(inputs[idx])
				c.Err = err
				results[idx] = c
			}

			return nil
		})
	}

	done := gctx.Done()

loop:
	for i := range inputs {
		select {
		case <-done:
			break loop
		case in <- i:
		}
	}

	close(in)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("errgroup: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	return results, nil
}

func AccountTypeToHTTP(t steamidutil.AccountType) steamidhttp.AccountType {
	return steamidhttp.AccountType{
		Number:         t.Number,
		Name:           t.Name,
		Letter:         t.Letter(),
		Letters:        t.Letters,
		Usable:         t.Usable,
		URLPath:        t.URLPath,
		SteamID64Ident: t.SteamID64Ident,
	}
}

func ToHTTP(c Conversion) steamidhttp.ConvertResponse {
	if c.Err != nil {
		return steamidhttp.ConvertResponse{
			Input: c.Input,
			Error: c.Err.Error(),
		}
	}

	steamID64, _ := c.Full.MarshalText()

	return steamidhttp.ConvertResponse{
		Input:        c.Input,
		Form:         string(c.Form),
		SteamID:      c.Legacy.String(),
		SteamID3:     c.Short.String(),
		SteamID64:    string(steamID64),
		Display:      c.Full.String(),
		AccountID:    c.Full.AccountNumber(),
		Universe:     c.Full.Universe,
		UniverseName: c.Universe,
		Instance:     c.Full.Instance,
		AccountType:  AccountTypeToHTTP(c.Type),
		URL:          c.URL,
	}
}
