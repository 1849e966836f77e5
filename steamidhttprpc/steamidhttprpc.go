package steamidhttprpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"steamids/steamidhttp"
)

type Client struct {
	address string
	httpc   http.Client
}

func NewClient(httpc http.Client, address string) *Client {
	if address == "" {
		address = "http://localhost:9876/api/v0"
	}

	return &Client{
		address: address,
		httpc:   httpc,
	}
}

func (c *Client) Convert(ctx context.Context, id string) (*steamidhttp.ConvertResponse, error) {
	addr := c.address + "/convert/" + url.PathEscape(id)

	var response steamidhttp.ConvertResponse

	if err := c.do(ctx, http.MethodGet, addr, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) ConvertBatch(ctx context.Context, ids []string) (*steamidhttp.ConvertBatchResponse, error) {
	b, err := json.Marshal(steamidhttp.ConvertBatchRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var response steamidhttp.ConvertBatchResponse

	if err := c.do(ctx, http.MethodPost, c.address+"/convert", b, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) GetAccountTypes(ctx context.Context) (*steamidhttp.AccountTypesResponse, error) {
	var response steamidhttp.AccountTypesResponse

	if err := c.do(ctx, http.MethodGet, c.address+"/types", nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Lookup returns the stored record for any form of id. The bool is false
// when the server has no record for it.
func (c *Client) Lookup(ctx context.Context, id string) (*steamidhttp.LookupResponse, bool, error) {
	addr := c.address + "/lookup/" + url.PathEscape(id)

	var response steamidhttp.LookupResponse

	if err := c.do(ctx, http.MethodGet, addr, nil, &response); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, false, nil
		}

		return nil, false, err
	}

	return &response, true, nil
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, addr string, body []byte, response any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, addr, r)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return &StatusError{Code: res.StatusCode, Body: string(bytes.TrimSpace(b))}
	}

	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
