// Package sheets fetches tables from the spreadsheet "gviz" query endpoint.
//
// Every fetch is a single GET; failures are returned as they happen and are
// never retried.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"locoboard/internal/model"
)

// DefaultBaseURL is the public spreadsheet endpoint.
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// Config configures the client. Zero values get defaults.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	Timeout       time.Duration
	Transport     http.RoundTripper
}

// FetchStat describes one completed fetch.
type FetchStat struct {
	Sheet    string
	Rows     int
	Bytes    int
	Hash     uint64
	Duration time.Duration
	Err      error
}

// Recorder receives a FetchStat after every fetch, successful or not.
type Recorder interface {
	RecordFetch(ctx context.Context, s FetchStat)
}

// Client fetches raw tables.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	spreadsheetID string
	recorder      Recorder
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		spreadsheetID: cfg.SpreadsheetID,
	}
}

// SetRecorder installs r. It is not safe to call concurrently with Fetch.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// URL returns the query URL of a sheet.
func (c *Client) URL(sheet string) string {
	q := url.Values{}
	q.Set("tqx", "out:json")
	q.Set("sheet", sheet)
	return fmt.Sprintf("%s/%s/gviz/tq?%s", c.baseURL, url.PathEscape(c.spreadsheetID), q.Encode())
}

// Fetch retrieves and decodes one sheet.
func (c *Client) Fetch(ctx context.Context, sheet string) (model.RawTable, error) {
	start := time.Now()
	stat := FetchStat{Sheet: sheet}

	t, body, err := c.fetch(ctx, sheet)
	stat.Duration = time.Since(start)
	stat.Bytes = len(body)
	if len(body) > 0 {
		stat.Hash = xxh3.Hash(body)
	}
	stat.Rows = len(t.Rows)
	stat.Err = err
	if c.recorder != nil {
		c.recorder.RecordFetch(ctx, stat)
	}
	return t, err
}

func (c *Client) fetch(ctx context.Context, sheet string) (model.RawTable, []byte, error) {
	if c.spreadsheetID == "" {
		return model.RawTable{}, nil, fmt.Errorf("sheet %q: spreadsheet id not configured", sheet)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(sheet), nil)
	if err != nil {
		return model.RawTable{}, nil, fmt.Errorf("sheet %q: build request: %w", sheet, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.RawTable{}, nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RawTable{}, body, fmt.Errorf("sheet %q: read body: %w", sheet, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.RawTable{}, body, &HTTPError{Sheet: sheet, StatusCode: resp.StatusCode}
	}
	t, err := Decode(sheet, body)
	return t, body, err
}
