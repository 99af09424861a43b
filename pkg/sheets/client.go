package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrNotConfigured is returned by a nil *Client
var ErrNotConfigured = errors.New("sheets: client not configured")

// Client wraps the Sheets v4 values API
type Client struct {
	service *sheets.Service
}

// Config selects service account credentials; the path wins over inline JSON
type Config struct {
	CredentialsPath string
	CredentialsJSON []byte

	// Endpoint overrides the API base URL; used against fakes
	Endpoint string
	// Options are appended after credentials
	Options []option.ClientOption
}

// NewClient builds a Sheets client from service account credentials
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	switch {
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case len(cfg.Options) == 0:
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, cfg.Options...)

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{service: service}, nil
}

// Table is a header row followed by data rows
type Table struct {
	Header []string
	Rows   [][]any
}

func (t Table) values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	if len(t.Header) > 0 {
		head := make([]any, len(t.Header))
		for i, h := range t.Header {
			head[i] = h
		}
		out = append(out, head)
	}
	return append(out, t.Rows...)
}

// WriteTable writes t into tab. With replace the tab is cleared and rewritten from A1,
// otherwise only the data rows are appended below existing content.
func (c *Client) WriteTable(ctx context.Context, spreadsheetID, tab string, t Table, replace bool) error {
	if tab == "" {
		tab = "Sheet1"
	}
	if !replace {
		return c.AppendValues(ctx, spreadsheetID, tab+"!A1", t.Rows)
	}
	if err := c.ClearValues(ctx, spreadsheetID, tab+"!A:Z"); err != nil {
		return err
	}
	return c.UpdateValues(ctx, spreadsheetID, tab+"!A1", t.values())
}

// AppendValues inserts rows after the table found in range_
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) error {
	if c == nil || c.service == nil {
		return ErrNotConfigured
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", range_, err)
	}
	return nil
}

// UpdateValues overwrites the cells starting at range_
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) error {
	if c == nil || c.service == nil {
		return ErrNotConfigured
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", range_, err)
	}
	return nil
}

// ClearValues empties range_
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, range_ string) error {
	if c == nil || c.service == nil {
		return ErrNotConfigured
	}

	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, range_, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", range_, err)
	}
	return nil
}
