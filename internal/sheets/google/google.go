// Package google mirrors recorded sales into a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salesbook/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []any{"message_id", "date", "customer_id", "customer", "product", "quantity", "unit_price", "amount"}

// SaleRow is one mirrored sale line.
type SaleRow struct {
	MessageID    string
	Date         core.Date
	CustomerID   int64
	CustomerName string
	Product      string
	Quantity     int64
	UnitPrice    core.Money
	Amount       core.Money
}

func (r SaleRow) values() []any {
	return []any{
		r.MessageID,
		r.Date.String(),
		r.CustomerID,
		r.CustomerName,
		r.Product,
		r.Quantity,
		r.UnitPrice.Float(),
		r.Amount.Float(),
	}
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a mirror client. Without options it authenticates with the
// service account found in the environment.
func New(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Sales"
	}

	if len(opts) == 0 {
		credentials, err := serviceAccountJSON(ctx)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentials),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// serviceAccountJSON reads GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountJSON(ctx context.Context) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		slog.InfoContext(ctx, "Using inline service account credentials", "component", "sheets")
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	slog.InfoContext(ctx, "Read service account credentials", "component", "sheets", "path", path)
	return data, nil
}

func (c *Client) rng(cells string) string {
	return fmt.Sprintf("%s!%s", c.sheetName, cells)
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:H1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{Header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1:H1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Wrote mirror header", "component", "sheets", "sheet", c.sheetName)
	return nil
}

// AppendSale adds row unless a row with the same message id is already
// present, so redelivered events do not duplicate lines. It reports whether
// a row was written.
func (c *Client) AppendSale(ctx context.Context, row SaleRow) (bool, error) {
	if c.svc == nil {
		return false, errors.New("sheets service not initialized")
	}

	seen, err := c.hasMessage(ctx, row.MessageID)
	if err != nil {
		return false, err
	}
	if seen {
		slog.InfoContext(ctx, "Sale already mirrored", "component", "sheets", "message_id", row.MessageID)
		return false, nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{row.values()}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:H"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Sale mirrored",
		"component", "sheets",
		"message_id", row.MessageID,
		"customer_id", row.CustomerID,
		"product", row.Product,
		"quantity", row.Quantity)
	return true, nil
}

func (c *Client) hasMessage(ctx context.Context, id string) (bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:A")).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read message ids of %s: %w", c.sheetName, err)
	}
	for _, r := range resp.Values {
		if len(r) > 0 && strings.TrimSpace(fmt.Sprint(r[0])) == id {
			return true, nil
		}
	}
	return false, nil
}
