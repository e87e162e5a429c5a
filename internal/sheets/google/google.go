package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expenses/internal/cache"
	"expenses/internal/core"
	"expenses/internal/log"
	ports "expenses/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

// lastColumn is the column letter of the Notes field.
const lastColumn = "F"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	spreadsheet   string
	worksheet     string
	tables        cache.Cache[core.Table]
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.Ledger = (*Client)(nil)

type Options struct {
	SpreadsheetID string
	// Worksheet to use; empty selects the first worksheet.
	Worksheet string
	// CacheTTL bounds how long ReadAll results are reused. Zero disables it.
	CacheTTL time.Duration
	Logger   *log.Logger
}

// New wraps an existing Sheets service and resolves the spreadsheet and
// worksheet titles. It fails when the worksheet does not exist.
func New(ctx context.Context, svc *gsheet.Service, opts Options) (*Client, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		tables:        cache.NewLRUCache[core.Table](4, opts.CacheTTL),
		logger:        logger.WithComponent(log.ComponentSheets),
	}
	if err := c.resolve(ctx, strings.TrimSpace(opts.Worksheet)); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Connected to worksheet",
		log.FieldSheet, c.worksheet,
		"spreadsheet", c.spreadsheet)
	return c, nil
}

func (c *Client) resolve(ctx context.Context, worksheet string) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	if meta.Properties != nil {
		c.spreadsheet = meta.Properties.Title
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	if len(titles) == 0 {
		return fmt.Errorf("spreadsheet %q has no worksheets", c.spreadsheet)
	}
	if worksheet == "" {
		c.worksheet = titles[0]
		return nil
	}
	for _, t := range titles {
		if t == worksheet {
			c.worksheet = t
			return nil
		}
	}
	return fmt.Errorf("worksheet %q not found in spreadsheet %q (have %v)", worksheet, c.spreadsheet, titles)
}

// Append adds the row after the last record. The header is written first
// when the worksheet is empty.
func (c *Client) Append(ctx context.Context, row core.Row) (string, error) {
	table, err := c.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	values := [][]any{toCells(row.Values())}
	if table.Empty {
		values = append([][]any{toCells(core.DefaultHeader())}, values...)
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:"+lastColumn), &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	c.tables.Purge()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.worksheet, err)
	}
	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended receipt row", log.FieldRowRef, ref, log.FieldStore, row.Store)
	return ref, nil
}

// ReadAll reads the header and every record. Rows shorter than the header
// are padded with empty cells.
func (c *Client) ReadAll(ctx context.Context) (core.Table, error) {
	if t, ok := c.tables.Get(c.worksheet); ok {
		return copyTable(t), nil
	}
	rng := c.a1("A:" + lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return core.Table{}, fmt.Errorf("read %s: %w", rng, err)
	}
	table := parseTable(resp.Values)
	c.tables.Set(c.worksheet, table)
	c.logger.DebugContext(ctx, "Read receipts", log.FieldRowCount, len(table.Rows))
	return copyTable(table), nil
}

// Rewrite overwrites the worksheet from A1 with the header and rows. Sheet
// rows below the new table, blank rows skipped by ReadAll included, are
// cleared so no stale record survives.
func (c *Client) Rewrite(ctx context.Context, table core.Table) error {
	header := table.Header
	if len(header) == 0 {
		header = core.DefaultHeader()
	}
	used, err := c.usedRows(ctx)
	if err != nil {
		return err
	}
	values := make([][]any, 0, max(len(table.Rows)+1, used))
	values = append(values, toCells(header))
	for _, r := range table.Rows {
		values = append(values, toCells(r.Values()))
	}
	blank := toCells(make([]string, len(core.Columns)))
	for len(values) < used {
		values = append(values, blank)
	}
	rng := c.a1(fmt.Sprintf("A1:%s%d", lastColumn, len(values)))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	c.tables.Purge()
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Rewrote worksheet", log.FieldSheet, c.worksheet, log.FieldRowCount, len(table.Rows))
	return nil
}

// usedRows counts the worksheet rows holding data, header and blank rows
// between records included. It always reads the sheet, bypassing the cache.
func (c *Client) usedRows(ctx context.Context) (int, error) {
	rng := c.a1("A:" + lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return len(resp.Values), nil
}

func (c *Client) Info(_ context.Context) (core.ConnectionInfo, error) {
	return core.ConnectionInfo{Backend: "sheets", Spreadsheet: c.spreadsheet, Worksheet: c.worksheet}, nil
}

// InvalidateCache drops cached reads, e.g. after edits made in the browser.
func (c *Client) InvalidateCache() {
	c.tables.Purge()
}

// a1 builds an A1 range on the client's worksheet, quoting the name.
func (c *Client) a1(cells string) string {
	return quoteSheet(c.worksheet) + "!" + cells
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toCells(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func copyTable(t core.Table) core.Table {
	return core.Table{
		Header: append([]string(nil), t.Header...),
		Rows:   append([]core.Row(nil), t.Rows...),
		Empty:  t.Empty,
	}
}
