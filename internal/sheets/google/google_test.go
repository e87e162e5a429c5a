package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expenses/internal/config"
	"expenses/internal/core"
)

const testSpreadsheetID = "sheet-123"

// fakeSheets serves the handful of Sheets v4 endpoints the client uses.
type fakeSheets struct {
	mu         sync.Mutex
	title      string
	worksheets []string
	rows       [][]string
	valueGets  int
	inputOpts  []string
	ranges     []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/v4/spreadsheets/" + testSpreadsheetID
	p := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && p == prefix:
		sheets := make([]map[string]any, 0, len(f.worksheets))
		for _, ws := range f.worksheets {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": ws}})
		}
		writeJSON(w, map[string]any{"properties": map[string]any{"title": f.title}, "sheets": sheets})

	case r.Method == http.MethodPost && strings.HasSuffix(p, ":append"):
		values := f.decodeValues(w, r)
		start := len(f.rows) + 1
		f.rows = append(f.rows, values...)
		f.ranges = append(f.ranges, strings.TrimPrefix(strings.TrimSuffix(p, ":append"), prefix+"/values/"))
		writeJSON(w, map[string]any{"updates": map[string]any{
			"updatedRange": fmt.Sprintf("Receipts!A%d:F%d", start, len(f.rows)),
		}})

	case r.Method == http.MethodGet && strings.HasPrefix(p, prefix+"/values/"):
		f.valueGets++
		writeJSON(w, map[string]any{"values": f.rows})

	case r.Method == http.MethodPut && strings.HasPrefix(p, prefix+"/values/"):
		values := f.decodeValues(w, r)
		f.ranges = append(f.ranges, strings.TrimPrefix(p, prefix+"/values/"))
		for i, row := range values {
			if i < len(f.rows) {
				f.rows[i] = row
			} else {
				f.rows = append(f.rows, row)
			}
		}
		writeJSON(w, map[string]any{"updatedRows": len(values)})

	default:
		http.Error(w, "unexpected "+r.Method+" "+p, http.StatusNotFound)
	}
}

func (f *fakeSheets) decodeValues(w http.ResponseWriter, r *http.Request) [][]string {
	f.inputOpts = append(f.inputOpts, r.URL.Query().Get("valueInputOption"))
	var vr gsheet.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	out := make([][]string, 0, len(vr.Values))
	for _, row := range vr.Values {
		out = append(out, toStrings(row))
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeSheets, worksheet string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c, err := New(ctx, svc, Options{SpreadsheetID: testSpreadsheetID, Worksheet: worksheet, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewResolvesWorksheet(t *testing.T) {
	f := &fakeSheets{title: "Expenses", worksheets: []string{"Receipts", "Sheet2"}}

	c := newTestClient(t, f, "")
	info, _ := c.Info(context.Background())
	if info.Spreadsheet != "Expenses" || info.Worksheet != "Receipts" || info.Backend != "sheets" {
		t.Fatalf("unexpected info: %+v", info)
	}

	debug := newTestClient(t, f, "Sheet2")
	if info, _ := debug.Info(context.Background()); info.Worksheet != "Sheet2" {
		t.Fatalf("debug worksheet = %q", info.Worksheet)
	}
}

func TestNewFailsOnMissingWorksheet(t *testing.T) {
	f := &fakeSheets{title: "Expenses", worksheets: []string{"Receipts"}}
	srv := httptest.NewServer(f)
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(srv.URL+"/"), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = New(ctx, svc, Options{SpreadsheetID: testSpreadsheetID, Worksheet: "Nope"})
	if err == nil || !strings.Contains(err.Error(), `worksheet "Nope" not found`) {
		t.Fatalf("expected missing worksheet error, got %v", err)
	}
}

func TestAppendWritesHeaderOnEmptySheet(t *testing.T) {
	f := &fakeSheets{title: "Expenses", worksheets: []string{"Receipts"}}
	c := newTestClient(t, f, "")
	ctx := context.Background()

	row := core.Row{Date: "06/01/2021", Store: "Costco", Total: "$2.50", Items: "Milk (2.50)", Type: "PERSONAL"}
	ref, err := c.Append(ctx, row)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Receipts!A1:F2" {
		t.Fatalf("ref = %q", ref)
	}
	if len(f.rows) != 2 || f.rows[0][0] != "Date" || f.rows[1][1] != "Costco" {
		t.Fatalf("unexpected sheet rows: %v", f.rows)
	}
	if f.inputOpts[0] != "USER_ENTERED" {
		t.Fatalf("valueInputOption = %q", f.inputOpts[0])
	}
	if f.ranges[0] != "'Receipts'!A:F" {
		t.Fatalf("append range = %q", f.ranges[0])
	}

	// Second append goes after the existing header without repeating it.
	if _, err := c.Append(ctx, core.Row{Date: "06/02/2021", Store: "Target", Total: "$1.00"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(f.rows) != 3 || f.rows[2][1] != "Target" {
		t.Fatalf("unexpected sheet rows: %v", f.rows)
	}
}

func TestReadAllUsesCacheUntilWrite(t *testing.T) {
	f := &fakeSheets{
		title:      "Expenses",
		worksheets: []string{"Receipts"},
		rows: [][]string{
			{"Date", "Store", "Total", "Items", "Type", "Notes"},
			{"06/01/2021", "Costco", "$2.50", "Milk (2.50)", "PERSONAL"},
		},
	}
	c := newTestClient(t, f, "")
	ctx := context.Background()

	table, err := c.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Store != "Costco" || table.Rows[0].Notes != "" {
		t.Fatalf("unexpected table: %+v", table)
	}
	if _, err := c.ReadAll(ctx); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.valueGets != 1 {
		t.Fatalf("value reads = %d, want 1 (cached)", f.valueGets)
	}

	table.Rows = append(table.Rows, core.Row{Date: "05/01/2021", Store: "Target", Total: "$1.00"})
	if err := c.Rewrite(ctx, table); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := f.ranges[len(f.ranges)-1]; got != "'Receipts'!A1:F3" {
		t.Fatalf("rewrite range = %q", got)
	}
	after, err := c.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// One read to size the rewrite, one to refill the cache.
	if f.valueGets != 3 || len(after.Rows) != 2 || after.Rows[1].Store != "Target" {
		t.Fatalf("rewrite not visible: gets=%d rows=%+v", f.valueGets, after.Rows)
	}
}

func TestRewriteClearsRowsBelowTable(t *testing.T) {
	f := &fakeSheets{
		title:      "Expenses",
		worksheets: []string{"Receipts"},
		rows: [][]string{
			{"Date", "Store", "Total", "Items", "Type", "Notes"},
			{"02/01/2021", "B", "$2.00", "Soap (2.00)", "PERSONAL", ""},
			{},
			{"01/01/2021", "A", "$1.00", "Milk (1.00)", "PERSONAL", ""},
		},
	}
	c := newTestClient(t, f, "")
	ctx := context.Background()

	table, err := c.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	table.Rows[0], table.Rows[1] = table.Rows[1], table.Rows[0]
	if err := c.Rewrite(ctx, table); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := f.ranges[len(f.ranges)-1]; got != "'Receipts'!A1:F4" {
		t.Fatalf("rewrite range = %q", got)
	}

	var stores []string
	for _, row := range f.rows[1:] {
		if len(row) > 1 && row[1] != "" {
			stores = append(stores, row[1])
		}
	}
	if strings.Join(stores, ",") != "A,B" {
		t.Fatalf("sheet records = %v, want [A B]", stores)
	}

	after, err := c.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(after.Rows) != 2 || after.Rows[0].Store != "A" || after.Rows[1].Store != "B" {
		t.Fatalf("rows after rewrite = %+v", after.Rows)
	}
}

func TestParseTable(t *testing.T) {
	empty := parseTable(nil)
	if !empty.Empty || len(empty.Header) != len(core.Columns) {
		t.Fatalf("unexpected empty table: %+v", empty)
	}

	table := parseTable([][]interface{}{
		{"Date", "Store", "Total"},
		{"06/01/2021", "Costco", "$2.50", "Milk (2.50)", "PERSONAL", "note"},
		{"", " ", ""},
		{"06/02/2021", "Target"},
	})
	if table.Empty {
		t.Fatal("table with header reported empty")
	}
	if len(table.Header) != len(core.Columns) || table.Header[5] != "Notes" {
		t.Fatalf("header not padded: %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (blank skipped)", len(table.Rows))
	}
	if table.Rows[0].Notes != "note" || table.Rows[1].Total != "" {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestNewFromConfigMissingSpreadsheetID(t *testing.T) {
	_, err := NewFromConfig(context.Background(), &config.Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromConfigInvalidOAuthClient(t *testing.T) {
	cfg := &config.Config{
		GoogleSpreadsheetID:   "test-id",
		GoogleOAuthClientJSON: "invalid-json",
		GoogleOAuthTokenJSON:  `{"access_token":"test"}`,
	}
	_, err := NewFromConfig(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's 2021"); got != "'Bob''s 2021'" {
		t.Fatalf("quoteSheet = %q", got)
	}
}
