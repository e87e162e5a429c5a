package memory

import (
	"context"
	"fmt"
	"sync"

	"expenses/internal/core"
	"expenses/internal/sheets"
)

var _ sheets.Ledger = (*Store)(nil)

// Store keeps the worksheet in process memory.
type Store struct {
	mu     sync.Mutex
	title  string
	header []string
	rows   []core.Row
}

func New(title string, rows ...core.Row) *Store {
	if title == "" {
		title = "memory"
	}
	s := &Store{title: title, header: core.DefaultHeader()}
	for _, r := range rows {
		r.Ref = ""
		s.rows = append(s.rows, r)
	}
	return s
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row core.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.Ref = ""
	s.rows = append(s.rows, row)
	// Row 1 is the header.
	return fmt.Sprintf("mem:%d", len(s.rows)+1), nil
}

func (s *Store) ReadAll(_ context.Context) (core.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Table{
		Header: append([]string(nil), s.header...),
		Rows:   append([]core.Row(nil), s.rows...),
	}, nil
}

func (s *Store) Rewrite(_ context.Context, table core.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(table.Header) > 0 {
		s.header = append([]string(nil), table.Header...)
	}
	s.rows = append([]core.Row(nil), table.Rows...)
	return nil
}

func (s *Store) Info(_ context.Context) (core.ConnectionInfo, error) {
	return core.ConnectionInfo{Backend: "memory", Spreadsheet: s.title, Worksheet: "Sheet1"}, nil
}
