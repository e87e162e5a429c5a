package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"expenses/internal/core"
)

// Sort keys accepted by LedgerService.Sort.
const (
	SortByDate = "date"
	SortByCost = "cost"
)

var ErrUnknownSortKey = fmt.Errorf("unknown sort key (want %q or %q)", SortByDate, SortByCost)

// SortRowsByDate orders rows by ascending date and rewrites dates as
// zero-padded MM/DD/YYYY. Rows whose date does not parse keep their
// relative order after all dated rows and are left untouched.
func SortRowsByDate(table core.Table) core.Table {
	type keyed struct {
		row  core.Row
		date core.Date
		ok   bool
	}
	keys := make([]keyed, len(table.Rows))
	for i, r := range table.Rows {
		d, err := core.ParseDate(r.Date)
		keys[i] = keyed{row: r, date: d, ok: err == nil}
		if err == nil {
			keys[i].row.Date = d.String()
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.date.Before(b.date.Time)
	})

	out := copyHeader(table)
	for _, k := range keys {
		out.Rows = append(out.Rows, k.row)
	}
	return out
}

// SortRowsByCost orders rows by ascending total and rewrites totals as
// $1,234.56. Any total that does not parse aborts the sort.
func SortRowsByCost(table core.Table) (core.Table, error) {
	type keyed struct {
		row  core.Row
		cost core.Money
	}
	keys := make([]keyed, len(table.Rows))
	for i, r := range table.Rows {
		m, err := ParseTotal(r.Total)
		if err != nil {
			return core.Table{}, fmt.Errorf("row %d (%s %s): %w", i+2, r.Date, r.Store, err)
		}
		keys[i] = keyed{row: r, cost: m}
		keys[i].row.Total = FormatTotal(m)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].cost.Cents < keys[j].cost.Cents
	})

	out := copyHeader(table)
	for _, k := range keys {
		out.Rows = append(out.Rows, k.row)
	}
	return out, nil
}

// ParseTotal reads a spreadsheet total such as "$1,234.56" or "-$3.00".
func ParseTotal(s string) (core.Money, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	return core.ParseSignedAmount(clean)
}

// FormatTotal renders money with a dollar sign and thousands grouping.
func FormatTotal(m core.Money) string {
	sign := ""
	if m.IsNegative() {
		sign = "-"
		m = core.Money{Cents: -m.Cents}
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", m.Float())
}

func copyHeader(table core.Table) core.Table {
	return core.Table{
		Header: append([]string(nil), table.Header...),
		Rows:   make([]core.Row, 0, len(table.Rows)),
		Empty:  table.Empty,
	}
}
