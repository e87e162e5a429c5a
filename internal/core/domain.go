package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Personal ReceiptType = "PERSONAL"
	Shared   ReceiptType = "SHARED"
)

// DefaultOwner stands for the person recording the receipt.
const DefaultOwner = "me"

// TaxItemName is the name of the pseudo-item holding the receipt tax.
const TaxItemName = "Tax"

type (
	ReceiptType string

	Money struct {
		Cents int64
	}

	// Date is a receipt date entered as MM/DD/YYYY.
	Date struct {
		time.Time
	}

	// Owners is a non-empty ordered set of owner names. The zero value
	// behaves as the default owner.
	Owners struct {
		names []string
	}

	Item struct {
		Name   string
		Cost   Money
		Owners Owners
	}

	// Row is one spreadsheet record. Ref identifies the row in the backend
	// that produced it and is never written as a column.
	Row struct {
		Date  string
		Store string
		Total string
		Items string
		Type  string
		Notes string
		Ref   string
	}

	// Table holds every record of the worksheet with its header row.
	Table struct {
		Header []string
		Rows   []Row
		// Empty is set when the worksheet has no header row yet.
		Empty bool
	}

	ConnectionInfo struct {
		Backend     string
		Spreadsheet string
		Worksheet   string
	}
)

var (
	ErrMissingSeparator  = errors.New("missing separator")
	ErrNonNumericCost    = errors.New("cost is not a number")
	ErrEmptyUndo         = errors.New("cannot undo further")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidYear       = errors.New("invalid year")
	ErrEmptyItemName     = errors.New("empty item name")
)

// Column names of the receipts worksheet, in order.
var Columns = []string{"Date", "Store", "Total", "Items", "Type", "Notes"}

// NewOwners trims names and drops blanks and duplicates. When nothing is
// left the set holds the default owner.
func NewOwners(names ...string) Owners {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return Owners{}
	}
	return Owners{names: out}
}

// Names returns the owner names; never empty.
func (o Owners) Names() []string {
	if len(o.names) == 0 {
		return []string{DefaultOwner}
	}
	return append([]string(nil), o.names...)
}

// IsDefault reports whether the set is exactly the default owner.
func (o Owners) IsDefault() bool {
	return len(o.names) == 0 || (len(o.names) == 1 && o.names[0] == DefaultOwner)
}

func (o Owners) String() string {
	return strings.Join(o.Names(), ", ")
}

// NewItem builds an item paid by the default owner.
func NewItem(name string, cost Money) Item {
	return Item{Name: name, Cost: cost}
}

// NewSharedItem builds an item paid by the given owners.
func NewSharedItem(name string, cost Money, owners Owners) Item {
	return Item{Name: name, Cost: cost, Owners: owners}
}

// ParseDate validates a MM/DD/YYYY string. Month must be 1-12, year at
// least 1000 and the day must exist in that month.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, ErrInvalidDateFormat
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, p)
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 {
		return Date{}, ErrInvalidMonth
	}
	if year < 1000 {
		return Date{}, ErrInvalidYear
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return Date{}, ErrInvalidDay
	}
	return NewDate(year, month, day), nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date zero-padded as MM/DD/YYYY.
func (d Date) String() string {
	return d.Format("01/02/2006")
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Values returns the row as spreadsheet cells in column order.
func (r Row) Values() []string {
	return []string{r.Date, r.Store, r.Total, r.Items, r.Type, r.Notes}
}

// RowFromValues builds a row from cells in column order; missing cells are empty.
func RowFromValues(cells []string) Row {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return Row{Date: get(0), Store: get(1), Total: get(2), Items: get(3), Type: get(4), Notes: get(5)}
}

// DefaultHeader returns a copy of the worksheet column names.
func DefaultHeader() []string {
	return append([]string(nil), Columns...)
}
