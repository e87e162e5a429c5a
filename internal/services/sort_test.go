package services

import (
	"errors"
	"testing"

	"expenses/internal/core"
)

func rows(pairs ...[2]string) core.Table {
	t := core.Table{Header: core.DefaultHeader()}
	for _, p := range pairs {
		t.Rows = append(t.Rows, core.Row{Date: p[0], Store: p[1], Total: p[1]})
	}
	return t
}

func stores(t core.Table) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Store
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortRowsByDate(t *testing.T) {
	in := rows(
		[2]string{"6/1/2021", "A"},
		[2]string{"not a date", "B"},
		[2]string{"12/25/2020", "C"},
		[2]string{"06/01/2021", "D"},
		[2]string{"01/05/2021", "E"},
	)

	got := SortRowsByDate(in)

	if want := []string{"C", "E", "A", "D", "B"}; !equal(stores(got), want) {
		t.Fatalf("order = %v, want %v", stores(got), want)
	}
	if got.Rows[2].Date != "06/01/2021" {
		t.Errorf("date not normalized: %q", got.Rows[2].Date)
	}
	if got.Rows[4].Date != "not a date" {
		t.Errorf("unparsable date rewritten: %q", got.Rows[4].Date)
	}
	if in.Rows[0].Date != "6/1/2021" {
		t.Error("input table modified")
	}
	if len(got.Header) != len(core.Columns) {
		t.Errorf("header lost: %v", got.Header)
	}
}

func TestSortRowsByCost(t *testing.T) {
	in := core.Table{Header: core.DefaultHeader(), Rows: []core.Row{
		{Store: "A", Total: "$1,200.00"},
		{Store: "B", Total: "$2.50"},
		{Store: "C", Total: "-$3.00"},
		{Store: "D", Total: "2.5"},
		{Store: "E", Total: "$1234567.891"},
	}}

	got, err := SortRowsByCost(in)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if want := []string{"C", "B", "D", "A", "E"}; !equal(stores(got), want) {
		t.Fatalf("order = %v, want %v", stores(got), want)
	}
	wantTotals := []string{"-$3.00", "$2.50", "$2.50", "$1,200.00", "$1,234,567.89"}
	for i, r := range got.Rows {
		if r.Total != wantTotals[i] {
			t.Errorf("row %d total = %q, want %q", i, r.Total, wantTotals[i])
		}
	}
}

func TestSortRowsByCostRejectsNonNumeric(t *testing.T) {
	in := core.Table{Rows: []core.Row{{Store: "A", Total: "$2.50"}, {Store: "B", Total: "lots"}}}
	_, err := SortRowsByCost(in)
	if !errors.Is(err, core.ErrNonNumericCost) {
		t.Fatalf("expected ErrNonNumericCost, got %v", err)
	}
}

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{250, "$2.50"},
		{100000, "$1,000.00"},
		{-150, "-$1.50"},
	}
	for _, tt := range tests {
		if got := FormatTotal(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("FormatTotal(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
