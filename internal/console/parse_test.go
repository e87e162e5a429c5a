package console

import (
	"errors"
	"testing"

	"expenses/internal/core"
)

func TestParseLineCommands(t *testing.T) {
	cases := []struct {
		in   string
		kind EntryKind
	}{
		{"done", EntryFinish},
		{"DONE", EntryFinish},
		{"Quit", EntryFinish},
		{"exit", EntryFinish},
		{"undo", EntryUndo},
		{"UnDo", EntryUndo},
		{"", EntryBlank},
		{"   \t", EntryBlank},
	}
	for _, tc := range cases {
		if got := ParseLine(tc.in).Kind; got != tc.kind {
			t.Errorf("ParseLine(%q) kind = %s, want %s", tc.in, got, tc.kind)
		}
	}
}

func TestParseLineItems(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		item   string
		cents  int64
		owners string
		shared bool
	}{
		{name: "personal", line: "Milk//2.50", item: "Milk", cents: 250, owners: core.DefaultOwner},
		{name: "spaces trimmed", line: "  Paper towels //  7 ", item: "Paper towels", cents: 700, owners: core.DefaultOwner},
		{name: "shared", line: "Rent//1200//Alice, Bob", item: "Rent", cents: 120000, owners: "Alice, Bob", shared: true},
		{name: "commas in name", line: "Salt, pepper // 3.10", item: "Salt, pepper", cents: 310, owners: core.DefaultOwner},
		{name: "negative", line: "Coupon//-1.5", item: "Coupon", cents: -150, owners: core.DefaultOwner},
		{name: "empty owner field", line: "Soap//2//", item: "Soap", cents: 200, owners: core.DefaultOwner},
		{name: "blank owner field", line: "X//1//   ", item: "X", cents: 100, owners: core.DefaultOwner},
		{name: "only separators in owner field", line: "X//1// , ", item: "X", cents: 100, owners: core.DefaultOwner},
		{name: "default owner named", line: "X//1// me", item: "X", cents: 100, owners: core.DefaultOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseLine(tt.line)
			if e.Kind != EntryItem {
				t.Fatalf("kind = %s (err=%v), want item", e.Kind, e.Err)
			}
			if e.Item.Name != tt.item || e.Item.Cost.Cents != tt.cents {
				t.Fatalf("item = %+v", e.Item)
			}
			if got := e.Item.Owners.String(); got != tt.owners {
				t.Fatalf("owners = %q, want %q", got, tt.owners)
			}
			if e.Shared != tt.shared {
				t.Fatalf("shared = %v, want %v", e.Shared, tt.shared)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"BadLineNoSeparator", core.ErrMissingSeparator},
		{"Milk/2.50", core.ErrMissingSeparator},
		{"Eggs//abc", core.ErrNonNumericCost},
		{"Eggs//", core.ErrNonNumericCost},
		{"//4", core.ErrEmptyItemName},
	}
	for _, tc := range cases {
		e := ParseLine(tc.in)
		if e.Kind != EntryInvalid {
			t.Fatalf("ParseLine(%q) kind = %s, want invalid", tc.in, e.Kind)
		}
		if !errors.Is(e.Err, tc.err) {
			t.Fatalf("ParseLine(%q) err = %v, want %v", tc.in, e.Err, tc.err)
		}
	}
}
