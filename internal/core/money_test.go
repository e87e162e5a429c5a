package core

import (
	"errors"
	"testing"
)

func TestParseSignedAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"2.50", 250, true},
		{" 2.50 ", 250, true},
		{"0.01", 1, true},
		{".5", 50, true},
		{"1.005", 101, true}, // half-up rounding
		{"1200", 120000, true},
		{"-3", -300, true},
		{"+4.2", 420, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1,20", 0, false},
		{"-", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
			continue
		}
		if !errors.Is(err, ErrNonNumericCost) {
			t.Fatalf("%q expected ErrNonNumericCost, got %v", tc.in, err)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m       Money
		plain   string
		dollars string
	}{
		{Money{Cents: 0}, "0.00", "$0.00"},
		{Money{Cents: 250}, "2.50", "$2.50"},
		{Money{Cents: 120000}, "1200.00", "$1200.00"},
		{Money{Cents: -5}, "-0.05", "-$0.05"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.plain {
			t.Errorf("String(%d) = %q, want %q", tc.m.Cents, got, tc.plain)
		}
		if got := tc.m.Dollars(); got != tc.dollars {
			t.Errorf("Dollars(%d) = %q, want %q", tc.m.Cents, got, tc.dollars)
		}
	}
}
