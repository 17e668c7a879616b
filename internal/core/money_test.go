package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.345", 1235, true},
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"20", 2000, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"ten", 0, false},
		{"1.2.3", 0, false},
		{"1,234.50", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"1e2", 0, false},
		{"2.5E-3", 0, false},
		{"1e99999999", 0, false},
		{"1e-99999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountRejectsExponentQuickly(t *testing.T) {
	for _, in := range []string{"1e99999999", "9E999999999", "1e-99999999"} {
		start := time.Now()
		_, err := ParseAmount(in)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q: expected ErrInvalidAmount, got %v", in, err)
		}
		if took := time.Since(start); took > time.Second {
			t.Fatalf("%q: took %v", in, took)
		}
	}
}

func TestParseAmountNegativeSentinel(t *testing.T) {
	if _, err := ParseAmount("-0.50"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := ParseAmount("x"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:       "0.00",
		5:       "0.05",
		1950:    "19.50",
		4800:    "48.00",
		1234567: "12345.67",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}
