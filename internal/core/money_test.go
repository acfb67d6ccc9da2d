package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseGermanDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"100", "100"},
		{"100,50", "100.5"},
		{"0,99", "0.99"},
		{"1.000.000,00", "1000000"},
		{"", "0"},
		{"abc", "0"},
		{"  42,00  ", "42"},
	}
	for _, tc := range cases {
		got := ParseGermanDecimal(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Errorf("ParseGermanDecimal(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestFormatGermanDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1.234,56"},
		{"100", "100,00"},
		{"0.5", "0,50"},
		{"1000000", "1.000.000,00"},
		{"-42.1", "-42,10"},
	}
	for _, tc := range cases {
		d, _ := decimal.NewFromString(tc.in)
		if got := FormatGermanDecimal(d); got != tc.want {
			t.Errorf("FormatGermanDecimal(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatEUR(t *testing.T) {
	d, _ := decimal.NewFromString("19")
	if got := FormatEUR(d); got != "19,00 €" {
		t.Fatalf("got %q", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	d, _ := decimal.NewFromString("1234.56")
	if back := ParseGermanDecimal(FormatGermanDecimal(d)); !back.Equal(d) {
		t.Fatalf("round trip lost value: %s", back)
	}
}
