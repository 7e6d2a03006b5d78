package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"12.50", 1250},
		{"0.01", 1},
		{"1000", 100000},
		{"0", 0},
		{"12.505", 1251},
		{"-5.25", -525},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if err != nil {
			t.Errorf("ParseMoney(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMoney(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "abc", "12.5.0"} {
		if _, err := ParseMoney(in); err == nil {
			t.Errorf("ParseMoney(%q) succeeded, want error", in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{1250, "12.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-525, "-5.25"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Money(%d).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoneyFromDecimalRounds(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"10.004", 1000},
		{"10.005", 1001},
		{"10.996", 1100},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tc.in, err)
		}
		if got := MoneyFromDecimal(d); got != tc.want {
			t.Errorf("MoneyFromDecimal(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
