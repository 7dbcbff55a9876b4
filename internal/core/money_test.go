package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1234.56", "1234.56", true},
		{"$1,234.56", "1234.56", true},
		{" 2.50 ", "2.5", true},
		{"(50.00)", "-50", true},
		{"$ (1,000)", "-1000", true},
		{"-12.3", "-12.3", true},
		{"€9", "9", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{"()", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestNewMoneyFromDecimal(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"12.34", 1234},
		{"12.345", 1235},
		{"12.344", 1234},
		{"-50", -5000},
		{"0.01", 1},
	}
	for _, tc := range cases {
		got, err := NewMoneyFromDecimal(decimal.RequireFromString(tc.in))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if got.Cents != tc.cents {
			t.Fatalf("%s expected %d cents, got %d", tc.in, tc.cents, got.Cents)
		}
	}
}

func TestNewMoneyFromDecimal_OutOfRange(t *testing.T) {
	cases := []string{
		"184467440737095516.17",  // 2^64+1 cents, wraps to 1 cent if truncated
		"92233720368547758.08",   // MaxInt64+1 cents
		"-92233720368547758.08",
		"1e30",
	}
	for _, in := range cases {
		_, err := NewMoneyFromDecimal(decimal.RequireFromString(in))
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("%s: expected ErrInvalidAmount, got %v", in, err)
		}
	}

	got, err := NewMoneyFromDecimal(decimal.RequireFromString("92233720368547758.07"))
	if err != nil || got.Cents != math.MaxInt64 {
		t.Errorf("largest amount: got %d, %v", got.Cents, err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		123456: "1234.56",
		-2550:  "-25.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct{ Amount Money }{MustMoney("10.5")})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"Amount":"10.50"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var back struct{ Amount Money }
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Amount.Cents != 1050 {
		t.Fatalf("expected 1050 cents, got %d", back.Amount.Cents)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}
