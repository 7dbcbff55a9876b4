package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := NewDate(2024, 3, 5)
	for _, in := range []string{"2024-03-05", "03/05/2024", "20240305", "2024/03/05", "03-05-2024", " 2024-3-5 ", "03/05/24"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if !got.Equal(want.Time) {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestParseDate_Precedence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Date
	}{
		{name: "ambiguous slash resolves US", in: "04/05/2024", want: NewDate(2024, 4, 5)},
		{name: "day over 12 falls through to EU", in: "25/12/2024", want: NewDate(2024, 12, 25)},
		{name: "ambiguous dash resolves US", in: "01-02-2023", want: NewDate(2023, 1, 2)},
		{name: "dash EU", in: "31-01-2023", want: NewDate(2023, 1, 31)},
		{name: "two digit year EU", in: "31/01/99", want: NewDate(1999, 1, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if !got.Equal(tt.want.Time) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "32/13/2024", "2024-02-30"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestDateLayoutsOrder(t *testing.T) {
	var names []string
	for _, l := range DateLayouts() {
		names = append(names, l.Name)
	}
	want := []string{"YYYY-MM-DD", "YYYY/MM/DD", "MM/DD/YYYY", "DD/MM/YYYY", "MM-DD-YYYY", "DD-MM-YYYY", "YYYYMMDD", "MM/DD/YY", "DD/MM/YY"}
	if len(names) != len(want) {
		t.Fatalf("expected %d layouts, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("layout %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "Checking", Type: Debit, Currency: "USD"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Account{
		{Name: " ", Type: Debit, Currency: "USD"},
		{Name: "Card", Type: "savings", Currency: "USD"},
		{Name: "Card", Type: Credit, Currency: ""},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		AccountID:  1,
		CategoryID: 2,
		Amount:     Money{Cents: 100},
		Type:       Expense,
		Date:       NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{CategoryID: 2, Amount: Money{Cents: 1}, Type: Expense, Date: NewDate(2025, 1, 1)},
		{AccountID: 1, Amount: Money{Cents: 1}, Type: Expense, Date: NewDate(2025, 1, 1)},
		{AccountID: 1, CategoryID: 2, Amount: Money{Cents: 0}, Type: Expense, Date: NewDate(2025, 1, 1)},
		{AccountID: 1, CategoryID: 2, Amount: Money{Cents: 1}, Type: "transfer", Date: NewDate(2025, 1, 1)},
		{AccountID: 1, CategoryID: 2, Amount: Money{Cents: 1}, Type: Income},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	if got, err := ParseTransactionType(" INCOME "); err != nil || got != Income {
		t.Fatalf("expected income, got %q (err=%v)", got, err)
	}
	if _, err := ParseTransactionType("refund"); !errors.Is(err, ErrInvalidTxType) {
		t.Fatalf("expected ErrInvalidTxType, got %v", err)
	}
}

func TestSignedAmount(t *testing.T) {
	in := Transaction{Amount: Money{Cents: 250}, Type: Income}
	out := Transaction{Amount: Money{Cents: 250}, Type: Expense}
	if in.SignedAmount().Cents != 250 || out.SignedAmount().Cents != -250 {
		t.Fatalf("unexpected signed amounts %d %d", in.SignedAmount().Cents, out.SignedAmount().Cents)
	}
}
