package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Debit  AccountType = "debit"
	Credit AccountType = "credit"

	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DefaultCurrency is used when an account is created without one.
const DefaultCurrency = "USD"

type (
	// AccountType tells whether a positive balance is money held (debit) or money owed (credit).
	AccountType string

	// TransactionType is the direction of a transaction. Categories carry one too,
	// but the two are never cross-checked.
	TransactionType string

	Account struct {
		ID             int64
		Name           string
		Type           AccountType
		InitialBalance Money
		CurrentBalance Money // derived, see storage reconciliation
		Currency       string
		CreatedAt      time.Time
	}

	Category struct {
		ID          int64
		Name        string
		Type        TransactionType
		Description string
	}

	Transaction struct {
		ID          int64
		AccountID   int64
		CategoryID  int64
		Amount      Money
		Type        TransactionType
		Description string
		Date        Date
		CreatedAt   time.Time

		// Joined for display, ignored on writes.
		AccountName  string
		CategoryName string
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidTxType      = errors.New("invalid transaction type")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrMissingAccount     = errors.New("missing account reference")
	ErrMissingCategory    = errors.New("missing category reference")
)

func (t AccountType) Validate() error {
	switch t {
	case Debit, Credit:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, string(t))
	}
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTxType, string(t))
	}
}

// Sign returns +1 for income and -1 for expense.
func (t TransactionType) Sign() int64 {
	if t == Income {
		return 1
	}
	return -1
}

// ParseAccountType accepts any casing and surrounding whitespace.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// ParseTransactionType accepts any casing and surrounding whitespace.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if err := a.Type.Validate(); err != nil {
		return err
	}
	if c := strings.TrimSpace(a.Currency); len(c) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, a.Currency)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Type.Validate()
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrMissingAccount
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

// SignedAmount is the transaction's contribution to its account balance.
func (t Transaction) SignedAmount() Money {
	return Money{Cents: t.Amount.Cents * t.Type.Sign()}
}

func (a Account) String() string {
	return fmt.Sprintf("%s (%s): %s %s", a.Name, a.Type, a.Currency, a.CurrentBalance)
}
