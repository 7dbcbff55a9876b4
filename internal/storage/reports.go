package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const incomeExpenseSums = `
SELECT
	COALESCE(SUM(CASE WHEN transaction_type = 'income' THEN amount_cents END), 0),
	COALESCE(SUM(CASE WHEN transaction_type = 'expense' THEN amount_cents END), 0)
FROM transactions`

// MonthlySummary totals income and expense for one calendar month.
// A month without transactions yields zeros.
func (s *Store) MonthlySummary(ctx context.Context, year, month int) (core.PeriodSummary, error) {
	if month < 1 || month > 12 {
		return core.PeriodSummary{}, fmt.Errorf("invalid month %d", month)
	}
	return s.periodSummary(ctx, "monthly summary",
		incomeExpenseSums+` WHERE substr(transaction_date, 1, 7) = ?`,
		fmt.Sprintf("%04d-%02d", year, month))
}

func (s *Store) YearlySummary(ctx context.Context, year int) (core.PeriodSummary, error) {
	return s.periodSummary(ctx, "yearly summary",
		incomeExpenseSums+` WHERE substr(transaction_date, 1, 4) = ?`,
		fmt.Sprintf("%04d", year))
}

func (s *Store) periodSummary(ctx context.Context, op, query string, args ...any) (core.PeriodSummary, error) {
	var income, expense int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&income, &expense); err != nil {
		return core.PeriodSummary{}, wrap(op, err)
	}
	return core.NewPeriodSummary(core.Money{Cents: income}, core.Money{Cents: expense}), nil
}

// CategoryBreakdown sums transactions of type t per category within [from, to],
// largest total first.
func (s *Store) CategoryBreakdown(ctx context.Context, from, to core.Date, t core.TransactionType) ([]core.CategoryTotal, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.transaction_type = ? AND t.transaction_date >= ? AND t.transaction_date <= ?
		GROUP BY c.id, c.name
		ORDER BY total DESC, c.name`,
		string(t), from.String(), to.String())
	if err != nil {
		return nil, wrap("category breakdown", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Total.Cents); err != nil {
			return nil, wrap("category breakdown", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("category breakdown", err)
	}
	return out, nil
}

// MonthlyTrend returns per-month income and expense over the trailing window
// starting months before today, oldest month first. Months with no
// transactions are omitted.
func (s *Store) MonthlyTrend(ctx context.Context, months int) ([]core.TrendPoint, error) {
	if months <= 0 {
		return nil, fmt.Errorf("invalid trend window %d", months)
	}
	start := core.DateOf(s.now()).AddDate(0, -months, 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(transaction_date, 1, 7) AS month, transaction_type, SUM(amount_cents)
		FROM transactions
		WHERE transaction_date >= ?
		GROUP BY month, transaction_type
		ORDER BY month`,
		start.Format(core.ISODate))
	if err != nil {
		return nil, wrap("monthly trend", err)
	}
	defer rows.Close()

	var out []core.TrendPoint
	for rows.Next() {
		var (
			month, typ string
			cents      int64
		)
		if err := rows.Scan(&month, &typ, &cents); err != nil {
			return nil, wrap("monthly trend", err)
		}
		if len(out) == 0 || out[len(out)-1].Month != month {
			out = append(out, core.TrendPoint{Month: month})
		}
		p := &out[len(out)-1]
		if core.TransactionType(typ) == core.Income {
			p.Income.Cents = cents
		} else {
			p.Expense.Cents = cents
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("monthly trend", err)
	}
	return out, nil
}

// CashOnHand is the sum of debit balances minus the sum of credit balances.
func (s *Store) CashOnHand(ctx context.Context) (core.Money, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN account_type = 'debit' THEN current_balance_cents ELSE -current_balance_cents END), 0)
		FROM accounts`).Scan(&cents)
	if err != nil {
		return core.Money{}, wrap("cash on hand", err)
	}
	return core.Money{Cents: cents}, nil
}

// TotalByAccountType sums current balances of one account type.
func (s *Store) TotalByAccountType(ctx context.Context, t core.AccountType) (core.Money, error) {
	if err := t.Validate(); err != nil {
		return core.Money{}, err
	}
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(current_balance_cents), 0) FROM accounts WHERE account_type = ?`,
		string(t)).Scan(&cents)
	if err != nil {
		return core.Money{}, wrap("total by account type", err)
	}
	return core.Money{Cents: cents}, nil
}
