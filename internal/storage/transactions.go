package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const transactionSelect = `
SELECT t.id, t.account_id, t.category_id, t.amount_cents, t.transaction_type,
       t.description, t.transaction_date, t.created_at, a.name, c.name
FROM transactions t
JOIN accounts a ON a.id = t.account_id
JOIN categories c ON c.id = t.category_id`

const transactionOrder = ` ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC`

// TransactionFilter narrows ListTransactions. Zero values mean "any".
// From and To are inclusive.
type TransactionFilter struct {
	AccountID  int64
	CategoryID int64
	From       core.Date
	To         core.Date
	Limit      int
}

func (f TransactionFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.AccountID > 0 {
		conds = append(conds, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID > 0 {
		conds = append(conds, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "t.transaction_date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "t.transaction_date <= ?")
		args = append(args, f.To.String())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTransaction(r rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		date      string
		createdAt string
	)
	if err := r.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Amount.Cents, &typ,
		&t.Description, &date, &createdAt, &t.AccountName, &t.CategoryName); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseISODate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = d
	t.Type = core.TransactionType(typ)
	t.CreatedAt = parseCreatedAt(createdAt)
	return t, nil
}

// CreateTransaction stores t and reconciles its account in the same SQL transaction.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	var created core.Transaction
	err := s.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx,
			`INSERT INTO transactions (account_id, category_id, amount_cents, transaction_type, description, transaction_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.AccountID, t.CategoryID, t.Amount.Cents, string(t.Type), t.Description, t.Date.String())
		if err != nil {
			return wrap("insert transaction", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrap("insert transaction", err)
		}
		if err := reconcile(ctx, q, t.AccountID); err != nil {
			return err
		}
		created, err = getTransaction(ctx, q, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		log.NewFields().
			WithComponent(log.ComponentStorage).
			WithOperation(log.OpCreate).
			WithTransaction(created.ID, created.AccountID, created.Amount.String(), string(created.Type)).
			ToSlice()...)
	return created, nil
}

// UpdateTransaction rewrites t and reconciles both the previous and the new
// account when the transaction moved.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	var updated core.Transaction
	err := s.withTx(ctx, func(q querier) error {
		prev, err := getTransaction(ctx, q, t.ID)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`UPDATE transactions
			 SET account_id = ?, category_id = ?, amount_cents = ?, transaction_type = ?, description = ?, transaction_date = ?
			 WHERE id = ?`,
			t.AccountID, t.CategoryID, t.Amount.Cents, string(t.Type), t.Description, t.Date.String(), t.ID)
		if err != nil {
			return wrap("update transaction", err)
		}
		if err := reconcile(ctx, q, t.AccountID); err != nil {
			return err
		}
		if prev.AccountID != t.AccountID {
			if err := reconcile(ctx, q, prev.AccountID); err != nil {
				return err
			}
		}
		updated, err = getTransaction(ctx, q, t.ID)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		log.NewFields().
			WithComponent(log.ComponentStorage).
			WithOperation(log.OpUpdate).
			WithTransaction(updated.ID, updated.AccountID, updated.Amount.String(), string(updated.Type)).
			ToSlice()...)
	return updated, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	var accountID int64
	err := s.withTx(ctx, func(q querier) error {
		err := q.QueryRowContext(ctx, `SELECT account_id FROM transactions WHERE id = ?`, id).Scan(&accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("transaction", id)
		}
		if err != nil {
			return wrap("get transaction", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return wrap("delete transaction", err)
		}
		return reconcile(ctx, q, accountID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id,
		log.FieldAccountID, accountID)
	return nil
}

// GetTransaction includes the account and category names.
func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return getTransaction(ctx, s.db, id)
}

func getTransaction(ctx context.Context, q querier, id int64) (core.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, notFound("transaction", id)
	}
	if err != nil {
		return core.Transaction{}, wrap("get transaction", err)
	}
	return t, nil
}

// ListTransactions returns matching transactions, most recent date first.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	where, args := f.where()
	query := transactionSelect + where + transactionOrder
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("list transactions", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list transactions", err)
	}
	return out, nil
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	return s.ListTransactions(ctx, TransactionFilter{AccountID: accountID})
}

func (s *Store) TransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return s.ListTransactions(ctx, TransactionFilter{CategoryID: categoryID})
}

// TransactionsByDateRange includes both ends.
func (s *Store) TransactionsByDateRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	return s.ListTransactions(ctx, TransactionFilter{From: from, To: to})
}
