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

const accountColumns = `id, name, account_type, initial_balance_cents, current_balance_cents, currency, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (core.Account, error) {
	var (
		a         core.Account
		typ       string
		createdAt string
	)
	if err := r.Scan(&a.ID, &a.Name, &typ, &a.InitialBalance.Cents, &a.CurrentBalance.Cents, &a.Currency, &createdAt); err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	a.CreatedAt = parseCreatedAt(createdAt)
	return a, nil
}

// CreateAccount inserts a and returns the stored record. An empty currency
// becomes core.DefaultCurrency.
func (s *Store) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}

	var created core.Account
	err := s.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx,
			`INSERT INTO accounts (name, account_type, initial_balance_cents, current_balance_cents, currency)
			 VALUES (?, ?, ?, ?, ?)`,
			a.Name, string(a.Type), a.InitialBalance.Cents, a.InitialBalance.Cents, a.Currency)
		if err != nil {
			return wrap("insert account", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrap("insert account", err)
		}
		created, err = getAccount(ctx, q, id)
		return err
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account created",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		log.FieldAccountID, created.ID,
		log.FieldAccountName, created.Name,
		log.FieldAccountType, string(created.Type))
	return created, nil
}

// UpdateAccount rewrites name, type, initial balance and currency, then
// recomputes the current balance so a changed initial balance is reflected.
func (s *Store) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}

	var updated core.Account
	err := s.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx,
			`UPDATE accounts SET name = ?, account_type = ?, initial_balance_cents = ?, currency = ? WHERE id = ?`,
			a.Name, string(a.Type), a.InitialBalance.Cents, a.Currency, a.ID)
		if err != nil {
			return wrap("update account", err)
		}
		if err := checkAffected(res, "account", a.ID); err != nil {
			return err
		}
		if err := reconcile(ctx, q, a.ID); err != nil {
			return err
		}
		updated, err = getAccount(ctx, q, a.ID)
		return err
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account updated",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpUpdate,
		log.FieldAccountID, updated.ID,
		log.FieldBalance, updated.CurrentBalance.String())
	return updated, nil
}

// DeleteAccount removes the account together with all of its transactions.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return wrap("delete account", err)
	}
	if err := checkAffected(res, "account", id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Account deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpDelete,
		log.FieldAccountID, id)
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return getAccount(ctx, s.db, id)
}

func getAccount(ctx context.Context, q querier, id int64) (core.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, notFound("account", id)
	}
	if err != nil {
		return core.Account{}, wrap("get account", err)
	}
	return a, nil
}

// ListAccounts returns every account, newest first.
func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.queryAccounts(ctx, "list accounts",
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
}

// ListAccountsByType returns the accounts of one type ordered by name.
func (s *Store) ListAccountsByType(ctx context.Context, t core.AccountType) ([]core.Account, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return s.queryAccounts(ctx, "list accounts by type",
		`SELECT `+accountColumns+` FROM accounts WHERE account_type = ? ORDER BY name, id`, string(t))
}

func (s *Store) queryAccounts(ctx context.Context, op, query string, args ...any) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}
