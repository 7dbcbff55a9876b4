package storage

import (
	"context"
	"log/slog"

	"fintrack/internal/log"
)

// The stored balance is always recomputed from the full transaction set.
const reconcileSQL = `
UPDATE accounts
SET current_balance_cents = initial_balance_cents + COALESCE((
	SELECT SUM(CASE WHEN transaction_type = 'income' THEN amount_cents ELSE -amount_cents END)
	FROM transactions
	WHERE account_id = ?
), 0)
WHERE id = ?`

func reconcile(ctx context.Context, q querier, accountID int64) error {
	if _, err := q.ExecContext(ctx, reconcileSQL, accountID, accountID); err != nil {
		return wrap("reconcile account", err)
	}
	return nil
}

// ReconcileAccount recomputes one account's current balance. It is idempotent.
func (s *Store) ReconcileAccount(ctx context.Context, accountID int64) error {
	res, err := s.db.ExecContext(ctx, reconcileSQL, accountID, accountID)
	if err != nil {
		return wrap("reconcile account", err)
	}
	return checkAffected(res, "account", accountID)
}

// ReconcileAll repairs every account's balance and reports how many were touched.
func (s *Store) ReconcileAll(ctx context.Context) (int, error) {
	var ids []int64
	err := s.withTx(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, `SELECT id FROM accounts`)
		if err != nil {
			return wrap("list account ids", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return wrap("list account ids", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return wrap("list account ids", err)
		}

		for _, id := range ids {
			if err := reconcile(ctx, q, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Balances reconciled",
		log.FieldComponent, log.ComponentReconcile,
		log.FieldOperation, log.OpReconcile,
		log.FieldCount, len(ids))
	return len(ids), nil
}
