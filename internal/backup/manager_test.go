package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "finance.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("ledger"), 0o644))

	m := NewManager(dbPath, fixedClock(time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)))

	path, err := m.Create(filepath.Join(dir, "backups", "deep"))
	require.NoError(t, err)
	require.Equal(t, "finance_backup_20250304_050607.db", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ledger", string(data))

	// empty dir means next to the database
	path, err = m.Create("")
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
}

func TestCreate_MissingDatabase(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope.db"))
	_, err := m.Create("")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestore_MissingBackup(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "finance.db"))
	require.ErrorIs(t, m.Restore(filepath.Join(t.TempDir(), "gone.db"), true), ErrNotFound)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "finance.db")

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	acct, err := store.CreateAccount(ctx, core.Account{Name: "Checking", Type: core.Debit, InitialBalance: core.MustMoney("100")})
	require.NoError(t, err)
	lookup, err := store.CategoryLookup(ctx)
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, core.Transaction{
		AccountID: acct.ID, CategoryID: lookup["Rent"], Amount: core.MustMoney("40"),
		Type: core.Expense, Date: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	m := NewManager(dbPath, fixedClock(time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)))
	backupPath, err := m.Create(filepath.Join(dir, "backups"))
	require.NoError(t, err)

	// diverge after the backup
	_, err = store.CreateTransaction(ctx, core.Transaction{
		AccountID: acct.ID, CategoryID: lookup["Rent"], Amount: core.MustMoney("10"),
		Type: core.Expense, Date: core.NewDate(2025, 1, 3),
	})
	require.NoError(t, err)
	_, err = store.CreateAccount(ctx, core.Account{Name: "Visa", Type: core.Credit})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, m.Restore(backupPath, true))

	pre, err := m.List(filepath.Join(dir, PreRestoreDir))
	require.NoError(t, err)
	require.Len(t, pre, 1)

	store, err = storage.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "60.00", accounts[0].CurrentBalance.String())
	txs, err := store.TransactionsByAccount(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "finance.db"))

	for _, name := range []string{
		"finance_backup_20240101_000000.db",
		"finance_backup_20250101_000000.db",
		"finance_backup_20240601_120000.db",
		"notes.txt",
		"finance_backup_20240101_000000.sqlite",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	backups, err := m.List(dir)
	require.NoError(t, err)
	require.Len(t, backups, 3)
	require.Equal(t, "finance_backup_20250101_000000.db", backups[0].Name)
	require.Equal(t, "finance_backup_20240601_120000.db", backups[1].Name)
	require.Equal(t, "finance_backup_20240101_000000.db", backups[2].Name)
	require.Equal(t, int64(1), backups[0].Size)
	require.Equal(t, 2025, backups[0].CreatedAt.Year())

	missing, err := m.List(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finance_backup_20240101_000000.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	m := NewManager(filepath.Join(dir, "finance.db"))

	require.NoError(t, m.Delete(path))
	require.ErrorIs(t, m.Delete(path), ErrNotFound)
}

func TestDatabaseInfo(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "finance.db")
	m := NewManager(dbPath)

	info, err := m.DatabaseInfo()
	require.NoError(t, err)
	require.False(t, info.Exists)
	require.Equal(t, dbPath, info.Path)

	require.NoError(t, os.WriteFile(dbPath, []byte("12345"), 0o644))
	info, err = m.DatabaseInfo()
	require.NoError(t, err)
	require.True(t, info.Exists)
	require.Equal(t, int64(5), info.Size)
}
