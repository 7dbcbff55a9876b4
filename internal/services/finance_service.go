// Package services wires the ledger store to its file adapters.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fintrack/internal/backup"
	"fintrack/internal/core"
	"fintrack/internal/csvio"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// ErrClosed is returned once the store has been closed or could not be reopened.
var ErrClosed = errors.New("finance service is closed")

// Options configure a FinanceService.
type Options struct {
	DBPath        string
	BackupDir     string // "" means next to the database
	StoreOptions  []storage.Option
	BackupOptions []backup.Option
	Now           func() time.Time
}

// FinanceService orchestrates the store, CSV import/export and backups
type FinanceService struct {
	opts    Options
	store   *storage.Store
	backups *backup.Manager
	now     func() time.Time
}

// Open opens the database at opts.DBPath and returns a ready service.
func Open(opts Options) (*FinanceService, error) {
	store, err := storage.Open(opts.DBPath, opts.StoreOptions...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &FinanceService{
		opts:    opts,
		store:   store,
		backups: backup.NewManager(opts.DBPath, opts.BackupOptions...),
		now:     now,
	}, nil
}

// Store exposes the underlying store for CRUD and reports.
func (s *FinanceService) Store() (*storage.Store, error) {
	if s.store == nil {
		return nil, ErrClosed
	}
	return s.store, nil
}

// Close releases the store. The handle is unusable afterwards even when
// closing reports an error.
func (s *FinanceService) Close() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

func (s *FinanceService) reopen() error {
	store, err := storage.Open(s.opts.DBPath, s.opts.StoreOptions...)
	if err != nil {
		return fmt.Errorf("reopen store: %w", err)
	}
	s.store = store
	return nil
}

// ImportCSV imports the file at path into accountID using the current categories.
func (s *FinanceService) ImportCSV(ctx context.Context, path string, accountID int64, cols csvio.ColumnMapping) (csvio.ImportResult, error) {
	store, err := s.Store()
	if err != nil {
		return csvio.ImportResult{}, err
	}
	if _, err := store.GetAccount(ctx, accountID); err != nil {
		return csvio.ImportResult{}, fmt.Errorf("import target: %w", err)
	}
	lookup, err := store.CategoryLookup(ctx)
	if err != nil {
		return csvio.ImportResult{}, fmt.Errorf("load categories: %w", err)
	}

	res, err := csvio.NewImporter(store).ImportFile(ctx, path, csvio.ImportOptions{
		AccountID:  accountID,
		Columns:    cols,
		Categories: lookup,
	})
	if err != nil {
		return res, fmt.Errorf("import csv: %w", err)
	}
	return res, nil
}

// ExportCSV writes the filtered transactions to path and returns how many were written.
func (s *FinanceService) ExportCSV(ctx context.Context, path string, f storage.TransactionFilter) (int, error) {
	store, err := s.Store()
	if err != nil {
		return 0, err
	}
	txs, err := store.ListTransactions(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	if err := csvio.ExportFile(path, txs); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transactions exported",
		log.FieldComponent, log.ComponentExport,
		log.FieldOperation, log.OpExport,
		log.FieldPath, path,
		log.FieldCount, len(txs))
	return len(txs), nil
}

// Snapshot is the JSON export document.
type Snapshot struct {
	ExportDate   time.Time             `json:"export_date"`
	Accounts     []snapshotAccount     `json:"accounts"`
	Categories   []snapshotCategory    `json:"categories"`
	Transactions []snapshotTransaction `json:"transactions"`
}

type snapshotAccount struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"account_type"`
	InitialBalance core.Money `json:"initial_balance"`
	CurrentBalance core.Money `json:"current_balance"`
	Currency       string     `json:"currency"`
	CreatedAt      time.Time  `json:"created_at"`
}

type snapshotCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type snapshotTransaction struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"account_id"`
	Account     string     `json:"account_name"`
	CategoryID  int64      `json:"category_id"`
	Category    string     `json:"category_name"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"transaction_type"`
	Description string     `json:"description"`
	Date        core.Date  `json:"transaction_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BuildSnapshot collects every account, category and transaction.
func (s *FinanceService) BuildSnapshot(ctx context.Context) (Snapshot, error) {
	store, err := s.Store()
	if err != nil {
		return Snapshot{}, err
	}
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list accounts: %w", err)
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list categories: %w", err)
	}
	txs, err := store.ListTransactions(ctx, storage.TransactionFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}

	snap := Snapshot{
		ExportDate:   s.now(),
		Accounts:     make([]snapshotAccount, 0, len(accounts)),
		Categories:   make([]snapshotCategory, 0, len(categories)),
		Transactions: make([]snapshotTransaction, 0, len(txs)),
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, snapshotAccount{
			ID: a.ID, Name: a.Name, Type: string(a.Type),
			InitialBalance: a.InitialBalance, CurrentBalance: a.CurrentBalance,
			Currency: a.Currency, CreatedAt: a.CreatedAt,
		})
	}
	for _, c := range categories {
		snap.Categories = append(snap.Categories, snapshotCategory{
			ID: c.ID, Name: c.Name, Type: string(c.Type), Description: c.Description,
		})
	}
	for _, t := range txs {
		snap.Transactions = append(snap.Transactions, snapshotTransaction{
			ID: t.ID, AccountID: t.AccountID, Account: t.AccountName,
			CategoryID: t.CategoryID, Category: t.CategoryName,
			Amount: t.Amount, Type: string(t.Type), Description: t.Description,
			Date: t.Date, CreatedAt: t.CreatedAt,
		})
	}
	return snap, nil
}

// ExportJSON writes an indented snapshot of the whole ledger to w.
func (s *FinanceService) ExportJSON(ctx context.Context, w io.Writer) error {
	snap, err := s.BuildSnapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported",
		log.FieldComponent, log.ComponentExport,
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(snap.Transactions))
	return nil
}

func (s *FinanceService) backupDir(dir string) string {
	if dir != "" {
		return dir
	}
	return s.opts.BackupDir
}

// Backup copies the database into dir, or the configured backup directory when dir is empty.
func (s *FinanceService) Backup(dir string) (string, error) {
	return s.backups.Create(s.backupDir(dir))
}

func (s *FinanceService) ListBackups(dir string) ([]backup.Backup, error) {
	return s.backups.List(s.backupDir(dir))
}

func (s *FinanceService) DeleteBackup(path string) error {
	return s.backups.Delete(path)
}

func (s *FinanceService) DatabaseInfo() (backup.DatabaseInfo, error) {
	return s.backups.DatabaseInfo()
}

// Restore closes the store, replaces the database with the backup at path and
// reopens it. When the copy fails the original database is reopened instead.
// A closed service may be restored; until a reopen succeeds every call
// returns ErrClosed.
func (s *FinanceService) Restore(ctx context.Context, path string, backupCurrent bool) error {
	if err := s.Close(); err != nil {
		return errors.Join(fmt.Errorf("close store: %w", err), s.reopen())
	}

	restoreErr := s.backups.Restore(path, backupCurrent)
	if err := s.reopen(); err != nil {
		return errors.Join(restoreErr, err)
	}
	if restoreErr != nil {
		return restoreErr
	}

	slog.InfoContext(ctx, "Database restored",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpRestore,
		log.FieldBackupPath, path)
	return nil
}
