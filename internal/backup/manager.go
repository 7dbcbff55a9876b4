// Package backup copies the ledger database to and from timestamped files.
package backup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fintrack/internal/log"
)

const (
	// FilePrefix starts every backup file name.
	FilePrefix = "finance_backup_"
	// TimestampLayout follows FilePrefix in backup file names.
	TimestampLayout = "20060102_150405"
	// PreRestoreDir sits next to the database and receives the copy taken before a restore.
	PreRestoreDir = "pre_restore_backups"
)

var ErrNotFound = errors.New("file not found")

// Backup describes one backup file.
type Backup struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// SizeMB returns the size in mebibytes.
func (b Backup) SizeMB() float64 {
	return float64(b.Size) / (1024 * 1024)
}

// DatabaseInfo describes the live database file.
type DatabaseInfo struct {
	Path       string
	Exists     bool
	Size       int64
	ModifiedAt time.Time
}

type Manager struct {
	dbPath string
	now    func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time used to stamp backup names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{dbPath: dbPath, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DBPath returns the database this manager backs up.
func (m *Manager) DBPath() string {
	return m.dbPath
}

func (m *Manager) ext() string {
	if ext := filepath.Ext(m.dbPath); ext != "" {
		return ext
	}
	return ".db"
}

// Create copies the database into dir, which defaults to the database's own
// directory and is created when missing. It returns the backup path.
func (m *Manager) Create(dir string) (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("database %s: %w", m.dbPath, ErrNotFound)
		}
		return "", fmt.Errorf("stat database: %w", err)
	}
	if dir == "" {
		dir = filepath.Dir(m.dbPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := FilePrefix + m.now().Format(TimestampLayout) + m.ext()
	dst := filepath.Join(dir, name)
	if err := copyFile(m.dbPath, dst); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	slog.Info("Backup created",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpBackup,
		log.FieldPath, m.dbPath,
		log.FieldBackupPath, dst)
	return dst, nil
}

// Restore overwrites the database with the file at path. With backupCurrent,
// the existing database is first copied into PreRestoreDir next to it.
// The caller must close any open handle on the database beforehand.
func (m *Manager) Restore(path string, backupCurrent bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("stat backup: %w", err)
	}

	if backupCurrent {
		if _, err := os.Stat(m.dbPath); err == nil {
			if _, err := m.Create(filepath.Join(filepath.Dir(m.dbPath), PreRestoreDir)); err != nil {
				return fmt.Errorf("backup current database: %w", err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.dbPath), 0755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	if err := copyFile(path, m.dbPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	slog.Info("Backup restored",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpRestore,
		log.FieldPath, m.dbPath,
		log.FieldBackupPath, path)
	return nil
}

// List returns the backups in dir, newest first. A missing directory yields
// an empty list. Creation time comes from the timestamp in the file name and
// falls back to the modification time for names that do not parse.
func (m *Manager) List(dir string) ([]Backup, error) {
	if dir == "" {
		dir = filepath.Dir(m.dbPath)
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	ext := m.ext()
	var backups []Backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup %s: %w", name, err)
		}
		created, err := time.ParseInLocation(TimestampLayout,
			strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), ext), time.Local)
		if err != nil {
			created = info.ModTime()
		}
		backups = append(backups, Backup{
			Name:      name,
			Path:      filepath.Join(dir, name),
			Size:      info.Size(),
			CreatedAt: created,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Delete removes one backup file.
func (m *Manager) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("delete backup: %w", err)
	}
	slog.Info("Backup deleted",
		log.FieldComponent, log.ComponentBackup,
		log.FieldOperation, log.OpDelete,
		log.FieldBackupPath, path)
	return nil
}

// DatabaseInfo reports on the live database file. A missing file is not an error.
func (m *Manager) DatabaseInfo() (DatabaseInfo, error) {
	info := DatabaseInfo{Path: m.dbPath}
	st, err := os.Stat(m.dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("stat database: %w", err)
	}
	info.Exists = true
	info.Size = st.Size()
	info.ModifiedAt = st.ModTime()
	return info, nil
}

// copyFile writes src to a temporary sibling of dst and renames it into place,
// keeping src's modification time.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".fintrack-copy-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), st.Mode().Perm()); err != nil {
		return err
	}
	if err = os.Chtimes(tmp.Name(), st.ModTime(), st.ModTime()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
