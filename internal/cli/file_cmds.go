package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/csvio"
	"fintrack/internal/storage"
)

func (a *App) runImport(ctx context.Context, args []string) error {
	fs := a.newFlags("import")
	file := fs.String("file", "", "CSV file to import")
	account := fs.Int64("account", 0, "target account id")
	dateCol := fs.Int("date", 0, "date column index")
	amountCol := fs.Int("amount", 1, "amount column index")
	descCol := fs.Int("desc", csvio.Unmapped, "description column index, -1 if absent")
	categoryCol := fs.Int("category", csvio.Unmapped, "category column index, -1 if absent")
	typeCol := fs.Int("type", csvio.Unmapped, "type column index, -1 means every row is an expense")
	preview := fs.Int("preview", 0, "only print the first N rows and exit")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if err := required("file", *file != ""); err != nil {
		return err
	}

	if *preview > 0 {
		rows, err := csvio.Preview(*file, *preview)
		if err != nil {
			return err
		}
		width := 0
		for _, r := range rows {
			width = max(width, len(r))
		}
		headers := make([]string, width)
		for i := range headers {
			headers[i] = fmt.Sprint(i)
		}
		for i, r := range rows {
			for len(r) < width {
				r = append(r, "")
			}
			rows[i] = r
		}
		renderTable(a.Out, headers, rows)
		return nil
	}

	if err := required("account", *account > 0); err != nil {
		return err
	}
	cols := csvio.ColumnMapping{
		Date:        *dateCol,
		Amount:      *amountCol,
		Description: *descCol,
		Category:    *categoryCol,
		Type:        *typeCol,
	}
	res, err := a.Service.ImportCSV(ctx, *file, *account, cols)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Imported %d transactions, %d failed (batch %s)\n", res.Succeeded, res.Failed, res.BatchID)
	shown := res.FirstErrors(a.Config.ImportErrorLimit)
	for _, e := range shown {
		fmt.Fprintln(a.Out, "  "+e)
	}
	if hidden := len(res.Errors) - len(shown); hidden > 0 {
		fmt.Fprintf(a.Out, "  ... and %d more\n", hidden)
	}
	return nil
}

func (a *App) runExport(ctx context.Context, args []string) error {
	fs := a.newFlags("export")
	file := fs.String("file", "", "output file, - for stdout")
	format := fs.String("format", "csv", "csv or json")
	account := fs.Int64("account", 0, "only this account (csv)")
	from := fs.String("from", "", "first date, inclusive (csv)")
	to := fs.String("to", "", "last date, inclusive (csv)")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if err := required("file", *file != ""); err != nil {
		return err
	}

	switch strings.ToLower(*format) {
	case "json":
		if *file == "-" {
			return a.Service.ExportJSON(ctx, a.Out)
		}
		f, err := os.Create(*file)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := a.Service.ExportJSON(ctx, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close export file: %w", err)
		}
		fmt.Fprintf(a.Out, "Exported snapshot to %s\n", *file)
		return nil

	case "csv":
		filter := storage.TransactionFilter{AccountID: *account}
		var err error
		if filter.From, err = parseOptionalDate(*from); err != nil {
			return err
		}
		if filter.To, err = parseOptionalDate(*to); err != nil {
			return err
		}
		if *file == "-" {
			store, err := a.Service.Store()
			if err != nil {
				return err
			}
			txs, err := store.ListTransactions(ctx, filter)
			if err != nil {
				return err
			}
			return csvio.Export(a.Out, txs)
		}
		n, err := a.Service.ExportCSV(ctx, *file, filter)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Exported %d transactions to %s\n", n, *file)
		return nil

	default:
		return fmt.Errorf("%w: unknown format %q", ErrUsage, *format)
	}
}

func (a *App) runBackup(ctx context.Context, args []string) error {
	sub, rest, err := subcommand(args, "backup", "create", "list", "restore", "delete", "info")
	if err != nil {
		return err
	}
	fs := a.newFlags("backup " + sub)

	switch sub {
	case "create":
		dir := fs.String("dir", "", "destination directory")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		path, err := a.Service.Backup(*dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Backup created: %s\n", path)
		return nil

	case "list":
		dir := fs.String("dir", "", "directory to scan")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		backups, err := a.Service.ListBackups(*dir)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(backups))
		for _, b := range backups {
			rows = append(rows, []string{
				b.Name,
				b.CreatedAt.Format("2006-01-02 15:04:05"),
				fmt.Sprintf("%.2f MB", b.SizeMB()),
				b.Path,
			})
		}
		renderTable(a.Out, []string{"Name", "Created", "Size", "Path"}, rows, 2)
		return nil

	case "restore":
		file := fs.String("file", "", "backup file to restore")
		noSafety := fs.Bool("no-safety-backup", false, "skip copying the current database first")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("file", *file != ""); err != nil {
			return err
		}
		if err := a.Service.Restore(ctx, *file, !*noSafety); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Restored database from %s\n", *file)
		return nil

	case "delete":
		file := fs.String("file", "", "backup file to delete")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("file", *file != ""); err != nil {
			return err
		}
		if err := a.Service.DeleteBackup(*file); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted backup %s\n", *file)
		return nil

	default: // info
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		info, err := a.Service.DatabaseInfo()
		if err != nil {
			return err
		}
		if !info.Exists {
			fmt.Fprintf(a.Out, "Database %s does not exist\n", info.Path)
			return nil
		}
		renderTable(a.Out, []string{"Path", "Size", "Modified"}, [][]string{{
			info.Path,
			fmt.Sprintf("%.2f MB", float64(info.Size)/(1024*1024)),
			info.ModifiedAt.Format("2006-01-02 15:04:05"),
		}})
		return nil
	}
}

func (a *App) runReconcile(ctx context.Context, args []string) error {
	fs := a.newFlags("reconcile")
	account := fs.Int64("account", 0, "only this account")
	if ok, err := parse(fs, args); !ok {
		return err
	}
	store, err := a.Service.Store()
	if err != nil {
		return err
	}
	if *account > 0 {
		if err := store.ReconcileAccount(ctx, *account); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Reconciled account %d\n", *account)
		return nil
	}
	n, err := store.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Reconciled %d accounts\n", n)
	return nil
}
