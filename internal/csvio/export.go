// Package csvio moves transactions between the ledger and flat CSV files.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"fintrack/internal/core"
)

var ErrNothingToExport = errors.New("no transactions to export")

// ExportHeader is the fixed column layout written by Export.
var ExportHeader = []string{"date", "account", "category", "type", "amount", "description"}

// ExportColumns maps files written by Export back onto the importer.
var ExportColumns = ColumnMapping{Date: 0, Category: 2, Type: 3, Amount: 4, Description: 5}

// Export writes one row per transaction, in the order given.
func Export(w io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.Date.String(),
			t.AccountName,
			t.CategoryName,
			string(t.Type),
			t.Amount.String(),
			t.Description,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportFile creates (or truncates) path and exports txs into it. Nothing is
// written when txs is empty.
func ExportFile(path string, txs []core.Transaction) (err error) {
	if len(txs) == 0 {
		return ErrNothingToExport
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()

	return Export(f, txs)
}
