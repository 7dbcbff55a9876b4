package csvio

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Unmapped marks an optional column that is absent from the file.
const Unmapped = -1

// Fallback categories used when a row's category is missing or unknown.
const (
	FallbackIncomeCategory  = "Other Income"
	FallbackExpenseCategory = "Other Expense"
)

var (
	ErrInvalidMapping = errors.New("invalid column mapping")
	ErrEncoding       = errors.New("file is not valid UTF-8")
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	newline = []byte{'\n'}
)

const msgShortRow = "Invalid row format (not enough columns)"

// ColumnMapping holds zero-based column indexes. Date and Amount are required.
type ColumnMapping struct {
	Date        int
	Amount      int
	Description int
	Category    int
	Type        int
}

// NewColumnMapping maps date and amount and leaves the rest unmapped.
func NewColumnMapping(date, amount int) ColumnMapping {
	return ColumnMapping{
		Date:        date,
		Amount:      amount,
		Description: Unmapped,
		Category:    Unmapped,
		Type:        Unmapped,
	}
}

func (m ColumnMapping) Validate() error {
	if m.Date < 0 || m.Amount < 0 {
		return fmt.Errorf("%w: date and amount columns are required", ErrInvalidMapping)
	}
	for _, idx := range []int{m.Description, m.Category, m.Type} {
		if idx < Unmapped {
			return fmt.Errorf("%w: negative index %d", ErrInvalidMapping, idx)
		}
	}
	return nil
}

// width is the minimum number of fields a row needs.
func (m ColumnMapping) width() int {
	maxIdx := 0
	for _, idx := range []int{m.Date, m.Amount, m.Description, m.Category, m.Type} {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	return maxIdx + 1
}

// ImportOptions describe where rows go and how to read them.
type ImportOptions struct {
	AccountID  int64
	Columns    ColumnMapping
	Categories map[string]int64 // category name -> id
}

// ImportResult tallies one import. Errors are in row order.
type ImportResult struct {
	BatchID   string
	Succeeded int
	Failed    int
	Errors    []string
}

// FirstErrors returns at most n row errors.
func (r ImportResult) FirstErrors(n int) []string {
	if n < 0 || n >= len(r.Errors) {
		return r.Errors
	}
	return r.Errors[:n]
}

func (r *ImportResult) fail(row int, format string, args ...any) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

// TransactionWriter persists one transaction, reconciling its account.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// Importer turns CSV rows into stored transactions. Each row stands alone: a
// bad row is recorded and skipped, accepted rows stay committed.
type Importer struct {
	store TransactionWriter
}

func NewImporter(store TransactionWriter) *Importer {
	return &Importer{store: store}
}

// ImportFile opens path and imports it. A missing file is an error, bad rows are not.
func (im *Importer) ImportFile(ctx context.Context, path string, opts ImportOptions) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImportResult{}, fmt.Errorf("file not found: %s: %w", path, err)
		}
		return ImportResult{}, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	return im.Import(ctx, f, opts)
}

// Import reads every row from r. Only unreadable input, a bad mapping or a
// cancelled context return an error; row problems land in the result.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (ImportResult, error) {
	if err := opts.Columns.Validate(); err != nil {
		return ImportResult{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv: %w", err)
	}
	if !utf8.Valid(data) {
		return ImportResult{}, ErrEncoding
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	res := ImportResult{BatchID: uuid.NewString()}
	fields := log.NewFields().
		WithComponent(log.ComponentImport).
		WithOperation(log.OpImport).
		WithBatch(res.BatchID, opts.AccountID)
	slog.InfoContext(ctx, "Import started", fields.ToSlice()...)

	hasHeader := DetectHeader(sampleOf(data))
	row := 1
	if hasHeader {
		row = 2
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if hasHeader {
		if _, err := cr.Read(); err != nil && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("read csv header: %w", err)
		}
	}

	// encoding/csv drops empty lines; each one still counts as a short row.
	consumed := cr.InputOffset()
	lines := bytes.Count(data[:consumed], newline)

	for ; ; row++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			for range bytes.Count(data[consumed:], newline) {
				res.fail(row, "%s", msgShortRow)
				row++
			}
			break
		}
		if err == nil {
			start, _ := cr.FieldPos(0)
			for blank := lines + 1; blank < start; blank++ {
				res.fail(row, "%s", msgShortRow)
				row++
			}
		}
		end := cr.InputOffset()
		lines += bytes.Count(data[consumed:end], newline)
		consumed = end

		if err != nil {
			res.fail(row, "%v", err)
			continue
		}

		t, msg := im.buildTransaction(ctx, rec, opts)
		if msg != "" {
			res.fail(row, "%s", msg)
			continue
		}
		if _, err := im.store.CreateTransaction(ctx, t); err != nil {
			res.fail(row, "%v", err)
			continue
		}
		res.Succeeded++
	}

	slog.InfoContext(ctx, "Import finished",
		fields.WithCounts(res.Succeeded, res.Failed).ToSlice()...)
	return res, nil
}

// buildTransaction maps one record, returning a row error message on failure.
func (im *Importer) buildTransaction(ctx context.Context, rec []string, opts ImportOptions) (core.Transaction, string) {
	cols := opts.Columns
	if len(rec) < cols.width() {
		return core.Transaction{}, msgShortRow
	}

	dateStr := strings.TrimSpace(rec[cols.Date])
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Sprintf("Invalid date format '%s'", dateStr)
	}

	amountStr := strings.TrimSpace(rec[cols.Amount])
	amount, err := core.ParseAmount(amountStr)
	if err != nil || !amount.IsPositive() {
		return core.Transaction{}, fmt.Sprintf("Invalid amount '%s'", amountStr)
	}
	money, err := core.NewMoneyFromDecimal(amount)
	if err != nil || money.Validate() != nil {
		return core.Transaction{}, fmt.Sprintf("Invalid amount '%s'", amountStr)
	}

	txType := core.Expense
	if cols.Type != Unmapped {
		raw := strings.ToLower(strings.TrimSpace(rec[cols.Type]))
		parsed, err := core.ParseTransactionType(raw)
		if err != nil {
			return core.Transaction{}, fmt.Sprintf("Invalid transaction type '%s'", raw)
		}
		txType = parsed
	}

	var description string
	if cols.Description != Unmapped {
		description = strings.TrimSpace(rec[cols.Description])
	}

	var name string
	if cols.Category != Unmapped {
		name = strings.TrimSpace(rec[cols.Category])
	}
	categoryID, ok := resolveCategory(opts.Categories, name, txType)
	if !ok {
		msg := "No valid category found"
		if hint := suggestCategory(opts.Categories, name); hint != "" {
			msg += fmt.Sprintf(" (did you mean '%s'?)", hint)
		}
		return core.Transaction{}, msg
	}
	if name != "" && opts.Categories[name] != categoryID {
		slog.DebugContext(ctx, "Unknown category, using fallback",
			log.FieldComponent, log.ComponentImport,
			log.FieldCategoryName, name,
			"suggestion", suggestCategory(opts.Categories, name))
	}

	return core.Transaction{
		AccountID:   opts.AccountID,
		CategoryID:  categoryID,
		Amount:      money,
		Type:        txType,
		Description: description,
		Date:        date,
	}, ""
}

// resolveCategory looks up name, falling back to the "Other" category of txType.
func resolveCategory(lookup map[string]int64, name string, txType core.TransactionType) (int64, bool) {
	if id, ok := lookup[name]; ok && name != "" && id > 0 {
		return id, true
	}
	fallback := FallbackExpenseCategory
	if txType == core.Income {
		fallback = FallbackIncomeCategory
	}
	id, ok := lookup[fallback]
	return id, ok && id > 0
}

// suggestCategory returns the closest known name within edit distance 2.
func suggestCategory(lookup map[string]int64, name string) string {
	if name == "" {
		return ""
	}
	best, bestDist := "", 3
	needle := strings.ToLower(name)
	for candidate := range lookup {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(candidate))
		if d < bestDist || (d == bestDist && candidate < best) {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Preview returns up to n leading records of path, header included, for
// choosing a column mapping.
func Preview(path string, n int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for len(rows) < n {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv preview: %w", err)
		}
		if len(rows) == 0 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], string(utf8BOM))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
