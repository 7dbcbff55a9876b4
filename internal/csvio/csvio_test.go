package csvio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeWriter struct {
	saved []core.Transaction
	err   error
}

func (f *fakeWriter) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	t.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, t)
	return t, nil
}

var testCategories = map[string]int64{
	"Groceries":     1,
	"Salary":        2,
	"Other Income":  3,
	"Other Expense": 4,
}

func fullMapping() ColumnMapping {
	return ColumnMapping{Date: 0, Amount: 1, Description: 2, Category: 3, Type: 4}
}

func runImport(t *testing.T, w *fakeWriter, input string, cols ColumnMapping) ImportResult {
	t.Helper()
	res, err := NewImporter(w).Import(context.Background(), strings.NewReader(input), ImportOptions{
		AccountID:  7,
		Columns:    cols,
		Categories: testCategories,
	})
	require.NoError(t, err)
	return res
}

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   bool
	}{
		{
			name:   "named columns",
			sample: "Date,Amount,Description\n2024-01-05,12.50,Coffee\n2024-01-06,3.10,Bus\n",
			want:   true,
		},
		{
			name:   "data only",
			sample: "2024-01-05,12.50,Coffee\n2024-01-06,3.10,Bus ticket\n2024-01-07,8.00,Tea\n",
			want:   false,
		},
		{
			name:   "export layout",
			sample: "date,account,category,type,amount,description\n2024-01-05,Checking,Rent,expense,800.00,\n",
			want:   true,
		},
		{name: "empty", sample: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectHeader([]byte(tt.sample)))
		})
	}
}

func TestSampleOf(t *testing.T) {
	short := []byte("a,b\n1,2\n")
	require.Equal(t, short, sampleOf(short))

	line := strings.Repeat("x", 99) + "\n"
	long := []byte(strings.Repeat(line, 20))
	got := sampleOf(long)
	require.LessOrEqual(t, len(got), SampleSize)
	require.True(t, bytes.HasSuffix(got, []byte("\n")))
	require.Equal(t, 0, len(got)%len(line))
}

func TestImport_AllFields(t *testing.T) {
	w := &fakeWriter{}
	input := "Date,Amount,Description,Category,Type\n" +
		"2024-03-05,\"$1,234.56\",Paycheck,Salary,INCOME\n" +
		"03/06/2024,12.00,Apples,Groceries,expense\n"

	res := runImport(t, w, input, fullMapping())

	require.Equal(t, 2, res.Succeeded)
	require.Zero(t, res.Failed)
	require.NotEmpty(t, res.BatchID)
	require.Len(t, w.saved, 2)

	pay := w.saved[0]
	require.Equal(t, int64(7), pay.AccountID)
	require.Equal(t, int64(2), pay.CategoryID)
	require.Equal(t, core.Income, pay.Type)
	require.Equal(t, int64(123456), pay.Amount.Cents)
	require.Equal(t, "Paycheck", pay.Description)
	require.Equal(t, "2024-03-05", pay.Date.String())
	require.Equal(t, "2024-03-06", w.saved[1].Date.String())
}

func TestImport_RowErrors(t *testing.T) {
	w := &fakeWriter{}
	input := "Date,Amount,Description,Category,Type\n" +
		"yesterday,10.00,a,Groceries,expense\n" +
		"2024-01-02,abc,b,Groceries,expense\n" +
		"2024-01-03,(50.00),c,Groceries,expense\n" +
		"2024-01-04,0,d,Groceries,expense\n" +
		"2024-01-05,5.00,e,Groceries,refund\n" +
		"2024-01-06,5.00\n" +
		"2024-01-08,184467440737095516.17,f,Groceries,expense\n" +
		"2024-01-07,5.00,ok,Groceries,expense\n"

	res := runImport(t, w, input, fullMapping())

	require.Equal(t, 1, res.Succeeded)
	require.Equal(t, 7, res.Failed)
	require.Equal(t, []string{
		"Row 2: Invalid date format 'yesterday'",
		"Row 3: Invalid amount 'abc'",
		"Row 4: Invalid amount '(50.00)'",
		"Row 5: Invalid amount '0'",
		"Row 6: Invalid transaction type 'refund'",
		"Row 7: Invalid row format (not enough columns)",
		"Row 8: Invalid amount '184467440737095516.17'",
	}, res.Errors)
	require.Len(t, w.saved, 1)
	require.Equal(t, "5.00", w.saved[0].Amount.String())
	require.Equal(t, res.Errors[:2], res.FirstErrors(2))
	require.Equal(t, res.Errors, res.FirstErrors(100))
}

func TestImport_BlankLinesKeepRowNumbers(t *testing.T) {
	t.Run("with header", func(t *testing.T) {
		w := &fakeWriter{}
		input := "Date,Amount,Description,Category,Type\n" +
			"2024-01-05,10.00,a,Groceries,expense\n" +
			"\n" +
			"2024-01-06,abc,b,Groceries,expense\n" +
			"\n"

		res := runImport(t, w, input, fullMapping())

		require.Equal(t, 1, res.Succeeded)
		require.Equal(t, []string{
			"Row 3: Invalid row format (not enough columns)",
			"Row 4: Invalid amount 'abc'",
			"Row 5: Invalid row format (not enough columns)",
		}, res.Errors)
	})

	t.Run("crlf without header", func(t *testing.T) {
		w := &fakeWriter{}
		input := "2024-01-05,12.50,Coffee\r\n\r\n2024-01-06,3.10,Tea\r\n"

		res := runImport(t, w, input, ColumnMapping{Date: 0, Amount: 1, Description: 2, Category: Unmapped, Type: Unmapped})

		require.Equal(t, 2, res.Succeeded)
		require.Equal(t, []string{"Row 2: Invalid row format (not enough columns)"}, res.Errors)
	})
}

func TestImport_NoHeaderDefaults(t *testing.T) {
	w := &fakeWriter{}
	input := "2024-01-05,12.50,Coffee\n2024-01-06,3.10,Bus ticket\n2024-01-07,8.00,Tea\n"

	res := runImport(t, w, input, ColumnMapping{Date: 0, Amount: 1, Description: 2, Category: Unmapped, Type: Unmapped})

	require.Equal(t, 3, res.Succeeded)
	for _, tx := range w.saved {
		require.Equal(t, core.Expense, tx.Type)
		require.Equal(t, int64(4), tx.CategoryID)
	}
}

func TestImport_CategoryFallback(t *testing.T) {
	w := &fakeWriter{}
	input := "Date,Amount,Category,Type\n" +
		"2024-01-05,10,Bonus,income\n" +
		"2024-01-06,10,,expense\n"

	res := runImport(t, w, input, ColumnMapping{Date: 0, Amount: 1, Category: 2, Type: 3, Description: Unmapped})

	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, int64(3), w.saved[0].CategoryID)
	require.Equal(t, int64(4), w.saved[1].CategoryID)
}

func TestImport_NoValidCategory(t *testing.T) {
	w := &fakeWriter{}
	res, err := NewImporter(w).Import(context.Background(),
		strings.NewReader("Date,Amount,Category\n2024-01-05,10.00,groceries\n2024-01-06,10.00,Rent\n"),
		ImportOptions{
			AccountID:  1,
			Columns:    ColumnMapping{Date: 0, Amount: 1, Category: 2, Description: Unmapped, Type: Unmapped},
			Categories: map[string]int64{"Groceries": 1},
		})
	require.NoError(t, err)

	require.Zero(t, res.Succeeded)
	require.Equal(t, []string{
		"Row 2: No valid category found (did you mean 'Groceries'?)",
		"Row 3: No valid category found",
	}, res.Errors)
}

func TestImport_StoreErrorIsRowError(t *testing.T) {
	w := &fakeWriter{err: errors.New("disk full")}
	res := runImport(t, w, "2024-01-05,10.00\n2024-01-06,11.00\n", NewColumnMapping(0, 1))

	require.Equal(t, 2, res.Failed)
	require.Equal(t, "Row 1: disk full", res.Errors[0])
}

func TestImport_FileLevelErrors(t *testing.T) {
	im := NewImporter(&fakeWriter{})
	opts := ImportOptions{Columns: NewColumnMapping(0, 1), Categories: testCategories}

	_, err := im.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), opts)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = im.Import(context.Background(), bytes.NewReader([]byte{0xff, 0xfe, 'a'}), opts)
	require.ErrorIs(t, err, ErrEncoding)

	_, err = im.Import(context.Background(), strings.NewReader("x"), ImportOptions{Columns: NewColumnMapping(-1, 1)})
	require.ErrorIs(t, err, ErrInvalidMapping)

	res, err := im.Import(context.Background(), strings.NewReader(""), opts)
	require.NoError(t, err)
	require.Zero(t, res.Succeeded)
	require.Zero(t, res.Failed)
}

func TestImport_StripsBOM(t *testing.T) {
	w := &fakeWriter{}
	res := runImport(t, w, "\ufeff2024-01-05,10.00\n2024-01-06,11.00\n", NewColumnMapping(0, 1))
	require.Equal(t, 2, res.Succeeded)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, Export(&buf, nil), ErrNothingToExport)

	err := Export(&buf, []core.Transaction{{
		Date:         core.NewDate(2024, 3, 5),
		AccountName:  "Checking",
		CategoryName: "Rent",
		Type:         core.Expense,
		Amount:       core.MustMoney("800"),
		Description:  "March, rent",
	}})
	require.NoError(t, err)
	require.Equal(t,
		"date,account,category,type,amount,description\n2024-03-05,Checking,Rent,expense,800.00,\"March, rent\"\n",
		buf.String())

	path := filepath.Join(t.TempDir(), "none.csv")
	require.ErrorIs(t, ExportFile(path, nil), ErrNothingToExport)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffa,b\n1,2\n3,4\n5,6\n"), 0o644))

	rows, err := Preview(path, 2)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)

	_, err = Preview(filepath.Join(t.TempDir(), "nope.csv"), 2)
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "finance.db"))
	require.NoError(t, err)
	defer store.Close()

	src, err := store.CreateAccount(ctx, core.Account{Name: "Checking", Type: core.Debit})
	require.NoError(t, err)
	dst, err := store.CreateAccount(ctx, core.Account{Name: "Copy", Type: core.Debit})
	require.NoError(t, err)
	lookup, err := store.CategoryLookup(ctx)
	require.NoError(t, err)

	inputs := []core.Transaction{
		{AccountID: src.ID, CategoryID: lookup["Salary"], Amount: core.MustMoney("1500.00"), Type: core.Income, Date: core.NewDate(2024, 1, 31), Description: "Pay"},
		{AccountID: src.ID, CategoryID: lookup["Rent"], Amount: core.MustMoney("700.25"), Type: core.Expense, Date: core.NewDate(2024, 2, 1)},
		{AccountID: src.ID, CategoryID: lookup["Dining Out"], Amount: core.MustMoney("19.99"), Type: core.Expense, Date: core.NewDate(2024, 2, 14), Description: "Dinner"},
	}
	for _, in := range inputs {
		_, err := store.CreateTransaction(ctx, in)
		require.NoError(t, err)
	}

	original, err := store.TransactionsByAccount(ctx, src.ID)
	require.NoError(t, err)
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, ExportFile(path, original))

	res, err := NewImporter(store).ImportFile(ctx, path, ImportOptions{
		AccountID:  dst.ID,
		Columns:    ExportColumns,
		Categories: lookup,
	})
	require.NoError(t, err)
	require.Equal(t, len(original), res.Succeeded, "errors: %v", res.Errors)

	copied, err := store.TransactionsByAccount(ctx, dst.ID)
	require.NoError(t, err)
	require.Len(t, copied, len(original))
	for i := range original {
		require.Equal(t, original[i].Date.String(), copied[i].Date.String())
		require.Equal(t, original[i].Amount, copied[i].Amount)
		require.Equal(t, original[i].Type, copied[i].Type)
		require.Equal(t, original[i].CategoryID, copied[i].CategoryID)
	}

	a, err := store.GetAccount(ctx, dst.ID)
	require.NoError(t, err)
	require.Equal(t, "779.76", a.CurrentBalance.String())
}
