package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldAccountID     = "account_id"
	FieldAccountName   = "account_name"
	FieldAccountType   = "account_type"
	FieldCategoryID    = "category_id"
	FieldCategoryName  = "category_name"
	FieldTransactionID = "transaction_id"
	FieldTxType        = "transaction_type"
	FieldAmount        = "amount"
	FieldBalance       = "balance"
	FieldDate          = "date"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldBatchID       = "batch_id"
	FieldRow           = "row"
	FieldSucceeded     = "succeeded"
	FieldFailed        = "failed"
	FieldPath          = "path"
	FieldBackupPath    = "backup_path"
	FieldSizeBytes     = "size_bytes"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentReconcile = "reconcile"
	ComponentReport    = "report"
	ComponentImport    = "import"
	ComponentExport    = "export"
	ComponentBackup    = "backup"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpReconcile = "reconcile"
	OpImport    = "import"
	OpExport    = "export"
	OpBackup    = "backup"
	OpRestore   = "restore"
	OpMigrate   = "migrate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBatch adds import batch fields
func (f LogFields) WithBatch(batchID string, accountID int64) LogFields {
	f[FieldBatchID] = batchID
	f[FieldAccountID] = accountID
	return f
}

// WithCounts adds success/failure tallies
func (f LogFields) WithCounts(succeeded, failed int) LogFields {
	f[FieldSucceeded] = succeeded
	f[FieldFailed] = failed
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, accountID int64, amount string, txType string) LogFields {
	f[FieldTransactionID] = id
	f[FieldAccountID] = accountID
	f[FieldAmount] = amount
	f[FieldTxType] = txType
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
