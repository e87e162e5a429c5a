package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldReceiptID   = "receipt_id"
	FieldVersion     = "version"
	FieldStore       = "store"
	FieldDate        = "date"
	FieldItemName    = "item_name"
	FieldItemCount   = "item_count"
	FieldAmountCents = "amount_cents"
	FieldOwners      = "owners"
	FieldReceiptType = "receipt_type"
	FieldRowRef      = "row_ref"
	FieldRowCount    = "row_count"
	FieldSheet       = "sheet"
	FieldSortBy      = "sort_by"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentConsole = "console"
	ComponentSession = "session"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAppend   = "append"
	OpRead     = "read"
	OpRewrite  = "rewrite"
	OpSort     = "sort"
	OpSync     = "sync"
	OpInfo     = "info"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error field when err is non-nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithReceipt adds the fields identifying a recorded receipt.
func (f LogFields) WithReceipt(date, store, receiptType string, totalCents int64) LogFields {
	f[FieldDate] = date
	f[FieldStore] = store
	f[FieldReceiptType] = receiptType
	f[FieldAmountCents] = totalCents
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
