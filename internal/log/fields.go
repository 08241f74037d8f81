package log

// Shared field names so records stay greppable across binaries.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	FieldOwnerID    = "owner_id"
	FieldListID     = "list_id"
	FieldItemID     = "item_id"
	FieldCreditID   = "credit_id"
	FieldCategory   = "category"
	FieldValueCents = "value_cents"
	FieldWindow     = "window"
	FieldDueDate    = "due_date"

	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldRemoteAddr = "remote_addr"
)

// Component names.
const (
	ComponentMain    = "main"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentSummary = "summary"
	ComponentSweep   = "sweep"
	ComponentWatcher = "watcher"
	ComponentAMQP    = "amqp"
	ComponentMail    = "mail"
	ComponentCache   = "cache"
)
