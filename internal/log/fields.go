package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldTripID      = "trip_id"
	FieldRecordID    = "record_id"
	FieldEntryID     = "entry_id"
	FieldVehicleType = "vehicle_type"
	FieldAmount      = "amount"
	FieldAllowance   = "allowance"
	FieldDistanceKm  = "distance_km"
	FieldDataVersion = "data_version"
	FieldStorageKey  = "storage_key"
	FieldReceipt     = "receipt"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentMigration = "migration"
	ComponentBackup    = "backup"
	ComponentReceipts  = "receipts"
	ComponentExport    = "export"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpUpsert   = "upsert"
	OpMigrate  = "migrate"
	OpPersist  = "persist"
	OpValidate = "validate"
	OpParse    = "parse"
	OpExport   = "export"
	OpImport   = "import"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
