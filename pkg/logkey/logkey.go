package logkey

// Shared keys for structured log attributes so log queries stay consistent
// across packages.
const (
	TraceID       = "TRACE ID"
	ERROR         = "ERROR"
	SessionID     = "SESSION ID"
	OrderID       = "ORDER ID"
	ProductID     = "PRODUCT ID"
	TransactionID = "TRANSACTION ID"
)
