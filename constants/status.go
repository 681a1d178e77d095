package constants

// InvoiceStatus is the canonical status for rows in invoices.
type InvoiceStatus string

// Stable values (store these exact strings in DB).
const (
	StatusProcessing InvoiceStatus = "PROCESSING" // record created, extraction in flight
	StatusCompleted  InvoiceStatus = "COMPLETED"  // terminal: parsed data persisted
	StatusFailed     InvoiceStatus = "FAILED"     // terminal: extraction failed
)

// IsTerminal reports whether a record in this status may never transition again.
func (s InvoiceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus maps a string to a known status; ok is false for anything else.
func ParseStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(s) {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return InvoiceStatus(s), true
	}
	return "", false
}
