package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sems/integration-service/constants"
)

// InvoiceRecord represents an uploaded invoice for data transfer between layers.
// ParsedData and Error are mutually exclusive: exactly one is set once the
// record reaches a terminal status.
type InvoiceRecord struct {
	ID         uuid.UUID               `json:"id"`
	FileName   string                  `json:"file_name"`
	Status     constants.InvoiceStatus `json:"status"`
	ParsedData *ParsedInvoice          `json:"parsed_data,omitempty"`
	Error      *string                 `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// ParsedInvoice holds the fields recovered from a document. A nil pointer
// means the field was not found in the text, which is a normal outcome.
type ParsedInvoice struct {
	InvoiceNumber *string    `json:"invoice_number"`
	Date          *string    `json:"date"`
	TotalAmount   *string    `json:"total_amount"`
	CompanyName   *string    `json:"company_name"`
	VendorTaxID   *string    `json:"vendor_tax_id"`
	LineItems     []LineItem `json:"line_items"`
}

// LineItem is one row of a tabular billing section. Values are kept as the
// strings matched in the text; no numeric normalization is attempted.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}
