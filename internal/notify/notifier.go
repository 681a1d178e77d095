package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sems/integration-service/internal/entity"
)

// EventInvoiceProcessed is the event type the downstream system dispatches on.
const EventInvoiceProcessed = "INVOICE_PROCESSED"

// Notifier informs a downstream system that an invoice finished processing.
// Notification is best-effort: a false return is logged by callers but never
// affects the persisted record.
type Notifier interface {
	NotifyInvoiceProcessed(ctx context.Context, invoiceID uuid.UUID, parsed *entity.ParsedInvoice) bool
}

// Payload is the wire shape the notification service expects.
type Payload struct {
	InvoiceID     string            `json:"invoiceId"`
	InvoiceNumber *string           `json:"invoiceNumber"`
	VendorName    *string           `json:"vendorName"`
	InvoiceDate   *string           `json:"invoiceDate"`
	TotalAmount   *string           `json:"totalAmount"`
	LineItems     []LineItemPayload `json:"lineItems"`
	EventType     string            `json:"eventType"`
}

type LineItemPayload struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Total       string `json:"total"`
}

// HTTPNotifier posts processed-invoice events to the notification service.
type HTTPNotifier struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPNotifier(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPNotifier{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NotifyInvoiceProcessed sends the event. Any transport error or non-2xx
// response is a soft failure: it returns false and never raises.
func (n *HTTPNotifier) NotifyInvoiceProcessed(ctx context.Context, invoiceID uuid.UUID, parsed *entity.ParsedInvoice) bool {
	url := n.baseURL + "/api/v1/notifications/invoice-processed"
	start := time.Now()

	bs, err := json.Marshal(buildPayload(invoiceID, parsed))
	if err != nil {
		n.logger.Error("notify.encode_error", "invoice_id", invoiceID, "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		n.logger.Error("notify.build_request_error", "invoice_id", invoiceID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("notify.send_error",
			"invoice_id", invoiceID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		n.logger.Warn("notify.rejected",
			"invoice_id", invoiceID,
			"status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return false
	}

	n.logger.Info("notify.ok",
		"invoice_id", invoiceID,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return true
}

func buildPayload(invoiceID uuid.UUID, parsed *entity.ParsedInvoice) Payload {
	p := Payload{
		InvoiceID: invoiceID.String(),
		LineItems: []LineItemPayload{},
		EventType: EventInvoiceProcessed,
	}
	if parsed == nil {
		return p
	}
	p.InvoiceNumber = parsed.InvoiceNumber
	p.VendorName = parsed.CompanyName
	p.InvoiceDate = parsed.Date
	p.TotalAmount = parsed.TotalAmount
	for _, item := range parsed.LineItems {
		p.LineItems = append(p.LineItems, LineItemPayload{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return p
}
