package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sems/integration-service/internal/entity"
)

func TestNotifyInvoiceProcessed(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		gotPayload     Payload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, 5*time.Second, nil)
	id := uuid.New()
	number, vendor, date, total := "INV-5", "Globex", "01/02/2024", "10.00"
	parsed := &entity.ParsedInvoice{
		InvoiceNumber: &number,
		CompanyName:   &vendor,
		Date:          &date,
		TotalAmount:   &total,
		LineItems: []entity.LineItem{
			{Description: "Widget Assembly Kit", Quantity: "3", UnitPrice: "10.50", Total: "31.50"},
		},
	}

	if ok := n.NotifyInvoiceProcessed(context.Background(), id, parsed); !ok {
		t.Fatal("notification rejected, want accepted")
	}

	if gotPath != "/api/v1/notifications/invoice-processed" {
		t.Errorf("path = %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotPayload.InvoiceID != id.String() {
		t.Errorf("invoiceId = %q", gotPayload.InvoiceID)
	}
	if gotPayload.EventType != EventInvoiceProcessed {
		t.Errorf("eventType = %q", gotPayload.EventType)
	}
	if gotPayload.InvoiceNumber == nil || *gotPayload.InvoiceNumber != "INV-5" {
		t.Errorf("invoiceNumber = %v", gotPayload.InvoiceNumber)
	}
	if gotPayload.VendorName == nil || *gotPayload.VendorName != "Globex" {
		t.Errorf("vendorName = %v", gotPayload.VendorName)
	}
	if len(gotPayload.LineItems) != 1 || gotPayload.LineItems[0].UnitPrice != "10.50" {
		t.Errorf("lineItems = %+v", gotPayload.LineItems)
	}
}

func TestNotifyInvoiceProcessedRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, 5*time.Second, nil)
	if ok := n.NotifyInvoiceProcessed(context.Background(), uuid.New(), &entity.ParsedInvoice{}); ok {
		t.Error("non-2xx response must report failure")
	}
}

func TestNotifyInvoiceProcessedUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	n := NewHTTPNotifier(srv.URL, time.Second, nil)
	if ok := n.NotifyInvoiceProcessed(context.Background(), uuid.New(), &entity.ParsedInvoice{}); ok {
		t.Error("transport error must report failure")
	}
}

func TestBuildPayloadNilParsed(t *testing.T) {
	id := uuid.New()
	p := buildPayload(id, nil)
	if p.InvoiceID != id.String() || p.EventType != EventInvoiceProcessed {
		t.Errorf("payload = %+v", p)
	}
	if p.LineItems == nil || len(p.LineItems) != 0 {
		t.Errorf("lineItems = %v, want empty slice", p.LineItems)
	}
}
