package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sems/integration-service/constants"
	"github.com/sems/integration-service/internal/entity"
)

type fakeStore struct {
	recs []*entity.InvoiceRecord
	err  error
}

func (s *fakeStore) Insert(context.Context, *entity.InvoiceRecord) error { return nil }

func (s *fakeStore) GetByID(context.Context, uuid.UUID) (*entity.InvoiceRecord, error) {
	return nil, nil
}

func (s *fakeStore) List(_ context.Context, _ *constants.InvoiceStatus, skip, limit int) ([]*entity.InvoiceRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if skip >= len(s.recs) {
		return nil, nil
	}
	end := skip + limit
	if end > len(s.recs) {
		end = len(s.recs)
	}
	return s.recs[skip:end], nil
}

func (s *fakeStore) MarkCompleted(context.Context, uuid.UUID, *entity.ParsedInvoice) error {
	return nil
}

func (s *fakeStore) MarkFailed(context.Context, uuid.UUID, string) error { return nil }

func TestExportInvoicesXLSX(t *testing.T) {
	number, vendor, total := "INV-42", "Globex", "31.50"
	failure := "recognition failed on page 1"
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	store := &fakeStore{recs: []*entity.InvoiceRecord{
		{
			ID:       uuid.New(),
			FileName: "a.pdf",
			Status:   constants.StatusCompleted,
			ParsedData: &entity.ParsedInvoice{
				InvoiceNumber: &number,
				CompanyName:   &vendor,
				TotalAmount:   &total,
				LineItems:     []entity.LineItem{{Description: "Widget Assembly Kit"}},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			FileName:  "b.pdf",
			Status:    constants.StatusFailed,
			Error:     &failure,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}}

	data, err := NewService(store, nil).ExportInvoicesXLSX(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExportInvoicesXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	const sheet = "Invoices"
	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", ref, err)
		}
		return v
	}

	if got := cell("A1"); got != "ID" {
		t.Errorf("A1 = %q", got)
	}
	if got := cell("D2"); got != "INV-42" {
		t.Errorf("D2 = %q", got)
	}
	if got := cell("E2"); got != "Globex" {
		t.Errorf("E2 = %q", got)
	}
	if got := cell("C3"); got != string(constants.StatusFailed) {
		t.Errorf("C3 = %q", got)
	}
	if got := cell("I3"); got != failure {
		t.Errorf("I3 = %q", got)
	}
}

func TestExportInvoicesXLSXRepositoryError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	if _, err := NewService(store, nil).ExportInvoicesXLSX(context.Background(), nil); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestExportInvoicesXLSXEmpty(t *testing.T) {
	data, err := NewService(&fakeStore{}, nil).ExportInvoicesXLSX(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExportInvoicesXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Invoices")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}
