package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sems/integration-service/constants"
	"github.com/sems/integration-service/internal/entity"
	"github.com/sems/integration-service/internal/repository"
)

const exportPageSize = 1000

// Service is a tiny façade over the invoice repository that produces XLSX
// bytes for exports.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) for all invoices,
// optionally filtered by status.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, status *constants.InvoiceStatus) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"ID",
		"File Name",
		"Status",
		"Invoice Number",
		"Vendor",
		"Invoice Date",
		"Total Amount",
		"Line Items",
		"Error",
		"Created At",
		"Updated At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	total := 0
	for skip := 0; ; skip += exportPageSize {
		recs, err := s.invoices.List(ctx, status, skip, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("query invoices: %w", err)
		}
		if len(recs) == 0 {
			break
		}
		for _, rec := range recs {
			writeInvoiceRow(f, sheet, row, rec)
			row++
		}
		total += len(recs)
		if len(recs) < exportPageSize {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("invoices exported",
		"rows", total,
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeInvoiceRow(f *excelize.File, sheet string, row int, rec *entity.InvoiceRecord) {
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, rec.ID.String())
	write(2, rec.FileName)
	write(3, string(rec.Status))
	if rec.ParsedData != nil {
		write(4, deref(rec.ParsedData.InvoiceNumber))
		write(5, deref(rec.ParsedData.CompanyName))
		write(6, deref(rec.ParsedData.Date))
		write(7, deref(rec.ParsedData.TotalAmount))
		write(8, len(rec.ParsedData.LineItems))
	}
	write(9, deref(rec.Error))
	write(10, rec.CreatedAt.UTC().Format(time.RFC3339))
	write(11, rec.UpdatedAt.UTC().Format(time.RFC3339))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
