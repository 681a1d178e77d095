package extract

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sems/integration-service/internal/entity"
	"github.com/sems/integration-service/internal/ingest"
	"github.com/sems/integration-service/internal/ocr"
)

// Parser turns raw document bytes into a ParsedInvoice.
type Parser interface {
	Parse(ctx context.Context, document []byte) (*entity.ParsedInvoice, error)
}

// DocumentParser composes rendering, recognition and rule extraction. Only
// ingest and OCR failures propagate; field and line-item extraction are total
// over the recognized text.
type DocumentParser struct {
	renderer ingest.Renderer
	text     *ocr.TextExtractor
	fields   *FieldExtractor
	logger   *slog.Logger
}

func NewDocumentParser(renderer ingest.Renderer, text *ocr.TextExtractor, fields *FieldExtractor, logger *slog.Logger) *DocumentParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentParser{renderer: renderer, text: text, fields: fields, logger: logger}
}

// Parse runs ingest -> OCR, then extracts fields and line items from the same
// text. The two extractions are independent and run concurrently.
func (p *DocumentParser) Parse(ctx context.Context, document []byte) (*entity.ParsedInvoice, error) {
	start := time.Now()

	pages, err := p.renderer.Render(ctx, document)
	if err != nil {
		return nil, err
	}

	text, err := p.text.ExtractText(ctx, pages)
	if err != nil {
		return nil, err
	}

	var fields map[string]*string
	var items []entity.LineItem
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		fields = p.fields.ExtractFields(text)
		return nil
	})
	g.Go(func() error {
		items = ExtractLineItems(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parsed := &entity.ParsedInvoice{
		InvoiceNumber: fields[FieldInvoiceNumber],
		Date:          fields[FieldDate],
		TotalAmount:   fields[FieldTotalAmount],
		CompanyName:   fields[FieldCompanyName],
		VendorTaxID:   fields[FieldVendorTaxID],
		LineItems:     items,
	}

	p.logger.Info("parse.done",
		"pages", len(pages),
		"text_bytes", len(text),
		"line_items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return parsed, nil
}
