package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/extract"
	"github.com/sems/integration-service/internal/notify"
	"github.com/sems/integration-service/internal/repository"
	"github.com/sems/integration-service/internal/storage"
)

// Processor drives one invoice through its lifecycle: parse the transient
// document, persist the terminal state, notify downstream on success, and
// release the transient file on every exit path.
type Processor struct {
	parser   extract.Parser
	invoices repository.InvoiceRepository
	notifier notify.Notifier
	archiver storage.Archiver // nil disables archival
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func NewProcessor(parser extract.Parser, invoices repository.InvoiceRepository, notifier notify.Notifier, archiver storage.Archiver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		parser:   parser,
		invoices: invoices,
		notifier: notifier,
		archiver: archiver,
		logger:   logger,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// ProcessInvoice runs the state machine for one PROCESSING record.
//
// Extraction failures are terminal: the record transitions to FAILED with the
// failure message and nil is returned. Persistence failures are not masked;
// they propagate and can leave the record stuck in PROCESSING. A failed
// notification leaves the invoice COMPLETED.
func (p *Processor) ProcessInvoice(ctx context.Context, invoiceID uuid.UUID, documentPath string) error {
	if !p.begin(invoiceID) {
		return common.NewAppError("CONFLICT",
			fmt.Sprintf("invoice %s is already being processed", invoiceID), common.ErrInvalidInput)
	}
	defer p.end(invoiceID)
	defer p.release(invoiceID, documentPath)

	document, err := os.ReadFile(documentPath)
	if err != nil {
		err = common.NewIngestError("failed to read document", err)
		p.logger.Error("pipeline.parse.failed", "invoice_id", invoiceID, "error", err)
		return p.markFailed(ctx, invoiceID, err)
	}

	parsed, err := p.parser.Parse(ctx, document)
	if err != nil {
		p.logger.Error("pipeline.parse.failed", "invoice_id", invoiceID, "error", err)
		return p.markFailed(ctx, invoiceID, err)
	}

	if err := p.invoices.MarkCompleted(ctx, invoiceID, parsed); err != nil {
		p.logger.Error("pipeline.mark_completed.error", "invoice_id", invoiceID, "error", err)
		return err
	}
	p.logger.Info("pipeline.completed", "invoice_id", invoiceID, "line_items", len(parsed.LineItems))

	// The record is already COMPLETED; notification cannot change that.
	if ok := p.notifier.NotifyInvoiceProcessed(ctx, invoiceID, parsed); !ok {
		p.logger.Warn("pipeline.notify.failed", "invoice_id", invoiceID)
	}

	p.archive(ctx, invoiceID, documentPath, document)
	return nil
}

// markFailed records the terminal FAILED state. The extraction error itself
// is handled here; only a persistence failure propagates.
func (p *Processor) markFailed(ctx context.Context, invoiceID uuid.UUID, cause error) error {
	if err := p.invoices.MarkFailed(ctx, invoiceID, cause.Error()); err != nil {
		p.logger.Error("pipeline.mark_failed.error", "invoice_id", invoiceID, "error", err)
		return err
	}
	return nil
}

func (p *Processor) archive(ctx context.Context, invoiceID uuid.UUID, documentPath string, document []byte) {
	if p.archiver == nil {
		return
	}
	key := invoiceID.String() + "/" + filepath.Base(documentPath)
	if err := p.archiver.Archive(ctx, key, bytes.NewReader(document)); err != nil {
		p.logger.Warn("pipeline.archive.failed", "invoice_id", invoiceID, "key", key, "error", err)
	}
}

// release deletes the transient document. It runs exactly once per
// invocation, on every exit path.
func (p *Processor) release(invoiceID uuid.UUID, documentPath string) {
	if documentPath == "" {
		return
	}
	if err := os.Remove(documentPath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("pipeline.cleanup.failed", "invoice_id", invoiceID, "path", documentPath, "error", err)
		return
	}
	p.logger.Debug("pipeline.cleanup.done", "invoice_id", invoiceID, "path", documentPath)
}

// begin reserves the invoice id; at most one processing task may hold it.
func (p *Processor) begin(invoiceID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inflight[invoiceID]; busy {
		return false
	}
	p.inflight[invoiceID] = struct{}{}
	return true
}

func (p *Processor) end(invoiceID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, invoiceID)
}
