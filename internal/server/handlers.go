package server

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sems/integration-service/constants"
	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/entity"
	"github.com/sems/integration-service/internal/export"
	"github.com/sems/integration-service/internal/ingest"
	"github.com/sems/integration-service/internal/pipeline"
	"github.com/sems/integration-service/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type (
	InvoiceHandler interface {
		UploadInvoice(c *fiber.Ctx) error
		GetInvoice(c *fiber.Ctx) error
		ListInvoices(c *fiber.Ctx) error
		ExportInvoices(c *fiber.Ctx) error
		Health(c *fiber.Ctx) error
	}

	invoiceHandler struct {
		invoices  repository.InvoiceRepository
		queue     pipeline.Queue
		exporter  *export.Service
		uploadDir string
		logger    *slog.Logger
	}
)

func NewInvoiceHandler(invoices repository.InvoiceRepository, queue pipeline.Queue, exporter *export.Service, uploadDir string, logger *slog.Logger) InvoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceHandler{
		invoices:  invoices,
		queue:     queue,
		exporter:  exporter,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// uploadResponse is returned immediately; extraction happens in the background.
type uploadResponse struct {
	ID       string                  `json:"id"`
	FileName string                  `json:"file_name"`
	Status   constants.InvoiceStatus `json:"status"`
	Message  string                  `json:"message"`
}

func (h *invoiceHandler) UploadInvoice(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "file is required", err)
	}

	if ct := fileHeader.Header.Get(fiber.HeaderContentType); ct != constants.PDFContentType {
		return ErrorResponse(c, fiber.StatusBadRequest, "only PDF files are accepted", nil)
	}
	if !constants.IsAllowedExt(filepath.Ext(fileHeader.Filename)) {
		return ErrorResponse(c, fiber.StatusBadRequest, "only PDF files are accepted", nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "failed to read upload", err)
	}
	document, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "failed to read upload", err)
	}

	// Reject malformed documents before any record exists.
	if err := ingest.ValidateDocument(document); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "only PDF files are accepted", err)
	}

	invoiceID := uuid.New()
	fileName := filepath.Base(fileHeader.Filename)
	documentPath := filepath.Join(h.uploadDir, invoiceID.String()+"_"+fileName)
	if err := os.WriteFile(documentPath, document, 0o600); err != nil {
		h.logger.Error("failed to save upload", "invoice_id", invoiceID, "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to save upload", err)
	}

	now := time.Now().UTC()
	rec := &entity.InvoiceRecord{
		ID:        invoiceID,
		FileName:  fileName,
		Status:    constants.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.invoices.Insert(c.Context(), rec); err != nil {
		h.logger.Error("failed to create invoice record", "invoice_id", invoiceID, "error", err)
		if rmErr := os.Remove(documentPath); rmErr != nil {
			h.logger.Warn("failed to remove orphaned upload", "path", documentPath, "error", rmErr)
		}
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to create invoice record", err)
	}

	if err := h.queue.Enqueue(c.Context(), pipeline.Job{
		InvoiceID:    invoiceID,
		DocumentPath: documentPath,
		SubmittedAt:  now,
	}); err != nil {
		h.logger.Error("failed to enqueue invoice", "invoice_id", invoiceID, "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to start processing", err)
	}

	h.logger.Info("invoice accepted", "invoice_id", invoiceID, "file_name", fileName, "bytes", len(document))
	return SuccessResponse(c, fiber.StatusOK, uploadResponse{
		ID:       invoiceID.String(),
		FileName: fileName,
		Status:   constants.StatusProcessing,
		Message:  "invoice upload successful, processing started",
	})
}

func (h *invoiceHandler) GetInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "id must be a UUID", err)
	}

	rec, err := h.invoices.GetByID(c.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ErrorResponse(c, fiber.StatusNotFound, "invoice not found", nil)
		}
		h.logger.Error("failed to fetch invoice", "invoice_id", invoiceID, "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to fetch invoice", err)
	}
	return SuccessResponse(c, fiber.StatusOK, rec)
}

func (h *invoiceHandler) ListInvoices(c *fiber.Ctx) error {
	status, err := statusFilter(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid status filter", err)
	}
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	recs, err := h.invoices.List(c.Context(), status, skip, limit)
	if err != nil {
		h.logger.Error("failed to list invoices", "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to list invoices", err)
	}
	if recs == nil {
		recs = []*entity.InvoiceRecord{}
	}
	return SuccessResponse(c, fiber.StatusOK, recs)
}

func (h *invoiceHandler) ExportInvoices(c *fiber.Ctx) error {
	status, err := statusFilter(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid status filter", err)
	}

	data, err := h.exporter.ExportInvoicesXLSX(c.Context(), status)
	if err != nil {
		h.logger.Error("failed to export invoices", "error", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "failed to export invoices", err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoices.xlsx"`)
	return c.Send(data)
}

func (h *invoiceHandler) Health(c *fiber.Ctx) error {
	return SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"status":  "healthy",
		"service": "integration-service",
	})
}

func statusFilter(c *fiber.Ctx) (*constants.InvoiceStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status, ok := constants.ParseStatus(raw)
	if !ok {
		return nil, common.NewAppError("INVALID_STATUS", "unknown status "+raw, common.ErrInvalidInput)
	}
	return &status, nil
}
