package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sems/integration-service/constants"
	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/entity"
)

// InvoiceRepository is the record store for invoice processing state.
// Terminal transitions are conditional on the current status being
// PROCESSING, so a record can reach a terminal state at most once.
type InvoiceRepository interface {
	Insert(ctx context.Context, rec *entity.InvoiceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceRecord, error)
	List(ctx context.Context, status *constants.InvoiceStatus, skip, limit int) ([]*entity.InvoiceRecord, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, parsed *entity.ParsedInvoice) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

type invoiceRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepo{pool: pool, logger: logger}
}

const invoiceColumns = `id, file_name, status, parsed_data, error, created_at, updated_at`

func (r *invoiceRepo) Insert(ctx context.Context, rec *entity.InvoiceRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO invoices (id, file_name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.FileName, string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert invoice", "invoice_id", rec.ID, "error", err)
		return common.NewAppError("DB_INSERT", "insert invoice", errors.Join(common.ErrDatabase, err))
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	rec, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("invoice %s not found", id), common.ErrNotFound)
		}
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, common.NewAppError("DB_QUERY", "get invoice", errors.Join(common.ErrDatabase, err))
	}
	return rec, nil
}

func (r *invoiceRepo) List(ctx context.Context, status *constants.InvoiceStatus, skip, limit int) ([]*entity.InvoiceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list invoices", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var recs []*entity.InvoiceRecord
	for rows.Next() {
		rec, err := scanInvoice(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan invoice", errors.Join(common.ErrDatabase, err))
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_QUERY", "list invoices", errors.Join(common.ErrDatabase, err))
	}
	return recs, nil
}

func (r *invoiceRepo) MarkCompleted(ctx context.Context, id uuid.UUID, parsed *entity.ParsedInvoice) error {
	data, err := json.Marshal(parsed)
	if err != nil {
		return common.NewAppError("DB_ENCODE", "encode parsed data", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices
		 SET status = $2, parsed_data = $3, error = NULL, updated_at = $4
		 WHERE id = $1 AND status = $5`,
		id, string(constants.StatusCompleted), data, time.Now().UTC(), string(constants.StatusProcessing),
	)
	if err != nil {
		r.logger.Error("failed to mark invoice completed", "invoice_id", id, "error", err)
		return common.NewAppError("DB_UPDATE", "mark invoice completed", errors.Join(common.ErrDatabase, err))
	}
	return r.checkTransition(ctx, id, tag.RowsAffected())
}

func (r *invoiceRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices
		 SET status = $2, error = $3, parsed_data = NULL, updated_at = $4
		 WHERE id = $1 AND status = $5`,
		id, string(constants.StatusFailed), message, time.Now().UTC(), string(constants.StatusProcessing),
	)
	if err != nil {
		r.logger.Error("failed to mark invoice failed", "invoice_id", id, "error", err)
		return common.NewAppError("DB_UPDATE", "mark invoice failed", errors.Join(common.ErrDatabase, err))
	}
	return r.checkTransition(ctx, id, tag.RowsAffected())
}

// checkTransition distinguishes "no such record" from "record already
// terminal" when a conditional status update matched nothing.
func (r *invoiceRepo) checkTransition(ctx context.Context, id uuid.UUID, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return common.NewAppError("CONFLICT", fmt.Sprintf("invoice %s is already in a terminal state", id), common.ErrInvalidInput)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*entity.InvoiceRecord, error) {
	var (
		rec        entity.InvoiceRecord
		status     string
		parsedData []byte
		errMsg     *string
	)
	if err := row.Scan(&rec.ID, &rec.FileName, &status, &parsedData, &errMsg, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Status = constants.InvoiceStatus(status)
	rec.Error = errMsg
	if len(parsedData) > 0 {
		var parsed entity.ParsedInvoice
		if err := json.Unmarshal(parsedData, &parsed); err != nil {
			return nil, fmt.Errorf("decode parsed_data: %w", err)
		}
		rec.ParsedData = &parsed
	}
	return &rec, nil
}
