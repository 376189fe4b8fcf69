package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo implementación de CreditNoteRepository (usable con pool o tx).
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

// Create persiste una nota de crédito.
func (r *CreditNoteRepo) Create(note *entity.CreditNote) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	query := `
		INSERT INTO credit_notes
			(id, invoice_id, note_number, amount, reason, issue_date, attachment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		note.ID, note.InvoiceID, note.NoteNumber, note.Amount, note.Reason,
		note.IssueDate, nullIfEmpty(note.AttachmentURL), note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit note: %w", err)
	}
	return nil
}

// GetByID obtiene una nota por ID. Retorna (nil, nil) si no existe.
func (r *CreditNoteRepo) GetByID(id string) (*entity.CreditNote, error) {
	query := `
		SELECT id, invoice_id, note_number, amount, reason, issue_date, attachment_url, created_at, updated_at
		FROM credit_notes WHERE id = $1`
	var n entity.CreditNote
	var attachment *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&n.ID, &n.InvoiceID, &n.NoteNumber, &n.Amount, &n.Reason,
		&n.IssueDate, &attachment, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit note: %w", err)
	}
	n.AttachmentURL = derefStr(attachment)
	return &n, nil
}

// ListByInvoice retorna las notas de una factura, por fecha de emisión ascendente.
func (r *CreditNoteRepo) ListByInvoice(invoiceID string) ([]*entity.CreditNote, error) {
	query := `
		SELECT id, invoice_id, note_number, amount, reason, issue_date, attachment_url, created_at, updated_at
		FROM credit_notes WHERE invoice_id = $1 ORDER BY issue_date, created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()

	var list []*entity.CreditNote
	for rows.Next() {
		var n entity.CreditNote
		var attachment *string
		if err := rows.Scan(&n.ID, &n.InvoiceID, &n.NoteNumber, &n.Amount, &n.Reason,
			&n.IssueDate, &attachment, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		n.AttachmentURL = derefStr(attachment)
		list = append(list, &n)
	}
	return list, rows.Err()
}

// SumByInvoice suma los montos acreditados de la factura (0 si no hay notas).
func (r *CreditNoteRepo) SumByInvoice(invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(amount), 0) FROM credit_notes WHERE invoice_id = $1`, invoiceID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum credit notes: %w", err)
	}
	return sum, nil
}

// Update persiste los campos editables de la nota.
func (r *CreditNoteRepo) Update(note *entity.CreditNote) error {
	query := `
		UPDATE credit_notes
		SET note_number = $2, amount = $3, reason = $4, attachment_url = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		note.ID, note.NoteNumber, note.Amount, note.Reason,
		nullIfEmpty(note.AttachmentURL), note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update credit note: %w", err)
	}
	return nil
}

// Delete revierte (elimina) una nota de crédito.
func (r *CreditNoteRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM credit_notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete credit note: %w", err)
	}
	return nil
}
