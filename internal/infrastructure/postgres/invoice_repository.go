package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	id, client_id, service_order_id, number, document_type,
	issue_date, due_date, total_amount, is_editable, is_dte_issued,
	dte_folio, notes, cancelled_at, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices
			(id, client_id, service_order_id, number, document_type,
			 issue_date, due_date, total_amount, is_editable, is_dte_issued,
			 dte_folio, notes, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.ClientID, invoice.ServiceOrderID, invoice.Number, invoice.DocumentType,
		invoice.IssueDate, invoice.DueDate, invoice.TotalAmount, invoice.IsEditable, invoice.IsDTEIssued,
		nullIfEmpty(invoice.DTEFolio), nullIfEmpty(invoice.Notes), invoice.CancelledAt,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID. Retorna (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetForUpdate obtiene la factura bloqueando la fila (SELECT FOR UPDATE).
// Serializa las escrituras de saldo de la misma factura: dos pagos
// concurrentes validan contra el saldo real, nunca contra uno viejo.
func (r *InvoiceRepo) GetForUpdate(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return inv, nil
}

// Update persiste los campos mutables de la factura.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $2, document_type = $3, issue_date = $4, due_date = $5,
		    total_amount = $6, is_editable = $7, is_dte_issued = $8,
		    dte_folio = $9, notes = $10, cancelled_at = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Number, invoice.DocumentType, invoice.IssueDate, invoice.DueDate,
		invoice.TotalAmount, invoice.IsEditable, invoice.IsDTEIssued,
		nullIfEmpty(invoice.DTEFolio), nullIfEmpty(invoice.Notes), invoice.CancelledAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// List lista facturas filtrando por cliente y/u orden, más recientes primero.
func (r *InvoiceRepo) List(filter repository.InvoiceListFilter) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.ServiceOrderID != "" {
		args = append(args, filter.ServiceOrderID)
		query += fmt.Sprintf(" AND service_order_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// NextPlaceholderNumber reserva el siguiente consecutivo de pre-factura desde
// la secuencia dedicada (distinguible del folio oficial de emisión).
func (r *InvoiceRepo) NextPlaceholderNumber() (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('invoice_placeholder_seq')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next placeholder number: %w", err)
	}
	return n, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var folio, notes *string
	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.ServiceOrderID, &inv.Number, &inv.DocumentType,
		&inv.IssueDate, &inv.DueDate, &inv.TotalAmount, &inv.IsEditable, &inv.IsDTEIssued,
		&folio, &notes, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.DTEFolio = derefStr(folio)
	inv.Notes = derefStr(notes)
	return &inv, nil
}
