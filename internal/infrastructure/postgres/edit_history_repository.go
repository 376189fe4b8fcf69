package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

var _ repository.EditHistoryRepository = (*EditHistoryRepo)(nil)

// EditHistoryRepo implementación append-only de EditHistoryRepository.
// No expone UPDATE ni DELETE: la historia de edición nunca se reescribe.
type EditHistoryRepo struct {
	q Querier
}

// NewEditHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEditHistoryRepository(q Querier) *EditHistoryRepo {
	return &EditHistoryRepo{q: q}
}

// Append agrega una entrada a la historia de la factura.
func (r *EditHistoryRepo) Append(entry *entity.EditHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_edit_history (id, invoice_id, edit_type, description, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.InvoiceID, entry.EditType, entry.Description,
		nullIfEmpty(entry.Actor), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert edit history entry: %w", err)
	}
	return nil
}

// ListByInvoice retorna la historia ordenada por timestamp (asc por defecto,
// desc con newestFirst para la vista "más reciente primero").
func (r *EditHistoryRepo) ListByInvoice(invoiceID string, newestFirst bool) ([]*entity.EditHistoryEntry, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT id, invoice_id, edit_type, description, actor, created_at
		FROM invoice_edit_history
		WHERE invoice_id = $1
		ORDER BY created_at %s, id %s`, order, order)
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list edit history: %w", err)
	}
	defer rows.Close()

	var list []*entity.EditHistoryEntry
	for rows.Next() {
		var e entity.EditHistoryEntry
		var actor *string
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.EditType, &e.Description, &actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edit history entry: %w", err)
		}
		e.Actor = derefStr(actor)
		list = append(list, &e)
	}
	return list, rows.Err()
}
