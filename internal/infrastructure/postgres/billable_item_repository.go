package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

var _ repository.BillableItemRepository = (*BillableItemRepo)(nil)

const billableItemColumns = `
	id, service_order_id, kind, description,
	quantity, unit_price, cost, markup_pct, iva_applicable,
	subtotal, iva, total, claimed_by_invoice_id, created_at, updated_at`

// BillableItemRepo implementación de BillableItemRepository (usable con pool o tx).
type BillableItemRepo struct {
	q Querier
}

// NewBillableItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillableItemRepository(q Querier) *BillableItemRepo {
	return &BillableItemRepo{q: q}
}

// ListAvailable retorna los ítems de la orden disponibles en el pool.
// La anulación de una factura deja claimed_by_invoice_id en NULL, así que el
// predicado IS NULL ya excluye solo reclamos de facturas no anuladas.
func (r *BillableItemRepo) ListAvailable(serviceOrderID string) ([]*entity.BillableItem, error) {
	query := `
		SELECT ` + billableItemColumns + `
		FROM billable_items
		WHERE service_order_id = $1 AND claimed_by_invoice_id IS NULL
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, serviceOrderID)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// GetByID obtiene un ítem por ID. Retorna (nil, nil) si no existe.
func (r *BillableItemRepo) GetByID(id string) (*entity.BillableItem, error) {
	query := `SELECT ` + billableItemColumns + ` FROM billable_items WHERE id = $1`
	item, err := scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get billable item: %w", err)
	}
	return item, nil
}

// ListByInvoice retorna los ítems reclamados por una factura.
func (r *BillableItemRepo) ListByInvoice(invoiceID string) ([]*entity.BillableItem, error) {
	query := `
		SELECT ` + billableItemColumns + `
		FROM billable_items
		WHERE claimed_by_invoice_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list items by invoice: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Claim marca atómicamente los ítems como reclamados por invoiceID.
// Es un compare-and-set multi-fila: el UPDATE condicional (claimed_by_invoice_id
// IS NULL) garantiza que de dos reclamos concurrentes sobre ítems solapados
// exactamente uno gana. Si la cuenta de filas no coincide con lo pedido, se
// clasifica la causa (NotFound vs AlreadyClaimed) y el caller hace rollback.
func (r *BillableItemRepo) Claim(ids []string, serviceOrderID, invoiceID string) ([]*entity.BillableItem, error) {
	query := `
		UPDATE billable_items
		SET claimed_by_invoice_id = $1, updated_at = now()
		WHERE id = ANY($2) AND service_order_id = $3 AND claimed_by_invoice_id IS NULL
		RETURNING ` + billableItemColumns
	rows, err := r.q.Query(context.Background(), query, invoiceID, ids, serviceOrderID)
	if err != nil {
		return nil, fmt.Errorf("claim items: %w", err)
	}
	claimed, err := scanItems(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(claimed) == len(ids) {
		return claimed, nil
	}
	return nil, r.classifyClaimFailure(ids, serviceOrderID, invoiceID)
}

// classifyClaimFailure distingue por qué falló el reclamo: ítem inexistente o
// de otra orden → ErrNotFound; reclamado por otra factura → ErrAlreadyClaimed.
func (r *BillableItemRepo) classifyClaimFailure(ids []string, serviceOrderID, invoiceID string) error {
	query := `SELECT id, service_order_id, claimed_by_invoice_id FROM billable_items WHERE id = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return fmt.Errorf("classify claim failure: %w", err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	claimedElsewhere := false
	for rows.Next() {
		var id, orderID string
		var claimedBy *string
		if err := rows.Scan(&id, &orderID, &claimedBy); err != nil {
			return fmt.Errorf("scan claim check: %w", err)
		}
		found[id] = struct{}{}
		if orderID != serviceOrderID {
			return domain.ErrNotFound
		}
		if claimedBy != nil && *claimedBy != invoiceID {
			claimedElsewhere = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return domain.ErrNotFound
		}
	}
	if claimedElsewhere {
		return domain.ErrAlreadyClaimed
	}
	// Ids duplicados en el request u otro estado inesperado.
	return domain.ErrAlreadyClaimed
}

// Release libera ítems reclamados por invoiceID; ignora ids de otras facturas.
func (r *BillableItemRepo) Release(ids []string, invoiceID string) error {
	query := `
		UPDATE billable_items
		SET claimed_by_invoice_id = NULL, updated_at = now()
		WHERE id = ANY($1) AND claimed_by_invoice_id = $2`
	if _, err := r.q.Exec(context.Background(), query, ids, invoiceID); err != nil {
		return fmt.Errorf("release items: %w", err)
	}
	return nil
}

// ReleaseAll libera todos los ítems reclamados por la factura (anulación).
func (r *BillableItemRepo) ReleaseAll(invoiceID string) error {
	query := `
		UPDATE billable_items
		SET claimed_by_invoice_id = NULL, updated_at = now()
		WHERE claimed_by_invoice_id = $1`
	if _, err := r.q.Exec(context.Background(), query, invoiceID); err != nil {
		return fmt.Errorf("release all items: %w", err)
	}
	return nil
}

// Update persiste campos editables y montos recalculados de un ítem.
func (r *BillableItemRepo) Update(item *entity.BillableItem) error {
	query := `
		UPDATE billable_items
		SET description = $2, quantity = $3, unit_price = $4,
		    cost = $5, markup_pct = $6, iva_applicable = $7,
		    subtotal = $8, iva = $9, total = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Description, item.Quantity, item.UnitPrice,
		item.Cost, item.MarkupPct, item.IVAApplicable,
		item.Subtotal, item.IVA, item.Total, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update billable item: %w", err)
	}
	return nil
}

// Create persiste un ítem nuevo (registro de trabajo de la orden / seeding).
func (r *BillableItemRepo) Create(item *entity.BillableItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO billable_items
			(id, service_order_id, kind, description, quantity, unit_price,
			 cost, markup_pct, iva_applicable, subtotal, iva, total,
			 claimed_by_invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ServiceOrderID, item.Kind, item.Description,
		item.Quantity, item.UnitPrice, item.Cost, item.MarkupPct, item.IVAApplicable,
		item.Subtotal, item.IVA, item.Total,
		item.ClaimedByInvoiceID, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert billable item: %w", err)
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.BillableItem, error) {
	var it entity.BillableItem
	err := row.Scan(
		&it.ID, &it.ServiceOrderID, &it.Kind, &it.Description,
		&it.Quantity, &it.UnitPrice, &it.Cost, &it.MarkupPct, &it.IVAApplicable,
		&it.Subtotal, &it.IVA, &it.Total, &it.ClaimedByInvoiceID,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItems(rows pgx.Rows) ([]*entity.BillableItem, error) {
	var list []*entity.BillableItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan billable item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
