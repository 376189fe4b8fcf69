package repository

import "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"

// BillableItemRepository define el puerto de persistencia para el pool de
// ítems facturables. La marca de reclamo (claimed_by_invoice_id) es el único
// dato compartido entre actores concurrentes: Claim debe ser atómico
// todo-o-nada dentro de la transacción del caller.
type BillableItemRepository interface {
	// ListAvailable retorna los ítems de la orden que no están reclamados por
	// ninguna factura no anulada. Sin efectos secundarios.
	ListAvailable(serviceOrderID string) ([]*entity.BillableItem, error)
	GetByID(id string) (*entity.BillableItem, error)
	ListByInvoice(invoiceID string) ([]*entity.BillableItem, error)

	// Claim marca atómicamente cada ítem como reclamado por invoiceID
	// (UPDATE condicional claimed_by_invoice_id IS NULL). Si algún ítem no
	// existe o pertenece a otra orden retorna domain.ErrNotFound; si está
	// reclamado por otra factura, domain.ErrAlreadyClaimed. Nunca reclama
	// parcialmente: usar dentro de una transacción.
	Claim(ids []string, serviceOrderID, invoiceID string) ([]*entity.BillableItem, error)

	// Release libera ítems reclamados por invoiceID; ignora ids que no le
	// pertenecen. Solo debe invocarse mientras la factura es editable.
	Release(ids []string, invoiceID string) error
	// ReleaseAll libera todos los ítems de la factura (anulación).
	ReleaseAll(invoiceID string) error

	// Update persiste los campos editables y los montos recalculados de un ítem.
	Update(item *entity.BillableItem) error
	Create(item *entity.BillableItem) error
}
