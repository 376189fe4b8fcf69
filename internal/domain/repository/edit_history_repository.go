package repository

import "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"

// EditHistoryRepository define el puerto del registro de auditoría de cambios
// estructurales de la factura. Append-only: no hay API de edición ni borrado.
type EditHistoryRepository interface {
	Append(entry *entity.EditHistoryEntry) error
	// ListByInvoice retorna las entradas ordenadas por timestamp ascendente;
	// con newestFirst=true, descendente (vista "más reciente primero").
	ListByInvoice(invoiceID string, newestFirst bool) ([]*entity.EditHistoryEntry, error)
}
