package billing

import (
	"context"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// facturación atados a la tx. Toda escritura que afecta el reclamo de ítems o
// el saldo de una factura pasa por aquí: el reclamo es un compare-and-set
// multi-fila y las validaciones de saldo leen bajo bloqueo de la fila de la
// factura, así dos requests concurrentes nunca validan contra un saldo viejo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.BillableItemRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		creditRepo repository.CreditNoteRepository,
		historyRepo repository.EditHistoryRepository,
	) error) error
}
