package domain

import "errors"

// Errores de dominio (sin dependencias externas). Todos se retornan como
// resultados tipados al caller: una carrera de reclamo perdida o un monto
// fuera de rango son fallas esperadas por request, nunca fatales al proceso.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrNoItemsSelected       = errors.New("no hay ítems seleccionados")
	ErrAlreadyClaimed        = errors.New("ítem ya facturado en otra factura")
	ErrInvoiceLocked         = errors.New("la factura ya fue emitida y no es editable")
	ErrAlreadyIssued         = errors.New("la factura ya fue emitida como DTE")
	ErrInvoiceCancelled      = errors.New("la factura está anulada")
	ErrHasLedgerActivity     = errors.New("la factura tiene pagos o notas de crédito registrados")
	ErrInvalidAmount         = errors.New("el monto debe ser mayor que cero")
	ErrAmountExceedsBalance  = errors.New("el monto excede el saldo pendiente de la factura")
	ErrWouldUnderflowBalance = errors.New("el total quedaría por debajo de los pagos y créditos registrados")
)
