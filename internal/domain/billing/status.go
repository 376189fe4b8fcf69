// Package billing contiene la lógica de dominio pura de facturación:
// derivación de estado y saldos. Sin estado propio ni persistencia — el
// estado mostrado se recalcula en cada lectura y no puede divergir de los
// ledgers.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de una factura.
const (
	StatusCancelled = "ANULADA"
	StatusPaid      = "PAGADA"
	StatusOverdue   = "VENCIDA"
	StatusPartial   = "ABONADA"
	StatusPending   = "PENDIENTE"
)

// DefaultIVARate tasa de IVA vigente (19%).
var DefaultIVARate = decimal.RequireFromString("0.19")

// Balance calcula el saldo pendiente: max(0, total − pagado − acreditado).
// Las operaciones de ledger garantizan que nunca se sobregire; el max(0, ...)
// solo protege la lectura ante datos históricos inconsistentes.
func Balance(total, paid, credited decimal.Decimal) decimal.Decimal {
	b := total.Sub(paid).Sub(credited)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// DeriveStatus calcula el estado mostrado de la factura a partir de los
// ledgers y las fechas. Orden de precedencia: anulada > pagada > vencida >
// abonada > pendiente.
func DeriveStatus(cancelled bool, total, paid, credited decimal.Decimal, dueDate *time.Time, today time.Time) string {
	if cancelled {
		return StatusCancelled
	}
	balance := Balance(total, paid, credited)
	switch {
	case !balance.IsPositive():
		return StatusPaid
	case dueDate != nil && dueDate.Before(truncateDay(today)):
		return StatusOverdue
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// DaysOverdue días de atraso: max(0, hoy − fecha de vencimiento) en días
// calendario. Cero si no hay vencimiento o aún no vence.
func DaysOverdue(dueDate *time.Time, today time.Time) int {
	if dueDate == nil {
		return 0
	}
	days := int(truncateDay(today).Sub(truncateDay(*dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
