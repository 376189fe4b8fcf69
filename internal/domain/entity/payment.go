package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados (enumeración cerrada).
const (
	PaymentMethodTransferencia = "TRANSFERENCIA"
	PaymentMethodEfectivo      = "EFECTIVO"
	PaymentMethodCheque        = "CHEQUE"
	PaymentMethodTarjeta       = "TARJETA"
	PaymentMethodOtro          = "OTRO"
)

// ValidPaymentMethod verifica que el método pertenezca a la enumeración.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodTransferencia, PaymentMethodEfectivo, PaymentMethodCheque,
		PaymentMethodTarjeta, PaymentMethodOtro:
		return true
	}
	return false
}

// Payment es un abono aplicado contra el saldo de una factura.
// Invariante: 0 < Amount ≤ saldo de la factura antes de aplicar este pago.
// Inmutable una vez creado; solo se revierte eliminándolo (restaura el saldo).
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Date      time.Time
	Method    string
	Reference string
	Notes     string
	CreatedAt time.Time
}
