package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ítem facturable.
const (
	ItemKindCharge  = "charge"  // servicio propio: cantidad × precio unitario
	ItemKindExpense = "expense" // gasto de terceros: costo + recargo, IVA opcional
)

// BillableItem representa una línea de valor facturable de una orden de servicio.
// Invariante: un ítem puede estar reclamado por a lo más una factura no anulada
// a la vez (claimed_by_invoice_id). Al anular/eliminar una factura editable los
// ítems vuelven al pool; al emitir el DTE quedan consumidos definitivamente.
type BillableItem struct {
	ID             string
	ServiceOrderID string
	Kind           string // charge | expense
	Description    string

	// Campos de cargo (Kind == charge)
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal

	// Campos de gasto (Kind == expense)
	Cost          decimal.Decimal
	MarkupPct     decimal.Decimal // recargo en porcentaje (ej. 10 = 10%)
	IVAApplicable bool

	// Montos calculados (siempre derivados, nunca aceptados del cliente)
	Subtotal decimal.Decimal
	IVA      decimal.Decimal
	Total    decimal.Decimal

	// Marca de reclamo: NULL = disponible en el pool.
	ClaimedByInvoiceID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claimed indica si el ítem está reclamado por alguna factura.
func (i *BillableItem) Claimed() bool {
	return i.ClaimedByInvoiceID != nil && *i.ClaimedByInvoiceID != ""
}

// ComputeTotals recalcula Subtotal/IVA/Total según el tipo de ítem, redondeando
// a 2 decimales (half-up). Los servicios propios (charge) van exentos de IVA;
// los gastos reembolsables pagan IVA sobre el monto recargado cuando aplica.
func (i *BillableItem) ComputeTotals(ivaRate decimal.Decimal) {
	switch i.Kind {
	case ItemKindCharge:
		i.Subtotal = i.Quantity.Mul(i.UnitPrice).Round(2)
		i.IVA = decimal.Zero.Round(2)
	case ItemKindExpense:
		factor := decimal.NewFromInt(1).Add(i.MarkupPct.Div(decimal.NewFromInt(100)))
		i.Subtotal = i.Cost.Mul(factor).Round(2)
		if i.IVAApplicable {
			i.IVA = i.Subtotal.Mul(ivaRate).Round(2)
		} else {
			i.IVA = decimal.Zero.Round(2)
		}
	}
	i.Total = i.Subtotal.Add(i.IVA)
}
