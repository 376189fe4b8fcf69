package entity

import "time"

// Tipos de edición registrados en la historia de una factura.
const (
	EditTypeItemAdded     = "item_added"
	EditTypeItemRemoved   = "item_removed"
	EditTypeChargeEdited  = "charge_edited"
	EditTypeExpenseEdited = "expense_edited"
	EditTypeMarkedIssued  = "marked_issued"
)

// EditHistoryEntry es una entrada del registro de auditoría de una factura.
// Append-only: nunca se modifica ni se elimina. La escriben internamente las
// operaciones mutadoras del agregado mientras la factura es editable (y la
// propia emisión del DTE).
type EditHistoryEntry struct {
	ID          string
	InvoiceID   string
	EditType    string
	Description string // descripción legible del cambio, con delta si aplica
	Actor       string
	CreatedAt   time.Time
}
