package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNote es una nota de crédito correctiva posterior a la emisión que
// reduce el saldo pendiente de una factura.
// Invariante: 0 < Amount ≤ saldo antes de aplicar la nota. Al editar el monto
// se revalida excluyendo la contribución actual de la propia nota.
type CreditNote struct {
	ID            string
	InvoiceID     string
	NoteNumber    string
	Amount        decimal.Decimal
	Reason        string
	IssueDate     time.Time
	AttachmentURL string // referencia opaca al PDF en el file storage externo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
