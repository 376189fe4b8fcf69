package repository

import (
	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
)

// CreditNoteRepository define el puerto de persistencia del ledger de notas
// de crédito.
type CreditNoteRepository interface {
	Create(note *entity.CreditNote) error
	// GetByID retorna (nil, nil) si la nota no existe.
	GetByID(id string) (*entity.CreditNote, error)
	ListByInvoice(invoiceID string) ([]*entity.CreditNote, error)
	// SumByInvoice suma los montos acreditados de la factura (0 si no hay notas).
	SumByInvoice(invoiceID string) (decimal.Decimal, error)
	Update(note *entity.CreditNote) error
	Delete(id string) error
}
