package repository

import (
	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia del ledger de pagos.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	// GetByID retorna (nil, nil) si el pago no existe.
	GetByID(id string) (*entity.Payment, error)
	ListByInvoice(invoiceID string) ([]*entity.Payment, error)
	// SumByInvoice suma los montos pagados de la factura (0 si no hay pagos).
	SumByInvoice(invoiceID string) (decimal.Decimal, error)
	// Delete revierte un pago, restaurando el saldo.
	Delete(id string) error
}
