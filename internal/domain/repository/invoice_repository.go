package repository

import "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"

// InvoiceListFilter filtros del listado de facturas.
type InvoiceListFilter struct {
	ClientID       string
	ServiceOrderID string
	Limit          int
	Offset         int
}

// InvoiceRepository define el puerto de persistencia para la factura.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	// GetByID retorna (nil, nil) si la factura no existe.
	GetByID(id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila de la factura (SELECT FOR UPDATE) para
	// serializar las escrituras que afectan el saldo. Usar dentro de una tx.
	GetForUpdate(id string) (*entity.Invoice, error)
	Update(invoice *entity.Invoice) error
	List(filter InvoiceListFilter) ([]*entity.Invoice, error)
	// NextPlaceholderNumber reserva el siguiente consecutivo de pre-factura.
	NextPlaceholderNumber() (int64, error)
}
