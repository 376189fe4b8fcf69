package entity

import "time"

// Client representa al cliente dueño de órdenes de servicio y facturas.
// Se administra fuera del motor de facturación; aquí es solo lectura.
type Client struct {
	ID        string
	Name      string
	TaxID     string // RUT del cliente
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
