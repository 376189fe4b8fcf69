package entity

import "time"

// ServiceOrder representa una orden de servicio (unidad de trabajo para un cliente).
// Es dueña de los ítems facturables (cargos y gastos). El motor de facturación
// la referencia pero nunca la modifica.
type ServiceOrder struct {
	ID          string
	ClientID    string
	OrderNumber string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
