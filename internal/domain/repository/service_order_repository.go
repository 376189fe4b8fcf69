package repository

import "github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"

// ServiceOrderRepository puerto de lectura de órdenes de servicio. Las órdenes
// las provee el módulo de operaciones; este motor nunca las modifica.
type ServiceOrderRepository interface {
	// GetByID retorna (nil, nil) si la orden no existe.
	GetByID(id string) (*entity.ServiceOrder, error)
	Create(order *entity.ServiceOrder) error // solo para seeding/tests
}

// ClientRepository puerto de lectura de clientes.
type ClientRepository interface {
	// GetByID retorna (nil, nil) si el cliente no existe.
	GetByID(id string) (*entity.Client, error)
	Create(client *entity.Client) error // solo para seeding/tests
}
