// seed puebla la base de datos con datos de demostración: un cliente, dos
// órdenes de servicio y un pool de ítems facturables (cargos y gastos).
//
// Uso: go run ./cmd/seed
// Lee la configuración de conexión de las mismas env vars que el API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/infrastructure/postgres"
	"github.com/Jecsonrv/GproLogisticApp-sub001/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	clientRepo := postgres.NewClientRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	itemRepo := postgres.NewBillableItemRepository(pool)

	ivaRate, err := decimal.NewFromString(cfg.Billing.IVARate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tasa de IVA inválida: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()

	client := &entity.Client{
		Name:      "Importadora Austral SpA",
		TaxID:     "76.543.210-K",
		Email:     "finanzas@austral.cl",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := clientRepo.Create(client); err != nil {
		fmt.Fprintf(os.Stderr, "insertar cliente: %v\n", err)
		os.Exit(1)
	}

	orders := []*entity.ServiceOrder{
		{
			ClientID:    client.ID,
			OrderNumber: "OS-2025-0001",
			Description: "Importación contenedor 40ft, Shanghái → San Antonio",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ClientID:    client.ID,
			OrderNumber: "OS-2025-0002",
			Description: "Exportación carga refrigerada, Valparaíso → Callao",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, o := range orders {
		if err := orderRepo.Create(o); err != nil {
			fmt.Fprintf(os.Stderr, "insertar orden %s: %v\n", o.OrderNumber, err)
			os.Exit(1)
		}
	}

	items := []*entity.BillableItem{
		{
			ServiceOrderID: orders[0].ID,
			Kind:           entity.ItemKindCharge,
			Description:    "Comisión de agenciamiento",
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.RequireFromString("100.00"),
		},
		{
			ServiceOrderID: orders[0].ID,
			Kind:           entity.ItemKindCharge,
			Description:    "Gestión documental",
			Quantity:       decimal.NewFromInt(2),
			UnitPrice:      decimal.RequireFromString("25.00"),
		},
		{
			ServiceOrderID: orders[0].ID,
			Kind:           entity.ItemKindExpense,
			Description:    "Transporte terrestre puerto → bodega",
			Cost:           decimal.RequireFromString("50.00"),
			MarkupPct:      decimal.RequireFromString("10"),
			IVAApplicable:  false,
		},
		{
			ServiceOrderID: orders[0].ID,
			Kind:           entity.ItemKindExpense,
			Description:    "Almacenaje extraportuario",
			Cost:           decimal.RequireFromString("120.00"),
			MarkupPct:      decimal.RequireFromString("8"),
			IVAApplicable:  true,
		},
		{
			ServiceOrderID: orders[1].ID,
			Kind:           entity.ItemKindCharge,
			Description:    "Coordinación de embarque reefer",
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.RequireFromString("180.00"),
		},
	}
	for _, it := range items {
		it.ComputeTotals(ivaRate)
		it.CreatedAt = now
		it.UpdatedAt = now
		if err := itemRepo.Create(it); err != nil {
			fmt.Fprintf(os.Stderr, "insertar ítem %q: %v\n", it.Description, err)
			os.Exit(1)
		}
	}

	fmt.Printf("seed completado: cliente %s, %d órdenes, %d ítems en el pool\n",
		client.ID, len(orders), len(items))
}
