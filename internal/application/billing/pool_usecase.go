package billing

import (
	"context"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/entity"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// ItemPoolUseCase consulta el pool de ítems facturables de una orden de
// servicio (cargos y gastos aún no reclamados por ninguna factura no anulada).
type ItemPoolUseCase struct {
	orderRepo repository.ServiceOrderRepository
	itemRepo  repository.BillableItemRepository
}

// NewItemPoolUseCase construye el caso de uso.
func NewItemPoolUseCase(
	orderRepo repository.ServiceOrderRepository,
	itemRepo repository.BillableItemRepository,
) *ItemPoolUseCase {
	return &ItemPoolUseCase{orderRepo: orderRepo, itemRepo: itemRepo}
}

// ListAvailable retorna los ítems disponibles para facturar de la orden.
// Solo lectura, sin efectos secundarios.
func (uc *ItemPoolUseCase) ListAvailable(ctx context.Context, serviceOrderID string) ([]dto.BillableItemResponse, error) {
	if serviceOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(serviceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListAvailable(serviceOrderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BillableItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

func toItemResponse(it *entity.BillableItem) dto.BillableItemResponse {
	return dto.BillableItemResponse{
		ID:             it.ID,
		ServiceOrderID: it.ServiceOrderID,
		Kind:           it.Kind,
		Description:    it.Description,
		Quantity:       it.Quantity,
		UnitPrice:      it.UnitPrice,
		Cost:           it.Cost,
		MarkupPct:      it.MarkupPct,
		IVAApplicable:  it.IVAApplicable,
		Subtotal:       it.Subtotal,
		IVA:            it.IVA,
		Total:          it.Total,
	}
}
