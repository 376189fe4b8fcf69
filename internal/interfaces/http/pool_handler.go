package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
)

// ItemPoolHandler maneja la consulta del pool de ítems facturables.
type ItemPoolHandler struct {
	uc *billing.ItemPoolUseCase
}

// NewItemPoolHandler construye el handler.
func NewItemPoolHandler(uc *billing.ItemPoolUseCase) *ItemPoolHandler {
	return &ItemPoolHandler{uc: uc}
}

// ListAvailable retorna los ítems disponibles para facturar de una orden.
// GET /api/service-orders/:id/billable-items
func (h *ItemPoolHandler) ListAvailable(c *fiber.Ctx) error {
	items, err := h.uc.ListAvailable(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(items)
}
