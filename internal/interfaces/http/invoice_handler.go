package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain/repository"
)

// InvoiceHandler maneja las peticiones HTTP del agregado factura.
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una pre-factura reclamando ítems del pool de la orden.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.CreateInvoice(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID obtiene la factura con ítems, ledgers y estado derivado.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(invoice)
}

// List lista facturas con estado derivado por fila.
// GET /api/invoices?client_id=&service_order_id=&limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	invoices, err := h.uc.ListInvoices(c.Context(), repository.InvoiceListFilter{
		ClientID:       c.Query("client_id"),
		ServiceOrderID: c.Query("service_order_id"),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(invoices)
}

// AddItems reclama ítems adicionales para una pre-factura.
// POST /api/invoices/:id/items
func (h *InvoiceHandler) AddItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.AddItems(c.Context(), c.Params("id"), in, getActor(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem libera un ítem de vuelta al pool.
// DELETE /api/invoices/:id/items/:itemId
func (h *InvoiceHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("itemId"), getActor(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EditItem modifica un ítem reclamado y recalcula totales.
// PUT /api/invoices/:id/items/:itemId
func (h *InvoiceHandler) EditItem(c *fiber.Ctx) error {
	var in dto.EditItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.EditItem(c.Context(), c.Params("id"), c.Params("itemId"), in, getActor(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkIssued marca la factura como DTE emitido (irreversible).
// POST /api/invoices/:id/issue
func (h *InvoiceHandler) MarkIssued(c *fiber.Ctx) error {
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.MarkIssued(c.Context(), c.Params("id"), in, getActor(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete anula la factura y libera sus ítems.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History retorna la historia de edición (order=desc para "más reciente primero").
// GET /api/invoices/:id/history?order=asc|desc
func (h *InvoiceHandler) History(c *fiber.Ctx) error {
	newestFirst := c.Query("order") == "desc"
	entries, err := h.uc.History(c.Context(), c.Params("id"), newestFirst)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(entries)
}
