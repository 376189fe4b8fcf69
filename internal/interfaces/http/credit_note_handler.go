package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
)

// CreditNoteHandler maneja las peticiones HTTP del ledger de notas de crédito.
type CreditNoteHandler struct {
	uc *billing.CreditNoteUseCase
}

// NewCreditNoteHandler construye el handler.
func NewCreditNoteHandler(uc *billing.CreditNoteUseCase) *CreditNoteHandler {
	return &CreditNoteHandler{uc: uc}
}

// Add registra una nota de crédito contra el saldo de la factura.
// POST /api/invoices/:id/credit-notes
func (h *CreditNoteHandler) Add(c *fiber.Ctx) error {
	var in dto.AddCreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	note, err := h.uc.AddCreditNote(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// List retorna las notas de crédito de una factura.
// GET /api/invoices/:id/credit-notes
func (h *CreditNoteHandler) List(c *fiber.Ctx) error {
	notes, err := h.uc.ListCreditNotes(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(notes)
}

// Edit modifica una nota (revalida el monto excluyendo su propia contribución).
// PUT /api/credit-notes/:id
func (h *CreditNoteHandler) Edit(c *fiber.Ctx) error {
	var in dto.UpdateCreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	note, err := h.uc.EditCreditNote(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(note)
}

// Remove revierte una nota de crédito (restaura el saldo).
// DELETE /api/credit-notes/:id
func (h *CreditNoteHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.RemoveCreditNote(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
