package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/billing"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
)

// PaymentHandler maneja las peticiones HTTP del ledger de pagos.
type PaymentHandler struct {
	uc *billing.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Add registra un abono contra el saldo de la factura.
// POST /api/invoices/:id/payments
func (h *PaymentHandler) Add(c *fiber.Ctx) error {
	var in dto.AddPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	payment, err := h.uc.AddPayment(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// List retorna los pagos de una factura.
// GET /api/invoices/:id/payments
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	payments, err := h.uc.ListPayments(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(payments)
}

// Reverse revierte un pago (restaura el saldo).
// DELETE /api/payments/:id
func (h *PaymentHandler) Reverse(c *fiber.Ctx) error {
	if err := h.uc.ReversePayment(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
