package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/application/dto"
	"github.com/Jecsonrv/GproLogisticApp-sub001/internal/domain"
)

// respondDomainError mapea los errores de dominio a códigos HTTP y cuerpo
// ErrorResponse. Todos los errores de validación llegan como variantes
// tipadas; cualquier otra cosa es un 500.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNoItemsSelected):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "NO_ITEMS_SELECTED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_AMOUNT", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "ALREADY_CLAIMED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvoiceLocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INVOICE_LOCKED", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyIssued):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "ALREADY_ISSUED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvoiceCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INVOICE_CANCELLED", Message: err.Error()})
	case errors.Is(err, domain.ErrHasLedgerActivity):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "HAS_LEDGER_ACTIVITY", Message: err.Error()})
	case errors.Is(err, domain.ErrAmountExceedsBalance):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "AMOUNT_EXCEEDS_BALANCE", Message: err.Error()})
	case errors.Is(err, domain.ErrWouldUnderflowBalance):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "WOULD_UNDERFLOW_BALANCE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error()})
	}
}

// getActor lee el usuario que origina el cambio (lo inyecta el gateway).
// Vacío si el upstream no lo envía; la historia de edición lo tolera.
func getActor(c *fiber.Ctx) string {
	return c.Get("X-Actor")
}
