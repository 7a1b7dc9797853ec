package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/farmadistro/pedidos-api/internal/application/dto"
	"github.com/farmadistro/pedidos-api/internal/domain"
)

// errorResponse mapea errores de dominio a códigos HTTP. El mensaje siempre
// lleva el detalle original (producto ofensor, cantidades), nunca un
// genérico.
func errorResponse(c *fiber.Ctx, err error) error {
	var incomplete *domain.ReconciliationIncompleteError
	if errors.As(err, &incomplete) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:         "RECONCILIATION_INCOMPLETE",
			Message:      incomplete.Error(),
			PendingCodes: incomplete.Pending,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrDuplicateProductLine):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrQuantityMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "QUANTITY_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderNotPicking),
		errors.Is(err, domain.ErrLineAlreadyConfirmed),
		errors.Is(err, domain.ErrLineNotRecorded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRECONDITION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
