package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmadistro/pedidos-api/internal/application/dto"
	"github.com/farmadistro/pedidos-api/internal/application/ledger"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP del libro de movimientos
// (protegido).
type MovementHandler struct {
	uc *ledger.ApplyMovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.ApplyMovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Apply godoc
// @Summary      Aplicar un movimiento de stock (cargo, descargo o ajuste)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "type, lines[], notes, source_document; movement_id opcional para reintentos idempotentes"
// @Success      201   {object}  dto.MovementResultResponse
// @Success      200   {object}  dto.MovementResultResponse  "reenvío de un movement_id ya aplicado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Apply(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.MovementInput{
		MovementID:     in.MovementID,
		Type:           entity.MovementType(in.Type),
		Actor:          actor,
		Notes:          in.Notes,
		SourceDocument: in.SourceDocument,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, ledger.MovementLineInput{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}
	result, err := h.uc.Apply(c.Context(), input)
	if err != nil {
		return errorResponse(c, err)
	}
	status := fiber.StatusCreated
	if result.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.MovementResultResponse{
		MovementID: result.MovementID,
		CreatedAt:  result.CreatedAt,
		Quantities: result.Quantities,
	})
}

// GetByID godoc
// @Summary      Consultar un asiento del libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "movement_id"
// @Success      200  {object}  dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	mov, err := h.uc.GetMovement(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewMovementDTO(mov))
}

// List godoc
// @Summary      Listar el libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_code  query  string  false  "filtrar por producto"
// @Param        type          query  string  false  "INBOUND | OUTBOUND | ADJUSTMENT"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ProductCode: c.Query("product_code"),
		Type:        entity.MovementType(c.Query("type")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: fecha inválida"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: fecha inválida"})
		}
		filter.To = &t
	}
	movements, err := h.uc.ListMovements(filter)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
