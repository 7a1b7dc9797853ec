package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmadistro/pedidos-api/internal/application/dto"
	"github.com/farmadistro/pedidos-api/internal/application/fulfillment"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de pedidos: alta desde el
// checkout, transiciones de estado y el protocolo de conciliación de
// picking (protegido).
type OrderHandler struct {
	orders     *fulfillment.OrderUseCase
	reconcile  *fulfillment.ReconcileUseCase
	transition *fulfillment.TransitionUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(
	orders *fulfillment.OrderUseCase,
	reconcile *fulfillment.ReconcileUseCase,
	transition *fulfillment.TransitionUseCase,
) *OrderHandler {
	return &OrderHandler{orders: orders, reconcile: reconcile, transition: transition}
}

// Create godoc
// @Summary      Crear un pedido desde el carrito del cliente
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "client_id, lines[]"
// @Success      201   {object}  dto.OrderDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := fulfillment.CreateOrderInput{ClientID: in.ClientID, Notes: in.Notes}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, fulfillment.OrderLineInput{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}
	order, err := h.orders.Create(c.Context(), input)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderDTO(order))
}

// GetByID godoc
// @Summary      Consultar un pedido con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "order_id"
// @Success      200  {object}  dto.OrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewOrderDTO(order))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "filtrar por cliente"
// @Param        state      query  string  false  "filtrar por estado"
// @Success      200  {array}  dto.OrderDTO
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.orders.List(repository.OrderFilter{
		ClientID: c.Query("client_id"),
		State:    entity.OrderState(c.Query("state")),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewOrderDTO(o))
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}

// Transition godoc
// @Summary      Transicionar el estado de un pedido
// @Description  PICKING -> PACKED exige conciliación completa y, salvo
//	deduct_stock=false, descuenta del inventario las cantidades confirmadas
//	en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "order_id"
// @Param        body  body  dto.TransitionRequest  true  "target_state, deduct_stock"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transition [put]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	deduct := true
	if in.DeductStock != nil {
		deduct = *in.DeductStock
	}
	result, err := h.transition.Transition(c.Context(), fulfillment.TransitionInput{
		OrderID:     c.Params("id"),
		Target:      entity.OrderState(in.TargetState),
		Actor:       actor,
		DeductStock: deduct,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	out := dto.TransitionResponse{OrderID: result.OrderID, State: string(result.State)}
	if result.Movement != nil {
		out.Movement = &dto.MovementResultResponse{
			MovementID: result.Movement.MovementID,
			CreatedAt:  result.Movement.CreatedAt,
			Quantities: result.Movement.Quantities,
		}
	}
	return c.JSON(out)
}

// RecordFound godoc
// @Summary      Registrar la cantidad encontrada de una línea
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "order_id"
// @Param        code  path  string  true  "product_code"
// @Param        body  body  dto.RecordFoundRequest  true  "quantity >= 0"
// @Success      200   {object}  dto.OrderLineDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{code}/found [put]
func (h *OrderHandler) RecordFound(c *fiber.Ctx) error {
	var in dto.RecordFoundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	line, err := h.reconcile.RecordFound(c.Context(), c.Params("id"), c.Params("code"), in.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewOrderLineDTO(line))
}

// ConfirmLine godoc
// @Summary      Confirmar una línea reingresando la cantidad registrada
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "order_id"
// @Param        code  path  string  true  "product_code"
// @Param        body  body  dto.ConfirmLineRequest  true  "proposed_quantity debe coincidir con la registrada"
// @Success      200   {object}  dto.OrderLineDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{code}/confirm [put]
func (h *OrderHandler) ConfirmLine(c *fiber.Ctx) error {
	var in dto.ConfirmLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	line, err := h.reconcile.ConfirmLine(c.Context(), c.Params("id"), c.Params("code"), in.ProposedQuantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewOrderLineDTO(line))
}

// UnconfirmLine godoc
// @Summary      Deshacer la confirmación de una línea
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "order_id"
// @Param        code  path  string  true  "product_code"
// @Success      200   {object}  dto.OrderLineDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{code}/unconfirm [put]
func (h *OrderHandler) UnconfirmLine(c *fiber.Ctx) error {
	line, err := h.reconcile.UnconfirmLine(c.Context(), c.Params("id"), c.Params("code"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewOrderLineDTO(line))
}

// PackingSlip godoc
// @Summary      Descargar el remito de armado (PDF)
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "order_id"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/packing-slip [get]
func (h *OrderHandler) PackingSlip(c *fiber.Ctx) error {
	pdfBytes, err := h.orders.PackingSlip(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="remito-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}
