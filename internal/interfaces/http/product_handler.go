package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmadistro/pedidos-api/internal/application/dto"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// ProductHandler lecturas del catálogo y del snapshot de stock que consume
// la UI de picking (protegido).
type ProductHandler struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewProductHandler construye el handler.
func NewProductHandler(productRepo repository.ProductRepository, stockRepo repository.StockRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo, stockRepo: stockRepo}
}

// List godoc
// @Summary      Listar el catálogo de productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  map[string]interface{}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	products, err := h.productRepo.List(page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		out = append(out, fiber.Map{
			"code":          p.Code,
			"description":   p.Description,
			"unit_price":    p.UnitPrice,
			"discount_tier": p.DiscountTier,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// GetStock godoc
// @Summary      Consultar el stock actual de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "product_code"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{code}/stock [get]
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	code := c.Params("code")
	product, err := h.productRepo.GetByCode(code)
	if err != nil {
		return errorResponse(c, err)
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: "producto no registrado: " + code})
	}
	stock, err := h.stockRepo.Get(code)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"product_code": code,
		"description":  product.Description,
		"quantity":     stock.Quantity,
		"updated_at":   stock.UpdatedAt,
	})
}
