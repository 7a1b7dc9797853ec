package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmadistro/pedidos-api/internal/application/fulfillment"
	"github.com/farmadistro/pedidos-api/internal/application/ledger"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApplyMovement *ledger.ApplyMovementUseCase
	Orders        *fulfillment.OrderUseCase
	Reconcile     *fulfillment.ReconcileUseCase
	Transition    *fulfillment.TransitionUseCase
	ProductRepo   repository.ProductRepository
	StockRepo     repository.StockRepository
	JWTSecret     string
}

// Router registra las rutas de la API. Todo va protegido con Bearer Token;
// los movimientos manuales quedan además restringidos a admin y depósito.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Libro de movimientos (protegido, solo admin/depósito)
	movements := api.Group("/movements", RequireRole("admin", "deposito"))
	movementHandler := NewMovementHandler(deps.ApplyMovement)
	movements.Post("/", movementHandler.Apply)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)

	// Pedidos (protegido)
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders, deps.Reconcile, deps.Transition)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/packing-slip", orderHandler.PackingSlip)
	orders.Put("/:id/transition", orderHandler.Transition)
	orders.Put("/:id/lines/:code/found", orderHandler.RecordFound)
	orders.Put("/:id/lines/:code/confirm", orderHandler.ConfirmLine)
	orders.Put("/:id/lines/:code/unconfirm", orderHandler.UnconfirmLine)

	// Catálogo y stock (protegido, solo lectura)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductRepo, deps.StockRepo)
	products.Get("/", productHandler.List)
	products.Get("/:code/stock", productHandler.GetStock)
}
