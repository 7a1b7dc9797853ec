package fulfillment

import (
	"context"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del núcleo de fulfillment atados a esa tx. La transición
// PICKING -> PACKED y su descargo de stock comparten una sola transacción:
// o se ven ambos efectos, o ninguno.
type TxRunner interface {
	RunFulfillment(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// PackingSlipGenerator genera el remito de armado (PDF) de un pedido.
type PackingSlipGenerator interface {
	GeneratePackingSlip(ctx context.Context, order *entity.Order) ([]byte, error)
}
