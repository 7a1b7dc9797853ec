package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// OrderUseCase alta y lectura de pedidos: el checkout del carrito entrega
// aquí un pedido completo que se crea con sus líneas en forma atómica, con
// descripción y precio desnormalizados desde el catálogo.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	slips     PackingSlipGenerator
}

// NewOrderUseCase construye el caso de uso. orderRepo (sobre el pool) se
// usa para las lecturas; las escrituras van por txRunner.
func NewOrderUseCase(txRunner TxRunner, orderRepo repository.OrderRepository, slips PackingSlipGenerator) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orderRepo: orderRepo, slips: slips}
}

// OrderLineInput una línea del carrito.
type OrderLineInput struct {
	ProductCode string
	Quantity    int64
}

// CreateOrderInput entrada para Create.
type CreateOrderInput struct {
	ClientID string
	Notes    string
	Lines    []OrderLineInput
}

// Create valida el carrito y persiste el pedido con estado CREATED y
// cantidades pedidas inmutables.
func (uc *OrderUseCase) Create(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if input.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id requerido", domain.ErrInvalidInput)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: pedido sin líneas", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(input.Lines))
	for _, l := range input.Lines {
		if l.ProductCode == "" {
			return nil, fmt.Errorf("%w: línea sin código de producto", domain.ErrInvalidInput)
		}
		if seen[l.ProductCode] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateProductLine, l.ProductCode)
		}
		seen[l.ProductCode] = true
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad %d para %s", domain.ErrInvalidQuantity, l.Quantity, l.ProductCode)
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		ClientID:  input.ClientID,
		State:     entity.OrderStateCreated,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.RunFulfillment(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, l := range input.Lines {
			product, err := productRepo.GetByCode(l.ProductCode)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: %s", domain.ErrUnknownProduct, l.ProductCode)
			}
			order.Lines = append(order.Lines, entity.OrderLine{
				ProductCode:  product.Code,
				Description:  product.Description,
				OrderedQty:   l.Quantity,
				UnitPrice:    product.UnitPrice,
				DiscountTier: product.DiscountTier,
			})
		}
		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get devuelve el pedido con sus líneas.
func (uc *OrderUseCase) Get(id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, id)
	}
	return order, nil
}

// List lista pedidos con filtros opcionales.
func (uc *OrderUseCase) List(filter repository.OrderFilter) ([]*entity.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.orderRepo.List(filter)
}

// PackingSlip genera el remito de armado en PDF. Solo disponible desde
// PACKED en adelante (el remito refleja cantidades ya confirmadas).
func (uc *OrderUseCase) PackingSlip(ctx context.Context, id string) ([]byte, error) {
	order, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	switch order.State {
	case entity.OrderStatePacked, entity.OrderStateShipped, entity.OrderStateDelivered:
	default:
		return nil, fmt.Errorf("%w: el pedido %s aún no está armado (estado %s)",
			domain.ErrConflict, id, order.State)
	}
	return uc.slips.GeneratePackingSlip(ctx, order)
}
