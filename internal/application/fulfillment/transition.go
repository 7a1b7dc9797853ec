package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmadistro/pedidos-api/internal/application/ledger"
	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// TransitionUseCase máquina de estados del pedido. Toda transición corre
// con la fila del pedido bloqueada; cualquier fallo deja el estado tal como
// estaba antes de la llamada.
type TransitionUseCase struct {
	txRunner TxRunner
}

// NewTransitionUseCase construye el caso de uso.
func NewTransitionUseCase(txRunner TxRunner) *TransitionUseCase {
	return &TransitionUseCase{txRunner: txRunner}
}

// TransitionInput entrada para Transition. DeductStock controla si entrar a
// PACKED descuenta del inventario las cantidades confirmadas (descargo
// OUTBOUND en la misma transacción).
type TransitionInput struct {
	OrderID     string
	Target      entity.OrderState
	Actor       string
	DeductStock bool
}

// TransitionResult estado resultante y, si hubo descargo, su resultado.
type TransitionResult struct {
	OrderID  string
	State    entity.OrderState
	Movement *ledger.MovementResult
}

// Transition intenta mover el pedido al estado destino. PICKING -> PACKED
// exige conciliación completa (si falta, ReconciliationIncompleteError con
// los códigos pendientes) y, con DeductStock, aplica el movimiento OUTBOUND
// dentro de la misma transacción: si el descargo falla (por ejemplo stock
// insuficiente porque cambió concurrentemente), la transición también falla
// y el pedido sigue en PICKING, con el motivo del libro tal cual.
func (uc *TransitionUseCase) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if !input.Target.Valid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, input.Target)
	}
	var result *TransitionResult
	err := uc.txRunner.RunFulfillment(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		order, err := orderRepo.GetForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, input.OrderID)
		}
		if !order.State.CanTransitionTo(input.Target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.State, input.Target)
		}

		result = &TransitionResult{OrderID: order.ID, State: input.Target}
		if input.Target == entity.OrderStatePacked {
			if !order.FullyReconciled() {
				return &domain.ReconciliationIncompleteError{
					OrderID: order.ID,
					Pending: order.UnconfirmedCodes(),
				}
			}
			if input.DeductStock {
				movResult, err := deductPackedStock(movRepo, stockRepo, productRepo, order, input.Actor)
				if err != nil {
					return err
				}
				result.Movement = movResult
			}
		}

		return orderRepo.UpdateState(order.ID, input.Target)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// deductPackedStock aplica el descargo OUTBOUND por las cantidades
// confirmadas del pedido. Las líneas confirmadas con cantidad encontrada
// cero no generan línea de movimiento; si ninguna línea tiene cantidad, no
// se escribe movimiento alguno.
func deductPackedStock(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	order *entity.Order,
	actor string,
) (*ledger.MovementResult, error) {
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		Type:           entity.MovementTypeOutbound,
		Actor:          actor,
		Notes:          "descargo por armado de pedido",
		SourceDocument: order.ID,
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.FoundQty == nil || *line.FoundQty == 0 {
			continue
		}
		mov.Lines = append(mov.Lines, entity.MovementLine{
			ProductCode: line.ProductCode,
			Quantity:    *line.FoundQty,
		})
	}
	if len(mov.Lines) == 0 {
		return nil, nil
	}
	if err := mov.Validate(); err != nil {
		return nil, err
	}
	return ledger.ApplyInTx(movRepo, stockRepo, productRepo, mov)
}
