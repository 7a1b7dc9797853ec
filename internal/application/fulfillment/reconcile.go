package fulfillment

import (
	"context"
	"fmt"

	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// ReconcileUseCase protocolo de conciliación de picking línea por línea:
// primero se registra la cantidad encontrada y después se confirma
// reingresando el mismo valor. La doble entrada evita que un error de
// tipeo quede aceptado en silencio.
//
// Toda mutación corre con la fila del pedido bloqueada (GetForUpdate), de
// modo que las confirmaciones concurrentes sobre un mismo pedido quedan
// serializadas y la guarda de conciliación completa siempre ve un snapshot
// consistente de las líneas.
type ReconcileUseCase struct {
	txRunner TxRunner
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner}
}

// RecordFound registra la cantidad encontrada para una línea sin confirmar.
// No hay tope contra la cantidad pedida: el sobrante es un resultado válido
// que la clasificación marca como SURPLUS.
func (uc *ReconcileUseCase) RecordFound(ctx context.Context, orderID, productCode string, quantity int64) (*entity.OrderLine, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad encontrada no puede ser negativa", domain.ErrInvalidQuantity)
	}
	var updated *entity.OrderLine
	err := uc.txRunner.RunFulfillment(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		line, err := pickingLine(orderRepo, orderID, productCode)
		if err != nil {
			return err
		}
		if line.Confirmed {
			return fmt.Errorf("%w: %s", domain.ErrLineAlreadyConfirmed, productCode)
		}
		qty := quantity
		line.FoundQty = &qty
		if err := orderRepo.UpdateLine(orderID, line); err != nil {
			return err
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ConfirmLine confirma una línea. Solo tiene éxito cuando proposed coincide
// exactamente con la cantidad encontrada ya registrada: la confirmación es
// un reconocimiento del valor anterior, no una entrada independiente.
func (uc *ReconcileUseCase) ConfirmLine(ctx context.Context, orderID, productCode string, proposed int64) (*entity.OrderLine, error) {
	var updated *entity.OrderLine
	err := uc.txRunner.RunFulfillment(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		line, err := pickingLine(orderRepo, orderID, productCode)
		if err != nil {
			return err
		}
		if line.Confirmed {
			return fmt.Errorf("%w: %s", domain.ErrLineAlreadyConfirmed, productCode)
		}
		if line.FoundQty == nil {
			return fmt.Errorf("%w: %s", domain.ErrLineNotRecorded, productCode)
		}
		if proposed != *line.FoundQty {
			return fmt.Errorf("%w: %s (registrada %d, propuesta %d)",
				domain.ErrQuantityMismatch, productCode, *line.FoundQty, proposed)
		}
		line.Confirmed = true
		line.Completeness = line.ClassifyCompleteness()
		if err := orderRepo.UpdateLine(orderID, line); err != nil {
			return err
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UnconfirmLine deshace la confirmación de una línea. Siempre permitido
// mientras el pedido siga en PICKING; conserva la cantidad encontrada para
// que pueda reconfirmarse o corregirse.
func (uc *ReconcileUseCase) UnconfirmLine(ctx context.Context, orderID, productCode string) (*entity.OrderLine, error) {
	var updated *entity.OrderLine
	err := uc.txRunner.RunFulfillment(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		line, err := pickingLine(orderRepo, orderID, productCode)
		if err != nil {
			return err
		}
		line.Confirmed = false
		line.Completeness = ""
		if err := orderRepo.UpdateLine(orderID, line); err != nil {
			return err
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// pickingLine carga el pedido con lock, verifica que esté en PICKING y
// devuelve la línea pedida.
func pickingLine(orderRepo repository.OrderRepository, orderID, productCode string) (*entity.OrderLine, error) {
	order, err := orderRepo.GetForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, orderID)
	}
	if order.State != entity.OrderStatePicking {
		return nil, fmt.Errorf("%w: estado actual %s", domain.ErrOrderNotPicking, order.State)
	}
	line := order.Line(productCode)
	if line == nil {
		return nil, fmt.Errorf("%w: línea %s en pedido %s", domain.ErrNotFound, productCode, orderID)
	}
	return line, nil
}
