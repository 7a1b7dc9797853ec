package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/farmadistro/pedidos-api/internal/domain"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

// ApplyMovementUseCase aplica movimientos de stock (INBOUND, OUTBOUND,
// ADJUSTMENT) de forma transaccional contra el snapshot de inventario y
// agrega el registro al libro inmutable. El ID del movimiento funciona como
// clave de idempotencia: reenviar un ID ya aplicado devuelve el resultado
// original sin volver a tocar el stock.
type ApplyMovementUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
}

// NewApplyMovementUseCase construye el caso de uso. movRepo (sobre el pool)
// solo se usa para las consultas de lectura del libro.
func NewApplyMovementUseCase(txRunner TxRunner, movRepo repository.MovementRepository) *ApplyMovementUseCase {
	return &ApplyMovementUseCase{txRunner: txRunner, movRepo: movRepo}
}

// MovementLineInput una línea del movimiento a aplicar.
type MovementLineInput struct {
	ProductCode string
	Quantity    int64
}

// MovementInput entrada para Apply. MovementID vacío hace que el servidor
// asigne uno; el cliente puede fijarlo para que los reintentos sean
// idempotentes.
type MovementInput struct {
	MovementID     string
	Type           entity.MovementType
	Actor          string
	Notes          string
	SourceDocument string
	Lines          []MovementLineInput
}

// MovementResult resultado de aplicar (o reproducir) un movimiento:
// cantidades post-movimiento de cada producto afectado.
type MovementResult struct {
	MovementID string
	CreatedAt  time.Time
	Quantities map[string]int64
	Replayed   bool // true si el ID ya estaba aplicado y se devolvió el resultado guardado
}

// Apply valida el movimiento y lo aplica en una única transacción:
// verifica idempotencia, bloquea las filas de stock en orden de código
// (evita deadlocks entre movimientos concurrentes), comprueba que ninguna
// salida deje stock negativo y recién entonces escribe cantidades y libro.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, input MovementInput) (*MovementResult, error) {
	mov := &entity.StockMovement{
		ID:             input.MovementID,
		Type:           input.Type,
		Actor:          input.Actor,
		Notes:          input.Notes,
		SourceDocument: input.SourceDocument,
	}
	for _, l := range input.Lines {
		mov.Lines = append(mov.Lines, entity.MovementLine{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}
	if err := mov.Validate(); err != nil {
		return nil, err
	}
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}

	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		// Idempotencia: un ID ya aplicado devuelve el resultado original.
		existing, err := movRepo.GetByID(mov.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = resultFromMovement(existing, true)
			return nil
		}
		result, err = ApplyInTx(movRepo, stockRepo, productRepo, mov)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyInTx aplica el movimiento usando repositorios ya atados a una
// transacción del caller. Lo usa Apply y también la transición
// PICKING -> PACKED, que descuenta stock en la misma transacción que cambia
// el estado del pedido. El movimiento debe llegar validado y con ID.
func ApplyInTx(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	mov *entity.StockMovement,
) (*MovementResult, error) {
	// El lock por producto va sobre la fila del catálogo, no sobre la de
	// stock: un FOR UPDATE sobre una fila inexistente no bloquea nada, y el
	// primer cargo de un producto llega antes de que exista su fila de
	// stock. Siempre en orden de código, así dos movimientos concurrentes
	// sobre el mismo conjunto se serializan en lugar de interbloquearse.
	order := make([]int, len(mov.Lines))
	for i := range mov.Lines {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return mov.Lines[order[a]].ProductCode < mov.Lines[order[b]].ProductCode
	})

	updated := make([]*entity.Stock, 0, len(mov.Lines))
	now := time.Now()
	for _, idx := range order {
		line := &mov.Lines[idx]
		product, err := productRepo.GetForUpdate(line.ProductCode)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, line.ProductCode)
		}
		stock, err := stockRepo.GetForUpdate(line.ProductCode)
		if err != nil {
			return nil, err
		}
		newQty, err := line.ApplyTo(mov.Type, stock.Quantity)
		if err != nil {
			return nil, err
		}
		line.PreviousQty = stock.Quantity
		line.NewQty = newQty
		stock.Quantity = newQty
		stock.UpdatedAt = now
		updated = append(updated, stock)
	}

	if err := stockRepo.BatchUpsert(updated); err != nil {
		return nil, err
	}
	mov.CreatedAt = now
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return resultFromMovement(mov, false), nil
}

// resultFromMovement reconstruye el resultado a partir de las líneas
// persistidas (NewQty), por lo que una reproducción devuelve exactamente lo
// mismo que la aplicación original.
func resultFromMovement(mov *entity.StockMovement, replayed bool) *MovementResult {
	quantities := make(map[string]int64, len(mov.Lines))
	for _, line := range mov.Lines {
		quantities[line.ProductCode] = line.NewQty
	}
	return &MovementResult{
		MovementID: mov.ID,
		CreatedAt:  mov.CreatedAt,
		Quantities: quantities,
		Replayed:   replayed,
	}
}

// GetMovement consulta un movimiento del libro.
func (uc *ApplyMovementUseCase) GetMovement(id string) (*entity.StockMovement, error) {
	mov, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// ListMovements lista el libro con filtros opcionales.
func (uc *ApplyMovementUseCase) ListMovements(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.movRepo.List(filter)
}
