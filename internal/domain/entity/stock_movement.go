package entity

import (
	"fmt"
	"time"

	"github.com/farmadistro/pedidos-api/internal/domain"
)

// MovementType tipo de movimiento de stock.
type MovementType string

const (
	MovementTypeInbound    MovementType = "INBOUND"    // cargo: recepción de mercadería
	MovementTypeOutbound   MovementType = "OUTBOUND"   // descargo: salida por armado de pedidos
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste: fija un valor absoluto
)

// StockMovement evento inmutable del libro de movimientos. Una vez aplicado
// no se modifica ni se borra; las correcciones son movimientos nuevos.
type StockMovement struct {
	ID             string // clave de idempotencia
	Type           MovementType
	Actor          string
	Notes          string
	SourceDocument string // referencia externa opcional (remito de recepción, nro de pedido)
	Lines          []MovementLine
	CreatedAt      time.Time
}

// MovementLine una línea del movimiento. Quantity es delta para
// INBOUND/OUTBOUND y valor absoluto para ADJUSTMENT. PreviousQty y NewQty
// quedan registrados al aplicar, para auditoría y para reconstruir el
// resultado ante un reenvío del mismo movimiento.
type MovementLine struct {
	ProductCode string
	Quantity    int64
	PreviousQty int64
	NewQty      int64
}

// Validate verifica las invariantes del movimiento antes de tocar el stock:
// tipo conocido, lote no vacío, sin productos repetidos y cantidades según
// el tipo (positivas para INBOUND/OUTBOUND, no negativas para ADJUSTMENT).
func (m *StockMovement) Validate() error {
	switch m.Type {
	case MovementTypeInbound, MovementTypeOutbound, MovementTypeAdjustment:
	default:
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, m.Type)
	}
	if len(m.Lines) == 0 {
		return domain.ErrEmptyBatch
	}
	seen := make(map[string]bool, len(m.Lines))
	for _, line := range m.Lines {
		if line.ProductCode == "" {
			return fmt.Errorf("%w: línea sin código de producto", domain.ErrInvalidInput)
		}
		if seen[line.ProductCode] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateProductLine, line.ProductCode)
		}
		seen[line.ProductCode] = true
		if err := validateLineQuantity(m.Type, line); err != nil {
			return err
		}
	}
	return nil
}

func validateLineQuantity(movementType MovementType, line MovementLine) error {
	switch movementType {
	case MovementTypeAdjustment:
		if line.Quantity < 0 {
			return fmt.Errorf("%w: ajuste negativo para %s", domain.ErrInvalidQuantity, line.ProductCode)
		}
	default:
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad %d para %s", domain.ErrInvalidQuantity, line.Quantity, line.ProductCode)
		}
	}
	return nil
}

// ApplyTo calcula la cantidad resultante de aplicar la línea sobre el stock
// actual. Para OUTBOUND el resultado jamás puede ser negativo; ADJUSTMENT
// reemplaza el valor (ya validado como no negativo).
func (l MovementLine) ApplyTo(movementType MovementType, current int64) (int64, error) {
	switch movementType {
	case MovementTypeInbound:
		return current + l.Quantity, nil
	case MovementTypeOutbound:
		next := current - l.Quantity
		if next < 0 {
			return 0, fmt.Errorf("%w: producto %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, l.ProductCode, current, l.Quantity)
		}
		return next, nil
	case MovementTypeAdjustment:
		return l.Quantity, nil
	}
	return 0, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, movementType)
}
