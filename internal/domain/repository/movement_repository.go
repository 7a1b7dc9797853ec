package repository

import (
	"time"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
)

// MovementFilter filtros para listar el libro de movimientos.
type MovementFilter struct {
	ProductCode string
	Type        entity.MovementType
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository libro de movimientos: solo se agrega, nunca se
// modifica ni se borra.
type MovementRepository interface {
	// Create persiste el movimiento con todas sus líneas.
	Create(movement *entity.StockMovement) error
	// GetByID devuelve el movimiento con sus líneas, o nil si no existe.
	GetByID(id string) (*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}
