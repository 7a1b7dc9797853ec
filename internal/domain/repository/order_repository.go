package repository

import "github.com/farmadistro/pedidos-api/internal/domain/entity"

// OrderFilter filtros para listar pedidos.
type OrderFilter struct {
	ClientID string
	State    entity.OrderState
	Limit    int
	Offset   int
}

// OrderRepository agregado pedido + líneas. Los pedidos nunca se borran
// físicamente; CANCELLED es su lápida.
type OrderRepository interface {
	// Create persiste el pedido con todas sus líneas (atómico).
	Create(order *entity.Order) error
	// GetByID devuelve el pedido con sus líneas, o nil si no existe.
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la fila del pedido
	// (SELECT FOR UPDATE) para serializar mutaciones por pedido.
	GetForUpdate(id string) (*entity.Order, error)
	// UpdateState cambia el estado del pedido.
	UpdateState(id string, state entity.OrderState) error
	// UpdateLine persiste las anotaciones de conciliación de una línea
	// (found_qty, confirmed, completeness).
	UpdateLine(orderID string, line *entity.OrderLine) error
	List(filter OrderFilter) ([]*entity.Order, error)
}
