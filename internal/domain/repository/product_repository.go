package repository

import "github.com/farmadistro/pedidos-api/internal/domain/entity"

// ProductRepository acceso al catálogo de productos.
type ProductRepository interface {
	// GetByCode devuelve el producto o nil si no existe.
	GetByCode(code string) (*entity.Product, error)
	// GetForUpdate igual que GetByCode pero bloquea la fila del catálogo
	// (SELECT FOR UPDATE). La fila de catálogo existe siempre, así que el
	// lock serializa los movimientos por producto incluso cuando el
	// producto todavía no tiene fila de stock.
	GetForUpdate(code string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
