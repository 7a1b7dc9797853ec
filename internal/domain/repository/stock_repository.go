package repository

import "github.com/farmadistro/pedidos-api/internal/domain/entity"

// StockRepository snapshot de inventario por código de producto.
type StockRepository interface {
	// Get devuelve el stock actual; cantidad cero si el producto nunca tuvo stock.
	Get(productCode string) (*entity.Stock, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(productCode string) (*entity.Stock, error)
	// BatchUpsert escribe las cantidades nuevas como una unidad (todas o ninguna).
	BatchUpsert(stocks []*entity.Stock) error
}
