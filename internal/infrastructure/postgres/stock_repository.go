package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmadistro/pedidos-api/internal/domain/entity"
	"github.com/farmadistro/pedidos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto. Si nunca tuvo stock devuelve
// cantidad cero.
func (r *StockRepo) Get(productCode string) (*entity.Stock, error) {
	query := `
		SELECT product_code, quantity, updated_at
		FROM stock WHERE product_code = $1`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productCode).Scan(
		&s.ProductCode, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductCode: productCode}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
// Si el producto todavía no tiene fila de stock no hay fila que bloquear:
// la serialización por producto la garantiza el lock previo sobre la fila
// del catálogo (ProductRepository.GetForUpdate).
func (r *StockRepo) GetForUpdate(productCode string) (*entity.Stock, error) {
	query := `
		SELECT product_code, quantity, updated_at
		FROM stock WHERE product_code = $1
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productCode).Scan(
		&s.ProductCode, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductCode: productCode}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// BatchUpsert escribe las cantidades nuevas de todos los productos del
// lote. Dentro de una transacción el lote es atómico por definición.
func (r *StockRepo) BatchUpsert(stocks []*entity.Stock) error {
	query := `
		INSERT INTO stock (product_code, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_code)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	for _, stock := range stocks {
		if _, err := r.q.Exec(context.Background(), query, stock.ProductCode, stock.Quantity); err != nil {
			return fmt.Errorf("upsert stock %s: %w", stock.ProductCode, err)
		}
	}
	return nil
}
